// Package session holds the end-of-session summary record and the stores that
// persist it.
package session

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when no summary has the requested ID.
var ErrNotFound = errors.New("session: summary not found")

// Summary is the persisted artifact of one practice session.
type Summary struct {
	ID    string    `json:"id"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`

	// Duration is the total elapsed session time in seconds.
	Duration float64 `json:"duration_seconds"`
	Ticks    int     `json:"ticks"`

	Dwell    []float64      `json:"dwell"` // seconds per region, Root first
	Gestures map[string]int `json:"gestures"`

	PostureAlerts int     `json:"posture_alerts"`
	MeanPosture   float64 `json:"mean_posture"`

	AlignmentCount int `json:"alignment_count"`
	CrownCount     int `json:"crown_count"`
	AwakeningCount int `json:"awakening_count"`

	Energies  []float64 `json:"energies"`
	Strongest string    `json:"strongest"`
	Weakest   string    `json:"weakest"`
	Calmness  float64   `json:"calmness"`
}

// Store persists summaries.
type Store interface {
	// Save creates or replaces a summary. An empty ID is filled in.
	Save(ctx context.Context, s *Summary) error

	// Get returns the summary with the given ID or ErrNotFound.
	Get(ctx context.Context, id string) (*Summary, error)

	// List returns every summary, newest first.
	List(ctx context.Context) ([]*Summary, error)

	// Delete removes a summary. Deleting a missing ID returns ErrNotFound.
	Delete(ctx context.Context, id string) error

	// Count returns the number of stored summaries.
	Count(ctx context.Context) (int, error)

	Close() error
}
