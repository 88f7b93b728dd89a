// Package narration turns the dominant energy region into a short line of
// guidance. A rate-limited Throttle decides when to emit, shows a
// deterministic fallback at once, and lets a text-generation collaborator
// replace it if it answers in time.
package narration

import (
	"context"
	"errors"
	"fmt"

	"github.com/teslashibe/go-chakraflow/pkg/chakra"
)

// ErrUseFallback is wrapped by every collaborator failure.
var ErrUseFallback = errors.New("narration: use fallback")

// Suffix is appended to every fallback line.
const Suffix = "Keep breath soft, mind steady. No medical or spiritual guarantees—just gentle guidance."

// Fallback formats the deterministic line for an entry.
func Fallback(e chakra.Entry) string {
	return fmt.Sprintf("%s: %s %s", e.Transliteration, e.Meaning, Suffix)
}

// SessionContext describes the practitioner and session for the prompt.
type SessionContext struct {
	UserLevel       string  `json:"user_level"`
	Tone            string  `json:"tone"`
	MeditationStage string  `json:"meditation_stage"`
	ElapsedMinutes  float64 `json:"elapsed_minutes"`
}

// Request is the structured context sent to the collaborator.
type Request struct {
	Region           chakra.Region  `json:"region"`
	Entry            chakra.Entry   `json:"region_entry"`
	PoseLabel        string         `json:"pose_label"`
	MudraLabel       string         `json:"mudra_label"`
	BreathSmoothness float64        `json:"breath_smoothness"`
	BreathRate       float64        `json:"breath_rate"`
	PranayamaCount   int            `json:"pranayama_count"`
	Session          SessionContext `json:"session_context"`
}

// Collaborator produces narration text. Implementations must return an
// error wrapping ErrUseFallback on any failure and must not panic.
type Collaborator interface {
	Explain(ctx context.Context, req Request) (string, error)
}

// CollaboratorFunc adapts a function to Collaborator.
type CollaboratorFunc func(ctx context.Context, req Request) (string, error)

// Explain calls f.
func (f CollaboratorFunc) Explain(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

// Source tells where the displayed text came from.
type Source string

const (
	SourceFallback     Source = "fallback"
	SourceCollaborator Source = "collaborator"
)

// Narration is the text currently on display.
type Narration struct {
	Text   string        `json:"text"`
	Region chakra.Region `json:"region"`
	Source Source        `json:"source"`
	Seq    uint64        `json:"seq"`
}
