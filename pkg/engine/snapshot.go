package engine

import (
	"time"

	"github.com/teslashibe/go-chakraflow/pkg/breath"
	"github.com/teslashibe/go-chakraflow/pkg/chakra"
	"github.com/teslashibe/go-chakraflow/pkg/gesture"
	"github.com/teslashibe/go-chakraflow/pkg/meditation"
	"github.com/teslashibe/go-chakraflow/pkg/modes"
	"github.com/teslashibe/go-chakraflow/pkg/narration"
	"github.com/teslashibe/go-chakraflow/pkg/posture"
)

// Snapshot is everything one tick produced. It is a value: later ticks never
// modify a returned snapshot.
type Snapshot struct {
	SessionID string    `json:"session_id"`
	Tick      int       `json:"tick"`
	Time      time.Time `json:"ts"`
	Elapsed   float64   `json:"elapsed_seconds"`

	Energies []float64     `json:"energies"`
	Region   chakra.Region `json:"region"` // dominant region index
	Dominant string        `json:"dominant"`

	Hand       bool           `json:"hand"`
	Gesture    gesture.Result `json:"gesture"`
	Classified bool           `json:"classified"`
	Together   bool           `json:"hands_together"`
	YogaMode   bool           `json:"yoga_mode"`

	Eyes       modes.EyeState       `json:"eyes"`
	Alignment  modes.AlignmentState `json:"alignment"`
	Awakening  modes.AwakeningState `json:"awakening"`
	Breath     breath.State         `json:"breath"`
	Posture    posture.Assessment   `json:"posture"`
	Meditation meditation.State     `json:"meditation"`

	Narration        narration.Narration `json:"narration"`
	NarrationChanged bool                `json:"narration_changed"`

	Coach string `json:"coach"`
	Mood  string `json:"mood"`
	Idle  bool   `json:"idle"`
}
