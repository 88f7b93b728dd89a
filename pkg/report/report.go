// Package report renders the end-of-session summary for people: a plain text
// report for the terminal or a file. The render subpackage draws the image
// form.
package report

import (
	"bytes"
	"fmt"
	"io"
	"sort"

	"github.com/teslashibe/go-chakraflow/pkg/chakra"
	"github.com/teslashibe/go-chakraflow/pkg/session"
)

// Percent converts an energy in [0,1] to the whole percentage shown to users.
// It truncates like the on-screen bars do.
func Percent(e float64) int {
	switch {
	case e <= 0:
		return 0
	case e >= 1:
		return 100
	}
	return int(e * 100)
}

// Write writes the text report for sum to w.
func Write(w io.Writer, sum *session.Summary) error {
	var b bytes.Buffer

	b.WriteString("=========================\n")
	b.WriteString("    FINAL SESSION REPORT\n")
	b.WriteString("=========================\n\n")

	fmt.Fprintf(&b, "Session:           %s\n", sum.ID)
	fmt.Fprintf(&b, "Duration:          %.2f minutes\n", sum.Duration/60)
	fmt.Fprintf(&b, "Strongest region:  %s\n", sum.Strongest)
	fmt.Fprintf(&b, "Weakest region:    %s\n\n", sum.Weakest)

	fmt.Fprintf(&b, "Crown gesture activations: %d\n", sum.CrownCount)
	fmt.Fprintf(&b, "Alignment activations:     %d\n", sum.AlignmentCount)
	fmt.Fprintf(&b, "Awakening sequences:       %d\n\n", sum.AwakeningCount)

	b.WriteString("Final energy levels:\n")
	for i, e := range sum.Energies {
		fmt.Fprintf(&b, "  %-13s %3d%%\n", chakra.Region(i).String()+":", Percent(e))
	}
	fmt.Fprintf(&b, "\nCalmness score: %d/100\n", int(sum.Calmness))

	b.WriteString("\n--- Analytics ---\n")
	b.WriteString("Gesture counts:")
	if len(sum.Gestures) == 0 {
		b.WriteString(" none")
	}
	b.WriteString("\n")
	names := make([]string, 0, len(sum.Gestures))
	for name := range sum.Gestures {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(&b, "  %-10s %d\n", name+":", sum.Gestures[name])
	}
	fmt.Fprintf(&b, "Average posture score: %.2f\n", sum.MeanPosture)
	fmt.Fprintf(&b, "Posture alerts:        %d\n", sum.PostureAlerts)
	b.WriteString("Time per region (s):\n")
	for i, d := range sum.Dwell {
		fmt.Fprintf(&b, "  %-13s %.1f\n", chakra.Region(i).String()+":", d)
	}

	b.WriteString("\nKeep breathing. Stay mindful. Namaste.\n")

	_, err := w.Write(b.Bytes())
	return err
}

// Text returns the text report as a string.
func Text(sum *session.Summary) string {
	var b bytes.Buffer
	_ = Write(&b, sum)
	return b.String()
}
