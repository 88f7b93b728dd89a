package narration

import (
	"fmt"
	"strings"
)

// SystemPrompt frames the collaborator as a yoga teacher.
const SystemPrompt = `You are a wise yoga teacher. Explain the scripture in 4-6 sentences.
Include a relevant short quote or wisdom from the Vedas or Ramayana to inspire the user.
Avoid medical claims, be inclusive, non-fanatical, non-political.`

// BuildPrompt renders the request as the user turn.
func BuildPrompt(req Request) string {
	var b strings.Builder

	b.WriteString("Scripture:\n")
	fmt.Fprintf(&b, "- Source: %s\n", req.Entry.Source)
	fmt.Fprintf(&b, "- Sanskrit: %s\n", req.Entry.Sanskrit)
	fmt.Fprintf(&b, "- Transliteration: %s\n", req.Entry.Transliteration)
	fmt.Fprintf(&b, "- Meaning: %s\n", req.Entry.Meaning)

	b.WriteString("\nCurrent state:\n")
	fmt.Fprintf(&b, "- Region: %s\n", req.Region)
	fmt.Fprintf(&b, "- Pose: %s\n", orNone(req.PoseLabel))
	fmt.Fprintf(&b, "- Mudra: %s\n", orNone(req.MudraLabel))
	fmt.Fprintf(&b, "- Breath smoothness: %.2f, rate: %.1f bpm\n", req.BreathSmoothness, req.BreathRate)
	fmt.Fprintf(&b, "- Pranayama count: %d\n", req.PranayamaCount)
	if req.Session.MeditationStage != "" {
		fmt.Fprintf(&b, "- Meditation stage: %s\n", req.Session.MeditationStage)
	}

	level := orDefault(req.Session.UserLevel, "beginner home practitioner")
	tone := orDefault(req.Session.Tone, "calm and friendly")
	fmt.Fprintf(&b, "\nUser: %s, tone: %s.\n", level, tone)
	return b.String()
}

func orNone(s string) string {
	return orDefault(s, "none")
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
