package chakra

// Entry is a short scripture-like snippet attached to a region.
type Entry struct {
	ID              string `json:"id" yaml:"id"`
	Source          string `json:"source" yaml:"source"`
	Sanskrit        string `json:"sanskrit" yaml:"sanskrit"`
	Transliteration string `json:"transliteration" yaml:"transliteration"`
	Meaning         string `json:"meaning" yaml:"meaning"`
}

var scriptures = [Count]Entry{
	{
		ID:              "root_balance",
		Source:          "Yoga wisdom",
		Sanskrit:        "Sthiram sukham asanam",
		Transliteration: "Stay steady like a mountain",
		Meaning:         "Ground yourself and find steadiness.",
	},
	{
		ID:              "sacral_flow",
		Source:          "Yoga wisdom",
		Sanskrit:        "Jala tattva",
		Transliteration: "Gentle flow, soft breath",
		Meaning:         "Let movement be smooth and creative.",
	},
	{
		ID:              "solar_fire",
		Source:          "Yoga wisdom",
		Sanskrit:        "Tejas",
		Transliteration: "Inner fire with calm mind",
		Meaning:         "Strength with kindness—no force.",
	},
	{
		ID:              "heart_compassion",
		Source:          "Yoga wisdom",
		Sanskrit:        "Anahata",
		Transliteration: "Open heart, light shoulders",
		Meaning:         "Balance effort with softness and care.",
	},
	{
		ID:              "throat_truth",
		Source:          "Yoga wisdom",
		Sanskrit:        "Satya",
		Transliteration: "Speak softly, breathe freely",
		Meaning:         "Align breath and voice with honesty.",
	},
	{
		ID:              "third_eye_focus",
		Source:          "Yoga wisdom",
		Sanskrit:        "Dhyana",
		Transliteration: "Drishti shant rakho",
		Meaning:         "Calm gaze, clear mind, steady breath.",
	},
	{
		ID:              "crown_stillness",
		Source:          "Yoga wisdom",
		Sanskrit:        "Shanti",
		Transliteration: "Sukoon se baitho",
		Meaning:         "Sit in quiet awareness; no hurry, no pressure.",
	},
}

// Scripture returns the entry for a region. Invalid regions get the Root entry.
func Scripture(r Region) Entry {
	if !r.Valid() {
		return scriptures[Root]
	}
	return scriptures[r]
}

// Scriptures returns the full lookup table in region order.
func Scriptures() []Entry {
	out := make([]Entry, Count)
	copy(out, scriptures[:])
	return out
}
