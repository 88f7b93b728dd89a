// Package chakra defines the seven body regions that index the energy vector
// and the short scripture-like entries used for narration.
package chakra

import (
	"fmt"
	"image/color"
)

// Region is a body-region index, Root (0) through Crown (6).
type Region int

const (
	Root Region = iota
	Sacral
	SolarPlexus
	Heart
	Throat
	ThirdEye
	Crown
)

// Count is the number of regions.
const Count = 7

var names = [Count]string{
	"Root", "Sacral", "Solar Plexus", "Heart",
	"Throat", "Third Eye", "Crown",
}

// Display colors, red at the root up to white at the crown.
var colors = [Count]color.RGBA{
	{R: 255, G: 0, B: 0, A: 255},
	{R: 255, G: 140, B: 0, A: 255},
	{R: 255, G: 255, B: 0, A: 255},
	{R: 0, G: 255, B: 0, A: 255},
	{R: 0, G: 0, B: 255, A: 255},
	{R: 255, G: 0, B: 255, A: 255},
	{R: 255, G: 255, B: 255, A: 255},
}

// Valid reports whether r is one of the seven regions.
func (r Region) Valid() bool {
	return r >= Root && r <= Crown
}

// String returns the region's display name.
func (r Region) String() string {
	if !r.Valid() {
		return fmt.Sprintf("Region(%d)", int(r))
	}
	return names[r]
}

// Color returns the region's display color.
func (r Region) Color() color.RGBA {
	if !r.Valid() {
		return color.RGBA{A: 255}
	}
	return colors[r]
}

// All returns every region in index order.
func All() []Region {
	out := make([]Region, Count)
	for i := range out {
		out[i] = Region(i)
	}
	return out
}

// Names returns the display names in index order.
func Names() []string {
	out := make([]string, Count)
	copy(out, names[:])
	return out
}
