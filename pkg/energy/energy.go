// Package energy owns the seven-element energy vector and the per-tick rules
// that charge, decay, blend, floor and boost it.
package energy

import (
	"fmt"
	"strings"

	"github.com/teslashibe/go-chakraflow/pkg/chakra"
)

// Bounds every entry of a Vector stays within.
const (
	Min = 0.1
	Max = 1.0
)

// Vector holds one energy level per region, indexed by chakra.Region.
type Vector [chakra.Count]float64

// Uniform returns a vector with every entry set to v, clamped.
func Uniform(v float64) Vector {
	var out Vector
	for i := range out {
		out[i] = clamp(v)
	}
	return out
}

// Get returns the level of region r.
func (v Vector) Get(r chakra.Region) float64 {
	if !r.Valid() {
		return 0
	}
	return v[r]
}

// ArgMax returns the strongest region. Ties resolve to the lowest index.
func (v Vector) ArgMax() chakra.Region {
	best := 0
	for i := 1; i < len(v); i++ {
		if v[i] > v[best] {
			best = i
		}
	}
	return chakra.Region(best)
}

// ArgMin returns the weakest region. Ties resolve to the lowest index.
func (v Vector) ArgMin() chakra.Region {
	worst := 0
	for i := 1; i < len(v); i++ {
		if v[i] < v[worst] {
			worst = i
		}
	}
	return chakra.Region(worst)
}

// Mean averages the given regions, or all regions when none are given.
func (v Vector) Mean(regions ...chakra.Region) float64 {
	if len(regions) == 0 {
		regions = chakra.All()
	}
	var sum float64
	for _, r := range regions {
		sum += v.Get(r)
	}
	return sum / float64(len(regions))
}

// AllAbove reports whether every entry exceeds threshold.
func (v Vector) AllAbove(threshold float64) bool {
	for _, x := range v {
		if x <= threshold {
			return false
		}
	}
	return true
}

// Slice returns the entries as a slice, for JSON and storage.
func (v Vector) Slice() []float64 {
	out := make([]float64, len(v))
	copy(out, v[:])
	return out
}

// FromSlice builds a Vector from up to Count values. Missing entries take Min.
func FromSlice(s []float64) Vector {
	out := Uniform(Min)
	for i := 0; i < len(out) && i < len(s); i++ {
		out[i] = clamp(s[i])
	}
	return out
}

func (v Vector) String() string {
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = fmt.Sprintf("%s=%.2f", chakra.Region(i), x)
	}
	return strings.Join(parts, " ")
}

func clamp(x float64) float64 {
	if x < Min {
		return Min
	}
	if x > Max {
		return Max
	}
	return x
}
