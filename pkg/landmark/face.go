package landmark

// Face Mesh indices used by the engine.
const (
	NoseTip       = 1
	UpperLip      = 13
	LowerLip      = 14
	LeftEyeBottom = 145
	LeftEyeTop    = 159

	// MinFaceLandmarks is the smallest mesh that covers every index above.
	MinFaceLandmarks = LeftEyeTop + 1
)

// Face is a Face Mesh landmark set. A nil or short slice means no face.
type Face []Point

// Valid reports whether the mesh covers every index the engine reads.
func (f Face) Valid() bool {
	return len(f) >= MinFaceLandmarks
}

// Nose returns the nose tip.
func (f Face) Nose() (Point, bool) {
	if !f.Valid() {
		return Point{}, false
	}
	return f[NoseTip], true
}

// EyeAperture is the distance between the left eyelids.
func (f Face) EyeAperture() (float64, bool) {
	if !f.Valid() {
		return 0, false
	}
	return Distance(f[LeftEyeTop], f[LeftEyeBottom]), true
}

// MouthAperture is the distance between the inner lips.
func (f Face) MouthAperture() (float64, bool) {
	if !f.Valid() {
		return 0, false
	}
	return Distance(f[UpperLip], f[LowerLip]), true
}
