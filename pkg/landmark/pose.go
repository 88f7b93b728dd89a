package landmark

// Pose indices used by the posture analyzer (MediaPipe Pose, 33 points).
const (
	LeftShoulder  = 11
	RightShoulder = 12
	LeftHip       = 23
	RightHip      = 24

	// MinPoseLandmarks covers the shoulder and hip pairs.
	MinPoseLandmarks = RightHip + 1
)

// Pose is a body pose landmark set. A nil or short slice means no body.
type Pose []Point

// Valid reports whether the shoulder and hip pairs are present.
func (p Pose) Valid() bool {
	return len(p) >= MinPoseLandmarks
}

// Shoulders returns the left and right shoulder points.
func (p Pose) Shoulders() (Point, Point, bool) {
	if !p.Valid() {
		return Point{}, Point{}, false
	}
	return p[LeftShoulder], p[RightShoulder], true
}

// Hips returns the left and right hip points.
func (p Pose) Hips() (Point, Point, bool) {
	if !p.Valid() {
		return Point{}, Point{}, false
	}
	return p[LeftHip], p[RightHip], true
}
