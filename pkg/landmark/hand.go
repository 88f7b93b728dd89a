package landmark

// Hand landmark indices following the MediaPipe Hands convention.
const (
	Wrist     = 0
	ThumbCMC  = 1
	ThumbMCP  = 2
	ThumbIP   = 3
	ThumbTip  = 4
	IndexMCP  = 5
	IndexPIP  = 6
	IndexDIP  = 7
	IndexTip  = 8
	MiddleMCP = 9
	MiddlePIP = 10
	MiddleDIP = 11
	MiddleTip = 12
	RingMCP   = 13
	RingPIP   = 14
	RingDIP   = 15
	RingTip   = 16
	PinkyMCP  = 17
	PinkyPIP  = 18
	PinkyDIP  = 19
	PinkyTip  = 20

	NumHandLandmarks = 21
)

// Hand is the 21-point landmark set of one detected hand.
type Hand struct {
	Points     [NumHandLandmarks]Point `json:"points"`
	Handedness string                  `json:"handedness,omitempty"` // "Left" or "Right"
	Score      float64                 `json:"score,omitempty"`
}

// At returns the landmark at index i.
func (h *Hand) At(i int) Point {
	return h.Points[i]
}

// Scale is the wrist to middle fingertip distance, used to normalize
// in-hand distances. Never zero.
func (h *Hand) Scale() float64 {
	return Distance(h.Points[Wrist], h.Points[MiddleTip]) + Epsilon
}
