package gesture

import "github.com/teslashibe/go-chakraflow/pkg/chakra"

// rule is one row of the classification table. Only fingers set in mask are
// compared against want; needPinch additionally requires a precision pinch.
type rule struct {
	region    chakra.Region
	needPinch bool
	want      FingerState
	mask      FingerState
}

var fullMask = FingerState{Thumb: true, Index: true, Middle: true, Ring: true, Pinky: true}

// Ordered, first match wins. Rows are kept exactly as tuned on the mat: the
// Third Eye row repeats the Heart pattern and is therefore unreachable.
var table = []rule{
	{region: chakra.Crown, needPinch: true,
		want: FingerState{Middle: true, Ring: true, Pinky: true},
		mask: FingerState{Middle: true, Ring: true, Pinky: true}},
	{region: chakra.Root, want: FingerState{}, mask: fullMask},
	{region: chakra.Sacral, want: FingerState{Index: true, Middle: true}, mask: fullMask},
	{region: chakra.SolarPlexus, want: fullMask, mask: fullMask},
	{region: chakra.Heart, want: FingerState{Thumb: true, Index: true, Middle: true}, mask: fullMask},
	{region: chakra.Throat, want: FingerState{Index: true}, mask: fullMask},
	{region: chakra.ThirdEye, want: FingerState{Thumb: true, Index: true, Middle: true}, mask: fullMask},
	{region: chakra.Crown, want: FingerState{Pinky: true}, mask: fullMask},
}

func (r rule) matches(fs FingerState, pinch bool) bool {
	if r.needPinch && !pinch {
		return false
	}
	return (!r.mask.Thumb || fs.Thumb == r.want.Thumb) &&
		(!r.mask.Index || fs.Index == r.want.Index) &&
		(!r.mask.Middle || fs.Middle == r.want.Middle) &&
		(!r.mask.Ring || fs.Ring == r.want.Ring) &&
		(!r.mask.Pinky || fs.Pinky == r.want.Pinky)
}

// Lookup maps a finger state and pinch flag to a region.
// The boolean is false when no row matches.
func Lookup(fs FingerState, pinch bool) (chakra.Region, bool) {
	for _, r := range table {
		if r.matches(fs, pinch) {
			return r.region, true
		}
	}
	return 0, false
}
