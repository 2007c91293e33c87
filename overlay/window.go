package overlay

import (
	"fmt"
	"math"

	"github.com/gogpu/fpvosd/osdfile"
)

// Window maps decoded frame indices to output frame numbers.
//
// The output number of a frame is its decoded index plus Shift. Frames whose
// number is negative, below Start or above End (when set) are not produced.
type Window struct {
	Shift int
	Start uint32
	End   *uint32
}

// Validate reports an empty window.
func (w Window) Validate() error {
	if w.End != nil && *w.End < w.Start {
		return fmt.Errorf("overlay: window end %d before start %d", *w.End, w.Start)
	}
	return nil
}

// Number returns the output number for a decoded frame index and whether
// the frame falls inside the window.
func (w Window) Number(index uint32) (uint32, bool) {
	n := int64(index) + int64(w.Shift)
	if n < int64(w.Start) || n > math.MaxUint32 {
		return 0, false
	}
	if w.End != nil && n > int64(*w.End) {
		return 0, false
	}
	return uint32(n), true
}

// Shifted is a frame tagged with its output number.
type Shifted struct {
	Number uint32
	Frame  osdfile.Frame
}

// Select returns the frames inside the window with their output numbers, in
// input order.
func (w Window) Select(frames []osdfile.Frame) []Shifted {
	out := make([]Shifted, 0, len(frames))
	for _, f := range frames {
		if n, ok := w.Number(f.Index); ok {
			out = append(out, Shifted{Number: n, Frame: f})
		}
	}
	return out
}
