package scaling

import (
	"errors"
	"fmt"

	"github.com/gogpu/fpvosd/layout"
)

// ErrTargetTooSmall is returned when the OSD cannot be fitted inside the
// target resolution and margins at any tile size.
var ErrTargetTooSmall = errors.New("scaling: target resolution too small for OSD")

// DefaultMinCoverage is the default minimum coverage percentage.
const DefaultMinCoverage = 90

// Mode selects how scaling is decided.
type Mode uint8

const (
	// Auto scales only when no unscaled tile kind reaches the minimum
	// coverage within the margins.
	Auto Mode = iota
	// Force always scales to the largest size the margins allow.
	Force
	// Never renders native tiles at their native size.
	Never
)

func (m Mode) String() string {
	switch m {
	case Auto:
		return "auto"
	case Force:
		return "force"
	case Never:
		return "never"
	default:
		return fmt.Sprintf("Mode(%d)", uint8(m))
	}
}

// ParseMode parses a mode name as printed by Mode.String.
func ParseMode(s string) (Mode, error) {
	for _, m := range []Mode{Auto, Force, Never} {
		if s == m.String() {
			return m, nil
		}
	}
	return Auto, fmt.Errorf("scaling: unknown mode %q (valid: auto, force, never)", s)
}

// ModeFromFlags maps the mutually exclusive scaling flags to a Mode.
func ModeFromFlags(scaling, noScaling bool) (Mode, error) {
	switch {
	case scaling && noScaling:
		return Auto, errors.New("scaling: scaling and no-scaling are mutually exclusive")
	case scaling:
		return Force, nil
	case noScaling:
		return Never, nil
	default:
		return Auto, nil
	}
}

// Input holds everything Plan needs.
type Input struct {
	Grid layout.Grid
	// Native is the tile kind matching the recording's grid kind.
	Native layout.TileKind
	// Target is the video resolution; nil when unknown.
	Target      *Resolution
	Margins     Margins
	MinCoverage int // percent, 1 to 100
	Mode        Mode
}

// Decision is the chosen tile kind and rendered geometry. TileWidth and
// TileHeight are the on-screen glyph size; Width and Height the overlay
// frame size.
type Decision struct {
	TileKind   layout.TileKind
	Scale      float64
	TileWidth  int
	TileHeight int
	Width      int
	Height     int
	Scaled     bool
	// Coverage is the overlay area as a percentage of the target area, or 0
	// without a target.
	Coverage float64
}

func (d Decision) String() string {
	s := fmt.Sprintf("%s tiles %dx%d, overlay %dx%d", d.TileKind, d.TileWidth, d.TileHeight, d.Width, d.Height)
	if d.Scaled {
		s += fmt.Sprintf(", scaled x%.3f", d.Scale)
	}
	if d.Coverage > 0 {
		s += fmt.Sprintf(", coverage %.1f%%", d.Coverage)
	}
	return s
}

// Plan chooses the tile kind and tile size.
//
// With Mode Never or without a target the native kind is used unscaled. In
// Auto mode unscaled kinds that fit inside the margins are tried first and the
// first reaching MinCoverage wins, the native kind before HD before SD.
// Otherwise, and always in Force mode, every kind is scaled to the largest
// integer tile size that keeps its aspect ratio and respects the margins, and
// the candidate with the highest coverage wins with the same preference order
// breaking ties.
func Plan(in Input) (Decision, error) {
	if in.Grid.Width <= 0 || in.Grid.Height <= 0 {
		return Decision{}, fmt.Errorf("scaling: empty grid %v", in.Grid)
	}
	if in.Mode == Never || in.Target == nil {
		return unscaled(in, in.Native), nil
	}
	if in.MinCoverage < 1 || in.MinCoverage > 100 {
		return Decision{}, fmt.Errorf("scaling: minimum coverage %d%% outside 1..100", in.MinCoverage)
	}

	availW := in.Target.Width - 2*in.Margins.Horizontal
	availH := in.Target.Height - 2*in.Margins.Vertical
	if availW <= 0 || availH <= 0 {
		return Decision{}, fmt.Errorf("%w: %v with margins %v", ErrTargetTooSmall, *in.Target, in.Margins)
	}

	kinds := preference(in.Native)
	if in.Mode == Auto {
		for _, k := range kinds {
			d := unscaled(in, k)
			if d.Width <= availW && d.Height <= availH && d.Coverage >= float64(in.MinCoverage) {
				return d, nil
			}
		}
	}

	var best Decision
	found := false
	for _, k := range kinds {
		d, ok := scaled(in, k, availW, availH)
		if ok && (!found || d.Coverage > best.Coverage) {
			best, found = d, true
		}
	}
	if !found {
		return Decision{}, fmt.Errorf("%w: %v grid in %v with margins %v", ErrTargetTooSmall, in.Grid, *in.Target, in.Margins)
	}
	return best, nil
}

// preference orders the tile kinds: native first, then HD, then SD.
func preference(native layout.TileKind) []layout.TileKind {
	kinds := []layout.TileKind{native}
	for _, k := range []layout.TileKind{layout.TileHD, layout.TileSD} {
		if k != native {
			kinds = append(kinds, k)
		}
	}
	return kinds
}

func unscaled(in Input, k layout.TileKind) Decision {
	tw, th := k.Size()
	return decision(in, k, tw, th, false)
}

func scaled(in Input, k layout.TileKind, availW, availH int) (Decision, bool) {
	kw, kh := k.Size()
	tw := min(availW/in.Grid.Width, availH/in.Grid.Height*kw/kh)
	th := tw * kh / kw
	if tw < 1 || th < 1 {
		return Decision{}, false
	}
	return decision(in, k, tw, th, true), true
}

func decision(in Input, k layout.TileKind, tw, th int, isScaled bool) Decision {
	kw, _ := k.Size()
	w, h := in.Grid.Pixels(tw, th)
	d := Decision{
		TileKind:   k,
		Scale:      float64(tw) / float64(kw),
		TileWidth:  tw,
		TileHeight: th,
		Width:      w,
		Height:     h,
		Scaled:     isScaled,
	}
	if in.Target != nil && in.Target.Area() > 0 {
		d.Coverage = float64(w*h) * 100 / float64(in.Target.Area())
	}
	return d
}
