package scaling

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrInvalidResolution is returned by ParseResolution.
	ErrInvalidResolution = errors.New("scaling: invalid resolution")

	// ErrInvalidMargins is returned by ParseMargins.
	ErrInvalidMargins = errors.New("scaling: invalid margins")
)

// Resolution is a video frame size in pixels.
type Resolution struct {
	Width  int
	Height int
}

// Area returns Width*Height.
func (r Resolution) Area() int {
	return r.Width * r.Height
}

func (r Resolution) String() string {
	return fmt.Sprintf("%dx%d", r.Width, r.Height)
}

// Standard resolutions accepted by name.
var standardResolutions = []struct {
	name string
	res  Resolution
}{
	{"720p", Resolution{1280, 720}},
	{"720p4:3", Resolution{960, 720}},
	{"1080p", Resolution{1920, 1080}},
	{"1080p4:3", Resolution{1440, 1080}},
}

// ValidResolutions lists the accepted ParseResolution forms for help output.
func ValidResolutions() string {
	names := make([]string, 0, len(standardResolutions)+1)
	for _, s := range standardResolutions {
		names = append(names, s.name)
	}
	return strings.Join(append(names, "<width>x<height>"), ", ")
}

// ParseResolution parses a standard resolution name (720p, 720p4:3, 1080p,
// 1080p4:3) or a custom WxH size with up to 5 digits per axis.
func ParseResolution(s string) (Resolution, error) {
	for _, std := range standardResolutions {
		if s == std.name {
			return std.res, nil
		}
	}
	ws, hs, ok := strings.Cut(s, "x")
	if !ok {
		return Resolution{}, fmt.Errorf("%w %q, valid resolutions are: %s", ErrInvalidResolution, s, ValidResolutions())
	}
	w, errW := parseDigits(ws, 5)
	h, errH := parseDigits(hs, 5)
	if errW != nil || errH != nil || w == 0 || h == 0 {
		return Resolution{}, fmt.Errorf("%w %q, valid resolutions are: %s", ErrInvalidResolution, s, ValidResolutions())
	}
	return Resolution{Width: w, Height: h}, nil
}

// Margins are the minimum distances in pixels kept between the rendered OSD
// and each edge of the video frame.
type Margins struct {
	Horizontal int
	Vertical   int
}

// DefaultMargins is 20 pixels on every side.
var DefaultMargins = Margins{Horizontal: 20, Vertical: 20}

func (m Margins) String() string {
	return fmt.Sprintf("%d:%d", m.Horizontal, m.Vertical)
}

// ParseMargins parses "horizontal:vertical" with up to 3 digits each.
func ParseMargins(s string) (Margins, error) {
	hs, vs, ok := strings.Cut(s, ":")
	if !ok {
		return Margins{}, fmt.Errorf("%w: %q", ErrInvalidMargins, s)
	}
	h, errH := parseDigits(hs, 3)
	v, errV := parseDigits(vs, 3)
	if err := errors.Join(errH, errV); err != nil {
		return Margins{}, fmt.Errorf("%w: %q: %w", ErrInvalidMargins, s, err)
	}
	return Margins{Horizontal: h, Vertical: v}, nil
}

// parseDigits accepts 1 to maxLen ASCII digits.
func parseDigits(s string, maxLen int) (int, error) {
	if len(s) == 0 || len(s) > maxLen {
		return 0, fmt.Errorf("expected 1 to %d digits, got %q", maxLen, s)
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("not a number: %q", s)
		}
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	return v, nil
}
