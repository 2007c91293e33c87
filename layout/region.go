package layout

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidRegion is returned by ParseRegion for malformed input.
var ErrInvalidRegion = errors.New("layout: invalid region")

// Region is a rectangle in grid-cell coordinates.
type Region struct {
	Col    int
	Row    int
	Width  int
	Height int
}

// Contains reports whether the cell (row, col) lies inside the region.
func (r Region) Contains(row, col int) bool {
	return col >= r.Col && col < r.Col+r.Width && row >= r.Row && row < r.Row+r.Height
}

// Clip intersects r with the grid. ok is false when nothing remains.
func (r Region) Clip(g Grid) (Region, bool) {
	x0, y0 := max(r.Col, 0), max(r.Row, 0)
	x1, y1 := min(r.Col+r.Width, g.Width), min(r.Row+r.Height, g.Height)
	if x1 <= x0 || y1 <= y0 {
		return Region{}, false
	}
	return Region{Col: x0, Row: y0, Width: x1 - x0, Height: y1 - y0}, true
}

func (r Region) String() string {
	return fmt.Sprintf("%d,%d:%dx%d", r.Col, r.Row, r.Width, r.Height)
}

// ParseRegion parses "x,y" or "x,y:WxH" where x is the column and y the row.
// Width and height default to 1 and must not be 0.
func ParseRegion(s string) (Region, error) {
	origin, dims, hasDims := strings.Cut(s, ":")
	xs, ys, ok := strings.Cut(origin, ",")
	if !ok {
		return Region{}, fmt.Errorf("%w: %q: origin must be x,y", ErrInvalidRegion, s)
	}
	x, errX := parseCoord(xs)
	y, errY := parseCoord(ys)
	if err := errors.Join(errX, errY); err != nil {
		return Region{}, fmt.Errorf("%w: %q: %w", ErrInvalidRegion, s, err)
	}
	r := Region{Col: x, Row: y, Width: 1, Height: 1}
	if !hasDims {
		return r, nil
	}
	ws, hs, ok := strings.Cut(dims, "x")
	if !ok {
		return Region{}, fmt.Errorf("%w: %q: dimensions must be WxH", ErrInvalidRegion, s)
	}
	w, errW := parseCoord(ws)
	h, errH := parseCoord(hs)
	if err := errors.Join(errW, errH); err != nil {
		return Region{}, fmt.Errorf("%w: %q: %w", ErrInvalidRegion, s, err)
	}
	if w == 0 || h == 0 {
		return Region{}, fmt.Errorf("%w: %q: dimension component cannot be 0", ErrInvalidRegion, s)
	}
	r.Width, r.Height = w, h
	return r, nil
}

func parseCoord(s string) (int, error) {
	if len(s) == 0 || len(s) > 3 {
		return 0, fmt.Errorf("bad coordinate %q", s)
	}
	v, err := strconv.ParseUint(s, 10, 8)
	if err != nil {
		return 0, fmt.Errorf("bad coordinate %q", s)
	}
	return int(v), nil
}
