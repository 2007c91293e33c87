package osdfile

import (
	"slices"

	"github.com/gogpu/fpvosd/layout"
)

// Update sets one grid cell to a tile index.
type Update struct {
	Row  int
	Col  int
	Tile uint16
}

// Record is one decoded frame record: the video frame index it applies from
// and the cells it changes. Cells it does not mention keep their prior tile.
type Record struct {
	Index   uint32
	Updates []Update
}

// Snapshot is the full tile grid at one point in time, stored row-major.
// Tile index 0 is the blank tile.
//
// Snapshots handed out by this package are never modified afterwards and may
// be read from any number of goroutines.
type Snapshot struct {
	grid  layout.Grid
	cells []uint16
}

// NewSnapshot returns an all-blank snapshot of the given grid.
func NewSnapshot(g layout.Grid) *Snapshot {
	return &Snapshot{grid: g, cells: make([]uint16, g.Cells())}
}

// Grid returns the snapshot's grid size.
func (s *Snapshot) Grid() layout.Grid {
	return s.grid
}

// At returns the tile at (row, col), or 0 outside the grid.
func (s *Snapshot) At(row, col int) uint16 {
	if !s.grid.Contains(row, col) {
		return 0
	}
	return s.cells[row*s.grid.Width+col]
}

// Apply writes updates in order. Updates outside the grid are ignored; the
// decoder rejects them before they get here.
func (s *Snapshot) Apply(updates []Update) {
	for _, u := range updates {
		if s.grid.Contains(u.Row, u.Col) {
			s.cells[u.Row*s.grid.Width+u.Col] = u.Tile
		}
	}
}

// Clone returns an independent copy.
func (s *Snapshot) Clone() *Snapshot {
	return &Snapshot{grid: s.grid, cells: slices.Clone(s.cells)}
}

// Equal reports whether both snapshots have the same grid and tiles.
func (s *Snapshot) Equal(o *Snapshot) bool {
	return s.grid == o.grid && slices.Equal(s.cells, o.cells)
}

// MaxTile returns the highest tile index shown.
func (s *Snapshot) MaxTile() uint16 {
	if len(s.cells) == 0 {
		return 0
	}
	return slices.Max(s.cells)
}

// Frame is a materialized snapshot tagged with its video frame index.
type Frame struct {
	Index    uint32
	Snapshot *Snapshot
}

// Replay applies records in order starting from a blank grid and returns one
// frame per record.
func Replay(g layout.Grid, records []Record) []Frame {
	frames := make([]Frame, 0, len(records))
	cur := NewSnapshot(g)
	for _, rec := range records {
		cur.Apply(rec.Updates)
		frames = append(frames, Frame{Index: rec.Index, Snapshot: cur.Clone()})
	}
	return frames
}
