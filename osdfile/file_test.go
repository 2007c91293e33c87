package osdfile

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/gogpu/fpvosd"
	"github.com/gogpu/fpvosd/layout"
)

// randomRecords builds a deterministic recording with frequent partial
// changes on a 4x3 grid.
func randomRecords() []djiRecord {
	const w, h = 4, 3
	var recs []djiRecord
	cells := make([]uint16, w*h)
	seed := uint32(7)
	for i := range 20 {
		seed = seed*1103515245 + 12345
		cells[int(seed>>16)%len(cells)] = uint16(seed>>8) % 512
		recs = append(recs, djiRecord{uint32(i * 3), colMajor(w, h, cells)})
	}
	return recs
}

func TestReplayMatchesSnapshotAt(t *testing.T) {
	f, err := Decode(bytes.NewReader(djiFile(4, 3, 1, randomRecords()...)))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	frames := f.Frames()
	if len(frames) != f.Len() {
		t.Fatalf("len(Frames()) = %d, want %d", len(frames), f.Len())
	}
	for _, fr := range frames {
		s, ok := f.SnapshotAt(fr.Index)
		if !ok {
			t.Fatalf("SnapshotAt(%d) ok = false", fr.Index)
		}
		if !s.Equal(fr.Snapshot) {
			t.Errorf("SnapshotAt(%d) differs from replayed frame", fr.Index)
		}
		// Indices between records show the earlier record.
		if s2, ok := f.SnapshotAt(fr.Index + 1); !ok || !s2.Equal(fr.Snapshot) {
			t.Errorf("SnapshotAt(%d) differs from frame %d", fr.Index+1, fr.Index)
		}
	}

	// Replay is repeatable.
	again := f.Frames()
	for i := range frames {
		if !again[i].Snapshot.Equal(frames[i].Snapshot) {
			t.Errorf("second replay differs at frame %d", frames[i].Index)
		}
	}
}

func TestAllMatchesFrames(t *testing.T) {
	f, err := Decode(bytes.NewReader(djiFile(4, 3, 1, randomRecords()...)))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	frames := f.Frames()
	i := 0
	for idx, s := range f.All() {
		if idx != frames[i].Index || !s.Equal(frames[i].Snapshot) {
			t.Errorf("All() item %d = %d, want %d", i, idx, frames[i].Index)
		}
		i++
	}
	if i != len(frames) {
		t.Errorf("All() yielded %d items, want %d", i, len(frames))
	}

	// Early break.
	n := 0
	for range f.All() {
		n++
		if n == 2 {
			break
		}
	}
	if n != 2 {
		t.Errorf("break after 2, got %d", n)
	}
}

func TestSnapshotAtBeforeFirst(t *testing.T) {
	data := djiFile(3, 2, 2, djiRecord{5, fill(6, 1)})
	f, err := Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if _, ok := f.SnapshotAt(4); ok {
		t.Error("SnapshotAt(4) ok = true before first record")
	}
}

func TestFileInfo(t *testing.T) {
	f, err := Decode(bytes.NewReader(scenarioFile()))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	info := f.Info()
	want := Info{
		Format:      FormatDJI,
		FontVariant: layout.INAV,
		Grid:        layout.Grid{Width: 3, Height: 2},
		GridKind:    layout.GridCustom,
		TileKind:    layout.TileSD,
		FrameCount:  2,
		FirstIndex:  0,
		LastIndex:   5,
		HighestTile: 2,
	}
	if info != want {
		t.Errorf("Info() = %+v, want %+v", info, want)
	}
}

func TestOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rec.osd")
	if err := os.WriteFile(path, scenarioFile(), 0o600); err != nil {
		t.Fatal(err)
	}
	f, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if f.Len() != 2 {
		t.Errorf("Len() = %d, want 2", f.Len())
	}

	if _, err := Open(filepath.Join(t.TempDir(), "missing.osd")); err == nil {
		t.Error("Open(missing) error = nil")
	}
}

func TestDecodeHeaderCheck(t *testing.T) {
	errRejected := errors.New("rejected")
	var seen Header
	_, err := Decode(bytes.NewReader(scenarioFile()), WithHeaderCheck(func(h Header) error {
		seen = h
		return errRejected
	}))
	if !errors.Is(err, errRejected) {
		t.Fatalf("Decode() error = %v, want the check's error", err)
	}
	if seen.Format != FormatDJI {
		t.Errorf("check saw header %+v", seen)
	}

	// The check runs before records: a corrupt record is never reached.
	data := append(scenarioFile(), 1, 2, 3)
	if _, err := Decode(bytes.NewReader(data), WithHeaderCheck(func(Header) error { return errRejected })); !errors.Is(err, errRejected) {
		t.Errorf("Decode(corrupt) error = %v, want the check's error", err)
	}
	if _, err := Decode(bytes.NewReader(data), WithHeaderCheck(func(Header) error { return nil })); !errors.Is(err, fpvosd.ErrCorruptFormat) {
		t.Errorf("Decode(corrupt) with passing check error = %v, want ErrCorruptFormat", err)
	}
}

func TestSnapshotApply(t *testing.T) {
	s := NewSnapshot(layout.Grid{Width: 2, Height: 2})
	s.Apply([]Update{{0, 1, 5}, {1, 0, 6}, {9, 9, 7}})
	if s.At(0, 1) != 5 || s.At(1, 0) != 6 || s.At(9, 9) != 0 {
		t.Errorf("Apply() cells = %d %d %d", s.At(0, 1), s.At(1, 0), s.At(9, 9))
	}
	c := s.Clone()
	c.Apply([]Update{{0, 1, 1}})
	if s.At(0, 1) != 5 {
		t.Error("Clone() shares storage")
	}
	if s.MaxTile() != 6 {
		t.Errorf("MaxTile() = %d, want 6", s.MaxTile())
	}
}
