package osdfile

import (
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"path/filepath"
	"sort"

	"github.com/gogpu/fpvosd"
	"github.com/gogpu/fpvosd/layout"
)

// File is a fully decoded recording. It is immutable after Decode returns.
type File struct {
	Header  Header
	Records []Record
}

// Option configures Open and Decode.
type Option func(*decodeOptions)

type decodeOptions struct {
	checkHeader func(Header) error
}

// WithHeaderCheck runs fn on the header before any record is decoded. An
// error from fn aborts decoding and is returned unchanged.
func WithHeaderCheck(fn func(Header) error) Option {
	return func(o *decodeOptions) {
		o.checkHeader = fn
	}
}

// Open decodes the recording at path.
func Open(path string, opts ...Option) (*File, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("osdfile: open: %w", err)
	}
	defer func() { _ = f.Close() }()

	file, err := Decode(f, opts...)
	if err != nil {
		return nil, fmt.Errorf("osdfile: %s: %w", path, err)
	}
	return file, nil
}

// Decode reads a whole recording. Any malformed record aborts decoding.
func Decode(r io.Reader, opts ...Option) (*File, error) {
	var o decodeOptions
	for _, opt := range opts {
		opt(&o)
	}
	d, err := NewDecoder(r)
	if err != nil {
		return nil, err
	}
	if o.checkHeader != nil {
		if err := o.checkHeader(d.Header()); err != nil {
			return nil, err
		}
	}
	f := &File{Header: d.Header()}
	for {
		rec, _, err := d.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		f.Records = append(f.Records, rec)
	}
	fpvosd.Logger().Info("osdfile: decoded", "frames", len(f.Records))
	return f, nil
}

// Len returns the number of frame records.
func (f *File) Len() int {
	return len(f.Records)
}

// FirstIndex returns the first record's frame index; ok is false if the file
// has no records.
func (f *File) FirstIndex() (idx uint32, ok bool) {
	if len(f.Records) == 0 {
		return 0, false
	}
	return f.Records[0].Index, true
}

// LastIndex returns the last record's frame index.
func (f *File) LastIndex() (idx uint32, ok bool) {
	if len(f.Records) == 0 {
		return 0, false
	}
	return f.Records[len(f.Records)-1].Index, true
}

// Frames materializes one snapshot per record in frame order.
func (f *File) Frames() []Frame {
	return Replay(f.Header.Grid, f.Records)
}

// All yields (frame index, snapshot) pairs lazily. Each iteration starts from
// a blank grid, so the sequence can be ranged over any number of times; the
// yielded snapshots are independent copies.
func (f *File) All() iter.Seq2[uint32, *Snapshot] {
	return func(yield func(uint32, *Snapshot) bool) {
		cur := NewSnapshot(f.Header.Grid)
		for _, rec := range f.Records {
			cur.Apply(rec.Updates)
			if !yield(rec.Index, cur.Clone()) {
				return
			}
		}
	}
}

// SnapshotAt reconstructs, from scratch, the grid shown at video frame index
// idx: the result of every record whose index is <= idx. ok is false when
// idx precedes the first record.
func (f *File) SnapshotAt(idx uint32) (s *Snapshot, ok bool) {
	n := sort.Search(len(f.Records), func(i int) bool { return f.Records[i].Index > idx })
	if n == 0 {
		return nil, false
	}
	s = NewSnapshot(f.Header.Grid)
	for _, rec := range f.Records[:n] {
		s.Apply(rec.Updates)
	}
	return s, true
}

// HighestTile returns the highest tile index any record uses.
func (f *File) HighestTile() uint16 {
	var hi uint16
	for _, rec := range f.Records {
		for _, u := range rec.Updates {
			hi = max(hi, u.Tile)
		}
	}
	return hi
}

// Info summarizes a recording for display.
type Info struct {
	Format      Format
	FontVariant layout.Variant
	Grid        layout.Grid
	GridKind    layout.GridKind
	TileKind    layout.TileKind
	FrameCount  int
	FirstIndex  uint32
	LastIndex   uint32
	HighestTile uint16
}

// Info returns the recording summary.
func (f *File) Info() Info {
	first, _ := f.FirstIndex()
	last, _ := f.LastIndex()
	return Info{
		Format:      f.Header.Format,
		FontVariant: f.Header.FontVariant,
		Grid:        f.Header.Grid,
		GridKind:    f.Header.GridKind,
		TileKind:    f.Header.TileKind,
		FrameCount:  len(f.Records),
		FirstIndex:  first,
		LastIndex:   last,
		HighestTile: f.HighestTile(),
	}
}
