package osdfile

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/gogpu/fpvosd"
	"github.com/gogpu/fpvosd/layout"
)

// Format identifies the recording container.
type Format uint8

const (
	// FormatDJI is the DJI goggles "MSPOSD" recording.
	FormatDJI Format = iota
	// FormatWSA is the Walksnail Avatar recording.
	FormatWSA
)

func (f Format) String() string {
	switch f {
	case FormatDJI:
		return "DJI"
	case FormatWSA:
		return "WSA"
	default:
		return fmt.Sprintf("Format(%d)", uint8(f))
	}
}

const (
	djiSignature     = "MSPOSD\x00"
	djiHeaderLen     = 11 // after the signature
	djiRecordHdrLen  = 8
	djiBufferStride  = 22 // the DJI record buffer is the 60x22 FakeHD grid, column-major
	djiBufferTiles   = 60 * djiBufferStride
	wsaHeaderLen     = 40
	wsaIdentLen      = 4
	wsaRecordHdrLen  = 4
	wsaRecordTiles   = 1060
	wsaFrameRate     = 60
	wsaTimestampUnit = 10_000 // timestamps count 100µs ticks
)

// Header is the decoded file header.
type Header struct {
	Format      Format
	Version     uint16
	FontVariant layout.Variant
	Grid        layout.Grid
	GridKind    layout.GridKind
	TileKind    layout.TileKind
	TileWidth   int
	TileHeight  int
	OffsetX     int
	OffsetY     int
}

// Layout returns the catalog layout for the header's variant and grid.
func (h Header) Layout() layout.Layout {
	return layout.For(h.FontVariant, h.Grid, h.TileKind)
}

// Decoder reads frame records sequentially from a recording.
//
// Decoder owns the running snapshot; every value returned by Next is an
// independent copy.
type Decoder struct {
	r     *bufio.Reader
	hdr   Header
	cur   *Snapshot
	off   int64
	count int // records read, merged ones included
	last  uint32
	buf   []byte

	// lastTS is the raw timestamp of the previous WSA record.
	lastTS uint32
}

// NewDecoder reads and validates the file header from r.
func NewDecoder(r io.Reader) (*Decoder, error) {
	d := &Decoder{r: bufio.NewReaderSize(r, 64<<10)}
	sig, err := d.r.Peek(len(djiSignature))
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if bytes.Equal(sig, []byte(djiSignature)) {
		err = d.readDJIHeader()
	} else {
		err = d.readWSAHeader()
	}
	if err != nil {
		return nil, err
	}
	d.cur = NewSnapshot(d.hdr.Grid)
	fpvosd.Logger().Info("osdfile: detected recording",
		"format", d.hdr.Format,
		"variant", d.hdr.FontVariant,
		"grid", d.hdr.Grid,
		"kind", d.hdr.GridKind,
		"tiles", d.hdr.TileKind)
	return d, nil
}

// Header returns the decoded header.
func (d *Decoder) Header() Header {
	return d.hdr
}

func (d *Decoder) read(n int, what string) ([]byte, error) {
	if cap(d.buf) < n {
		d.buf = make([]byte, n)
	}
	b := d.buf[:n]
	got, err := io.ReadFull(d.r, b)
	d.off += int64(got)
	if err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: truncated %s at offset %d", fpvosd.ErrCorruptFormat, what, d.off)
		}
		return nil, err
	}
	return b, nil
}

func (d *Decoder) readDJIHeader() error {
	b, err := d.read(len(djiSignature)+djiHeaderLen, "header")
	if err != nil {
		return err
	}
	b = b[len(djiSignature):]
	d.hdr = Header{
		Format:      FormatDJI,
		Version:     binary.LittleEndian.Uint16(b[0:2]),
		Grid:        layout.Grid{Width: int(b[2]), Height: int(b[3])},
		TileWidth:   int(b[4]),
		TileHeight:  int(b[5]),
		OffsetX:     int(binary.LittleEndian.Uint16(b[6:8])),
		OffsetY:     int(binary.LittleEndian.Uint16(b[8:10])),
		FontVariant: layout.FromDJIByte(b[10]),
	}
	return d.finishHeader()
}

func (d *Decoder) readWSAHeader() error {
	b, err := d.read(wsaHeaderLen, "header")
	if err != nil {
		return err
	}
	ident := string(b[:wsaIdentLen])
	g := layout.Grid{
		Width:  int(binary.LittleEndian.Uint16(b[36:38])),
		Height: int(binary.LittleEndian.Uint16(b[38:40])),
	}
	if g != layout.GridWSA.Grid() {
		return fmt.Errorf("%w: bad signature", fpvosd.ErrCorruptFormat)
	}
	d.hdr = Header{
		Format:      FormatWSA,
		Grid:        g,
		FontVariant: layout.FromWSAIdent(ident),
	}
	return d.finishHeader()
}

func (d *Decoder) finishHeader() error {
	h := &d.hdr
	if h.Grid.Width == 0 || h.Grid.Height == 0 {
		return fmt.Errorf("%w: empty OSD grid %v", fpvosd.ErrCorruptFormat, h.Grid)
	}
	h.GridKind = layout.DetectGrid(h.Grid)
	h.TileKind = h.GridKind.NativeTile()
	if h.GridKind == layout.GridCustom {
		if k, ok := layout.TileKindForSize(h.TileWidth, h.TileHeight); ok {
			h.TileKind = k
		}
	}
	if h.TileWidth == 0 || h.TileHeight == 0 {
		h.TileWidth, h.TileHeight = h.TileKind.Size()
	}
	return nil
}

// Next decodes the next record, applies it and returns the record together
// with a copy of the resulting snapshot. It returns io.EOF after the last
// record.
//
// WSA records are ordered by their raw timestamp. Records whose timestamps
// round to the same frame index are merged into the first of them.
func (d *Decoder) Next() (Record, *Snapshot, error) {
	for {
		rec, ts, err := d.nextRecord()
		if err != nil {
			return Record{}, nil, err
		}
		n := d.count
		d.count++
		if n > 0 {
			switch {
			case d.hdr.Format == FormatWSA && ts <= d.lastTS:
				return Record{}, nil, fmt.Errorf("%w: record %d has timestamp %d after %d",
					fpvosd.ErrNonMonotonicFrameIndex, n, ts, d.lastTS)
			case d.hdr.Format == FormatWSA && rec.Index == d.last:
				fpvosd.Logger().Debug("osdfile: merged record into previous frame",
					"record", n, "timestamp", ts, "index", rec.Index)
				d.lastTS = ts
				continue
			case rec.Index <= d.last:
				return Record{}, nil, fmt.Errorf("%w: record %d has index %d after %d",
					fpvosd.ErrNonMonotonicFrameIndex, n, rec.Index, d.last)
			}
		}
		d.cur.Apply(rec.Updates)
		d.last = rec.Index
		d.lastTS = ts
		return rec, d.cur.Clone(), nil
	}
}

// atRecordBoundary reports a clean end of stream.
func (d *Decoder) atRecordBoundary() (bool, error) {
	_, err := d.r.Peek(1)
	if errors.Is(err, io.EOF) {
		return true, nil
	}
	return false, err
}

// nextRecord decodes one record. ts is the raw WSA timestamp and 0 for DJI
// recordings.
func (d *Decoder) nextRecord() (rec Record, ts uint32, err error) {
	end, err := d.atRecordBoundary()
	if err != nil {
		return Record{}, 0, err
	}
	if end {
		return Record{}, 0, io.EOF
	}
	switch d.hdr.Format {
	case FormatWSA:
		return d.nextWSARecord()
	default:
		rec, err = d.nextDJIRecord()
		return rec, 0, err
	}
}

func (d *Decoder) nextDJIRecord() (Record, error) {
	start := d.off
	b, err := d.read(djiRecordHdrLen, "record header")
	if err != nil {
		return Record{}, err
	}
	index := binary.LittleEndian.Uint32(b[0:4])
	n := int(binary.LittleEndian.Uint32(b[4:8]))

	stride := d.hdr.Grid.Height
	switch {
	case n == djiBufferTiles:
		stride = djiBufferStride
	case n != d.hdr.Grid.Cells():
		return Record{}, fmt.Errorf("%w: record at offset %d declares %d tiles, want %d or %d",
			fpvosd.ErrCorruptFormat, start, n, djiBufferTiles, d.hdr.Grid.Cells())
	}

	payload, err := d.read(2*n, "record payload")
	if err != nil {
		return Record{}, fmt.Errorf("%w (tile count %d exceeds remaining bytes)", err, n)
	}
	ups, err := d.diff(payload, stride, index)
	if err != nil {
		return Record{}, err
	}
	fpvosd.Logger().Debug("osdfile: record", "index", index, "tiles", n, "changed", len(ups))
	return Record{Index: index, Updates: ups}, nil
}

func (d *Decoder) nextWSARecord() (Record, uint32, error) {
	b, err := d.read(wsaRecordHdrLen, "record header")
	if err != nil {
		return Record{}, 0, err
	}
	ts := binary.LittleEndian.Uint32(b)
	index := wsaFrameIndex(ts)
	payload, err := d.read(2*wsaRecordTiles, "record payload")
	if err != nil {
		return Record{}, 0, err
	}
	ups, err := d.diff(payload, d.hdr.Grid.Height, index)
	if err != nil {
		return Record{}, 0, err
	}
	return Record{Index: index, Updates: ups}, ts, nil
}

// wsaFrameIndex converts a timestamp in 100µs ticks to a 60 fps frame index.
func wsaFrameIndex(ts uint32) uint32 {
	return uint32(math.Round(float64(ts) * wsaFrameRate / wsaTimestampUnit))
}

// diff turns a column-major full-grid payload into the updates that change
// the running snapshot.
func (d *Decoder) diff(payload []byte, stride int, index uint32) ([]Update, error) {
	var ups []Update
	for i := range len(payload) / 2 {
		tile := binary.LittleEndian.Uint16(payload[2*i:])
		col, row := i/stride, i%stride
		if !d.hdr.Grid.Contains(row, col) {
			if tile != 0 {
				return nil, fmt.Errorf("%w: frame %d sets tile %d at row %d col %d of %v grid",
					fpvosd.ErrOutOfBoundsUpdate, index, tile, row, col, d.hdr.Grid)
			}
			continue
		}
		if d.cur.At(row, col) != tile {
			ups = append(ups, Update{Row: row, Col: col, Tile: tile})
		}
	}
	return ups, nil
}
