package overlay

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/gogpu/fpvosd"
	"github.com/gogpu/fpvosd/layout"
	"github.com/gogpu/fpvosd/osdfile"
	"github.com/gogpu/fpvosd/scaling"
	"github.com/gogpu/fpvosd/tileset"
)

const tw, th = 4, 6

var palette = []color.NRGBA{
	{},
	{255, 0, 0, 255},
	{0, 255, 0, 255},
	{0, 0, 255, 128},
}

func testTiles(t *testing.T) *tileset.Set {
	t.Helper()
	glyphs := make([]*image.NRGBA, len(palette))
	for i, c := range palette {
		g := image.NewNRGBA(image.Rect(0, 0, tw, th))
		for y := range th {
			for x := range tw {
				g.SetNRGBA(x, y, c)
			}
		}
		glyphs[i] = g
	}
	s, err := tileset.New(layout.TileSD, tw, th, glyphs)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

// scenario is the 3x2 INAV recording with gpslat pinned at (0,0).
func scenario() (layout.Layout, []osdfile.Frame) {
	g := layout.Grid{Width: 3, Height: 2}
	lay := layout.Layout{
		Variant: layout.INAV,
		Grid:    g,
		Native:  layout.TileSD,
		Items:   []layout.Item{{Name: "gpslat", Cells: []layout.Cell{{Row: 0, Col: 0}}}},
	}
	var all []osdfile.Update
	for row := range 2 {
		for col := range 3 {
			all = append(all, osdfile.Update{Row: row, Col: col, Tile: 1})
		}
	}
	frames := osdfile.Replay(g, []osdfile.Record{
		{Index: 0, Updates: all},
		{Index: 5, Updates: []osdfile.Update{{Row: 0, Col: 0, Tile: 2}}},
	})
	return lay, frames
}

func decisionFor(g layout.Grid) scaling.Decision {
	return scaling.Decision{TileKind: layout.TileSD, Scale: 1, TileWidth: tw, TileHeight: th, Width: g.Width * tw, Height: g.Height * th}
}

// cellColor returns the color at the center of a cell.
func cellColor(img *image.NRGBA, row, col int) color.NRGBA {
	return img.NRGBAAt(col*tw+tw/2, row*th+th/2)
}

func TestRenderScenario(t *testing.T) {
	lay, frames := scenario()
	r, err := NewRenderer(lay, testTiles(t), decisionFor(lay.Grid))
	if err != nil {
		t.Fatalf("NewRenderer() error = %v", err)
	}

	f0 := r.Render(frames[0].Snapshot)
	if f0.Rect != image.Rect(0, 0, 12, 12) {
		t.Fatalf("frame bounds = %v, want 12x12", f0.Rect)
	}
	for row := range 2 {
		for col := range 3 {
			if c := cellColor(f0, row, col); c != palette[1] {
				t.Errorf("frame 0 cell (%d,%d) = %v, want tile 1", row, col, c)
			}
		}
	}

	f5 := r.Render(frames[1].Snapshot)
	for row := range 2 {
		for col := range 3 {
			want := palette[1]
			if row == 0 && col == 0 {
				want = palette[2]
			}
			if c := cellColor(f5, row, col); c != want {
				t.Errorf("frame 5 cell (%d,%d) = %v, want %v", row, col, c, want)
			}
		}
	}
}

func TestRenderHiddenItem(t *testing.T) {
	lay, frames := scenario()
	tiles := testTiles(t)
	dec := decisionFor(lay.Grid)

	plain, _ := NewRenderer(lay, tiles, dec)
	masked, err := NewRenderer(lay, tiles, dec, WithHiddenItems("gpslat"))
	if err != nil {
		t.Fatalf("NewRenderer() error = %v", err)
	}

	ref := plain.Render(frames[1].Snapshot)
	got := masked.Render(frames[1].Snapshot)
	for y := range got.Rect.Dy() {
		for x := range got.Rect.Dx() {
			inHidden := x < tw && y < th
			c := got.NRGBAAt(x, y)
			switch {
			case inHidden && c.A != 0:
				t.Fatalf("pixel (%d,%d) = %v inside hidden item, want transparent", x, y, c)
			case !inHidden && c != ref.NRGBAAt(x, y):
				t.Fatalf("pixel (%d,%d) = %v, unmasked render has %v", x, y, c, ref.NRGBAAt(x, y))
			}
		}
	}
}

func TestRenderHiddenRegion(t *testing.T) {
	g := layout.Grid{Width: 5, Height: 4}
	lay := layout.Layout{Variant: layout.Betaflight, Grid: g, Native: layout.TileSD}
	s := osdfile.NewSnapshot(g)
	var ups []osdfile.Update
	for row := range g.Height {
		for col := range g.Width {
			ups = append(ups, osdfile.Update{Row: row, Col: col, Tile: uint16(1 + (row+col)%3)})
		}
	}
	s.Apply(ups)

	tiles := testTiles(t)
	dec := decisionFor(g)
	region := layout.Region{Col: 1, Row: 2, Width: 3, Height: 5} // clipped at the bottom
	plain, _ := NewRenderer(lay, tiles, dec)
	masked, err := NewRenderer(lay, tiles, dec, WithHiddenRegions(region))
	if err != nil {
		t.Fatalf("NewRenderer() error = %v", err)
	}

	ref := plain.Render(s)
	got := masked.Render(s)
	box := image.Rect(1*tw, 2*th, 4*tw, 4*th)
	for y := range got.Rect.Dy() {
		for x := range got.Rect.Dx() {
			p := image.Pt(x, y)
			c := got.NRGBAAt(x, y)
			if p.In(box) {
				if c != (color.NRGBA{}) {
					t.Fatalf("pixel %v = %v inside hidden region, want transparent", p, c)
				}
			} else if c != ref.NRGBAAt(x, y) {
				t.Fatalf("pixel %v = %v outside hidden region, want %v", p, c, ref.NRGBAAt(x, y))
			}
		}
	}
}

func TestRenderMarkerItem(t *testing.T) {
	g := layout.Grid{Width: 12, Height: 2}
	lay := layout.For(layout.INAV, g, layout.TileSD)
	s := osdfile.NewSnapshot(g)
	// gpslat marker at (1,1) hides 10 cells starting there.
	ups := []osdfile.Update{{Row: 1, Col: 1, Tile: 0x03}}
	for col := 2; col < 12; col++ {
		ups = append(ups, osdfile.Update{Row: 1, Col: col, Tile: 1})
	}
	ups = append(ups, osdfile.Update{Row: 0, Col: 5, Tile: 2})
	s.Apply(ups)

	r, err := NewRenderer(lay, testTiles(t), decisionFor(g), WithHiddenItems("gpslat"))
	if err != nil {
		t.Fatalf("NewRenderer() error = %v", err)
	}
	img := r.Render(s)
	for col := 1; col < 11; col++ {
		if c := cellColor(img, 1, col); c.A != 0 {
			t.Errorf("cell (1,%d) = %v, want hidden", col, c)
		}
	}
	if c := cellColor(img, 1, 11); c != palette[1] {
		t.Errorf("cell (1,11) = %v, want visible", c)
	}
	if c := cellColor(img, 0, 5); c != palette[2] {
		t.Errorf("cell (0,5) = %v, want visible", c)
	}
}

func TestNewRendererUnknownItem(t *testing.T) {
	lay, _ := scenario()
	_, err := NewRenderer(lay, testTiles(t), decisionFor(lay.Grid), WithHiddenItems("rssi"))
	if !errors.Is(err, fpvosd.ErrUnknownOsdItem) {
		t.Fatalf("NewRenderer() error = %v, want ErrUnknownOsdItem", err)
	}
	var uie *layout.UnknownItemError
	if !errors.As(err, &uie) || uie.Variant != layout.INAV {
		t.Errorf("error %v does not name the INAV variant", err)
	}
}

func TestNewRendererSizeMismatch(t *testing.T) {
	lay, _ := scenario()
	dec := decisionFor(lay.Grid)
	dec.TileWidth = 8
	if _, err := NewRenderer(lay, testTiles(t), dec); err == nil {
		t.Error("NewRenderer() error = nil for mismatched glyph size")
	}
	dec = decisionFor(lay.Grid)
	dec.Width = 5
	if _, err := NewRenderer(lay, testTiles(t), dec); err == nil {
		t.Error("NewRenderer() error = nil for a frame smaller than the grid")
	}
}

func TestRenderInto(t *testing.T) {
	lay, frames := scenario()
	r, _ := NewRenderer(lay, testTiles(t), decisionFor(lay.Grid))

	dst := image.NewNRGBA(r.Bounds())
	for i := range dst.Pix {
		dst.Pix[i] = 0x7f
	}
	if err := r.RenderInto(dst, frames[1].Snapshot); err != nil {
		t.Fatalf("RenderInto() error = %v", err)
	}
	want := r.Render(frames[1].Snapshot)
	if string(dst.Pix) != string(want.Pix) {
		t.Error("RenderInto() differs from Render()")
	}

	if err := r.RenderInto(image.NewNRGBA(image.Rect(0, 0, 1, 1)), frames[0].Snapshot); err == nil {
		t.Error("RenderInto() error = nil for wrong destination size")
	}
}

func TestRenderBlankTile(t *testing.T) {
	g := layout.Grid{Width: 2, Height: 1}
	lay := layout.Layout{Variant: layout.Generic, Grid: g}
	r, _ := NewRenderer(lay, testTiles(t), decisionFor(g))
	img := r.Render(osdfile.NewSnapshot(g))
	for _, p := range img.Pix {
		if p != 0 {
			t.Fatal("blank snapshot rendered non-transparent pixels")
		}
	}
}

func TestWindowSelect(t *testing.T) {
	_, frames := scenario() // indices 0 and 5
	end := uint32(6)

	tests := []struct {
		name string
		w    Window
		want []uint32
	}{
		{"identity", Window{}, []uint32{0, 5}},
		{"shift forward", Window{Shift: 10}, []uint32{10, 15}},
		{"shift back drops negatives", Window{Shift: -3}, []uint32{2}},
		{"start omits earlier", Window{Shift: 2, Start: 3}, []uint32{7}},
		{"end clips", Window{Shift: 1, End: &end}, []uint32{1, 6}},
		{"end excludes", Window{Shift: 2, End: &end}, []uint32{2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.w.Select(frames)
			if len(got) != len(tt.want) {
				t.Fatalf("Select() = %d frames, want %d", len(got), len(tt.want))
			}
			for i, s := range got {
				if s.Number != tt.want[i] {
					t.Errorf("frame %d number = %d, want %d", i, s.Number, tt.want[i])
				}
				if int64(s.Number) != int64(s.Frame.Index)+int64(tt.w.Shift) {
					t.Errorf("number %d != index %d + shift %d", s.Number, s.Frame.Index, tt.w.Shift)
				}
			}
		})
	}
}

func TestWindowValidate(t *testing.T) {
	end := uint32(3)
	if err := (Window{Start: 4, End: &end}).Validate(); err == nil {
		t.Error("Validate() error = nil for end before start")
	}
	if err := (Window{Start: 3, End: &end}).Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}
