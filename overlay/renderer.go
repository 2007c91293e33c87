package overlay

import (
	"fmt"
	"image"

	"github.com/gogpu/fpvosd"
	"github.com/gogpu/fpvosd/layout"
	"github.com/gogpu/fpvosd/osdfile"
	"github.com/gogpu/fpvosd/scaling"
	"github.com/gogpu/fpvosd/tileset"
)

// Renderer draws snapshots into frames of the planned size.
//
// Thread safety: a Renderer is immutable after NewRenderer and safe for
// concurrent use.
type Renderer struct {
	lay     layout.Layout
	tiles   *tileset.Set
	dec     scaling.Decision
	regions []layout.Region // clipped to the grid
	items   []layout.Item
}

// NewRenderer validates the configuration and returns a renderer. tiles must
// already be scaled to the decision's tile size.
func NewRenderer(lay layout.Layout, tiles *tileset.Set, dec scaling.Decision, opts ...Option) (*Renderer, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	if tw, th := tiles.TileSize(); tw != dec.TileWidth || th != dec.TileHeight {
		return nil, fmt.Errorf("overlay: glyphs are %dx%d, decision needs %dx%d", tw, th, dec.TileWidth, dec.TileHeight)
	}
	if w, h := lay.Grid.Pixels(dec.TileWidth, dec.TileHeight); w > dec.Width || h > dec.Height {
		return nil, fmt.Errorf("overlay: %v grid needs %dx%d, frame is %dx%d", lay.Grid, w, h, dec.Width, dec.Height)
	}

	r := &Renderer{lay: lay, tiles: tiles, dec: dec}
	for _, reg := range o.regions {
		if c, ok := reg.Clip(lay.Grid); ok {
			r.regions = append(r.regions, c)
		}
	}
	if err := lay.ValidateItems(o.items); err != nil {
		return nil, err
	}
	for _, name := range o.items {
		it, _ := lay.Item(name)
		r.items = append(r.items, it)
	}

	fpvosd.Logger().Debug("overlay: renderer ready",
		"variant", lay.Variant, "grid", lay.Grid, "decision", dec.String(),
		"hiddenRegions", len(r.regions), "hiddenItems", len(r.items))
	return r, nil
}

// Bounds returns the frame rectangle.
func (r *Renderer) Bounds() image.Rectangle {
	return image.Rect(0, 0, r.dec.Width, r.dec.Height)
}

// Decision returns the scaling decision the renderer draws with.
func (r *Renderer) Decision() scaling.Decision {
	return r.dec
}

// TileCount returns the number of glyphs available to the renderer.
func (r *Renderer) TileCount() int {
	return r.tiles.Len()
}

// Render allocates a transparent frame and draws s into it.
func (r *Renderer) Render(s *osdfile.Snapshot) *image.NRGBA {
	dst := image.NewNRGBA(r.Bounds())
	r.draw(dst, s)
	return dst
}

// RenderInto clears dst and draws s into it. dst must have the renderer's
// bounds.
func (r *Renderer) RenderInto(dst *image.NRGBA, s *osdfile.Snapshot) error {
	if dst.Rect != r.Bounds() {
		return fmt.Errorf("overlay: destination is %v, want %v", dst.Rect, r.Bounds())
	}
	clear(dst.Pix)
	r.draw(dst, s)
	return nil
}

// HiddenRegions resolves the hidden regions for s: the static regions plus
// the current extent of every hidden item.
func (r *Renderer) HiddenRegions(s *osdfile.Snapshot) []layout.Region {
	regions := append([]layout.Region(nil), r.regions...)
	for _, it := range r.items {
		regions = append(regions, it.Regions(r.lay.Grid, s.At)...)
	}
	return regions
}

func (r *Renderer) draw(dst *image.NRGBA, s *osdfile.Snapshot) {
	g := r.lay.Grid
	hidden := r.mask(s)
	tw, th := r.dec.TileWidth, r.dec.TileHeight
	rowBytes := tw * 4

	for row := range g.Height {
		for col := range g.Width {
			if hidden != nil && hidden[row*g.Width+col] {
				continue
			}
			glyph := r.tiles.Glyph(s.At(row, col))
			if glyph == nil {
				continue
			}
			// Cells never overlap and dst starts transparent, so glyph rows
			// are copied verbatim.
			x0, y0 := col*tw, row*th
			for y := range th {
				d := dst.PixOffset(x0, y0+y)
				o := glyph.PixOffset(0, y)
				copy(dst.Pix[d:d+rowBytes], glyph.Pix[o:o+rowBytes])
			}
		}
	}
}

// mask returns a row-major hidden-cell mask, or nil when nothing is hidden.
func (r *Renderer) mask(s *osdfile.Snapshot) []bool {
	regions := r.HiddenRegions(s)
	if len(regions) == 0 {
		return nil
	}
	g := r.lay.Grid
	hidden := make([]bool, g.Cells())
	for _, reg := range regions {
		for row := reg.Row; row < reg.Row+reg.Height; row++ {
			for col := reg.Col; col < reg.Col+reg.Width; col++ {
				hidden[row*g.Width+col] = true
			}
		}
	}
	return hidden
}
