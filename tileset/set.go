package tileset

import (
	"context"
	"fmt"
	"image"

	xdraw "golang.org/x/image/draw"

	"github.com/gogpu/fpvosd/internal/parallel"
	"github.com/gogpu/fpvosd/layout"
)

// Set is a read-only collection of glyphs indexed by tile index.
type Set struct {
	kind   layout.TileKind
	width  int
	height int
	glyphs []*image.NRGBA // nil for fully transparent glyphs
}

// New builds a set from glyphs that all measure width x height. Fully
// transparent glyphs are dropped so renderers can skip them.
func New(kind layout.TileKind, width, height int, glyphs []*image.NRGBA) (*Set, error) {
	s := &Set{kind: kind, width: width, height: height, glyphs: make([]*image.NRGBA, len(glyphs))}
	for i, g := range glyphs {
		if g == nil {
			continue
		}
		if g.Rect.Dx() != width || g.Rect.Dy() != height {
			return nil, fmt.Errorf("tileset: glyph %d is %dx%d, want %dx%d", i, g.Rect.Dx(), g.Rect.Dy(), width, height)
		}
		if !transparent(g) {
			s.glyphs[i] = g
		}
	}
	return s, nil
}

func transparent(img *image.NRGBA) bool {
	for i := 3; i < len(img.Pix); i += 4 {
		if img.Pix[i] != 0 {
			return false
		}
	}
	return true
}

// Len returns the number of tile indices covered by the set.
func (s *Set) Len() int {
	return len(s.glyphs)
}

// Kind returns the tile kind the glyphs were drawn for.
func (s *Set) Kind() layout.TileKind {
	return s.kind
}

// TileSize returns the glyph size in pixels.
func (s *Set) TileSize() (width, height int) {
	return s.width, s.height
}

// Glyph returns the glyph for tile index i, or nil when the glyph is blank
// or i is outside the set.
func (s *Set) Glyph(i uint16) *image.NRGBA {
	if int(i) >= len(s.glyphs) {
		return nil
	}
	return s.glyphs[i]
}

// Scaled returns a copy of the set with every glyph resampled to
// width x height. It returns s itself when the size already matches.
func (s *Set) Scaled(width, height int) (*Set, error) {
	if width == s.width && height == s.height {
		return s, nil
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("tileset: invalid glyph size %dx%d", width, height)
	}
	out := &Set{kind: s.kind, width: width, height: height, glyphs: make([]*image.NRGBA, len(s.glyphs))}
	dstRect := image.Rect(0, 0, width, height)
	pool := parallel.NewWorkerPool(0)
	_ = pool.ForEach(context.Background(), len(s.glyphs), func(_ context.Context, i int) error {
		g := s.glyphs[i]
		if g == nil {
			return nil
		}
		dst := image.NewNRGBA(dstRect)
		xdraw.CatmullRom.Scale(dst, dstRect, g, g.Rect, xdraw.Src, nil)
		out.glyphs[i] = dst
		return nil
	})
	return out, nil
}

// fromStrip cuts a vertical strip of glyphs.
func fromStrip(kind layout.TileKind, img *image.NRGBA) (*Set, error) {
	w, h := kind.Size()
	b := img.Rect
	if b.Dx() != w || b.Dy()%h != 0 || b.Dy() == 0 {
		return nil, fmt.Errorf("tileset: %dx%d strip is not a column of %dx%d glyphs", b.Dx(), b.Dy(), w, h)
	}
	glyphs := make([]*image.NRGBA, b.Dy()/h)
	for i := range glyphs {
		r := image.Rect(b.Min.X, b.Min.Y+i*h, b.Max.X, b.Min.Y+(i+1)*h)
		glyphs[i] = img.SubImage(r).(*image.NRGBA)
	}
	return New(kind, w, h, rebase(glyphs))
}

// rebase copies sub-images to zero-origin images so glyph rectangles are
// uniform.
func rebase(glyphs []*image.NRGBA) []*image.NRGBA {
	for i, g := range glyphs {
		if g.Rect.Min == (image.Point{}) {
			continue
		}
		dst := image.NewNRGBA(image.Rect(0, 0, g.Rect.Dx(), g.Rect.Dy()))
		xdraw.Copy(dst, image.Point{}, g, g.Rect, xdraw.Src, nil)
		glyphs[i] = dst
	}
	return glyphs
}
