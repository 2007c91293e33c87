package tileset

import (
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/gogpu/fpvosd"
	imgio "github.com/gogpu/fpvosd/internal/image"
	"github.com/gogpu/fpvosd/layout"
)

// binPage returns a raw page where tile i is filled with gray level i and
// tile 0 is transparent.
func binPage(k layout.TileKind) []byte {
	w, h := k.Size()
	tileBytes := w * h * 4
	data := make([]byte, PageTiles*tileBytes)
	for i := 1; i < PageTiles; i++ {
		tile := data[i*tileBytes : (i+1)*tileBytes]
		for p := 0; p < len(tile); p += 4 {
			tile[p], tile[p+1], tile[p+2], tile[p+3] = byte(i), byte(i), byte(i), 255
		}
	}
	return data
}

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestLoadBin(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "font_inav_hd.bin"), binPage(layout.TileHD))

	s, err := Dir(dir).Load(layout.INAV, layout.TileHD)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if s.Len() != PageTiles {
		t.Errorf("Len() = %d, want %d", s.Len(), PageTiles)
	}
	if w, h := s.TileSize(); w != 36 || h != 54 {
		t.Errorf("TileSize() = %dx%d, want 36x54", w, h)
	}
	if s.Glyph(0) != nil {
		t.Error("Glyph(0) should be nil for a transparent tile")
	}
	if g := s.Glyph(7); g == nil || g.NRGBAAt(3, 3) != (color.NRGBA{7, 7, 7, 255}) {
		t.Errorf("Glyph(7) = %v", g)
	}
	if s.Glyph(1000) != nil {
		t.Error("Glyph(1000) should be nil past the end")
	}
}

func TestLoadExtendedPage(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "font.bin"), binPage(layout.TileSD))
	writeFile(t, filepath.Join(dir, "font_2.bin"), binPage(layout.TileSD))

	s, err := Dir(dir).LoadIdent("", layout.TileSD)
	if err != nil {
		t.Fatalf("LoadIdent() error = %v", err)
	}
	if s.Len() != 2*PageTiles {
		t.Errorf("Len() = %d, want %d", s.Len(), 2*PageTiles)
	}
	if g := s.Glyph(PageTiles + 3); g == nil || g.NRGBAAt(0, 0).R != 3 {
		t.Errorf("extended glyph 3 = %v", g)
	}
}

func TestLoadFallbackToGeneric(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "font.bin"), binPage(layout.TileSD))

	s, err := Dir(dir).Load(layout.Ardupilot, layout.TileSD)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if s.Kind() != layout.TileSD {
		t.Errorf("Kind() = %v, want SD", s.Kind())
	}
}

func TestLoadMissing(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "font.bin"), binPage(layout.TileSD))

	_, err := Dir(dir).Load(layout.INAV, layout.TileHD)
	if !errors.Is(err, fpvosd.ErrAssetMissing) {
		t.Errorf("Load() error = %v, want ErrAssetMissing", err)
	}
}

func TestLoadBadBinSize(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "font_bf.bin"), make([]byte, 100))

	_, err := Dir(dir).Load(layout.Betaflight, layout.TileSD)
	if err == nil || errors.Is(err, fpvosd.ErrAssetMissing) {
		t.Errorf("Load() error = %v, want size error without fallback", err)
	}
}

func TestLoadPNGStrip(t *testing.T) {
	dir := t.TempDir()
	w, h := layout.TileSD.Size()
	strip := image.NewNRGBA(image.Rect(0, 0, w, 3*h))
	for y := h; y < 3*h; y++ {
		for x := range w {
			strip.SetNRGBA(x, y, color.NRGBA{uint8(y / h * 100), 0, 0, 255})
		}
	}
	if err := imgio.SavePNG(filepath.Join(dir, "font_ultra.png"), strip); err != nil {
		t.Fatal(err)
	}

	s, err := Dir(dir).Load(layout.KISSUltra, layout.TileSD)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if s.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", s.Len())
	}
	if s.Glyph(0) != nil {
		t.Error("Glyph(0) should be blank")
	}
	g := s.Glyph(2)
	if g == nil || g.Rect.Min != (image.Point{}) || g.NRGBAAt(0, 0).R != 200 {
		t.Errorf("Glyph(2) = %v", g)
	}
}

func TestLoadStripWrongWidth(t *testing.T) {
	dir := t.TempDir()
	if err := imgio.SavePNG(filepath.Join(dir, "font.png"), image.NewNRGBA(image.Rect(0, 0, 30, 36))); err != nil {
		t.Fatal(err)
	}
	if _, err := Dir(dir).LoadIdent("", layout.TileSD); err == nil {
		t.Error("LoadIdent() error = nil for a 30 px wide strip")
	}
}

func TestScaled(t *testing.T) {
	glyph := image.NewNRGBA(image.Rect(0, 0, 24, 36))
	for i := 3; i < len(glyph.Pix); i += 4 {
		glyph.Pix[i-3], glyph.Pix[i] = 255, 255
	}
	s, err := New(layout.TileSD, 24, 36, []*image.NRGBA{nil, glyph})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	same, _ := s.Scaled(24, 36)
	if same != s {
		t.Error("Scaled() to the same size should return the receiver")
	}

	big, err := s.Scaled(48, 72)
	if err != nil {
		t.Fatalf("Scaled() error = %v", err)
	}
	if w, h := big.TileSize(); w != 48 || h != 72 {
		t.Errorf("TileSize() = %dx%d, want 48x72", w, h)
	}
	if big.Glyph(0) != nil {
		t.Error("blank glyph should stay nil")
	}
	g := big.Glyph(1)
	if g == nil || g.Rect.Dx() != 48 {
		t.Fatalf("scaled glyph = %v", g)
	}
	if c := g.NRGBAAt(24, 36); c.R < 250 || c.G > 5 || c.A < 250 {
		t.Errorf("scaled glyph center = %v, want opaque red", c)
	}
	if s.Glyph(1).Rect.Dx() != 24 {
		t.Error("Scaled() modified the source set")
	}

	if _, err := s.Scaled(0, 10); err == nil {
		t.Error("Scaled(0, 10) error = nil")
	}
}

func TestNewRejectsMismatchedGlyph(t *testing.T) {
	_, err := New(layout.TileSD, 24, 36, []*image.NRGBA{image.NewNRGBA(image.Rect(0, 0, 10, 10))})
	if err == nil {
		t.Error("New() error = nil for wrong glyph size")
	}
}

func TestCache(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "font.bin")
	writeFile(t, path, binPage(layout.TileSD))

	c := NewCache(0)
	a, err := c.Load(Dir(dir), layout.Generic, layout.TileSD, 12, 18)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if w, h := a.TileSize(); w != 12 || h != 18 {
		t.Errorf("TileSize() = %dx%d, want 12x18", w, h)
	}

	// The font is not read again.
	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	b, err := c.Load(Dir(dir), layout.Generic, layout.TileSD, 12, 18)
	if err != nil || b != a {
		t.Errorf("second Load() = %p, %v, want cached %p", b, err, a)
	}

	if _, err := c.Load(Dir(dir), layout.Generic, layout.TileSD, 24, 36); !errors.Is(err, fpvosd.ErrAssetMissing) {
		t.Errorf("Load() other size error = %v, want ErrAssetMissing", err)
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}
