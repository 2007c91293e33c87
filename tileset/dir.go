package tileset

import (
	"errors"
	"fmt"
	"image"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/gogpu/fpvosd"
	imgio "github.com/gogpu/fpvosd/internal/image"
	"github.com/gogpu/fpvosd/layout"
)

// PageTiles is the number of tiles in one .bin font page.
const PageTiles = 256

// imageExts are tried in order when no .bin page exists.
var imageExts = []string{".png", ".bmp", ".webp"}

// Dir is a font directory.
type Dir string

// Load reads the glyphs for variant v and tile kind k.
//
// The variant's own font is tried first. When it is absent, or the variant
// has no font ident, the generic font is used instead and a warning is
// logged. A missing generic font fails with fpvosd.ErrAssetMissing.
func (d Dir) Load(v layout.Variant, k layout.TileKind) (*Set, error) {
	if ident, ok := v.Ident(); ok {
		s, err := d.LoadIdent(ident, k)
		if err == nil {
			return s, nil
		}
		if !errors.Is(err, fpvosd.ErrAssetMissing) {
			return nil, err
		}
		fpvosd.Logger().Warn("tileset: font not found, falling back to generic font",
			"variant", v, "ident", ident, "kind", k)
	}
	return d.LoadIdent("", k)
}

// LoadIdent reads the font named by ident ("" for the generic font) without
// falling back.
func (d Dir) LoadIdent(ident string, k layout.TileKind) (*Set, error) {
	base := d.fileBase(ident, k, false)

	s, err := d.loadBin(base, k)
	if err == nil {
		if ext, extErr := d.loadBin(d.fileBase(ident, k, true), k); extErr == nil {
			s.glyphs = append(s.glyphs, ext.glyphs...)
		} else if !errors.Is(extErr, fpvosd.ErrAssetMissing) {
			return nil, extErr
		}
		d.logLoaded(base+".bin", s)
		return s, nil
	}
	if !errors.Is(err, fpvosd.ErrAssetMissing) {
		return nil, err
	}

	for _, ext := range imageExts {
		path := base + ext
		img, err := imgio.LoadImage(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("tileset: %s: %w", path, err)
		}
		s, err := fromStrip(k, img)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		d.logLoaded(path, s)
		return s, nil
	}
	return nil, fmt.Errorf("%w: no %s font %q in %s", fpvosd.ErrAssetMissing, k, ident, string(d))
}

func (d Dir) logLoaded(path string, s *Set) {
	fpvosd.Logger().Info("tileset: loaded font", "path", path, "tiles", s.Len(), "kind", s.kind)
}

// fileBase returns the path without extension: font[_ident][_hd][_2].
func (d Dir) fileBase(ident string, k layout.TileKind, extended bool) string {
	name := "font"
	if ident != "" {
		name += "_" + ident
	}
	if k == layout.TileHD {
		name += "_hd"
	}
	if extended {
		name += "_2"
	}
	return filepath.Join(string(d), name)
}

// loadBin reads one raw page: consecutive RGBA tiles, 256 per page.
func (d Dir) loadBin(base string, k layout.TileKind) (*Set, error) {
	path := base + ".bin"
	data, err := os.ReadFile(filepath.Clean(path))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", fpvosd.ErrAssetMissing, path)
	}
	if err != nil {
		return nil, fmt.Errorf("tileset: %w", err)
	}
	return decodeBin(path, data, k)
}

func decodeBin(name string, data []byte, k layout.TileKind) (*Set, error) {
	w, h := k.Size()
	tileBytes := w * h * 4
	if len(data) != PageTiles*tileBytes {
		return nil, fmt.Errorf("tileset: %s: size %d bytes, want %d for %d %s tiles",
			name, len(data), PageTiles*tileBytes, PageTiles, k)
	}
	glyphs := make([]*image.NRGBA, PageTiles)
	for i := range glyphs {
		// Pixel rows are contiguous and tightly packed.
		glyphs[i] = &image.NRGBA{
			Pix:    data[i*tileBytes : (i+1)*tileBytes : (i+1)*tileBytes],
			Stride: w * 4,
			Rect:   image.Rect(0, 0, w, h),
		}
	}
	return New(k, w, h, glyphs)
}
