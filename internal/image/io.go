package image

import (
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"sync"

	// Font strips may be stored as BMP or WebP as well as PNG.
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// LoadImage loads an image file, auto-detecting PNG, BMP or WebP, and
// returns it as NRGBA.
func LoadImage(path string) (*image.NRGBA, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("image: open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return Decode(f)
}

// Decode decodes an image from the given reader, auto-detecting the format.
func Decode(r io.Reader) (*image.NRGBA, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("image: decode: %w", err)
	}
	return ToNRGBA(img), nil
}

// ToNRGBA converts img to a zero-origin NRGBA image, copying only when needed.
func ToNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok && n.Rect.Min == (image.Point{}) {
		return n
	}
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Rect, img, b.Min, draw.Src)
	return dst
}

// encoder reuses PNG compression buffers across frames.
var encoder = &png.Encoder{
	CompressionLevel: png.BestSpeed,
	BufferPool:       &bufferPool{},
}

type bufferPool struct {
	p sync.Pool
}

func (b *bufferPool) Get() *png.EncoderBuffer {
	buf, _ := b.p.Get().(*png.EncoderBuffer)
	return buf
}

func (b *bufferPool) Put(buf *png.EncoderBuffer) {
	b.p.Put(buf)
}

// EncodePNG encodes img as PNG to the given writer.
func EncodePNG(w io.Writer, img image.Image) error {
	if err := encoder.Encode(w, img); err != nil {
		return fmt.Errorf("image: encode PNG: %w", err)
	}
	return nil
}

// SavePNG writes img to path. The file is written under a temporary name in
// the same directory and renamed into place, so readers never observe a
// partial frame.
func SavePNG(path string, img image.Image) error {
	path = filepath.Clean(path)
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("image: create file: %w", err)
	}
	tmp := f.Name()
	_ = f.Chmod(0o644)

	if err := EncodePNG(f, img); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("image: close file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("image: rename file: %w", err)
	}
	return nil
}
