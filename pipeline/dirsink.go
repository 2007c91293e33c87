package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/gogpu/fpvosd"
	imgio "github.com/gogpu/fpvosd/internal/image"
)

// ErrTargetExists is returned by NewDirSink for a non-empty directory.
var ErrTargetExists = errors.New("pipeline: target directory is not empty")

// FrameName returns the file name of output frame n: ten zero-padded digits
// and a .png extension, so lexical order is numeric order.
func FrameName(n uint32) string {
	return fmt.Sprintf("%010d.png", n)
}

// DirSink writes frames as numbered PNG files into a directory.
//
// Each frame is written to a temporary file and renamed into place, so a
// file named by FrameName is always complete.
type DirSink struct {
	dir string
}

// NewDirSink creates dir if needed. An existing directory must be empty.
func NewDirSink(dir string) (*DirSink, error) {
	dir = filepath.Clean(dir)
	entries, err := os.ReadDir(dir)
	switch {
	case errors.Is(err, os.ErrNotExist):
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("pipeline: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("pipeline: %w", err)
	case len(entries) > 0:
		return nil, fmt.Errorf("%w: %s", ErrTargetExists, dir)
	}
	return &DirSink{dir: dir}, nil
}

// Dir returns the output directory.
func (s *DirSink) Dir() string {
	return s.dir
}

// Path returns the file path of output frame n.
func (s *DirSink) Path(n uint32) string {
	return filepath.Join(s.dir, FrameName(n))
}

// WriteFrame implements Sink.
func (s *DirSink) WriteFrame(_ context.Context, n uint32, img *image.NRGBA) error {
	return imgio.SavePNG(s.Path(n), img)
}

// FillGaps implements GapFiller. Numbers from start up to the first rendered
// frame become hard links to one transparent frame; numbers between two
// rendered frames, and after the last one up to end, become hard links to
// the preceding rendered frame.
func (s *DirSink) FillGaps(numbers []uint32, start, end uint32, blank *image.NRGBA) error {
	if len(numbers) == 0 {
		return nil
	}
	log := fpvosd.Logger()

	if first := numbers[0]; start < first {
		log.Debug("pipeline: generating blank frames", "from", start, "to", first-1)
		if err := s.WriteFrame(context.Background(), start, blank); err != nil {
			return err
		}
		if err := s.linkRange(start, start+1, first); err != nil {
			return err
		}
	}

	for i, n := range numbers {
		next := end + 1
		if i+1 < len(numbers) {
			next = numbers[i+1]
		}
		if err := s.linkRange(n, n+1, next); err != nil {
			return err
		}
	}
	return nil
}

// linkRange links every number in [from, to) to frame src.
func (s *DirSink) linkRange(src, from, to uint32) error {
	for n := from; n < to; n++ {
		if err := os.Link(s.Path(src), s.Path(n)); err != nil {
			return fmt.Errorf("pipeline: link frame %d to %d: %w", n, src, err)
		}
	}
	return nil
}
