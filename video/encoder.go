package video

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/gogpu/fpvosd"
	"github.com/gogpu/fpvosd/pipeline"
)

// ErrOutputExists is returned by NewEncoder when the output file exists and
// overwriting was not requested.
var ErrOutputExists = errors.New("video: output file exists")

// DefaultFrameRate is the frame rate of goggle recordings.
const DefaultFrameRate = 60

// Codec is an alpha-capable output codec.
type Codec uint8

const (
	// VP9 encodes WebM with libvpx-vp9.
	VP9 Codec = iota
	// VP8 encodes WebM with libvpx.
	VP8
	// ProRes encodes MOV with prores_ks in the 4444 profile.
	ProRes
)

func (c Codec) String() string {
	switch c {
	case VP9:
		return "vp9"
	case VP8:
		return "vp8"
	case ProRes:
		return "prores"
	default:
		return fmt.Sprintf("Codec(%d)", uint8(c))
	}
}

// ParseCodec parses a codec name as printed by Codec.String.
func ParseCodec(s string) (Codec, error) {
	for _, c := range []Codec{VP9, VP8, ProRes} {
		if strings.EqualFold(s, c.String()) {
			return c, nil
		}
	}
	return 0, fmt.Errorf("video: unknown codec %q (valid: vp9, vp8, prores)", s)
}

func (c Codec) args() []string {
	switch c {
	case VP8:
		return []string{"-c:v", "libvpx", "-crf", "10", "-b:v", "4M", "-auto-alt-ref", "0", "-pix_fmt", "yuva420p"}
	case ProRes:
		return []string{"-c:v", "prores_ks", "-profile:v", "4444", "-pix_fmt", "yuva444p10le"}
	default:
		return []string{"-c:v", "libvpx-vp9", "-crf", "40", "-b:v", "0", "-pix_fmt", "yuva420p"}
	}
}

// EncoderOption configures an Encoder.
type EncoderOption func(*encoderOptions)

type encoderOptions struct {
	ffmpeg    string
	codec     Codec
	frameRate int
	overwrite bool
}

// WithFFmpeg sets the ffmpeg binary. The default is "ffmpeg" on PATH.
func WithFFmpeg(path string) EncoderOption {
	return func(o *encoderOptions) {
		if path != "" {
			o.ffmpeg = path
		}
	}
}

// WithCodec selects the output codec. The default is VP9.
func WithCodec(c Codec) EncoderOption {
	return func(o *encoderOptions) {
		o.codec = c
	}
}

// WithFrameRate sets the output frame rate. Non-positive values are ignored.
func WithFrameRate(fps int) EncoderOption {
	return func(o *encoderOptions) {
		if fps > 0 {
			o.frameRate = fps
		}
	}
}

// WithOverwrite allows replacing an existing output file.
func WithOverwrite(overwrite bool) EncoderOption {
	return func(o *encoderOptions) {
		o.overwrite = overwrite
	}
}

// Args returns the ffmpeg arguments that encode raw RGBA frames of size
// width x height read from stdin into output.
func Args(output string, width, height int, opts ...EncoderOption) []string {
	o := buildOptions(opts)
	return o.args(output, width, height)
}

func buildOptions(opts []EncoderOption) encoderOptions {
	o := encoderOptions{ffmpeg: "ffmpeg", codec: VP9, frameRate: DefaultFrameRate}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o encoderOptions) args(output string, width, height int) []string {
	args := []string{
		"-hide_banner", "-loglevel", "error",
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"-video_size", fmt.Sprintf("%dx%d", width, height),
		"-r", strconv.Itoa(o.frameRate),
		"-i", "pipe:0",
	}
	args = append(args, o.codec.args()...)
	if o.overwrite {
		args = append(args, "-y")
	} else {
		args = append(args, "-n")
	}
	return append(args, output)
}

// Encoder pipes frames into an ffmpeg process. It implements
// pipeline.OrderedSink. Frames must all have the size given to NewEncoder.
type Encoder struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	w      *bufio.Writer
	stderr bytes.Buffer
	bounds image.Rectangle
	frames int
}

var _ pipeline.OrderedSink = (*Encoder)(nil)

// NewEncoder starts ffmpeg writing to output. Cancelling ctx kills the
// process; call Close to finish the file.
func NewEncoder(ctx context.Context, output string, bounds image.Rectangle, opts ...EncoderOption) (*Encoder, error) {
	o := buildOptions(opts)
	if bounds.Empty() {
		return nil, fmt.Errorf("video: empty frame size %v", bounds)
	}
	if !o.overwrite {
		if _, err := os.Stat(output); err == nil {
			return nil, fmt.Errorf("%w: %s", ErrOutputExists, output)
		}
	}

	e := &Encoder{bounds: bounds}
	e.cmd = exec.CommandContext(ctx, o.ffmpeg, o.args(output, bounds.Dx(), bounds.Dy())...)
	e.cmd.Stderr = &e.stderr
	stdin, err := e.cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("video: %w", err)
	}
	if err := e.cmd.Start(); err != nil {
		return nil, fmt.Errorf("video: start %s: %w", o.ffmpeg, err)
	}
	e.stdin = stdin
	e.w = bufio.NewWriterSize(stdin, bounds.Dx()*4*16)
	fpvosd.Logger().Info("video: encoding", "output", output, "codec", o.codec, "size", bounds.Size(), "fps", o.frameRate)
	return e, nil
}

// WriteFrame writes one frame. n is only used in error messages: frames are
// encoded in call order.
func (e *Encoder) WriteFrame(n uint32, img *image.NRGBA) error {
	if err := writeRaw(e.w, img, e.bounds); err != nil {
		return fmt.Errorf("video: frame %d: %w", n, err)
	}
	e.frames++
	return nil
}

// writeRaw writes the pixels of img row by row as packed RGBA.
func writeRaw(w io.Writer, img *image.NRGBA, bounds image.Rectangle) error {
	if img.Rect.Size() != bounds.Size() {
		return fmt.Errorf("frame size %v, encoder expects %v", img.Rect.Size(), bounds.Size())
	}
	rowLen := img.Rect.Dx() * 4
	if img.Stride == rowLen {
		_, err := w.Write(img.Pix[:rowLen*img.Rect.Dy()])
		return err
	}
	for y := range img.Rect.Dy() {
		if _, err := w.Write(img.Pix[y*img.Stride : y*img.Stride+rowLen]); err != nil {
			return err
		}
	}
	return nil
}

// Frames returns the number of frames written.
func (e *Encoder) Frames() int {
	return e.frames
}

// Close flushes the remaining frames, closes ffmpeg's input and waits for it
// to finish writing the file.
func (e *Encoder) Close() error {
	flushErr := e.w.Flush()
	closeErr := e.stdin.Close()
	if err := e.cmd.Wait(); err != nil {
		return fmt.Errorf("video: ffmpeg: %w: %s", err, strings.TrimSpace(e.stderr.String()))
	}
	if err := errors.Join(flushErr, closeErr); err != nil {
		return fmt.Errorf("video: %w", err)
	}
	fpvosd.Logger().Info("video: encoding completed", "frames", e.frames)
	return nil
}
