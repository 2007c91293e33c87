package video

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"testing"

	"github.com/gogpu/fpvosd/scaling"
)

func TestParseProbe(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		want    Info
		wantErr error
	}{
		{
			name: "video stream",
			data: `{"streams":[{"codec_type":"video","width":1920,"height":1080,"r_frame_rate":"60/1"}]}`,
			want: Info{Resolution: scaling.Resolution{Width: 1920, Height: 1080}, FrameRate: "60/1"},
		},
		{
			name: "skips audio",
			data: `{"streams":[{"codec_type":"audio"},{"codec_type":"video","width":1280,"height":720}]}`,
			want: Info{Resolution: scaling.Resolution{Width: 1280, Height: 720}},
		},
		{
			name:    "no streams",
			data:    `{"streams":[]}`,
			wantErr: ErrNoVideoStream,
		},
		{
			name:    "zero size",
			data:    `{"streams":[{"codec_type":"video","width":0,"height":1080}]}`,
			wantErr: scaling.ErrInvalidResolution,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseProbe([]byte(tt.data))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("parseProbe() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseProbe() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("parseProbe() = %+v, want %+v", got, tt.want)
			}
		})
	}

	if _, err := parseProbe([]byte("not json")); err == nil {
		t.Error("parseProbe() error = nil for garbage")
	}
}

func TestArgs(t *testing.T) {
	got := Args("out.webm", 1860, 1012)
	want := []string{
		"-hide_banner", "-loglevel", "error",
		"-f", "rawvideo", "-pix_fmt", "rgba", "-video_size", "1860x1012", "-r", "60", "-i", "pipe:0",
		"-c:v", "libvpx-vp9", "-crf", "40", "-b:v", "0", "-pix_fmt", "yuva420p",
		"-n", "out.webm",
	}
	if !slices.Equal(got, want) {
		t.Errorf("Args() =\n%v\nwant\n%v", got, want)
	}

	got = Args("out.mov", 10, 10, WithCodec(ProRes), WithFrameRate(30), WithOverwrite(true))
	for _, a := range []string{"prores_ks", "yuva444p10le", "-y", "30"} {
		if !slices.Contains(got, a) {
			t.Errorf("Args() = %v, missing %q", got, a)
		}
	}
	if slices.Contains(got, "-n") {
		t.Errorf("Args() = %v, has -n with overwrite", got)
	}
}

func TestParseCodec(t *testing.T) {
	for _, c := range []Codec{VP9, VP8, ProRes} {
		got, err := ParseCodec(c.String())
		if err != nil || got != c {
			t.Errorf("ParseCodec(%q) = %v, %v", c.String(), got, err)
		}
	}
	if got, err := ParseCodec("VP8"); err != nil || got != VP8 {
		t.Errorf("ParseCodec(VP8) = %v, %v", got, err)
	}
	if _, err := ParseCodec("h264"); err == nil {
		t.Error("ParseCodec(h264) error = nil")
	}
}

func TestWriteRaw(t *testing.T) {
	full := image.NewNRGBA(image.Rect(0, 0, 4, 3))
	for y := range 3 {
		for x := range 4 {
			full.SetNRGBA(x, y, color.NRGBA{uint8(x), uint8(y), 7, 255})
		}
	}
	bounds := image.Rect(0, 0, 2, 2)

	var buf bytes.Buffer
	if err := writeRaw(&buf, image.NewNRGBA(bounds), bounds); err != nil {
		t.Fatalf("writeRaw() error = %v", err)
	}
	if buf.Len() != 16 {
		t.Errorf("writeRaw() wrote %d bytes, want 16", buf.Len())
	}

	// A sub-image has a stride wider than its rows.
	buf.Reset()
	sub := full.SubImage(image.Rect(1, 1, 3, 3)).(*image.NRGBA)
	if err := writeRaw(&buf, sub, bounds); err != nil {
		t.Fatalf("writeRaw() error = %v", err)
	}
	want := []byte{
		1, 1, 7, 255, 2, 1, 7, 255,
		1, 2, 7, 255, 2, 2, 7, 255,
	}
	if !bytes.Equal(buf.Bytes(), want) {
		t.Errorf("writeRaw() = %v, want %v", buf.Bytes(), want)
	}

	if err := writeRaw(&buf, full, bounds); err == nil {
		t.Error("writeRaw() error = nil for wrong frame size")
	}
}

func TestNewEncoderOutputExists(t *testing.T) {
	out := filepath.Join(t.TempDir(), "overlay.webm")
	if err := os.WriteFile(out, nil, 0o600); err != nil {
		t.Fatal(err)
	}
	_, err := NewEncoder(context.Background(), out, image.Rect(0, 0, 8, 8))
	if !errors.Is(err, ErrOutputExists) {
		t.Fatalf("NewEncoder() error = %v, want ErrOutputExists", err)
	}
}

func TestEncoder(t *testing.T) {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skip("ffmpeg not installed")
	}
	encoders, err := exec.Command("ffmpeg", "-hide_banner", "-encoders").Output()
	if err != nil || !bytes.Contains(encoders, []byte("libvpx-vp9")) {
		t.Skip("ffmpeg built without libvpx-vp9")
	}
	out := filepath.Join(t.TempDir(), "overlay.webm")
	bounds := image.Rect(0, 0, 64, 36)
	e, err := NewEncoder(context.Background(), out, bounds)
	if err != nil {
		t.Fatalf("NewEncoder() error = %v", err)
	}
	img := image.NewNRGBA(bounds)
	for n := range uint32(10) {
		img.SetNRGBA(int(n), 0, color.NRGBA{255, 255, 255, 255})
		if err := e.WriteFrame(n, img); err != nil {
			t.Fatalf("WriteFrame(%d) error = %v", n, err)
		}
	}
	if err := e.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if e.Frames() != 10 {
		t.Errorf("Frames() = %d, want 10", e.Frames())
	}
	if st, err := os.Stat(out); err != nil || st.Size() == 0 {
		t.Errorf("output not written: %v", err)
	}

	if _, err := exec.LookPath("ffprobe"); err != nil {
		return
	}
	info, err := Probe(context.Background(), "", out)
	if err != nil {
		t.Fatalf("Probe() error = %v", err)
	}
	if info.Resolution != (scaling.Resolution{Width: 64, Height: 36}) {
		t.Errorf("Probe() resolution = %v, want 64x36", info.Resolution)
	}
}
