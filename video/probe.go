package video

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/gogpu/fpvosd"
	"github.com/gogpu/fpvosd/scaling"
)

// ErrNoVideoStream is returned when ffprobe finds no video stream.
var ErrNoVideoStream = errors.New("video: no video stream")

type probeOutput struct {
	Streams []probeStream `json:"streams"`
}

type probeStream struct {
	CodecType  string `json:"codec_type"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	RFrameRate string `json:"r_frame_rate"`
}

// Info describes the first video stream of a file.
type Info struct {
	Resolution scaling.Resolution
	FrameRate  string
}

// Probe runs ffprobe on path and returns its first video stream. An empty
// ffprobe selects the binary on PATH.
func Probe(ctx context.Context, ffprobe, path string) (Info, error) {
	if ffprobe == "" {
		ffprobe = "ffprobe"
	}
	cmd := exec.CommandContext(ctx, ffprobe,
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=codec_type,width,height,r_frame_rate",
		"-print_format", "json",
		path)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return Info{}, fmt.Errorf("video: ffprobe %s: %w: %s", path, err, strings.TrimSpace(stderr.String()))
	}
	info, err := parseProbe(out)
	if err != nil {
		return Info{}, fmt.Errorf("video: %s: %w", path, err)
	}
	fpvosd.Logger().Debug("video: probed", "path", path, "resolution", info.Resolution, "rate", info.FrameRate)
	return info, nil
}

func parseProbe(data []byte) (Info, error) {
	var p probeOutput
	if err := json.Unmarshal(data, &p); err != nil {
		return Info{}, fmt.Errorf("parse ffprobe output: %w", err)
	}
	for _, s := range p.Streams {
		if s.CodecType != "" && s.CodecType != "video" {
			continue
		}
		if s.Width <= 0 || s.Height <= 0 {
			return Info{}, fmt.Errorf("%w: invalid dimensions %dx%d", scaling.ErrInvalidResolution, s.Width, s.Height)
		}
		return Info{
			Resolution: scaling.Resolution{Width: s.Width, Height: s.Height},
			FrameRate:  s.RFrameRate,
		}, nil
	}
	return Info{}, ErrNoVideoStream
}
