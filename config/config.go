// Package config loads fpvosd run settings from a YAML file.
//
// Every field has a default, so a file only needs the settings it changes.
// Command-line flags are applied on top of the loaded values.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gogpu/fpvosd/layout"
	"github.com/gogpu/fpvosd/overlay"
	"github.com/gogpu/fpvosd/scaling"
	"github.com/gogpu/fpvosd/video"
)

// Config is the complete run configuration.
type Config struct {
	FontDir     string        `yaml:"font_dir"`
	FontVariant string        `yaml:"font_variant"` // override of the variant the recording declares
	Scaling     ScalingConfig `yaml:"scaling"`
	Hide        HideConfig    `yaml:"hide"`
	Frames      FramesConfig  `yaml:"frames"`
	Video       VideoConfig   `yaml:"video"`
	Workers     int           `yaml:"workers"` // 0 uses GOMAXPROCS
}

// ScalingConfig selects the tile kind and scale.
type ScalingConfig struct {
	Mode        string `yaml:"mode"`         // auto, force, never
	Target      string `yaml:"target"`       // 720p, 1080p, 720p4:3, 1080p4:3 or WxH
	Margins     string `yaml:"margins"`      // horizontal:vertical, pixels
	MinCoverage int    `yaml:"min_coverage"` // percent
}

// HideConfig lists what is masked out of every frame.
type HideConfig struct {
	Regions []string `yaml:"regions"` // x,y[:WxH] in grid cells
	Items   []string `yaml:"items"`   // item names of the font variant
}

// FramesConfig maps recording frames to output numbers.
type FramesConfig struct {
	Shift    int     `yaml:"shift"`
	Start    uint32  `yaml:"start"`
	End      *uint32 `yaml:"end,omitempty"`
	FillGaps bool    `yaml:"fill_gaps"`
}

// VideoConfig configures ffmpeg and ffprobe.
type VideoConfig struct {
	FFmpeg    string `yaml:"ffmpeg"`
	FFprobe   string `yaml:"ffprobe"`
	Codec     string `yaml:"codec"`
	FrameRate int    `yaml:"frame_rate"`
	Overwrite bool   `yaml:"overwrite"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		FontDir: ".",
		Scaling: ScalingConfig{
			Mode:        scaling.Auto.String(),
			Margins:     scaling.DefaultMargins.String(),
			MinCoverage: scaling.DefaultMinCoverage,
		},
		Frames: FramesConfig{FillGaps: true},
		Video: VideoConfig{
			Codec:     video.VP9.String(),
			FrameRate: video.DefaultFrameRate,
		},
	}
}

// Load reads and validates a YAML configuration file. Fields missing from
// the file keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates YAML configuration data.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks every field and reports all problems at once.
func (c *Config) Validate() error {
	var errs []error
	if _, err := c.Variant(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.Mode(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.Target(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.Margins(); err != nil {
		errs = append(errs, err)
	}
	if c.Scaling.MinCoverage < 1 || c.Scaling.MinCoverage > 100 {
		errs = append(errs, fmt.Errorf("min_coverage %d out of range 1-100", c.Scaling.MinCoverage))
	}
	if _, err := c.Regions(); err != nil {
		errs = append(errs, err)
	}
	if err := c.Window().Validate(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.Codec(); err != nil {
		errs = append(errs, err)
	}
	if c.Video.FrameRate <= 0 {
		errs = append(errs, fmt.Errorf("frame_rate %d must be positive", c.Video.FrameRate))
	}
	if c.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers %d must not be negative", c.Workers))
	}
	return errors.Join(errs...)
}

// Variant returns the font variant override, or layout.Unknown when the
// recording's own variant should be used.
func (c *Config) Variant() (layout.Variant, error) {
	if c.FontVariant == "" {
		return layout.Unknown, nil
	}
	return layout.ParseVariant(c.FontVariant)
}

// Mode returns the scaling mode.
func (c *Config) Mode() (scaling.Mode, error) {
	return scaling.ParseMode(c.Scaling.Mode)
}

// Target returns the target video resolution, or nil when none is set.
func (c *Config) Target() (*scaling.Resolution, error) {
	if c.Scaling.Target == "" {
		return nil, nil
	}
	r, err := scaling.ParseResolution(c.Scaling.Target)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// Margins returns the minimum margins.
func (c *Config) Margins() (scaling.Margins, error) {
	return scaling.ParseMargins(c.Scaling.Margins)
}

// Regions returns the hidden regions.
func (c *Config) Regions() ([]layout.Region, error) {
	regions := make([]layout.Region, 0, len(c.Hide.Regions))
	var errs []error
	for _, s := range c.Hide.Regions {
		r, err := layout.ParseRegion(s)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		regions = append(regions, r)
	}
	return regions, errors.Join(errs...)
}

// Window returns the output frame window.
func (c *Config) Window() overlay.Window {
	return overlay.Window{Shift: c.Frames.Shift, Start: c.Frames.Start, End: c.Frames.End}
}

// Codec returns the video codec.
func (c *Config) Codec() (video.Codec, error) {
	return video.ParseCodec(c.Video.Codec)
}

// PlanInput returns the scaling planner input for a recording's grid.
// The configuration must be valid.
func (c *Config) PlanInput(g layout.Grid, native layout.TileKind) scaling.Input {
	mode, _ := c.Mode()
	target, _ := c.Target()
	margins, _ := c.Margins()
	return scaling.Input{
		Grid:        g,
		Native:      native,
		Target:      target,
		Margins:     margins,
		MinCoverage: c.Scaling.MinCoverage,
		Mode:        mode,
	}
}
