package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/gogpu/fpvosd"
	"github.com/gogpu/fpvosd/config"
	"github.com/gogpu/fpvosd/layout"
	"github.com/gogpu/fpvosd/osdfile"
	"github.com/gogpu/fpvosd/overlay"
	"github.com/gogpu/fpvosd/scaling"
	"github.com/gogpu/fpvosd/tileset"
	"github.com/gogpu/fpvosd/video"
)

// renderFlags are the options shared by the frames and video commands.
// Flags given explicitly override the configuration file.
type renderFlags struct {
	fs *flag.FlagSet

	configPath  string
	fontDir     string
	fontVariant string
	target      string
	fromVideo   string
	scaling     bool
	noScaling   bool
	margins     string
	minCoverage int
	hideRegions []string
	hideItems   string
	shift       int
	start       uint32
	end         uint32
	workers     int
	verbose     bool
	debug       bool
}

func newRenderFlags(name, args string) *renderFlags {
	f := &renderFlags{fs: flag.NewFlagSet(name, flag.ContinueOnError)}
	flags := f.fs
	flags.StringVar(&f.configPath, "config", "", "YAML configuration `file`")
	flags.StringVar(&f.fontDir, "font-dir", ".", "font `directory`")
	flags.StringVar(&f.fontVariant, "font-variant", "", "force the font variant (generic, bf, inav, ardu, ultra)")
	flags.StringVar(&f.target, "target", "", "target video resolution: "+scaling.ValidResolutions())
	flags.StringVar(&f.fromVideo, "from-video", "", "probe the target resolution from a video `file` with ffprobe")
	flags.BoolVar(&f.scaling, "scaling", false, "always scale tiles to fit the target resolution")
	flags.BoolVar(&f.noScaling, "no-scaling", false, "never scale tiles")
	flags.StringVar(&f.margins, "margins", scaling.DefaultMargins.String(), "minimum `horizontal:vertical` margins in pixels")
	flags.IntVar(&f.minCoverage, "min-coverage", scaling.DefaultMinCoverage, "minimum coverage of the target in `percent` before scaling")
	flags.Func("hide-region", "hide grid cells `x,y[:WxH]` (repeatable)", func(s string) error {
		f.hideRegions = append(f.hideRegions, s)
		return nil
	})
	flags.StringVar(&f.hideItems, "hide-items", "", "comma separated OSD `items` to hide")
	flags.IntVar(&f.shift, "shift", 0, "shift output frame numbers by `n` frames")
	flags.Func("start", "first output frame `number`", frameNumber(&f.start))
	flags.Func("end", "last output frame `number`", frameNumber(&f.end))
	flags.IntVar(&f.workers, "workers", 0, "render workers (0: one per CPU)")
	flags.BoolVar(&f.verbose, "v", false, "log progress information")
	flags.BoolVar(&f.debug, "debug", false, "log per-frame diagnostics")
	flags.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: fpvosd %s [options] %s\n\nOptions:\n", name, args)
		flags.PrintDefaults()
	}
	return f
}

// parse parses args and returns the positional arguments.
func (f *renderFlags) parse(args []string, minArgs, maxArgs int) ([]string, error) {
	if err := f.fs.Parse(args); err != nil {
		return nil, errUsage
	}
	rest := f.fs.Args()
	if len(rest) < minArgs || len(rest) > maxArgs {
		f.fs.Usage()
		return nil, errUsage
	}
	setupLogging(f.verbose, f.debug)
	return rest, nil
}

// frameNumber parses a frame number flag, rejecting values that do not fit
// the 32-bit frame index.
func frameNumber(dst *uint32) func(string) error {
	return func(s string) error {
		n, err := strconv.ParseUint(s, 10, 32)
		if err != nil {
			return err
		}
		*dst = uint32(n)
		return nil
	}
}

// config loads the configuration file, if any, and applies explicit flags.
func (f *renderFlags) config() (*config.Config, error) {
	cfg := config.Default()
	if f.configPath != "" {
		var err error
		if cfg, err = config.Load(f.configPath); err != nil {
			return nil, err
		}
	}

	var flagErr error
	f.fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "font-dir":
			cfg.FontDir = f.fontDir
		case "font-variant":
			cfg.FontVariant = f.fontVariant
		case "target":
			cfg.Scaling.Target = f.target
		case "scaling", "no-scaling":
			mode, err := scaling.ModeFromFlags(f.scaling, f.noScaling)
			if err != nil {
				flagErr = err
			}
			cfg.Scaling.Mode = mode.String()
		case "margins":
			cfg.Scaling.Margins = f.margins
		case "min-coverage":
			cfg.Scaling.MinCoverage = f.minCoverage
		case "hide-region":
			cfg.Hide.Regions = append(cfg.Hide.Regions, f.hideRegions...)
		case "hide-items":
			for item := range strings.SplitSeq(f.hideItems, ",") {
				if item = strings.TrimSpace(item); item != "" {
					cfg.Hide.Items = append(cfg.Hide.Items, item)
				}
			}
		case "shift":
			cfg.Frames.Shift = f.shift
		case "start":
			cfg.Frames.Start = f.start
		case "end":
			end := f.end
			cfg.Frames.End = &end
		case "workers":
			cfg.Workers = f.workers
		}
	})
	if flagErr != nil {
		return nil, flagErr
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// job is a decoded recording with everything needed to render it.
type job struct {
	cfg      *config.Config
	file     *osdfile.File
	renderer *overlay.Renderer
}

// prepare decodes the recording, plans scaling and loads the font.
func prepare(ctx context.Context, cfg *config.Config, fromVideo string, fonts *tileset.Cache, osdPath string) (*job, error) {
	log := fpvosd.Logger().With("file", osdPath)

	// Hidden items depend on the font variant, so they are checked once the
	// header is known and before the records are decoded.
	override, _ := cfg.Variant()
	var (
		variant layout.Variant
		lay     layout.Layout
	)
	file, err := osdfile.Open(osdPath, osdfile.WithHeaderCheck(func(h osdfile.Header) error {
		variant = h.FontVariant
		if override != layout.Unknown {
			variant = override
		}
		lay = layout.For(variant, h.Grid, h.TileKind)
		return lay.ValidateItems(cfg.Hide.Items)
	}))
	if err != nil {
		return nil, err
	}
	hdr := file.Header
	if override != layout.Unknown {
		log.Info("using font variant override", "variant", override, "recorded", hdr.FontVariant)
	}

	in := cfg.PlanInput(hdr.Grid, hdr.TileKind)
	if in.Target == nil && fromVideo != "" {
		info, err := video.Probe(ctx, cfg.Video.FFprobe, fromVideo)
		if err != nil {
			return nil, err
		}
		in.Target = &info.Resolution
	}
	dec, err := scaling.Plan(in)
	if err != nil {
		return nil, err
	}
	if dec.Coverage > 0 && dec.Coverage < float64(in.MinCoverage) {
		log.Warn("overlay covers less of the video than requested", "coverage", dec.Coverage, "min", in.MinCoverage)
	}

	tiles, err := fonts.Load(tileset.Dir(cfg.FontDir), variant, dec.TileKind, dec.TileWidth, dec.TileHeight)
	if err != nil {
		return nil, err
	}

	regions, _ := cfg.Regions()
	r, err := overlay.NewRenderer(lay, tiles, dec,
		overlay.WithHiddenRegions(regions...),
		overlay.WithHiddenItems(cfg.Hide.Items...))
	if err != nil {
		return nil, err
	}
	log.Info("scaling decided", "decision", r.Decision())
	return &job{cfg: cfg, file: file, renderer: r}, nil
}

// recordings returns path itself, or the .osd files below it when path is a
// directory.
func recordings(path string) (files []string, dir bool, err error) {
	st, err := os.Stat(path)
	if err != nil {
		return nil, false, err
	}
	if !st.IsDir() {
		return []string{path}, false, nil
	}
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(p), ".osd") {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, true, err
	}
	if len(files) == 0 {
		return nil, true, fmt.Errorf("no .osd files found in %s", path)
	}
	slices.Sort(files)
	return files, true, nil
}

// forEachRecording runs fn for every recording named by input. In a batch a
// failed recording is reported and skipped; an interrupt stops the batch.
func forEachRecording(ctx context.Context, input string, fn func(path string, batch bool) error) error {
	files, batch, err := recordings(input)
	if err != nil {
		return err
	}
	if !batch {
		return fn(files[0], false)
	}

	failed := 0
	for i, path := range files {
		fmt.Printf("(%d/%d) %s\n", i+1, len(files), path)
		err := fn(path, true)
		switch {
		case err == nil:
		case errors.Is(err, fpvosd.ErrCancelled) || ctx.Err() != nil:
			return err
		default:
			fmt.Fprintf(os.Stderr, "Warning: failed to process %s: %v\n", filepath.Base(path), err)
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d recordings failed", failed, len(files))
	}
	return nil
}

// output returns where a recording's output goes: next to the recording, or
// inside dir for a batch.
func output(dir, path, suffix string, batch bool) string {
	switch {
	case dir == "":
		return stem(path) + suffix
	case batch:
		return filepath.Join(dir, filepath.Base(stem(path))+suffix)
	default:
		return dir
	}
}

// stem returns path without its extension.
func stem(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path))
}

// plural formats a count with its noun.
func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return strconv.Itoa(n) + " " + noun + "s"
}
