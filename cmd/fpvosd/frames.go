package main

import (
	"context"
	"fmt"

	"github.com/gogpu/fpvosd/pipeline"
	"github.com/gogpu/fpvosd/tileset"
)

func cmdFrames(ctx context.Context, args []string) error {
	f := newRenderFlags("frames", "<file.osd|dir> [output-dir]")
	noFill := f.fs.Bool("no-fill-gaps", false, "do not link frames for numbers without an OSD record")
	rest, err := f.parse(args, 1, 2)
	if err != nil {
		return err
	}
	cfg, err := f.config()
	if err != nil {
		return err
	}
	if *noFill {
		cfg.Frames.FillGaps = false
	}
	outDir := ""
	if len(rest) == 2 {
		outDir = rest[1]
	}

	fonts := tileset.NewCache(0)
	return forEachRecording(ctx, rest[0], func(path string, batch bool) error {
		j, err := prepare(ctx, cfg, f.fromVideo, fonts, path)
		if err != nil {
			return err
		}
		sink, err := pipeline.NewDirSink(output(outDir, path, "", batch))
		if err != nil {
			return err
		}

		bar := newProgressBar("Rendering")
		rep, err := pipeline.Run(ctx, j.file.Frames(), j.renderer, sink,
			pipeline.WithWorkers(cfg.Workers),
			pipeline.WithWindow(cfg.Window()),
			pipeline.WithFillGaps(cfg.Frames.FillGaps),
			pipeline.WithProgress(bar.update))
		bar.finish()
		if err != nil {
			return err
		}
		if err := rep.Err(); err != nil {
			return err
		}
		fmt.Printf("Rendered %s (%d to %d) into %s\n", plural(rep.Done, "frame"), rep.First, rep.Last, sink.Dir())
		return nil
	})
}
