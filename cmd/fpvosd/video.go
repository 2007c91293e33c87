package main

import (
	"context"
	"fmt"

	"github.com/gogpu/fpvosd/pipeline"
	"github.com/gogpu/fpvosd/tileset"
	"github.com/gogpu/fpvosd/video"
)

func cmdVideo(ctx context.Context, args []string) error {
	f := newRenderFlags("video", "<file.osd|dir> [output-video|output-dir]")
	codecName := f.fs.String("codec", "", "output codec: vp9, vp8 or prores (default vp9)")
	ffmpeg := f.fs.String("ffmpeg", "", "ffmpeg `binary` (default from PATH)")
	fps := f.fs.Int("fps", 0, "output frame rate (default 60)")
	overwrite := f.fs.Bool("overwrite", false, "replace an existing output video")
	rest, err := f.parse(args, 1, 2)
	if err != nil {
		return err
	}
	cfg, err := f.config()
	if err != nil {
		return err
	}
	if *codecName != "" {
		cfg.Video.Codec = *codecName
	}
	codec, err := cfg.Codec()
	if err != nil {
		return err
	}
	if *ffmpeg != "" {
		cfg.Video.FFmpeg = *ffmpeg
	}
	if *fps > 0 {
		cfg.Video.FrameRate = *fps
	}
	cfg.Video.Overwrite = cfg.Video.Overwrite || *overwrite
	outArg := ""
	if len(rest) == 2 {
		outArg = rest[1]
	}

	fonts := tileset.NewCache(0)
	return forEachRecording(ctx, rest[0], func(path string, batch bool) error {
		j, err := prepare(ctx, cfg, f.fromVideo, fonts, path)
		if err != nil {
			return err
		}
		out := output(outArg, path, "_osd"+extension(codec), batch)
		frames := j.file.Frames()
		if err := pipeline.CheckAssets(frames, j.renderer, cfg.Window()); err != nil {
			return err
		}

		// An interrupt stops rendering, not ffmpeg: the partial video is still finalized.
		enc, err := video.NewEncoder(context.WithoutCancel(ctx), out, j.renderer.Bounds(),
			video.WithFFmpeg(cfg.Video.FFmpeg),
			video.WithCodec(codec),
			video.WithFrameRate(cfg.Video.FrameRate),
			video.WithOverwrite(cfg.Video.Overwrite))
		if err != nil {
			return err
		}

		bar := newProgressBar("Encoding")
		rep, runErr := pipeline.RunOrdered(ctx, frames, j.renderer, enc,
			pipeline.WithWorkers(cfg.Workers),
			pipeline.WithWindow(cfg.Window()),
			pipeline.WithProgress(bar.update))
		bar.finish()
		if err := enc.Close(); err != nil && runErr == nil {
			runErr = err
		}
		if runErr != nil {
			return runErr
		}
		if err := rep.Err(); err != nil {
			return err
		}
		fmt.Printf("Encoded %s into %s\n", plural(enc.Frames(), "frame"), out)
		return nil
	})
}

func extension(c video.Codec) string {
	if c == video.ProRes {
		return ".mov"
	}
	return ".webm"
}
