// Command fpvosd renders FPV goggle OSD recordings into transparent
// overlay frames or an overlay video.
//
// Usage:
//
//	fpvosd info [-items] <file.osd>
//	fpvosd frames [options] <file.osd> [output-dir]
//	fpvosd video [options] <file.osd> [output-video]
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/gogpu/fpvosd"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var err error
	switch cmd := os.Args[1]; cmd {
	case "info", "i":
		err = cmdInfo(os.Args[2:])
	case "frames", "f":
		err = cmdFrames(ctx, os.Args[2:])
	case "video", "v":
		err = cmdVideo(ctx, os.Args[2:])
	case "help", "h", "-h", "--help":
		usage()
		return
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		usage()
		os.Exit(2)
	}

	switch {
	case err == nil:
	case errors.Is(err, errUsage):
		os.Exit(2)
	case errors.Is(err, fpvosd.ErrCancelled):
		fmt.Fprintf(os.Stderr, "Interrupted: %v\n", err)
		os.Exit(130)
	default:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// errUsage is returned after a command has printed its usage.
var errUsage = errors.New("usage")

func usage() {
	fmt.Fprintln(os.Stderr, "fpvosd - render FPV goggle OSD recordings as transparent overlays")
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  fpvosd <command> [options] <file.osd> [output]")
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  info, i      Show what a recording contains")
	fmt.Fprintln(os.Stderr, "  frames, f    Render overlay frames as numbered PNG files")
	fmt.Fprintln(os.Stderr, "  video, v     Encode the overlay into a transparent video with ffmpeg")
	fmt.Fprintln(os.Stderr, "  help, h      Show this help")
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "Run 'fpvosd <command> -h' for command options.")
}

// setupLogging routes library diagnostics to stderr.
func setupLogging(verbose, debug bool) {
	level := slog.LevelWarn
	switch {
	case debug:
		level = slog.LevelDebug
	case verbose:
		level = slog.LevelInfo
	}
	fpvosd.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}
