package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/gogpu/fpvosd/osdfile"
)

func cmdInfo(args []string) error {
	fs := flag.NewFlagSet("info", flag.ContinueOnError)
	items := fs.Bool("items", false, "list the OSD items that can be hidden")
	verbose := fs.Bool("v", false, "log decoding information")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: fpvosd info [options] <file.osd>\n\nOptions:\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return errUsage
	}
	setupLogging(*verbose, false)

	f, err := osdfile.Open(fs.Arg(0))
	if err != nil {
		return err
	}
	printInfo(os.Stdout, fs.Arg(0), f, *items)
	return nil
}

func printInfo(w io.Writer, path string, f *osdfile.File, items bool) {
	p := message.NewPrinter(language.English)
	info := f.Info()
	p.Fprintf(w, "File:          %s\n", path)
	p.Fprintf(w, "Format:        %s (version %d)\n", info.Format, f.Header.Version)
	p.Fprintf(w, "Font variant:  %s\n", info.FontVariant)
	p.Fprintf(w, "Grid:          %s (%s)\n", info.Grid, info.GridKind)
	p.Fprintf(w, "Tiles:         %s %dx%d\n", info.TileKind, f.Header.TileWidth, f.Header.TileHeight)
	p.Fprintf(w, "Records:       %d\n", info.FrameCount)
	if info.FrameCount > 0 {
		p.Fprintf(w, "Frames:        %d to %d\n", info.FirstIndex, info.LastIndex)
	}
	p.Fprintf(w, "Highest tile:  %d\n", info.HighestTile)
	if items {
		names := f.Header.Layout().ItemNames()
		if len(names) == 0 {
			names = []string{"(none)"}
		}
		p.Fprintf(w, "Items:         %s\n", strings.Join(names, ", "))
	}
}
