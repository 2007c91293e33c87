// Package fpvosd renders OSD recordings from FPV video goggles into
// transparent overlay frames.
//
// # Overview
//
// Digital FPV goggles record the flight controller's on-screen display as a
// separate binary file: a character grid whose cells reference glyphs of a
// bitmap font. fpvosd decodes these recordings, picks the tile size that best
// fits a target video and burns every grid snapshot into a transparent PNG
// (or pushes it to an encoder) so the OSD can be composited onto the flight
// video afterwards.
//
// # Quick Start
//
//	f, err := osdfile.Open("DJIG0001.osd")
//	if err != nil {
//	    return err
//	}
//	lay := f.Header.Layout()
//	dec, err := scaling.Plan(scaling.Input{
//	    Grid:        f.Header.Grid,
//	    Native:      f.Header.TileKind,
//	    Target:      &scaling.Resolution{Width: 1920, Height: 1080},
//	    Margins:     scaling.DefaultMargins,
//	    MinCoverage: scaling.DefaultMinCoverage,
//	})
//	tiles, err := tileset.Dir("fonts").Load(lay.Variant, dec.TileKind)
//	tiles, err = tiles.Scaled(dec.TileWidth, dec.TileHeight)
//	r, err := overlay.NewRenderer(lay, tiles, dec, overlay.WithHiddenItems("gpslat"))
//	sink, err := pipeline.NewDirSink("out")
//	report, err := pipeline.Run(ctx, f.Frames(), r, sink, pipeline.WithFillGaps(true))
//
// # Architecture
//
// The module is organized into:
//   - layout: font variants, grid kinds, tile kinds and the OSD item table
//   - osdfile: sequential decoder producing grid snapshots
//   - scaling: pure tile kind / scale planner
//   - tileset: font asset loading and glyph rescaling
//   - overlay: per-snapshot compositor with hiding masks and frame windows
//   - pipeline: bounded parallel renderer writing numbered frames or an ordered stream
//   - video, config: ffmpeg/ffprobe adapters and YAML run configuration
//
// # Concurrency
//
// Decoding is sequential. Rendering is the only parallel phase: workers share
// the read-only tile set, layout and scaling decision, and each writes to its
// own output slot.
//
// # Logging
//
// fpvosd is silent by default. Call [SetLogger] to route diagnostics to a
// [log/slog] handler.
package fpvosd
