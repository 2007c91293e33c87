package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/gogpu/fpvosd"
	"github.com/gogpu/fpvosd/internal/parallel"
	"github.com/gogpu/fpvosd/osdfile"
	"github.com/gogpu/fpvosd/overlay"
)

// Sink persists rendered frames under their output number. WriteFrame is
// called concurrently for distinct numbers and must not retain img after it
// returns.
type Sink interface {
	WriteFrame(ctx context.Context, n uint32, img *image.NRGBA) error
}

// GapFiller is implemented by sinks that can fill the numbers not covered by
// a rendered frame. numbers are the rendered output numbers in ascending
// order; start is the first number of the sequence and end the last.
type GapFiller interface {
	FillGaps(numbers []uint32, start, end uint32, blank *image.NRGBA) error
}

// Renderer draws one snapshot into a frame. *overlay.Renderer implements it.
type Renderer interface {
	Bounds() image.Rectangle
	TileCount() int
	RenderInto(dst *image.NRGBA, s *osdfile.Snapshot) error
}

var _ Renderer = (*overlay.Renderer)(nil)

// Run renders the frames selected by the window and writes each to sink.
//
// Decoding must be complete: frames is the fully materialized sequence, so
// output numbering and asset checks see the whole frame range up front.
func Run(ctx context.Context, frames []osdfile.Frame, r Renderer, sink Sink, opts ...Option) (Report, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.window.Validate(); err != nil {
		return Report{Status: StatusFailed}, err
	}

	sel := o.window.Select(frames)
	rep := Report{Total: len(sel)}
	if len(sel) > 0 {
		rep.First, rep.Last = sel[0].Number, sel[len(sel)-1].Number
	}
	if err := checkAssets(sel, r); err != nil {
		rep.Status = StatusFailed
		return rep, err
	}

	log := fpvosd.Logger()
	log.Info("pipeline: rendering frames", "frames", len(sel), "first", rep.First, "last", rep.Last)

	bounds := r.Bounds()
	pool := o.pool
	prog := &progress{fn: o.progress, total: len(sel)}
	workers := parallel.NewWorkerPool(o.workers)

	err := workers.ForEach(ctx, len(sel), func(ctx context.Context, i int) error {
		s := sel[i]
		buf := pool.Get(bounds.Dx(), bounds.Dy())
		defer pool.Put(buf)

		if err := r.RenderInto(buf, s.Frame.Snapshot); err != nil {
			return fmt.Errorf("pipeline: render frame %d: %w", s.Frame.Index, err)
		}
		if err := sink.WriteFrame(ctx, s.Number, buf); err != nil {
			return fmt.Errorf("%w: frame %d: %w", fpvosd.ErrRenderIO, s.Number, err)
		}
		log.Debug("pipeline: frame written", "index", s.Frame.Index, "number", s.Number)
		prog.add(1)
		return nil
	})
	rep.Done = prog.count()

	if err != nil {
		return finish(ctx, rep, err)
	}

	if gf, ok := sink.(GapFiller); ok && o.fillGaps && len(sel) > 0 {
		end := rep.Last
		if o.window.End != nil {
			end = *o.window.End
		}
		numbers := numbersOf(sel)
		log.Info("pipeline: linking missing frames", "start", o.window.Start, "end", end)
		if err := gf.FillGaps(numbers, o.window.Start, end, image.NewNRGBA(bounds)); err != nil {
			rep.Status = StatusFailed
			return rep, fmt.Errorf("%w: %w", fpvosd.ErrRenderIO, err)
		}
	}

	rep.Status = StatusCompleted
	log.Info("pipeline: completed", "frames", rep.Done)
	return rep, nil
}

// finish classifies a worker error: the caller's own cancellation is a
// partial completion, anything else a failure.
func finish(ctx context.Context, rep Report, err error) (Report, error) {
	if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
		rep.Status = StatusCancelled
		fpvosd.Logger().Warn("pipeline: cancelled", "done", rep.Done, "total", rep.Total)
		return rep, nil
	}
	rep.Status = StatusFailed
	fpvosd.Logger().Error("pipeline: aborted", "done", rep.Done, "total", rep.Total, "err", err)
	return rep, err
}

// CheckAssets reports ErrAssetMissing when a frame selected by w uses a tile
// the renderer's glyph set does not cover. Run and RunOrdered perform the same
// check; callers use it to fail before acquiring outputs such as an encoder.
func CheckAssets(frames []osdfile.Frame, r Renderer, w overlay.Window) error {
	return checkAssets(w.Select(frames), r)
}

// checkAssets fails when a selected snapshot uses a tile index the glyph set
// does not cover.
func checkAssets(sel []overlay.Shifted, r Renderer) error {
	var hi uint16
	for _, s := range sel {
		hi = max(hi, s.Frame.Snapshot.MaxTile())
	}
	if len(sel) > 0 && int(hi) >= r.TileCount() {
		return fmt.Errorf("%w: tile %d used but font has %d tiles", fpvosd.ErrAssetMissing, hi, r.TileCount())
	}
	return nil
}

// numbersOf returns the output numbers of sel.
func numbersOf(sel []overlay.Shifted) []uint32 {
	n := make([]uint32, len(sel))
	for i, s := range sel {
		n[i] = s.Number
	}
	return n
}
