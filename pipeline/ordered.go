package pipeline

import (
	"context"
	"fmt"
	"image"

	"github.com/gogpu/fpvosd"
	"github.com/gogpu/fpvosd/internal/parallel"
	"github.com/gogpu/fpvosd/osdfile"
)

// OrderedSink receives exactly one image per video frame, numbers strictly
// ascending without gaps. It must not retain img after WriteFrame returns.
type OrderedSink interface {
	WriteFrame(n uint32, img *image.NRGBA) error
}

// batchPerWorker is how many frames each worker renders per batch.
const batchPerWorker = 4

// RunOrdered renders frames in parallel batches and pushes them to sink in
// video frame order, from the window start to its end (or the last selected
// frame). Numbers before the first rendered frame get a transparent image;
// numbers between rendered frames repeat the preceding one.
func RunOrdered(ctx context.Context, frames []osdfile.Frame, r Renderer, sink OrderedSink, opts ...Option) (Report, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.window.Validate(); err != nil {
		return Report{Status: StatusFailed}, err
	}

	sel := o.window.Select(frames)
	rep := Report{First: o.window.Start}
	switch {
	case o.window.End != nil:
		rep.Last = *o.window.End
	case len(sel) > 0:
		rep.Last = sel[len(sel)-1].Number
	default:
		rep.Status = StatusCompleted
		return rep, nil
	}
	rep.Total = int(rep.Last-rep.First) + 1
	if err := checkAssets(sel, r); err != nil {
		rep.Status = StatusFailed
		return rep, err
	}

	log := fpvosd.Logger()
	log.Info("pipeline: encoding frames", "rendered", len(sel), "first", rep.First, "last", rep.Last)

	bounds := r.Bounds()
	pool := o.pool
	workers := parallel.NewWorkerPool(o.workers)
	prog := &progress{fn: o.progress, total: rep.Total}

	current := image.NewNRGBA(bounds) // transparent until the first frame
	next := uint64(rep.First)
	emit := func(upTo uint32) error {
		for ; next <= uint64(upTo); next++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := sink.WriteFrame(uint32(next), current); err != nil {
				return fmt.Errorf("%w: frame %d: %w", fpvosd.ErrRenderIO, next, err)
			}
			prog.add(1)
		}
		return nil
	}

	batchSize := workers.Workers() * batchPerWorker
	var err error
	for start := 0; start < len(sel) && err == nil; start += batchSize {
		batch := sel[start:min(start+batchSize, len(sel))]
		images := make([]*image.NRGBA, len(batch))
		err = workers.ForEach(ctx, len(batch), func(_ context.Context, i int) error {
			buf := pool.Get(bounds.Dx(), bounds.Dy())
			if err := r.RenderInto(buf, batch[i].Frame.Snapshot); err != nil {
				pool.Put(buf)
				return fmt.Errorf("pipeline: render frame %d: %w", batch[i].Frame.Index, err)
			}
			images[i] = buf
			return nil
		})
		for i, s := range batch {
			if err == nil && uint64(s.Number) > next {
				err = emit(s.Number - 1)
			}
			if images[i] == nil {
				continue
			}
			if err != nil {
				pool.Put(images[i])
				continue
			}
			pool.Put(current)
			current = images[i]
			err = emit(s.Number)
		}
	}
	if err == nil {
		err = emit(rep.Last)
	}
	rep.Done = prog.count()

	if err != nil {
		return finish(ctx, rep, err)
	}
	rep.Status = StatusCompleted
	log.Info("pipeline: completed", "frames", rep.Done)
	return rep, nil
}
