package pipeline

import (
	imgio "github.com/gogpu/fpvosd/internal/image"
	"github.com/gogpu/fpvosd/overlay"
)

// ProgressFunc receives the number of completed frames and the total. Calls
// are serialized and done never decreases.
type ProgressFunc func(done, total int)

// Option configures a run.
type Option func(*options)

type options struct {
	workers  int
	window   overlay.Window
	progress ProgressFunc
	fillGaps bool
	pool     *imgio.Pool
}

func defaultOptions() options {
	return options{pool: imgio.NewPool(0)}
}

// WithWorkers sets the number of render workers. Zero or negative uses
// GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithWindow applies a frame shift and an output number range.
func WithWindow(w overlay.Window) Option {
	return func(o *options) {
		o.window = w
	}
}

// WithProgress installs a progress callback.
func WithProgress(fn ProgressFunc) Option {
	return func(o *options) {
		o.progress = fn
	}
}

// WithFillGaps makes Run fill the numbers between rendered frames when the
// sink implements GapFiller.
func WithFillGaps(fill bool) Option {
	return func(o *options) {
		o.fillGaps = fill
	}
}
