package main

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"
)

// progressBar adapts pipeline progress callbacks to a terminal bar. Its
// methods are no-ops on a nil bar, which newProgressBar returns when stderr
// is not a terminal.
type progressBar struct {
	w     io.Writer
	label string

	mu   sync.Mutex
	bar  *progressbar.ProgressBar
	done int
}

func newProgressBar(label string) *progressBar {
	if !term.IsTerminal(int(os.Stderr.Fd())) {
		return nil
	}
	return newProgressBarTo(os.Stderr, label)
}

func newProgressBarTo(w io.Writer, label string) *progressBar {
	return &progressBar{w: w, label: label}
}

// update advances the bar. The total is only known once rendering starts, so
// the bar is created on the first call. Callbacks from different workers may
// arrive out of order; stale counts are dropped.
func (b *progressBar) update(done, total int) {
	if b == nil || total <= 0 {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.bar == nil {
		b.bar = progressbar.NewOptions(total,
			progressbar.OptionSetWriter(b.w),
			progressbar.OptionSetDescription(b.label),
			progressbar.OptionSetTheme(progressbar.ThemeASCII),
			progressbar.OptionFullWidth(),
			progressbar.OptionShowCount(),
			progressbar.OptionSetPredictTime(true),
			progressbar.OptionThrottle(100*time.Millisecond))
	}
	if done <= b.done {
		return
	}
	b.done = done
	_ = b.bar.Set(done)
}

// finish leaves the bar at its last state and ends its line.
func (b *progressBar) finish() {
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.bar == nil {
		return
	}
	_ = b.bar.Exit()
	fmt.Fprintln(b.w)
}
