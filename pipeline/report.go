package pipeline

import (
	"fmt"
	"sync"

	"github.com/gogpu/fpvosd"
)

// Status is the outcome of a run.
type Status uint8

const (
	// StatusCompleted means every frame was produced.
	StatusCompleted Status = iota
	// StatusCancelled means the caller stopped the run; output is partial.
	StatusCancelled
	// StatusFailed means a frame failed and the run was aborted.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusCompleted:
		return "completed"
	case StatusCancelled:
		return "cancelled"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("Status(%d)", uint8(s))
	}
}

// Report summarizes a run. First and Last are the lowest and highest output
// numbers selected for rendering.
type Report struct {
	Status Status
	Done   int
	Total  int
	First  uint32
	Last   uint32
}

// Err returns fpvosd.ErrCancelled for a cancelled run and nil otherwise; a
// failed run's error is returned by Run itself.
func (r Report) Err() error {
	if r.Status == StatusCancelled {
		return fmt.Errorf("%w after %d of %d frames", fpvosd.ErrCancelled, r.Done, r.Total)
	}
	return nil
}

// progress serializes callbacks and keeps the reported count monotonic.
type progress struct {
	mu    sync.Mutex
	fn    ProgressFunc
	total int
	done  int
}

func (p *progress) add(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.done += n
	if p.fn != nil {
		p.fn(p.done, p.total)
	}
}

func (p *progress) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done
}
