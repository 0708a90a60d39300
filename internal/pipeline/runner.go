package pipeline

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"

	"github.com/cyclopcam/logs"

	"github.com/ironsheep/sightline/internal/imaging"
	"github.com/ironsheep/sightline/internal/navigation"
)

// FrameSource supplies frames in capture order. Next returns io.EOF when
// the source is exhausted.
type FrameSource interface {
	Next(ctx context.Context) (*imaging.Frame, error)
}

// Runner feeds a Pipeline from a single-slot mailbox.
//
// Submit never blocks: a frame that arrives while the previous one is still
// waiting replaces it, so the pipeline always works on the most recent
// frame and a slow frame never builds a queue.
type Runner struct {
	pipeline *Pipeline
	log      logs.Log

	// OnFrame, when set, is called from Run after each processed frame with
	// the alert it produced (nil for none).
	OnFrame func(f *imaging.Frame, alert *navigation.Alert)

	mu      sync.Mutex
	pending *imaging.Frame
	closed  bool
	wake    chan struct{}

	processed atomic.Int64
	skipped   atomic.Int64
}

// NewRunner creates a runner for p.
func NewRunner(p *Pipeline, log logs.Log) *Runner {
	return &Runner{
		pipeline: p,
		log:      log,
		wake:     make(chan struct{}, 1),
	}
}

// Submit offers f for processing, replacing any frame not yet picked up.
// Frames submitted after Close are ignored.
func (r *Runner) Submit(f *imaging.Frame) {
	if f == nil {
		return
	}
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	if r.pending != nil {
		r.skipped.Add(1)
		r.log.Debugf("Runner: frame %v replaced by %v before processing", r.pending.Seq(), f.Seq())
	}
	r.pending = f
	r.mu.Unlock()
	r.signal()
}

// Close tells Run to return once the pending frame, if any, is processed.
func (r *Runner) Close() {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
	r.signal()
}

func (r *Runner) signal() {
	select {
	case r.wake <- struct{}{}:
	default:
	}
}

func (r *Runner) take() (f *imaging.Frame, closed bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f = r.pending
	r.pending = nil
	return f, r.closed
}

// Run processes frames one at a time until Close or ctx is done.
//
// Cancellation is checked between frames; a frame in progress always
// completes. When ctx is done the pipeline is stopped so that no further
// alert is offered, and ctx.Err() is returned. After Close, Run returns nil.
func (r *Runner) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			r.pipeline.Stop()
			return err
		}
		f, closed := r.take()
		if f == nil {
			if closed {
				return nil
			}
			select {
			case <-ctx.Done():
				r.pipeline.Stop()
				return ctx.Err()
			case <-r.wake:
			}
			continue
		}

		alert := r.pipeline.Process(f)
		r.processed.Add(1)
		if r.OnFrame != nil {
			r.OnFrame(f, alert)
		}
	}
}

// Pump reads src until it is exhausted, ctx is done or it fails, submitting
// every frame. It does not close the runner.
func (r *Runner) Pump(ctx context.Context, src FrameSource) error {
	for {
		f, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		r.Submit(f)
	}
}

// Processed returns the number of frames run through the pipeline.
func (r *Runner) Processed() int64 {
	return r.processed.Load()
}

// Skipped returns the number of frames replaced before they were processed.
func (r *Runner) Skipped() int64 {
	return r.skipped.Load()
}
