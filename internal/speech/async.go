package speech

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cyclopcam/logs"

	"github.com/ironsheep/sightline/internal/navigation"
)

// DefaultSpeakTimeout bounds a single Speak call made by Async.
const DefaultSpeakTimeout = 10 * time.Second

// Async adapts a Speaker into a non-blocking navigation.Sink.
//
// At most one alert is in flight. Offer returns false, dropping the alert,
// while the speaker is still busy with the previous one or after Close.
type Async struct {
	speaker Speaker
	log     logs.Log
	timeout time.Duration

	mu      sync.Mutex // guards closed and sends on queue
	closed  bool
	busy    atomic.Bool
	queue   chan navigation.Alert
	wg      sync.WaitGroup
	spoken  atomic.Int64
	dropped atomic.Int64
}

// NewAsync starts a worker that feeds accepted alerts to speaker.
func NewAsync(speaker Speaker, log logs.Log) *Async {
	a := &Async{
		speaker: speaker,
		log:     log,
		timeout: DefaultSpeakTimeout,
		queue:   make(chan navigation.Alert, 1),
	}
	a.wg.Add(1)
	go a.worker()
	return a
}

// Offer hands alert to the speaker if it is idle.
func (a *Async) Offer(alert navigation.Alert) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed || !a.busy.CompareAndSwap(false, true) {
		a.dropped.Add(1)
		return false
	}
	// busy guarantees the buffered slot is free, so this never blocks.
	a.queue <- alert
	return true
}

// Busy reports whether an alert is queued or being spoken.
func (a *Async) Busy() bool {
	return a.busy.Load()
}

// Spoken and Dropped count delivered and refused alerts.
func (a *Async) Spoken() int64  { return a.spoken.Load() }
func (a *Async) Dropped() int64 { return a.dropped.Load() }

// Close refuses further alerts, lets the pending one finish and waits for
// the worker to exit. Safe to call more than once.
func (a *Async) Close() {
	a.mu.Lock()
	if !a.closed {
		a.closed = true
		close(a.queue)
	}
	a.mu.Unlock()
	a.wg.Wait()
}

func (a *Async) worker() {
	defer a.wg.Done()
	for alert := range a.queue {
		ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
		if err := a.speaker.Speak(ctx, alert); err != nil {
			a.log.Warnf("Speech: failed to speak %q: %v", alert.Message, err)
		} else {
			a.spoken.Add(1)
		}
		cancel()
		a.busy.Store(false)
	}
}
