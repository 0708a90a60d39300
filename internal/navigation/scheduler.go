package navigation

import (
	"sync/atomic"
	"time"

	"github.com/cyclopcam/logs"
	"github.com/google/uuid"

	"github.com/ironsheep/sightline/internal/tracking"
)

// Scheduler turns decisions into alerts and offers them to a Sink.
type Scheduler struct {
	engine  *Engine
	sink    Sink
	log     logs.Log
	stopped atomic.Bool
}

// NewScheduler creates a scheduler that records path-clear announcements on
// engine and offers alerts to sink.
func NewScheduler(engine *Engine, sink Sink, log logs.Log) *Scheduler {
	return &Scheduler{
		engine: engine,
		sink:   sink,
		log:    log,
	}
}

// Dispatch stamps d with a fresh id and the time now, records the
// announcement for cooldown purposes and offers the alert to the sink.
//
// The cooldown is recorded before the offer, so an alert the sink drops
// still paces the next one. Returns the alert and whether the sink accepted
// it. A nil decision, or any decision after Stop, produces nothing.
func (s *Scheduler) Dispatch(now time.Time, d *Decision) (Alert, bool) {
	if d == nil || s.stopped.Load() {
		return Alert{}, false
	}

	msg, color, shape := render(d)
	alert := Alert{
		ID:       uuid.New(),
		Kind:     d.Kind,
		Zone:     d.Zone,
		Priority: d.Priority,
		Guidance: d.Guidance,
		Time:     now,
		Message:  msg,
		Color:    color,
		Shape:    shape,
	}

	if d.Object != nil {
		alert.ObjectID = d.Object.ID
		d.Object.MarkAnnounced(d.Kind, now)
	} else if d.Kind == tracking.PathClear {
		s.engine.MarkPathClear(now)
	}

	if !s.sink.Offer(alert) {
		s.log.Debugf("Navigation: speech busy, dropped %v alert %q", alert.Kind, alert.Message)
		return alert, false
	}
	return alert, true
}

// Stop prevents any further alert from being offered.
func (s *Scheduler) Stop() {
	s.stopped.Store(true)
}

// Stopped reports whether Stop has been called.
func (s *Scheduler) Stopped() bool {
	return s.stopped.Load()
}
