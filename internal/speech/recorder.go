package speech

import (
	"sync"

	"github.com/ironsheep/sightline/internal/navigation"
)

// Recorder is a synchronous Sink that keeps every accepted alert. It stands
// in for a real speech collaborator in tests and dry runs.
type Recorder struct {
	mu      sync.Mutex
	busy    bool
	alerts  []navigation.Alert
	refused int
}

// SetBusy makes the recorder refuse (true) or accept (false) offers.
func (r *Recorder) SetBusy(busy bool) {
	r.mu.Lock()
	r.busy = busy
	r.mu.Unlock()
}

func (r *Recorder) Offer(a navigation.Alert) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.busy {
		r.refused++
		return false
	}
	r.alerts = append(r.alerts, a)
	return true
}

// Alerts returns a copy of the accepted alerts in offer order.
func (r *Recorder) Alerts() []navigation.Alert {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]navigation.Alert, len(r.alerts))
	copy(out, r.alerts)
	return out
}

// Refused returns the number of offers made while busy.
func (r *Recorder) Refused() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.refused
}
