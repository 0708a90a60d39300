// Package navigation decides what, if anything, to announce for a frame and
// hands the resulting alert to the speech collaborator.
//
// The Engine is a decision function over the objects seen in the current
// frame. It applies three rules in order: collision warnings for the
// critical zone, identification of the most urgent eligible object, and a
// rate-limited "path clear" once the critical zone has stayed empty. The
// Scheduler turns a decision into an Alert, records its cooldown and offers
// it to a non-blocking Sink.
package navigation

import (
	"fmt"
	"time"

	"github.com/ironsheep/sightline/internal/tracking"
	"github.com/ironsheep/sightline/internal/zone"
)

// Config holds the announcement pacing.
type Config struct {
	// IdentifyCooldown is the minimum time between identifications of one
	// object.
	IdentifyCooldown time.Duration `json:"identify_cooldown"`

	// CollisionCooldown is the minimum time between collision warnings for
	// one object. Shorter than IdentifyCooldown so safety alerts repeat
	// sooner.
	CollisionCooldown time.Duration `json:"collision_cooldown"`

	// PathClearCooldown is the minimum time between path-clear alerts.
	PathClearCooldown time.Duration `json:"path_clear_cooldown"`

	// PathClearAfter is how long the critical zone must stay empty before a
	// path-clear alert may be emitted.
	PathClearAfter time.Duration `json:"path_clear_after"`

	// MinSightings is the number of frames an object must be seen in before
	// it can be identified.
	MinSightings int `json:"min_sightings"`
}

// DefaultConfig returns the standard announcement pacing.
func DefaultConfig() Config {
	return Config{
		IdentifyCooldown:  2500 * time.Millisecond,
		CollisionCooldown: 800 * time.Millisecond,
		PathClearCooldown: 10 * time.Second,
		PathClearAfter:    3 * time.Second,
		MinSightings:      1,
	}
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	if c.IdentifyCooldown <= 0 || c.CollisionCooldown <= 0 || c.PathClearCooldown <= 0 {
		return fmt.Errorf("cooldowns must be positive, got identify %v, collision %v, path clear %v",
			c.IdentifyCooldown, c.CollisionCooldown, c.PathClearCooldown)
	}
	if c.PathClearAfter < 0 {
		return fmt.Errorf("path clear delay must be non-negative, got %v", c.PathClearAfter)
	}
	if c.MinSightings < 1 {
		return fmt.Errorf("min sightings must be at least 1, got %v", c.MinSightings)
	}
	return nil
}

// Decision is the engine's choice for one frame.
type Decision struct {
	Kind     tracking.AlertKind
	Object   *tracking.Object // nil for path clear
	Zone     zone.Zone
	Priority zone.Priority

	// Guidance is set for collision warnings only.
	Guidance Guidance
}

// Engine selects at most one announcement per frame.
//
// Apart from its configuration the engine only remembers when the critical
// zone became empty and when the last path-clear alert went out; object
// cooldowns live on the tracked objects themselves. Not safe for
// concurrent use.
type Engine struct {
	cfg Config

	criticalEmptySince time.Time // zero while the critical zone is occupied
	lastPathClear      time.Time
}

// NewEngine creates a decision engine.
func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

// Decide returns the announcement for a frame whose matched objects are
// seen, or nil when nothing should be said.
//
// # Rules
//
//  1. If any seen object is in the critical zone, warn about the largest
//     such object once its collision cooldown has elapsed. While the
//     critical zone is occupied nothing else is announced, even when the
//     warning itself is cooling down. Label confidence plays no part.
//     The warning carries a Guidance derived from which immediate side
//     zones are occupied.
//  2. Otherwise identify the seen object in the highest priority tier whose
//     identification cooldown has elapsed and that has at least
//     MinSightings sightings. Ties go to the most recently first-seen
//     object, then the larger one, then the lower id.
//  3. Otherwise, once the critical zone has been empty for PathClearAfter
//     and the path-clear cooldown has elapsed, report the path as clear.
func (e *Engine) Decide(now time.Time, seen []*tracking.Object) *Decision {
	var critical *tracking.Object
	for _, obj := range seen {
		if obj.Zone.Priority() != zone.Critical {
			continue
		}
		if critical == nil || obj.Region.Area > critical.Region.Area ||
			(obj.Region.Area == critical.Region.Area && obj.ID < critical.ID) {
			critical = obj
		}
	}

	if critical != nil {
		e.criticalEmptySince = time.Time{}
		if !cooledDown(critical, tracking.CollisionWarning, now, e.cfg.CollisionCooldown) {
			return nil
		}
		return &Decision{
			Kind:     tracking.CollisionWarning,
			Object:   critical,
			Zone:     critical.Zone,
			Priority: zone.Critical,
			Guidance: escapeRoute(seen),
		}
	}

	if e.criticalEmptySince.IsZero() {
		e.criticalEmptySince = now
	}

	var best *tracking.Object
	for _, obj := range seen {
		if obj.Sightings() < e.cfg.MinSightings {
			continue
		}
		if !cooledDown(obj, tracking.Identification, now, e.cfg.IdentifyCooldown) {
			continue
		}
		if best == nil || moreUrgent(obj, best) {
			best = obj
		}
	}
	if best != nil {
		return &Decision{
			Kind:     tracking.Identification,
			Object:   best,
			Zone:     best.Zone,
			Priority: best.Zone.Priority(),
		}
	}

	if now.Sub(e.criticalEmptySince) < e.cfg.PathClearAfter {
		return nil
	}
	if !e.lastPathClear.IsZero() && now.Sub(e.lastPathClear) < e.cfg.PathClearCooldown {
		return nil
	}
	return &Decision{
		Kind:     tracking.PathClear,
		Zone:     zone.ImmediateCenter,
		Priority: zone.Low,
	}
}

// MarkPathClear records a path-clear announcement at t. Earlier times are
// ignored.
func (e *Engine) MarkPathClear(t time.Time) {
	if t.After(e.lastPathClear) {
		e.lastPathClear = t
	}
}

// Reset forgets the critical-zone timer and the path-clear stamp.
func (e *Engine) Reset() {
	e.criticalEmptySince = time.Time{}
	e.lastPathClear = time.Time{}
}

func cooledDown(obj *tracking.Object, kind tracking.AlertKind, now time.Time, cooldown time.Duration) bool {
	last, ok := obj.LastAnnounced(kind)
	return !ok || now.Sub(last) >= cooldown
}

// moreUrgent reports whether a should be identified before b.
func moreUrgent(a, b *tracking.Object) bool {
	if pa, pb := a.Zone.Priority(), b.Zone.Priority(); pa != pb {
		return pa > pb
	}
	if !a.FirstSeen.Equal(b.FirstSeen) {
		return a.FirstSeen.After(b.FirstSeen)
	}
	if a.Region.Area != b.Region.Area {
		return a.Region.Area > b.Region.Area
	}
	return a.ID < b.ID
}
