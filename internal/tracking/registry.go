// Package tracking keeps lightweight object identity across frames.
//
// The Registry pairs each frame's observations with the objects it already
// knows by proximity and size, so that an object standing still (or moving
// slowly) keeps its id and announcement history from frame to frame.
package tracking

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/bmharper/ringbuffer"
	"github.com/cyclopcam/logs"
)

// Config holds the matching and eviction thresholds.
type Config struct {
	// MatchDistance is the maximum centre distance, in normalized units,
	// between an object and an observation that may be paired.
	MatchDistance float64 `json:"match_distance"`

	// MinAreaSimilarity is the minimum ratio of the smaller to the larger
	// box area of a pairing.
	MinAreaSimilarity float64 `json:"min_area_similarity"`

	// AreaWeight scales the area dissimilarity term of the pairing score.
	AreaWeight float64 `json:"area_weight"`

	// EvictAfter is the number of consecutive missed frames after which an
	// object is forgotten.
	EvictAfter int `json:"evict_after"`

	// HistorySize is the number of sightings kept per object. Rounded up to
	// a power of two.
	HistorySize int `json:"history_size"`
}

// DefaultConfig returns the standard tracking thresholds.
func DefaultConfig() Config {
	return Config{
		MatchDistance:     0.15,
		MinAreaSimilarity: 0.4,
		AreaWeight:        0.5,
		EvictAfter:        5,
		HistorySize:       16,
	}
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	if !(c.MatchDistance > 0) {
		return fmt.Errorf("match distance must be positive, got %v", c.MatchDistance)
	}
	if c.MinAreaSimilarity < 0 || c.MinAreaSimilarity > 1 {
		return fmt.Errorf("min area similarity must be in [0, 1], got %v", c.MinAreaSimilarity)
	}
	if c.AreaWeight < 0 {
		return fmt.Errorf("area weight must be non-negative, got %v", c.AreaWeight)
	}
	if c.EvictAfter < 1 {
		return fmt.Errorf("evict after must be at least 1, got %v", c.EvictAfter)
	}
	if c.HistorySize < 1 {
		return fmt.Errorf("history size must be at least 1, got %v", c.HistorySize)
	}
	return nil
}

// Registry holds the tracked objects.
//
// A Registry is owned by a single goroutine and is not safe for
// concurrent use.
type Registry struct {
	cfg     Config
	log     logs.Log
	objects []*Object // ordered by id
	nextID  uint64
}

// NewRegistry creates an empty registry.
func NewRegistry(cfg Config, log logs.Log) *Registry {
	return &Registry{
		cfg:    cfg,
		log:    log,
		nextID: 1,
	}
}

type candidate struct {
	object int
	obs    int
	score  float64
}

// Update folds one frame's observations into the registry and returns the
// objects seen in this frame, in observation order.
//
// # Matching
//
// Every (object, observation) pair whose centre distance is within
// MatchDistance and whose area similarity is at least MinAreaSimilarity is
// a candidate, scored as
//
//	distance/MatchDistance + AreaWeight*(1 - similarity)
//
// Candidates are accepted greedily, best score first, each object and
// observation at most once. Equal scores prefer the object with fewer
// misses, then the older object.
//
// Matched objects take the observation's region, labels and zone and reset
// their miss count. Unmatched observations become new objects. Unmatched
// objects count a miss and are evicted once their misses reach EvictAfter.
func (r *Registry) Update(now time.Time, observations []Observation) []*Object {
	candidates := make([]candidate, 0)
	for i, obj := range r.objects {
		for j := range observations {
			box := observations[j].Region.Box
			dist := obj.Region.Box.CenterDistance(box)
			if dist > r.cfg.MatchDistance {
				continue
			}
			sim := areaSimilarity(obj.Region.Box.Area(), box.Area())
			if sim < r.cfg.MinAreaSimilarity {
				continue
			}
			candidates = append(candidates, candidate{
				object: i,
				obs:    j,
				score:  dist/r.cfg.MatchDistance + r.cfg.AreaWeight*(1-sim),
			})
		}
	}

	sort.SliceStable(candidates, func(a, b int) bool {
		ca, cb := candidates[a], candidates[b]
		if ca.score != cb.score {
			return ca.score < cb.score
		}
		oa, ob := r.objects[ca.object], r.objects[cb.object]
		if oa.Misses != ob.Misses {
			return oa.Misses < ob.Misses
		}
		if oa.ID != ob.ID {
			return oa.ID < ob.ID
		}
		return ca.obs < cb.obs
	})

	obsToObject := make([]int, len(observations))
	for j := range obsToObject {
		obsToObject[j] = -1
	}
	objectMatched := make([]bool, len(r.objects))
	for _, c := range candidates {
		if objectMatched[c.object] || obsToObject[c.obs] != -1 {
			continue
		}
		objectMatched[c.object] = true
		obsToObject[c.obs] = c.object
	}

	seen := make([]*Object, 0, len(observations))
	for j, obs := range observations {
		var obj *Object
		if i := obsToObject[j]; i != -1 {
			obj = r.objects[i]
		} else {
			obj = r.newObject(now)
			r.log.Debugf("Tracking: new object %v %v %v in %v", obj.ID, obs.Color.Label, obs.Shape.Label, obs.Zone)
		}
		obj.observe(now, obs)
		seen = append(seen, obj)
	}

	kept := r.objects[:0]
	for i, obj := range r.objects {
		if i < len(objectMatched) && !objectMatched[i] {
			obj.Misses++
			if obj.Misses >= r.cfg.EvictAfter {
				r.log.Debugf("Tracking: evicting object %v after %v misses", obj.ID, obj.Misses)
				continue
			}
		}
		kept = append(kept, obj)
	}
	// Drop references past the new length so evicted objects can be collected.
	for i := len(kept); i < len(r.objects); i++ {
		r.objects[i] = nil
	}
	r.objects = kept

	return seen
}

func (r *Registry) newObject(now time.Time) *Object {
	obj := &Object{
		ID:        r.nextID,
		FirstSeen: now,
		LastSeen:  now,
		history:   ringbuffer.NewRingP[Sighting](nextPowerOf2(r.cfg.HistorySize)),
	}
	r.nextID++
	r.objects = append(r.objects, obj)
	return obj
}

// Objects returns all tracked objects ordered by id.
func (r *Registry) Objects() []*Object {
	out := make([]*Object, len(r.objects))
	copy(out, r.objects)
	return out
}

// Get returns the object with the given id.
func (r *Registry) Get(id uint64) (*Object, bool) {
	for _, obj := range r.objects {
		if obj.ID == id {
			return obj, true
		}
	}
	return nil, false
}

// Len returns the number of tracked objects.
func (r *Registry) Len() int {
	return len(r.objects)
}

// Reset forgets every object. Ids are not reused.
func (r *Registry) Reset() {
	r.objects = nil
}

func areaSimilarity(a, b float64) float64 {
	hi := math.Max(a, b)
	if hi <= 0 {
		return 0
	}
	return math.Min(a, b) / hi
}

func nextPowerOf2(n int) int {
	if n <= 1 {
		return 1
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
