package tracking

import (
	"testing"
	"time"

	"github.com/cyclopcam/logs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/sightline/internal/classify"
	"github.com/ironsheep/sightline/internal/detection"
	"github.com/ironsheep/sightline/internal/zone"
)

var t0 = time.Unix(1700000000, 0)

func at(ms int) time.Time {
	return t0.Add(time.Duration(ms) * time.Millisecond)
}

// obsAt builds an observation whose box is centred on (cx, cy).
func obsAt(cx, cy, size float64) Observation {
	return Observation{
		Region: detection.Region{
			Box:  detection.Box{X: cx - size/2, Y: cy - size/2, W: size, H: size},
			Area: 1000,
		},
		Color: classify.ColorResult{Label: classify.Red, Confidence: 0.9},
		Shape: classify.ShapeResult{Label: classify.Square, Confidence: 0.9},
		Zone:  zone.FarCenter,
	}
}

func newTestRegistry(t *testing.T) *Registry {
	return NewRegistry(DefaultConfig(), logs.NewTestingLog(t))
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 0.15, cfg.MatchDistance)
	assert.Equal(t, 0.4, cfg.MinAreaSimilarity)
	assert.Equal(t, 5, cfg.EvictAfter)
	assert.Equal(t, 16, cfg.HistorySize)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"zero distance", func(c *Config) { c.MatchDistance = 0 }},
		{"similarity above one", func(c *Config) { c.MinAreaSimilarity = 1.1 }},
		{"negative weight", func(c *Config) { c.AreaWeight = -1 }},
		{"zero evict", func(c *Config) { c.EvictAfter = 0 }},
		{"zero history", func(c *Config) { c.HistorySize = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestRegistry_NewObjects(t *testing.T) {
	r := newTestRegistry(t)

	seen := r.Update(at(0), []Observation{obsAt(0.2, 0.5, 0.1), obsAt(0.8, 0.5, 0.1)})

	require.Len(t, seen, 2)
	assert.Equal(t, uint64(1), seen[0].ID)
	assert.Equal(t, uint64(2), seen[1].ID)
	assert.Equal(t, at(0), seen[0].FirstSeen)
	assert.Equal(t, at(0), seen[0].LastSeen)
	assert.Equal(t, 1, seen[0].Sightings())
	assert.Equal(t, 2, r.Len())
}

func TestRegistry_MatchKeepsIdentity(t *testing.T) {
	r := newTestRegistry(t)
	first := r.Update(at(0), []Observation{obsAt(0.5, 0.5, 0.1)})
	first[0].MarkAnnounced(Identification, at(0))

	moved := obsAt(0.55, 0.52, 0.11)
	moved.Zone = zone.ImmediateCenter
	second := r.Update(at(100), []Observation{moved})

	require.Len(t, second, 1)
	obj := second[0]
	assert.Equal(t, first[0].ID, obj.ID)
	assert.Equal(t, zone.ImmediateCenter, obj.Zone)
	assert.Equal(t, at(0), obj.FirstSeen)
	assert.Equal(t, at(100), obj.LastSeen)
	assert.Equal(t, 2, obj.Sightings())

	announced, ok := obj.LastAnnounced(Identification)
	assert.True(t, ok)
	assert.Equal(t, at(0), announced)
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_TooFarIsNewObject(t *testing.T) {
	r := newTestRegistry(t)
	r.Update(at(0), []Observation{obsAt(0.2, 0.5, 0.1)})

	seen := r.Update(at(100), []Observation{obsAt(0.6, 0.5, 0.1)})

	require.Len(t, seen, 1)
	assert.Equal(t, uint64(2), seen[0].ID)
	assert.Equal(t, 2, r.Len())
}

func TestRegistry_AreaMismatchIsNewObject(t *testing.T) {
	r := newTestRegistry(t)
	r.Update(at(0), []Observation{obsAt(0.5, 0.5, 0.1)})

	// Same centre, quarter of the side length: area ratio 1/16.
	seen := r.Update(at(100), []Observation{obsAt(0.5, 0.5, 0.025)})

	require.Len(t, seen, 1)
	assert.Equal(t, uint64(2), seen[0].ID)
}

func TestRegistry_EvictionLaw(t *testing.T) {
	cfg := DefaultConfig()
	r := NewRegistry(cfg, logs.NewTestingLog(t))
	r.Update(at(0), []Observation{obsAt(0.5, 0.5, 0.1)})

	for i := 1; i < cfg.EvictAfter; i++ {
		r.Update(at(i*100), nil)
	}
	obj, ok := r.Get(1)
	require.True(t, ok, "object must survive %d misses", cfg.EvictAfter-1)
	assert.Equal(t, cfg.EvictAfter-1, obj.Misses)

	r.Update(at(cfg.EvictAfter*100), nil)
	_, ok = r.Get(1)
	assert.False(t, ok, "object must be evicted after %d misses", cfg.EvictAfter)
	assert.Zero(t, r.Len())
}

func TestRegistry_ReappearanceAfterMisses(t *testing.T) {
	cfg := DefaultConfig()

	t.Run("one miss short of eviction keeps identity", func(t *testing.T) {
		r := NewRegistry(cfg, logs.NewTestingLog(t))
		first := r.Update(at(0), []Observation{obsAt(0.5, 0.5, 0.1)})
		require.Len(t, first, 1)
		first[0].MarkAnnounced(Identification, at(0))
		first[0].MarkAnnounced(CollisionWarning, at(50))

		for i := 1; i < cfg.EvictAfter; i++ {
			r.Update(at(i*100), nil)
		}
		seen := r.Update(at(cfg.EvictAfter*100), []Observation{obsAt(0.5, 0.5, 0.1)})

		require.Len(t, seen, 1)
		assert.Equal(t, uint64(1), seen[0].ID)
		assert.Zero(t, seen[0].Misses)
		assert.Equal(t, at(0), seen[0].FirstSeen)
		last, ok := seen[0].LastAnnounced(Identification)
		assert.True(t, ok)
		assert.Equal(t, at(0), last)
		last, ok = seen[0].LastAnnounced(CollisionWarning)
		assert.True(t, ok)
		assert.Equal(t, at(50), last)
	})

	t.Run("eviction gives a new identity", func(t *testing.T) {
		r := NewRegistry(cfg, logs.NewTestingLog(t))
		first := r.Update(at(0), []Observation{obsAt(0.5, 0.5, 0.1)})
		require.Len(t, first, 1)
		first[0].MarkAnnounced(Identification, at(0))

		for i := 1; i <= cfg.EvictAfter; i++ {
			r.Update(at(i*100), nil)
		}
		now := at((cfg.EvictAfter + 1) * 100)
		seen := r.Update(now, []Observation{obsAt(0.5, 0.5, 0.1)})

		require.Len(t, seen, 1)
		assert.Equal(t, uint64(2), seen[0].ID)
		assert.Equal(t, now, seen[0].FirstSeen)
		_, ok := seen[0].LastAnnounced(Identification)
		assert.False(t, ok, "a new identity has no announcement history")
		assert.Equal(t, 1, r.Len())
	})
}

func TestRegistry_MatchResetsMisses(t *testing.T) {
	r := newTestRegistry(t)
	r.Update(at(0), []Observation{obsAt(0.5, 0.5, 0.1)})
	r.Update(at(100), nil)
	r.Update(at(200), nil)

	seen := r.Update(at(300), []Observation{obsAt(0.5, 0.5, 0.1)})

	require.Len(t, seen, 1)
	assert.Equal(t, uint64(1), seen[0].ID)
	assert.Zero(t, seen[0].Misses)
}

func TestRegistry_GreedyPrefersBestPair(t *testing.T) {
	r := newTestRegistry(t)
	r.Update(at(0), []Observation{obsAt(0.40, 0.5, 0.1), obsAt(0.52, 0.5, 0.1)})

	// Observation A at 0.50 is closest to object 2; observation B at 0.42
	// is closest to object 1.
	seen := r.Update(at(100), []Observation{obsAt(0.50, 0.5, 0.1), obsAt(0.42, 0.5, 0.1)})

	require.Len(t, seen, 2)
	assert.Equal(t, uint64(2), seen[0].ID)
	assert.Equal(t, uint64(1), seen[1].ID)
}

func TestRegistry_TiePrefersFewerMisses(t *testing.T) {
	r := newTestRegistry(t)
	r.Update(at(0), []Observation{obsAt(0.375, 0.5, 0.125)})   // object 1
	r.Update(at(100), []Observation{obsAt(0.625, 0.5, 0.125)}) // object 2; object 1 misses
	seen := r.Update(at(200), []Observation{obsAt(0.5, 0.5, 0.125)})

	// Equidistant from both; object 2 has fewer misses.
	require.Len(t, seen, 1)
	assert.Equal(t, uint64(2), seen[0].ID)
}

func TestRegistry_TiePrefersOlderObject(t *testing.T) {
	r := newTestRegistry(t)
	r.Update(at(0), []Observation{obsAt(0.375, 0.5, 0.125), obsAt(0.625, 0.5, 0.125)})

	seen := r.Update(at(100), []Observation{obsAt(0.5, 0.5, 0.125)})

	require.Len(t, seen, 1)
	assert.Equal(t, uint64(1), seen[0].ID)
}

func TestRegistry_OneRegionPerObject(t *testing.T) {
	r := newTestRegistry(t)
	r.Update(at(0), []Observation{obsAt(0.5, 0.5, 0.1)})

	seen := r.Update(at(100), []Observation{obsAt(0.5, 0.5, 0.1), obsAt(0.51, 0.5, 0.1)})

	require.Len(t, seen, 2)
	assert.NotEqual(t, seen[0].ID, seen[1].ID)
}

func TestRegistry_LastSeenMonotonic(t *testing.T) {
	r := newTestRegistry(t)
	r.Update(at(500), []Observation{obsAt(0.5, 0.5, 0.1)})

	seen := r.Update(at(400), []Observation{obsAt(0.5, 0.5, 0.1)})

	assert.Equal(t, at(500), seen[0].LastSeen)
}

func TestRegistry_History(t *testing.T) {
	cfg := DefaultConfig()
	cfg.HistorySize = 3 // rounded up to 4
	r := NewRegistry(cfg, logs.NewTestingLog(t))

	for i := 0; i < 6; i++ {
		r.Update(at(i*100), []Observation{obsAt(0.5+float64(i)*0.01, 0.5, 0.1)})
	}

	obj, ok := r.Get(1)
	require.True(t, ok)
	history := obj.History()
	require.Len(t, history, 4)
	assert.Equal(t, at(200), history[0].Time)
	assert.Equal(t, at(500), history[3].Time)
	assert.Equal(t, 6, obj.Sightings())
}

func TestRegistry_ObjectsAndReset(t *testing.T) {
	r := newTestRegistry(t)
	r.Update(at(0), []Observation{obsAt(0.2, 0.5, 0.1), obsAt(0.8, 0.5, 0.1)})

	objects := r.Objects()
	require.Len(t, objects, 2)
	objects[0] = nil
	assert.NotNil(t, r.Objects()[0], "Objects must return a copy")

	r.Reset()
	assert.Zero(t, r.Len())

	seen := r.Update(at(100), []Observation{obsAt(0.2, 0.5, 0.1)})
	assert.Equal(t, uint64(3), seen[0].ID, "ids are not reused after Reset")
}

func TestObject_MarkAnnouncedMonotonic(t *testing.T) {
	obj := &Object{}

	_, ok := obj.LastAnnounced(CollisionWarning)
	assert.False(t, ok)

	obj.MarkAnnounced(CollisionWarning, at(1000))
	obj.MarkAnnounced(CollisionWarning, at(500))

	got, ok := obj.LastAnnounced(CollisionWarning)
	assert.True(t, ok)
	assert.Equal(t, at(1000), got)

	_, ok = obj.LastAnnounced(Identification)
	assert.False(t, ok, "kinds are independent")

	_, ok = obj.LastAnnounced(AlertKind(7))
	assert.False(t, ok)
}

func TestAlertKind_String(t *testing.T) {
	assert.Equal(t, "identification", Identification.String())
	assert.Equal(t, "collision_warning", CollisionWarning.String())
	assert.Equal(t, "path_clear", PathClear.String())
}

func TestNextPowerOf2(t *testing.T) {
	for in, want := range map[int]int{0: 1, 1: 1, 2: 2, 3: 4, 16: 16, 17: 32} {
		assert.Equal(t, want, nextPowerOf2(in), "n=%d", in)
	}
}
