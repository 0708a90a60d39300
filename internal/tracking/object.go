package tracking

import (
	"time"

	"github.com/bmharper/ringbuffer"

	"github.com/ironsheep/sightline/internal/classify"
	"github.com/ironsheep/sightline/internal/detection"
	"github.com/ironsheep/sightline/internal/zone"
)

// AlertKind identifies which announcement an object last received.
type AlertKind int

const (
	Identification AlertKind = iota
	CollisionWarning
	PathClear
	numAlertKinds
)

func (k AlertKind) String() string {
	switch k {
	case Identification:
		return "identification"
	case CollisionWarning:
		return "collision_warning"
	case PathClear:
		return "path_clear"
	}
	return "unknown"
}

// MarshalText encodes the kind as its name.
func (k AlertKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Observation is one classified region of the current frame.
type Observation struct {
	Region detection.Region
	Color  classify.ColorResult
	Shape  classify.ShapeResult
	Zone   zone.Zone
}

// Sighting is one entry of an object's position history.
type Sighting struct {
	Time time.Time     `json:"time"`
	Box  detection.Box `json:"box"`
	Zone zone.Zone     `json:"zone"`
}

// Object is an entity believed to persist across frames.
//
// Objects are owned by the Registry; callers may read them and record
// announcements but must not keep them across Registry.Reset.
type Object struct {
	ID uint64 `json:"id"`

	// Region, Color, Shape and Zone come from the most recent matching
	// observation.
	Region detection.Region     `json:"region"`
	Color  classify.ColorResult `json:"color"`
	Shape  classify.ShapeResult `json:"shape"`
	Zone   zone.Zone            `json:"zone"`

	FirstSeen time.Time `json:"first_seen"`
	LastSeen  time.Time `json:"last_seen"`

	// Misses counts consecutive frames without a match.
	Misses int `json:"misses"`

	sightings int
	announced [numAlertKinds]time.Time
	history   ringbuffer.RingP[Sighting]
}

// LastAnnounced returns the most recent announcement time of kind k and
// whether the object was ever announced with it.
func (o *Object) LastAnnounced(k AlertKind) (time.Time, bool) {
	if k < 0 || k >= numAlertKinds {
		return time.Time{}, false
	}
	t := o.announced[k]
	return t, !t.IsZero()
}

// MarkAnnounced records an announcement of kind k at t. Announcement times
// never move backwards; an earlier t is ignored.
func (o *Object) MarkAnnounced(k AlertKind, t time.Time) {
	if k < 0 || k >= numAlertKinds {
		return
	}
	if t.After(o.announced[k]) {
		o.announced[k] = t
	}
}

// Sightings returns the number of frames the object has been matched in,
// including the frame that created it.
func (o *Object) Sightings() int {
	return o.sightings
}

// History returns the retained sightings, oldest first.
func (o *Object) History() []Sighting {
	out := make([]Sighting, o.history.Len())
	for i := range out {
		out[i] = o.history.Peek(i)
	}
	return out
}

func (o *Object) observe(now time.Time, obs Observation) {
	o.Region = obs.Region
	o.Color = obs.Color
	o.Shape = obs.Shape
	o.Zone = obs.Zone
	o.Misses = 0
	if now.After(o.LastSeen) {
		o.LastSeen = now
	}
	o.sightings++
	o.history.Add(Sighting{Time: now, Box: obs.Region.Box, Zone: obs.Zone})
}
