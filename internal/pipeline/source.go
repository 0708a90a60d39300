package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/ironsheep/sightline/internal/imaging"
)

// DefaultFrameInterval is the nominal spacing of frames replayed from disk.
const DefaultFrameInterval = 100 * time.Millisecond

// DirOptions controls a DirSource.
type DirOptions struct {
	// Interval is the nominal time between frames, used for the capture
	// timestamps. Zero means DefaultFrameInterval.
	Interval time.Duration

	// Start is the capture time of the first frame. Zero means now.
	Start time.Time

	// MaxWidth, when positive, downscales wider frames.
	MaxWidth int

	// Realtime makes Next wait one Interval between frames, like a camera.
	Realtime bool

	// Loops is the number of passes over the directory; values below 2
	// mean a single pass. Timestamps and sequence numbers keep increasing
	// across passes.
	Loops int

	// Cache keeps decoded images so later passes skip decoding. When nil
	// and Loops is above 1, NewDirSource creates one.
	Cache *imaging.ImageCache
}

// DirSource replays the image files of a directory, in name order, as a
// FrameSource.
type DirSource struct {
	paths    []string
	loader   imaging.FrameLoader
	interval time.Duration
	start    time.Time
	realtime bool
	loops    int
	cache    *imaging.ImageCache
	next     int // frames emitted over all passes
}

// NewDirSource lists the PNG, JPEG and GIF files in dir.
func NewDirSource(dir string, opts DirOptions) (*DirSource, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read frame directory: %w", err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || !imaging.IsImageFile(e.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no image files in %s", dir)
	}
	sort.Strings(paths)

	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultFrameInterval
	}
	start := opts.Start
	if start.IsZero() {
		start = time.Now()
	}
	loops := opts.Loops
	if loops < 1 {
		loops = 1
	}
	cache := opts.Cache
	if cache == nil && loops > 1 {
		cache = imaging.NewImageCache()
	}
	return &DirSource{
		paths:    paths,
		loader:   imaging.FrameLoader{Cache: cache, MaxWidth: opts.MaxWidth},
		interval: interval,
		start:    start,
		realtime: opts.Realtime,
		loops:    loops,
		cache:    cache,
	}, nil
}

// Len returns the number of frames in one pass over the directory.
func (s *DirSource) Len() int {
	return len(s.paths)
}

// Cache returns the image cache, or nil for a single uncached pass.
func (s *DirSource) Cache() *imaging.ImageCache {
	return s.cache
}

// Close releases the cached images.
func (s *DirSource) Close() {
	if s.cache != nil {
		s.cache.Clear()
	}
}

// Next loads the next frame. Frame n, counted over all passes, is stamped
// Start + n*Interval.
func (s *DirSource) Next(ctx context.Context) (*imaging.Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.next >= len(s.paths)*s.loops {
		return nil, io.EOF
	}
	if s.realtime && s.next > 0 {
		timer := time.NewTimer(s.interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	n := s.next
	s.next++
	captured := s.start.Add(time.Duration(n) * s.interval)
	f, err := s.loader.Load(s.paths[n%len(s.paths)], uint64(n), captured)
	if err != nil {
		return nil, fmt.Errorf("frame %d: %w", n, err)
	}
	return f, nil
}
