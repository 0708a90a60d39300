package imaging

import (
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// ImageCache provides thread-safe caching of decoded images to avoid
// redundant disk reads when a recorded sequence is replayed more than once.
//
// The cache stores decoded image.Image objects keyed by their file path. Once
// an image is loaded, subsequent Load() calls for the same path return the
// cached copy without disk I/O.
//
// # Memory Management
//
// Cached images remain in memory until Clear() is called. Single-pass
// replays of long recordings should use a nil cache (see FrameLoader).
type ImageCache struct {
	mu     sync.RWMutex
	images map[string]image.Image
}

// NewImageCache creates and initializes a new empty image cache.
func NewImageCache() *ImageCache {
	return &ImageCache{
		images: make(map[string]image.Image),
	}
}

// Load retrieves an image from the cache or decodes it from disk.
//
// Supported formats are PNG, JPEG, and GIF. The image is cached using the
// exact path string provided.
func (c *ImageCache) Load(path string) (image.Image, error) {
	c.mu.RLock()
	if img, ok := c.images[path]; ok {
		c.mu.RUnlock()
		return img, nil
	}
	c.mu.RUnlock()

	img, err := decodeFile(path)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.images[path] = img
	c.mu.Unlock()

	return img, nil
}

// Clear removes all images from the cache.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.images = make(map[string]image.Image)
	c.mu.Unlock()
}

// Len returns the number of cached images.
func (c *ImageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.images)
}

func decodeFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", filepath.Base(path), err)
	}
	return img, nil
}

// FrameLoader turns image files into Frames.
//
// When Cache is non-nil decoded images are kept for reuse; MaxWidth, when
// positive, downscales wider images before the Frame copy is made so the
// per-frame work stays inside the latency budget.
type FrameLoader struct {
	Cache    *ImageCache
	MaxWidth int
}

// Load decodes path and wraps it as a Frame with the given sequence number
// and capture timestamp (see NewFrame).
func (l *FrameLoader) Load(path string, seq uint64, captured time.Time) (*Frame, error) {
	var img image.Image
	var err error
	if l.Cache != nil {
		img, err = l.Cache.Load(path)
	} else {
		img, err = decodeFile(path)
	}
	if err != nil {
		return nil, err
	}
	if l.MaxWidth > 0 {
		img = Downscale(img, l.MaxWidth)
	}
	f := NewFrame(img, seq, captured)
	if f == nil {
		return nil, fmt.Errorf("image %s has no pixels", filepath.Base(path))
	}
	return f, nil
}

// IsImageFile reports whether path has an extension the loader can decode.
func IsImageFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png", ".jpg", ".jpeg", ".gif":
		return true
	}
	return false
}
