package pipeline

import (
	"context"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/sightline/internal/imaging"
)

// writeTestPNG writes a blank width x height PNG into dir.
func writeTestPNG(t *testing.T, dir, name string, width, height int) {
	t.Helper()
	f, err := os.Create(filepath.Join(dir, name))
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, createBlankImage(width, height)))
}

func TestDirSource(t *testing.T) {
	dir := t.TempDir()
	writeTestPNG(t, dir, "frame_002.png", 40, 30)
	writeTestPNG(t, dir, "frame_001.png", 40, 30)
	writeTestPNG(t, dir, "frame_003.png", 40, 30)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.png"), 0o755))

	src, err := NewDirSource(dir, DirOptions{Interval: 250 * time.Millisecond, Start: t0})
	require.NoError(t, err)
	assert.Equal(t, 3, src.Len())

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		f, err := src.Next(ctx)
		require.NoError(t, err)
		assert.EqualValues(t, i, f.Seq())
		assert.Equal(t, t0.Add(time.Duration(i)*250*time.Millisecond), f.CapturedAt())
		assert.Equal(t, 40, f.Width())
	}

	_, err = src.Next(ctx)
	assert.ErrorIs(t, err, io.EOF)
}

func TestDirSource_Loops(t *testing.T) {
	dir := t.TempDir()
	writeTestPNG(t, dir, "frame_001.png", 40, 30)
	writeTestPNG(t, dir, "frame_002.png", 40, 30)

	src, err := NewDirSource(dir, DirOptions{Interval: 100 * time.Millisecond, Start: t0, Loops: 3})
	require.NoError(t, err)
	require.NotNil(t, src.Cache(), "looping keeps decoded frames")
	assert.Equal(t, 2, src.Len())

	ctx := context.Background()
	for i := 0; i < 6; i++ {
		f, err := src.Next(ctx)
		require.NoError(t, err)
		assert.EqualValues(t, i, f.Seq(), "sequence continues across passes")
		assert.Equal(t, t0.Add(time.Duration(i)*100*time.Millisecond), f.CapturedAt())
	}
	_, err = src.Next(ctx)
	assert.ErrorIs(t, err, io.EOF)

	assert.Equal(t, 2, src.Cache().Len(), "one cached image per file")
	src.Close()
	assert.Equal(t, 0, src.Cache().Len())
}

func TestDirSource_SinglePassHasNoCache(t *testing.T) {
	dir := t.TempDir()
	writeTestPNG(t, dir, "frame_001.png", 40, 30)

	for _, loops := range []int{0, 1} {
		src, err := NewDirSource(dir, DirOptions{Loops: loops})
		require.NoError(t, err)
		assert.Nil(t, src.Cache(), "loops=%v", loops)
		src.Close()

		_, err = src.Next(context.Background())
		require.NoError(t, err)
		_, err = src.Next(context.Background())
		assert.ErrorIs(t, err, io.EOF, "loops=%v plays the directory once", loops)
	}
}

func TestDirSource_MaxWidth(t *testing.T) {
	dir := t.TempDir()
	writeTestPNG(t, dir, "wide.png", 400, 200)

	src, err := NewDirSource(dir, DirOptions{MaxWidth: 100, Cache: imaging.NewImageCache()})
	require.NoError(t, err)

	f, err := src.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 100, f.Width())
	assert.Equal(t, 50, f.Height())
}

func TestDirSource_Errors(t *testing.T) {
	_, err := NewDirSource(filepath.Join(t.TempDir(), "missing"), DirOptions{})
	assert.Error(t, err)

	_, err = NewDirSource(t.TempDir(), DirOptions{})
	assert.ErrorContains(t, err, "no image files")

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.png"), []byte("not a png"), 0o644))
	src, err := NewDirSource(dir, DirOptions{})
	require.NoError(t, err)
	_, err = src.Next(context.Background())
	assert.ErrorContains(t, err, "frame 0")
}

func TestDirSource_RealtimeHonoursCancel(t *testing.T) {
	dir := t.TempDir()
	writeTestPNG(t, dir, "a.png", 10, 10)
	writeTestPNG(t, dir, "b.png", 10, 10)

	src, err := NewDirSource(dir, DirOptions{Interval: time.Hour, Realtime: true})
	require.NoError(t, err)

	_, err = src.Next(context.Background())
	require.NoError(t, err, "the first frame is not delayed")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = src.Next(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestDirSource_DefaultInterval(t *testing.T) {
	dir := t.TempDir()
	writeTestPNG(t, dir, "a.png", 10, 10)
	writeTestPNG(t, dir, "b.png", 10, 10)

	src, err := NewDirSource(dir, DirOptions{Start: t0})
	require.NoError(t, err)
	_, err = src.Next(context.Background())
	require.NoError(t, err)
	f, err := src.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, t0.Add(DefaultFrameInterval), f.CapturedAt())
}
