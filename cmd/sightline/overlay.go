package main

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"github.com/ironsheep/sightline/internal/imaging"
	"github.com/ironsheep/sightline/internal/tracking"
	"github.com/ironsheep/sightline/internal/zone"
)

var priorityColors = map[zone.Priority]color.RGBA{
	zone.Low:      {0, 170, 0, 255},
	zone.Medium:   {230, 200, 0, 255},
	zone.High:     {255, 120, 0, 255},
	zone.Critical: {230, 0, 0, 255},
}

// writeOverlay saves frame f with the zone grid and the objects seen in it.
func writeOverlay(dir string, f *imaging.Frame, objects []*tracking.Object, zones zone.Config) error {
	var notes []imaging.Annotation
	for _, obj := range objects {
		if !obj.LastSeen.Equal(f.CapturedAt()) {
			continue
		}
		notes = append(notes, imaging.Annotation{
			Box:   obj.Region.Bounds,
			Label: int(obj.ID),
			Color: priorityColors[obj.Zone.Priority()],
		})
	}
	img := imaging.Overlay(f, imaging.OverlayOptions{
		Columns:   []float64{zones.LeftBoundary, zones.RightBoundary},
		Rows:      []float64{zones.NearBottom},
		GridColor: color.RGBA{0, 120, 255, 255},
	}, notes)

	path := filepath.Join(dir, fmt.Sprintf("frame_%05d.png", f.Seq()))
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create overlay: %w", err)
	}
	if err := imaging.EncodePNG(out, img); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
