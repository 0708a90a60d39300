// Package pipeline wires the perception and navigation stages into a
// per-frame call.
//
// # Stages
//
//  1. Region extraction (detection.Extractor)
//  2. Color and shape classification of each region, optionally in parallel
//  3. Zone mapping (zone.Mapper)
//  4. Object tracking (tracking.Registry)
//  5. Decision and dispatch (navigation.Engine, navigation.Scheduler)
//
// A Pipeline owns all state and is driven by a single goroutine. Runner
// adds a latest-frame-wins mailbox in front of it for live sources.
package pipeline

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cyclopcam/logs"

	"github.com/ironsheep/sightline/internal/classify"
	"github.com/ironsheep/sightline/internal/detection"
	"github.com/ironsheep/sightline/internal/imaging"
	"github.com/ironsheep/sightline/internal/navigation"
	"github.com/ironsheep/sightline/internal/tracking"
	"github.com/ironsheep/sightline/internal/zone"
)

// Pipeline turns frames into at most one alert each.
type Pipeline struct {
	cfg Config
	log logs.Log

	extractor *detection.Extractor
	colors    *classify.ColorClassifier
	shapes    *classify.ShapeClassifier
	mapper    *zone.Mapper
	registry  *tracking.Registry
	engine    *navigation.Engine
	scheduler *navigation.Scheduler

	mustStop atomic.Bool

	frames     int64
	alerts     int64
	overBudget int64
}

// New validates cfg and builds a pipeline that offers its alerts to sink.
func New(cfg Config, sink navigation.Sink, log logs.Log) (*Pipeline, error) {
	if sink == nil {
		return nil, fmt.Errorf("%w: nil sink", ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	engine := navigation.NewEngine(cfg.Navigation)
	return &Pipeline{
		cfg:       cfg,
		log:       log,
		extractor: detection.NewExtractor(cfg.Extraction),
		colors:    classify.NewColorClassifier(cfg.Color),
		shapes:    classify.NewShapeClassifier(cfg.Shape),
		mapper:    zone.NewMapper(cfg.Zone),
		registry:  tracking.NewRegistry(cfg.Tracking, log),
		engine:    engine,
		scheduler: navigation.NewScheduler(engine, sink, log),
	}, nil
}

// Config returns the pipeline's configuration.
func (p *Pipeline) Config() Config {
	return p.cfg
}

// classified is one region's classification slot.
type classified struct {
	color classify.ColorResult
	shape classify.ShapeResult
	ok    bool
}

// Process runs one frame through every stage and returns the alert the
// sink accepted, or nil when nothing was said.
//
// The frame's capture time is the clock for tracking and cooldowns, so
// replaying recorded frames behaves like the live run did. Frames without
// a capture time use the wall clock. After Stop, Process does nothing.
// A panic in any stage is logged and the frame yields no alert.
func (p *Pipeline) Process(f *imaging.Frame) (alert *navigation.Alert) {
	if f == nil || p.mustStop.Load() {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			p.log.Errorf("Pipeline: frame %v: panic: %v", f.Seq(), r)
			alert = nil
		}
	}()
	start := time.Now()
	now := f.CapturedAt()
	if now.IsZero() {
		now = start
	}

	regions := p.extractor.ExtractFrame(f)
	slots := p.classify(f, regions)

	observations := make([]tracking.Observation, 0, len(regions))
	for i := range regions {
		if !slots[i].ok {
			continue
		}
		z, err := p.mapper.Map(regions[i].Box)
		if err != nil {
			p.log.Debugf("Pipeline: frame %v: dropping region %v: %v", f.Seq(), i, err)
			continue
		}
		observations = append(observations, tracking.Observation{
			Region: regions[i],
			Color:  slots[i].color,
			Shape:  slots[i].shape,
			Zone:   z,
		})
	}

	seen := p.registry.Update(now, observations)
	decision := p.engine.Decide(now, seen)
	said, accepted := p.scheduler.Dispatch(now, decision)

	p.frames++
	if elapsed := time.Since(start); p.cfg.LatencyBudget > 0 && elapsed > p.cfg.LatencyBudget {
		p.overBudget++
		p.log.Debugf("Pipeline: frame %v took %v (budget %v, %v regions)", f.Seq(), elapsed, p.cfg.LatencyBudget, len(regions))
	}
	if !accepted {
		return nil
	}
	p.alerts++
	return &said
}

func (p *Pipeline) classify(f *imaging.Frame, regions []detection.Region) []classified {
	slots := make([]classified, len(regions))
	if !p.cfg.ParallelClassify || len(regions) < 2 {
		for i := range regions {
			p.classifyOne(f, regions, i, slots)
		}
		return slots
	}

	var wg sync.WaitGroup
	for i := range regions {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p.classifyOne(f, regions, i, slots)
		}(i)
	}
	wg.Wait()
	return slots
}

// classifyOne fills slots[i]. A panic leaves the slot empty so the region is
// dropped.
func (p *Pipeline) classifyOne(f *imaging.Frame, regions []detection.Region, i int, slots []classified) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Errorf("Pipeline: frame %v: classification of region %v panicked: %v", f.Seq(), i, r)
		}
	}()
	r := &regions[i]
	slots[i] = classified{
		color: p.colors.Classify(f, r),
		shape: p.shapes.Classify(r),
		ok:    true,
	}
}

// Stop makes every later Process call a no-op and prevents any further
// alert from being offered. Safe to call from any goroutine.
func (p *Pipeline) Stop() {
	p.mustStop.Store(true)
	p.scheduler.Stop()
}

// Stopped reports whether Stop has been called.
func (p *Pipeline) Stopped() bool {
	return p.mustStop.Load()
}

// Objects returns the currently tracked objects. Only valid from the
// goroutine that calls Process.
func (p *Pipeline) Objects() []*tracking.Object {
	return p.registry.Objects()
}

// Stats counts processed frames, accepted alerts and frames over the
// latency budget.
type Stats struct {
	Frames     int64 `json:"frames"`
	Alerts     int64 `json:"alerts"`
	OverBudget int64 `json:"over_budget"`
}

// Stats returns the pipeline counters. Only valid from the goroutine that
// calls Process.
func (p *Pipeline) Stats() Stats {
	return Stats{Frames: p.frames, Alerts: p.alerts, OverBudget: p.overBudget}
}
