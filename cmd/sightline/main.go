package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/akamensky/argparse"
	"github.com/cyclopcam/logs"

	"github.com/ironsheep/sightline/internal/imaging"
	"github.com/ironsheep/sightline/internal/navigation"
	"github.com/ironsheep/sightline/internal/pipeline"
	"github.com/ironsheep/sightline/internal/speech"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	parser := argparse.NewParser("sightline", "Replay a directory of camera frames through the navigation pipeline")
	dir := parser.String("d", "dir", &argparse.Options{Help: "Directory of PNG, JPEG or GIF frames, replayed in name order"})
	interval := parser.Int("i", "interval", &argparse.Options{Help: "Nominal frame interval in milliseconds", Default: 100})
	maxWidth := parser.Int("", "max-width", &argparse.Options{Help: "Downscale frames wider than this many pixels (0 keeps full size)", Default: 640})
	realtime := parser.Flag("r", "realtime", &argparse.Options{Help: "Pace frames at the nominal interval, dropping frames the pipeline cannot keep up with"})
	loop := parser.Int("l", "loop", &argparse.Options{Help: "Replay the directory this many times, keeping decoded frames in memory after the first pass", Default: 1})
	speechOut := parser.String("s", "speech-out", &argparse.Options{Help: "Write alerts as JSON-RPC notifications to this file instead of the log"})
	debugDir := parser.String("", "debug-dir", &argparse.Options{Help: "Write an annotated overlay PNG per frame into this directory"})
	threshold := parser.Int("t", "threshold", &argparse.Options{Help: "Binarization luminance threshold (0-255)", Default: 127})
	minArea := parser.Float("", "min-area", &argparse.Options{Help: "Minimum region area in pixels", Default: 500.0})
	maxArea := parser.Float("", "max-area", &argparse.Options{Help: "Maximum region area in pixels", Default: 50000.0})
	sequential := parser.Flag("", "sequential", &argparse.Options{Help: "Classify regions on a single goroutine"})
	version := parser.Flag("v", "version", &argparse.Options{Help: "Print version information"})
	err := parser.Parse(os.Args)
	if err != nil {
		fmt.Print(parser.Usage(err))
		os.Exit(1)
	}

	if *version {
		fmt.Printf("sightline %s\n", Version)
		fmt.Printf("  Build time: %s\n", BuildTime)
		fmt.Printf("  Git commit: %s\n", GitCommit)
		return
	}
	if *dir == "" {
		fmt.Print(parser.Usage(errors.New("--dir is required")))
		os.Exit(1)
	}
	if *threshold < 0 || *threshold > 255 {
		fmt.Print(parser.Usage(fmt.Errorf("threshold must be in 0-255, got %v", *threshold)))
		os.Exit(1)
	}
	if *loop < 1 {
		fmt.Print(parser.Usage(fmt.Errorf("loop must be at least 1, got %v", *loop)))
		os.Exit(1)
	}

	logger, err := logs.NewLog()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Close()

	cfg := pipeline.DefaultConfig()
	cfg.Extraction.Binarize.Threshold = uint8(*threshold)
	cfg.Extraction.MinArea = *minArea
	cfg.Extraction.MaxArea = *maxArea
	cfg.ParallelClassify = !*sequential

	opts := runOptions{
		dir:      *dir,
		interval: time.Duration(*interval) * time.Millisecond,
		maxWidth: *maxWidth,
		realtime: *realtime,
		loops:    *loop,
		debugDir: *debugDir,
	}

	var out io.Writer
	if *speechOut != "" {
		f, err := openSpeechOut(*speechOut)
		if err != nil {
			logger.Errorf("%v", err)
			os.Exit(1)
		}
		defer f.Close()
		out = f
	}

	if err := run(logger, cfg, opts, out); err != nil {
		logger.Errorf("%v", err)
		os.Exit(1)
	}
}

type runOptions struct {
	dir      string
	interval time.Duration
	maxWidth int
	realtime bool
	loops    int
	debugDir string
}

// openSpeechOut creates the file that receives JSON-RPC alert notifications.
// Stdout is refused because the log writes there and would corrupt the stream.
func openSpeechOut(path string) (*os.File, error) {
	if path == "-" {
		return nil, errors.New("speech output cannot be stdout, it carries the log; give a file path")
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open speech output: %w", err)
	}
	return f, nil
}

func run(logger logs.Log, cfg pipeline.Config, opts runOptions, speechOut io.Writer) error {
	var speaker speech.Speaker = &speech.LogSpeaker{Log: logger}
	if speechOut != nil {
		speaker = speech.NewJSONSpeaker(speechOut)
	}
	sink := speech.NewAsync(speaker, logger)
	defer sink.Close()

	p, err := pipeline.New(cfg, sink, logger)
	if err != nil {
		return err
	}

	src, err := pipeline.NewDirSource(opts.dir, pipeline.DirOptions{
		Interval: opts.interval,
		MaxWidth: opts.maxWidth,
		Realtime: opts.realtime,
		Loops:    opts.loops,
	})
	if err != nil {
		return err
	}
	defer src.Close()
	logger.Infof("Sightline %v: replaying %v frames from %v", Version, src.Len(), opts.dir)

	onFrame := func(f *imaging.Frame, alert *navigation.Alert) {
		if alert != nil {
			logger.Debugf("Frame %v: %v alert %q", f.Seq(), alert.Kind, alert.Message)
		}
	}
	if opts.debugDir != "" {
		if err := os.MkdirAll(opts.debugDir, 0o755); err != nil {
			return fmt.Errorf("failed to create debug directory: %w", err)
		}
		onFrame = func(f *imaging.Frame, alert *navigation.Alert) {
			if alert != nil {
				logger.Debugf("Frame %v: %v alert %q", f.Seq(), alert.Kind, alert.Message)
			}
			if err := writeOverlay(opts.debugDir, f, p.Objects(), cfg.Zone); err != nil {
				logger.Warnf("Frame %v: %v", f.Seq(), err)
			}
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	if opts.realtime {
		err = runLive(ctx, logger, p, src, onFrame)
	} else {
		err = replay(ctx, p, src, onFrame)
	}
	// Let the last alert finish before reporting.
	sink.Close()

	stats := p.Stats()
	logger.Infof("Processed %v frames in %v: %v alerts, %v spoken, %v dropped by speech, %v over budget",
		stats.Frames, time.Since(start).Round(time.Millisecond), stats.Alerts, sink.Spoken(), sink.Dropped(), stats.OverBudget)
	if cache := src.Cache(); cache != nil {
		logger.Debugf("Frame cache held %v decoded images", cache.Len())
	}

	if errors.Is(err, context.Canceled) {
		logger.Infof("Interrupted")
		return nil
	}
	return err
}

// replay processes every frame of src in order, as fast as possible.
func replay(ctx context.Context, p *pipeline.Pipeline, src pipeline.FrameSource, onFrame func(*imaging.Frame, *navigation.Alert)) error {
	defer p.Stop()
	for {
		f, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		onFrame(f, p.Process(f))
	}
}

// runLive paces src like a camera and lets the runner drop frames it cannot
// keep up with.
func runLive(ctx context.Context, logger logs.Log, p *pipeline.Pipeline, src pipeline.FrameSource, onFrame func(*imaging.Frame, *navigation.Alert)) error {
	runner := pipeline.NewRunner(p, logger)
	runner.OnFrame = onFrame

	pumpErr := make(chan error, 1)
	go func() {
		pumpErr <- runner.Pump(ctx, src)
		runner.Close()
	}()

	err := runner.Run(ctx)
	if perr := <-pumpErr; perr != nil && err == nil {
		err = perr
	}
	p.Stop()
	if skipped := runner.Skipped(); skipped > 0 {
		logger.Infof("Skipped %v frames that arrived while the pipeline was busy", skipped)
	}
	return err
}
