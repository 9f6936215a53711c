// Command lomux is the CLI entrypoint for the lomux batch media converter.
//
// It parses flags, validates configuration and paths, and either prints
// diagnostics (--check), prints stored batches (--list-history,
// --show-batch), or converts every input with the selected preset, one
// engine process at a time.
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/backmassage/lomux/internal/check"
	"github.com/backmassage/lomux/internal/config"
	"github.com/backmassage/lomux/internal/display"
	"github.com/backmassage/lomux/internal/engine"
	"github.com/backmassage/lomux/internal/events"
	"github.com/backmassage/lomux/internal/history"
	"github.com/backmassage/lomux/internal/logging"
	"github.com/backmassage/lomux/internal/pipeline"
	"github.com/backmassage/lomux/internal/probe"
	"github.com/backmassage/lomux/internal/server"
	"github.com/backmassage/lomux/internal/term"
)

// busHistory bounds how many events a late UI client can replay.
const busHistory = 2000

func main() {
	os.Exit(run())
}

func run() int {
	// Phase 1: Bootstrap. The logger doesn't exist yet, so errors go
	// directly to stderr via fmt.
	cfg := config.DefaultConfig()
	if err := config.ParseFlags(&cfg, os.Args[1:]); err != nil {
		if errors.Is(err, config.ErrExit) {
			return 0
		}
		fmt.Fprintf(os.Stderr, "lomux: %v\n", err)
		return 1
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "lomux: %v\n", err)
		return 1
	}

	log, err := logging.NewLogger(&cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "lomux: %v\n", err)
		return 1
	}
	defer log.Close()

	// Phase 2: Logger available; all output goes through log from here on.
	display.PrintBanner(log.Stdout())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.ListHistory > 0 || cfg.ShowBatch != "" {
		return listHistory(ctx, &cfg, log)
	}

	locator := engine.NewLocator(cfg.BinDir)
	checker := check.New()
	if cfg.CheckOnly {
		if !checker.Run(ctx, locator, log) {
			return 1
		}
		return 0
	}

	paths, err := locator.LocateAll()
	if err != nil {
		log.Error("%v", err)
		return 1
	}
	log.Debug("ffmpeg: %s", paths.FFmpeg)
	log.Debug("ffprobe: %s", paths.FFprobe)

	inputs, err := resolveInputs(&cfg)
	if err != nil {
		log.Error("%v", err)
		return 1
	}

	if missing, err := checker.MissingEncoders(ctx, paths.FFmpeg, cfg.Preset); err != nil {
		log.Warn("Could not list engine encoders: %v", err)
	} else if len(missing) > 0 {
		log.Warn("This ffmpeg lacks %v needed by %s; conversions will likely fail", missing, cfg.Preset)
	}

	// Phase 3: Event wiring. The console always listens; the bus feeds the
	// optional WebSocket stream.
	bus := events.NewBus(busHistory)
	console := display.NewConsole(log, term.IsTerminal(os.Stdout))
	sink := events.Multi(console, bus)

	srvCtx, stopServer := context.WithCancel(ctx)
	defer stopServer()
	if cfg.EventsAddr != "" {
		srv := server.New(bus, log.Debug)
		go func() {
			err := srv.ListenAndServe(srvCtx, cfg.EventsAddr, func(a net.Addr) {
				log.Info("Streaming events on ws://%s/events", a)
			})
			if err != nil {
				log.Warn("Events server: %v", err)
			}
		}()
	}

	// Phase 4: Run the batch.
	display.LogBatchHeader(log, len(inputs), cfg.OutputDir, cfg.Preset, cfg.Params, cfg.DryRun)
	runner := pipeline.NewRunner(pipeline.Options{
		Engine: paths.FFmpeg,
		Prober: probe.New(paths.FFprobe),
		Sink:   sink,
		DryRun: cfg.DryRun,
	})
	res := runner.RunBatch(ctx, inputs, cfg.OutputDir, cfg.Preset, cfg.Params)
	if ctx.Err() != nil {
		log.Warn("Interrupted; remaining files were not converted")
	}

	display.LogSummary(log, res, cfg.DryRun)
	if cfg.HistoryDB != "" && !cfg.DryRun {
		recordHistory(cfg.HistoryDB, res, log)
	}

	if !res.Stats().OK() {
		return 1
	}
	return 0
}

// resolveInputs expands directory arguments and refuses an output directory
// nested in any of them.
func resolveInputs(cfg *config.Config) ([]string, error) {
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("cannot create output directory: %w", err)
	}
	outputAbs, err := absPath(cfg.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve output path %s: %w", cfg.OutputDir, err)
	}
	for _, in := range cfg.Inputs {
		fi, err := os.Stat(in)
		if err != nil || !fi.IsDir() {
			continue
		}
		inputAbs, err := absPath(in)
		if err != nil {
			return nil, fmt.Errorf("cannot resolve input path %s: %w", in, err)
		}
		if err := cfg.ValidatePaths(inputAbs, outputAbs); err != nil {
			return nil, fmt.Errorf("%w (choose an output path outside %s)", err, in)
		}
	}
	return pipeline.ExpandInputs(cfg.Inputs)
}

func listHistory(ctx context.Context, cfg *config.Config, log *logging.Logger) int {
	store, err := history.Open(cfg.HistoryDB)
	if err != nil {
		log.Error("%v", err)
		return 1
	}
	defer store.Close()

	var batches []history.Batch
	if cfg.ShowBatch != "" {
		b, err := store.Get(ctx, cfg.ShowBatch)
		if err != nil {
			log.Error("%v", err)
			return 1
		}
		batches = []history.Batch{*b}
	} else {
		batches, err = store.Recent(ctx, cfg.ListHistory)
	}
	if err != nil {
		log.Error("%v", err)
		return 1
	}
	display.LogHistory(log, batches)
	return 0
}

// recordHistory stores the batch even after an interrupt, so it uses its own
// context.
func recordHistory(path string, res pipeline.BatchResult, log *logging.Logger) {
	store, err := history.Open(path)
	if err != nil {
		log.Warn("History not recorded: %v", err)
		return
	}
	defer store.Close()
	if err := store.Record(context.Background(), res); err != nil {
		log.Warn("History not recorded: %v", err)
		return
	}
	log.Debug("Batch %s recorded in %s", display.ShortID(res.ID), path)
}

// absPath returns the absolute, symlink-resolved path for safe comparison
// of input vs output directory hierarchies.
func absPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}
