package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/modelgarden/nodeup/internal/config"
	"github.com/modelgarden/nodeup/internal/installer"
	"github.com/modelgarden/nodeup/internal/models"
	"github.com/modelgarden/nodeup/internal/poller"
	"github.com/modelgarden/nodeup/internal/runner"
)

func main() {
	watch := flag.Bool("watch", false, "render live progress while installing")
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: nodeup [-watch] <nodeup.yaml>")
		os.Exit(1)
	}
	configPath := flag.Arg(0)

	cfg, err := config.Load(configPath)
	if err != nil {
		slog.Error("loading config failed", "error", err)
		os.Exit(1)
	}
	setupLogging(cfg.LogLevel)

	// Setup context with manual signal handling
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	defer func() {
		signal.Stop(sigChan)
		cancel()
	}()

	go func() {
		sig := <-sigChan
		slog.Info("interrupt received, shutting down gracefully...", "signal", sig)
		cancel()
	}()

	run, err := execute(ctx, cfg, *watch)
	if err != nil {
		slog.Error("installation failed", "error", err)
		os.Exit(1)
	}

	fmt.Printf("\nNodes: %d\n", run.TotalNodes)
	fmt.Printf("Processed: %d\n", run.Processed)
	fmt.Printf("Successful: %d\n", run.Successful)
	fmt.Printf("Failed: %d\n", run.Failed)
	fmt.Printf("Duration: %.2fs\n", time.Since(run.StartedAt).Seconds())

	if !run.Success() {
		os.Exit(1)
	}
}

// execute runs the pipeline, optionally with a concurrent progress view
// reading the same snapshot file the publisher writes.
func execute(ctx context.Context, cfg models.Config, watch bool) (*models.Run, error) {
	r, err := runner.New(ctx, cfg.Runner)
	if err != nil {
		return nil, fmt.Errorf("creating runner: %w", err)
	}
	defer func() {
		if err := r.Close(context.Background()); err != nil {
			slog.Warn("closing runner failed", "error", err)
		}
	}()

	o, err := installer.New(cfg, r)
	if err != nil {
		return nil, fmt.Errorf("creating orchestrator: %w", err)
	}
	defer o.Close()

	if !watch {
		return o.Run(ctx)
	}

	// A completed document left by an earlier run would satisfy the view's
	// first fetch and stop it before this run's first publish lands.
	if err := removeStaleSnapshot(cfg.ProgressPath); err != nil {
		return nil, err
	}

	var run *models.Run
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		run, err = o.Run(gctx)
		return err
	})
	g.Go(func() error {
		interval := time.Duration(cfg.PollIntervalSec * float64(time.Second))
		p := poller.New(
			poller.FileSource{Path: cfg.ProgressPath},
			poller.WriterRenderer{Out: os.Stderr},
			interval,
		)
		return p.Run(gctx)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return run, nil
}

func removeStaleSnapshot(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing stale progress document: %w", err)
	}
	return nil
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
}
