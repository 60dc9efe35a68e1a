package gitclone

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/modelgarden/nodeup/internal/models"
	"github.com/modelgarden/nodeup/internal/runner"
	"github.com/modelgarden/nodeup/internal/util"
)

// Engine performs shallow single-branch clones through a runner, feeding
// the tool's streamed output through the progress parser as it arrives.
type Engine struct {
	runner  runner.Runner
	gitBin  string
	timeout time.Duration
	now     func() time.Time
}

// NewEngine creates a clone engine.
func NewEngine(r runner.Runner, gitBin string, timeout time.Duration) *Engine {
	if gitBin == "" {
		gitBin = "git"
	}
	return &Engine{
		runner:  r,
		gitBin:  gitBin,
		timeout: timeout,
		now:     time.Now,
	}
}

// Clone fetches url into dir, mutating state and calling publish after
// every visible change. After a reported-successful clone it confirms the
// target has a resolvable revision; a corrupted fetch is deleted and
// retried exactly once.
func (e *Engine) Clone(ctx context.Context, url, dir string, state *models.NodeState, publish func()) error {
	state.Status = models.StatusCloning
	state.Message = "cloning repository"
	publish()

	if err := e.cloneOnce(ctx, url, dir, state, publish); err != nil {
		return err
	}

	if err := e.validate(ctx, dir); err == nil {
		return nil
	}

	slog.Warn("clone reported success but has no resolvable revision, retrying",
		"url", url, "dir", dir)

	if err := e.runner.Remove(ctx, dir); err != nil {
		return models.NewPipelineError(models.ErrCloneFailed,
			fmt.Sprintf("removing corrupted clone: %v", err))
	}

	state.CloneProgress = -1
	state.DataReceived = ""
	state.TotalSize = ""
	state.DownloadRate = ""
	state.ETA = ""
	state.Message = "retrying after corrupted fetch"
	publish()

	if err := e.cloneOnce(ctx, url, dir, state, publish); err != nil {
		return err
	}

	if err := e.validate(ctx, dir); err != nil {
		// Remove the broken tree so a later re-run does not mistake it for
		// an installed node.
		if rmErr := e.runner.Remove(ctx, dir); rmErr != nil {
			slog.Warn("removing corrupted clone failed", "dir", dir, "error", rmErr)
		}
		return models.NewPipelineError(models.ErrCloneFailed,
			fmt.Sprintf("fetch corrupted after retry: %v", err))
	}

	return nil
}

func (e *Engine) cloneOnce(ctx context.Context, url, dir string, state *models.NodeState, publish func()) error {
	start := e.now()
	clock := &etaClock{}

	// git writes progress to stderr, rewriting lines with carriage returns.
	lw := util.NewLineWriter(func(line string) {
		ev, ok := ParseLine(line)
		if !ok {
			return
		}
		if e.apply(state, ev, clock, start) {
			publish()
		}
	})

	argv := []string{e.gitBin, "clone", "--progress", "--depth", "1", "--single-branch", url, dir}
	code, runErr := e.runner.Run(ctx, argv, "", io.Discard, lw, runner.RunOptions{Timeout: e.timeout})
	lw.Flush()

	// Close out the stream on a concrete figure: the actual on-disk size of
	// whatever was fetched, at 100%, regardless of outcome.
	if size, err := e.runner.DirSize(ctx, dir); err == nil && size > 0 {
		formatted := util.FormatBytes(size)
		state.DataReceived = formatted
		state.TotalSize = formatted
	}
	state.CloneProgress = 100
	state.ETA = ""
	state.ElapsedTime = util.FormatClock(e.now().Sub(start))
	publish()

	// The tool's exit status, not the parsed percentage, decides success.
	if runErr != nil {
		return models.NewPipelineError(models.ErrCloneFailed, runErr.Error())
	}
	if code != 0 {
		return models.NewPipelineError(models.ErrCloneFailed,
			fmt.Sprintf("git clone exited with code %d", code))
	}
	return nil
}

// apply merges one parsed event into the state. Percentages only ever move
// forward; a lower sample is dropped.
func (e *Engine) apply(state *models.NodeState, ev Event, clock *etaClock, start time.Time) bool {
	changed := false

	if ev.Percent >= 0 && ev.Percent > state.CloneProgress {
		state.CloneProgress = ev.Percent
		changed = true
		if eta, ok := clock.estimate(ev.Percent, e.now()); ok {
			state.ETA = eta
		}
	}
	if ev.Received != "" && ev.Received != state.DataReceived {
		state.DataReceived = ev.Received
		changed = true
	}
	if ev.Rate != "" && ev.Rate != state.DownloadRate {
		state.DownloadRate = ev.Rate
		changed = true
	}
	if ev.Total != "" && ev.Total != state.TotalSize {
		state.TotalSize = ev.Total
		changed = true
	}

	if changed {
		state.ElapsedTime = util.FormatClock(e.now().Sub(start))
	}
	return changed
}

func (e *Engine) validate(ctx context.Context, dir string) error {
	code, err := e.runner.Run(ctx, []string{e.gitBin, "rev-parse", "HEAD"}, dir,
		io.Discard, io.Discard, runner.RunOptions{Timeout: e.timeout})
	if err != nil {
		return err
	}
	if code != 0 {
		return fmt.Errorf("no resolvable revision (rev-parse exited with code %d)", code)
	}
	return nil
}
