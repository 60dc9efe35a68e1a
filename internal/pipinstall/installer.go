package pipinstall

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/modelgarden/nodeup/internal/models"
	"github.com/modelgarden/nodeup/internal/runner"
	"github.com/modelgarden/nodeup/internal/util"
)

// Installer runs the dependency tool for one node, feeding its streamed
// output through the phase parser.
type Installer struct {
	runner  runner.Runner
	pipBin  string
	timeout time.Duration
}

// NewInstaller creates a dependency installer.
func NewInstaller(r runner.Runner, pipBin string, timeout time.Duration) *Installer {
	if pipBin == "" {
		pipBin = "pip"
	}
	return &Installer{
		runner:  r,
		pipBin:  pipBin,
		timeout: timeout,
	}
}

// Install installs the requirements file at reqPath, mutating state and
// calling publish after every visible change. The tool's exit code alone
// decides the outcome; the parser only decorates progress.
func (i *Installer) Install(ctx context.Context, reqPath, workDir string, state *models.NodeState, publish func()) error {
	total := 0
	if data, err := i.runner.ReadFile(ctx, reqPath); err == nil {
		total = CountRequirements(data)
	} else {
		slog.Warn("could not count requirements", "path", reqPath, "error", err)
	}

	state.Status = models.StatusInstallingDeps
	state.HasRequirements = true
	state.RequirementsStatus = fmt.Sprintf("installing %d packages", total)
	publish()

	parser := NewParser(total)
	// The two stream pumps run on separate goroutines; a single lock keeps
	// state mutation and publishing serialized.
	var mu sync.Mutex
	apply := func(line string) {
		mu.Lock()
		defer mu.Unlock()
		ev, ok := parser.ParseLine(line)
		if !ok {
			slog.Debug("unrecognized installer output", "line", line)
			return
		}
		switch ev.Phase {
		case PhaseCollecting:
			if ev.Percent >= 0 {
				state.RequirementsStatus = fmt.Sprintf("collecting %s (%d%%)", ev.Detail, ev.Percent)
			} else {
				state.RequirementsStatus = fmt.Sprintf("collecting %s", ev.Detail)
			}
		case PhaseDownloading:
			if ev.Rate != "" {
				state.RequirementsStatus = fmt.Sprintf("downloading %s @ %s", ev.Detail, ev.Rate)
			} else {
				state.RequirementsStatus = fmt.Sprintf("downloading %s", ev.Detail)
			}
		case PhaseInstalling:
			state.RequirementsStatus = "installing collected packages"
		}
		publish()
	}

	// pip interleaves stdout and stderr; give each stream its own line
	// buffer so concurrent writes cannot splice lines together.
	stdout := util.NewLineWriter(apply)
	stderr := util.NewLineWriter(apply)

	argv := []string{i.pipBin, "install", "-r", reqPath}
	code, err := i.runner.Run(ctx, argv, workDir, stdout, stderr, runner.RunOptions{Timeout: i.timeout})
	stdout.Flush()
	stderr.Flush()

	if err != nil {
		return models.NewPipelineError(models.ErrDepsFailed, err.Error())
	}
	if code != 0 {
		return models.NewPipelineError(models.ErrDepsFailed,
			fmt.Sprintf("dependency install exited with code %d", code))
	}

	state.RequirementsStatus = fmt.Sprintf("installed (%d packages)", total)
	publish()
	return nil
}
