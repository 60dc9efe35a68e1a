package installer

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/modelgarden/nodeup/internal/config"
	"github.com/modelgarden/nodeup/internal/gitclone"
	"github.com/modelgarden/nodeup/internal/manifest"
	"github.com/modelgarden/nodeup/internal/models"
	"github.com/modelgarden/nodeup/internal/pipinstall"
	"github.com/modelgarden/nodeup/internal/progress"
	"github.com/modelgarden/nodeup/internal/runner"
)

// Orchestrator drives the installation pipeline: manifest in order, one
// node at a time, clone then dependency install, publishing a fresh
// snapshot after every state-changing step.
type Orchestrator struct {
	cfg    models.Config
	runner runner.Runner
	pub    *progress.Publisher
	audit  *progress.AuditLog
	clone  *gitclone.Engine
}

// New creates an orchestrator over the given runner.
func New(cfg models.Config, r runner.Runner) (*Orchestrator, error) {
	audit, err := progress.OpenAuditLog(cfg.AuditLogPath)
	if err != nil {
		return nil, err
	}

	timeout := time.Duration(cfg.StepTimeoutSec * float64(time.Second))

	return &Orchestrator{
		cfg:    cfg,
		runner: r,
		pub:    progress.NewPublisher(cfg.ProgressPath),
		audit:  audit,
		clone:  gitclone.NewEngine(r, cfg.GitBin, timeout),
	}, nil
}

// Close releases the orchestrator's resources.
func (o *Orchestrator) Close() error {
	return o.audit.Close()
}

// Run processes the whole manifest. Only a manifest load failure is
// run-fatal; per-node failures are recorded and the run advances.
func (o *Orchestrator) Run(ctx context.Context) (*models.Run, error) {
	descriptors, err := manifest.Load(o.cfg.ManifestPath)
	if err != nil {
		return nil, err
	}

	run := models.NewRun(descriptors)

	o.record(models.AuditStart, "", "running",
		fmt.Sprintf("%d nodes, runner %s", run.TotalNodes, o.runner.Name()))
	o.publish(run)

	for i, d := range descriptors {
		o.processNode(ctx, run, i, d)
	}

	run.Completed = true
	run.Current = nil
	o.publish(run)
	o.record(models.AuditComplete, "", "completed",
		fmt.Sprintf("%d/%d successful, %d failed", run.Successful, run.TotalNodes, run.Failed))

	return run, nil
}

func (o *Orchestrator) processNode(ctx context.Context, run *models.Run, i int, d models.NodeDescriptor) {
	state := models.NewNodeState(d)
	run.Current = state

	finish := func(status models.NodeStatus, msg string) {
		state.Status = status
		state.Message = msg
		run.Processed++
		if status == models.StatusFailed {
			run.Failed++
		} else {
			// partial counts as a success at the run level: the fetch
			// itself landed
			run.Successful++
		}
		run.SetRow(i, status, msg)
		o.publish(run)
		o.record(models.AuditNode, d.Name, string(status), msg)
	}

	if d.Invalid {
		slog.Warn("skipping invalid descriptor", "node", d.Name, "reason", d.InvalidReason)
		finish(models.StatusFailed, d.InvalidReason)
		return
	}

	target := filepath.Join(o.cfg.InstallDir, d.TargetDir())

	exists, err := o.runner.Exists(ctx, target)
	if err != nil {
		finish(models.StatusFailed, fmt.Sprintf("checking target: %v", err))
		return
	}
	if exists {
		slog.Info("node already installed", "node", d.Name, "dir", target)
		o.record(models.AuditInfo, d.Name, "skipped", "target already exists")
		finish(models.StatusSuccess, "already installed")
		return
	}

	slog.Info("installing node", "node", d.Name, "url", d.SourceURL)
	o.record(models.AuditNode, d.Name, "cloning", d.SourceURL)

	// Keep the current node's row in step with its state so consumers can
	// locate the active row in the published list mid-run.
	publish := func() {
		run.SetRow(i, state.Status, state.Message)
		o.publish(run)
	}

	if err := o.clone.Clone(ctx, d.SourceURL, target, state, publish); err != nil {
		slog.Error("clone failed", "node", d.Name, "error", err)
		finish(models.StatusFailed, err.Error())
		return
	}

	reqFile, timeout := o.resolveRequirements(ctx, d, target)
	if reqFile == "" {
		finish(models.StatusSuccess, "installed")
		return
	}

	reqPath := filepath.Join(target, reqFile)
	exists, err = o.runner.Exists(ctx, reqPath)
	if err != nil {
		// The fetch itself landed; an unanswerable probe must not pass as a
		// clean install.
		slog.Warn("checking requirements file failed", "node", d.Name, "path", reqPath, "error", err)
		finish(models.StatusPartial, fmt.Sprintf("fetched, could not check requirements: %v", err))
		return
	}
	if !exists {
		finish(models.StatusSuccess, "installed (no requirements file)")
		return
	}

	deps := pipinstall.NewInstaller(o.runner, o.cfg.PipBin, timeout)
	if err := deps.Install(ctx, reqPath, target, state, publish); err != nil {
		slog.Error("dependency install failed", "node", d.Name, "error", err)
		finish(models.StatusPartial, fmt.Sprintf("fetched, dependencies unresolved: %v", err))
		return
	}

	finish(models.StatusSuccess, "installed")
}

// resolveRequirements applies any node.toml found in the fetched tree on
// top of the manifest's declaration, and picks the install timeout.
func (o *Orchestrator) resolveRequirements(ctx context.Context, d models.NodeDescriptor, target string) (string, time.Duration) {
	reqFile := d.RequirementsFile
	timeout := time.Duration(o.cfg.StepTimeoutSec * float64(time.Second))

	data, err := o.runner.ReadFile(ctx, filepath.Join(target, config.NodeConfigFile))
	if err != nil {
		return reqFile, timeout
	}

	nodeCfg, err := config.ParseNodeConfig(data)
	if err != nil {
		slog.Warn("ignoring malformed node.toml", "node", d.Name, "error", err)
		return reqFile, timeout
	}

	if nodeCfg.Disabled {
		slog.Info("dependency install disabled by node.toml", "node", d.Name)
		return "", timeout
	}
	if nodeCfg.Requirements != "" {
		reqFile = nodeCfg.Requirements
	}
	if nodeCfg.InstallTimeoutSec > 0 {
		timeout = time.Duration(nodeCfg.InstallTimeoutSec * float64(time.Second))
	}
	return reqFile, timeout
}

func (o *Orchestrator) publish(run *models.Run) {
	if err := o.pub.Publish(run); err != nil {
		// A failed publish must not take the run down; pollers will catch
		// up on the next write.
		slog.Error("publishing snapshot failed", "error", err)
	}
}

func (o *Orchestrator) record(t models.AuditType, node, status, msg string) {
	if err := o.audit.Record(models.AuditEvent{
		Timestamp: time.Now(),
		Type:      t,
		Node:      node,
		Status:    status,
		Message:   msg,
	}); err != nil {
		slog.Error("writing audit log failed", "error", err)
	}
}
