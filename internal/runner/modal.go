package runner

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/modal-labs/libmodal/modal-go"
	"golang.org/x/sync/errgroup"

	"github.com/modelgarden/nodeup/internal/models"
	"github.com/modelgarden/nodeup/internal/util"
)

// modalConfig holds Modal-specific settings extracted from the generic
// provider config map.
type modalConfig struct {
	AppName   string
	Regions   []string
	Verbose   bool
	CPU       float64
	MemoryMiB int
}

func parseModalConfig(config map[string]any) (modalConfig, error) {
	mc := modalConfig{CPU: 1, MemoryMiB: 2048}
	if config == nil {
		return mc, nil
	}
	if v, ok := config["app_name"].(string); ok {
		mc.AppName = v
	}
	if v, ok := config["region"].(string); ok {
		mc.Regions = []string{v}
	}
	if v, ok := config["regions"].([]any); ok {
		for _, r := range v {
			if s, ok := r.(string); ok {
				mc.Regions = append(mc.Regions, s)
			}
		}
	}
	if v, ok := config["verbose"].(bool); ok {
		mc.Verbose = v
	}
	if v, ok := config["cpus"].(float64); ok && v > 0 {
		mc.CPU = v
	}
	if v, ok := config["cpus"].(int); ok && v > 0 {
		mc.CPU = float64(v)
	}
	if v, ok := config["memory"].(string); ok && v != "" {
		mib, err := util.ParseMemory(v)
		if err != nil {
			return mc, fmt.Errorf("parsing memory %q: %w", v, err)
		}
		mc.MemoryMiB = mib
	}
	return mc, nil
}

// Modal runs tools inside a Modal sandbox created from a registry image.
// Filesystem queries are answered by running coreutils inside the sandbox.
type Modal struct {
	client  *modal.Client
	sandbox *modal.Sandbox
	appName string
	workDir string
}

// NewModal creates a sandbox and returns a runner bound to it.
func NewModal(ctx context.Context, cfg models.RunnerConfig) (*Modal, error) {
	mc, err := parseModalConfig(cfg.ProviderConfig)
	if err != nil {
		return nil, err
	}

	slog.Debug("initializing modal client")
	client, err := modal.NewClient()
	if err != nil {
		return nil, fmt.Errorf("creating modal client: %w", err)
	}

	appName := mc.AppName
	if appName == "" {
		appName = fmt.Sprintf("nodeup-%d", time.Now().UnixNano())
	}

	app, err := client.Apps.FromName(ctx, appName, &modal.AppFromNameParams{
		CreateIfMissing: true,
	})
	if err != nil {
		return nil, fmt.Errorf("creating modal app: %w", err)
	}

	image := client.Images.FromRegistry(cfg.Image, nil)

	slog.Debug("creating modal sandbox",
		"app", appName,
		"image", cfg.Image,
		"cpus", mc.CPU,
		"memory_mib", mc.MemoryMiB,
		"regions", mc.Regions)

	sandbox, err := client.Sandboxes.Create(ctx, app, image, &modal.SandboxCreateParams{
		CPU:       mc.CPU,
		MemoryMiB: mc.MemoryMiB,
		Timeout:   24 * time.Hour, // Maximum allowed
		Verbose:   mc.Verbose,
		Regions:   mc.Regions,
	})
	if err != nil {
		return nil, fmt.Errorf("creating modal sandbox: %w", err)
	}

	slog.Debug("modal sandbox created", "sandbox_id", sandbox.SandboxID)

	return &Modal{
		client:  client,
		sandbox: sandbox,
		appName: appName,
		workDir: cfg.WorkDir,
	}, nil
}

// Name returns the backend name.
func (m *Modal) Name() string {
	return "modal"
}

// Run executes argv in the sandbox, streaming output as it is produced.
func (m *Modal) Run(ctx context.Context, argv []string, dir string, stdout, stderr io.Writer, opts RunOptions) (int, error) {
	if len(argv) == 0 {
		return -1, fmt.Errorf("empty command")
	}

	execParams := &modal.SandboxExecParams{
		Env: opts.Env,
	}
	if opts.Timeout > 0 {
		execParams.Timeout = opts.Timeout
	}
	if dir != "" {
		execParams.Workdir = dir
	} else if m.workDir != "" {
		execParams.Workdir = m.workDir
	}

	process, err := m.sandbox.Exec(ctx, argv, execParams)
	if err != nil {
		return -1, fmt.Errorf("executing command: %w", err)
	}

	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}

	// Drain both streams fully before Wait.
	var g errgroup.Group
	g.Go(func() error {
		_, err := io.Copy(stdout, process.Stdout)
		return err
	})
	g.Go(func() error {
		_, err := io.Copy(stderr, process.Stderr)
		return err
	})
	if err := g.Wait(); err != nil {
		slog.Debug("stream copy ended with error", "error", err)
	}

	exitCode, err := process.Wait(ctx)
	if err != nil {
		return -1, fmt.Errorf("waiting for process: %w", err)
	}
	return exitCode, nil
}

// Exists reports whether the path exists in the sandbox.
func (m *Modal) Exists(ctx context.Context, path string) (bool, error) {
	code, err := m.Run(ctx, []string{"test", "-e", path}, "", io.Discard, io.Discard, RunOptions{})
	if err != nil {
		return false, err
	}
	return code == 0, nil
}

// Remove deletes the path recursively inside the sandbox.
func (m *Modal) Remove(ctx context.Context, path string) error {
	code, err := m.Run(ctx, []string{"rm", "-rf", path}, "", io.Discard, io.Discard, RunOptions{})
	if err != nil {
		return err
	}
	if code != 0 {
		return fmt.Errorf("rm -rf %s exited with code %d", path, code)
	}
	return nil
}

// DirSize returns the directory size in bytes, via du.
func (m *Modal) DirSize(ctx context.Context, path string) (int64, error) {
	var stdout bytes.Buffer
	code, err := m.Run(ctx, []string{"du", "-sk", path}, "", &stdout, io.Discard, RunOptions{})
	if err != nil {
		return 0, err
	}
	if code != 0 {
		return 0, fmt.Errorf("du exited with code %d", code)
	}

	fields := strings.Fields(stdout.String())
	if len(fields) == 0 {
		return 0, fmt.Errorf("unexpected du output: %q", stdout.String())
	}
	var kib int64
	if _, err := fmt.Sscanf(fields[0], "%d", &kib); err != nil {
		return 0, fmt.Errorf("parsing du output: %w", err)
	}
	return kib * 1024, nil
}

// ReadFile returns the file's contents from inside the sandbox.
func (m *Modal) ReadFile(ctx context.Context, path string) ([]byte, error) {
	f, err := m.sandbox.Open(ctx, path, "r")
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}

// Close terminates the sandbox and stops the Modal app.
func (m *Modal) Close(ctx context.Context) error {
	slog.Debug("terminating modal sandbox", "sandbox_id", m.sandbox.SandboxID)

	if err := m.sandbox.Terminate(ctx); err != nil {
		if !strings.Contains(err.Error(), "already terminated") &&
			!strings.Contains(err.Error(), "not found") {
			return fmt.Errorf("terminating sandbox: %w", err)
		}
	}

	return m.stopApp(ctx)
}

// stopApp stops the Modal app using the modal CLI.
// The modal-go SDK doesn't expose AppStop on the public API, so we use the CLI.
func (m *Modal) stopApp(ctx context.Context) error {
	modalPath, err := exec.LookPath("modal")
	if err != nil {
		return fmt.Errorf("modal CLI not found: the modal-go SDK does not expose the AppStop API, " +
			"so the CLI is required to clean up apps. Install it with: pip install modal")
	}

	cmd := exec.CommandContext(ctx, modalPath, "app", "stop", m.appName)
	output, err := cmd.CombinedOutput()
	if err != nil {
		outStr := string(output)
		if strings.Contains(outStr, "already stopped") ||
			strings.Contains(outStr, "not found") ||
			strings.Contains(outStr, "Could not find") {
			return nil
		}
		return fmt.Errorf("modal app stop failed: %s", outStr)
	}
	return nil
}
