package runner

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/modelgarden/nodeup/internal/models"
)

// Docker runs tools inside a long-lived container. Filesystem queries are
// answered by running coreutils through docker exec, so the container image
// must provide a POSIX shell.
type Docker struct {
	containerID string
}

// NewDocker starts a container from the configured image and returns a
// runner bound to it.
func NewDocker(ctx context.Context, cfg models.RunnerConfig) (*Docker, error) {
	containerID := fmt.Sprintf("nodeup-%d", time.Now().UnixNano())

	args := []string{"run", "-d", "--name", containerID}
	if cfg.WorkDir != "" {
		args = append(args, "-w", cfg.WorkDir)
	}
	args = append(args, cfg.Image, "sleep", "infinity")

	cmd := exec.CommandContext(ctx, "docker", args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("creating docker container: %w: %s", err, stderr.String())
	}

	return &Docker{containerID: containerID}, nil
}

// Name returns the backend name.
func (d *Docker) Name() string {
	return "docker"
}

// Run executes argv in the container.
func (d *Docker) Run(ctx context.Context, argv []string, dir string, stdout, stderr io.Writer, opts RunOptions) (int, error) {
	if len(argv) == 0 {
		return -1, fmt.Errorf("empty command")
	}

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	args := []string{"exec"}
	for k, v := range opts.Env {
		args = append(args, "-e", fmt.Sprintf("%s=%s", k, v))
	}
	if dir != "" {
		args = append(args, "-w", dir)
	}
	args = append(args, d.containerID)
	args = append(args, argv...)

	execCmd := exec.CommandContext(ctx, "docker", args...)
	execCmd.Stdout = stdout
	execCmd.Stderr = stderr

	err := execCmd.Run()
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return -1, fmt.Errorf("command timed out")
		}
		if exitErr, ok := err.(*exec.ExitError); ok {
			return exitErr.ExitCode(), nil
		}
		return -1, fmt.Errorf("executing command: %w", err)
	}

	return 0, nil
}

// Exists reports whether the path exists in the container.
func (d *Docker) Exists(ctx context.Context, path string) (bool, error) {
	code, err := d.Run(ctx, []string{"test", "-e", path}, "", io.Discard, io.Discard, RunOptions{})
	if err != nil {
		return false, err
	}
	return code == 0, nil
}

// Remove deletes the path recursively inside the container.
func (d *Docker) Remove(ctx context.Context, path string) error {
	code, err := d.Run(ctx, []string{"rm", "-rf", path}, "", io.Discard, io.Discard, RunOptions{})
	if err != nil {
		return err
	}
	if code != 0 {
		return fmt.Errorf("rm -rf %s exited with code %d", path, code)
	}
	return nil
}

// DirSize returns the directory size in bytes, via du.
func (d *Docker) DirSize(ctx context.Context, path string) (int64, error) {
	var stdout bytes.Buffer
	code, err := d.Run(ctx, []string{"du", "-sk", path}, "", &stdout, io.Discard, RunOptions{})
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
	kib, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing du output: %w", err)
	}
	return kib * 1024, nil
}

// ReadFile returns the file's contents from inside the container.
func (d *Docker) ReadFile(ctx context.Context, path string) ([]byte, error) {
	var stdout, stderr bytes.Buffer
	code, err := d.Run(ctx, []string{"cat", path}, "", &stdout, &stderr, RunOptions{})
	if err != nil {
		return nil, err
	}
	if code != 0 {
		return nil, fmt.Errorf("cat %s exited with code %d: %s", path, code, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}

// Close force-removes the container.
func (d *Docker) Close(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, "docker", "rm", "-f", d.containerID)
	if err := cmd.Run(); err != nil {
		if !strings.Contains(err.Error(), "No such container") {
			return fmt.Errorf("removing container: %w", err)
		}
	}
	return nil
}
