package runner

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/modelgarden/nodeup/internal/models"
)

// Runner is the execution host the clone and install tools run in. All
// filesystem inspection goes through the runner so that remote backends can
// answer for their own filesystems.
type Runner interface {
	// Name returns the backend name (e.g. "local", "docker", "modal").
	Name() string

	// Run executes argv in dir, streaming stdout and stderr to the provided
	// writers as the process produces them. Returns the exit code, or an
	// error when the command could not be run at all.
	Run(ctx context.Context, argv []string, dir string, stdout, stderr io.Writer, opts RunOptions) (int, error)

	// Exists reports whether the path exists on the host.
	Exists(ctx context.Context, path string) (bool, error)

	// Remove deletes the path recursively.
	Remove(ctx context.Context, path string) error

	// DirSize returns the total on-disk size of the directory in bytes.
	DirSize(ctx context.Context, path string) (int64, error)

	// ReadFile returns the contents of a file on the host.
	ReadFile(ctx context.Context, path string) ([]byte, error)

	// Close releases any resources held by the backend.
	Close(ctx context.Context) error
}

// RunOptions configures command execution.
type RunOptions struct {
	Env     map[string]string
	Timeout time.Duration
}

// New creates the runner selected by the configuration.
func New(ctx context.Context, cfg models.RunnerConfig) (Runner, error) {
	switch cfg.Type {
	case "", "local":
		return NewLocal(), nil
	case "docker":
		return NewDocker(ctx, cfg)
	case "modal":
		return NewModal(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported runner type: %s", cfg.Type)
	}
}
