package runner

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
)

// Local runs tools directly on the host with os/exec.
type Local struct{}

// NewLocal creates a local runner.
func NewLocal() *Local {
	return &Local{}
}

// Name returns the backend name.
func (l *Local) Name() string {
	return "local"
}

// Run executes argv in dir, streaming output as it is produced.
func (l *Local) Run(ctx context.Context, argv []string, dir string, stdout, stderr io.Writer, opts RunOptions) (int, error) {
	if len(argv) == 0 {
		return -1, fmt.Errorf("empty command")
	}

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = dir
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	if len(opts.Env) > 0 {
		cmd.Env = os.Environ()
		for k, v := range opts.Env {
			cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%s", k, v))
		}
	}

	err := cmd.Run()
	if err != nil {
		// A deadline kill also surfaces as an ExitError, so check the
		// context first.
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

// Exists reports whether the path exists.
func (l *Local) Exists(ctx context.Context, path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// Remove deletes the path recursively.
func (l *Local) Remove(ctx context.Context, path string) error {
	return os.RemoveAll(path)
}

// DirSize returns the total size of all regular files under path.
func (l *Local) DirSize(ctx context.Context, path string) (int64, error) {
	var total int64
	err := filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			info, err := d.Info()
			if err != nil {
				return err
			}
			total += info.Size()
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("sizing %s: %w", path, err)
	}
	return total, nil
}

// ReadFile returns the contents of a local file.
func (l *Local) ReadFile(ctx context.Context, path string) ([]byte, error) {
	return os.ReadFile(path)
}

// Close is a no-op for the local runner.
func (l *Local) Close(ctx context.Context) error {
	return nil
}
