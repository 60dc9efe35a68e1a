package runner_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/modelgarden/nodeup/internal/models"
	"github.com/modelgarden/nodeup/internal/runner"
)

func TestLocalExists(t *testing.T) {
	dir := t.TempDir()
	l := runner.NewLocal()

	ok, err := l.Exists(context.Background(), dir)
	if err != nil || !ok {
		t.Errorf("expected existing dir, got %v/%v", ok, err)
	}

	ok, err = l.Exists(context.Background(), filepath.Join(dir, "nope"))
	if err != nil || ok {
		t.Errorf("expected missing path, got %v/%v", ok, err)
	}
}

func TestLocalDirSize(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a"), bytes.Repeat([]byte("x"), 1000), 0644); err != nil {
		t.Fatalf("writing file: %v", err)
	}
	sub := filepath.Join(dir, "sub")
	if err := os.Mkdir(sub, 0755); err != nil {
		t.Fatalf("creating dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(sub, "b"), bytes.Repeat([]byte("y"), 500), 0644); err != nil {
		t.Fatalf("writing file: %v", err)
	}

	size, err := runner.NewLocal().DirSize(context.Background(), dir)
	if err != nil {
		t.Fatalf("DirSize failed: %v", err)
	}
	if size != 1500 {
		t.Errorf("expected 1500 bytes, got %d", size)
	}
}

func TestLocalRemove(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "node")
	if err := os.MkdirAll(filepath.Join(target, "deep"), 0755); err != nil {
		t.Fatalf("creating tree: %v", err)
	}

	l := runner.NewLocal()
	if err := l.Remove(context.Background(), target); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if ok, _ := l.Exists(context.Background(), target); ok {
		t.Error("expected tree removed")
	}
}

func TestLocalRunStreamsOutput(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	var stdout, stderr bytes.Buffer
	code, err := runner.NewLocal().Run(context.Background(),
		[]string{"sh", "-c", "echo out; echo err >&2"}, "",
		&stdout, &stderr, runner.RunOptions{})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if code != 0 {
		t.Errorf("expected exit 0, got %d", code)
	}
	if stdout.String() != "out\n" {
		t.Errorf("unexpected stdout %q", stdout.String())
	}
	if stderr.String() != "err\n" {
		t.Errorf("unexpected stderr %q", stderr.String())
	}
}

func TestLocalRunExitCodeNotAnError(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	code, err := runner.NewLocal().Run(context.Background(),
		[]string{"sh", "-c", "exit 7"}, "", nil, nil, runner.RunOptions{})
	if err != nil {
		t.Fatalf("nonzero exit must not be an error: %v", err)
	}
	if code != 7 {
		t.Errorf("expected exit 7, got %d", code)
	}
}

func TestLocalRunTimeout(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	_, err := runner.NewLocal().Run(context.Background(),
		[]string{"sleep", "10"}, "", nil, nil,
		runner.RunOptions{Timeout: 50 * time.Millisecond})
	if err == nil {
		t.Fatal("expected timeout error")
	}
}

func TestNewRejectsUnknownType(t *testing.T) {
	_, err := runner.New(context.Background(), models.RunnerConfig{Type: "warp"})
	if err == nil {
		t.Fatal("expected error for unknown runner type")
	}
}
