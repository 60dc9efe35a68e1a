package poller

import (
	"bytes"
	"strings"
	"testing"

	"github.com/modelgarden/nodeup/internal/models"
)

func TestWriterRendererActiveHeader(t *testing.T) {
	pct := 42
	snap := models.Snapshot{
		InProgress:    true,
		TotalNodes:    3,
		Processed:     1,
		Successful:    1,
		CurrentNode:   "b",
		CurrentStatus: "cloning",
		CloneProgress: &pct,
		ETA:           "00:14",
		Nodes: []models.NodeRow{
			{Name: "a", Status: models.StatusSuccess, Message: "installed"},
			{Name: "b", Status: models.StatusCloning},
			{Name: "c", Status: models.StatusPending},
		},
	}

	var buf bytes.Buffer
	if err := (WriterRenderer{Out: &buf}).Render(snap); err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if lines[0] != "1/3 processed (1 ok, 0 failed) - b: cloning 42% eta 00:14" {
		t.Errorf("unexpected header %q", lines[0])
	}
	if len(lines) != 4 {
		t.Fatalf("expected header plus 3 rows, got %d lines: %q", len(lines), lines)
	}
	if !strings.Contains(lines[2], "cloning") || !strings.Contains(lines[2], "b") {
		t.Errorf("active row missing from output: %q", lines[2])
	}
}

func TestWriterRendererCompletedHeader(t *testing.T) {
	snap := models.Snapshot{
		Completed:  true,
		Success:    true,
		TotalNodes: 2,
		Processed:  2,
		Successful: 2,
	}

	var buf bytes.Buffer
	if err := (WriterRenderer{Out: &buf}).Render(snap); err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	header := strings.SplitN(buf.String(), "\n", 2)[0]
	if header != "2/2 processed (2 ok, 0 failed) - done" {
		t.Errorf("unexpected header %q", header)
	}
	for _, r := range buf.String() {
		if r > 127 {
			t.Fatalf("header output must be plain ASCII, found %q", r)
		}
	}
}
