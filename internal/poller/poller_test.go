package poller

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/modelgarden/nodeup/internal/models"
)

// scriptedSource returns one response per Fetch, sticking on the last.
type scriptedSource struct {
	snaps []models.Snapshot
	errs  []error
	calls int
}

func (s *scriptedSource) Fetch(ctx context.Context) (models.Snapshot, error) {
	i := s.calls
	if i >= len(s.snaps) {
		i = len(s.snaps) - 1
	}
	s.calls++
	if s.errs != nil && s.errs[i] != nil {
		return models.Snapshot{}, s.errs[i]
	}
	return s.snaps[i], nil
}

type recordingRenderer struct {
	rendered []models.Snapshot
}

func (r *recordingRenderer) Render(snap models.Snapshot) error {
	r.rendered = append(r.rendered, snap)
	return nil
}

func running(processed int) models.Snapshot {
	return models.Snapshot{
		InProgress: true,
		TotalNodes: 3,
		Processed:  processed,
		Successful: processed,
	}
}

func completed() models.Snapshot {
	return models.Snapshot{
		Completed:  true,
		Success:    true,
		TotalNodes: 3,
		Processed:  3,
		Successful: 3,
	}
}

func TestPollerRendersUntilCompleted(t *testing.T) {
	src := &scriptedSource{
		snaps: []models.Snapshot{running(0), running(1), running(2), completed()},
	}
	rend := &recordingRenderer{}

	p := New(src, rend, time.Millisecond)
	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("poll loop: %v", err)
	}

	// 4 distinct snapshots plus the guaranteed final fetch, which repeats
	// the completed document and is deduplicated.
	if len(rend.rendered) != 4 {
		t.Fatalf("expected 4 renders, got %d", len(rend.rendered))
	}
	last := rend.rendered[len(rend.rendered)-1]
	if !last.Completed {
		t.Error("last render must be the completed snapshot")
	}
}

func TestPollerSkipsUnchangedSnapshots(t *testing.T) {
	src := &scriptedSource{
		snaps: []models.Snapshot{running(1), running(1), running(1), completed()},
	}
	rend := &recordingRenderer{}

	p := New(src, rend, time.Millisecond)
	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("poll loop: %v", err)
	}

	if len(rend.rendered) != 2 {
		t.Fatalf("identical snapshots must render once, got %d renders", len(rend.rendered))
	}
}

func TestPollerToleratesTransientErrors(t *testing.T) {
	src := &scriptedSource{
		snaps: []models.Snapshot{running(0), {}, running(2), completed()},
		errs:  []error{nil, errors.New("connection refused"), nil, nil},
	}
	rend := &recordingRenderer{}

	p := New(src, rend, time.Millisecond)
	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("a transient fetch error must not stop the loop: %v", err)
	}

	if len(rend.rendered) != 3 {
		t.Fatalf("expected 3 renders, got %d", len(rend.rendered))
	}
}

func TestPollerFinalFetchCatchesLateUpdate(t *testing.T) {
	// The completed document observed at index 2 is stale; the writer
	// published a richer terminal snapshot right after. The final fetch
	// must pick it up.
	late := completed()
	late.Failed = 1
	late.Successful = 2
	src := &scriptedSource{
		snaps: []models.Snapshot{running(1), running(2), completed(), late},
	}
	rend := &recordingRenderer{}

	p := New(src, rend, time.Millisecond)
	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("poll loop: %v", err)
	}

	last := rend.rendered[len(rend.rendered)-1]
	if last.Failed != 1 {
		t.Errorf("final render must reflect the late update, got %+v", last)
	}
}

func TestPollerStopsOnContextCancel(t *testing.T) {
	src := &scriptedSource{snaps: []models.Snapshot{running(0)}}
	rend := &recordingRenderer{}

	ctx, cancel := context.WithCancel(context.Background())
	p := New(src, rend, 10*time.Millisecond)

	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("poller did not stop after cancellation")
	}
}

func TestContentHashIgnoresNonRenderFields(t *testing.T) {
	a := running(1)
	b := running(1)
	b.ElapsedTime = "00:42" // elapsed alone should not force a redraw

	if contentHash(a) != contentHash(b) {
		t.Error("elapsed-only change must hash equal")
	}

	c := running(1)
	c.Nodes = []models.NodeRow{{Name: "x", Status: models.StatusCloning}}
	if contentHash(a) == contentHash(c) {
		t.Error("row list change must alter the hash")
	}
}
