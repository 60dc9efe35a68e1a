package poller

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"time"

	"github.com/modelgarden/nodeup/internal/models"
)

// DefaultInterval is the poll cadence when the config does not set one.
const DefaultInterval = 2 * time.Second

// Poller periodically fetches the progress document from a Source and
// hands changed snapshots to a Renderer. Transient fetch errors are logged
// and skipped; only a completed snapshot (or context cancellation) stops
// the loop.
type Poller struct {
	source   Source
	renderer Renderer
	interval time.Duration

	lastHash [sha256.Size]byte
	rendered bool
}

func New(source Source, renderer Renderer, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller{source: source, renderer: renderer, interval: interval}
}

// Run polls until the snapshot reports completion. Before stopping it
// performs one final fetch so a terminal update that landed between the
// last tick and shutdown is never missed.
func (p *Poller) Run(ctx context.Context) error {
	if done, err := p.step(ctx); err != nil || done {
		return err
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			done, err := p.step(ctx)
			if err != nil {
				return err
			}
			if done {
				return nil
			}
		}
	}
}

// step fetches and renders once, returning done=true after the guaranteed
// final render of a completed snapshot.
func (p *Poller) step(ctx context.Context) (bool, error) {
	snap, err := p.source.Fetch(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		slog.Debug("progress fetch failed, will retry", "error", err)
		return false, nil
	}

	if err := p.render(snap); err != nil {
		return false, err
	}
	if !snap.Completed {
		return false, nil
	}

	// The writer may have published again between our fetch and now. One
	// more fetch closes the race.
	final, err := p.source.Fetch(ctx)
	if err == nil {
		if err := p.render(final); err != nil {
			return false, err
		}
	}
	return true, nil
}

// render skips snapshots whose render-affecting content is unchanged, so
// pure polling overhead never causes flicker.
func (p *Poller) render(snap models.Snapshot) error {
	h := contentHash(snap)
	if p.rendered && h == p.lastHash {
		return nil
	}
	if err := p.renderer.Render(snap); err != nil {
		return fmt.Errorf("rendering snapshot: %w", err)
	}
	p.lastHash = h
	p.rendered = true
	return nil
}

func contentHash(snap models.Snapshot) [sha256.Size]byte {
	h := sha256.New()
	fmt.Fprintf(h, "%v|%v|%d|%d|%d|%d|%s|%s|%s|",
		snap.Completed, snap.Success,
		snap.TotalNodes, snap.Processed, snap.Successful, snap.Failed,
		snap.CurrentNode, snap.CurrentStatus, snap.RequirementsStatus)
	if snap.CloneProgress != nil {
		fmt.Fprintf(h, "%d", *snap.CloneProgress)
	}
	fmt.Fprintf(h, "|%s|%s|", snap.DataReceived, snap.ETA)
	for _, row := range snap.Nodes {
		fmt.Fprintf(h, "%s=%s;", row.Name, row.Status)
	}

	var sum [sha256.Size]byte
	h.Sum(sum[:0])
	return sum
}
