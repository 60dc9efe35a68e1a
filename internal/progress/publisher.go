package progress

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/modelgarden/nodeup/internal/models"
)

// Publisher writes the progress document consumed by pollers. Every publish
// serializes a complete snapshot and swaps it into place atomically, so a
// concurrent reader only ever sees some prior complete document or a newer
// one, never a mixture.
type Publisher struct {
	path string
}

// NewPublisher creates a publisher writing to path.
func NewPublisher(path string) *Publisher {
	return &Publisher{path: path}
}

// Path returns the published document's location.
func (p *Publisher) Path() string {
	return p.path
}

// Publish projects the run into a snapshot and writes it.
func (p *Publisher) Publish(run *models.Run) error {
	snap := Project(run)

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}

	// Write-then-rename within the target directory; rename is the atomic
	// replacement step.
	dir := filepath.Dir(p.path)
	tmp, err := os.CreateTemp(dir, ".progress-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp snapshot: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing snapshot: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("syncing snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("closing snapshot: %w", err)
	}

	if err := os.Rename(tmp.Name(), p.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replacing snapshot: %w", err)
	}
	return nil
}

// Project builds the full snapshot for the run's current state.
func Project(run *models.Run) models.Snapshot {
	snap := models.Snapshot{
		InProgress: !run.Completed,
		Completed:  run.Completed,
		Success:    run.Success(),
		TotalNodes: run.TotalNodes,
		Processed:  run.Processed,
		Successful: run.Successful,
		Failed:     run.Failed,
		Nodes:      append([]models.NodeRow(nil), run.Rows...),
	}

	if cur := run.Current; cur != nil {
		snap.CurrentNode = cur.Name
		snap.CurrentStatus = string(cur.Status)
		snap.HasRequirements = cur.HasRequirements
		snap.RequirementsStatus = cur.RequirementsStatus
		if cur.CloneProgress >= 0 {
			pct := cur.CloneProgress
			snap.CloneProgress = &pct
		}
		snap.DownloadRate = cur.DownloadRate
		snap.DataReceived = cur.DataReceived
		snap.TotalSize = cur.TotalSize
		snap.ElapsedTime = cur.ElapsedTime
		snap.ETA = cur.ETA
	}

	return snap
}
