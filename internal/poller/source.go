package poller

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/modelgarden/nodeup/internal/models"
)

// Source yields the current progress document. The pipeline side only
// guarantees "read current document" semantics, so a source may be a local
// file, an HTTP endpoint, or anything else that returns the full snapshot.
type Source interface {
	Fetch(ctx context.Context) (models.Snapshot, error)
}

// FileSource reads the snapshot from a local path, typically the same path
// the publisher renames into.
type FileSource struct {
	Path string
}

func (s FileSource) Fetch(ctx context.Context) (models.Snapshot, error) {
	var snap models.Snapshot

	data, err := os.ReadFile(s.Path)
	if err != nil {
		return snap, fmt.Errorf("reading progress file: %w", err)
	}
	if err := json.Unmarshal(data, &snap); err != nil {
		return snap, fmt.Errorf("parsing progress JSON: %w", err)
	}
	return snap, nil
}

// HTTPSource fetches the snapshot from a remote URL.
type HTTPSource struct {
	URL string

	// Client defaults to http.DefaultClient when nil.
	Client *http.Client
}

func (s HTTPSource) Fetch(ctx context.Context) (models.Snapshot, error) {
	var snap models.Snapshot

	req, err := http.NewRequestWithContext(ctx, "GET", s.URL, nil)
	if err != nil {
		return snap, fmt.Errorf("creating request: %w", err)
	}

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return snap, fmt.Errorf("fetching progress: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return snap, fmt.Errorf("fetching progress: HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return snap, fmt.Errorf("reading response body: %w", err)
	}
	if err := json.Unmarshal(data, &snap); err != nil {
		return snap, fmt.Errorf("parsing progress JSON: %w", err)
	}
	return snap, nil
}
