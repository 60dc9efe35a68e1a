package progress

import (
	"fmt"
	"os"
	"time"

	"github.com/modelgarden/nodeup/internal/models"
)

// AuditLog is an append-only diagnostic log. It carries no atomicity
// guarantee and is never read by pollers. A nil *AuditLog discards records,
// so callers need no guard when audit logging is disabled.
type AuditLog struct {
	f *os.File
}

// OpenAuditLog opens (or creates) the audit log for appending. An empty
// path disables audit logging and returns nil.
func OpenAuditLog(path string) (*AuditLog, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("opening audit log: %w", err)
	}
	return &AuditLog{f: f}, nil
}

// Record appends one event line: [timestamp] TYPE|NODE|STATUS|MESSAGE.
func (a *AuditLog) Record(ev models.AuditEvent) error {
	if a == nil {
		return nil
	}
	ts := ev.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	_, err := fmt.Fprintf(a.f, "[%s] %s|%s|%s|%s\n",
		ts.Format(time.RFC3339), ev.Type, ev.Node, ev.Status, ev.Message)
	return err
}

// Close closes the underlying file.
func (a *AuditLog) Close() error {
	if a == nil {
		return nil
	}
	return a.f.Close()
}
