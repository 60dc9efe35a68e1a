package models

import "time"

// Run aggregates progress across an entire manifest. It has exactly one
// owner, the orchestrator, which threads it through each step explicitly.
type Run struct {
	TotalNodes int
	Processed  int
	Successful int
	Failed     int
	Current    *NodeState
	Completed  bool
	StartedAt  time.Time

	// Rows holds one entry per descriptor in manifest order so consumers
	// can render the full list; entries are updated as nodes finish.
	Rows []NodeRow
}

// NodeRow is the per-node line item carried in every snapshot.
type NodeRow struct {
	Name    string     `json:"name"`
	Status  NodeStatus `json:"status"`
	Message string     `json:"message,omitempty"`
}

// NewRun initializes a run over the loaded descriptors.
func NewRun(descriptors []NodeDescriptor) *Run {
	rows := make([]NodeRow, len(descriptors))
	for i, d := range descriptors {
		rows[i] = NodeRow{Name: d.Name, Status: StatusPending}
	}
	return &Run{
		TotalNodes: len(descriptors),
		StartedAt:  time.Now(),
		Rows:       rows,
	}
}

// Success reports the run-level outcome: a run that produced at least one
// successful node counts as successful even when other nodes failed. Only
// all-failures (with no success) is reported false.
func (r *Run) Success() bool {
	return !(r.Failed > 0 && r.Successful == 0)
}

// SetRow updates the row list entry at the given descriptor index.
func (r *Run) SetRow(i int, status NodeStatus, message string) {
	if i < 0 || i >= len(r.Rows) {
		return
	}
	r.Rows[i].Status = status
	r.Rows[i].Message = message
}
