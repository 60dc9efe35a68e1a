package models

// Snapshot is the complete progress document published after every
// state-changing step. It is always a full projection of the run, never a
// delta, and is the sole channel of truth for pollers.
type Snapshot struct {
	InProgress bool `json:"in_progress"`
	Completed  bool `json:"completed"`
	Success    bool `json:"success"`

	TotalNodes int `json:"total_nodes"`
	Processed  int `json:"processed"`
	Successful int `json:"successful"`
	Failed     int `json:"failed"`

	CurrentNode   string `json:"current_node"`
	CurrentStatus string `json:"current_status"`

	HasRequirements    bool   `json:"has_requirements"`
	RequirementsStatus string `json:"requirements_status,omitempty"`

	CloneProgress *int   `json:"clone_progress,omitempty"`
	DownloadRate  string `json:"download_rate,omitempty"`
	DataReceived  string `json:"data_received,omitempty"`
	TotalSize     string `json:"total_size,omitempty"`
	ElapsedTime   string `json:"elapsed_time,omitempty"`
	ETA           string `json:"eta,omitempty"`

	Nodes []NodeRow `json:"nodes"`
}
