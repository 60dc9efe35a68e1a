package models

// NodeDescriptor is one row of the installation manifest. Descriptors are
// immutable once the manifest is loaded.
type NodeDescriptor struct {
	Name             string `json:"name"`
	SourceURL        string `json:"source_url"`
	Subfolder        string `json:"subfolder,omitempty"`          // install directory name, defaults to Name
	RequirementsFile string `json:"requirements_file,omitempty"`  // relative path inside the fetched tree
	Invalid          bool   `json:"invalid,omitempty"`
	InvalidReason    string `json:"invalid_reason,omitempty"`
}

// TargetDir returns the directory name the node installs into, relative to
// the install root.
func (d NodeDescriptor) TargetDir() string {
	if d.Subfolder != "" {
		return d.Subfolder
	}
	return d.Name
}

// NodeStatus identifies where a node is in its lifecycle.
type NodeStatus string

const (
	StatusPending        NodeStatus = "pending"
	StatusCloning        NodeStatus = "cloning"
	StatusInstallingDeps NodeStatus = "installing_deps"
	StatusSuccess        NodeStatus = "success"
	StatusPartial        NodeStatus = "partial"
	StatusFailed         NodeStatus = "failed"
)

// Terminal returns true once a node can no longer change state.
func (s NodeStatus) Terminal() bool {
	switch s {
	case StatusSuccess, StatusPartial, StatusFailed:
		return true
	}
	return false
}

// NodeState is the mutable per-node progress record. Only the engine
// currently processing the node writes to it; once Status is terminal the
// value is frozen.
type NodeState struct {
	Name               string
	Status             NodeStatus
	Message            string
	HasRequirements    bool
	RequirementsStatus string

	// Clone-phase metrics. CloneProgress is -1 until the first percent is
	// parsed from the tool's output.
	CloneProgress int
	DownloadRate  string
	DataReceived  string
	TotalSize     string
	ElapsedTime   string
	ETA           string
}

// NewNodeState returns a pending state for the descriptor.
func NewNodeState(d NodeDescriptor) *NodeState {
	return &NodeState{
		Name:          d.Name,
		Status:        StatusPending,
		CloneProgress: -1,
	}
}
