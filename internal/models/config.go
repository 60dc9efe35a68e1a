package models

// Config represents the parsed nodeup.yaml configuration.
type Config struct {
	ManifestPath    string       `yaml:"manifest_path" json:"manifest_path"`
	InstallDir      string       `yaml:"install_dir" json:"install_dir"`
	ProgressPath    string       `yaml:"progress_path" json:"progress_path"`
	AuditLogPath    string       `yaml:"audit_log_path,omitempty" json:"audit_log_path,omitempty"`
	GitBin          string       `yaml:"git_bin,omitempty" json:"git_bin,omitempty"`
	PipBin          string       `yaml:"pip_bin,omitempty" json:"pip_bin,omitempty"`
	StepTimeoutSec  float64      `yaml:"step_timeout_sec,omitempty" json:"step_timeout_sec,omitempty"`
	PollIntervalSec float64      `yaml:"poll_interval_sec,omitempty" json:"poll_interval_sec,omitempty"`
	LogLevel        string       `yaml:"log_level,omitempty" json:"log_level,omitempty"`
	Runner          RunnerConfig `yaml:"runner,omitempty" json:"runner,omitempty"`
}

// RunnerConfig selects and configures the execution backend the clone and
// install tools run in.
type RunnerConfig struct {
	Type           string         `yaml:"type" json:"type"`
	Image          string         `yaml:"image,omitempty" json:"image,omitempty"`
	WorkDir        string         `yaml:"workdir,omitempty" json:"workdir,omitempty"`
	ProviderConfig map[string]any `yaml:"provider_config,omitempty" json:"provider_config,omitempty"`
}

// NodeConfig represents an optional node.toml found at the root of a
// fetched tree.
type NodeConfig struct {
	Requirements      string  `toml:"requirements,omitempty"`       // overrides the manifest's requirements file
	Disabled          bool    `toml:"disabled"`                     // skip dependency installation entirely
	InstallTimeoutSec float64 `toml:"install_timeout_sec,omitempty"`
}
