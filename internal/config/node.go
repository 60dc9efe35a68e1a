package config

import (
	"fmt"
	"io/fs"

	"github.com/BurntSushi/toml"

	"github.com/modelgarden/nodeup/internal/models"
)

// NodeConfigFile is the optional metadata file a node may carry at the root
// of its fetched tree.
const NodeConfigFile = "node.toml"

// ParseNodeConfig decodes node.toml contents. Zero-value fields keep their
// manifest-derived defaults.
func ParseNodeConfig(data []byte) (models.NodeConfig, error) {
	var cfg models.NodeConfig
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return cfg, fmt.Errorf("parsing %s: %w", NodeConfigFile, err)
	}
	return cfg, nil
}

// LoadNodeConfig loads node.toml from the given filesystem. A missing file
// is not an error; the zero config is returned.
func LoadNodeConfig(fsys fs.FS) (models.NodeConfig, error) {
	data, err := fs.ReadFile(fsys, NodeConfigFile)
	if err != nil {
		return models.NodeConfig{}, nil
	}
	return ParseNodeConfig(data)
}
