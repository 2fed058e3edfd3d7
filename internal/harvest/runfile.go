// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package harvest

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/pubmed-harvester/pkg/types"
)

// RunFile is the on-disk YAML record of one harvest run: the criteria and
// configuration that produced the output plus the per-term summary, so a
// researcher can audit a dataset without re-running the harvest.
type RunFile struct {
	Criteria types.Criteria `yaml:"criteria"`
	Config   RunConfig      `yaml:"config"`
	Summary  Summary        `yaml:"summary"`

	// Timestamp marks when the run finished.
	Timestamp time.Time `yaml:"timestamp"`
}

// RunConfig stores the tuning knobs in a serializable form.
type RunConfig struct {
	PageSize        int    `yaml:"page_size"`
	MaxAttempts     int    `yaml:"max_attempts"`
	RequestInterval string `yaml:"request_interval"`
	Timeout         string `yaml:"timeout"`
}

// WriteRunFile saves the run record to a YAML file at path.
func WriteRunFile(path string, criteria types.Criteria, cfg types.HarvestConfig, summary Summary) error {
	rf := RunFile{
		Criteria: criteria,
		Config: RunConfig{
			PageSize:        cfg.PageSize,
			MaxAttempts:     cfg.MaxAttempts,
			RequestInterval: cfg.RequestInterval.String(),
			Timeout:         cfg.Timeout.String(),
		},
		Summary:   summary,
		Timestamp: time.Now(),
	}

	data, err := yaml.Marshal(&rf)
	if err != nil {
		return fmt.Errorf("marshaling run file: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating run file directory: %w", err)
		}
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadRunFile loads a previously saved run record from disk.
func ReadRunFile(path string) (*RunFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading run file: %w", err)
	}
	var rf RunFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("parsing run file: %w", err)
	}
	return &rf, nil
}
