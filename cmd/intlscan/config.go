package main

import (
	"os"

	"gopkg.in/yaml.v3"

	"intlscan/pkg/scanner"
)

// ProjectConfig holds the contents of .intlscan.yaml.
type ProjectConfig struct {
	Output     string   `yaml:"output"`
	Include    []string `yaml:"include"`
	Exclude    []string `yaml:"exclude"`
	Workers    int      `yaml:"workers"`
	DebounceMs int      `yaml:"debounce_ms"`
}

// loadProjectConfig reads .intlscan.yaml from dir.
// Returns nil (no error) if the file does not exist.
func loadProjectConfig(dir string) (*ProjectConfig, error) {
	data, err := os.ReadFile(dir + "/.intlscan.yaml")
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// resolveConfig builds the scan config, applying the fallback chain per
// field:
//  1. Explicit flag value (non-empty override)
//  2. .intlscan.yaml in the scan root
//  3. Built-in defaults
func resolveConfig(root, output string, include, exclude []string, workers int) (scanner.Config, error) {
	cfg := scanner.DefaultConfig()
	cfg.Root = root

	project, err := loadProjectConfig(root)
	if err != nil {
		return cfg, err
	}
	if project != nil {
		if project.Output != "" {
			cfg.OutputPath = project.Output
		}
		if len(project.Include) > 0 {
			cfg.Include = project.Include
		}
		if len(project.Exclude) > 0 {
			cfg.Exclude = project.Exclude
		}
		if project.Workers > 0 {
			cfg.Workers = project.Workers
		}
		if project.DebounceMs > 0 {
			cfg.DebounceMs = project.DebounceMs
		}
	}

	if output != "" {
		cfg.OutputPath = output
	}
	if len(include) > 0 {
		cfg.Include = include
	}
	if len(exclude) > 0 {
		cfg.Exclude = exclude
	}
	if workers > 0 {
		cfg.Workers = workers
	}

	return cfg, nil
}
