package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config is the top-level configuration for fabric-gen.
type Config struct {
	// Fabric is the path to the fabric description csv, relative to the
	// project root if not absolute.
	Fabric string `json:"fabric,omitempty"`

	// Log configures logging output.
	Log LogConfig `json:"log,omitempty"`

	// Output configures where generated artifacts are written.
	Output OutputConfig `json:"output,omitempty"`

	// Policy configures the design rule engine.
	Policy PolicyConfig `json:"policy,omitempty"`

	// ConfigMem configures discovery of per-tile configuration memory
	// mapping tables.
	ConfigMem ConfigMemConfig `json:"configMem,omitempty"`
}

// LogConfig selects log verbosity and encoding.
type LogConfig struct {
	// Level is one of "debug", "info", "warn", "error".
	Level string `json:"level,omitempty"`

	// Format is "text" or "json".
	Format string `json:"format,omitempty"`
}

// OutputConfig controls generated artifact locations.
type OutputConfig struct {
	// FactsFile is where the relational fact tables are written.
	FactsFile string `json:"factsFile,omitempty"`
}

// PolicyConfig controls the design rule engine.
type PolicyConfig struct {
	// Dir loads .rego rules from a directory instead of the embedded set.
	Dir string `json:"dir,omitempty"`

	// Rules maps rule names to severity: "off", "info", "warning", "error".
	Rules map[string]string `json:"rules,omitempty"`
}

// ConfigMemConfig controls configuration memory table discovery.
type ConfigMemConfig struct {
	// Patterns is a list of glob patterns for mapping tables.
	Patterns []string `json:"patterns,omitempty"`

	// Exclude is a list of glob patterns to skip.
	Exclude []string `json:"exclude,omitempty"`
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() *Config {
	return &Config{
		Fabric: "fabric.csv",
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Output: OutputConfig{
			FactsFile: "fabric_facts.json",
		},
		Policy: PolicyConfig{
			Rules: map[string]string{},
		},
		ConfigMem: ConfigMemConfig{
			Patterns: []string{"*_ConfigMem.csv", "**/*_ConfigMem.csv"},
			Exclude:  []string{},
		},
	}
}

// Load finds and loads the configuration file.
// Search order:
//  1. ./fabricgen.json (current working directory)
//  2. ./.fabricgen.json (current working directory)
//  3. <rootPath>/fabricgen.json (if different from cwd)
//  4. ~/.config/fabricgen/config.json
//
// Returns DefaultConfig if no config file is found.
func Load(rootPath string) (*Config, error) {
	cwd, _ := os.Getwd()

	searchPaths := []string{
		filepath.Join(cwd, "fabricgen.json"),
		filepath.Join(cwd, ".fabricgen.json"),
	}

	if info, err := os.Stat(rootPath); err == nil && info.IsDir() {
		absRoot, _ := filepath.Abs(rootPath)
		if absRoot != cwd {
			searchPaths = append(searchPaths,
				filepath.Join(rootPath, "fabricgen.json"),
				filepath.Join(rootPath, ".fabricgen.json"),
			)
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		searchPaths = append(searchPaths, filepath.Join(home, ".config", "fabricgen", "config.json"))
	}

	for _, path := range searchPaths {
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}

	return DefaultConfig(), nil
}

// LoadFile loads configuration from a specific file.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyDefaults()

	return &cfg, nil
}

// applyDefaults fills in missing configuration with defaults.
func (c *Config) applyDefaults() {
	if c.Fabric == "" {
		c.Fabric = "fabric.csv"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Output.FactsFile == "" {
		c.Output.FactsFile = "fabric_facts.json"
	}
	if c.Policy.Rules == nil {
		c.Policy.Rules = make(map[string]string)
	}
	if c.ConfigMem.Patterns == nil {
		c.ConfigMem.Patterns = []string{"*_ConfigMem.csv", "**/*_ConfigMem.csv"}
	}
}

// Save writes the configuration to a file.
func (c *Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// GetRuleSeverity returns the severity for a rule, or the default if not
// configured.
func (c *Config) GetRuleSeverity(rule string, defaultSeverity string) string {
	if severity, ok := c.Policy.Rules[rule]; ok {
		return severity
	}
	return defaultSeverity
}

// IsRuleEnabled returns true if the rule is not set to "off".
func (c *Config) IsRuleEnabled(rule string) bool {
	if severity, ok := c.Policy.Rules[rule]; ok {
		return severity != "off"
	}
	return true
}
