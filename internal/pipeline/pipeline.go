// Package pipeline drives the full generation flow: assemble the fabric
// model, build and validate the fact tables, evaluate design rules and
// cross-check the per-tile configuration memory tables.
package pipeline

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/openfpga-tools/fabricgen/internal/assembler"
	"github.com/openfpga-tools/fabricgen/internal/config"
	"github.com/openfpga-tools/fabricgen/internal/configmem"
	"github.com/openfpga-tools/fabricgen/internal/fabric"
	"github.com/openfpga-tools/fabricgen/internal/facts"
	"github.com/openfpga-tools/fabricgen/internal/policy"
	"github.com/openfpga-tools/fabricgen/internal/validator"
)

// Runner executes the pipeline with a fixed configuration.
type Runner struct {
	cfg    *config.Config
	logger *slog.Logger
}

// Report is the complete pipeline result.
type Report struct {
	Fabric   *fabric.Fabric
	Tables   facts.Tables
	Findings []policy.Finding
	Summary  policy.Summary

	// ConfigMems maps tile names to their parsed frame records, for every
	// discovered mapping table.
	ConfigMems map[string][]*fabric.ConfigMem
}

// New creates a Runner from the configuration.
func New(cfg *config.Config) *Runner {
	return &Runner{
		cfg:    cfg,
		logger: cfg.Logger(),
	}
}

// Logger exposes the runner's logger for callers that report around it.
func (r *Runner) Logger() *slog.Logger {
	return r.logger
}

// Run executes the pipeline against path, which is either a fabric
// description csv or a directory containing one at the configured
// location.
func (r *Runner) Run(path string) (*Report, error) {
	csvPath := path
	rootDir := filepath.Dir(path)
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		csvPath = filepath.Join(path, r.cfg.Fabric)
		rootDir = path
	}

	f, err := assembler.Parse(csvPath, r.logger)
	if err != nil {
		return nil, fmt.Errorf("assembling fabric: %w", err)
	}
	r.logger.Info("fabric assembled",
		"rows", f.NumberOfRows, "columns", f.NumberOfColumns,
		"tiles", len(f.TileDic), "superTiles", len(f.SuperTileDic))

	tables := facts.Build(f)

	v, err := validator.New()
	if err != nil {
		return nil, fmt.Errorf("initializing validator: %w", err)
	}
	if err := v.Validate(tables); err != nil {
		return nil, fmt.Errorf("fact tables violate the schema contract: %w", err)
	}

	engine, err := r.newPolicyEngine()
	if err != nil {
		return nil, err
	}
	result, err := engine.Evaluate(tables)
	if err != nil {
		return nil, fmt.Errorf("evaluating design rules: %w", err)
	}

	report := &Report{
		Fabric:     f,
		Tables:     tables,
		Findings:   r.applyRuleConfig(result.Findings),
		ConfigMems: make(map[string][]*fabric.ConfigMem),
	}
	report.Summary = summarize(report.Findings)

	if err := r.checkConfigMems(rootDir, f, report); err != nil {
		return nil, err
	}

	return report, nil
}

func (r *Runner) newPolicyEngine() (*policy.Engine, error) {
	if r.cfg.Policy.Dir != "" {
		engine, err := policy.NewFromDir(r.cfg.Policy.Dir)
		if err != nil {
			return nil, fmt.Errorf("loading policy rules from %s: %w", r.cfg.Policy.Dir, err)
		}
		return engine, nil
	}
	engine, err := policy.New()
	if err != nil {
		return nil, fmt.Errorf("loading embedded policy rules: %w", err)
	}
	return engine, nil
}

// applyRuleConfig drops disabled rules and applies configured severity
// overrides.
func (r *Runner) applyRuleConfig(findings []policy.Finding) []policy.Finding {
	var out []policy.Finding
	for _, f := range findings {
		if !r.cfg.IsRuleEnabled(f.Rule) {
			continue
		}
		f.Severity = r.cfg.GetRuleSeverity(f.Rule, f.Severity)
		out = append(out, f)
	}
	return out
}

// checkConfigMems parses every discovered mapping table against its
// tile's declared configuration bit total. Tables whose tile is not in
// the catalog are skipped with a warning.
func (r *Runner) checkConfigMems(rootDir string, f *fabric.Fabric, report *Report) error {
	paths, err := r.cfg.ResolveConfigMems(rootDir)
	if err != nil {
		return fmt.Errorf("discovering config memory tables: %w", err)
	}
	for _, path := range paths {
		tileName := config.TileNameFromConfigMem(path)
		tile, ok := f.TileDic[tileName]
		if !ok {
			r.logger.Warn("config memory table has no matching tile, skipping",
				"file", path, "tile", tileName)
			continue
		}
		frames, err := configmem.Parse(path, f.MaxFramesPerCol, f.FrameBitsPerRow, tile.ConfigBits)
		if err != nil {
			return fmt.Errorf("config memory for tile %s: %w", tileName, err)
		}
		report.ConfigMems[tileName] = frames
	}
	return nil
}

func summarize(findings []policy.Finding) policy.Summary {
	s := policy.Summary{TotalFindings: len(findings)}
	for _, f := range findings {
		switch f.Severity {
		case "error":
			s.Errors++
		case "warning":
			s.Warnings++
		case "info":
			s.Info++
		}
	}
	return s
}
