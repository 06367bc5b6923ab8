// Package policy evaluates OPA design rules against the fabric fact
// tables. The default rule set is embedded; additional .rego files can be
// loaded from a directory.
package policy

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/open-policy-agent/opa/rego"

	"github.com/openfpga-tools/fabricgen/internal/facts"
)

//go:embed rules.rego
var defaultRules string

// Engine evaluates OPA policies against fabric facts.
type Engine struct {
	queries map[string]rego.PreparedEvalQuery
}

// Finding is one policy finding against the fabric design.
type Finding struct {
	Rule     string `json:"rule"`
	Severity string `json:"severity"`
	Tile     string `json:"tile"`
	Message  string `json:"message"`
}

// Result contains the evaluation results.
type Result struct {
	Findings []Finding
	Summary  Summary
}

// Summary provides aggregate counts.
type Summary struct {
	TotalFindings int `json:"total_findings"`
	Errors        int `json:"errors"`
	Warnings      int `json:"warnings"`
	Info          int `json:"info"`
}

// New creates a policy engine with the embedded default rules.
func New() (*Engine, error) {
	return build([]func(*rego.Rego){rego.Module("rules.rego", defaultRules)})
}

// NewFromDir creates a policy engine loading every .rego file from the
// given directory instead of the embedded rules.
func NewFromDir(policyDir string) (*Engine, error) {
	files, err := filepath.Glob(filepath.Join(policyDir, "*.rego"))
	if err != nil {
		return nil, fmt.Errorf("finding policy files: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no policy files found in %s", policyDir)
	}

	var modules []func(*rego.Rego)
	for _, f := range files {
		content, err := os.ReadFile(f)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", f, err)
		}
		modules = append(modules, rego.Module(f, string(content)))
	}
	return build(modules)
}

func build(modules []func(*rego.Rego)) (*Engine, error) {
	engine := &Engine{
		queries: make(map[string]rego.PreparedEvalQuery),
	}

	opts := append(append([]func(*rego.Rego){}, modules...),
		rego.Query("data.fabric.design.all_findings"))
	query, err := rego.New(opts...).PrepareForEval(context.Background())
	if err != nil {
		return nil, fmt.Errorf("preparing findings query: %w", err)
	}
	engine.queries["findings"] = query

	opts = append(append([]func(*rego.Rego){}, modules...),
		rego.Query("data.fabric.design.summary"))
	query, err = rego.New(opts...).PrepareForEval(context.Background())
	if err != nil {
		return nil, fmt.Errorf("preparing summary query: %w", err)
	}
	engine.queries["summary"] = query

	return engine, nil
}

// Evaluate runs the policies against the fact tables.
func (e *Engine) Evaluate(tables facts.Tables) (*Result, error) {
	ctx := context.Background()

	inputMap, err := structToMap(tables)
	if err != nil {
		return nil, fmt.Errorf("converting input: %w", err)
	}

	result := &Result{}

	rs, err := e.queries["findings"].Eval(ctx, rego.EvalInput(inputMap))
	if err != nil {
		return nil, fmt.Errorf("evaluating findings: %w", err)
	}
	if len(rs) > 0 && len(rs[0].Expressions) > 0 {
		if findings, ok := rs[0].Expressions[0].Value.([]interface{}); ok {
			for _, f := range findings {
				fmap, ok := f.(map[string]interface{})
				if !ok {
					continue
				}
				result.Findings = append(result.Findings, Finding{
					Rule:     getString(fmap, "rule"),
					Severity: getString(fmap, "severity"),
					Tile:     getString(fmap, "tile"),
					Message:  getString(fmap, "message"),
				})
			}
		}
	}

	rs, err = e.queries["summary"].Eval(ctx, rego.EvalInput(inputMap))
	if err != nil {
		return nil, fmt.Errorf("evaluating summary: %w", err)
	}
	if len(rs) > 0 && len(rs[0].Expressions) > 0 {
		if smap, ok := rs[0].Expressions[0].Value.(map[string]interface{}); ok {
			result.Summary = Summary{
				TotalFindings: getInt(smap, "total_findings"),
				Errors:        getInt(smap, "errors"),
				Warnings:      getInt(smap, "warnings"),
				Info:          getInt(smap, "info"),
			}
		}
	}

	return result, nil
}

func structToMap(v interface{}) (map[string]interface{}, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var result map[string]interface{}
	err = json.Unmarshal(data, &result)
	return result, err
}

func getString(m map[string]interface{}, key string) string {
	if v, ok := m[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func getInt(m map[string]interface{}, key string) int {
	if v, ok := m[key]; ok {
		switch n := v.(type) {
		case int:
			return n
		case float64:
			return int(n)
		case json.Number:
			i, _ := n.Int64()
			return int(i)
		}
	}
	return 0
}
