// Package plan reads batch files that list several conversion runs, one per
// reporting period.
package plan

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type Plan struct {
	Config string `yaml:"config"`
	Format string `yaml:"format"`
	Runs   []Run  `yaml:"runs"`
}

type Run struct {
	Name         string `yaml:"name"`
	Transactions string `yaml:"transactions"`
	Items        string `yaml:"items"`
	Output       string `yaml:"output"`
	Format       string `yaml:"format"`
	Start        string `yaml:"start"`
	End          string `yaml:"end"`
}

// Load reads a plan. Relative paths are resolved against the plan's directory
// and a run without a format inherits the plan's.
func Load(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read plan file: %w", err)
	}

	var p Plan
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse yaml: %w", err)
	}

	if len(p.Runs) == 0 {
		return nil, fmt.Errorf("plan has no runs")
	}

	dir := filepath.Dir(path)
	p.Config = resolve(dir, p.Config)
	for i := range p.Runs {
		r := &p.Runs[i]
		if r.Transactions == "" || r.Items == "" {
			return nil, fmt.Errorf("run %d: transactions and items are required", i+1)
		}
		if r.Name == "" {
			r.Name = fmt.Sprintf("run-%d", i+1)
		}
		if r.Format == "" {
			r.Format = p.Format
		}
		r.Transactions = resolve(dir, r.Transactions)
		r.Items = resolve(dir, r.Items)
		r.Output = resolve(dir, r.Output)
	}
	return &p, nil
}

func resolve(dir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}

func (p *Plan) Print(w io.Writer) {
	if p.Config != "" {
		fmt.Fprintf(w, "Mapping: %s\n", p.Config)
	}
	for i, r := range p.Runs {
		fmt.Fprintf(w, "[%d] %s format=%s transactions=%s items=%s output=%s\n",
			i+1, r.Name, r.Format, r.Transactions, r.Items, r.Output)
	}
}
