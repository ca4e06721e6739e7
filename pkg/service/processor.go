package service

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/overhacked/square-bridge/pkg/config"
	"github.com/overhacked/square-bridge/pkg/csv"
	"github.com/overhacked/square-bridge/pkg/export"
	"github.com/overhacked/square-bridge/pkg/mapping"
	"github.com/overhacked/square-bridge/pkg/models"
	"github.com/overhacked/square-bridge/pkg/parser"
	"github.com/overhacked/square-bridge/pkg/report"
	"github.com/overhacked/square-bridge/pkg/staging"
)

// Inputs names the two exports of one reporting period.
type Inputs struct {
	Transactions string
	Items        string
	Filters      Filters
}

type Processor struct {
	logger *log.Logger
	parser *parser.Parser
	writer *export.Writer
}

func NewProcessor(logger *log.Logger, p *parser.Parser, m *config.Mapping, backend export.Backend) *Processor {
	return &Processor{
		logger: logger,
		parser: p,
		writer: export.NewWriter(logger, mapping.New(m), backend),
	}
}

// Run converts the inputs and writes the result to out. Only failures that
// make the whole output meaningless are returned; per-transaction problems
// are in the summary.
func (p *Processor) Run(in Inputs, out *export.Outputs) (*report.Summary, error) {
	return p.run(in, func(store *staging.Store) (*export.Batch, error) {
		return p.writer.Write(store, out)
	})
}

// Plan converts the inputs without writing anything.
func (p *Processor) Plan(in Inputs) (*report.Summary, error) {
	return p.run(in, func(store *staging.Store) (*export.Batch, error) {
		return p.writer.Build(store)
	})
}

func (p *Processor) run(in Inputs, convert func(*staging.Store) (*export.Batch, error)) (*report.Summary, error) {
	store, err := p.Stage(in)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	batch, err := convert(store)
	if err != nil {
		return nil, err
	}

	orphans, err := store.Orphans()
	if err != nil {
		return nil, err
	}
	if orphans > 0 {
		p.logger.Warn("item rows matched no transaction", "count", orphans)
	}

	summary := report.Build(batch, store.Duplicates(), orphans)
	p.logger.Info("conversion finished",
		"balanced", summary.BalancedCount(),
		"unbalanced", summary.UnbalancedCount(),
		"skipped", summary.SkippedCount(),
		"fees", summary.Fees)
	return summary, nil
}

// Inspection pairs a staged sale with its grouped item lines.
type Inspection struct {
	Transaction *models.Transaction
	Lines       []models.GroupedLine
}

// Inspect returns the grouped lines of every staged sale.
func (p *Processor) Inspect(in Inputs) ([]Inspection, error) {
	store, err := p.Stage(in)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	sales, err := store.Sales()
	if err != nil {
		return nil, err
	}
	out := make([]Inspection, 0, len(sales))
	for _, t := range sales {
		lines, err := store.GroupedLines(t.Key())
		if err != nil {
			return nil, err
		}
		out = append(out, Inspection{Transaction: t, Lines: lines})
	}
	return out, nil
}

// Stage reads both exports and loads them into a fresh store. The caller
// closes it.
func (p *Processor) Stage(in Inputs) (*staging.Store, error) {
	txTable, err := p.readTable(in.Transactions)
	if err != nil {
		return nil, err
	}
	itemTable, err := p.readTable(in.Items)
	if err != nil {
		return nil, err
	}

	txns := csv.Filter(p.parser.Transactions(txTable), in.Filters.transactions())
	items := csv.Filter(p.parser.Items(itemTable), in.Filters.items())
	p.logger.Debug("filtered exports", "transactions", len(txns), "items", len(items))

	return staging.New(p.logger, txns, items)
}

func (p *Processor) readTable(path string) (*parser.Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading export: %w", err)
	}
	p.logger.Info("processing file", "path", path)
	return p.parser.ProcessBytes(data, filepath.Base(path))
}
