package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/overhacked/square-bridge/pkg/config"
	"github.com/overhacked/square-bridge/pkg/export"
	"github.com/overhacked/square-bridge/pkg/parser"
	"github.com/overhacked/square-bridge/pkg/plan"
	"github.com/overhacked/square-bridge/pkg/service"
)

var batchCmd = &cobra.Command{
	Use:   "batch [flags] <plan_file>",
	Short: "Run every conversion listed in a YAML plan",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()

		p, err := plan.Load(args[0])
		if err != nil {
			return err
		}
		p.Print(os.Stderr)

		cfgPath := cfgFile
		if p.Config != "" {
			cfgPath = p.Config
		}
		m, err := config.Load(cfgPath, cmd.Flags())
		if err != nil {
			return err
		}
		enc, err := parser.Encoding(encoding)
		if err != nil {
			return err
		}

		failed := 0
		for _, run := range p.Runs {
			if err := runPlanned(run, m, parser.New(logger, enc), logger); err != nil {
				logger.Error("run failed", "run", run.Name, "err", err)
				failed++
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d run(s) failed", failed, len(p.Runs))
		}
		return nil
	},
}

func runPlanned(run plan.Run, m *config.Mapping, prs *parser.Parser, logger *log.Logger) error {
	format := run.Format
	if format == "" {
		format = "iif"
	}
	backend, err := export.Lookup(format)
	if err != nil {
		return err
	}
	f, err := service.ParseFilters(run.Start, run.End)
	if err != nil {
		return fmt.Errorf("invalid date filter: %w", err)
	}

	path := run.Output
	if path == "" {
		path = filepath.Join(filepath.Dir(run.Transactions), run.Name+backend.Extension())
	}
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating output file: %w", err)
	}
	defer out.Close()

	processor := service.NewProcessor(logger, prs, m, backend)
	summary, err := processor.Run(service.Inputs{Transactions: run.Transactions, Items: run.Items, Filters: f}, export.NewOutputs(out))
	if err != nil {
		return err
	}
	logger.Info("run finished", "run", run.Name, "output", path, "balanced", summary.BalancedCount(), "clean", summary.Clean())
	return nil
}

func init() {
	batchCmd.Flags().StringVar(&encoding, "encoding", "utf-8", "Export text encoding (utf-8, windows-1252, latin1)")
	rootCmd.AddCommand(batchCmd)
}
