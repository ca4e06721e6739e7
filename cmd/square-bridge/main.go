package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/overhacked/square-bridge/pkg/config"
	"github.com/overhacked/square-bridge/pkg/export"
	"github.com/overhacked/square-bridge/pkg/parser"
	"github.com/overhacked/square-bridge/pkg/service"
)

var (
	cfgFile string
	verbose bool
	quiet   bool

	cliFilters filters
	encoding   string
)

var rootCmd = &cobra.Command{
	Use:           "square-bridge",
	Short:         "Convert Square exports to ledger import files",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return cmd.Help()
	},
}

func newLogger() *log.Logger {
	level := log.InfoLevel
	switch {
	case verbose:
		level = log.DebugLevel
	case quiet:
		level = log.WarnLevel
	}
	return log.NewWithOptions(os.Stderr, log.Options{
		ReportCaller:    verbose,
		ReportTimestamp: true,
		Prefix:          "square-bridge",
		Level:           level,
	})
}

// setup loads the mapping and builds a processor for the chosen format.
func setup(cmd *cobra.Command, format string) (*service.Processor, *log.Logger, error) {
	logger := newLogger()

	m, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return nil, nil, err
	}

	backend, err := export.Lookup(format)
	if err != nil {
		return nil, nil, err
	}

	enc, err := parser.Encoding(encoding)
	if err != nil {
		return nil, nil, err
	}

	return service.NewProcessor(logger, parser.New(logger, enc), m, backend), logger, nil
}

func inputs(args []string) (service.Inputs, error) {
	f, err := cliFilters.parse()
	if err != nil {
		return service.Inputs{}, err
	}
	return service.Inputs{Transactions: args[0], Items: args[1], Filters: f}, nil
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Mapping file (default is ./square-bridge.{yaml,toml,cfg})")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Only log warnings and errors")

	rootCmd.PersistentFlags().String("customer", "", "Customer name on sales entries")
	rootCmd.PersistentFlags().String("default-class", "", "Class for unmapped categories")
	rootCmd.PersistentFlags().String("fee-class", "", "Class for fee entries")

	rootCmd.AddCommand(convertCmd, planCmd, inspectCmd, configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
