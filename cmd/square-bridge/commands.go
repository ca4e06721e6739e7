package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/k0kubun/pp/v3"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/overhacked/square-bridge/pkg/config"
	"github.com/overhacked/square-bridge/pkg/export"
	"github.com/overhacked/square-bridge/pkg/service"
)

var (
	format string
	output string
	split  bool
)

var convertCmd = &cobra.Command{
	Use:   "convert [flags] <transactions> <items>",
	Short: "Convert a transactions and an items export to a ledger import file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		processor, logger, err := setup(cmd, format)
		if err != nil {
			return err
		}
		in, err := inputs(args)
		if err != nil {
			return err
		}

		backend, _ := export.Lookup(format)
		out, closeAll, err := openOutputs(backend)
		if err != nil {
			return err
		}

		summary, err := processor.Run(in, out)
		if cerr := closeAll(); err == nil {
			err = cerr
		}
		if err != nil {
			return err
		}

		if !summary.Clean() {
			logger.Warn("conversion needs review, run plan for details",
				"unbalanced", summary.UnbalancedCount(),
				"skipped", summary.SkippedCount(),
				"duplicates", len(summary.Duplicates),
				"orphans", summary.Orphans)
		}
		return nil
	},
}

// openOutputs creates the destination files. Without --output everything
// goes to stdout; with --split each backend stream gets <base>-<stream><ext>.
func openOutputs(backend export.Backend) (*export.Outputs, func() error, error) {
	if output == "" {
		if split {
			return nil, nil, fmt.Errorf("--split needs --output")
		}
		return export.NewOutputs(os.Stdout), func() error { return nil }, nil
	}

	var files []*os.File
	closeAll := func() error {
		var first error
		for _, f := range files {
			if err := f.Close(); err != nil && first == nil {
				first = err
			}
		}
		return first
	}
	create := func(path string) (*os.File, error) {
		f, err := os.Create(path)
		if err != nil {
			closeAll()
			return nil, fmt.Errorf("error creating output file: %w", err)
		}
		files = append(files, f)
		return f, nil
	}

	if !split {
		f, err := create(output)
		if err != nil {
			return nil, nil, err
		}
		return export.NewOutputs(f), closeAll, nil
	}

	base := strings.TrimSuffix(output, filepath.Ext(output))
	out := export.NewOutputs(nil)
	for _, s := range backend.Streams() {
		f, err := create(fmt.Sprintf("%s-%s%s", base, s, backend.Extension()))
		if err != nil {
			return nil, nil, err
		}
		out.Set(s, f)
	}
	return out, closeAll, nil
}

var planCmd = &cobra.Command{
	Use:   "plan [flags] <transactions> <items>",
	Short: "Preview the ledger entries a conversion would write (dry-run)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		processor, _, err := setup(cmd, format)
		if err != nil {
			return err
		}
		in, err := inputs(args)
		if err != nil {
			return err
		}

		summary, err := processor.Plan(in)
		if err != nil {
			return err
		}
		fmt.Printf("Plan preview for %s and %s\n\n", args[0], args[1])
		summary.Print(os.Stdout)
		return nil
	},
}

type lineView struct {
	Category string
	Item     string
	Rows     int
	Quantity string
	Price    string
	Discount string
	Tax      string
}

type inspectView struct {
	PaymentID string
	Date      string
	Time      string
	Kind      string
	Total     string
	Card      string
	Lines     []lineView
}

var inspectCmd = &cobra.Command{
	Use:   "inspect [flags] <transactions> <items>",
	Short: "Dump the staged transactions and their grouped item lines",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		processor, _, err := setup(cmd, format)
		if err != nil {
			return err
		}
		in, err := inputs(args)
		if err != nil {
			return err
		}

		staged, err := processor.Inspect(in)
		if err != nil {
			return err
		}
		pp.Println(inspectViews(staged))
		return nil
	},
}

func inspectViews(staged []service.Inspection) []inspectView {
	views := make([]inspectView, 0, len(staged))
	for _, s := range staged {
		t := s.Transaction
		v := inspectView{
			PaymentID: t.PaymentID,
			Date:      t.Key().Date,
			Time:      t.Time,
			Kind:      string(t.Kind),
			Total:     t.Total.StringFixed(2),
			Card:      strings.TrimSpace(t.CardBrand + " " + t.CardNumber),
		}
		for _, l := range s.Lines {
			v.Lines = append(v.Lines, lineView{
				Category: l.Category,
				Item:     l.Name,
				Rows:     l.Rows,
				Quantity: l.Quantity.String(),
				Price:    l.Price.StringFixed(2),
				Discount: l.Discount.StringFixed(2),
				Tax:      l.Tax.StringFixed(2),
			})
		}
		views = append(views, v)
	}
	return views
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective mapping as YAML",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		m, err := config.Load(cfgFile, cmd.Flags())
		if err != nil {
			return err
		}
		return printMapping(os.Stdout, m)
	},
}

func printMapping(w io.Writer, m *config.Mapping) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(m); err != nil {
		return fmt.Errorf("failed to render mapping: %w", err)
	}
	return enc.Close()
}

func init() {
	for _, cmd := range []*cobra.Command{convertCmd, planCmd, inspectCmd} {
		cliFilters.register(cmd.Flags())
		cmd.Flags().StringVar(&encoding, "encoding", "utf-8", "Export text encoding (utf-8, windows-1252, latin1)")
	}
	for _, cmd := range []*cobra.Command{convertCmd, planCmd} {
		cmd.Flags().StringVarP(&format, "format", "f", "iif", "Output format ("+strings.Join(export.Formats(), ", ")+")")
	}
	convertCmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout)")
	convertCmd.Flags().BoolVar(&split, "split", false, "Write one file per output stream")
}
