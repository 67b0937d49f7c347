package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"fintrack/internal/cli"
	"fintrack/internal/core"
	"fintrack/internal/importer"
)

func importCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import transactions from bank exports",
	}
	cmd.AddCommand(importCSVCmd(a), importOFXCmd(a))
	return cmd
}

func importCSVCmd(a *app) *cobra.Command {
	var (
		mapping importer.Mapping
		dryRun  bool
	)
	cmd := &cobra.Command{
		Use:   "csv [files...]",
		Short: "Import transactions from CSV or XLSX spreadsheets",
		Long: `Import transactions from CSV or XLSX spreadsheets.

Columns are detected from the header row; use the column flags when a
header is not recognised.

Examples:
  finctl import csv ~/Downloads/statement.csv
  finctl import csv --date "Booking Date" --amount Value export.xlsx`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runImport(cmd, args, dryRun, func(path string, data []byte) ([]core.Transaction, int, error) {
				var (
					table *importer.Table
					err   error
				)
				if strings.EqualFold(filepath.Ext(path), ".xlsx") {
					table, err = importer.ReadXLSX(bytes.NewReader(data))
				} else {
					table, err = importer.ReadCSV(bytes.NewReader(data))
				}
				if err != nil {
					return nil, 0, err
				}
				m := importer.DetectMapping(table.Headers)
				override(&m.Date, mapping.Date)
				override(&m.Amount, mapping.Amount)
				override(&m.Description, mapping.Description)
				override(&m.Category, mapping.Category)
				override(&m.Type, mapping.Type)

				now := a.now()
				res, err := importer.Convert(table, m, now.Location(), now)
				if err != nil {
					return nil, 0, err
				}
				return res.Transactions, res.Skipped, nil
			})
		},
	}
	cmd.Flags().StringVar(&mapping.Date, "date", "", "date column")
	cmd.Flags().StringVar(&mapping.Amount, "amount", "", "amount column")
	cmd.Flags().StringVar(&mapping.Description, "description", "", "description column")
	cmd.Flags().StringVar(&mapping.Category, "category", "", "category column")
	cmd.Flags().StringVar(&mapping.Type, "type", "", "type column")
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "d", false, "preview import without saving")
	return cmd
}

func importOFXCmd(a *app) *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "ofx [files...]",
		Short: "Import transactions from OFX/QFX statements",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runImport(cmd, args, dryRun, func(_ string, data []byte) ([]core.Transaction, int, error) {
				txs, err := importer.ReadOFX(cmd.Context(), bytes.NewReader(data), a.now())
				return txs, 0, err
			})
		},
	}
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "d", false, "preview import without saving")
	return cmd
}

func override(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}

type parseFunc func(path string, data []byte) (txs []core.Transaction, skipped int, err error)

// runImport parses every file and stores the union in one batch, so a failed
// file leaves the ledger untouched.
func (a *app) runImport(cmd *cobra.Command, args []string, dryRun bool, parse parseFunc) error {
	files, err := expandGlobs(args)
	if err != nil {
		return err
	}

	var (
		all     []core.Transaction
		skipped int
	)
	bar := cli.NewProgress(cmd.ErrOrStderr(), len(files), "Reading files")
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		txs, n, err := parse(path, data)
		if err != nil {
			return fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
		all = append(all, txs...)
		skipped += n
		_ = bar.Add(1)
	}

	out := cmd.OutOrStdout()
	if dryRun {
		fmt.Fprintln(out, cli.InfoStyle.Render(fmt.Sprintf("Dry run: %d transactions would be imported, %d rows skipped", len(all), skipped)))
		return nil
	}

	ledger, err := a.openLedger(cmd.Context())
	if err != nil {
		return err
	}
	n, err := ledger.ImportTransactions(cmd.Context(), all)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, cli.SuccessStyle.Render(fmt.Sprintf("Imported %d transactions from %d files (%d rows skipped)", n, len(files), skipped)))
	return nil
}

// expandGlobs resolves shell patterns; arguments matching nothing must name
// an existing file.
func expandGlobs(args []string) ([]string, error) {
	var files []string
	for _, pattern := range args {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %s: %w", pattern, err)
		}
		if len(matches) == 0 {
			if _, err := os.Stat(pattern); err != nil {
				return nil, fmt.Errorf("no files match %s", pattern)
			}
			matches = []string{pattern}
		}
		files = append(files, matches...)
	}
	return files, nil
}
