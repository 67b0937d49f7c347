package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"fintrack/internal/cli"
	"fintrack/internal/core"
	"fintrack/internal/export"
	"fintrack/internal/finance"
	gsheet "fintrack/internal/sheets/google"
)

func exportCmd(a *app) *cobra.Command {
	var month string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export reports as files or to Google Sheets",
	}
	cmd.PersistentFlags().StringVarP(&month, "month", "m", finance.AllMonths, `month to export (YYYY-MM or "all")`)

	var out string
	fileCmd := func(format, short string, write func(*bytes.Buffer, []core.Transaction, string) error) *cobra.Command {
		c := &cobra.Command{
			Use:   format,
			Short: short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				txs, err := a.transactions(cmd)
				if err != nil {
					return err
				}
				var buf bytes.Buffer
				if err := write(&buf, txs, month); err != nil {
					return err
				}
				path := out
				if path == "" {
					path = export.Filename(month, format)
				}
				return a.writeFile(cmd, path, buf.Bytes())
			},
		}
		c.Flags().StringVarP(&out, "out", "o", "", "output file (default: financial-report-<month>."+format+")")
		return c
	}

	cmd.AddCommand(
		fileCmd("csv", "Export transactions as re-importable CSV", func(buf *bytes.Buffer, txs []core.Transaction, month string) error {
			selected, err := finance.FilterByMonth(txs, month)
			if err != nil {
				return err
			}
			return export.WriteCSV(buf, selected)
		}),
		fileCmd("xlsx", "Export the financial report as an Excel workbook", func(buf *bytes.Buffer, txs []core.Transaction, month string) error {
			report, err := export.BuildReport(txs, month, a.now(), a.formatter())
			if err != nil {
				return err
			}
			return export.WriteXLSX(buf, report)
		}),
		exportChartCmd(a, &month),
		exportSheetsCmd(a, &month),
	)
	return cmd
}

func exportChartCmd(a *app, month *string) *cobra.Command {
	var (
		out    string
		txType string
	)
	cmd := &cobra.Command{
		Use:       "chart categories|monthly",
		Short:     "Render a PNG chart",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"categories", "monthly"},
		RunE: func(cmd *cobra.Command, args []string) error {
			txs, err := a.transactions(cmd)
			if err != nil {
				return err
			}
			var buf bytes.Buffer
			switch args[0] {
			case "categories":
				t := core.TransactionType(txType)
				if err := t.Validate(); err != nil {
					return err
				}
				selected, err := finance.FilterByMonth(txs, *month)
				if err != nil {
					return err
				}
				if err := export.CategoryPie(&buf, finance.SummarizeByCategory(selected, t), a.formatter()); err != nil {
					return err
				}
			case "monthly":
				if err := export.MonthlyBars(&buf, finance.SummarizeByMonth(txs)); err != nil {
					return err
				}
			default:
				return fmt.Errorf("unknown chart %q: want categories or monthly", args[0])
			}
			if out == "" {
				out = args[0] + ".png"
			}
			return a.writeFile(cmd, out, buf.Bytes())
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default: <chart>.png)")
	cmd.Flags().StringVar(&txType, "type", string(core.Expense), "transaction type for the category chart")
	return cmd
}

func exportSheetsCmd(a *app, month *string) *cobra.Command {
	return &cobra.Command{
		Use:   "sheets",
		Short: "Publish the financial report to the configured Google spreadsheet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.cfg.GoogleSpreadsheetID == "" {
				return fmt.Errorf("GOOGLE_SPREADSHEET_ID is not configured")
			}
			txs, err := a.transactions(cmd)
			if err != nil {
				return err
			}
			report, err := export.BuildReport(txs, *month, a.now(), a.formatter())
			if err != nil {
				return err
			}
			client, err := gsheet.New(cmd.Context(), gsheet.Options{
				SpreadsheetID:   a.cfg.GoogleSpreadsheetID,
				SheetName:       a.cfg.GoogleSheetName,
				CredentialsJSON: a.cfg.GoogleServiceAccountJSON,
				CredentialsFile: a.cfg.GoogleServiceAccountFile,
			})
			if err != nil {
				return err
			}
			ref, err := client.Publish(cmd.Context(), report.Rows())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.SuccessStyle.Render(fmt.Sprintf("Published %s report to %s", report.Period, ref)))
			return nil
		},
	}
}

func (a *app) transactions(cmd *cobra.Command) ([]core.Transaction, error) {
	ledger, err := a.openLedger(cmd.Context())
	if err != nil {
		return nil, err
	}
	return ledger.Transactions(cmd.Context())
}

func (a *app) writeFile(cmd *cobra.Command, path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), cli.SuccessStyle.Render(fmt.Sprintf("Wrote %s (%d bytes)", path, len(data))))
	return nil
}
