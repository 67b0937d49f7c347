package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"fintrack/internal/cli"
	"fintrack/internal/core"
	"fintrack/internal/finance"
	"fintrack/internal/services"
)

func reportCmd(a *app) *cobra.Command {
	var month string
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print totals, category breakdown, budgets and the health score",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ledger, err := a.openLedger(cmd.Context())
			if err != nil {
				return err
			}
			d, err := ledger.Dashboard(cmd.Context(), month)
			if err != nil {
				return err
			}
			writeReport(cmd.OutOrStdout(), d, a.formatter())
			return nil
		},
	}
	cmd.Flags().StringVarP(&month, "month", "m", finance.AllMonths, `month to report (YYYY-MM or "all")`)
	return cmd
}

func writeReport(w io.Writer, d *services.Dashboard, f *core.Formatter) {
	period := "All time"
	if d.Month != finance.AllMonths {
		period = d.Month
	}
	fmt.Fprintln(w, cli.FormatTitle("Financial report: "+period))
	fmt.Fprintln(w, cli.KeyValues(
		[2]string{"Income", f.Format(d.Totals.Income)},
		[2]string{"Expenses", f.Format(d.Totals.Expenses)},
		[2]string{"Net balance", balanceStyle(d.Totals.Balance.IsNegative()).Render(f.Format(d.Totals.Balance))},
		[2]string{"Transactions", fmt.Sprint(d.Totals.Count)},
	))

	if len(d.ExpenseCategories) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, cli.FormatTitle("Spending by category"))
		rows := make([][2]string, 0, len(d.ExpenseCategories))
		for _, c := range d.ExpenseCategories {
			rows = append(rows, [2]string{c.Category, fmt.Sprintf("%s  (%d)", f.Format(c.Amount), c.Count)})
		}
		fmt.Fprintln(w, cli.KeyValues(rows...))
	}

	if len(d.Budgets) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, cli.FormatTitle("Budgets"))
		rows := make([][2]string, 0, len(d.Budgets))
		for _, b := range d.Budgets {
			line := fmt.Sprintf("%s %5.1f%%  %s of %s", meter(b.Percentage), b.Percentage, f.Format(b.Spent), f.Format(b.Amount))
			rows = append(rows, [2]string{b.Category, balanceStyle(b.OverBudget).Render(line)})
		}
		fmt.Fprintln(w, cli.KeyValues(rows...))
	}

	fmt.Fprintln(w)
	h := d.Health
	score := cli.ScoreStyle(h.Score).Render(fmt.Sprintf("%d/100 %s", h.Score, h.Rating()))
	body := []string{
		cli.HeaderStyle.Render("Health score ") + score,
		cli.KeyValues(
			[2]string{"Savings rate", fmt.Sprintf("%.1f%%", h.SavingsRate)},
			[2]string{"Expense ratio", fmt.Sprintf("%.1f%%", h.ExpenseRatio)},
			[2]string{"Emergency fund", fmt.Sprintf("%.1f months", h.EmergencyFundMonths)},
		),
	}
	for _, r := range h.Recommendations {
		body = append(body, cli.InfoStyle.Render("• "+r))
	}
	fmt.Fprintln(w, cli.BoxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, body...)))
}

func balanceStyle(bad bool) lipgloss.Style {
	if bad {
		return cli.ErrorStyle
	}
	return cli.SuccessStyle
}

// meter draws a ten-cell bar for a 0-100 percentage.
func meter(pct float64) string {
	filled := int(pct / 10)
	filled = min(max(filled, 0), 10)
	return strings.Repeat("█", filled) + strings.Repeat("░", 10-filled)
}
