package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"fintrack/internal/cli"
	"fintrack/internal/services"
)

func recurringCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recurring",
		Short: "Manage recurring transactions",
	}

	var id string
	run := &cobra.Command{
		Use:   "run",
		Short: "Generate the transactions of every due recurring entry",
		Long: `Generate the transactions of every due recurring entry, or of a single
entry immediately with --id.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ledger, err := a.openLedger(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if id != "" {
				tx, err := ledger.RunRecurringNow(cmd.Context(), id)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, cli.SuccessStyle.Render(fmt.Sprintf("Created %s %s in %s on %s",
					tx.Type, a.formatter().Format(tx.Amount), tx.Category, tx.Date.Format("2006-01-02"))))
				return nil
			}
			n, err := services.NewRecurringProcessor(ledger).ProcessDue(cmd.Context(), ledger.Now())
			if err != nil {
				return err
			}
			fmt.Fprintln(out, cli.SuccessStyle.Render(fmt.Sprintf("Created %d transactions from recurring entries", n)))
			return nil
		},
	}
	run.Flags().StringVar(&id, "id", "", "run this recurring entry now even if it is not due")

	cmd.AddCommand(run)
	return cmd
}
