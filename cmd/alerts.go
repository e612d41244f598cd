package cmd

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/simonvc/pocketledger/internal/ledger"
	"github.com/spf13/cobra"
)

var alertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "Stream budget warnings and overruns as they happen",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := apiClient()
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		fmt.Println("Watching budget alerts, Ctrl-C to stop.")
		return c.WatchAlerts(ctx, func(sig ledger.BudgetSignal) {
			fmt.Printf("%s  %-8s budget %s  spent %s of %s\n",
				sig.At.Local().Format("2006-01-02 15:04:05"),
				sig.Kind,
				sig.Budget.ID,
				sig.Spent.StringFixed(2),
				sig.Limit.StringFixed(2),
			)
		})
	},
}

func init() {
	rootCmd.AddCommand(alertsCmd)
}
