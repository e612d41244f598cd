package cmd

import (
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/simonvc/pocketledger/internal/ledger"
	"github.com/simonvc/pocketledger/internal/service"
	"github.com/spf13/cobra"
)

var budgetCmd = &cobra.Command{
	Use:   "budget",
	Short: "Manage budgets",
}

var (
	budgetCategory string
	budgetAmount   string
	budgetStart    string
	budgetEnd      string
)

func parseDate(flag, s string) (civil.Date, error) {
	d, err := civil.ParseDate(s)
	if err != nil {
		return civil.Date{}, fmt.Errorf("invalid --%s %q, want YYYY-MM-DD", flag, s)
	}
	return d, nil
}

var budgetCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a budget for a category over a date window",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := apiClient()
		if err != nil {
			return err
		}
		in := service.BudgetInput{CategoryID: budgetCategory}
		if in.Amount, err = ledger.ParseAmount(budgetAmount); err != nil {
			return err
		}
		if in.StartDate, err = parseDate("start", budgetStart); err != nil {
			return err
		}
		if in.EndDate, err = parseDate("end", budgetEnd); err != nil {
			return err
		}
		b, err := c.CreateBudget(cmd.Context(), in)
		if err != nil {
			return err
		}
		fmt.Printf("Budget created: %s\n", b.ID)
		printBudget(b)
		return nil
	},
}

var budgetUpdateCmd = &cobra.Command{
	Use:   "update [id]",
	Short: "Change a budget's category, amount or window",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := apiClient()
		if err != nil {
			return err
		}
		old, err := c.GetBudget(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		in := service.BudgetInput{
			CategoryID: old.CategoryID,
			Amount:     old.Amount,
			StartDate:  old.StartDate,
			EndDate:    old.EndDate,
		}
		f := cmd.Flags()
		if f.Changed("category") {
			in.CategoryID = budgetCategory
		}
		if f.Changed("amount") {
			if in.Amount, err = ledger.ParseAmount(budgetAmount); err != nil {
				return err
			}
		}
		if f.Changed("start") {
			if in.StartDate, err = parseDate("start", budgetStart); err != nil {
				return err
			}
		}
		if f.Changed("end") {
			if in.EndDate, err = parseDate("end", budgetEnd); err != nil {
				return err
			}
		}
		b, err := c.UpdateBudget(cmd.Context(), args[0], in)
		if err != nil {
			return err
		}
		fmt.Printf("Budget updated: %s\n", b.ID)
		printBudget(b)
		return nil
	},
}

var budgetGetCmd = &cobra.Command{
	Use:   "get [id]",
	Short: "Show a budget",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := apiClient()
		if err != nil {
			return err
		}
		b, err := c.GetBudget(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("ID:        %s\n", b.ID)
		printBudget(b)
		return nil
	},
}

var budgetDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a budget",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := apiClient()
		if err != nil {
			return err
		}
		if err := c.DeleteBudget(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Printf("Budget deleted: %s\n", args[0])
		return nil
	},
}

// budget list
var (
	budgetListActive   bool
	budgetListDate     string
	budgetListCategory string
	budgetListFrom     string
	budgetListTo       string
)

var budgetListCmd = &cobra.Command{
	Use:   "list",
	Short: "List budgets",
	Long: "List budgets. --active limits to budgets whose window contains --date (default today);\n" +
		"--category limits to one category; --from/--to limit to windows overlapping that range.",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := apiClient()
		if err != nil {
			return err
		}

		var budgets []ledger.BudgetStatus
		switch {
		case budgetListActive:
			at := civil.DateOf(time.Now().UTC())
			if budgetListDate != "" {
				if at, err = parseDate("date", budgetListDate); err != nil {
					return err
				}
			}
			budgets, err = c.ListActiveBudgets(cmd.Context(), at)
		case budgetListCategory != "":
			budgets, err = c.ListBudgetsByCategory(cmd.Context(), budgetListCategory)
		case budgetListFrom != "" || budgetListTo != "":
			var from, to civil.Date
			if from, err = parseDate("from", budgetListFrom); err != nil {
				return err
			}
			if to, err = parseDate("to", budgetListTo); err != nil {
				return err
			}
			budgets, err = c.ListBudgetsByDateRange(cmd.Context(), from, to)
		default:
			budgets, err = c.ListBudgets(cmd.Context())
		}
		if err != nil {
			return err
		}
		printBudgetTable(budgets)
		return nil
	},
}

var budgetReconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Recompute every budget's spent amount from its transactions",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := apiClient()
		if err != nil {
			return err
		}
		budgets, err := c.ReconcileBudgets(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("Reconciled %d budget(s).\n", len(budgets))
		printBudgetTable(budgets)
		return nil
	},
}

func printBudget(b *ledger.BudgetStatus) {
	fmt.Printf("Category:  %s\n", b.CategoryID)
	fmt.Printf("Window:    %s .. %s\n", b.StartDate, b.EndDate)
	fmt.Printf("Amount:    %s\n", b.Amount.StringFixed(2))
	fmt.Printf("Spent:     %s (%s%%)\n", b.SpentAmount.StringFixed(2), b.PercentageUsed.StringFixed(2))
	fmt.Printf("Remaining: %s\n", b.Remaining.StringFixed(2))
}

func printBudgetTable(budgets []ledger.BudgetStatus) {
	if len(budgets) == 0 {
		fmt.Println("No budgets found.")
		return
	}
	fmt.Printf("%-38s %-38s %-23s %12s %12s %8s\n", "ID", "CATEGORY", "WINDOW", "AMOUNT", "SPENT", "USED")
	fmt.Printf("%-38s %-38s %-23s %12s %12s %8s\n", "----", "--------", "------", "------", "-----", "----")
	for _, b := range budgets {
		fmt.Printf("%-38s %-38s %-23s %12s %12s %7s%%\n",
			b.ID,
			b.CategoryID,
			b.StartDate.String()+".."+b.EndDate.String(),
			b.Amount.StringFixed(2),
			b.SpentAmount.StringFixed(2),
			b.PercentageUsed.StringFixed(2),
		)
	}
}

func init() {
	for _, c := range []*cobra.Command{budgetCreateCmd, budgetUpdateCmd} {
		c.Flags().StringVar(&budgetCategory, "category", "", "Category ID")
		c.Flags().StringVar(&budgetAmount, "amount", "", "Budget limit")
		c.Flags().StringVar(&budgetStart, "start", "", "First day, YYYY-MM-DD")
		c.Flags().StringVar(&budgetEnd, "end", "", "Last day, YYYY-MM-DD")
	}
	for _, f := range []string{"category", "amount", "start", "end"} {
		budgetCreateCmd.MarkFlagRequired(f)
	}

	budgetListCmd.Flags().BoolVar(&budgetListActive, "active", false, "Only budgets active on --date")
	budgetListCmd.Flags().StringVar(&budgetListDate, "date", "", "Date for --active, YYYY-MM-DD")
	budgetListCmd.Flags().StringVar(&budgetListCategory, "category", "", "Only budgets for this category")
	budgetListCmd.Flags().StringVar(&budgetListFrom, "from", "", "Range start, YYYY-MM-DD")
	budgetListCmd.Flags().StringVar(&budgetListTo, "to", "", "Range end, YYYY-MM-DD")

	budgetCmd.AddCommand(budgetCreateCmd)
	budgetCmd.AddCommand(budgetUpdateCmd)
	budgetCmd.AddCommand(budgetGetCmd)
	budgetCmd.AddCommand(budgetDeleteCmd)
	budgetCmd.AddCommand(budgetListCmd)
	budgetCmd.AddCommand(budgetReconcileCmd)
	rootCmd.AddCommand(budgetCmd)
}
