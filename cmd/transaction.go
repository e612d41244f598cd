package cmd

import (
	"fmt"
	"time"

	"github.com/simonvc/pocketledger/internal/client"
	"github.com/simonvc/pocketledger/internal/ledger"
	"github.com/simonvc/pocketledger/internal/service"
	"github.com/spf13/cobra"
)

var transactionCmd = &cobra.Command{
	Use:     "transaction",
	Aliases: []string{"txn"},
	Short:   "Manage transactions",
}

var (
	txnType        string
	txnAmount      string
	txnWallet      string
	txnToWallet    string
	txnCategory    string
	txnDate        string
	txnDescription string
)

func addTxnFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&txnType, "type", "", "INCOME, EXPENSE or TRANSFER")
	cmd.Flags().StringVar(&txnAmount, "amount", "", "Amount, greater than zero")
	cmd.Flags().StringVar(&txnWallet, "wallet", "", "Source wallet ID")
	cmd.Flags().StringVar(&txnToWallet, "to-wallet", "", "Target wallet ID (transfers only)")
	cmd.Flags().StringVar(&txnCategory, "category", "", "Category ID")
	cmd.Flags().StringVar(&txnDate, "date", "", "Date as YYYY-MM-DD or RFC3339 (default now)")
	cmd.Flags().StringVar(&txnDescription, "description", "", "Description")
}

// applyTxnFlags overlays the flags the user set onto in.
func applyTxnFlags(cmd *cobra.Command, in *service.TransactionInput) error {
	f := cmd.Flags()
	if f.Changed("type") {
		in.Type = ledger.TransactionType(upper(txnType))
	}
	if f.Changed("amount") {
		amt, err := ledger.ParseAmount(txnAmount)
		if err != nil {
			return err
		}
		in.Amount = amt
	}
	if f.Changed("wallet") {
		in.WalletID = txnWallet
	}
	if f.Changed("to-wallet") {
		in.ToWalletID = txnToWallet
	}
	if f.Changed("category") {
		in.CategoryID = txnCategory
	}
	if f.Changed("date") {
		at, err := parseWhen(txnDate)
		if err != nil {
			return err
		}
		in.Date = at
	}
	if f.Changed("description") {
		in.Description = txnDescription
	}
	if in.Type == ledger.Transfer {
		in.CategoryID = ""
	} else {
		in.ToWalletID = ""
	}
	return nil
}

var transactionCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Record a transaction",
	Long: "Record income, an expense, or a transfer between two of your wallets.\n" +
		"Expenses count toward any budget for their category whose window contains the date.",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := apiClient()
		if err != nil {
			return err
		}
		in := service.TransactionInput{Date: time.Now().UTC()}
		if err := applyTxnFlags(cmd, &in); err != nil {
			return err
		}
		created, err := c.CreateTransaction(cmd.Context(), in)
		if err != nil {
			return err
		}
		fmt.Printf("Transaction created: %s\n", created.ID)
		printTransaction(cmd, c, created)
		return nil
	},
}

var transactionUpdateCmd = &cobra.Command{
	Use:   "update [id]",
	Short: "Change a transaction; balances and budgets are adjusted",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := apiClient()
		if err != nil {
			return err
		}
		old, err := c.GetTransaction(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		in := service.TransactionInput{
			Amount:      old.Amount,
			Type:        old.Type,
			Description: old.Description,
			Date:        old.Date,
			WalletID:    old.WalletID,
			ToWalletID:  old.ToWalletID,
			CategoryID:  old.CategoryID,
		}
		if err := applyTxnFlags(cmd, &in); err != nil {
			return err
		}
		updated, err := c.UpdateTransaction(cmd.Context(), args[0], in)
		if err != nil {
			return err
		}
		fmt.Printf("Transaction updated: %s\n", updated.ID)
		printTransaction(cmd, c, updated)
		return nil
	},
}

var transactionDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a transaction and reverse its effect",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := apiClient()
		if err != nil {
			return err
		}
		if err := c.DeleteTransaction(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Printf("Transaction deleted: %s\n", args[0])
		return nil
	},
}

// transaction list
var (
	txnListWallet string
	txnListStart  string
	txnListEnd    string
)

var transactionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List a wallet's transactions",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := apiClient()
		if err != nil {
			return err
		}

		var txns []ledger.Transaction
		if txnListStart != "" || txnListEnd != "" {
			start, err := parseWhen(txnListStart)
			if err != nil {
				return err
			}
			end, err := parseWhen(txnListEnd)
			if err != nil {
				return err
			}
			txns, err = c.ListWalletTransactionsBetween(cmd.Context(), txnListWallet, start, end)
			if err != nil {
				return err
			}
		} else if txns, err = c.ListWalletTransactions(cmd.Context(), txnListWallet); err != nil {
			return err
		}

		if len(txns) == 0 {
			fmt.Println("No transactions found.")
			return nil
		}

		fmt.Printf("%-38s %-17s %-9s %14s %s\n", "ID", "DATE", "TYPE", "AMOUNT", "DESCRIPTION")
		fmt.Printf("%-38s %-17s %-9s %14s %s\n", "----", "----", "----", "------", "-----------")
		for _, t := range txns {
			fmt.Printf("%-38s %-17s %-9s %14s %s\n",
				t.ID,
				t.Date.Format("2006-01-02 15:04"),
				t.Type,
				signedAmount(t, txnListWallet),
				truncate(t.Description, 40),
			)
		}
		return nil
	},
}

// signedAmount shows the transaction's effect on walletID.
func signedAmount(t ledger.Transaction, walletID string) string {
	for _, leg := range t.Legs() {
		if leg.WalletID == walletID {
			return leg.Delta.StringFixed(2)
		}
	}
	return t.Amount.StringFixed(2)
}

var transactionGetCmd = &cobra.Command{
	Use:   "get [id]",
	Short: "Get transaction details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := apiClient()
		if err != nil {
			return err
		}
		txn, err := c.GetTransaction(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("ID:          %s\n", txn.ID)
		printTransaction(cmd, c, txn)
		fmt.Printf("Created:     %s\n", txn.CreatedAt.Format("2006-01-02 15:04:05"))
		return nil
	},
}

func printTransaction(cmd *cobra.Command, c *client.Client, txn *ledger.Transaction) {
	currency := ""
	if w, err := c.GetWallet(cmd.Context(), txn.WalletID); err == nil {
		currency = w.Currency
	}
	fmt.Printf("Type:        %s\n", txn.Type)
	fmt.Printf("Amount:      %s\n", money(txn.Amount, currency))
	fmt.Printf("Date:        %s\n", txn.Date.Format("2006-01-02 15:04:05"))
	fmt.Printf("Description: %s\n", txn.Description)
	fmt.Printf("Legs:\n")
	for _, leg := range txn.Legs() {
		fmt.Printf("  %-38s %14s\n", leg.WalletID, leg.Delta.StringFixed(2))
	}
	if txn.CategoryID != "" {
		fmt.Printf("Category:    %s\n", txn.CategoryID)
	}
}

func init() {
	addTxnFlags(transactionCreateCmd)
	transactionCreateCmd.MarkFlagRequired("type")
	transactionCreateCmd.MarkFlagRequired("amount")
	transactionCreateCmd.MarkFlagRequired("wallet")

	addTxnFlags(transactionUpdateCmd)

	transactionListCmd.Flags().StringVar(&txnListWallet, "wallet", "", "Wallet ID")
	transactionListCmd.Flags().StringVar(&txnListStart, "start", "", "Inclusive start, YYYY-MM-DD or RFC3339")
	transactionListCmd.Flags().StringVar(&txnListEnd, "end", "", "Inclusive end, YYYY-MM-DD or RFC3339")
	transactionListCmd.MarkFlagRequired("wallet")

	transactionCmd.AddCommand(transactionCreateCmd)
	transactionCmd.AddCommand(transactionUpdateCmd)
	transactionCmd.AddCommand(transactionDeleteCmd)
	transactionCmd.AddCommand(transactionListCmd)
	transactionCmd.AddCommand(transactionGetCmd)

	rootCmd.AddCommand(transactionCmd)
}
