package cmd

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/simonvc/pocketledger/internal/ledger"
	"github.com/simonvc/pocketledger/internal/service"
	"github.com/spf13/cobra"
)

var walletCmd = &cobra.Command{
	Use:   "wallet",
	Short: "Manage wallets",
}

// wallet create
var (
	walletName     string
	walletType     string
	walletCurrency string
	walletBalance  string
)

var walletCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a wallet",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := apiClient()
		if err != nil {
			return err
		}
		balance := decimal.Zero
		if walletBalance != "" {
			if balance, err = ledger.ParseAmount(walletBalance); err != nil {
				return err
			}
		}
		w, err := c.CreateWallet(cmd.Context(), service.WalletInput{
			Name:           walletName,
			Type:           ledger.WalletType(upper(walletType)),
			Currency:       walletCurrency,
			InitialBalance: balance,
		})
		if err != nil {
			return err
		}
		fmt.Printf("Wallet created: %s (%s) %s %s\n", w.ID, w.Name, w.Type, money(w.Balance, w.Currency))
		return nil
	},
}

var walletListCmd = &cobra.Command{
	Use:   "list",
	Short: "List wallets",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := apiClient()
		if err != nil {
			return err
		}
		wallets, err := c.ListWallets(cmd.Context())
		if err != nil {
			return err
		}
		if len(wallets) == 0 {
			fmt.Println("No wallets found.")
			return nil
		}

		fmt.Printf("%-38s %-24s %-12s %20s\n", "ID", "NAME", "TYPE", "BALANCE")
		fmt.Printf("%-38s %-24s %-12s %20s\n", "----", "----", "----", "-------")
		for _, w := range wallets {
			fmt.Printf("%-38s %-24s %-12s %20s\n", w.ID, truncate(w.Name, 24), w.Type, money(w.Balance, w.Currency))
		}
		return nil
	},
}

var walletGetCmd = &cobra.Command{
	Use:   "get [id]",
	Short: "Show a wallet",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := apiClient()
		if err != nil {
			return err
		}
		w, err := c.GetWallet(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("ID:       %s\n", w.ID)
		fmt.Printf("Name:     %s\n", w.Name)
		fmt.Printf("Type:     %s\n", w.Type)
		fmt.Printf("Balance:  %s\n", money(w.Balance, w.Currency))
		fmt.Printf("Version:  %d\n", w.Version)
		fmt.Printf("Created:  %s\n", w.CreatedAt.Format("2006-01-02 15:04:05"))
		return nil
	},
}

var walletUpdateCmd = &cobra.Command{
	Use:   "update [id]",
	Short: "Rename a wallet or change its type",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := apiClient()
		if err != nil {
			return err
		}
		w, err := c.UpdateWallet(cmd.Context(), args[0], service.WalletUpdate{
			Name: walletName,
			Type: ledger.WalletType(upper(walletType)),
		})
		if err != nil {
			return err
		}
		fmt.Printf("Wallet updated: %s (%s) %s\n", w.ID, w.Name, w.Type)
		return nil
	},
}

var walletDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a wallet with no transactions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := apiClient()
		if err != nil {
			return err
		}
		if err := c.DeleteWallet(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Printf("Wallet deleted: %s\n", args[0])
		return nil
	},
}

func init() {
	walletCreateCmd.Flags().StringVar(&walletName, "name", "", "Wallet name")
	walletCreateCmd.Flags().StringVar(&walletType, "type", "CASH", "CASH, BANK, CREDIT_CARD or SAVINGS")
	walletCreateCmd.Flags().StringVar(&walletCurrency, "currency", "USD", "ISO 4217 currency code")
	walletCreateCmd.Flags().StringVar(&walletBalance, "balance", "0", "Initial balance")
	walletCreateCmd.MarkFlagRequired("name")

	walletUpdateCmd.Flags().StringVar(&walletName, "name", "", "New name")
	walletUpdateCmd.Flags().StringVar(&walletType, "type", "", "New type")

	walletCmd.AddCommand(walletCreateCmd)
	walletCmd.AddCommand(walletListCmd)
	walletCmd.AddCommand(walletGetCmd)
	walletCmd.AddCommand(walletUpdateCmd)
	walletCmd.AddCommand(walletDeleteCmd)
	rootCmd.AddCommand(walletCmd)
}
