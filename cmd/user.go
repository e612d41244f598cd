package cmd

import (
	"fmt"

	"github.com/simonvc/pocketledger/internal/client"
	"github.com/spf13/cobra"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage users",
}

var userCreateCmd = &cobra.Command{
	Use:   "create [username]",
	Short: "Register a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := client.New(cfg.Server.URL, "")
		u, err := c.CreateUser(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("User created: %s (%s)\n", u.ID, u.Username)
		fmt.Printf("Act as this user with --user %s or POCKETLEDGER_USER=%s\n", u.ID, u.ID)
		return nil
	},
}

var userMeCmd = &cobra.Command{
	Use:   "me",
	Short: "Show the acting user",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := apiClient()
		if err != nil {
			return err
		}
		u, err := c.Me(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("ID:       %s\n", u.ID)
		fmt.Printf("Username: %s\n", u.Username)
		fmt.Printf("Created:  %s\n", u.CreatedAt.Format("2006-01-02 15:04:05"))
		return nil
	},
}

func init() {
	userCmd.AddCommand(userCreateCmd)
	userCmd.AddCommand(userMeCmd)
	rootCmd.AddCommand(userCmd)
}
