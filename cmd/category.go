package cmd

import (
	"fmt"

	"github.com/simonvc/pocketledger/internal/ledger"
	"github.com/simonvc/pocketledger/internal/service"
	"github.com/spf13/cobra"
)

var categoryCmd = &cobra.Command{
	Use:     "category",
	Aliases: []string{"cat"},
	Short:   "Manage categories",
}

var (
	catName   string
	catType   string
	catIcon   string
	catColor  string
	catGlobal bool
)

var categoryCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a category",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := apiClient()
		if err != nil {
			return err
		}
		created, err := c.CreateCategory(cmd.Context(), service.CategoryInput{
			Name:   catName,
			Type:   ledger.CategoryType(upper(catType)),
			Icon:   catIcon,
			Color:  catColor,
			Global: catGlobal,
		})
		if err != nil {
			return err
		}
		fmt.Printf("Category created: %s (%s) %s\n", created.ID, created.Name, created.Type)
		return nil
	},
}

var categoryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List categories visible to the acting user",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := apiClient()
		if err != nil {
			return err
		}
		cats, err := c.ListCategories(cmd.Context())
		if err != nil {
			return err
		}
		if len(cats) == 0 {
			fmt.Println("No categories found.")
			return nil
		}

		fmt.Printf("%-38s %-24s %-8s %s\n", "ID", "NAME", "TYPE", "SCOPE")
		fmt.Printf("%-38s %-24s %-8s %s\n", "----", "----", "----", "-----")
		for _, cat := range cats {
			scope := "own"
			if cat.IsGlobal() {
				scope = "global"
			}
			fmt.Printf("%-38s %-24s %-8s %s\n", cat.ID, truncate(cat.Name, 24), cat.Type, scope)
		}
		return nil
	},
}

var categoryUpdateCmd = &cobra.Command{
	Use:   "update [id]",
	Short: "Update one of your categories",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := apiClient()
		if err != nil {
			return err
		}
		updated, err := c.UpdateCategory(cmd.Context(), args[0], service.CategoryInput{
			Name:  catName,
			Type:  ledger.CategoryType(upper(catType)),
			Icon:  catIcon,
			Color: catColor,
		})
		if err != nil {
			return err
		}
		fmt.Printf("Category updated: %s (%s) %s\n", updated.ID, updated.Name, updated.Type)
		return nil
	},
}

var categoryDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete an unused category",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := apiClient()
		if err != nil {
			return err
		}
		if err := c.DeleteCategory(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Printf("Category deleted: %s\n", args[0])
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{categoryCreateCmd, categoryUpdateCmd} {
		c.Flags().StringVar(&catName, "name", "", "Category name")
		c.Flags().StringVar(&catType, "type", "", "INCOME or EXPENSE")
		c.Flags().StringVar(&catIcon, "icon", "", "Icon name")
		c.Flags().StringVar(&catColor, "color", "", "Display color")
	}
	categoryCreateCmd.Flags().BoolVar(&catGlobal, "global", false, "Share with every user")
	categoryCreateCmd.MarkFlagRequired("name")
	categoryCreateCmd.MarkFlagRequired("type")

	categoryCmd.AddCommand(categoryCreateCmd)
	categoryCmd.AddCommand(categoryListCmd)
	categoryCmd.AddCommand(categoryUpdateCmd)
	categoryCmd.AddCommand(categoryDeleteCmd)
	rootCmd.AddCommand(categoryCmd)
}
