package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// deleteCmd represents the delete command
var deleteCmd = &cobra.Command{
	Use:   "delete <column>",
	Short: "Delete a column",
	Long: `Delete a column and its backing file from the store.

Example:
  cfiledb delete temps`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]

		cs, ok := storeFromContext(cmd)
		if !ok {
			return fmt.Errorf("store not found in context")
		}

		if err := cs.DeleteColumn(name); err != nil {
			return fmt.Errorf("failed to delete column: %w", err)
		}

		cmd.Printf("Deleted column '%s'\n", name)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}
