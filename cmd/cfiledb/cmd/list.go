package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored columns",
	Long: `List all columns in the store with their row counts.

Example:
  cfiledb list`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cs, ok := storeFromContext(cmd)
		if !ok {
			return fmt.Errorf("store not found in context")
		}

		names, err := cs.ListColumns()
		if err != nil {
			return fmt.Errorf("failed to list columns: %w", err)
		}

		for _, name := range names {
			info, err := cs.ColumnInfo(name)
			if err != nil {
				return fmt.Errorf("failed to describe column %s: %w", name, err)
			}
			cmd.Printf("%s\t%d rows\t%s\n", info.Name, info.Rows, info.File)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
