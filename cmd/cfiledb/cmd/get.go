package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// getCmd represents the get command
var getCmd = &cobra.Command{
	Use:   "get <column> <ordinal>",
	Short: "Get the value at an ordinal",
	Long: `Get the value stored at a row ordinal within a column.

Example:
  cfiledb get temps 42`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		ordinal, err := strconv.ParseUint(args[1], 10, 32)
		if err != nil {
			return fmt.Errorf("invalid ordinal %q: %w", args[1], err)
		}

		cs, ok := storeFromContext(cmd)
		if !ok {
			return fmt.Errorf("store not found in context")
		}

		value, err := cs.GetValue(name, uint32(ordinal))
		if err != nil {
			return fmt.Errorf("failed to get value: %w", err)
		}

		cmd.Printf("%d\n", value)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(getCmd)
}
