package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan <column> <start> <end>",
	Short: "Scan a range of ordinals",
	Long: `Scan a half-open ordinal range [start, end) of a column and print
one value per line.

Example:
  cfiledb scan temps 0 100`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		start, err := strconv.ParseUint(args[1], 10, 32)
		if err != nil {
			return fmt.Errorf("invalid start %q: %w", args[1], err)
		}
		end, err := strconv.ParseUint(args[2], 10, 32)
		if err != nil {
			return fmt.Errorf("invalid end %q: %w", args[2], err)
		}

		cs, ok := storeFromContext(cmd)
		if !ok {
			return fmt.Errorf("store not found in context")
		}

		values, err := cs.Scan(name, uint32(start), uint32(end))
		if err != nil {
			return fmt.Errorf("failed to scan column: %w", err)
		}

		for i, v := range values {
			cmd.Printf("%d: %d\n", uint32(start)+uint32(i), v)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(scanCmd)
}
