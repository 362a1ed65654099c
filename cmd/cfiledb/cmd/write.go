package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

// writeCmd represents the write command
var writeCmd = &cobra.Command{
	Use:   "write <column> [values...]",
	Short: "Write a column of values",
	Long: `Write a column of unsigned integer values into the CFileDB store.
Values are given as arguments or loaded from a file with --from-file
(one value per line, commas also accepted). Writing a column that
already exists replaces it.

Examples:
  cfiledb write temps 10 20 30 40
  cfiledb write temps --from-file=values.txt`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		raw := args[1:]

		fromFile, _ := cmd.Flags().GetString("from-file")
		if fromFile != "" {
			data, err := os.ReadFile(fromFile)
			if err != nil {
				return fmt.Errorf("failed to read values file: %w", err)
			}
			raw = append(raw, splitValues(string(data))...)
		}

		values, err := parseValues(raw)
		if err != nil {
			return err
		}

		cs, ok := storeFromContext(cmd)
		if !ok {
			return fmt.Errorf("store not found in context")
		}

		if err := cs.PutColumn(name, values); err != nil {
			return fmt.Errorf("failed to write column: %w", err)
		}

		cmd.Printf("Wrote column '%s' with %d values\n", name, len(values))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(writeCmd)
	writeCmd.Flags().String("from-file", "", "File with one value per line")
}

// splitValues breaks file contents into tokens on newlines and commas.
func splitValues(data string) []string {
	fields := strings.FieldsFunc(data, func(r rune) bool {
		return r == '\n' || r == '\r' || r == ',' || r == ' ' || r == '\t'
	})
	return fields
}

func parseValues(raw []string) ([]uint32, error) {
	values := make([]uint32, 0, len(raw))
	for _, tok := range raw {
		v, err := strconv.ParseUint(tok, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid value %q: %w", tok, err)
		}
		values = append(values, uint32(v))
	}
	return values, nil
}
