package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/cfiledb/cfiledb/pkg/cfile"

	"github.com/spf13/cobra"
)

// inspectCmd represents the inspect command
var inspectCmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "Inspect a raw column file",
	Long: `Inspect a column file directly, bypassing the store catalog.
Prints the header and footer metadata, and optionally dumps every value.

Examples:
  cfiledb inspect ./data/columns/2a5k... .cfile
  cfiledb inspect column.cfile --values`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		dumpValues, _ := cmd.Flags().GetBool("values")

		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open file: %w", err)
		}
		defer f.Close()

		info, err := f.Stat()
		if err != nil {
			return fmt.Errorf("failed to stat file: %w", err)
		}

		reader := cfile.NewReader(f, uint64(info.Size()))
		if err := reader.Init(); err != nil {
			return fmt.Errorf("failed to read file metadata: %w", err)
		}

		header := reader.Header()
		footer := reader.Footer()
		cmd.Printf("file:        %s\n", path)
		cmd.Printf("size:        %d bytes\n", reader.FileSize())
		cmd.Printf("column:      %s\n", header.ColumnName)
		cmd.Printf("value type:  %s\n", header.ValueType)
		cmd.Printf("encoding:    %s\n", header.Encoding)
		cmd.Printf("values:      %d\n", footer.ValueCount)
		for _, btree := range footer.BTrees {
			cmd.Printf("index:       %s root at offset=%d size=%d\n",
				btree.Identifier, btree.Root.Offset, btree.Root.Size)
		}

		if !dumpValues || footer.ValueCount == 0 {
			return nil
		}

		iter, err := reader.NewPositionalIterator()
		if err != nil {
			return fmt.Errorf("failed to open iterator: %w", err)
		}
		if err := iter.SeekToOrdinal(0); err != nil {
			return fmt.Errorf("failed to seek to first value: %w", err)
		}
		for {
			cmd.Printf("%d: %d\n", iter.GetCurrentOrdinal(), iter.GetCurrentValue())
			if err := iter.Next(); err != nil {
				if errors.Is(err, cfile.ErrNotFound) {
					break
				}
				return fmt.Errorf("failed to advance iterator: %w", err)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().Bool("values", false, "Dump every value in the file")
}
