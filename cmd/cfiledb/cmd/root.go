/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/cfiledb/cfiledb/pkg/store"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "cfiledb",
	Short: "CFileDB - Columnar Block-File Store",
	Long: `CFileDB stores ordered columns of integers in immutable,
self-describing block files with a positional B-tree index.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		dataDir, _ := cmd.Flags().GetString("data-dir")
		blockSize, _ := cmd.Flags().GetInt("block-size")
		indexFanout, _ := cmd.Flags().GetInt("index-fanout")

		cs, err := store.NewColumnStore(store.ColumnStoreConfig{
			DataDir:     dataDir,
			BlockSize:   blockSize,
			IndexFanout: indexFanout,
		})
		if err != nil {
			return fmt.Errorf("failed to create store: %w", err)
		}
		if err := cs.Open(); err != nil {
			return fmt.Errorf("failed to open store: %w", err)
		}
		// Store in command context
		cmd.SetContext(context.WithValue(cmd.Context(), "store", cs))
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if cs, ok := cmd.Context().Value("store").(*store.ColumnStore); ok {
			return cs.Close()
		}
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	// Global data directory and file layout flags
	rootCmd.PersistentFlags().StringP("data-dir", "d", "./data", "Data directory for the store")
	rootCmd.PersistentFlags().Int("block-size", 256, "Values per data block when writing columns")
	rootCmd.PersistentFlags().Int("index-fanout", 64, "Entries per index block when writing columns")
}

// storeFromContext fetches the column store opened by the root command.
func storeFromContext(cmd *cobra.Command) (*store.ColumnStore, bool) {
	cs, ok := cmd.Context().Value("store").(*store.ColumnStore)
	return cs, ok
}
