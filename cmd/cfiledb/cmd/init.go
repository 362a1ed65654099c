/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/cfiledb/cfiledb/pkg/config"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize CFileDB configuration for local development",
	Long: `Initialize a CFileDB configuration file with a generated API key.

This command will:
- Create the configuration directory
- Generate a client API key
- Write the configuration file with secure permissions

Examples:
  cfiledb init
  cfiledb init --config=./cfiledb.yaml --data-dir=./data`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		dataDir, _ := cmd.Flags().GetString("data-dir")
		force, _ := cmd.Flags().GetBool("force")

		if configPath == "" {
			configPath = config.GetDefaultConfigPath()
		}

		if config.ConfigExists(configPath) && !force {
			cmd.Printf("Config already exists at %s. Use --force to overwrite.\n", configPath)
			return nil
		}

		cfg, err := config.BootstrapConfig(configPath, dataDir)
		if err != nil {
			return err
		}

		cmd.Printf("Initialized CFileDB configuration\n")
		cmd.Printf("Config file:    %s\n", configPath)
		cmd.Printf("Data directory: %s\n", cfg.DataDir)
		cmd.Printf("API key:        %s...\n", cfg.Security.APIKey[:8])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().String("config", "", "Path to write the config file")
	initCmd.Flags().Bool("force", false, "Overwrite an existing config file")
}
