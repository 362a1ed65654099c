/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cfiledb/cfiledb/pkg/api"
	"github.com/cfiledb/cfiledb/pkg/config"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start the CFileDB REST API server with API key authentication.

Settings come from flags, or from a YAML config file created with
'cfiledb init'. Flags override config file values.

Examples:
  cfiledb serve --api-key=mysecretkey --port=8080
  cfiledb serve --config=~/.config/cfiledb/config.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		port, _ := cmd.Flags().GetInt("port")
		bind, _ := cmd.Flags().GetString("bind")
		apiKey, _ := cmd.Flags().GetString("api-key")
		dataDir, _ := cmd.Flags().GetString("data-dir")
		configPath, _ := cmd.Flags().GetString("config")

		if configPath != "" {
			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if !cmd.Flags().Changed("port") {
				port = cfg.Port
			}
			if !cmd.Flags().Changed("bind") {
				bind = cfg.Bind
			}
			if apiKey == "" {
				apiKey = cfg.Security.APIKey
			}
			if !cmd.Flags().Changed("data-dir") {
				dataDir = cfg.DataDir
			}
		}

		if apiKey == "" || apiKey == "auto" {
			return fmt.Errorf("--api-key is required (or run 'cfiledb init' first)")
		}

		cs, ok := storeFromContext(cmd)
		if !ok {
			return fmt.Errorf("store not found in context")
		}

		serverConfig := api.ServerConfig{
			Port:    port,
			Bind:    bind,
			APIKey:  apiKey,
			DataDir: dataDir,
		}

		cmd.Printf("Starting CFileDB API server on %s:%d\n", bind, port)
		return api.StartServer(cs, serverConfig)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", 8080, "Port to listen on")
	serveCmd.Flags().String("bind", "127.0.0.1", "Address to bind to")
	serveCmd.Flags().String("api-key", "", "API key for client authentication")
	serveCmd.Flags().String("config", "", "Path to a YAML config file")
}
