// Command taskboard runs the task board API server.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath string
	version    = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "taskboard",
	Short: "Kanban task board API server",
	Long: `taskboard serves projects, workflow columns, tasks, categories, tags
and users over a JSON HTTP API. Running it without a subcommand starts the server.`,
	Version:      version,
	SilenceUsage: true,
	RunE:         runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Start the HTTP server.

Configuration is read from defaults, then the optional YAML file given by
--config, then TASKBOARD_* environment variables (a .env file is honored).

Examples:
  taskboard serve --config taskboard.yaml
  TASKBOARD_STORE_DRIVER=sqlite TASKBOARD_STORE_DSN=board.db taskboard`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}
