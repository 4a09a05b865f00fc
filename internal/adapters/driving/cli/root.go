// Package cli provides the budget-mcp command line interface.
//
// It is the composition root: commands load configuration, build the stores,
// services and adapters, and run them.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/budget-mcp/internal/logger"
)

// version is set at build time via Execute.
var version = "dev"

// Global flags.
var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "budget-mcp",
	Short: "MCP server for YNAB budgets",
	Long: `budget-mcp connects AI assistants to a YNAB budget over the Model Context
Protocol. It signs in with OAuth, then answers filtered queries about budgets,
accounts, categories, payees and transactions while staying inside the API
rate limit.

Configuration is read from ~/.budget-mcp/config.toml, a .env file in the
working directory and YNAB_* environment variables.

Examples:
  # Write client credentials to the config file
  budget-mcp config init

  # Sign in from the terminal
  budget-mcp auth login

  # Run as a stdio MCP server
  budget-mcp serve`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		if verbose {
			logger.SetVerbose(true)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&configPath, "config", "", "config file (default ~/.budget-mcp/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(
		&verbose, "verbose", "v", false, "enable debug logging on stderr")
}

// Execute runs the root command with the given build version.
func Execute(ctx context.Context, buildVersion string) error {
	if buildVersion != "" {
		version = buildVersion
	}
	return rootCmd.ExecuteContext(ctx)
}
