package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	configFile string
	env        string
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "pagelift",
	Short: "pagelift - content optimization scoring engine",
	Long: `pagelift scoring and propagation engine

Converts generator analyses into section ratings bound by the point-budget
invariant, aggregates page scores, and rolls them up into site metrics.

Usage:
  go run ./cmd/pagelift [command]

Examples:
  go run ./cmd/pagelift api
  go run ./cmd/pagelift recompute
  go run ./cmd/pagelift recompute --site site-42
  go run ./cmd/pagelift scheduler
  go run ./cmd/pagelift test-db`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is .env)")
	rootCmd.PersistentFlags().StringVar(&env, "env", "development", "environment (development|staging|production)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
