// tagctl is the operator CLI for the tag service: taxonomy seeding,
// synonym checks and development tokens.
package main

import (
	"fmt"
	"os"

	"carebaby/internal/shared/config"
	"carebaby/pkg/logger"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "tagctl",
		Short: "Manage the tag taxonomy",
		Long: `Operator commands for the child tag service.

Commands:
  seed            - Upsert the canonical tag taxonomy
  check-synonyms  - Print sample canonicalizations from the synonym dictionary
  token           - Mint a development bearer token`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			_ = godotenv.Load()
		},
	}

	root.AddCommand(newSeedCmd())
	root.AddCommand(newCheckSynonymsCmd())
	root.AddCommand(newTokenCmd())
	return root
}

func loadConfig() (*config.Config, *logger.Logger) {
	cfg := config.Load()
	log := logger.NewWithWriter(os.Stderr, cfg.LogLevel)
	return cfg, log
}
