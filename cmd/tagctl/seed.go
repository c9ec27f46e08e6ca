package main

import (
	"context"
	"fmt"
	"time"

	"carebaby/internal/shared/database"
	"carebaby/internal/tags"

	"github.com/spf13/cobra"
)

func newSeedCmd() *cobra.Command {
	var (
		path    string
		dryRun  bool
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Upsert the canonical tag taxonomy",
		Long: `Upsert every tag of the taxonomy by slug. Existing rows get the new label and
category and are re-activated. Running it twice is safe.

Without --file the embedded taxonomy is used (or TAXONOMY_PATH when set).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log := loadConfig()
			if path == "" {
				path = cfg.Taxonomy.TagsPath
			}

			entries, err := tags.LoadTaxonomy(path)
			if err != nil {
				return err
			}
			if dryRun {
				for _, e := range entries {
					fmt.Fprintf(cmd.OutOrStdout(), "%-22s %-12s %s\n", e.Slug, e.Category, e.Label)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d tags (dry run)\n", len(entries))
				return nil
			}

			cfg.Redis.Enabled = false
			db, err := database.InitDB(cfg, log)
			if err != nil {
				return err
			}
			defer db.Close()

			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()

			repo := tags.NewRepository(db.PostgreSQL)
			n, err := tags.Seed(ctx, repo, entries)
			if err != nil {
				return fmt.Errorf("seed taxonomy: %w", err)
			}
			total, err := repo.Count(ctx)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d tags (%d in store)\n", n, total)
			return nil
		},
	}

	cmd.Flags().StringVarP(&path, "file", "f", "", "taxonomy JSON file")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "validate and print the taxonomy without writing")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "overall timeout")
	return cmd
}
