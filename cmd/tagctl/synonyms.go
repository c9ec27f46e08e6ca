package main

import (
	"fmt"
	"io"

	"carebaby/internal/synonyms"

	"github.com/spf13/cobra"
)

var defaultSamples = []string{
	"Sleep Training",
	"  NAPS  ",
	"peanut intro",
	"eczema",
	"shots",
	"Unicorn allergy",
}

func newCheckSynonymsCmd() *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "check-synonyms [phrase...]",
		Short: "Print canonical slugs for sample phrases",
		Long: `Load the synonym dictionary and print what each phrase canonicalizes to.
With no arguments a built-in sample set is used. Fails when the dictionary
cannot be loaded.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _ := loadConfig()
			if path == "" {
				path = cfg.Taxonomy.SynonymsPath
			}

			dict, err := synonyms.LoadOrDefault(path)
			if err != nil {
				return err
			}

			samples := args
			if len(samples) == 0 {
				samples = defaultSamples
			}
			printCanonicalizations(cmd.OutOrStdout(), dict, samples)
			return nil
		},
	}

	cmd.Flags().StringVarP(&path, "file", "f", "", "synonym file (.json, .yaml)")
	return cmd
}

func printCanonicalizations(w io.Writer, dict *synonyms.Dictionary, samples []string) {
	fmt.Fprintf(w, "%d synonym entries\n", dict.Len())
	for _, s := range samples {
		slug, ok := dict.Canonicalize(s)
		if !ok {
			slug = "-"
		}
		fmt.Fprintf(w, "%-24q -> %s\n", s, slug)
	}
}
