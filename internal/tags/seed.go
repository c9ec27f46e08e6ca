package tags

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"carebaby/taxonomy"
)

// TaxonomyEntry is one canonical tag in a seed document
type TaxonomyEntry struct {
	Slug     string   `json:"slug"`
	Label    string   `json:"label"`
	Category Category `json:"category"`
}

// ParseTaxonomy decodes and validates a JSON list of taxonomy entries
func ParseTaxonomy(data []byte) ([]TaxonomyEntry, error) {
	var entries []TaxonomyEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decode taxonomy: %w", err)
	}

	seen := make(map[string]struct{}, len(entries))
	for i, e := range entries {
		slug := strings.TrimSpace(e.Slug)
		switch {
		case slug == "" || slug != strings.ToLower(slug):
			return nil, fmt.Errorf("taxonomy entry %d: invalid slug %q", i, e.Slug)
		case strings.TrimSpace(e.Label) == "":
			return nil, fmt.Errorf("taxonomy entry %q: empty label", slug)
		case e.Category != "" && !e.Category.Valid():
			return nil, fmt.Errorf("taxonomy entry %q: unknown category %q", slug, e.Category)
		}
		if _, dup := seen[slug]; dup {
			return nil, fmt.Errorf("taxonomy entry %q: duplicate slug", slug)
		}
		seen[slug] = struct{}{}
		entries[i].Slug = slug
		entries[i].Label = strings.TrimSpace(e.Label)
	}
	return entries, nil
}

// LoadTaxonomy reads a taxonomy file, or the embedded default when path is empty
func LoadTaxonomy(path string) ([]TaxonomyEntry, error) {
	data := taxonomy.Tags
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read taxonomy %s: %w", path, err)
		}
		data = raw
	}
	return ParseTaxonomy(data)
}

// Seed upserts every entry by slug in one transaction and returns how many were written
func Seed(ctx context.Context, repo Repository, entries []TaxonomyEntry) (int, error) {
	err := repo.Transaction(ctx, func(tx Repository) error {
		for _, e := range entries {
			tag := &Tag{Slug: e.Slug, Label: e.Label, IsActive: true}
			if e.Category != "" {
				category := e.Category
				tag.Category = &category
			}
			if err := tx.UpsertSeed(ctx, tag); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(entries), nil
}
