package tags

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"carebaby/internal/synonyms"
)

const (
	MinQueryLength      = 2
	MaxQueryLength      = 40
	DefaultSuggestLimit = 8
	MaxSuggestLimit     = 20

	// upper bound on label matches pulled from the store per query
	labelScanLimit = 200
)

// match tiers, best first
const (
	tierLabelPrefix = iota
	tierSynonymPrefix
	tierLabelContains
	tierSynonymContains
	tierOther
)

var categoryOrder = map[Category]int{
	CategoryTopic:      0,
	CategoryCondition:  1,
	CategoryAllergy:    2,
	CategoryAge:        3,
	CategoryPreference: 4,
	CategoryCustom:     5,
}

const unknownCategoryOrder = 9

// Suggester ranks active tags for a partial query. It never writes.
type Suggester struct {
	dict *synonyms.Dictionary
}

func NewSuggester(dict *synonyms.Dictionary) *Suggester {
	return &Suggester{dict: dict}
}

// NormalizeQuery normalizes q and checks its length bounds
func NormalizeQuery(q string) (string, error) {
	norm := synonyms.Normalize(q)
	n := utf8.RuneCountInString(norm)
	if n < MinQueryLength || n > MaxQueryLength {
		return "", ErrInvalidQuery
	}
	return norm, nil
}

// ClampLimit bounds limit to [1, MaxSuggestLimit]
func ClampLimit(limit int) int {
	if limit < 1 {
		return 1
	}
	if limit > MaxSuggestLimit {
		return MaxSuggestLimit
	}
	return limit
}

type rankedTag struct {
	tag      Tag
	tier     int
	category int
	length   int
}

// Suggest returns at most limit tags matching query by label or synonym, best match first
func (s *Suggester) Suggest(ctx context.Context, store Repository, query string, limit int) ([]TagOut, error) {
	q, err := NormalizeQuery(query)
	if err != nil {
		return nil, err
	}
	limit = ClampLimit(limit)

	candidates, err := s.gather(ctx, store, q)
	if err != nil {
		return nil, err
	}

	ranked := make([]rankedTag, 0, len(candidates))
	for _, tag := range candidates {
		ranked = append(ranked, rankedTag{
			tag:      tag,
			tier:     s.tier(tag, q),
			category: categoryRank(tag.Category),
			length:   utf8.RuneCountInString(tag.Label),
		})
	}

	sort.Slice(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.tier != b.tier {
			return a.tier < b.tier
		}
		if a.category != b.category {
			return a.category < b.category
		}
		if a.length != b.length {
			return a.length < b.length
		}
		return a.tag.Slug < b.tag.Slug
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	out := make([]TagOut, 0, len(ranked))
	for _, r := range ranked {
		out = append(out, r.tag.ToOut())
	}
	return out, nil
}

// gather collects label matches first, then active tags reachable through a synonym phrase
func (s *Suggester) gather(ctx context.Context, store Repository, q string) ([]Tag, error) {
	byLabel, err := store.SearchActiveByLabel(ctx, q, labelScanLimit)
	if err != nil {
		return nil, fmt.Errorf("suggest %q: %w", q, err)
	}

	seen := make(map[string]struct{}, len(byLabel))
	candidates := make([]Tag, 0, len(byLabel))
	for _, tag := range byLabel {
		if _, dup := seen[tag.Slug]; dup {
			continue
		}
		seen[tag.Slug] = struct{}{}
		candidates = append(candidates, tag)
	}

	var synonymSlugs []string
	wanted := make(map[string]struct{})
	for _, entry := range s.dict.Entries() {
		if !strings.Contains(entry.Phrase, q) {
			continue
		}
		if _, dup := seen[entry.Slug]; dup {
			continue
		}
		if _, dup := wanted[entry.Slug]; dup {
			continue
		}
		wanted[entry.Slug] = struct{}{}
		synonymSlugs = append(synonymSlugs, entry.Slug)
	}
	if len(synonymSlugs) == 0 {
		return candidates, nil
	}

	bySynonym, err := store.GetActiveBySlugs(ctx, synonymSlugs)
	if err != nil {
		return nil, fmt.Errorf("suggest %q: %w", q, err)
	}
	for _, tag := range bySynonym {
		if _, dup := seen[tag.Slug]; dup {
			continue
		}
		seen[tag.Slug] = struct{}{}
		candidates = append(candidates, tag)
	}
	return candidates, nil
}

func (s *Suggester) tier(tag Tag, q string) int {
	label := synonyms.Normalize(tag.Label)
	if strings.HasPrefix(label, q) {
		return tierLabelPrefix
	}

	phrases := s.dict.PhrasesFor(tag.Slug)
	for _, p := range phrases {
		if strings.HasPrefix(p, q) {
			return tierSynonymPrefix
		}
	}
	if strings.Contains(label, q) {
		return tierLabelContains
	}
	for _, p := range phrases {
		if strings.Contains(p, q) {
			return tierSynonymContains
		}
	}
	return tierOther
}

func categoryRank(c *Category) int {
	if c == nil {
		return unknownCategoryOrder
	}
	if rank, ok := categoryOrder[*c]; ok {
		return rank
	}
	return unknownCategoryOrder
}
