package tags

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"carebaby/internal/synonyms"
	"carebaby/pkg/logger"

	"github.com/google/uuid"
)

// Resolver maps free-text tag input to canonical or custom tags
type Resolver struct {
	dict *synonyms.Dictionary
	log  *logger.Logger
}

func NewResolver(dict *synonyms.Dictionary, log *logger.Logger) *Resolver {
	if log == nil {
		log = logger.GetDefault()
	}
	return &Resolver{dict: dict, log: log}
}

// Resolve returns the ids of the tags inputs resolve to, deduplicated by slug
// in first-occurrence order. Inputs that resolve to nothing are dropped.
func (r *Resolver) Resolve(ctx context.Context, store Repository, inputs []string, allowCustom bool) ([]uuid.UUID, error) {
	resolved, err := r.ResolveTags(ctx, store, inputs, allowCustom)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(resolved))
	for _, tag := range resolved {
		ids = append(ids, tag.ID)
	}
	return ids, nil
}

// ResolveTags is Resolve returning the full tag rows
func (r *Resolver) ResolveTags(ctx context.Context, store Repository, inputs []string, allowCustom bool) ([]Tag, error) {
	result := make([]Tag, 0, len(inputs))
	seen := make(map[string]struct{}, len(inputs))

	for _, raw := range inputs {
		text := strings.TrimSpace(raw)
		if text == "" {
			continue
		}

		tag, err := r.resolveOne(ctx, store, text, allowCustom)
		if err != nil {
			return nil, err
		}
		if tag == nil {
			continue
		}

		if _, dup := seen[tag.Slug]; dup {
			continue
		}
		seen[tag.Slug] = struct{}{}
		result = append(result, *tag)
	}

	return result, nil
}

// resolveOne returns nil, nil for text that resolves to nothing
func (r *Resolver) resolveOne(ctx context.Context, store Repository, text string, allowCustom bool) (*Tag, error) {
	slug, ok := r.dict.Canonicalize(text)
	if !ok {
		// text typed as a bare slug
		if candidate := Slugify(text); candidate == text {
			slug, ok = candidate, true
		}
	}

	if ok {
		tag, err := store.GetBySlug(ctx, slug)
		switch {
		case err == nil && tag.IsActive:
			return tag, nil
		case err != nil && !errors.Is(err, ErrTagNotFound):
			return nil, fmt.Errorf("resolve %q: %w", text, err)
		}
	}

	if !allowCustom {
		return nil, nil
	}
	return r.findOrCreateCustom(ctx, store, text)
}

// findOrCreateCustom looks up the custom tag for text and creates it when absent.
// The insert runs in its own savepoint; if a concurrent writer took the slug first,
// the winner's row is returned.
func (r *Resolver) findOrCreateCustom(ctx context.Context, store Repository, text string) (*Tag, error) {
	candidate := NewCustomTag(text)

	existing, err := store.GetBySlug(ctx, candidate.Slug)
	switch {
	case err == nil:
		if !existing.IsActive {
			return nil, nil
		}
		return existing, nil
	case !errors.Is(err, ErrTagNotFound):
		return nil, fmt.Errorf("resolve custom %q: %w", text, err)
	}

	err = store.Transaction(ctx, func(tx Repository) error {
		return tx.Create(ctx, candidate)
	})
	if err == nil {
		r.log.LogCustomTagCreated(ctx, candidate.Slug, candidate.Label)
		return candidate, nil
	}
	if !errors.Is(err, ErrDuplicateSlug) {
		return nil, fmt.Errorf("create custom tag %q: %w", candidate.Slug, err)
	}

	winner, err := store.GetBySlug(ctx, candidate.Slug)
	if err != nil {
		return nil, fmt.Errorf("reload custom tag %q: %w", candidate.Slug, err)
	}
	if !winner.IsActive {
		return nil, nil
	}
	return winner, nil
}
