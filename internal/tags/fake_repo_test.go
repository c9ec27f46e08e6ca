package tags

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"testing"
	"time"

	"carebaby/internal/synonyms"
	"carebaby/taxonomy"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// memRepo is an in-memory Repository. Transaction restores a snapshot when fn fails,
// so nested calls behave like savepoints.
type memRepo struct {
	tags      map[string]*Tag // by slug
	childTags map[uuid.UUID][]uuid.UUID

	// failSlug makes GetBySlug fail for that slug
	failSlug   string
	failInsert error
	// raceWinner is committed by a "concurrent writer" the first time its slug is created.
	// Rows in raced survive rollbacks.
	raceWinner *Tag
	raced      map[string]*Tag
}

func newMemRepo() *memRepo {
	return &memRepo{
		tags:      make(map[string]*Tag),
		childTags: make(map[uuid.UUID][]uuid.UUID),
		raced:     make(map[string]*Tag),
	}
}

func (m *memRepo) snapshot() (map[string]*Tag, map[uuid.UUID][]uuid.UUID) {
	tags := make(map[string]*Tag, len(m.tags))
	for slug, tag := range m.tags {
		cp := *tag
		tags[slug] = &cp
	}
	links := make(map[uuid.UUID][]uuid.UUID, len(m.childTags))
	for id, ids := range m.childTags {
		links[id] = append([]uuid.UUID(nil), ids...)
	}
	return tags, links
}

func (m *memRepo) Transaction(ctx context.Context, fn func(tx Repository) error) error {
	tags, links := m.snapshot()
	if err := fn(m); err != nil {
		m.tags, m.childTags = tags, links
		return err
	}
	return nil
}

func (m *memRepo) byID(id uuid.UUID) *Tag {
	for _, tag := range m.tags {
		if tag.ID == id {
			return tag
		}
	}
	return nil
}

func (m *memRepo) GetByID(ctx context.Context, id uuid.UUID) (*Tag, error) {
	tag := m.byID(id)
	if tag == nil {
		return nil, ErrTagNotFound
	}
	cp := *tag
	return &cp, nil
}

func (m *memRepo) GetBySlug(ctx context.Context, slug string) (*Tag, error) {
	if m.failSlug != "" && slug == m.failSlug {
		return nil, fmt.Errorf("get tag by slug %q: connection reset", slug)
	}
	tag, ok := m.tags[slug]
	if !ok {
		if tag, ok = m.raced[slug]; !ok {
			return nil, ErrTagNotFound
		}
	}
	cp := *tag
	return &cp, nil
}

func (m *memRepo) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]Tag, error) {
	var out []Tag
	for _, id := range ids {
		if tag := m.byID(id); tag != nil {
			out = append(out, *tag)
		}
	}
	return out, nil
}

func (m *memRepo) GetActiveBySlugs(ctx context.Context, slugs []string) ([]Tag, error) {
	var out []Tag
	for _, slug := range slugs {
		if tag, ok := m.tags[slug]; ok && tag.IsActive {
			out = append(out, *tag)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	return out, nil
}

func (m *memRepo) SearchActiveByLabel(ctx context.Context, needle string, limit int) ([]Tag, error) {
	var out []Tag
	for _, tag := range m.tags {
		if tag.IsActive && strings.Contains(strings.ToLower(tag.Label), strings.ToLower(needle)) {
			out = append(out, *tag)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memRepo) GetActive(ctx context.Context) ([]Tag, error) {
	var out []Tag
	for _, tag := range m.tags {
		if tag.IsActive {
			out = append(out, *tag)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out, nil
}

func (m *memRepo) Count(ctx context.Context) (int64, error) {
	return int64(len(m.tags)), nil
}

func (m *memRepo) Create(ctx context.Context, tag *Tag) error {
	if m.raceWinner != nil && m.raceWinner.Slug == tag.Slug {
		m.raced[tag.Slug] = m.raceWinner
		m.raceWinner = nil
	}
	_, taken := m.tags[tag.Slug]
	if _, lost := m.raced[tag.Slug]; lost {
		taken = true
	}
	if taken {
		return fmt.Errorf("%w: %s", ErrDuplicateSlug, tag.Slug)
	}
	if tag.ID == uuid.Nil {
		tag.ID = uuid.New()
	}
	now := time.Now()
	tag.CreatedAt, tag.UpdatedAt = now, now
	cp := *tag
	m.tags[tag.Slug] = &cp
	return nil
}

func (m *memRepo) SetActive(ctx context.Context, id uuid.UUID, active bool) (*Tag, error) {
	tag := m.byID(id)
	if tag == nil {
		return nil, ErrTagNotFound
	}
	tag.IsActive = active
	cp := *tag
	return &cp, nil
}

func (m *memRepo) UpsertSeed(ctx context.Context, tag *Tag) error {
	if existing, ok := m.tags[tag.Slug]; ok {
		existing.Label = tag.Label
		existing.Category = tag.Category
		existing.IsActive = true
		return nil
	}
	return m.Create(ctx, tag)
}

func (m *memRepo) GetTagsByChildID(ctx context.Context, childID uuid.UUID) ([]Tag, error) {
	var out []Tag
	for _, id := range m.childTags[childID] {
		if tag := m.byID(id); tag != nil {
			out = append(out, *tag)
		}
	}
	return out, nil
}

func (m *memRepo) DeleteChildTags(ctx context.Context, childID uuid.UUID) error {
	delete(m.childTags, childID)
	return nil
}

func (m *memRepo) InsertChildTags(ctx context.Context, childID uuid.UUID, tagIDs []uuid.UUID) error {
	if m.failInsert != nil {
		return m.failInsert
	}
	if len(tagIDs) == 0 {
		return nil
	}
	m.childTags[childID] = append([]uuid.UUID(nil), tagIDs...)
	return nil
}

// seededRepo returns a memRepo holding the embedded taxonomy
func seededRepo(t *testing.T) *memRepo {
	t.Helper()
	entries, err := ParseTaxonomy(taxonomy.Tags)
	require.NoError(t, err)

	repo := newMemRepo()
	_, err = Seed(context.Background(), repo, entries)
	require.NoError(t, err)
	return repo
}

func testDictionary(t *testing.T) *synonyms.Dictionary {
	t.Helper()
	dict, err := synonyms.Parse(taxonomy.Synonyms, "json")
	require.NoError(t, err)
	return dict
}

func (m *memRepo) mustSlug(t *testing.T, slug string) *Tag {
	t.Helper()
	tag, ok := m.tags[slug]
	require.True(t, ok, "missing tag %s", slug)
	return tag
}

func slugsOf(tags []TagOut) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		out = append(out, tag.Slug)
	}
	return out
}

func categoryPtr(c Category) *Category {
	return &c
}
