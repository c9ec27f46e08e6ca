package tags

import (
	"context"
	"regexp"
	"testing"

	"carebaby/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestResolver(t *testing.T) *Resolver {
	return NewResolver(testDictionary(t), logger.Discard())
}

func TestResolve_SynonymsCollapseToOneTag(t *testing.T) {
	repo := seededRepo(t)
	r := newTestResolver(t)

	ids, err := r.Resolve(context.Background(), repo, []string{"sleep", "Sleep Training", "sleep   training"}, false)
	require.NoError(t, err)

	require.Len(t, ids, 1)
	assert.Equal(t, repo.mustSlug(t, "topic_sleep").ID, ids[0])
}

func TestResolve_KeepsFirstOccurrenceOrder(t *testing.T) {
	repo := seededRepo(t)
	r := newTestResolver(t)

	tags, err := r.ResolveTags(context.Background(), repo, []string{"eczema", "  ", "naps", "dry skin", "sleep"}, false)
	require.NoError(t, err)

	var slugs []string
	for _, tag := range tags {
		slugs = append(slugs, tag.Slug)
	}
	assert.Equal(t, []string{"cond_eczema", "topic_naps", "topic_sleep"}, slugs)
}

func TestResolve_CustomTagIsIdempotent(t *testing.T) {
	repo := seededRepo(t)
	r := newTestResolver(t)
	ctx := context.Background()
	before := len(repo.tags)

	first, err := r.ResolveTags(ctx, repo, []string{"unicorn allergy"}, true)
	require.NoError(t, err)
	second, err := r.ResolveTags(ctx, repo, []string{"  Unicorn Allergy "}, true)
	require.NoError(t, err)

	require.Len(t, first, 1)
	require.Len(t, second, 1)
	assert.Equal(t, first[0].ID, second[0].ID)
	assert.Regexp(t, regexp.MustCompile(`^custom_[a-z0-9]+$`), first[0].Slug)
	assert.Equal(t, "custom_unicornallergy", first[0].Slug)
	assert.Equal(t, "unicorn allergy", first[0].Label)
	assert.Nil(t, first[0].Category)
	assert.Len(t, repo.tags, before+1, "only one custom row is created")
}

func TestResolve_CustomDisallowedDropsInput(t *testing.T) {
	repo := seededRepo(t)
	r := newTestResolver(t)
	before := len(repo.tags)

	ids, err := r.Resolve(context.Background(), repo, []string{"unicorn allergy", "eczema"}, false)
	require.NoError(t, err)

	require.Len(t, ids, 1)
	assert.Equal(t, repo.mustSlug(t, "cond_eczema").ID, ids[0])
	assert.Len(t, repo.tags, before)
}

func TestResolve_BareSlug(t *testing.T) {
	repo := seededRepo(t)
	require.NoError(t, repo.Create(context.Background(), &Tag{Slug: "sunscreen", Label: "Sunscreen", IsActive: true}))
	r := newTestResolver(t)

	tags, err := r.ResolveTags(context.Background(), repo, []string{"sunscreen"}, true)
	require.NoError(t, err)

	require.Len(t, tags, 1)
	assert.Equal(t, "sunscreen", tags[0].Slug)
}

func TestResolve_InactiveTagDoesNotResolve(t *testing.T) {
	repo := seededRepo(t)
	repo.mustSlug(t, "cond_eczema").IsActive = false
	r := newTestResolver(t)

	ids, err := r.Resolve(context.Background(), repo, []string{"eczema"}, false)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestResolve_InactiveCustomTagIsDropped(t *testing.T) {
	repo := seededRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, &Tag{Slug: "custom_teething", Label: "teething", IsActive: false}))
	r := newTestResolver(t)

	ids, err := r.Resolve(ctx, repo, []string{"Teething"}, true)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestResolve_DuplicateRaceReturnsWinner(t *testing.T) {
	repo := seededRepo(t)
	winner := &Tag{ID: uuid.New(), Slug: "custom_unicornallergy", Label: "Unicorn Allergy", IsActive: true}
	repo.raceWinner = winner
	r := newTestResolver(t)

	tags, err := r.ResolveTags(context.Background(), repo, []string{"unicorn allergy"}, true)
	require.NoError(t, err)

	require.Len(t, tags, 1)
	assert.Equal(t, winner.ID, tags[0].ID)
	assert.NotContains(t, repo.tags, "custom_unicornallergy", "losing insert is rolled back")
}

func TestResolve_StoreErrorIsReturned(t *testing.T) {
	repo := seededRepo(t)
	repo.failSlug = "cond_eczema"
	r := newTestResolver(t)

	_, err := r.Resolve(context.Background(), repo, []string{"sleep", "eczema"}, true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestResolve_EmptyInput(t *testing.T) {
	repo := seededRepo(t)
	r := newTestResolver(t)

	ids, err := r.Resolve(context.Background(), repo, nil, true)
	require.NoError(t, err)
	assert.Empty(t, ids)

	ids, err = r.Resolve(context.Background(), repo, []string{"", "   "}, true)
	require.NoError(t, err)
	assert.Empty(t, ids)
}
