package tags

import (
	"context"
	"fmt"
	"time"

	"carebaby/internal/shared/constants"
	"carebaby/internal/synonyms"
	"carebaby/pkg/cache"
	"carebaby/pkg/logger"

	"github.com/google/uuid"
)

// ChangeNotifier publishes committed tag set changes
type ChangeNotifier interface {
	PublishTagChange(ctx context.Context, childID string, slugs []string) error
}

type Service interface {
	SetCacheService(cacheService cache.Service, suggestTTL, childTagsTTL time.Duration)
	SetNotificationProducer(notifier ChangeNotifier)

	// Tag browsing
	GetTagBySlug(ctx context.Context, slug string) (*TagResponse, error)
	GetActiveTags(ctx context.Context) ([]TagResponse, error)
	SetTagActive(ctx context.Context, id uuid.UUID, active bool) (*TagResponse, error)

	// Child tag operations
	GetChildTags(ctx context.Context, childID uuid.UUID) ([]TagOut, error)
	ReplaceChildTags(ctx context.Context, childID uuid.UUID, inputs []string) ([]TagOut, error)

	// Suggestions
	SuggestTags(ctx context.Context, query string, limit int) ([]TagOut, error)
}

type service struct {
	repo      Repository
	resolver  *Resolver
	suggester *Suggester
	log       *logger.Logger

	cacheService cache.Service
	suggestTTL   time.Duration
	childTagsTTL time.Duration

	// second child cache delete, after readers that raced the commit have written back
	childCacheRedelete time.Duration

	notifier ChangeNotifier
}

func NewService(repo Repository, dict *synonyms.Dictionary, log *logger.Logger) Service {
	if log == nil {
		log = logger.GetDefault()
	}
	return &service{
		repo:         repo,
		resolver:     NewResolver(dict, log),
		suggester:    NewSuggester(dict),
		log:          log,
		suggestTTL:   constants.TTL_SUGGEST_DEFAULT,
		childTagsTTL: constants.TTL_CHILD_TAGS_DEFAULT,

		childCacheRedelete: constants.CHILD_TAGS_REDELETE_DELAY,
	}
}

// SetCacheService injects the cache service dependency. Zero TTLs keep the defaults.
func (s *service) SetCacheService(cacheService cache.Service, suggestTTL, childTagsTTL time.Duration) {
	s.cacheService = cacheService
	if suggestTTL > 0 {
		s.suggestTTL = suggestTTL
	}
	if childTagsTTL > 0 {
		s.childTagsTTL = childTagsTTL
	}
}

// SetNotificationProducer injects the tag change publisher
func (s *service) SetNotificationProducer(notifier ChangeNotifier) {
	s.notifier = notifier
}

// Cache helper methods

func (s *service) getCache(ctx context.Context, key string, dest interface{}) error {
	if s.cacheService == nil {
		return cache.ErrCacheMiss
	}
	return s.cacheService.Get(ctx, key, dest)
}

func (s *service) setCache(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if s.cacheService == nil {
		return
	}
	if err := s.cacheService.Set(ctx, key, value, ttl); err != nil {
		s.log.WithError(err).WarnContext(ctx, "failed to cache value", "key", key)
	}
}

func (s *service) invalidateTagCaches(ctx context.Context) {
	if s.cacheService == nil {
		return
	}
	if err := s.cacheService.DeletePattern(ctx, constants.PATTERN_INVALIDATE_TAGS_SUGGEST); err != nil {
		s.log.WithError(err).WarnContext(ctx, "failed to invalidate suggestion cache")
	}
	if err := s.cacheService.Delete(ctx, constants.CACHE_KEY_TAGS_ACTIVE); err != nil {
		s.log.WithError(err).WarnContext(ctx, "failed to invalidate active tags cache")
	}
}

// Tag browsing

func (s *service) GetTagBySlug(ctx context.Context, slug string) (*TagResponse, error) {
	tag, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !tag.IsActive {
		return nil, ErrTagNotFound
	}

	resp := tag.ToResponse()
	return &resp, nil
}

func (s *service) GetActiveTags(ctx context.Context) ([]TagResponse, error) {
	var cached []TagResponse
	if err := s.getCache(ctx, constants.CACHE_KEY_TAGS_ACTIVE, &cached); err == nil {
		return cached, nil
	}

	tags, err := s.repo.GetActive(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]TagResponse, 0, len(tags))
	for _, tag := range tags {
		responses = append(responses, tag.ToResponse())
	}

	s.setCache(ctx, constants.CACHE_KEY_TAGS_ACTIVE, responses, s.suggestTTL)
	return responses, nil
}

func (s *service) SetTagActive(ctx context.Context, id uuid.UUID, active bool) (*TagResponse, error) {
	tag, err := s.repo.SetActive(ctx, id, active)
	if err != nil {
		return nil, err
	}

	s.invalidateTagCaches(ctx)

	resp := tag.ToResponse()
	return &resp, nil
}

// Child tag operations

func (s *service) GetChildTags(ctx context.Context, childID uuid.UUID) ([]TagOut, error) {
	cacheKey := constants.BuildChildTagsCacheKey(childID.String())

	var cached []TagOut
	if err := s.getCache(ctx, cacheKey, &cached); err == nil {
		return cached, nil
	}

	tags, err := s.repo.GetTagsByChildID(ctx, childID)
	if err != nil {
		return nil, err
	}

	out := toOuts(tags)
	s.setCache(ctx, cacheKey, out, s.childTagsTTL)
	return out, nil
}

// ReplaceChildTags resolves inputs and swaps the child's tag set in one transaction.
// On any error nothing is changed.
func (s *service) ReplaceChildTags(ctx context.Context, childID uuid.UUID, inputs []string) ([]TagOut, error) {
	var resolved []Tag
	hasCustom := false

	err := s.repo.Transaction(ctx, func(tx Repository) error {
		tags, err := s.resolver.ResolveTags(ctx, tx, inputs, true)
		if err != nil {
			return err
		}

		ids := make([]uuid.UUID, 0, len(tags))
		for _, tag := range tags {
			ids = append(ids, tag.ID)
			if IsCustomSlug(tag.Slug) {
				hasCustom = true
			}
		}

		if err := tx.DeleteChildTags(ctx, childID); err != nil {
			return err
		}
		if err := tx.InsertChildTags(ctx, childID, ids); err != nil {
			return err
		}

		resolved = tags
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("replace tags for child %s: %w", childID, err)
	}

	out := toOuts(resolved)
	slugs := make([]string, 0, len(out))
	for _, t := range out {
		slugs = append(slugs, t.Slug)
	}
	s.log.LogTagsReplaced(ctx, childID.String(), len(inputs), slugs)

	s.afterReplace(ctx, childID, slugs, hasCustom)
	return out, nil
}

// afterReplace runs the best-effort side effects of a committed replace
func (s *service) afterReplace(ctx context.Context, childID uuid.UUID, slugs []string, hasCustom bool) {
	if s.cacheService != nil {
		key := constants.BuildChildTagsCacheKey(childID.String())
		if err := s.cacheService.Delete(ctx, key); err != nil {
			s.log.WithError(err).WarnContext(ctx, "failed to invalidate child tags cache", "child_id", childID)
		}
		s.scheduleRedelete(key)
		if hasCustom {
			s.invalidateTagCaches(ctx)
		}
	}

	if s.notifier != nil {
		if err := s.notifier.PublishTagChange(ctx, childID.String(), slugs); err != nil {
			s.log.WithError(err).WarnContext(ctx, "failed to publish tag change", "child_id", childID)
		}
	}
}

// scheduleRedelete drops key again once in-flight GetChildTags calls that read
// the pre-commit rows have had time to write them back
func (s *service) scheduleRedelete(key string) {
	if s.childCacheRedelete <= 0 {
		return
	}
	cacheService := s.cacheService
	time.AfterFunc(s.childCacheRedelete, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := cacheService.Delete(ctx, key); err != nil {
			s.log.WithError(err).WarnContext(ctx, "failed to re-invalidate child tags cache", "key", key)
		}
	})
}

// Suggestions

func (s *service) SuggestTags(ctx context.Context, query string, limit int) ([]TagOut, error) {
	start := time.Now()

	q, err := NormalizeQuery(query)
	if err != nil {
		return nil, err
	}
	limit = ClampLimit(limit)

	if s.cacheService == nil {
		results, err := s.suggester.Suggest(ctx, s.repo, q, limit)
		if err != nil {
			return nil, err
		}
		s.log.LogSuggest(ctx, q, limit, len(results), time.Since(start), false)
		return results, nil
	}

	fetch := func() (interface{}, error) {
		return s.suggester.Suggest(ctx, s.repo, q, limit)
	}

	var results []TagOut
	hit, err := s.cacheService.GetOrSet(ctx, constants.BuildSuggestCacheKey(q, limit), s.suggestTTL, fetch, &results)
	if err != nil {
		return nil, fmt.Errorf("suggest tags: %w", err)
	}

	s.log.LogSuggest(ctx, q, limit, len(results), time.Since(start), hit)
	return results, nil
}

func toOuts(tags []Tag) []TagOut {
	out := make([]TagOut, 0, len(tags))
	for i := range tags {
		out = append(out, tags[i].ToOut())
	}
	return out
}
