package constants

import (
	"fmt"
	"time"
)

// Redis cache keys and TTLs.
// Pattern: carebaby:{module}:{operation}:{identifier}:{params?}

const (
	TTL_SUGGEST_DEFAULT       = 5 * time.Minute        // suggestion results; staleness is acceptable
	TTL_CHILD_TAGS_DEFAULT    = 10 * time.Minute       // child tag reads; invalidated on replace
	CHILD_TAGS_REDELETE_DELAY = 500 * time.Millisecond // second invalidation after a replace
)

const (
	CACHE_PREFIX = "carebaby"
)

// ================== TAGS MODULE ==================

const (
	CACHE_KEY_TAGS_SUGGEST = CACHE_PREFIX + ":tags:suggest"   // + :q:X:limit:Y
	CACHE_KEY_TAGS_ACTIVE  = CACHE_PREFIX + ":tags:active"    // all active tags
	CACHE_KEY_CHILD_TAGS   = CACHE_PREFIX + ":children:tags:" // + child-id
)

// Invalidation patterns
const (
	PATTERN_INVALIDATE_TAGS_SUGGEST = CACHE_KEY_TAGS_SUGGEST + ":*"
)

// ================== RATE LIMIT ==================

const (
	RATE_LIMIT_PREFIX = CACHE_PREFIX + ":ratelimit"
)

// BuildSuggestCacheKey builds the cache key for a normalized suggestion query
func BuildSuggestCacheKey(normalizedQuery string, limit int) string {
	return fmt.Sprintf("%s:q:%s:limit:%d", CACHE_KEY_TAGS_SUGGEST, normalizedQuery, limit)
}

// BuildChildTagsCacheKey builds the cache key for a child's tag set
func BuildChildTagsCacheKey(childID string) string {
	return CACHE_KEY_CHILD_TAGS + childID
}

// BuildRateLimitKey builds the sliding window key for a client and route class
func BuildRateLimitKey(clientIP, limitType string) string {
	return fmt.Sprintf("%s:%s:%s", RATE_LIMIT_PREFIX, clientIP, limitType)
}
