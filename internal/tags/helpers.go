package tags

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const customSlugPrefix = "custom_"

// Slugify lower-cases text and keeps only ASCII letters and digits.
// An empty result becomes "x".
func Slugify(text string) string {
	lowered := strings.ToLower(strings.TrimSpace(text))

	var b strings.Builder
	b.Grow(len(lowered))
	for i := 0; i < len(lowered); i++ {
		ch := lowered[i]
		if (ch >= 'a' && ch <= 'z') || (ch >= '0' && ch <= '9') {
			b.WriteByte(ch)
		}
	}
	if b.Len() == 0 {
		return "x"
	}
	return b.String()
}

// CustomSlug returns the slug used for a free-text custom tag
func CustomSlug(text string) string {
	return customSlugPrefix + Slugify(text)
}

// IsCustomSlug reports whether slug was produced by CustomSlug
func IsCustomSlug(slug string) bool {
	return strings.HasPrefix(slug, customSlugPrefix)
}

// NewCustomTag builds an unsaved custom tag for trimmed free text
func NewCustomTag(text string) *Tag {
	label := strings.TrimSpace(text)
	return &Tag{
		Slug:     CustomSlug(label),
		Label:    label,
		IsActive: true,
	}
}

// escapeLike escapes LIKE wildcards so user text matches literally
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// isUniqueViolation detects unique constraint errors whether or not gorm translated them
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
