package tags

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	// Transaction runs fn against a repository bound to one transaction.
	// Calling it on a repository that is already inside a transaction opens a savepoint.
	Transaction(ctx context.Context, fn func(tx Repository) error) error

	// Tag lookups
	GetByID(ctx context.Context, id uuid.UUID) (*Tag, error)
	GetBySlug(ctx context.Context, slug string) (*Tag, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]Tag, error)
	GetActiveBySlugs(ctx context.Context, slugs []string) ([]Tag, error)
	SearchActiveByLabel(ctx context.Context, needle string, limit int) ([]Tag, error)
	GetActive(ctx context.Context) ([]Tag, error)
	Count(ctx context.Context) (int64, error)

	// Tag writes
	Create(ctx context.Context, tag *Tag) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) (*Tag, error)
	UpsertSeed(ctx context.Context, tag *Tag) error

	// Child-Tag relationship operations
	GetTagsByChildID(ctx context.Context, childID uuid.UUID) ([]Tag, error)
	DeleteChildTags(ctx context.Context, childID uuid.UUID) error
	InsertChildTags(ctx context.Context, childID uuid.UUID, tagIDs []uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Transaction(ctx context.Context, fn func(tx Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&repository{db: tx})
	})
}

// Tag lookups

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Tag, error) {
	var tag Tag
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&tag).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTagNotFound
		}
		return nil, fmt.Errorf("get tag %s: %w", id, err)
	}
	return &tag, nil
}

// GetBySlug returns the tag with this slug whether or not it is active
func (r *repository) GetBySlug(ctx context.Context, slug string) (*Tag, error) {
	var tag Tag
	err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&tag).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTagNotFound
		}
		return nil, fmt.Errorf("get tag by slug %q: %w", slug, err)
	}
	return &tag, nil
}

func (r *repository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]Tag, error) {
	var tags []Tag
	if len(ids) == 0 {
		return tags, nil
	}

	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&tags).Error; err != nil {
		return nil, fmt.Errorf("get tags by ids: %w", err)
	}
	return tags, nil
}

func (r *repository) GetActiveBySlugs(ctx context.Context, slugs []string) ([]Tag, error) {
	var tags []Tag
	if len(slugs) == 0 {
		return tags, nil
	}

	err := r.db.WithContext(ctx).
		Where("slug IN ? AND is_active = ?", slugs, true).
		Order("slug ASC").
		Find(&tags).Error
	if err != nil {
		return nil, fmt.Errorf("get active tags by slugs: %w", err)
	}
	return tags, nil
}

// SearchActiveByLabel returns up to limit active tags whose lower-cased label contains needle
func (r *repository) SearchActiveByLabel(ctx context.Context, needle string, limit int) ([]Tag, error) {
	var tags []Tag
	pattern := "%" + escapeLike(strings.ToLower(needle)) + "%"

	err := r.db.WithContext(ctx).
		Where("is_active = ? AND LOWER(label) LIKE ?", true, pattern).
		Order("slug ASC").
		Limit(limit).
		Find(&tags).Error
	if err != nil {
		return nil, fmt.Errorf("search tags by label: %w", err)
	}
	return tags, nil
}

func (r *repository) GetActive(ctx context.Context) ([]Tag, error) {
	var tags []Tag
	err := r.db.WithContext(ctx).Where("is_active = ?", true).Order("label ASC").Find(&tags).Error
	if err != nil {
		return nil, fmt.Errorf("get active tags: %w", err)
	}
	return tags, nil
}

func (r *repository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&Tag{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count tags: %w", err)
	}
	return count, nil
}

// Tag writes

// Create inserts a tag. A taken slug yields ErrDuplicateSlug.
func (r *repository) Create(ctx context.Context, tag *Tag) error {
	if err := r.db.WithContext(ctx).Create(tag).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", ErrDuplicateSlug, tag.Slug)
		}
		return fmt.Errorf("create tag %q: %w", tag.Slug, err)
	}
	return nil
}

func (r *repository) SetActive(ctx context.Context, id uuid.UUID, active bool) (*Tag, error) {
	result := r.db.WithContext(ctx).Model(&Tag{}).Where("id = ?", id).Update("is_active", active)
	if result.Error != nil {
		return nil, fmt.Errorf("set tag %s active: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrTagNotFound
	}
	return r.GetByID(ctx, id)
}

// UpsertSeed inserts a taxonomy tag or refreshes label and category of the existing slug,
// re-activating it.
func (r *repository) UpsertSeed(ctx context.Context, tag *Tag) error {
	tag.IsActive = true
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "slug"}},
		DoUpdates: clause.AssignmentColumns([]string{"label", "category", "is_active", "updated_at"}),
	}).Create(tag).Error
	if err != nil {
		return fmt.Errorf("upsert tag %q: %w", tag.Slug, err)
	}
	return nil
}

// Child-Tag relationship operations

// GetTagsByChildID returns a child's tags in the order they were set
func (r *repository) GetTagsByChildID(ctx context.Context, childID uuid.UUID) ([]Tag, error) {
	var tags []Tag

	err := r.db.WithContext(ctx).Table("tags").
		Select("tags.*").
		Joins("JOIN child_tags ON tags.id = child_tags.tag_id").
		Where("child_tags.child_id = ?", childID).
		Order("child_tags.position ASC").
		Find(&tags).Error
	if err != nil {
		return nil, fmt.Errorf("get tags for child %s: %w", childID, err)
	}
	return tags, nil
}

func (r *repository) DeleteChildTags(ctx context.Context, childID uuid.UUID) error {
	err := r.db.WithContext(ctx).Where("child_id = ?", childID).Delete(&ChildTag{}).Error
	if err != nil {
		return fmt.Errorf("delete tags for child %s: %w", childID, err)
	}
	return nil
}

func (r *repository) InsertChildTags(ctx context.Context, childID uuid.UUID, tagIDs []uuid.UUID) error {
	if len(tagIDs) == 0 {
		return nil
	}

	rows := make([]ChildTag, 0, len(tagIDs))
	for i, tagID := range tagIDs {
		rows = append(rows, ChildTag{
			ChildID:  childID,
			TagID:    tagID,
			Position: i,
		})
	}

	if err := r.db.WithContext(ctx).Create(&rows).Error; err != nil {
		return fmt.Errorf("insert tags for child %s: %w", childID, err)
	}
	return nil
}
