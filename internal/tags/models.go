package tags

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Category groups tags for display and ranking
type Category string

const (
	CategoryTopic      Category = "topic"
	CategoryCondition  Category = "condition"
	CategoryAllergy    Category = "allergy"
	CategoryAge        Category = "age"
	CategoryPreference Category = "preference"
	CategoryCustom     Category = "custom"
)

// Valid reports whether c is one of the known categories
func (c Category) Valid() bool {
	switch c {
	case CategoryTopic, CategoryCondition, CategoryAllergy, CategoryAge, CategoryPreference, CategoryCustom:
		return true
	}
	return false
}

// Tag represents a canonical or custom tag
type Tag struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Slug      string    `json:"slug" gorm:"uniqueIndex;not null;size:120"`
	Label     string    `json:"label" gorm:"not null;size:200"`
	Category  *Category `json:"category" gorm:"size:20"`
	IsActive  bool      `json:"is_active" gorm:"column:is_active;not null;default:true"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// ChildTag links a child to one of its tags. Position keeps the caller's order.
type ChildTag struct {
	ChildID   uuid.UUID `json:"child_id" gorm:"type:uuid;primaryKey"`
	TagID     uuid.UUID `json:"tag_id" gorm:"type:uuid;primaryKey;index"`
	Position  int       `json:"position" gorm:"not null;default:0"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// BeforeCreate assigns the id client-side so inserts need no RETURNING
func (t *Tag) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// ToOut converts a tag to the public {slug,label,category} shape
func (t *Tag) ToOut() TagOut {
	return TagOut{
		Slug:     t.Slug,
		Label:    t.Label,
		Category: t.Category,
	}
}

func (t *Tag) ToResponse() TagResponse {
	return TagResponse{
		ID:        t.ID.String(),
		Slug:      t.Slug,
		Label:     t.Label,
		Category:  t.Category,
		IsActive:  t.IsActive,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

// TableName specifies the table name for GORM
func (Tag) TableName() string {
	return "tags"
}

func (ChildTag) TableName() string {
	return "child_tags"
}
