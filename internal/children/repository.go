package children

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, child *Child) error
	GetByID(ctx context.Context, id uuid.UUID) (*Child, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, child *Child) error {
	if err := r.db.WithContext(ctx).Create(child).Error; err != nil {
		return fmt.Errorf("create child: %w", err)
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Child, error) {
	var child Child
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&child).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrChildNotFound
		}
		return nil, fmt.Errorf("get child %s: %w", id, err)
	}
	return &child, nil
}
