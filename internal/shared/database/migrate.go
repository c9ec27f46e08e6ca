package database

import (
	"fmt"

	"carebaby/internal/children"
	"carebaby/internal/tags"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&children.Child{},
		&tags.Tag{},
		&tags.ChildTag{},
	)
	if err != nil {
		return err
	}

	if err := MigrateConstraints(db); err != nil {
		return fmt.Errorf("failed to apply constraints: %w", err)
	}
	return nil
}
