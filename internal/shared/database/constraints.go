package database

import (
	"gorm.io/gorm"
)

// constraintStatements are idempotent; Postgres has no ADD CONSTRAINT IF NOT EXISTS,
// so foreign keys are guarded with a catalog lookup.
var constraintStatements = []string{
	// Child tag rows go away with their child
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'fk_child_tags_child') THEN
			ALTER TABLE child_tags
			ADD CONSTRAINT fk_child_tags_child
			FOREIGN KEY (child_id) REFERENCES children (id) ON DELETE CASCADE;
		END IF;
	END $$;`,

	// Tags are soft-disabled, never deleted while referenced
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'fk_child_tags_tag') THEN
			ALTER TABLE child_tags
			ADD CONSTRAINT fk_child_tags_tag
			FOREIGN KEY (tag_id) REFERENCES tags (id) ON DELETE RESTRICT;
		END IF;
	END $$;`,

	// Label substring scans for suggestions
	`CREATE INDEX IF NOT EXISTS idx_tags_lower_label ON tags (lower(label));`,

	`CREATE INDEX IF NOT EXISTS idx_child_tags_child_position ON child_tags (child_id, position);`,
}

// MigrateConstraints adds foreign keys and indexes AutoMigrate does not create
func MigrateConstraints(db *gorm.DB) error {
	for _, stmt := range constraintStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}
