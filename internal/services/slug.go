package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/harpaljob/harpaljob-api/internal/slugify"
)

// slugTaken builds the allocator's existence check against one table.
// excludeID skips the row being updated so an entity keeps colliding-free
// with everyone but itself.
func slugTaken(ctx context.Context, db *gorm.DB, model any, excludeID uint) slugify.ExistsFunc {
	return func(candidate string) (bool, error) {
		q := db.WithContext(ctx).Model(model).Where("slug = ?", candidate)
		if excludeID != 0 {
			q = q.Where("id <> ?", excludeID)
		}
		var n int64
		if err := q.Count(&n).Error; err != nil {
			return false, err
		}
		return n > 0, nil
	}
}

// createWithSlugRetry inserts the row, and when the insert loses a slug
// race (another process committed the same candidate between our probe and
// the insert), advances the slug once and retries. setSlug mutates the
// entity before each attempt.
func createWithSlugRetry(ctx context.Context, db *gorm.DB, entity any, slug string, setSlug func(string)) error {
	setSlug(slug)
	err := db.WithContext(ctx).Create(entity).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		return err
	}

	setSlug(slugify.Next(slug))
	if retryErr := db.WithContext(ctx).Create(entity).Error; retryErr != nil {
		return fmt.Errorf("retrying after slug conflict: %w", retryErr)
	}
	return nil
}
