package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"etalase/internal/models"

	"gorm.io/gorm"
)

// GORMItemRepository is a GORM implementation of ItemRepository.
type GORMItemRepository struct {
	db *gorm.DB
}

// NewGORMItemRepository creates a new instance of GORMItemRepository.
// The db should be opened with TranslateError so unique violations surface
// as gorm.ErrDuplicatedKey.
func NewGORMItemRepository(db *gorm.DB) *GORMItemRepository {
	return &GORMItemRepository{
		db: db,
	}
}

func withVariants(tx *gorm.DB) *gorm.DB {
	return tx.Preload("Variants", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC, id ASC")
	})
}

// GetAll retrieves items, newest first.
func (r *GORMItemRepository) GetAll(ctx context.Context, category string) ([]models.Item, error) {
	var items []models.Item
	q := withVariants(r.db.WithContext(ctx)).Order("created_at DESC, id DESC")
	if category != "" {
		q = q.Where("category = ?", category)
	}
	if err := q.Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to get items: %w", err)
	}
	return items, nil
}

// GetByID retrieves a single item with its variants.
func (r *GORMItemRepository) GetByID(ctx context.Context, id uint) (*models.Item, error) {
	var item models.Item
	if err := withVariants(r.db.WithContext(ctx)).First(&item, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("item with ID %d: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get item by ID %d: %w", id, err)
	}
	return &item, nil
}

// GetByCode retrieves a single item by its unique code.
func (r *GORMItemRepository) GetByCode(ctx context.Context, code string) (*models.Item, error) {
	var item models.Item
	if err := withVariants(r.db.WithContext(ctx)).First(&item, "code = ?", code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("item with code %s: %w", code, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get item by code %s: %w", code, err)
	}
	return &item, nil
}

// DistinctCategories lists the categories in use, sorted.
func (r *GORMItemRepository) DistinctCategories(ctx context.Context) ([]string, error) {
	var categories []string
	err := r.db.WithContext(ctx).Model(&models.Item{}).
		Distinct("category").
		Order("category ASC").
		Pluck("category", &categories).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get categories: %w", err)
	}
	return categories, nil
}

// Create inserts the item and its variants in one transaction.
func (r *GORMItemRepository) Create(ctx context.Context, item *models.Item) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Variants").Create(item).Error; err != nil {
			return err
		}
		return insertVariants(tx, item)
	})
	if err != nil {
		item.ID = 0
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("item with code %s: %w", item.Code, models.ErrDuplicateCode)
		}
		return fmt.Errorf("failed to create item: %w", err)
	}
	return nil
}

// Update replaces every column and the whole variant set in one transaction.
// CreatedAt is never overwritten.
func (r *GORMItemRepository) Update(ctx context.Context, item *models.Item) error {
	item.UpdatedAt = time.Now()
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Item{ID: item.ID}).
			Select("code", "name", "category", "note", "image_ref", "updated_at").
			Updates(map[string]any{
				"code":       item.Code,
				"name":       item.Name,
				"category":   item.Category,
				"note":       item.Note,
				"image_ref":  item.ImageRef,
				"updated_at": item.UpdatedAt,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.ErrNotFound
		}
		if err := tx.Where("item_id = ?", item.ID).Delete(&models.Variant{}).Error; err != nil {
			return err
		}
		return insertVariants(tx, item)
	})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, models.ErrNotFound):
		return fmt.Errorf("item with ID %d: %w", item.ID, models.ErrNotFound)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("item with code %s: %w", item.Code, models.ErrDuplicateCode)
	}
	return fmt.Errorf("failed to update item %d: %w", item.ID, err)
}

// Delete removes the item and its variants.
func (r *GORMItemRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("item_id = ?", id).Delete(&models.Variant{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Item{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.ErrNotFound
		}
		return nil
	})
	if errors.Is(err, models.ErrNotFound) {
		return fmt.Errorf("item with ID %d: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to delete item %d: %w", id, err)
	}
	return nil
}

func insertVariants(tx *gorm.DB, item *models.Item) error {
	if len(item.Variants) == 0 {
		return nil
	}
	for i := range item.Variants {
		item.Variants[i].ID = 0
		item.Variants[i].ItemID = item.ID
		item.Variants[i].Position = i
	}
	return tx.Create(&item.Variants).Error
}
