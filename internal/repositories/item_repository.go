package repositories

import (
	"context"

	"etalase/internal/models"
)

// ItemRepository defines the interface for inventory item data access.
// Create and Update persist the item row and its variants as one unit.
type ItemRepository interface {
	// GetAll returns every item, newest first. A non-empty category keeps
	// only exact matches.
	GetAll(ctx context.Context, category string) ([]models.Item, error)
	GetByID(ctx context.Context, id uint) (*models.Item, error)
	GetByCode(ctx context.Context, code string) (*models.Item, error)
	DistinctCategories(ctx context.Context) ([]string, error)
	Create(ctx context.Context, item *models.Item) error
	Update(ctx context.Context, item *models.Item) error
	Delete(ctx context.Context, id uint) error
}
