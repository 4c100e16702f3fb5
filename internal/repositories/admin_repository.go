package repositories

import (
	"context"

	"etalase/internal/models"
)

// AdminRepository defines the interface for admin account data access.
type AdminRepository interface {
	Create(ctx context.Context, admin *models.Admin) error
	GetByUsername(ctx context.Context, username string) (*models.Admin, error)
	GetByID(ctx context.Context, id string) (*models.Admin, error)
}
