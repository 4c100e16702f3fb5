package repositories

import (
	"context"
	"errors"
	"fmt"

	"etalase/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMAdminRepository is a GORM implementation of AdminRepository.
type GORMAdminRepository struct {
	db *gorm.DB
}

// NewGORMAdminRepository creates a new instance of GORMAdminRepository.
func NewGORMAdminRepository(db *gorm.DB) *GORMAdminRepository {
	return &GORMAdminRepository{
		db: db,
	}
}

// Create creates a new admin in the database.
func (r *GORMAdminRepository) Create(ctx context.Context, admin *models.Admin) error {
	if admin.ID == "" {
		admin.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(admin).Error; err != nil {
		return fmt.Errorf("failed to create admin: %w", err)
	}
	return nil
}

// GetByUsername retrieves an admin by username.
func (r *GORMAdminRepository) GetByUsername(ctx context.Context, username string) (*models.Admin, error) {
	var admin models.Admin
	if err := r.db.WithContext(ctx).First(&admin, "username = ?", username).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("admin with username %s: %w", username, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get admin by username %s: %w", username, err)
	}
	return &admin, nil
}

// GetByID retrieves an admin by ID.
func (r *GORMAdminRepository) GetByID(ctx context.Context, id string) (*models.Admin, error) {
	var admin models.Admin
	if err := r.db.WithContext(ctx).First(&admin, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("admin with ID %s: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get admin by ID %s: %w", id, err)
	}
	return &admin, nil
}
