package repositories

import (
	"context"
	"fmt"
	"sync"
	"time"

	"etalase/internal/models"

	"github.com/google/uuid"
)

// MockAdminRepository is an in-memory implementation of AdminRepository.
type MockAdminRepository struct {
	admins map[string]models.Admin
	mu     sync.RWMutex
}

// NewMockAdminRepository creates a new instance of MockAdminRepository.
func NewMockAdminRepository() *MockAdminRepository {
	return &MockAdminRepository{
		admins: make(map[string]models.Admin),
	}
}

// Create adds a new admin.
func (r *MockAdminRepository) Create(_ context.Context, admin *models.Admin) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, a := range r.admins {
		if a.Username == admin.Username {
			return fmt.Errorf("failed to create admin: username %s already taken", admin.Username)
		}
	}
	if admin.ID == "" {
		admin.ID = uuid.New().String()
	}
	admin.CreatedAt = time.Now()
	admin.UpdatedAt = admin.CreatedAt
	r.admins[admin.ID] = *admin
	return nil
}

// GetByUsername returns an admin by username.
func (r *MockAdminRepository) GetByUsername(_ context.Context, username string) (*models.Admin, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, a := range r.admins {
		if a.Username == username {
			return &a, nil
		}
	}
	return nil, fmt.Errorf("admin with username %s: %w", username, models.ErrNotFound)
}

// GetByID returns an admin by ID.
func (r *MockAdminRepository) GetByID(_ context.Context, id string) (*models.Admin, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.admins[id]
	if !ok {
		return nil, fmt.Errorf("admin with ID %s: %w", id, models.ErrNotFound)
	}
	return &a, nil
}
