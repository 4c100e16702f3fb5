package repositories

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"etalase/internal/models"
)

// MockItemRepository is an in-memory implementation of ItemRepository.
// Each call is atomic under one mutex, mirroring single-row write semantics.
type MockItemRepository struct {
	items  map[uint]models.Item
	nextID uint
	now    func() time.Time
	mu     sync.RWMutex
}

// NewMockItemRepository creates a new instance of MockItemRepository.
func NewMockItemRepository() *MockItemRepository {
	return &MockItemRepository{
		items: make(map[uint]models.Item),
		now:   time.Now,
	}
}

// GetAll returns all items, newest first.
func (r *MockItemRepository) GetAll(_ context.Context, category string) ([]models.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	itemList := make([]models.Item, 0, len(r.items))
	for _, it := range r.items {
		if category != "" && it.Category != category {
			continue
		}
		itemList = append(itemList, cloneItem(it))
	}
	sort.Slice(itemList, func(i, j int) bool {
		if !itemList[i].CreatedAt.Equal(itemList[j].CreatedAt) {
			return itemList[i].CreatedAt.After(itemList[j].CreatedAt)
		}
		return itemList[i].ID > itemList[j].ID
	})
	return itemList, nil
}

// GetByID returns an item by its ID.
func (r *MockItemRepository) GetByID(_ context.Context, id uint) (*models.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	it, ok := r.items[id]
	if !ok {
		return nil, fmt.Errorf("item with ID %d: %w", id, models.ErrNotFound)
	}
	it = cloneItem(it)
	return &it, nil
}

// GetByCode returns an item by its code.
func (r *MockItemRepository) GetByCode(_ context.Context, code string) (*models.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, it := range r.items {
		if it.Code == code {
			it = cloneItem(it)
			return &it, nil
		}
	}
	return nil, fmt.Errorf("item with code %s: %w", code, models.ErrNotFound)
}

// DistinctCategories returns the sorted set of categories in use.
func (r *MockItemRepository) DistinctCategories(_ context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]struct{})
	categories := []string{}
	for _, it := range r.items {
		if _, ok := seen[it.Category]; ok {
			continue
		}
		seen[it.Category] = struct{}{}
		categories = append(categories, it.Category)
	}
	sort.Strings(categories)
	return categories, nil
}

// Create adds a new item, assigning its ID and timestamps.
func (r *MockItemRepository) Create(_ context.Context, item *models.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.codeTaken(item.Code, 0) {
		return fmt.Errorf("item with code %s: %w", item.Code, models.ErrDuplicateCode)
	}
	r.nextID++
	item.ID = r.nextID
	now := r.now()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	item.UpdatedAt = now
	stampVariants(item)
	r.items[item.ID] = cloneItem(*item)
	return nil
}

// Update replaces an existing item wholesale, keeping its CreatedAt.
func (r *MockItemRepository) Update(_ context.Context, item *models.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.items[item.ID]
	if !ok {
		return fmt.Errorf("item with ID %d: %w", item.ID, models.ErrNotFound)
	}
	if r.codeTaken(item.Code, item.ID) {
		return fmt.Errorf("item with code %s: %w", item.Code, models.ErrDuplicateCode)
	}
	item.CreatedAt = existing.CreatedAt
	item.UpdatedAt = r.now()
	stampVariants(item)
	r.items[item.ID] = cloneItem(*item)
	return nil
}

// Delete removes an item by its ID.
func (r *MockItemRepository) Delete(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return fmt.Errorf("item with ID %d: %w", id, models.ErrNotFound)
	}
	delete(r.items, id)
	return nil
}

func (r *MockItemRepository) codeTaken(code string, except uint) bool {
	for id, it := range r.items {
		if id != except && it.Code == code {
			return true
		}
	}
	return false
}

func stampVariants(item *models.Item) {
	for i := range item.Variants {
		item.Variants[i].ItemID = item.ID
		item.Variants[i].Position = i
	}
}

// cloneItem copies the variant slice so callers never share backing arrays
// with the stored record.
func cloneItem(it models.Item) models.Item {
	if it.Variants != nil {
		it.Variants = append([]models.Variant(nil), it.Variants...)
	}
	return it
}
