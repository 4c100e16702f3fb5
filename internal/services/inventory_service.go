package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"etalase/internal/catalog"
	"etalase/internal/models"
	"etalase/internal/repositories"

	"github.com/go-playground/validator/v10"
)

// ImageAssets is the image lifecycle the service depends on.
// *assets.ImageManager satisfies it.
type ImageAssets interface {
	Store(ctx context.Context, data []byte, originalFilename string) (string, error)
	Replace(ctx context.Context, oldRef string, data []byte, originalFilename string) (string, error)
	Delete(ctx context.Context, ref string) error
}

// EventPublisher sends inventory events. *rabbitmq.Client satisfies it.
type EventPublisher interface {
	Publish(exchange, routingKey string, body []byte) error
}

// Routing keys published on the inventory exchange.
const (
	InventoryExchange = "inventory"
	EventItemCreated  = "item.created"
	EventItemUpdated  = "item.updated"
	EventItemDeleted  = "item.deleted"
)

// InventoryService handles business logic for inventory items.
//
// Concurrent updates of the same item are not coordinated: each write
// replaces the whole record, so the last writer wins.
type InventoryService struct {
	repo      repositories.ItemRepository
	images    ImageAssets
	publisher EventPublisher // optional
	validate  *validator.Validate
	threshold float64
}

// NewInventoryService creates a new InventoryService. publisher may be nil.
func NewInventoryService(repo repositories.ItemRepository, images ImageAssets, publisher EventPublisher) *InventoryService {
	return &InventoryService{
		repo:      repo,
		images:    images,
		publisher: publisher,
		validate:  validator.New(),
	}
}

// WithSearchThreshold overrides the fuzzy search threshold used by Browse.
func (s *InventoryService) WithSearchThreshold(threshold float64) *InventoryService {
	s.threshold = threshold
	return s
}

// ListItems returns items newest first. "All" or "" means every category.
func (s *InventoryService) ListItems(ctx context.Context, category string) ([]models.Item, error) {
	if category == catalog.AllCategories {
		category = ""
	}
	return s.repo.GetAll(ctx, category)
}

// Categories returns the facet list: the wildcard followed by every category in use.
func (s *InventoryService) Categories(ctx context.Context) ([]string, error) {
	categories, err := s.repo.DistinctCategories(ctx)
	if err != nil {
		return nil, err
	}
	return append([]string{catalog.AllCategories}, categories...), nil
}

// Browse fetches every item and runs the catalog query over it.
func (s *InventoryService) Browse(ctx context.Context, q catalog.Query) ([]models.Item, error) {
	items, err := s.repo.GetAll(ctx, "")
	if err != nil {
		return nil, err
	}
	if q.Threshold <= 0 {
		q.Threshold = s.threshold
	}
	return catalog.Apply(items, q), nil
}

// GetItem retrieves a single item by its ID.
func (s *InventoryService) GetItem(ctx context.Context, id uint) (*models.Item, error) {
	return s.repo.GetByID(ctx, id)
}

// CreateItem validates the input, stores the image and inserts the item.
// If the insert fails, the stored image is removed before returning.
func (s *InventoryService) CreateItem(ctx context.Context, in ItemInput, image ImageUpload) (*models.Item, error) {
	in = in.normalize()
	if err := validateInput(s.validate, in); err != nil {
		return nil, err
	}
	if len(image.Data) == 0 {
		return nil, models.NewValidationError("image", "image is required")
	}
	if err := s.ensureCodeFree(ctx, in.Code, 0); err != nil {
		return nil, err
	}

	item := &models.Item{
		Code:     in.Code,
		Name:     in.Name,
		Category: in.Category,
		Note:     in.Note,
		Variants: in.toVariants(),
	}
	_, err := s.swapImage(ctx, "", &image, func(ref string) error {
		item.ImageRef = ref
		return s.repo.Create(ctx, item)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create item %s: %w", in.Code, err)
	}

	s.publish(EventItemCreated, item)
	return item, nil
}

// UpdateItem replaces every field and the whole variant set of an item.
// With a new image, the old asset is deleted only after the row is updated.
func (s *InventoryService) UpdateItem(ctx context.Context, id uint, in ItemInput, image *ImageUpload) (*models.Item, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	in = in.normalize()
	if err := validateInput(s.validate, in); err != nil {
		return nil, err
	}
	if image != nil && len(image.Data) == 0 {
		image = nil
	}
	if in.Code != existing.Code {
		if err := s.ensureCodeFree(ctx, in.Code, id); err != nil {
			return nil, err
		}
	}

	item := &models.Item{
		ID:        existing.ID,
		Code:      in.Code,
		Name:      in.Name,
		Category:  in.Category,
		Note:      in.Note,
		Variants:  in.toVariants(),
		ImageRef:  existing.ImageRef,
		CreatedAt: existing.CreatedAt,
	}
	_, err = s.swapImage(ctx, existing.ImageRef, image, func(ref string) error {
		item.ImageRef = ref
		return s.repo.Update(ctx, item)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update item %d: %w", id, err)
	}

	s.publish(EventItemUpdated, item)
	return item, nil
}

// DeleteItem removes the item, then its image. The record removal stands
// even if the image cannot be deleted.
func (s *InventoryService) DeleteItem(ctx context.Context, id uint) error {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.images.Delete(ctx, existing.ImageRef); err != nil {
		log.Printf("Warning: item %d deleted but image %s was not: %v", id, existing.ImageRef, err)
	}

	s.publish(EventItemDeleted, existing)
	return nil
}

func (s *InventoryService) ensureCodeFree(ctx context.Context, code string, self uint) error {
	other, err := s.repo.GetByCode(ctx, code)
	switch {
	case errors.Is(err, models.ErrNotFound):
		return nil
	case err != nil:
		return err
	case other.ID != self:
		return fmt.Errorf("item with code %s: %w", code, models.ErrDuplicateCode)
	}
	return nil
}

// publish is best-effort; failures are logged and never fail the request.
func (s *InventoryService) publish(routingKey string, item *models.Item) {
	if s.publisher == nil {
		return
	}
	body, err := json.Marshal(map[string]interface{}{
		"item_id":   item.ID,
		"code":      item.Code,
		"category":  item.Category,
		"image_ref": item.ImageRef,
		"event":     routingKey,
		"at":        time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		log.Printf("Failed to marshal %s event for item %d: %v", routingKey, item.ID, err)
		return
	}
	if err := s.publisher.Publish(InventoryExchange, routingKey, body); err != nil {
		log.Printf("Warning: Failed to publish %s event for item %d: %v", routingKey, item.ID, err)
	}
}
