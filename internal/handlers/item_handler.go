package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"
	"time"

	"etalase/internal/catalog"
	"etalase/internal/middleware"
	"etalase/internal/models"
	"etalase/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/shopspring/decimal"
	"github.com/valyala/fasthttp"
)

// maxImageBytes bounds a single uploaded image.
const maxImageBytes = 10 << 20

// ItemHandler handles HTTP requests for catalog items.
type ItemHandler struct {
	service *services.InventoryService
}

// NewItemHandler creates a new ItemHandler.
func NewItemHandler(service *services.InventoryService) *ItemHandler {
	return &ItemHandler{
		service: service,
	}
}

// RegisterRoutes registers the public catalog routes.
func (h *ItemHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/items", h.HandleListItems)
	router.Get("/items/:id", h.HandleGetItem)
	router.Get("/categories", h.HandleCategories)
}

// RegisterAdminRoutes registers the mutation routes. router is expected to
// be guarded by middleware.AuthRequired.
func (h *ItemHandler) RegisterAdminRoutes(router fiber.Router) {
	itemRoutes := router.Group("/items")
	itemRoutes.Post("/", h.HandleCreateItem)
	itemRoutes.Put("/:id", h.HandleUpdateItem)
	itemRoutes.Delete("/:id", h.HandleDeleteItem)
}

type itemResponse struct {
	ID         uint             `json:"id"`
	Code       string           `json:"code"`
	Name       string           `json:"name"`
	Category   string           `json:"category"`
	Note       string           `json:"note"`
	ImageURL   string           `json:"image_url"`
	Variants   []models.Variant `json:"variants"`
	PriceMin   *decimal.Decimal `json:"price_min,omitempty"`
	PriceMax   *decimal.Decimal `json:"price_max,omitempty"`
	PriceLabel string           `json:"price_label"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

func newItemResponse(it models.Item) itemResponse {
	resp := itemResponse{
		ID:        it.ID,
		Code:      it.Code,
		Name:      it.Name,
		Category:  it.Category,
		Note:      it.Note,
		ImageURL:  it.ImageRef,
		Variants:  it.Variants,
		CreatedAt: it.CreatedAt,
		UpdatedAt: it.UpdatedAt,
	}
	if resp.Variants == nil {
		resp.Variants = []models.Variant{}
	}
	if pr, err := it.PriceRange(); err == nil {
		resp.PriceMin, resp.PriceMax = &pr.Min, &pr.Max
		resp.PriceLabel = pr.String()
	}
	return resp
}

func newItemResponses(items []models.Item) []itemResponse {
	out := make([]itemResponse, len(items))
	for i, it := range items {
		out[i] = newItemResponse(it)
	}
	return out
}

// HandleListItems runs a catalog query: ?category=&q=&sort=newest|price_asc|price_desc
func (h *ItemHandler) HandleListItems(c *fiber.Ctx) error {
	sortKey, err := catalog.ParseSortKey(c.Query("sort"))
	if err != nil {
		return respondError(c, "Invalid sort key", models.NewValidationError("sort", err.Error()))
	}

	items, err := h.service.Browse(c.UserContext(), catalog.Query{
		Category: c.Query("category"),
		Search:   c.Query("q"),
		Sort:     sortKey,
	})
	if err != nil {
		return respondError(c, "Could not retrieve items", err)
	}
	return c.JSON(newItemResponses(items))
}

// HandleGetItem retrieves a single item by its ID.
func (h *ItemHandler) HandleGetItem(c *fiber.Ctx) error {
	id, err := itemID(c)
	if err != nil {
		return respondError(c, "Invalid item ID", err)
	}
	item, err := h.service.GetItem(c.UserContext(), id)
	if err != nil {
		return respondError(c, fmt.Sprintf("Item with ID %d not found", id), err)
	}
	return c.JSON(newItemResponse(*item))
}

// HandleCategories returns the category facet, "All" first.
func (h *ItemHandler) HandleCategories(c *fiber.Ctx) error {
	categories, err := h.service.Categories(c.UserContext())
	if err != nil {
		return respondError(c, "Could not retrieve categories", err)
	}
	return c.JSON(categories)
}

// HandleCreateItem creates an item from a multipart form with a required image.
func (h *ItemHandler) HandleCreateItem(c *fiber.Ctx) error {
	in, err := parseItemForm(c)
	if err != nil {
		return respondError(c, "Invalid request body", err)
	}
	image, err := formImage(c)
	if err != nil {
		return respondError(c, "Invalid image", err)
	}
	if image == nil {
		image = &services.ImageUpload{}
	}

	item, err := h.service.CreateItem(c.UserContext(), in, *image)
	if err != nil {
		return respondError(c, "Could not create item", err)
	}
	logAdminAction(c, "created", item.ID)
	return c.Status(fiber.StatusCreated).JSON(newItemResponse(*item))
}

// HandleUpdateItem replaces an item. The image part is optional.
func (h *ItemHandler) HandleUpdateItem(c *fiber.Ctx) error {
	id, err := itemID(c)
	if err != nil {
		return respondError(c, "Invalid item ID", err)
	}
	in, err := parseItemForm(c)
	if err != nil {
		return respondError(c, "Invalid request body", err)
	}
	image, err := formImage(c)
	if err != nil {
		return respondError(c, "Invalid image", err)
	}

	item, err := h.service.UpdateItem(c.UserContext(), id, in, image)
	if err != nil {
		return respondError(c, fmt.Sprintf("Could not update item %d", id), err)
	}
	logAdminAction(c, "updated", id)
	return c.JSON(newItemResponse(*item))
}

// HandleDeleteItem deletes an item and its image.
func (h *ItemHandler) HandleDeleteItem(c *fiber.Ctx) error {
	id, err := itemID(c)
	if err != nil {
		return respondError(c, "Invalid item ID", err)
	}
	if err := h.service.DeleteItem(c.UserContext(), id); err != nil {
		return respondError(c, fmt.Sprintf("Could not delete item %d", id), err)
	}
	logAdminAction(c, "deleted", id)
	return c.SendStatus(fiber.StatusNoContent)
}

func logAdminAction(c *fiber.Ctx, action string, id uint) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		identity.Username = "unknown"
	}
	log.Printf("Item %d %s by admin %s", id, action, identity.Username)
}

func itemID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, models.NewValidationError("id", "must be a positive integer")
	}
	return uint(id), nil
}

// parseItemForm reads the text fields of a create/update form. variants is
// a JSON array of {range, price, body_long, pant_long}.
// FormValue aliases the pooled request buffer, so every kept string is copied.
func parseItemForm(c *fiber.Ctx) (services.ItemInput, error) {
	in := services.ItemInput{
		Code:     utils.CopyString(c.FormValue("code")),
		Name:     utils.CopyString(c.FormValue("name")),
		Category: utils.CopyString(c.FormValue("category")),
		Note:     utils.CopyString(c.FormValue("note")),
	}
	if raw := c.FormValue("variants"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &in.Variants); err != nil {
			return in, models.NewValidationError("variants", fmt.Sprintf("invalid JSON: %v", err))
		}
	}
	return in, nil
}

// formImage returns nil when the request carries no image part.
func formImage(c *fiber.Ctx) (*services.ImageUpload, error) {
	form, err := c.MultipartForm()
	if errors.Is(err, fasthttp.ErrNoMultipartForm) {
		return nil, nil
	}
	if err != nil {
		return nil, models.NewValidationError("image", fmt.Sprintf("malformed multipart body: %v", err))
	}
	files := form.File["image"]
	if len(files) == 0 {
		return nil, nil
	}
	fh := files[0]
	if fh.Size > maxImageBytes {
		return nil, models.NewValidationError("image", fmt.Sprintf("larger than %d bytes", maxImageBytes))
	}

	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded image: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read uploaded image: %w", err)
	}
	return &services.ImageUpload{Filename: fh.Filename, Data: data}, nil
}
