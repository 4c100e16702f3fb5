package services

import (
	"fmt"
	"strings"

	"etalase/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// VariantInput is one size/price row of an admin submission.
type VariantInput struct {
	Range    string          `json:"range" validate:"required,max=50"`
	Price    decimal.Decimal `json:"price"`
	BodyLong string          `json:"body_long" validate:"omitempty,max=50"`
	PantLong string          `json:"pant_long" validate:"omitempty,max=50"`
}

// ItemInput is the typed form of an admin create/update submission.
type ItemInput struct {
	Code     string         `json:"code" validate:"required,max=64"`
	Name     string         `json:"name" validate:"required,max=200"`
	Category string         `json:"category" validate:"required,max=100,ne=All"`
	Note     string         `json:"note" validate:"omitempty,max=2000"`
	Variants []VariantInput `json:"variants" validate:"required,min=1,dive"`
}

// ImageUpload carries the raw bytes of an uploaded image.
type ImageUpload struct {
	Filename string
	Data     []byte
}

// normalize trims surrounding whitespace from every text field.
func (in ItemInput) normalize() ItemInput {
	out := ItemInput{
		Code:     strings.TrimSpace(in.Code),
		Name:     strings.TrimSpace(in.Name),
		Category: strings.TrimSpace(in.Category),
		Note:     strings.TrimSpace(in.Note),
		Variants: make([]VariantInput, len(in.Variants)),
	}
	for i, v := range in.Variants {
		out.Variants[i] = VariantInput{
			Range:    strings.TrimSpace(v.Range),
			Price:    v.Price,
			BodyLong: strings.TrimSpace(v.BodyLong),
			PantLong: strings.TrimSpace(v.PantLong),
		}
	}
	return out
}

// validateInput returns a *models.ValidationError listing every bad field.
func validateInput(validate *validator.Validate, in ItemInput) error {
	fields := map[string]string{}
	if err := validate.Struct(in); err != nil {
		validationErrors, ok := err.(validator.ValidationErrors)
		if !ok {
			return fmt.Errorf("failed to validate item: %w", err)
		}
		for _, e := range validationErrors {
			fields[fieldKey(e)] = fmt.Sprintf("failed on the '%s' tag", e.Tag())
		}
	}
	for i, v := range in.Variants {
		if v.Price.IsNegative() {
			fields[fmt.Sprintf("variants[%d].price", i)] = "must not be negative"
		}
	}
	if len(fields) > 0 {
		return &models.ValidationError{Fields: fields}
	}
	return nil
}

// fieldKey turns "ItemInput.Variants[0].Range" into "variants[0].range".
func fieldKey(e validator.FieldError) string {
	ns := e.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		ns = ns[i+1:]
	}
	return strings.ToLower(ns)
}

func (in ItemInput) toVariants() []models.Variant {
	variants := make([]models.Variant, len(in.Variants))
	for i, v := range in.Variants {
		variants[i] = models.Variant{
			Position: i,
			Range:    v.Range,
			Price:    v.Price,
			BodyLong: v.BodyLong,
			PantLong: v.PantLong,
		}
	}
	return variants
}
