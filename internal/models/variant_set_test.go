package models_test

import (
	"testing"

	"etalase/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func variant(size string, price int64) models.Variant {
	return models.Variant{Range: size, Price: decimal.NewFromInt(price)}
}

func TestVariantSet_PriceRange(t *testing.T) {
	set := models.VariantSet{variant("M", 650), variant("S", 500), variant("XL", 800)}

	r, err := set.PriceRange()
	require.NoError(t, err)
	assert.True(t, r.Min.Equal(decimal.NewFromInt(500)))
	assert.True(t, r.Max.Equal(decimal.NewFromInt(800)))
	assert.True(t, r.Min.LessThanOrEqual(r.Max))
	assert.False(t, r.Single())
	assert.Equal(t, "500 - 800", r.String())
}

func TestVariantSet_PriceRangeCollapses(t *testing.T) {
	set := models.VariantSet{variant("22-26", 450), variant("27-30", 450)}

	r, err := set.PriceRange()
	require.NoError(t, err)
	assert.True(t, r.Single())
	assert.Equal(t, "450", r.String())
}

func TestVariantSet_PriceRangeEmpty(t *testing.T) {
	_, err := models.VariantSet{}.PriceRange()
	assert.ErrorIs(t, err, models.ErrNoVariants)

	_, ok := models.VariantSet(nil).MinPrice()
	assert.False(t, ok)
}

func TestItem_PriceRange(t *testing.T) {
	item := models.Item{Code: "A1", Variants: []models.Variant{variant("M", 120), variant("L", 90)}}

	r, err := item.PriceRange()
	require.NoError(t, err)
	assert.Equal(t, "90 - 120", r.String())
}

func TestValidationError_Message(t *testing.T) {
	err := &models.ValidationError{Fields: map[string]string{"name": "is required", "code": "is required"}}
	assert.Equal(t, "validation failed: code: is required; name: is required", err.Error())
}
