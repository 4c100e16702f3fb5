package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Variant is one size/price option of an item.
type Variant struct {
	ID       uint            `json:"-" gorm:"primaryKey"`
	ItemID   uint            `json:"-" gorm:"index;not null"`
	Position int             `json:"-" gorm:"not null;default:0"` // display order
	Range    string          `json:"range" gorm:"type:varchar(50);not null" validate:"required,max=50"`
	Price    decimal.Decimal `json:"price" gorm:"type:numeric(12,2);not null"`
	BodyLong string          `json:"body_long" gorm:"type:varchar(50)" validate:"omitempty,max=50"`
	PantLong string          `json:"pant_long" gorm:"type:varchar(50)" validate:"omitempty,max=50"`
}

// TableName keeps variants in their own table.
func (Variant) TableName() string { return "item_variants" }

// Item is a garment listing in the inventory.
type Item struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Code      string    `json:"code" gorm:"uniqueIndex;type:varchar(64);not null"`
	Name      string    `json:"name" gorm:"type:varchar(200);not null"`
	Category  string    `json:"category" gorm:"index;type:varchar(100);not null"`
	Note      string    `json:"note" gorm:"type:text"`
	Variants  []Variant `json:"variants" gorm:"foreignKey:ItemID;constraint:OnDelete:CASCADE"`
	ImageRef  string    `json:"image_ref" gorm:"type:varchar(500);not null"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime;index"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name.
func (Item) TableName() string { return "items" }

// PriceRange derives the item's price range from its variants.
func (i Item) PriceRange() (PriceRange, error) {
	return VariantSet(i.Variants).PriceRange()
}
