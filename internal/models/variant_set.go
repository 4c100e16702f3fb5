package models

import "github.com/shopspring/decimal"

// VariantSet is the ordered variant list of one item.
type VariantSet []Variant

// PriceRange is the lowest and highest variant price of an item.
type PriceRange struct {
	Min decimal.Decimal `json:"min"`
	Max decimal.Decimal `json:"max"`
}

// Single reports whether the range collapses to one price.
func (r PriceRange) Single() bool {
	return r.Min.Equal(r.Max)
}

// String renders "500" for a single price and "500 - 800" otherwise.
func (r PriceRange) String() string {
	if r.Single() {
		return r.Min.String()
	}
	return r.Min.String() + " - " + r.Max.String()
}

// PriceRange returns ErrNoVariants for an empty set.
func (vs VariantSet) PriceRange() (PriceRange, error) {
	if len(vs) == 0 {
		return PriceRange{}, ErrNoVariants
	}
	r := PriceRange{Min: vs[0].Price, Max: vs[0].Price}
	for _, v := range vs[1:] {
		if v.Price.LessThan(r.Min) {
			r.Min = v.Price
		}
		if v.Price.GreaterThan(r.Max) {
			r.Max = v.Price
		}
	}
	return r, nil
}

// MinPrice is the lowest variant price; ok is false when the set is empty.
func (vs VariantSet) MinPrice() (decimal.Decimal, bool) {
	r, err := vs.PriceRange()
	if err != nil {
		return decimal.Zero, false
	}
	return r.Min, true
}
