// Package catalog filters, searches and sorts an already-loaded item list for
// the browsing surface. It keeps no state between calls.
package catalog

import (
	"fmt"
	"sort"
	"strings"

	"etalase/internal/models"
)

// AllCategories is the wildcard facet meaning "no category filter".
const AllCategories = "All"

// SortKey selects the output order.
type SortKey string

const (
	SortNewest    SortKey = "newest"
	SortPriceAsc  SortKey = "price_asc"
	SortPriceDesc SortKey = "price_desc"
)

// ParseSortKey maps a query value to a SortKey. An empty value means newest.
func ParseSortKey(s string) (SortKey, error) {
	switch SortKey(strings.ToLower(strings.TrimSpace(s))) {
	case "", SortNewest:
		return SortNewest, nil
	case SortPriceAsc:
		return SortPriceAsc, nil
	case SortPriceDesc:
		return SortPriceDesc, nil
	}
	return "", fmt.Errorf("unknown sort key %q", s)
}

// Query holds the three browsing inputs plus the fuzzy threshold.
type Query struct {
	Category  string
	Search    string
	Sort      SortKey
	Threshold float64 // <= 0 uses DefaultThreshold
}

// Apply runs category filter, fuzzy match and sort, in that order.
// The input slice and its items are never modified.
func Apply(items []models.Item, q Query) []models.Item {
	out := FilterCategory(items, q.Category)
	out = Search(out, q.Search, q.Threshold)
	SortItems(out, q.Sort)
	return out
}

// FilterCategory keeps items whose category equals category exactly.
// The wildcard and the empty string keep everything.
func FilterCategory(items []models.Item, category string) []models.Item {
	out := make([]models.Item, 0, len(items))
	all := category == "" || category == AllCategories
	for _, it := range items {
		if all || it.Category == category {
			out = append(out, it)
		}
	}
	return out
}

// SortItems orders items in place with a stable sort.
// Unknown keys fall back to newest.
func SortItems(items []models.Item, key SortKey) {
	switch key {
	case SortPriceAsc:
		sort.SliceStable(items, func(i, j int) bool { return priceLess(items[i], items[j], false) })
	case SortPriceDesc:
		sort.SliceStable(items, func(i, j int) bool { return priceLess(items[i], items[j], true) })
	default:
		sort.SliceStable(items, func(i, j int) bool { return newer(items[i], items[j]) })
	}
}

// newer puts zero creation times last.
func newer(a, b models.Item) bool {
	switch {
	case a.CreatedAt.IsZero():
		return false
	case b.CreatedAt.IsZero():
		return true
	}
	return a.CreatedAt.After(b.CreatedAt)
}

// priceLess compares minimum variant prices. Items without variants have no
// known price; they compare equal to each other and sort after priced items
// in both directions.
func priceLess(a, b models.Item, desc bool) bool {
	pa, okA := models.VariantSet(a.Variants).MinPrice()
	pb, okB := models.VariantSet(b.Variants).MinPrice()
	switch {
	case !okA:
		return false
	case !okB:
		return true
	}
	if desc {
		return pa.GreaterThan(pb)
	}
	return pa.LessThan(pb)
}
