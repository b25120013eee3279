package catalog

import (
	"sort"
	"strings"

	"electra/internal/domain"
)

// SortCriterion is an explicit, user-selected total order over the filtered
// set. SortNone preserves the original catalog order.
type SortCriterion string

const (
	SortNone      SortCriterion = ""
	SortPriceAsc  SortCriterion = "price_asc"
	SortPriceDesc SortCriterion = "price_desc"
	SortNameAsc   SortCriterion = "name_asc"
)

// ParseSort maps a query-string value to a criterion, defaulting to SortNone
// for anything unrecognized.
func ParseSort(s string) SortCriterion {
	switch SortCriterion(strings.ToLower(strings.TrimSpace(s))) {
	case SortPriceAsc:
		return SortPriceAsc
	case SortPriceDesc:
		return SortPriceDesc
	case SortNameAsc:
		return SortNameAsc
	default:
		return SortNone
	}
}

// Visible derives the product list shown to the user: products whose
// category matches (CategoryAll passes everything) and whose name or brand
// contains the search text, case-insensitive. The filter is stable; input
// ordering is preserved and the input slice is never mutated.
func Visible(products []domain.Product, search string, category domain.Category) []domain.Product {
	search = strings.ToLower(strings.TrimSpace(search))

	visible := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if category != domain.CategoryAll && category != "" && p.Category != category {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(p.Name), search) &&
			!strings.Contains(strings.ToLower(p.Brand), search) {
			continue
		}
		visible = append(visible, p)
	}
	return visible
}

// Sorted applies the criterion as a total order over products, ties broken
// by original catalog order. Returns a new slice; the input is untouched.
func Sorted(products []domain.Product, criterion SortCriterion) []domain.Product {
	out := make([]domain.Product, len(products))
	copy(out, products)

	switch criterion {
	case SortPriceAsc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price < out[j].Price })
	case SortPriceDesc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price > out[j].Price })
	case SortNameAsc:
		sort.SliceStable(out, func(i, j int) bool {
			return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
		})
	}
	return out
}
