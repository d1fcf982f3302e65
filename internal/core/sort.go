package core

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

// SortOrder is the direction of a sort.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// ParseSortOrder normalizes a direction; anything but "desc" is ascending.
func ParseSortOrder(s string) SortOrder {
	if strings.EqualFold(strings.TrimSpace(s), string(SortDesc)) {
		return SortDesc
	}
	return SortAsc
}

// Flip returns the opposite direction.
func (o SortOrder) Flip() SortOrder {
	if o == SortDesc {
		return SortAsc
	}
	return SortDesc
}

// Indicator is the arrow shown next to the active header.
func (o SortOrder) Indicator() string {
	if o == SortDesc {
		return "▼"
	}
	return "▲"
}

// SortState is the active sort column and direction. A zero Field means
// the dataset keeps its input order.
type SortState struct {
	Field FieldKey  `json:"field,omitempty"`
	Order SortOrder `json:"order"`
}

// Toggle applies a header click: the active field flips direction, any other
// sortable field becomes active in ascending order.
func (s SortState) Toggle(field FieldKey) SortState {
	if !field.Sortable() {
		return s
	}
	if s.Field == field {
		return SortState{Field: field, Order: s.Order.Flip()}
	}
	return SortState{Field: field, Order: SortAsc}
}

// Active reports whether a sort field is set.
func (s SortState) Active() bool {
	return s.Field != ""
}

func (s SortState) String() string {
	if !s.Active() {
		return "unsorted"
	}
	return fmt.Sprintf("%s %s", s.Field, s.Order)
}

// SortProducts returns a sorted copy of products. Equal keys keep their
// relative input order. An empty or non-sortable field returns an unsorted
// copy. The input slice is never modified.
func SortProducts(products []Product, field FieldKey, order SortOrder) []Product {
	sorted := slices.Clone(products)
	if !field.Sortable() {
		return sorted
	}

	slices.SortStableFunc(sorted, func(a, b Product) int {
		c := compareField(a, b, field)
		if order == SortDesc {
			return -c
		}
		return c
	})
	return sorted
}

// compareField orders two products by a single field's natural ordering.
func compareField(a, b Product, field FieldKey) int {
	switch field {
	case FieldID:
		return cmp.Compare(a.ID, b.ID)
	case FieldName:
		return cmp.Compare(a.Name, b.Name)
	case FieldPrice:
		return cmp.Compare(a.Price, b.Price)
	case FieldStock:
		return cmp.Compare(a.Stock, b.Stock)
	case FieldCategory:
		return cmp.Compare(a.Category, b.Category)
	case FieldStatus:
		return cmp.Compare(a.Status, b.Status)
	}
	return 0
}
