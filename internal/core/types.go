package core

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Sentinel errors returned by the engine. Hosts map them with MapError.
var (
	ErrEditInProgress  = errors.New("another row is already being edited")
	ErrNoEditSession   = errors.New("no edit session is active")
	ErrNoPendingDelete = errors.New("no delete is awaiting confirmation")
	ErrUnknownField    = errors.New("unknown field")
	ErrProductNotFound = errors.New("product not found")
)

// Status is the lifecycle state of a product.
type Status string

const (
	StatusActive       Status = "active"
	StatusInactive     Status = "inactive"
	StatusDiscontinued Status = "discontinued"
)

// Statuses lists every valid status in display order.
var Statuses = []Status{StatusActive, StatusInactive, StatusDiscontinued}

// ParseStatus matches s case-insensitively against the known statuses.
func ParseStatus(s string) (Status, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, st := range Statuses {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}

// Label returns the capitalized form used in tables ("Active").
func (s Status) Label() string {
	if s == "" {
		return ""
	}
	return strings.ToUpper(string(s[:1])) + string(s[1:])
}

// Product is one row of the catalog. ID is its identity and never changes.
type Product struct {
	ID       int     `json:"id"`
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Price    float64 `json:"price"`
	Stock    int     `json:"stock"`
	Status   Status  `json:"status"`
}

// FieldKey names a display column.
type FieldKey string

const (
	FieldID       FieldKey = "id"
	FieldName     FieldKey = "name"
	FieldPrice    FieldKey = "price"
	FieldStock    FieldKey = "stock"
	FieldCategory FieldKey = "category"
	FieldStatus   FieldKey = "status"
	FieldActions  FieldKey = "actions"
)

// ParseFieldKey validates a column key coming from a request or flag.
func ParseFieldKey(s string) (FieldKey, error) {
	key := FieldKey(strings.ToLower(strings.TrimSpace(s)))
	switch key {
	case FieldID, FieldName, FieldPrice, FieldStock, FieldCategory, FieldStatus, FieldActions:
		return key, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownField, s)
}

// Sortable reports whether clicking the column header may sort by it.
func (k FieldKey) Sortable() bool {
	return k != FieldActions && k != ""
}

// Value returns the field value of p for key, or nil for non-data columns.
func (p Product) Value(key FieldKey) any {
	switch key {
	case FieldID:
		return p.ID
	case FieldName:
		return p.Name
	case FieldPrice:
		return p.Price
	case FieldStock:
		return p.Stock
	case FieldCategory:
		return p.Category
	case FieldStatus:
		return p.Status
	}
	return nil
}

// Display formats the field for a table cell.
func (p Product) Display(key FieldKey) string {
	switch key {
	case FieldID:
		return strconv.Itoa(p.ID)
	case FieldName:
		return p.Name
	case FieldPrice:
		return strconv.FormatFloat(p.Price, 'f', 2, 64)
	case FieldStock:
		return strconv.Itoa(p.Stock)
	case FieldCategory:
		return p.Category
	case FieldStatus:
		return p.Status.Label()
	}
	return ""
}

// roundCents rounds a price to two decimal places.
func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

// coercePrice parses user input as a non-negative decimal, falling back to 0.
// Values too large to round to cents fall back to 0 as well.
func coercePrice(raw string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	v = roundCents(v)
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return 0
	}
	return v
}

// coerceStock parses user input as a non-negative integer, falling back to 0.
// Decimal input is truncated ("12.7" -> 12). Anything above MaxInt32 is out
// of range and also becomes 0.
func coerceStock(raw string) int {
	raw = strings.TrimSpace(raw)
	if n, err := strconv.Atoi(raw); err == nil {
		if n > math.MaxInt32 {
			return 0
		}
		return max(n, 0)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 || v > math.MaxInt32 {
		return 0
	}
	return int(v)
}
