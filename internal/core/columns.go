package core

import "slices"

// Column describes one display column.
type Column struct {
	Key   FieldKey `json:"key"`
	Label string   `json:"label"`
}

// DefaultColumns is the natural column order.
var DefaultColumns = []Column{
	{Key: FieldID, Label: "ID"},
	{Key: FieldName, Label: "Name"},
	{Key: FieldPrice, Label: "Price"},
	{Key: FieldStock, Label: "Stock"},
	{Key: FieldCategory, Label: "Category"},
	{Key: FieldStatus, Label: "Status"},
	{Key: FieldActions, Label: "Actions"},
}

// NoDragSource marks a drag gesture that never picked up a column.
const NoDragSource = -1

// ColumnOrder is the positional order of the display columns. It is metadata
// only and never touches product data.
type ColumnOrder struct {
	columns []Column
}

// NewColumnOrder starts from the natural order.
func NewColumnOrder() *ColumnOrder {
	return &ColumnOrder{columns: slices.Clone(DefaultColumns)}
}

// Columns returns a copy of the current order.
func (c *ColumnOrder) Columns() []Column {
	return slices.Clone(c.columns)
}

// Keys returns the column keys in display order.
func (c *ColumnOrder) Keys() []FieldKey {
	keys := make([]FieldKey, len(c.columns))
	for i, col := range c.columns {
		keys[i] = col.Key
	}
	return keys
}

// Len returns the number of columns.
func (c *ColumnOrder) Len() int {
	return len(c.columns)
}

// IndexOf returns the position of key, or -1.
func (c *ColumnOrder) IndexOf(key FieldKey) int {
	return slices.IndexFunc(c.columns, func(col Column) bool { return col.Key == key })
}

// Move removes the column at from and reinserts it at to, shifting the columns
// in between. It reports whether the order changed. A gesture dropped on its
// own origin, one without a source, or one with an out-of-range index is a
// no-op.
func (c *ColumnOrder) Move(from, to int) bool {
	n := len(c.columns)
	if from == NoDragSource || from == to {
		return false
	}
	if from < 0 || from >= n || to < 0 || to >= n {
		return false
	}

	col := c.columns[from]
	c.columns = slices.Delete(c.columns, from, from+1)
	c.columns = slices.Insert(c.columns, to, col)
	return true
}

// Reset restores the natural order.
func (c *ColumnOrder) Reset() {
	c.columns = slices.Clone(DefaultColumns)
}

// SetKeys reorders the columns to match keys, which must be a permutation of
// the current columns. It reports whether keys were accepted.
func (c *ColumnOrder) SetKeys(keys []FieldKey) bool {
	if len(keys) != len(c.columns) {
		return false
	}
	next := make([]Column, 0, len(keys))
	seen := make(map[FieldKey]bool, len(keys))
	for _, k := range keys {
		i := c.IndexOf(k)
		if i < 0 || seen[k] {
			return false
		}
		seen[k] = true
		next = append(next, c.columns[i])
	}
	c.columns = next
	return true
}
