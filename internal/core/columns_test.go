package core

import (
	"reflect"
	"testing"
)

func TestColumnOrder_Defaults(t *testing.T) {
	c := NewColumnOrder()

	want := []FieldKey{FieldID, FieldName, FieldPrice, FieldStock, FieldCategory, FieldStatus, FieldActions}
	if got := c.Keys(); !reflect.DeepEqual(got, want) {
		t.Errorf("Keys() = %v, want %v", got, want)
	}
}

func TestColumnOrder_Move(t *testing.T) {
	tests := []struct {
		name     string
		from, to int
		want     []FieldKey
		changed  bool
	}{
		{
			name: "forward shifts the others left",
			from: 0, to: 3,
			want:    []FieldKey{FieldName, FieldPrice, FieldStock, FieldID, FieldCategory, FieldStatus, FieldActions},
			changed: true,
		},
		{
			name: "backward shifts the others right",
			from: 5, to: 1,
			want:    []FieldKey{FieldID, FieldStatus, FieldName, FieldPrice, FieldStock, FieldCategory, FieldActions},
			changed: true,
		},
		{
			name: "actions column is reorderable",
			from: 6, to: 0,
			want:    []FieldKey{FieldActions, FieldID, FieldName, FieldPrice, FieldStock, FieldCategory, FieldStatus},
			changed: true,
		},
		{
			name: "drop on itself",
			from: 2, to: 2,
			want: []FieldKey{FieldID, FieldName, FieldPrice, FieldStock, FieldCategory, FieldStatus, FieldActions},
		},
		{
			name: "no drag source",
			from: NoDragSource, to: 4,
			want: []FieldKey{FieldID, FieldName, FieldPrice, FieldStock, FieldCategory, FieldStatus, FieldActions},
		},
		{
			name: "target out of range",
			from: 1, to: 7,
			want: []FieldKey{FieldID, FieldName, FieldPrice, FieldStock, FieldCategory, FieldStatus, FieldActions},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewColumnOrder()
			changed := c.Move(tt.from, tt.to)
			if changed != tt.changed {
				t.Errorf("Move(%d, %d) changed = %v, want %v", tt.from, tt.to, changed, tt.changed)
			}
			if got := c.Keys(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Move(%d, %d) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestColumnOrder_MoveInverseRestores(t *testing.T) {
	n := len(DefaultColumns)
	for from := 0; from < n; from++ {
		for to := 0; to < n; to++ {
			c := NewColumnOrder()
			c.Move(from, to)
			c.Move(to, from)
			if got := c.Columns(); !reflect.DeepEqual(got, DefaultColumns) {
				t.Fatalf("Move(%d,%d) then Move(%d,%d) = %v", from, to, to, from, c.Keys())
			}
		}
	}
}

func TestColumnOrder_ColumnsIsACopy(t *testing.T) {
	c := NewColumnOrder()
	cols := c.Columns()
	cols[0].Label = "changed"

	if c.Columns()[0].Label != "ID" {
		t.Error("Columns() exposed internal state")
	}
	if DefaultColumns[0].Label != "ID" {
		t.Error("DefaultColumns was modified")
	}
}

func TestColumnOrder_SetKeys(t *testing.T) {
	c := NewColumnOrder()

	if c.SetKeys([]FieldKey{FieldName, FieldID}) {
		t.Error("partial permutation accepted")
	}
	if c.SetKeys([]FieldKey{FieldID, FieldID, FieldPrice, FieldStock, FieldCategory, FieldStatus, FieldActions}) {
		t.Error("duplicate key accepted")
	}

	want := []FieldKey{FieldActions, FieldStatus, FieldCategory, FieldStock, FieldPrice, FieldName, FieldID}
	if !c.SetKeys(want) {
		t.Fatal("valid permutation rejected")
	}
	if got := c.Keys(); !reflect.DeepEqual(got, want) {
		t.Errorf("Keys() = %v, want %v", got, want)
	}
	if c.Columns()[0].Label != "Actions" {
		t.Errorf("labels did not travel with keys")
	}
}
