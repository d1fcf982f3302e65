package core

import (
	"fmt"
	"log/slog"
	"time"
)

// WorkspaceOptions configures a Workspace. Zero values select the defaults.
type WorkspaceOptions struct {
	PageSize          int
	DebounceDelay     time.Duration
	LowStockThreshold int
	Scheduler         Scheduler
	OnEvaluate        func(query string, matches int)
	Logger            *slog.Logger
}

// Workspace is everything one user interacts with: the canonical catalog, the
// table view over it, the row mutation controller and the cart. It is the
// single owner of all of them and is not safe for concurrent use.
type Workspace struct {
	Catalog *Catalog
	View    *TableView
	Rows    *RowMutations
	Cart    *Cart

	lowStock int
}

// NewWorkspace wires a catalog of products to a fresh view, mutation
// controller and empty cart.
func NewWorkspace(products []Product, opts WorkspaceOptions) *Workspace {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	catalog := NewCatalog(products, opts.Logger)
	view := NewTableView(catalog.Products(), ViewOptions{
		PageSize:      opts.PageSize,
		DebounceDelay: opts.DebounceDelay,
		Scheduler:     opts.Scheduler,
		OnEvaluate:    opts.OnEvaluate,
		Logger:        opts.Logger,
	})
	catalog.Subscribe(func(products []Product, replaced bool) {
		if replaced {
			view.SetDataset(products)
			return
		}
		view.Refresh(products)
	})

	return &Workspace{
		Catalog:  catalog,
		View:     view,
		Rows:     NewRowMutations(catalog, opts.Logger),
		Cart:     NewCart(),
		lowStock: opts.LowStockThreshold,
	}
}

// BeginEdit starts editing the product with id.
func (w *Workspace) BeginEdit(id int) error {
	p, ok := w.Catalog.Find(id)
	if !ok {
		return fmt.Errorf("begin edit: %w: %d", ErrProductNotFound, id)
	}
	return w.Rows.BeginEdit(p)
}

// RequestDelete asks for confirmation before deleting the product with id.
func (w *Workspace) RequestDelete(id int) error {
	if _, ok := w.Catalog.Find(id); !ok {
		return fmt.Errorf("request delete: %w: %d", ErrProductNotFound, id)
	}
	w.Rows.RequestDelete(id)
	return nil
}

// AddToCart pushes the product with id into the cart.
func (w *Workspace) AddToCart(id int) error {
	p, ok := w.Catalog.Find(id)
	if !ok {
		return fmt.Errorf("add to cart: %w: %d", ErrProductNotFound, id)
	}
	addToCart(w.Cart, p)
	return nil
}

// addToCart is the row-level action; rows only ever see the write side.
func addToCart(cart CartWriter, p Product) {
	cart.Add(p)
}

// Stats summarizes the current catalog.
func (w *Workspace) Stats() Stats {
	return ComputeStats(w.Catalog.Products(), w.lowStock)
}

// Close releases the pending search timer.
func (w *Workspace) Close() {
	w.View.Close()
}

// RowView is one rendered row with its mutation state.
type RowView struct {
	Product Product  `json:"product"`
	State   RowState `json:"state"`
}

// Snapshot is a rendering-ready copy of a workspace.
type Snapshot struct {
	State         ViewState           `json:"state"`
	Input         string              `json:"input"`
	SearchPending bool                `json:"searchPending"`
	Columns       []Column            `json:"columns"`
	Rows          []RowView           `json:"rows"`
	Page          int                 `json:"page"`
	TotalPages    int                 `json:"totalPages"`
	PageItems     []PageItem          `json:"pageItems"`
	CanPrev       bool                `json:"canPrev"`
	CanNext       bool                `json:"canNext"`
	FilteredCount int                 `json:"filteredCount"`
	TotalCount    int                 `json:"totalCount"`
	Editing       *EditSession        `json:"editing,omitempty"`
	PendingDelete *DeleteConfirmation `json:"pendingDelete,omitempty"`
	Cart          CartSnapshot        `json:"cart"`
	Stats         Stats               `json:"stats"`
}

// CartSnapshot is a rendering-ready copy of the cart.
type CartSnapshot struct {
	Open  bool        `json:"open"`
	Items []CartEntry `json:"items"`
	Count int         `json:"count"`
	Units int         `json:"units"`
	Total float64     `json:"total"`
}

// SnapshotCart copies the readable state of a cart.
func SnapshotCart(c CartReader) CartSnapshot {
	return CartSnapshot{
		Open:  c.IsOpen(),
		Items: c.Items(),
		Count: c.Count(),
		Units: c.Units(),
		Total: c.Total(),
	}
}

// Snapshot copies everything needed to render the workspace.
func (w *Workspace) Snapshot() Snapshot {
	v := w.View
	page := v.Rows()
	rows := make([]RowView, len(page))
	for i, p := range page {
		rows[i] = RowView{Product: p, State: w.Rows.RowState(p.ID)}
	}

	s := Snapshot{
		State:         v.State(),
		Input:         v.Input(),
		SearchPending: v.SearchPending(),
		Columns:       v.Columns(),
		Rows:          rows,
		Page:          v.Page(),
		TotalPages:    v.TotalPages(),
		PageItems:     v.PageItems(),
		CanPrev:       v.CanPrev(),
		CanNext:       v.CanNext(),
		FilteredCount: v.FilteredCount(),
		TotalCount:    w.Catalog.Len(),
		Cart:          SnapshotCart(w.Cart),
		Stats:         w.Stats(),
	}
	if e, ok := w.Rows.Editing(); ok {
		s.Editing = &e
	}
	if d, ok := w.Rows.PendingDelete(); ok {
		s.PendingDelete = &d
	}
	return s
}
