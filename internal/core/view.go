package core

import (
	"log/slog"
	"time"
)

// ViewState is the configuration that decides what the table shows.
type ViewState struct {
	Query   string     `json:"query"`
	Sort    SortState  `json:"sort"`
	Page    int        `json:"page"`
	Columns []FieldKey `json:"columns"`
}

// ViewOptions configures a TableView. Zero values select the defaults.
type ViewOptions struct {
	PageSize      int
	DebounceDelay time.Duration
	Scheduler     Scheduler

	// OnEvaluate is called after every filter evaluation with the evaluated
	// query and the number of matches.
	OnEvaluate func(query string, matches int)

	Logger *slog.Logger
}

// TableView owns the view state for one dataset snapshot and keeps the visible
// page consistent with it. Every input change recomputes the derived slices
// and clamps the page.
type TableView struct {
	pageSize   int
	logger     *slog.Logger
	onEvaluate func(string, int)

	dataset []Product
	input   string
	query   string
	sort    SortState
	page    int
	columns *ColumnOrder

	search      *Debouncer[string]
	evaluations int

	filtered []Product
	sorted   []Product
}

// NewTableView creates a view over products with default state: empty query,
// no sort, page 1, natural column order.
func NewTableView(products []Product, opts ViewOptions) *TableView {
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	if opts.DebounceDelay <= 0 {
		opts.DebounceDelay = DefaultDebounceDelay
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	v := &TableView{
		pageSize:   opts.PageSize,
		logger:     opts.Logger,
		onEvaluate: opts.OnEvaluate,
		dataset:    products,
		sort:       SortState{Order: SortAsc},
		page:       1,
		columns:    NewColumnOrder(),
	}
	v.search = NewDebouncer(opts.DebounceDelay, opts.Scheduler, v.applyQuery)
	v.recompute()
	return v
}

// SetDataset replaces the snapshot. Filtering and sorting are recomputed with
// the current query and sort, and the page resets to 1.
func (v *TableView) SetDataset(products []Product) {
	v.dataset = products
	v.page = 1
	v.recompute()
}

// Refresh swaps in a snapshot produced by a committed edit or delete. Unlike
// SetDataset the current page is kept, clamped to the new page count.
func (v *TableView) Refresh(products []Product) {
	v.dataset = products
	v.recompute()
}

// Dataset returns the current snapshot.
func (v *TableView) Dataset() []Product {
	return v.dataset
}

// TypeQuery records a keystroke. The input echo updates immediately; the
// filter runs once the debounce delay passes with no further keystrokes.
func (v *TableView) TypeQuery(q string) {
	v.input = q
	v.search.Trigger(q)
}

// FlushQuery evaluates a pending typed query now. It reports whether one was
// pending.
func (v *TableView) FlushQuery() bool {
	return v.search.Flush()
}

// SetQuery sets and evaluates a query immediately, dropping any pending one.
func (v *TableView) SetQuery(q string) {
	v.search.Cancel()
	v.input = q
	v.applyQuery(q)
}

// SearchPending reports whether a typed query is waiting to be evaluated.
func (v *TableView) SearchPending() bool {
	return v.search.Pending()
}

// Input is the echoed search box value, which may be ahead of Query.
func (v *TableView) Input() string {
	return v.input
}

// Query is the last evaluated query.
func (v *TableView) Query() string {
	return v.query
}

// Evaluations counts how many times the filter has been evaluated for a query.
func (v *TableView) Evaluations() int {
	return v.evaluations
}

func (v *TableView) applyQuery(q string) {
	v.query = q
	v.page = 1
	v.evaluations++
	v.recompute()

	v.logger.Debug("search evaluated", "query", q, "matches", len(v.filtered))
	if v.onEvaluate != nil {
		v.onEvaluate(q, len(v.filtered))
	}
}

// ToggleSort applies a header click on field. It reports whether the sort
// changed; the actions column never sorts.
func (v *TableView) ToggleSort(field FieldKey) bool {
	next := v.sort.Toggle(field)
	if next == v.sort {
		return false
	}
	v.sort = next
	v.recompute()
	return true
}

// SetSort sets the sort directly. A non-sortable field clears the sort.
func (v *TableView) SetSort(s SortState) {
	if !s.Field.Sortable() {
		s = SortState{Order: SortAsc}
	}
	if s.Order != SortDesc {
		s.Order = SortAsc
	}
	v.sort = s
	v.recompute()
}

// Sort returns the active sort.
func (v *TableView) Sort() SortState {
	return v.sort
}

// GoToPage navigates to page n, clamped into range. Clicking the current page
// or an ellipsis (n == 0) is a no-op. It reports whether the page changed.
func (v *TableView) GoToPage(n int) bool {
	if n == 0 || n == v.page {
		return false
	}
	next := ClampPage(n, v.TotalPages())
	if next == v.page {
		return false
	}
	v.page = next
	return true
}

// PrevPage moves back one page unless on the first.
func (v *TableView) PrevPage() bool {
	if !v.CanPrev() {
		return false
	}
	v.page--
	return true
}

// NextPage moves forward one page unless on the last.
func (v *TableView) NextPage() bool {
	if !v.CanNext() {
		return false
	}
	v.page++
	return true
}

// CanPrev reports whether Prev is enabled.
func (v *TableView) CanPrev() bool {
	return v.page > 1
}

// CanNext reports whether Next is enabled.
func (v *TableView) CanNext() bool {
	return v.page < v.TotalPages()
}

// Page is the current 1-based page.
func (v *TableView) Page() int {
	return v.page
}

// PageSize is the number of rows per page.
func (v *TableView) PageSize() int {
	return v.pageSize
}

// TotalPages is max(1, ceil(filtered/pageSize)).
func (v *TableView) TotalPages() int {
	return TotalPages(len(v.sorted), v.pageSize)
}

// FilteredCount is the number of products matching the query.
func (v *TableView) FilteredCount() int {
	return len(v.sorted)
}

// PageItems is the compact page strip for the current page.
func (v *TableView) PageItems() []PageItem {
	return PageWindow(v.page, v.TotalPages())
}

// Rows returns the products on the current page.
func (v *TableView) Rows() []Product {
	return Paginate(v.sorted, v.page, v.pageSize)
}

// Sorted returns every matching product in display order.
func (v *TableView) Sorted() []Product {
	return v.sorted
}

// MoveColumn reorders the columns. See ColumnOrder.Move.
func (v *TableView) MoveColumn(from, to int) bool {
	return v.columns.Move(from, to)
}

// Columns returns the display columns in order.
func (v *TableView) Columns() []Column {
	return v.columns.Columns()
}

// ColumnOrder exposes the column model.
func (v *TableView) ColumnOrder() *ColumnOrder {
	return v.columns
}

// State returns a copy of the view state.
func (v *TableView) State() ViewState {
	return ViewState{
		Query:   v.query,
		Sort:    v.sort,
		Page:    v.page,
		Columns: v.columns.Keys(),
	}
}

// Close cancels any pending search evaluation.
func (v *TableView) Close() {
	v.search.Cancel()
}

func (v *TableView) recompute() {
	v.filtered = Filter(v.dataset, v.query)
	v.sorted = SortProducts(v.filtered, v.sort.Field, v.sort.Order)
	v.page = ClampPage(v.page, v.TotalPages())
}
