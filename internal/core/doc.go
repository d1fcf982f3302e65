// Package core provides the table view engine behind the product catalog.
//
// This package contains all view and mutation logic independent of any UI or
// transport layer. It is used by the web dashboard, the terminal browser, and
// tests without modification. Nothing in here performs I/O and nothing in here
// locks: every type is owned by exactly one caller, which drives it through its
// own transition methods.
//
// # Architecture
//
// The package is organized around a small pipeline plus its owners:
//
//   - Stages: [Filter], [SortProducts] and [Paginate] are pure functions over a
//     product slice. [PageWindow] computes the compact page-number strip.
//   - Table View: [TableView] owns the [ViewState] (query, sort, page, column
//     order) and recomputes the visible page whenever an input changes.
//   - Row Mutations: [RowMutations] runs the inline-edit and delete-confirmation
//     state machines and emits intents to a [MutationSink].
//   - Catalog: [Catalog] owns the canonical dataset, applies intents and
//     republishes full snapshots to its view.
//   - Cart: [Cart] aggregates products by id with quantity and total tracking.
//   - Workspace: [Workspace] wires one of each together for a single user.
//
// # Debounced Search
//
// Typed queries go through [TableView.TypeQuery]. The echoed input updates
// immediately while evaluation waits for a quiet period on a [Debouncer]:
//
//	view.TypeQuery("ele")
//	view.TypeQuery("elec") // cancels the pending "ele" evaluation
//	// 300ms later: filter("elec") runs once and the page resets to 1
//
// The timer is abstracted behind [Scheduler] so tests can drive it by hand.
//
// # Error Handling
//
// The engine recovers locally from bad input (non-numeric prices become 0,
// stale pages clamp, unknown ids are no-ops). The few misuse errors it returns
// are sentinels such as [ErrEditInProgress]. Hosts translate any error into a
// user-facing message with [MapError]:
//
//   - VIEW001-VIEW003: view and lookup errors
//   - EDIT001-EDIT004: edit and delete session errors
//   - CART001: cart errors
//   - REQ001-REQ003: request shape and cancellation errors
package core
