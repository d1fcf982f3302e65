package core

// mutations.go implements the inline-edit and delete-confirmation state
// machines for table rows.
//
// Each machine is a single slot: at most one row is being edited and at most
// one row is awaiting delete confirmation. The slots are independent, so an
// edit on one row and a pending delete on another may coexist.
//
//	VIEW --BeginEdit--> EDITING --SaveEdit/CancelEdit--> VIEW
//	VIEW --RequestDelete--> CONFIRMING_DELETE --ConfirmDelete/CancelDelete--> VIEW
//
// Commits leave the controller as intents on a MutationSink; the sink owns
// the canonical dataset.

import (
	"fmt"
	"log/slog"
	"strings"
)

// MutationSink receives committed row mutations. Implementations treat an
// unknown id as a no-op.
type MutationSink interface {
	DeleteProduct(id int)
	EditProduct(p Product)
}

// EditSession is the draft of the single row being edited.
type EditSession struct {
	TargetID int     `json:"targetId"`
	Draft    Product `json:"draft"`
}

// DeleteConfirmation is the row awaiting a confirm or cancel.
type DeleteConfirmation struct {
	TargetID int `json:"targetId"`
}

// RowState describes how a row should be rendered.
type RowState struct {
	Editing          bool `json:"editing,omitempty"`
	ConfirmingDelete bool `json:"confirmingDelete,omitempty"`
}

// RowMutations owns the edit and delete slots.
type RowMutations struct {
	sink   MutationSink
	logger *slog.Logger

	edit    *EditSession
	pending *DeleteConfirmation
}

// NewRowMutations creates a controller that commits into sink.
func NewRowMutations(sink MutationSink, logger *slog.Logger) *RowMutations {
	if logger == nil {
		logger = slog.Default()
	}
	return &RowMutations{sink: sink, logger: logger}
}

// BeginEdit enters EDITING for p with a draft copy of it. Beginning an edit on
// the row already being edited keeps the existing draft. Any other row returns
// ErrEditInProgress until the active session is saved or cancelled.
func (m *RowMutations) BeginEdit(p Product) error {
	if m.edit != nil {
		if m.edit.TargetID == p.ID {
			return nil
		}
		return fmt.Errorf("begin edit of product %d: %w (product %d)", p.ID, ErrEditInProgress, m.edit.TargetID)
	}
	m.edit = &EditSession{TargetID: p.ID, Draft: p}
	return nil
}

// Editing returns the active session, if any.
func (m *RowMutations) Editing() (EditSession, bool) {
	if m.edit == nil {
		return EditSession{}, false
	}
	return *m.edit, true
}

// SetField updates one field of the draft from raw user input. Price and stock
// fall back to 0 for anything that is not a non-negative number. An unknown
// status keeps the previous value. The id and actions columns are read-only
// and silently ignored.
func (m *RowMutations) SetField(field FieldKey, raw string) error {
	if m.edit == nil {
		return ErrNoEditSession
	}

	d := &m.edit.Draft
	switch field {
	case FieldID, FieldActions:
		// read-only
	case FieldName:
		d.Name = raw
	case FieldCategory:
		d.Category = raw
	case FieldPrice:
		d.Price = coercePrice(raw)
	case FieldStock:
		d.Stock = coerceStock(raw)
	case FieldStatus:
		if st, ok := ParseStatus(raw); ok {
			d.Status = st
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	return nil
}

// SaveEdit commits the draft as a full replace-by-id and returns to VIEW.
func (m *RowMutations) SaveEdit() (Product, error) {
	if m.edit == nil {
		return Product{}, ErrNoEditSession
	}
	draft := m.edit.Draft
	m.edit = nil

	m.sink.EditProduct(draft)
	m.logger.Debug("edit committed", "product_id", draft.ID)
	return draft, nil
}

// CancelEdit discards the draft. It reports whether a session was active.
func (m *RowMutations) CancelEdit() bool {
	if m.edit == nil {
		return false
	}
	m.logger.Debug("edit cancelled", "product_id", m.edit.TargetID)
	m.edit = nil
	return true
}

// RequestDelete enters CONFIRMING_DELETE for id. A pending confirmation for
// another row is replaced, never committed.
func (m *RowMutations) RequestDelete(id int) {
	m.pending = &DeleteConfirmation{TargetID: id}
}

// PendingDelete returns the row awaiting confirmation, if any.
func (m *RowMutations) PendingDelete() (DeleteConfirmation, bool) {
	if m.pending == nil {
		return DeleteConfirmation{}, false
	}
	return *m.pending, true
}

// ConfirmDelete emits the delete intent and returns to VIEW. If the deleted row
// was also being edited, that draft is dropped with it.
func (m *RowMutations) ConfirmDelete() (int, error) {
	if m.pending == nil {
		return 0, ErrNoPendingDelete
	}
	id := m.pending.TargetID
	m.pending = nil

	if m.edit != nil && m.edit.TargetID == id {
		m.edit = nil
	}

	m.sink.DeleteProduct(id)
	m.logger.Debug("delete committed", "product_id", id)
	return id, nil
}

// CancelDelete leaves CONFIRMING_DELETE without emitting anything. It reports
// whether a confirmation was pending.
func (m *RowMutations) CancelDelete() bool {
	if m.pending == nil {
		return false
	}
	m.pending = nil
	return true
}

// RowState reports the mutation state of the row with id.
func (m *RowMutations) RowState(id int) RowState {
	return RowState{
		Editing:          m.edit != nil && m.edit.TargetID == id,
		ConfirmingDelete: m.pending != nil && m.pending.TargetID == id,
	}
}

// Reset drops both slots without emitting intents.
func (m *RowMutations) Reset() {
	m.edit = nil
	m.pending = nil
}

// String summarizes the slots for logging.
func (m *RowMutations) String() string {
	var parts []string
	if m.edit != nil {
		parts = append(parts, fmt.Sprintf("editing=%d", m.edit.TargetID))
	}
	if m.pending != nil {
		parts = append(parts, fmt.Sprintf("confirming_delete=%d", m.pending.TargetID))
	}
	if len(parts) == 0 {
		return "idle"
	}
	return strings.Join(parts, " ")
}
