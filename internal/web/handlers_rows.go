package web

import (
	"net/http"

	"github.com/JonMunkholm/catalog/internal/core"
	"github.com/JonMunkholm/catalog/internal/logging"
	"github.com/JonMunkholm/catalog/internal/metrics"
)

// handleBeginEdit switches a row into edit mode.
func (s *Server) handleBeginEdit(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}

	s.mutate(w, r, func(ws *core.Workspace) error {
		return ws.BeginEdit(id)
	})
}

// handleSetField updates one field of the draft. Values are coerced the same
// way the inputs are: unparsable numbers become 0 and an unknown status keeps
// the previous one.
func (s *Server) handleSetField(w http.ResponseWriter, r *http.Request) {
	var sig fieldSignals
	if err := readSignals(r, &sig); err != nil {
		respondError(w, r, err)
		return
	}

	s.mutate(w, r, func(ws *core.Workspace) error {
		return ws.Rows.SetField(core.FieldKey(sig.Field), sig.Value)
	})
}

// handleSaveEdit commits the draft into the catalog.
func (s *Server) handleSaveEdit(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, func(ws *core.Workspace) error {
		p, err := ws.Rows.SaveEdit()
		if err != nil {
			return err
		}
		metrics.IncEdit()
		logging.WithFields(r.Context(), "product_id", p.ID).Info("product edited")
		return nil
	})
}

func (s *Server) handleCancelEdit(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, func(ws *core.Workspace) error {
		ws.Rows.CancelEdit()
		return nil
	})
}

// handleRequestDelete asks for confirmation before a delete.
func (s *Server) handleRequestDelete(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}

	s.mutate(w, r, func(ws *core.Workspace) error {
		return ws.RequestDelete(id)
	})
}

// handleConfirmDelete removes the row awaiting confirmation.
func (s *Server) handleConfirmDelete(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, func(ws *core.Workspace) error {
		id, err := ws.Rows.ConfirmDelete()
		if err != nil {
			return err
		}
		metrics.IncDelete()
		logging.WithFields(r.Context(), "product_id", id).Info("product deleted")
		return nil
	})
}

func (s *Server) handleCancelDelete(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, func(ws *core.Workspace) error {
		ws.Rows.CancelDelete()
		return nil
	})
}
