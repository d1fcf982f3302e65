package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/catalog/internal/core"
	"github.com/JonMunkholm/catalog/internal/logging"
)

// handleQuery records a keystroke in the search box. Typed input is
// debounced; an immediate query (Enter) is evaluated now and drops any
// pending one.
func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var sig querySignals
	if err := readSignals(r, &sig); err != nil {
		respondError(w, r, err)
		return
	}

	s.mutate(w, r, func(ws *core.Workspace) error {
		if sig.Immediate {
			ws.View.SetQuery(sig.Query)
			return nil
		}
		ws.View.TypeQuery(sig.Query)
		return nil
	})
}

// handleSort applies a header click.
func (s *Server) handleSort(w http.ResponseWriter, r *http.Request) {
	field, err := core.ParseFieldKey(chi.URLParam(r, "field"))
	if err != nil {
		respondError(w, r, err)
		return
	}

	s.mutate(w, r, func(ws *core.Workspace) error {
		if ws.View.ToggleSort(field) {
			logging.WithFields(r.Context(), "sort", ws.View.Sort().String()).Debug("sort changed")
		}
		return nil
	})
}

// handleGoToPage jumps to a page; out-of-range pages are clamped.
func (s *Server) handleGoToPage(w http.ResponseWriter, r *http.Request) {
	page, err := intParam(r, "page")
	if err != nil {
		respondError(w, r, err)
		return
	}

	s.mutate(w, r, func(ws *core.Workspace) error {
		ws.View.GoToPage(page)
		return nil
	})
}

func (s *Server) handlePrevPage(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, func(ws *core.Workspace) error {
		ws.View.PrevPage()
		return nil
	})
}

func (s *Server) handleNextPage(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, func(ws *core.Workspace) error {
		ws.View.NextPage()
		return nil
	})
}

// handleMoveColumn drops the dragged column at a new index. Invalid indices
// leave the order unchanged.
func (s *Server) handleMoveColumn(w http.ResponseWriter, r *http.Request) {
	var sig moveSignals
	if err := readSignals(r, &sig); err != nil {
		respondError(w, r, err)
		return
	}

	s.mutate(w, r, func(ws *core.Workspace) error {
		ws.View.MoveColumn(sig.From, sig.To)
		return nil
	})
}
