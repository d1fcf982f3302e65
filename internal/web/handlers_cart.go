package web

import (
	"fmt"
	"net/http"

	"github.com/JonMunkholm/catalog/internal/core"
	"github.com/JonMunkholm/catalog/internal/metrics"
)

// handleAddToCart adds one unit of a product; repeated adds merge.
func (s *Server) handleAddToCart(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}

	s.mutate(w, r, func(ws *core.Workspace) error {
		if err := ws.AddToCart(id); err != nil {
			return err
		}
		metrics.IncCartAdd()
		return nil
	})
}

// handleCart returns the cart contents.
func (s *Server) handleCart(w http.ResponseWriter, r *http.Request) {
	sess, err := mustSession(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	var cart core.CartSnapshot
	if err := sess.Do(func(ws *core.Workspace) error {
		cart = core.SnapshotCart(ws.Cart)
		return nil
	}); err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, cart)
}

// handleToggleCart opens or closes the cart panel.
func (s *Server) handleToggleCart(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, func(ws *core.Workspace) error {
		ws.Cart.Toggle()
		return nil
	})
}

// handleCartQuantity adjusts a line by delta; quantities never drop below 1.
func (s *Server) handleCartQuantity(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	var sig deltaSignals
	if err := readSignals(r, &sig); err != nil {
		respondError(w, r, err)
		return
	}

	s.mutate(w, r, func(ws *core.Workspace) error {
		if ws.Cart.ChangeQuantity(id, sig.Delta) == 0 {
			return fmt.Errorf("product %d %w", id, errNotInCart)
		}
		return nil
	})
}

// handleRemoveFromCart deletes a cart line.
func (s *Server) handleRemoveFromCart(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}

	s.mutate(w, r, func(ws *core.Workspace) error {
		if !ws.Cart.Remove(id) {
			return fmt.Errorf("product %d %w", id, errNotInCart)
		}
		return nil
	})
}
