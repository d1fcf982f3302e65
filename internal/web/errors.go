package web

// errors.go provides unified error response handling for the web layer.
//
// It ensures all errors are:
//   - Logged with full technical details for debugging (server-side)
//   - Returned to clients as user-friendly messages with action suggestions
//   - Formatted appropriately based on request type (Datastar or JSON)
//
// The error flow:
//  1. Handler encounters an error
//  2. Calls respondError(w, r, err)
//  3. Error is mapped via core.MapError to get user-friendly message
//  4. Technical error + context is logged with request and session ids
//  5. User message is rendered in appropriate format for the client

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/starfederation/datastar-go/datastar"

	"github.com/JonMunkholm/catalog/internal/core"
	"github.com/JonMunkholm/catalog/internal/logging"
	"github.com/JonMunkholm/catalog/internal/session"
	"github.com/JonMunkholm/catalog/internal/web/templates"
)

// ErrorResponse represents the JSON structure for API error responses.
// Includes both machine-readable (Code) and human-readable (Message, Action) fields.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// statusFor picks the HTTP status for an engine or request error.
func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrProductNotFound), errors.Is(err, errNotInCart):
		return http.StatusNotFound
	case errors.Is(err, core.ErrEditInProgress),
		errors.Is(err, core.ErrNoEditSession),
		errors.Is(err, core.ErrNoPendingDelete):
		return http.StatusConflict
	case errors.Is(err, core.ErrUnknownField), errors.Is(err, errInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrSessionClosed), errors.Is(err, session.ErrSessionNotFound):
		return http.StatusGone
	default:
		return http.StatusInternalServerError
	}
}

// respondError handles error responses with user-friendly messages.
// It logs the technical error server-side and returns an appropriate response
// based on the request type.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	userMsg := core.MapError(err)

	logger := logging.FromContext(r.Context())
	attrs := []any{
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", userMsg.Code,
	}
	if status >= http.StatusInternalServerError {
		logger.Error("request error", attrs...)
	} else {
		logger.Warn("request rejected", attrs...)
	}

	if isDatastar(r) {
		renderErrorPatch(w, r, userMsg)
		return
	}
	respondErrorJSON(w, userMsg, status)
}

// respondErrorJSON writes a JSON error response.
func respondErrorJSON(w http.ResponseWriter, msg core.UserMessage, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Error:   msg.Message,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
	})
}

// renderErrorPatch morphs the alert region. Datastar only applies patches
// from successful responses, so the stream itself is a 200.
func renderErrorPatch(w http.ResponseWriter, r *http.Request, msg core.UserMessage) {
	sse := datastar.NewSSE(w, r)
	if err := sse.PatchElementTempl(templates.ErrorAlert(msg.Message, msg.Action, msg.Code)); err != nil {
		_ = sse.ConsoleError(err)
	}
}

// isDatastar checks if the request was issued by the Datastar runtime.
func isDatastar(r *http.Request) bool {
	return r.Header.Get("Datastar-Request") == "true"
}
