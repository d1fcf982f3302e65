package core

// error_messages.go maps engine and request errors to user-facing messages
// with a support code.
//
// # Error Codes Reference
//
// # View Errors (VIEW001-VIEW099)
//
//	VIEW001 - Product not found: The product is no longer in the catalog
//	          Action: Refresh the table
//	          Sentinel: ErrProductNotFound
//
//	VIEW002 - Unknown column: The column does not exist
//	          Action: Pick one of the listed columns
//	          Sentinel: ErrUnknownField
//
//	VIEW003 - Source unavailable: The product list could not be loaded
//	          Action: Please try again in a few moments
//	          Patterns: "load products", "connection refused"
//
// # Edit Errors (EDIT001-EDIT099)
//
//	EDIT001 - Edit in progress: Another row is being edited
//	          Action: Save or cancel the current edit first
//	          Sentinel: ErrEditInProgress
//
//	EDIT002 - No edit session: No row is being edited
//	          Action: Click Edit on a row to start editing
//	          Sentinel: ErrNoEditSession
//
//	EDIT003 - No pending delete: No row is awaiting delete confirmation
//	          Action: Click Delete on a row first
//	          Sentinel: ErrNoPendingDelete
//
// # Cart Errors (CART001-CART099)
//
//	CART001 - Not in cart: The product is not in the cart
//	          Action: Add it from the table first
//	          Patterns: "not in cart"
//
// # Request Errors (REQ001-REQ099)
//
//	REQ001 - Invalid request: The request could not be read
//	         Action: Check the request body and try again
//	         Patterns: "invalid request"
//
//	REQ002 - Session expired: Your workspace has expired
//	         Action: Reload the page to start a new workspace
//	         Patterns: "session not found"
//
//	REQ003 - Request cancelled: Request was cancelled
//	         Action: Please try again
//	         Patterns: "context canceled", "context deadline exceeded"
//
// # Rate Limiting (RATE001)
//
//	RATE001 - Rate limited: Too many requests
//	          Action: Please wait a moment before trying again
//	          Patterns: "rate limit"
//
// # Default Error (ERR000)
//
//	ERR000 - Unknown error: An unexpected error occurred
//	         Action: Please try again or contact support
//
// Sentinels are matched with errors.Is first; patterns are then matched
// case-insensitively with strings.Contains, first match wins.

import (
	"errors"
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

type sentinelMessage struct {
	err error
	msg UserMessage
}

var sentinelMessages = []sentinelMessage{
	{ErrProductNotFound, UserMessage{
		Message: "The product is no longer in the catalog",
		Action:  "Refresh the table",
		Code:    "VIEW001",
	}},
	{ErrUnknownField, UserMessage{
		Message: "The column does not exist",
		Action:  "Pick one of the listed columns",
		Code:    "VIEW002",
	}},
	{ErrEditInProgress, UserMessage{
		Message: "Another row is being edited",
		Action:  "Save or cancel the current edit first",
		Code:    "EDIT001",
	}},
	{ErrNoEditSession, UserMessage{
		Message: "No row is being edited",
		Action:  "Click Edit on a row to start editing",
		Code:    "EDIT002",
	}},
	{ErrNoPendingDelete, UserMessage{
		Message: "No row is awaiting delete confirmation",
		Action:  "Click Delete on a row first",
		Code:    "EDIT003",
	}},
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

var (
	sourceUnavailable = UserMessage{
		Message: "The product list could not be loaded",
		Action:  "Please try again in a few moments",
		Code:    "VIEW003",
	}
	requestCancelled = UserMessage{
		Message: "Request was cancelled",
		Action:  "Please try again",
		Code:    "REQ003",
	}
)

var errorPatterns = []errorPattern{
	{pattern: "load products", msg: sourceUnavailable},
	{pattern: "connection refused", msg: sourceUnavailable},
	{pattern: "not in cart", msg: UserMessage{
		Message: "The product is not in the cart",
		Action:  "Add it from the table first",
		Code:    "CART001",
	}},
	{pattern: "invalid request", msg: UserMessage{
		Message: "The request could not be read",
		Action:  "Check the request body and try again",
		Code:    "REQ001",
	}},
	{pattern: "session not found", msg: UserMessage{
		Message: "Your workspace has expired",
		Action:  "Reload the page to start a new workspace",
		Code:    "REQ002",
	}},
	{pattern: "context canceled", msg: requestCancelled},
	{pattern: "context deadline exceeded", msg: requestCancelled},
	{pattern: "rate limit", msg: UserMessage{
		Message: "Too many requests",
		Action:  "Please wait a moment before trying again",
		Code:    "RATE001",
	}},
}

// defaultMessage is returned when no specific pattern matches.
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	for _, sm := range sentinelMessages {
		if errors.Is(err, sm.err) {
			return sm.msg
		}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to something more specific than ERR000.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error with its user-facing message.
type UserError struct {
	Technical error       // Original technical error for logging
	User      UserMessage // User-friendly message for display
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
