package catalog

// errors.go maps technical errors to user-facing messages with a support code.
//
// Codes are grouped by prefix:
//
//	DB001-DB099    storage constraints and connectivity
//	FILE001-FILE099 uploaded spreadsheet problems
//	IMP001-IMP099  import pipeline state
//	CAT001-CAT099  catalog lookups
//	RATE001        request throttling
//	ERR000         fallback, check the server log for the technical error
//
// Patterns are matched case-insensitively with strings.Contains and the first
// match wins, so specific patterns come before general ones.

import (
	"errors"
	"fmt"
	"strings"
)

// UserMessage is user-facing error information.
type UserMessage struct {
	Message string `json:"message"`
	Action  string `json:"action"`
	Code    string `json:"code"`
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	// Storage (DB001-DB006)
	{"duplicate key", UserMessage{"A listing with this identifier already exists", "Check the file for repeated tildaUid values", "DB001"}},
	{"violates unique", UserMessage{"A duplicate value was found", "Check the file for repeated tildaUid values", "DB001"}},
	{"connection refused", UserMessage{"Unable to connect to the database", "Please try again in a few moments", "DB002"}},
	{"connection reset", UserMessage{"Database connection was interrupted", "Please try again", "DB003"}},
	{"deadlock", UserMessage{"Database was busy with conflicting operations", "Please try again", "DB004"}},
	{"context deadline exceeded", UserMessage{"The operation timed out", "Try a smaller file or try again later", "DB005"}},
	{"timeout", UserMessage{"The operation timed out", "Try a smaller file or try again later", "DB005"}},
	{"context canceled", UserMessage{"The request was cancelled", "Please try again", "DB006"}},

	// Files (FILE001-FILE005)
	{"file too large", UserMessage{"File exceeds the maximum size limit", "Split the file into smaller parts", "FILE001"}},
	{"unsupported file format", UserMessage{"This file type is not supported", "Upload an .xlsx or .csv file", "FILE002"}},
	{"empty file", UserMessage{"The file contains no data rows", "Check that the first row holds column headers and data follows", "FILE003"}},
	{"no file provided", UserMessage{"No file was selected", "Please choose a spreadsheet to import", "FILE004"}},
	{"read spreadsheet", UserMessage{"The file could not be read", "Re-save the file as .xlsx or UTF-8 .csv and try again", "FILE005"}},

	// Import pipeline (IMP001-IMP002)
	{"too many concurrent imports", UserMessage{"Another import is in progress", "Please wait for it to finish and try again", "IMP001"}},
	{"import not found", UserMessage{"Import run not found", "It may have expired from the recent history", "IMP002"}},

	// Catalog (CAT001-CAT002)
	{"item not found", UserMessage{"Listing not found", "It may have been removed or sold", "CAT001"}},
	{"confirmation required", UserMessage{"This operation needs explicit confirmation", "Repeat the request with confirm=yes", "CAT002"}},

	// Throttling
	{"rate limit", UserMessage{"Too many requests", "Please wait a moment before trying again", "RATE001"}},
}

var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-facing message.
// A UserError anywhere in the chain wins over pattern matching.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	var ue *UserError
	if errors.As(err, &ue) {
		return ue.User
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}
	return defaultMessage
}

// FormatUserError renders "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific message rather than ERR000.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error (for logs) with its user message.
type UserError struct {
	Technical error
	User      UserMessage
}

func (e *UserError) Error() string { return e.User.Message }

func (e *UserError) Unwrap() error { return e.Technical }

// NewUserError maps err to a UserError. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{Technical: err, User: MapError(err)}
}
