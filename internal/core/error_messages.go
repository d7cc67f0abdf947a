package core

// error_messages.go maps technical errors to user-friendly messages with a
// code users can quote to support.
//
// # Import Errors (IMP001-IMP099)
//
//	IMP001 - Unsupported format: the file is not CSV or Excel
//	IMP002 - Malformed file: the file could not be parsed
//	IMP003 - Empty file: no data rows after the header
//	IMP004 - Import failed: the transaction was rolled back
//	IMP005 - System busy: too many imports in progress
//	IMP006 - Cancelled: the request ended before the import finished
//
// # Database Errors (DB001-DB099)
//
//	DB001 - Duplicate key
//	DB003 - Foreign key violation
//	DB004 - Connection refused
//	DB005 - Connection reset
//	DB006 - Timeout
//	DB007 - Deadlock
//	DB008 - Check constraint (price or rating out of range)
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large
//	FILE004 - No file in the request
//
// # Rate Limiting (RATE001)
//
// # Default Error (ERR000)
//
// Sentinel errors are matched with errors.Is first. Everything else is
// matched case-insensitively on the error text; the first pattern wins.
// A failed commit is reported with the more specific database message when
// its cause matches one.

import (
	"errors"
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string `json:"message"` // What happened (user-friendly)
	Action  string `json:"action"`  // What to do about it
	Code    string `json:"code"`    // Error code for support reference
}

var sentinelMessages = []struct {
	err error
	msg UserMessage
}{
	{ErrUnsupportedFormat, UserMessage{
		Message: "Unsupported file format",
		Action:  "Upload a CSV (.csv) or Excel (.xlsx) file",
		Code:    "IMP001",
	}},
	{ErrMalformedInput, UserMessage{
		Message: "The file could not be parsed",
		Action:  "Check that the file is a valid CSV or Excel workbook",
		Code:    "IMP002",
	}},
	{ErrEmptyBatch, UserMessage{
		Message: "No data found in file",
		Action:  "Add at least one data row below the header",
		Code:    "IMP003",
	}},
	{ErrTooManyImports, UserMessage{
		Message: "System is busy processing other imports",
		Action:  "Please wait a moment and try again",
		Code:    "IMP005",
	}},
	{ErrFileTooLarge, UserMessage{
		Message: "File exceeds the maximum upload size",
		Action:  "Split the file into smaller files",
		Code:    "FILE001",
	}},
}

var commitFailedMessage = UserMessage{
	Message: "The import could not be saved and no rows were written",
	Action:  "Please try again or contact support",
	Code:    "IMP004",
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	// =========================================================================
	// Database constraint errors
	// =========================================================================
	{
		pattern: "duplicate key",
		msg: UserMessage{
			Message: "A record with this key already exists",
			Action:  "Check for duplicate entries in your file",
			Code:    "DB001",
		},
	},
	{
		pattern: "unique constraint",
		msg: UserMessage{
			Message: "A record with this key already exists",
			Action:  "Check for duplicate entries in your file",
			Code:    "DB001",
		},
	},
	{
		pattern: "foreign key",
		msg: UserMessage{
			Message: "Referenced record does not exist",
			Action:  "Please try again or contact support",
			Code:    "DB003",
		},
	},
	{
		pattern: "check constraint",
		msg: UserMessage{
			Message: "A value is outside the allowed range",
			Action:  "Prices must not be negative and ratings must be 1 to 5",
			Code:    "DB008",
		},
	},

	// =========================================================================
	// Database connection errors
	// =========================================================================
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to database",
			Action:  "Please try again in a few moments",
			Code:    "DB004",
		},
	},
	{
		pattern: "connection reset",
		msg: UserMessage{
			Message: "Database connection was interrupted",
			Action:  "Please try again",
			Code:    "DB005",
		},
	},
	{
		pattern: "deadline exceeded",
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Try importing a smaller file or try again later",
			Code:    "DB006",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Try importing a smaller file or try again later",
			Code:    "DB006",
		},
	},
	{
		pattern: "deadlock",
		msg: UserMessage{
			Message: "Database was busy with conflicting operations",
			Action:  "Please try again",
			Code:    "DB007",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "The import was cancelled",
			Action:  "Start a new import when ready",
			Code:    "IMP006",
		},
	},

	// =========================================================================
	// Request errors
	// =========================================================================
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Please select a CSV or Excel file to import",
			Code:    "FILE004",
		},
	},
	{
		pattern: "unknown template format",
		msg: UserMessage{
			Message: "Unknown template format",
			Action:  "Use format=json, csv or xlsx",
			Code:    "REQ001",
		},
	},
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
//
// Example:
//
//	msg := MapError(fmt.Errorf("%w: report.pdf", ErrUnsupportedFormat))
//	// msg.Code == "IMP001"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	for _, s := range sentinelMessages {
		if errors.Is(err, s.err) {
			return s.msg
		}
	}

	if msg, ok := matchPattern(err); ok {
		return msg
	}
	if errors.Is(err, ErrCommitFailed) {
		return commitFailedMessage
	}
	return defaultMessage
}

func matchPattern(err error) (UserMessage, bool) {
	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg, true
		}
	}
	return UserMessage{}, false
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

// IsUserFacing reports whether err maps to something more specific than
// the ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
