package web

// errors.go maps pipeline errors to HTTP responses.
//
// Every error is logged server-side with the request and import ids, then
// returned to the client as a core.UserMessage with a status chosen by
// statusFor.

import (
	"errors"
	"net/http"

	"github.com/JonMunkholm/catalogimport/internal/core"
	"github.com/JonMunkholm/catalogimport/internal/logging"
)

var (
	errNoFile      = errors.New("no file provided")
	errRateLimited = errors.New("rate limit exceeded")
)

// ErrorResponse represents the JSON structure for API error responses.
// Includes both machine-readable (Code) and human-readable (Message, Action) fields.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// statusFor returns the HTTP status of an import error.
func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.Is(err, core.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, core.ErrMalformedInput),
		errors.Is(err, core.ErrEmptyBatch),
		errors.Is(err, errNoFile):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrFileTooLarge), errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, core.ErrTooManyImports):
		return http.StatusServiceUnavailable
	case errors.Is(err, errRateLimited):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// respondError logs err and writes its user-facing JSON form.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error, statusCode int) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		err = core.ErrFileTooLarge
	}
	userMsg := core.MapError(err)

	log := logging.FromContext(r.Context())
	logFn := log.Warn
	if statusCode >= http.StatusInternalServerError {
		logFn = log.Error
	}
	logFn("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", err.Error(),
		"code", userMsg.Code,
	)

	writeJSON(w, r, statusCode, ErrorResponse{
		Error:   userMsg.Message,
		Message: userMsg.Message,
		Action:  userMsg.Action,
		Code:    userMsg.Code,
	})
}
