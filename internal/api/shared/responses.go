// Package shared holds the response envelope and request helpers common
// to all API handlers.
package shared

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/taskboardhq/taskboard-api/internal/redact"
	"github.com/taskboardhq/taskboard-api/internal/store"
)

// Meta carries response metadata common to every envelope.
type Meta struct {
	Timestamp string `json:"timestamp"`
	TraceID   string `json:"traceId,omitempty"`
}

// FieldError describes a single request field that failed validation.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Response is the uniform envelope every endpoint replies with. Success
// responses carry Data (and Pagination for list endpoints); failures
// carry Error and optionally per-field Details. Message is used by both:
// informational on success, absent on most errors.
type Response struct {
	Success    bool              `json:"success"`
	Data       any               `json:"data,omitempty"`
	Message    string            `json:"message,omitempty"`
	Error      string            `json:"error,omitempty"`
	Details    []FieldError      `json:"details,omitempty"`
	Pagination *store.Pagination `json:"pagination,omitempty"`
	Meta       Meta              `json:"meta"`
}

// ResponseOption defines a function to customize response behavior.
type ResponseOption func(*responseOptions)

// responseOptions holds configurable options for error responses.
type responseOptions struct {
	elevateLogLevel bool
}

// WithElevatedLogLevel returns a ResponseOption that raises 4xx errors to
// WARN level instead of the default DEBUG level.
func WithElevatedLogLevel() ResponseOption {
	return func(opts *responseOptions) {
		opts.elevateLogLevel = true
	}
}

func newMeta(r *http.Request) Meta {
	return Meta{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		TraceID:   GetTraceID(r.Context()),
	}
}

func writeJSON(w http.ResponseWriter, status int, body Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

// RespondWithData writes a success envelope with the given payload.
func RespondWithData(w http.ResponseWriter, r *http.Request, status int, data any) {
	writeJSON(w, status, Response{
		Success: true,
		Data:    data,
		Meta:    newMeta(r),
	})
}

// RespondWithMessage writes a success envelope carrying a human-readable
// message alongside the optional payload.
func RespondWithMessage(w http.ResponseWriter, r *http.Request, status int, data any, message string) {
	writeJSON(w, status, Response{
		Success: true,
		Data:    data,
		Message: message,
		Meta:    newMeta(r),
	})
}

// RespondWithPage writes a success envelope for a list endpoint, lifting
// the page's pagination block alongside the data.
func RespondWithPage[T any](w http.ResponseWriter, r *http.Request, status int, page store.Page[T]) {
	pagination := page.Pagination
	writeJSON(w, status, Response{
		Success:    true,
		Data:       page.Data,
		Pagination: &pagination,
		Meta:       newMeta(r),
	})
}

// RespondWithError writes a failure envelope with the given status code
// and client-safe message.
func RespondWithError(w http.ResponseWriter, r *http.Request, status int, message string) {
	slog.Debug("sending error response",
		"status_code", status,
		"message", message,
		"trace_id", GetTraceID(r.Context()),
		"path", r.URL.Path,
		"method", r.Method)

	writeJSON(w, status, Response{
		Success: false,
		Error:   message,
		Meta:    newMeta(r),
	})
}

// RespondWithValidationError writes a 400 failure envelope carrying
// per-field validation details.
func RespondWithValidationError(w http.ResponseWriter, r *http.Request, details []FieldError) {
	writeJSON(w, http.StatusBadRequest, Response{
		Success: false,
		Error:   "validation failed",
		Details: details,
		Meta:    newMeta(r),
	})
}

// RespondWithErrorAndLog writes a failure envelope and logs the detailed
// error. The raw error never reaches the client; the logged copy is
// redacted first.
//
// Log level strategy:
//   - 5xx errors: always logged at ERROR level
//   - 4xx errors: DEBUG by default, WARN with WithElevatedLogLevel
func RespondWithErrorAndLog(
	w http.ResponseWriter,
	r *http.Request,
	status int,
	userMessage string,
	err error,
	opts ...ResponseOption,
) {
	traceID := GetTraceID(r.Context())

	logAttrs := []slog.Attr{
		slog.String("trace_id", traceID),
		slog.String("path", r.URL.Path),
		slog.String("method", r.Method),
		slog.Int("status_code", status),
		slog.String("user_message", userMessage),
	}

	if err != nil {
		logAttrs = append(logAttrs,
			slog.String("error", redact.Error(err)),
			slog.String("error_type", fmt.Sprintf("%T", err)))
	}

	responseOpts := responseOptions{}
	for _, opt := range opts {
		opt(&responseOpts)
	}

	logLevel := slog.LevelDebug
	switch {
	case status >= http.StatusInternalServerError:
		logLevel = slog.LevelError
	case responseOpts.elevateLogLevel && status >= http.StatusBadRequest:
		logLevel = slog.LevelWarn
	}

	slog.LogAttrs(r.Context(), logLevel, "API error response", logAttrs...)

	writeJSON(w, status, Response{
		Success: false,
		Error:   userMessage,
		Meta: Meta{
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			TraceID:   traceID,
		},
	})
}
