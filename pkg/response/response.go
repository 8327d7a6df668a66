// Package response writes the JSON envelope every API endpoint shares:
//
//	{"success": true, "data": ..., "pagination": {...}}
//	{"success": false, "error": "...", "details": [...]}
package response

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	apperrors "github.com/Adithya-Monish-Kumar-K/learning-hub/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/learning-hub/pkg/pagination"
)

// Issue describes one failed validation rule.
type Issue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Envelope is the top-level JSON body.
type Envelope struct {
	Success    bool             `json:"success"`
	Message    string           `json:"message,omitempty"`
	Data       any              `json:"data,omitempty"`
	Count      *int             `json:"count,omitempty"`
	Query      string           `json:"query,omitempty"`
	Pagination *pagination.Meta `json:"pagination,omitempty"`
	Error      string           `json:"error,omitempty"`
	Details    []Issue          `json:"details,omitempty"`
	Field      string           `json:"field,omitempty"`
	Slug       string           `json:"slug,omitempty"`
}

// ValidationError is returned by input validators and rendered as a 400
// with one Issue per failed rule.
type ValidationError struct {
	Issues []Issue
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "validation failed"
	}
	return "validation failed: " + e.Issues[0].Field + ": " + e.Issues[0].Message
}

// Add records an issue.
func (e *ValidationError) Add(field, code, message string) {
	e.Issues = append(e.Issues, Issue{Field: field, Message: message, Code: code})
}

// Err returns e if any issue was recorded, else nil.
func (e *ValidationError) Err() error {
	if len(e.Issues) == 0 {
		return nil
	}
	return e
}

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Default().Error("failed to write response", "error", err)
	}
}

// OK writes a successful envelope around data.
func OK(w http.ResponseWriter, status int, data any) {
	JSON(w, status, Envelope{Success: true, Data: data})
}

// List writes a successful envelope with data and its count.
func List[T any](w http.ResponseWriter, items []T) {
	if items == nil {
		items = []T{}
	}
	n := len(items)
	JSON(w, http.StatusOK, Envelope{Success: true, Data: items, Count: &n})
}

// Page writes one page of items with pagination metadata.
func Page[T any](w http.ResponseWriter, page pagination.Page[T], query string) {
	items := page.Items
	if items == nil {
		items = []T{}
	}
	meta := page.Meta
	JSON(w, http.StatusOK, Envelope{Success: true, Data: items, Query: query, Pagination: &meta})
}

// Message writes a successful envelope carrying a human-readable message.
func Message(w http.ResponseWriter, status int, message string, data any) {
	JSON(w, status, Envelope{Success: true, Message: message, Data: data})
}

// Error maps err to a status and writes a failure envelope. Validation
// errors carry their issues; AppErrors carry their message and field;
// anything else is a 500 with a generic message.
func Error(w http.ResponseWriter, err error) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		JSON(w, http.StatusBadRequest, Envelope{
			Error:   "Validation failed",
			Details: verr.Issues,
		})
		return
	}

	status := apperrors.HTTPStatusCode(err)
	env := Envelope{Error: apperrors.Message(err)}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		env.Field = appErr.Field
	}
	if status >= http.StatusInternalServerError {
		slog.Default().Error("request failed", "error", err)
	}
	JSON(w, status, env)
}

// NotFound writes a 404 naming the slug that was not found.
func NotFound(w http.ResponseWriter, message, slug string) {
	JSON(w, http.StatusNotFound, Envelope{Error: message, Slug: slug})
}
