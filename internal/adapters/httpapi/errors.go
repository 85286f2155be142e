package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"clubtracker-backend/internal/app/attendance"
	"clubtracker-backend/internal/app/events"
	"clubtracker-backend/internal/app/hours"
	"clubtracker-backend/internal/app/meetings"
	"clubtracker-backend/internal/app/members"
	"clubtracker-backend/internal/app/roster"
	"clubtracker-backend/internal/app/scan"
)

type errorBody struct {
	Code      string         `json:"code"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details,omitempty"`
	RequestID string         `json:"requestId,omitempty"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string, details map[string]any) {
	resp := errorResponse{Error: errorBody{
		Code:      code,
		Message:   message,
		Details:   details,
		RequestID: middleware.GetReqID(r.Context()),
	}}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

// writeAppError maps the per-usecase error types onto the shared envelope.
// Anything unrecognized is a plain 500.
func writeAppError(w http.ResponseWriter, r *http.Request, err error) {
	status, code, message, details := 0, "", "", map[string]any(nil)
	switch {
	case asAppError(err, func(e *members.Error) { status, code, message, details = e.Status, e.Code, e.Message, e.Details }):
	case asAppError(err, func(e *meetings.Error) { status, code, message, details = e.Status, e.Code, e.Message, e.Details }):
	case asAppError(err, func(e *events.Error) { status, code, message, details = e.Status, e.Code, e.Message, e.Details }):
	case asAppError(err, func(e *attendance.Error) { status, code, message, details = e.Status, e.Code, e.Message, e.Details }):
	case asAppError(err, func(e *hours.Error) { status, code, message, details = e.Status, e.Code, e.Message, e.Details }):
	case asAppError(err, func(e *roster.Error) { status, code, message, details = e.Status, e.Code, e.Message, e.Details }):
	case asAppError(err, func(e *scan.Error) { status, code, message, details = e.Status, e.Code, e.Message, e.Details }):
	default:
		writeError(w, r, http.StatusInternalServerError, "INTERNAL", "internal server error", nil)
		return
	}
	writeError(w, r, status, code, message, details)
}

func asAppError[E error](err error, capture func(E)) bool {
	var e E
	if errors.As(err, &e) {
		capture(e)
		return true
	}
	return false
}
