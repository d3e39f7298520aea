package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"groupkeeper-backend/internal/domain"
	"groupkeeper-backend/internal/logger"
)

// Error kinds returned to the front end.
const (
	KindNotFound        = "not_found"
	KindUnknownCode     = "unknown_code"
	KindAlreadyUsed     = "already_used"
	KindUpstream        = "upstream_error"
	KindAtCeiling       = "at_ceiling"
	KindAtFloor         = "at_floor"
	KindNotInGroup      = "not_in_group"
	KindRemoteFailure   = "remote_failure"
	KindInvalidArgument = "invalid_argument"
	KindUnauthenticated = "unauthenticated"
	KindForbidden       = "forbidden"
	KindInternal        = "internal"
)

type errorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

type envelope struct {
	OK     bool       `json:"ok"`
	Detail any        `json:"detail,omitempty"`
	Error  *errorBody `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Warn("Failed to encode response", "error", err)
	}
}

func writeOK(w http.ResponseWriter, detail any) {
	writeJSON(w, http.StatusOK, envelope{OK: true, Detail: detail})
}

func writeKind(w http.ResponseWriter, status int, kind, message string) {
	writeJSON(w, status, envelope{Error: &errorBody{Kind: kind, Message: message}})
}

// writeError classifies err into a kind and status. ErrRemoteFailure wraps
// an upstream error, so it is tested first.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, kind := classify(err)
	if status >= http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), "Request failed", "path", r.URL.Path, "kind", kind, "error", err)
	}
	writeKind(w, status, kind, err.Error())
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidArgument), errors.Is(err, domain.ErrRoleNotFound):
		return http.StatusBadRequest, KindInvalidArgument
	case errors.Is(err, domain.ErrUnknownCode):
		return http.StatusNotFound, KindUnknownCode
	case errors.Is(err, domain.ErrAlreadyUsed):
		return http.StatusConflict, KindAlreadyUsed
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, KindNotFound
	case errors.Is(err, domain.ErrNotInGroup):
		return http.StatusConflict, KindNotInGroup
	case errors.Is(err, domain.ErrAtCeiling):
		return http.StatusConflict, KindAtCeiling
	case errors.Is(err, domain.ErrAtFloor):
		return http.StatusConflict, KindAtFloor
	case errors.Is(err, domain.ErrRemoteFailure):
		return http.StatusBadGateway, KindRemoteFailure
	case errors.Is(err, domain.ErrUpstream):
		return http.StatusBadGateway, KindUpstream
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, KindUpstream
	default:
		return http.StatusInternalServerError, KindInternal
	}
}
