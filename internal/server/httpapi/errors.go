package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/authkeeper/internal/api"
	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/password"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeOK[T any](w http.ResponseWriter, status int, data T) {
	writeJSON(w, status, api.Response[T]{Status: api.StatusOK, Data: data})
}

func writeError(w http.ResponseWriter, status int, code, msg string, violations ...string) {
	writeJSON(w, status, api.Response[api.ErrorData]{
		Status:  api.StatusError,
		Message: msg,
		Data:    api.ErrorData{Code: code, Violations: violations},
	})
}

// mapError translates a service error into a status code and payload. The
// messages are fixed strings so no internal detail reaches the client.
func (h *Handler) mapError(w http.ResponseWriter, r *http.Request, err error) {
	var pe *password.PolicyError
	switch {
	case errors.As(err, &pe):
		rules := make([]string, 0, len(pe.Violations))
		for _, v := range pe.Violations {
			rules = append(rules, string(v))
		}
		writeError(w, http.StatusBadRequest, api.CodePasswordPolicy, pe.Error(), rules...)
	case errors.Is(err, common.ErrEmptyInput):
		writeError(w, http.StatusBadRequest, api.CodeEmptyInput, "required field is empty")
	case errors.Is(err, common.ErrDuplicateEmail):
		writeError(w, http.StatusConflict, api.CodeDuplicateEmail, "email already registered")
	case errors.Is(err, common.ErrDuplicateUsername):
		writeError(w, http.StatusConflict, api.CodeDuplicateUsername, "username already taken")
	case errors.Is(err, common.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, api.CodeInvalidCredentials, "Invalid credentials")
	case errors.Is(err, common.ErrInvalidToken):
		writeError(w, http.StatusBadRequest, api.CodeInvalidToken, "invalid or expired token")
	case errors.Is(err, common.ErrNotFound):
		writeError(w, http.StatusNotFound, api.CodeNotFound, "not found")
	default:
		h.logger.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, api.CodeInternal, "internal error")
	}
}

func unauthenticated(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="authkeeper"`)
	writeError(w, http.StatusUnauthorized, api.CodeUnauthenticated, "authentication required")
}
