package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/aquidolado/aqui/internal/apperror"
	"github.com/aquidolado/aqui/internal/common"
)

// errorResponse is the error body shape shared by every endpoint:
// {"error": "...", "message": "...", "fields": {"name": "..."}}.
type errorResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// writeError translates service-layer errors into HTTP responses. Sentinel
// matching happens with errors.Is so wrapped errors map correctly; an
// *apperror.AppError in the chain contributes message and field details.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	code := "internal"

	switch {
	case errors.Is(err, common.ErrorValidation):
		status, code = http.StatusBadRequest, "validation"
	case errors.Is(err, common.ErrorNotFound), errors.Is(err, common.ErrorInvalidCode):
		status, code = http.StatusNotFound, "not_found"
	case errors.Is(err, common.ErrorUnauthorized),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired),
		errors.Is(err, common.ErrorInvalidLoginPassword):
		status, code = http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, common.ErrorForbidden),
		errors.Is(err, common.ErrorNotAMember),
		errors.Is(err, common.ErrorNotAnAdmin):
		status, code = http.StatusForbidden, "forbidden"
	case errors.Is(err, common.ErrorAlreadyExists),
		errors.Is(err, common.ErrorEmailAlreadyExists),
		errors.Is(err, common.ErrorAlreadyJoined):
		status, code = http.StatusConflict, "conflict"
	}

	body := errorResponse{Error: code, Message: err.Error()}
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		body.Message = appErr.Message
		body.Fields = appErr.Fields
	}
	if status == http.StatusInternalServerError {
		// Do not leak internals to clients.
		body.Message = "internal error"
	}
	writeJSON(w, status, body)
}

// decodeJSON reads a JSON request body into dst.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return apperror.ValidationField("body", "invalid JSON body")
	}
	return nil
}
