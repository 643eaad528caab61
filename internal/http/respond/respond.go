// Package respond writes JSON responses and maps domain errors to HTTP
// statuses.
package respond

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/MrJamesThe3rd/kova/internal/apperr"
	"github.com/MrJamesThe3rd/kova/internal/validate"
)

// maxBody caps JSON request bodies.
const maxBody = 1 << 20

type errorBody struct {
	Error  string              `json:"error"`
	Fields []apperr.FieldError `json:"fields,omitempty"`
}

func JSON(w http.ResponseWriter, logger *zap.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("failed to encode response", zap.Error(err))
	}
}

// Error writes err with the status of its kind. Storage failures and
// unclassified errors are logged and reported without detail.
func Error(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	var verr *apperr.ValidationError

	switch {
	case errors.As(err, &verr):
		JSON(w, logger, http.StatusBadRequest, errorBody{Error: "validation failed", Fields: verr.Fields})
	case errors.Is(err, apperr.ErrUnauthorized):
		JSON(w, logger, http.StatusUnauthorized, errorBody{Error: "unauthorized"})
	case errors.Is(err, apperr.ErrForbidden):
		JSON(w, logger, http.StatusForbidden, errorBody{Error: "forbidden"})
	case errors.Is(err, apperr.ErrNotFound):
		JSON(w, logger, http.StatusNotFound, errorBody{Error: "not found"})
	default:
		logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		JSON(w, logger, http.StatusInternalServerError, errorBody{Error: "internal error"})
	}
}

// Decode reads a JSON body into dst and runs its validate tags.
func Decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBody))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		return apperr.Invalid("body", "json", fmt.Sprintf("invalid JSON: %v", err))
	}

	return validate.Struct(dst)
}
