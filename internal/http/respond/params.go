package respond

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/MrJamesThe3rd/kova/internal/apperr"
	"github.com/MrJamesThe3rd/kova/internal/auth"
)

// Principal returns the authenticated caller, writing a 401 when there is
// none.
func Principal(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (auth.Principal, bool) {
	p, err := auth.FromContext(r.Context())
	if err != nil {
		Error(w, r, logger, err)
		return auth.Principal{}, false
	}

	return p, true
}

// URLID parses the named URL parameter as a UUID, writing a 400 when it is
// not one.
func URLID(w http.ResponseWriter, r *http.Request, logger *zap.Logger, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		Error(w, r, logger, apperr.Invalid(name, "uuid", "must be a valid UUID"))
		return uuid.Nil, false
	}

	return id, true
}
