// Package middleware holds the chi middleware shared by the API routes.
package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/MrJamesThe3rd/kova/internal/apperr"
	"github.com/MrJamesThe3rd/kova/internal/auth"
	"github.com/MrJamesThe3rd/kova/internal/http/respond"
)

// TokenParser turns a bearer token into a principal.
type TokenParser interface {
	Parse(raw string) (auth.Principal, error)
}

// Authenticate rejects requests without a valid bearer token and stores the
// caller's principal in the request context.
func Authenticate(tokens TokenParser, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			scheme, raw, ok := strings.Cut(r.Header.Get("Authorization"), " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || raw == "" {
				respond.Error(w, r, logger, fmt.Errorf("%w: missing bearer token", apperr.ErrUnauthorized))
				return
			}

			p, err := tokens.Parse(strings.TrimSpace(raw))
			if err != nil {
				respond.Error(w, r, logger, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithPrincipal(r.Context(), p)))
		})
	}
}
