package http_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	"github.com/MrJamesThe3rd/kova/internal/auth"
	apihttp "github.com/MrJamesThe3rd/kova/internal/http"
	"github.com/MrJamesThe3rd/kova/internal/http/expense"
	"github.com/MrJamesThe3rd/kova/internal/http/payment"
	"github.com/MrJamesThe3rd/kova/internal/http/project"
	"github.com/MrJamesThe3rd/kova/internal/http/public"
	templatehttp "github.com/MrJamesThe3rd/kova/internal/http/template"
	"github.com/MrJamesThe3rd/kova/internal/template"
)

type denyAll struct{}

func (denyAll) Allow(context.Context, string) (bool, error) { return false, nil }

func newRouter(t *testing.T, opts apihttp.Options) (http.Handler, *template.MockRepository) {
	t.Helper()

	ctrl := gomock.NewController(t)
	repo := template.NewMockRepository(ctrl)
	logger := zap.NewNop()

	opts.Logger = logger

	return apihttp.New(opts, apihttp.Handlers{
		Projects:  project.NewHandler(nil, nil, nil, logger),
		Expenses:  expense.NewHandler(nil, logger),
		Payments:  payment.NewHandler(nil, logger),
		Templates: templatehttp.NewHandler(template.NewService(repo, logger), logger),
		Public:    public.NewHandler(nil, logger),
	}), repo
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	return rec
}

func TestRouter_Healthz(t *testing.T) {
	tests := []struct {
		name       string
		ping       func(context.Context) error
		wantStatus int
	}{
		{name: "NoPing", wantStatus: http.StatusOK},
		{name: "DatabaseUp", ping: func(context.Context) error { return nil }, wantStatus: http.StatusOK},
		{name: "DatabaseDown", ping: func(context.Context) error { return errors.New("refused") }, wantStatus: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := newRouter(t, apihttp.Options{Ping: tt.ping})

			rec := serve(r, httptest.NewRequest(http.MethodGet, "/healthz", nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestRouter_Metrics(t *testing.T) {
	r, _ := newRouter(t, apihttp.Options{})

	// One request first so the duration histogram has a series.
	serve(r, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	rec := serve(r, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "kova_http_request_duration_seconds")
}

func TestRouter_Authentication(t *testing.T) {
	tokens := auth.NewTokens("router-secret", time.Hour)
	p := auth.Principal{UserID: uuid.New(), FirmID: uuid.New()}

	token, err := tokens.Issue(p)
	require.NoError(t, err)

	t.Run("NoToken", func(t *testing.T) {
		r, _ := newRouter(t, apihttp.Options{Tokens: tokens})

		rec := serve(r, httptest.NewRequest(http.MethodGet, "/api/v1/projects", nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("ValidToken", func(t *testing.T) {
		r, repo := newRouter(t, apihttp.Options{Tokens: tokens})
		repo.EXPECT().ListVisible(gomock.Any(), p.FirmID).Return(nil, nil)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/templates", nil)
		req.Header.Set("Authorization", "Bearer "+token)

		rec := serve(r, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `[]`, rec.Body.String())
	})

	t.Run("PublicNeedsNoToken", func(t *testing.T) {
		r, _ := newRouter(t, apihttp.Options{Tokens: tokens, Limiter: denyAll{}})

		rec := serve(r, httptest.NewRequest(http.MethodGet, "/api/v1/public/projects/"+uuid.NewString(), nil))

		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	})
}

func TestRouter_CORSPreflight(t *testing.T) {
	r, _ := newRouter(t, apihttp.Options{AllowedOrigins: []string{"https://app.kova.example"}})

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/projects", nil)
	req.Header.Set("Origin", "https://app.kova.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Authorization")

	rec := serve(r, req)

	assert.Equal(t, "https://app.kova.example", rec.Header().Get("Access-Control-Allow-Origin"))
}
