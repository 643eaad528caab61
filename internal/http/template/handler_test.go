package template_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	"github.com/MrJamesThe3rd/kova/internal/auth"
	handler "github.com/MrJamesThe3rd/kova/internal/http/template"
	"github.com/MrJamesThe3rd/kova/internal/template"
)

func TestHandler_List(t *testing.T) {
	p := auth.Principal{UserID: uuid.New(), FirmID: uuid.New()}

	tests := []struct {
		name       string
		listErr    error
		wantStatus int
	}{
		{name: "Success", wantStatus: http.StatusOK},
		{name: "StorageFailure", listErr: errors.New("connection refused"), wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := template.NewMockRepository(ctrl)

			if tt.listErr != nil {
				repo.EXPECT().ListVisible(gomock.Any(), p.FirmID).Return(nil, tt.listErr)
			} else {
				repo.EXPECT().ListVisible(gomock.Any(), p.FirmID).Return([]*template.Template{{
					ID:        uuid.New(),
					Name:      "Residential renovation",
					IsDefault: true,
					Items: []template.Item{
						{Title: "Advance", Percentage: decimal.NewFromInt(30), OrderIndex: 1},
						{Title: "Handover", Percentage: decimal.NewFromInt(70), OrderIndex: 2},
					},
				}}, nil)
			}

			r := chi.NewRouter()
			r.Route("/templates", handler.NewHandler(template.NewService(repo, zap.NewNop()), zap.NewNop()).Routes)

			req := httptest.NewRequest(http.MethodGet, "/templates", nil)
			req = req.WithContext(auth.WithPrincipal(req.Context(), p))

			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			require.Equal(t, tt.wantStatus, rec.Code)

			if tt.listErr != nil {
				assert.NotContains(t, rec.Body.String(), "connection refused")
				return
			}

			var got []struct {
				Name  string `json:"name"`
				Items []struct {
					Title      string `json:"title"`
					Percentage string `json:"percentage"`
				} `json:"items"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			require.Len(t, got, 1)
			require.Len(t, got[0].Items, 2)
			assert.Equal(t, "Advance", got[0].Items[0].Title)
			assert.Equal(t, "30", got[0].Items[0].Percentage)
		})
	}
}
