package payment_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	"github.com/MrJamesThe3rd/kova/internal/auth"
	handler "github.com/MrJamesThe3rd/kova/internal/http/payment"
	"github.com/MrJamesThe3rd/kova/internal/milestone"
)

var owner = auth.Principal{UserID: uuid.New(), FirmID: uuid.New()}

func newServer(t *testing.T) (http.Handler, *milestone.MockLedgerRepository, *milestone.MockLedgerTx) {
	t.Helper()

	ctrl := gomock.NewController(t)
	repo := milestone.NewMockLedgerRepository(ctrl)
	ltx := milestone.NewMockLedgerTx(ctrl)

	ledger := milestone.NewLedger(repo, zap.NewNop())
	ledger.SetClock(func() time.Time { return time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC) })

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(auth.WithPrincipal(req.Context(), owner)))
		})
	})
	r.Route("/milestones/{id}/payments", handler.NewHandler(ledger, zap.NewNop()).Routes)

	return r, repo, ltx
}

func TestHandler_Record(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name          string
		body          string
		paid          string
		wantStatus    int
		wantFullyPaid bool
		wantField     string
	}{
		{
			name:          "Completes",
			body:          `{"amount":"600","payment_date":"2026-03-28","reference":"TRF-118"}`,
			paid:          "400",
			wantStatus:    http.StatusCreated,
			wantFullyPaid: true,
		},
		{
			name:       "Partial",
			body:       `{"amount":100.5,"payment_date":"2026-03-28"}`,
			paid:       "0",
			wantStatus: http.StatusCreated,
		},
		{
			name:       "Overshoot",
			body:       `{"amount":"600.01","payment_date":"2026-03-28"}`,
			paid:       "400",
			wantStatus: http.StatusBadRequest,
			wantField:  "amount",
		},
		{
			name:       "BadDate",
			body:       `{"amount":"10","payment_date":"28/03/2026"}`,
			paid:       "0",
			wantStatus: http.StatusBadRequest,
			wantField:  "payment_date",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, repo, ltx := newServer(t)

			m := &milestone.Milestone{
				ID:         id,
				Title:      "Execution",
				Amount:     decimal.NewFromInt(1000),
				AmountPaid: decimal.RequireFromString(tt.paid),
				Status:     milestone.StatusFor(decimal.RequireFromString(tt.paid), decimal.NewFromInt(1000)),
			}

			repo.EXPECT().BeginLedger(gomock.Any()).Return(ltx, nil)
			ltx.EXPECT().LockMilestone(gomock.Any(), id).Return(m, owner.FirmID, nil)
			ltx.EXPECT().Rollback().Return(nil)

			if tt.wantStatus == http.StatusCreated {
				ltx.EXPECT().InsertPayment(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, p *milestone.Payment) error {
						p.ID = uuid.New()
						return nil
					})
				ltx.EXPECT().UpdateAggregate(gomock.Any(), m).Return(nil)
				ltx.EXPECT().Commit().Return(nil)
			}

			req := httptest.NewRequest(http.MethodPost, "/milestones/"+id.String()+"/payments", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			srv.ServeHTTP(rec, req)

			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())

			if tt.wantField != "" {
				assert.Contains(t, rec.Body.String(), `"field":"`+tt.wantField+`"`)
				return
			}

			var got struct {
				FullyPaid bool   `json:"fully_paid"`
				Message   string `json:"message"`
				Payment   struct {
					PaymentDate string `json:"payment_date"`
				} `json:"payment"`
				Milestone struct {
					Status string `json:"status"`
				} `json:"milestone"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			assert.Equal(t, tt.wantFullyPaid, got.FullyPaid)
			assert.NotEmpty(t, got.Message)
			assert.Equal(t, "2026-03-28", got.Payment.PaymentDate)

			if tt.wantFullyPaid {
				assert.Equal(t, "paid", got.Milestone.Status)
			} else {
				assert.Equal(t, "partially_paid", got.Milestone.Status)
			}
		})
	}
}

func TestHandler_Record_OtherFirm(t *testing.T) {
	srv, repo, ltx := newServer(t)
	id := uuid.New()

	repo.EXPECT().BeginLedger(gomock.Any()).Return(ltx, nil)
	ltx.EXPECT().LockMilestone(gomock.Any(), id).Return(&milestone.Milestone{ID: id}, uuid.New(), nil)
	ltx.EXPECT().Rollback().Return(nil)

	req := httptest.NewRequest(http.MethodPost, "/milestones/"+id.String()+"/payments",
		strings.NewReader(`{"amount":"10","payment_date":"2026-03-28"}`))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestHandler_History(t *testing.T) {
	srv, repo, _ := newServer(t)
	id := uuid.New()

	repo.EXPECT().MilestoneFirm(gomock.Any(), id).Return(owner.FirmID, nil)
	repo.EXPECT().ListPayments(gomock.Any(), id).Return([]*milestone.Payment{
		{ID: uuid.New(), MilestoneID: id, Amount: decimal.NewFromInt(300), PaidAt: time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC)},
		{ID: uuid.New(), MilestoneID: id, Amount: decimal.RequireFromString("99.99"), PaidAt: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)},
	}, nil)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/milestones/"+id.String()+"/payments", nil))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var got struct {
		Payments []struct {
			PaymentDate string `json:"payment_date"`
		} `json:"payments"`
		TotalPaid string `json:"total_paid"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got.Payments, 2)
	assert.Equal(t, "2026-03-20", got.Payments[0].PaymentDate)
	assert.Equal(t, "399.99", got.TotalPaid)
}
