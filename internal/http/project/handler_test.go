package project_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	"github.com/MrJamesThe3rd/kova/internal/apperr"
	"github.com/MrJamesThe3rd/kova/internal/auth"
	"github.com/MrJamesThe3rd/kova/internal/expense"
	"github.com/MrJamesThe3rd/kova/internal/financial"
	handler "github.com/MrJamesThe3rd/kova/internal/http/project"
	"github.com/MrJamesThe3rd/kova/internal/milestone"
	"github.com/MrJamesThe3rd/kova/internal/project"
	"github.com/MrJamesThe3rd/kova/internal/share"
)

var owner = auth.Principal{UserID: uuid.New(), FirmID: uuid.New()}

type mocks struct {
	repo       *project.MockRepository
	tx         *project.MockCreateTx
	milestones *project.MockMilestoneRepository
	expenses   *financial.MockExpenses
	shares     *share.MockRepository
}

func newServer(t *testing.T, p *auth.Principal) (http.Handler, mocks) {
	t.Helper()

	ctrl := gomock.NewController(t)

	m := mocks{
		repo:       project.NewMockRepository(ctrl),
		tx:         project.NewMockCreateTx(ctrl),
		milestones: project.NewMockMilestoneRepository(ctrl),
		expenses:   financial.NewMockExpenses(ctrl),
		shares:     share.NewMockRepository(ctrl),
	}

	logger := zap.NewNop()
	projects := project.NewService(m.repo, m.milestones, milestone.NewAllocator(milestone.NewMockTemplateSource(ctrl)), project.NewMockCanceller(ctrl), logger)
	gate := share.NewGate(m.shares, projects, share.NewMockMilestoneLister(ctrl), share.NewMockExpenseLister(ctrl), logger)
	h := handler.NewHandler(projects, financial.NewService(projects, m.expenses), gate, logger)

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if p != nil {
				req = req.WithContext(auth.WithPrincipal(req.Context(), *p))
			}

			next.ServeHTTP(w, req)
		})
	})
	r.Route("/projects", h.Routes)

	return r, m
}

func do(t *testing.T, srv http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	return rec
}

func ownedProject(id uuid.UUID) *project.Project {
	return &project.Project{
		ID:          id,
		FirmID:      owner.FirmID,
		CreatedBy:   owner.UserID,
		ClientName:  "Ana Costa",
		Name:        "Kitchen",
		TotalAmount: decimal.NewFromInt(2500),
		Status:      project.StatusActive,
	}
}

func TestHandler_Create(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		setupMock  func(m mocks)
		wantStatus int
		wantField  string
	}{
		{
			name: "CustomSplit",
			body: `{"client_name":"Ana Costa","project_name":"Kitchen","total_amount":"2500",
				"milestones":[{"title":"Advance","percentage":"40","order_index":1},{"title":"Handover","percentage":60,"order_index":2}]}`,
			setupMock: func(m mocks) {
				m.repo.EXPECT().BeginCreate(gomock.Any()).Return(m.tx, nil)
				m.tx.EXPECT().InsertProject(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, p *project.Project) error {
						p.ID = uuid.New()
						return nil
					})
				m.tx.EXPECT().InsertMilestones(gomock.Any(), gomock.Len(2)).Return(nil)
				m.tx.EXPECT().Commit().Return(nil)
				m.tx.EXPECT().Rollback().Return(nil)
			},
			wantStatus: http.StatusCreated,
		},
		{
			name: "SplitNotHundred",
			body: `{"client_name":"Ana Costa","project_name":"Kitchen","total_amount":"2500",
				"milestones":[{"title":"Advance","percentage":"40","order_index":1}]}`,
			setupMock: func(m mocks) {
				m.repo.EXPECT().BeginCreate(gomock.Any()).Return(m.tx, nil)
				m.tx.EXPECT().InsertProject(gomock.Any(), gomock.Any()).Return(nil)
				m.tx.EXPECT().Rollback().Return(nil)
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "MissingClient",
			body:       `{"project_name":"Kitchen","total_amount":"2500","template_id":"` + uuid.NewString() + `"}`,
			setupMock:  func(mocks) {},
			wantStatus: http.StatusBadRequest,
			wantField:  "client_name",
		},
		{
			name:       "UntitledMilestone",
			body:       `{"client_name":"A","project_name":"K","total_amount":"10","milestones":[{"percentage":"100"}]}`,
			setupMock:  func(mocks) {},
			wantStatus: http.StatusBadRequest,
			wantField:  "milestones[0].title",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, m := newServer(t, &owner)
			tt.setupMock(m)

			rec := do(t, srv, http.MethodPost, "/projects", tt.body)

			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())

			if tt.wantField != "" {
				assert.Contains(t, rec.Body.String(), `"field":"`+tt.wantField+`"`)
			}

			if tt.wantStatus == http.StatusCreated {
				var got struct {
					Status     string `json:"status"`
					Milestones []struct {
						Amount string `json:"amount"`
					} `json:"milestones"`
				}
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
				assert.Equal(t, "active", got.Status)
				require.Len(t, got.Milestones, 2)
				assert.Equal(t, "1000", got.Milestones[0].Amount)
				assert.Equal(t, "1500", got.Milestones[1].Amount)
			}
		})
	}
}

func TestHandler_Get(t *testing.T) {
	id := uuid.New()
	outsider := auth.Principal{UserID: uuid.New(), FirmID: uuid.New()}

	tests := []struct {
		name       string
		principal  *auth.Principal
		path       string
		setupMock  func(m mocks)
		wantStatus int
	}{
		{
			name:      "Success",
			principal: &owner,
			path:      "/projects/" + id.String(),
			setupMock: func(m mocks) {
				m.repo.EXPECT().GetProject(gomock.Any(), id).Return(ownedProject(id), nil)
				m.milestones.EXPECT().ListByProject(gomock.Any(), id).Return(nil, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:      "OtherFirm",
			principal: &outsider,
			path:      "/projects/" + id.String(),
			setupMock: func(m mocks) {
				m.repo.EXPECT().GetProject(gomock.Any(), id).Return(ownedProject(id), nil)
			},
			wantStatus: http.StatusForbidden,
		},
		{
			name:      "Missing",
			principal: &owner,
			path:      "/projects/" + id.String(),
			setupMock: func(m mocks) {
				m.repo.EXPECT().GetProject(gomock.Any(), id).Return(nil, apperr.ErrNotFound)
			},
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "BadID",
			principal:  &owner,
			path:       "/projects/not-a-uuid",
			setupMock:  func(mocks) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "Anonymous",
			path:       "/projects/" + id.String(),
			setupMock:  func(mocks) {},
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, m := newServer(t, tt.principal)
			tt.setupMock(m)

			rec := do(t, srv, http.MethodGet, tt.path, "")

			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
		})
	}
}

func TestHandler_List(t *testing.T) {
	first := ownedProject(uuid.New())
	paid := &milestone.Milestone{ID: uuid.New(), Amount: decimal.NewFromInt(500), AmountPaid: decimal.NewFromInt(500), Status: milestone.StatusPaid}

	tests := []struct {
		name        string
		query       string
		withExpense bool
		wantPartial bool
	}{
		{name: "Full", query: "", withExpense: true},
		{name: "WithoutExpenses", query: "?expenses=false", wantPartial: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, m := newServer(t, &owner)

			m.repo.EXPECT().ListProjects(gomock.Any(), owner.FirmID).Return([]*project.Project{first}, nil)
			m.milestones.EXPECT().ListByProjects(gomock.Any(), []uuid.UUID{first.ID}).
				Return(map[uuid.UUID][]*milestone.Milestone{first.ID: {paid}}, nil)

			if tt.withExpense {
				m.expenses.EXPECT().ListByProjects(gomock.Any(), []uuid.UUID{first.ID}).
					Return(map[uuid.UUID][]*expense.Expense{first.ID: {{Amount: decimal.NewFromInt(100), Category: expense.CategoryLabor}}}, nil)
			}

			rec := do(t, srv, http.MethodGet, "/projects"+tt.query, "")
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			var got []struct {
				ID      uuid.UUID `json:"id"`
				Summary struct {
					Balance string `json:"balance"`
					Partial bool   `json:"partial"`
				} `json:"summary"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			require.Len(t, got, 1)
			assert.Equal(t, first.ID, got[0].ID)
			assert.Equal(t, tt.wantPartial, got[0].Summary.Partial)

			if tt.wantPartial {
				assert.Equal(t, "500", got[0].Summary.Balance)
			} else {
				assert.Equal(t, "400", got[0].Summary.Balance)
			}
		})
	}
}

func TestHandler_Share(t *testing.T) {
	id := uuid.New()

	t.Run("Regenerate", func(t *testing.T) {
		srv, m := newServer(t, &owner)

		m.repo.EXPECT().GetProject(gomock.Any(), id).Return(ownedProject(id), nil)
		m.shares.EXPECT().ReplaceShareToken(gomock.Any(), id, gomock.Any()).Return(nil)

		rec := do(t, srv, http.MethodPost, "/projects/"+id.String()+"/share/regenerate", "")
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var got struct {
			ShareToken uuid.UUID `json:"share_token"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.NotEqual(t, uuid.Nil, got.ShareToken)
	})

	t.Run("Disable", func(t *testing.T) {
		srv, m := newServer(t, &owner)

		m.repo.EXPECT().GetProject(gomock.Any(), id).Return(ownedProject(id), nil)
		m.shares.EXPECT().SetShareEnabled(gomock.Any(), id, false).Return(nil)

		rec := do(t, srv, http.MethodPut, "/projects/"+id.String()+"/share", `{"enabled":false}`)
		assert.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())
	})

	t.Run("EnabledRequired", func(t *testing.T) {
		srv, _ := newServer(t, &owner)

		rec := do(t, srv, http.MethodPut, "/projects/"+id.String()+"/share", `{}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), `"field":"enabled"`)
	})

	t.Run("ColleagueCannotRegenerate", func(t *testing.T) {
		colleague := auth.Principal{UserID: uuid.New(), FirmID: owner.FirmID}
		srv, m := newServer(t, &colleague)

		m.repo.EXPECT().GetProject(gomock.Any(), id).Return(ownedProject(id), nil)

		rec := do(t, srv, http.MethodPost, "/projects/"+id.String()+"/share/regenerate", "")
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestHandler_Delete(t *testing.T) {
	id := uuid.New()
	srv, m := newServer(t, &owner)

	m.repo.EXPECT().GetProject(gomock.Any(), id).Return(ownedProject(id), nil)
	m.repo.EXPECT().DeleteProject(gomock.Any(), id).Return(nil)

	rec := do(t, srv, http.MethodDelete, "/projects/"+id.String(), "")

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestHandler_AddMilestone(t *testing.T) {
	id := uuid.New()
	srv, m := newServer(t, &owner)

	m.repo.EXPECT().GetProject(gomock.Any(), id).Return(ownedProject(id), nil)
	m.milestones.EXPECT().AppendMilestone(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, ms *milestone.Milestone) error {
			ms.ID = uuid.New()
			ms.OrderIndex = 4
			return nil
		})

	rec := do(t, srv, http.MethodPost, "/projects/"+id.String()+"/milestones",
		`{"title":"Extra cabinets","amount":"350.50","due_date":"2026-06-30"}`)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var got struct {
		Amount     string  `json:"amount"`
		Percentage *string `json:"percentage"`
		DueDate    string  `json:"due_date"`
		OrderIndex int     `json:"order_index"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "350.5", got.Amount)
	assert.Nil(t, got.Percentage)
	assert.Equal(t, "2026-06-30", got.DueDate)
	assert.Equal(t, 4, got.OrderIndex)
}
