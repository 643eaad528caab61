// Package public serves the unauthenticated share view of a project.
package public

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/MrJamesThe3rd/kova/internal/http/resource"
	"github.com/MrJamesThe3rd/kova/internal/http/respond"
	"github.com/MrJamesThe3rd/kova/internal/project"
	"github.com/MrJamesThe3rd/kova/internal/share"
)

type Handler struct {
	gate   *share.Gate
	logger *zap.Logger
}

func NewHandler(gate *share.Gate, logger *zap.Logger) *Handler {
	return &Handler{gate: gate, logger: logger}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/{token}", h.get)
}

type viewResponse struct {
	ProjectName string               `json:"project_name"`
	ClientName  string               `json:"client_name"`
	TotalAmount decimal.Decimal      `json:"total_amount"`
	Status      project.Status       `json:"status"`
	Milestones  []resource.Milestone `json:"milestones"`
	Expenses    []resource.Expense   `json:"expenses"`
	Summary     resource.Summary     `json:"summary"`
}

// get resolves a share token. Malformed, unknown and disabled tokens all
// produce the same 404.
func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	v, err := h.gate.ResolveSharedProject(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	w.Header().Set("Cache-Control", "no-store")

	respond.JSON(w, h.logger, http.StatusOK, viewResponse{
		ProjectName: v.ProjectName,
		ClientName:  v.ClientName,
		TotalAmount: v.Summary.TotalAmount,
		Status:      v.Status,
		Milestones:  resource.NewMilestones(v.Milestones),
		Expenses:    resource.NewExpenses(v.Expenses),
		Summary:     resource.NewSummary(v.Summary),
	})
}
