package project

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/MrJamesThe3rd/kova/internal/financial"
	"github.com/MrJamesThe3rd/kova/internal/http/resource"
	"github.com/MrJamesThe3rd/kova/internal/http/respond"
	"github.com/MrJamesThe3rd/kova/internal/milestone"
	"github.com/MrJamesThe3rd/kova/internal/project"
	"github.com/MrJamesThe3rd/kova/internal/share"
)

type Handler struct {
	svc        *project.Service
	financials *financial.Service
	shares     *share.Gate
	logger     *zap.Logger
}

func NewHandler(svc *project.Service, financials *financial.Service, shares *share.Gate, logger *zap.Logger) *Handler {
	return &Handler{
		svc:        svc,
		financials: financials,
		shares:     shares,
		logger:     logger,
	}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
	r.Get("/{id}/financials", h.financialSummary)
	r.Post("/{id}/share/regenerate", h.regenerateShare)
	r.Put("/{id}/share", h.setShare)
	r.Post("/{id}/milestones", h.addMilestone)
	r.Patch("/{id}/milestones/{milestoneId}", h.updateMilestone)
}

type milestoneSpecRequest struct {
	Title       string          `json:"title" validate:"required,max=255"`
	Description *string         `json:"description"`
	Percentage  decimal.Decimal `json:"percentage"`
	OrderIndex  int             `json:"order_index" validate:"min=0"`
}

type createProjectRequest struct {
	ClientName    string                 `json:"client_name" validate:"required,max=255"`
	ClientContact *string                `json:"client_contact" validate:"omitempty,max=255"`
	ProjectName   string                 `json:"project_name" validate:"required,max=255"`
	TotalAmount   decimal.Decimal        `json:"total_amount"`
	TemplateID    *uuid.UUID             `json:"template_id"`
	Milestones    []milestoneSpecRequest `json:"milestones" validate:"omitempty,dive"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	p, ok := respond.Principal(w, r, h.logger)
	if !ok {
		return
	}

	var req createProjectRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	specs := make([]milestone.Spec, len(req.Milestones))
	for i, m := range req.Milestones {
		specs[i] = milestone.Spec{
			Title:       m.Title,
			Description: m.Description,
			Percentage:  m.Percentage,
			OrderIndex:  m.OrderIndex,
		}
	}

	proj, err := h.svc.Create(r.Context(), p, project.CreateParams{
		ClientName:    req.ClientName,
		ClientContact: req.ClientContact,
		Name:          req.ProjectName,
		TotalAmount:   req.TotalAmount,
		TemplateID:    req.TemplateID,
		Milestones:    specs,
	})
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	respond.JSON(w, h.logger, http.StatusCreated, toResponse(proj))
}

// list returns every project of the caller's firm with its summary.
// ?expenses=false skips loading expenses and returns partial summaries.
func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	p, ok := respond.Principal(w, r, h.logger)
	if !ok {
		return
	}

	withExpenses := r.URL.Query().Get("expenses") != "false"

	summaries, err := h.financials.Portfolio(r.Context(), p, withExpenses)
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	resp := make([]projectSummaryResponse, len(summaries))
	for i, s := range summaries {
		resp[i] = projectSummaryResponse{
			projectResponse: toResponse(s.Project),
			Summary:         resource.NewSummary(s.Summary),
		}
	}

	respond.JSON(w, h.logger, http.StatusOK, resp)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	p, ok := respond.Principal(w, r, h.logger)
	if !ok {
		return
	}

	id, ok := respond.URLID(w, r, h.logger, "id")
	if !ok {
		return
	}

	proj, err := h.svc.Get(r.Context(), p, id)
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	respond.JSON(w, h.logger, http.StatusOK, toResponse(proj))
}

type updateProjectRequest struct {
	ClientName    *string         `json:"client_name" validate:"omitempty,max=255"`
	ClientContact *string         `json:"client_contact" validate:"omitempty,max=255"`
	ProjectName   *string         `json:"project_name" validate:"omitempty,max=255"`
	Status        *project.Status `json:"status"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	p, ok := respond.Principal(w, r, h.logger)
	if !ok {
		return
	}

	id, ok := respond.URLID(w, r, h.logger, "id")
	if !ok {
		return
	}

	var req updateProjectRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	proj, err := h.svc.Update(r.Context(), p, id, project.UpdateParams{
		ClientName:    req.ClientName,
		ClientContact: req.ClientContact,
		Name:          req.ProjectName,
		Status:        req.Status,
	})
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	respond.JSON(w, h.logger, http.StatusOK, toResponse(proj))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	p, ok := respond.Principal(w, r, h.logger)
	if !ok {
		return
	}

	id, ok := respond.URLID(w, r, h.logger, "id")
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), p, id); err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) financialSummary(w http.ResponseWriter, r *http.Request) {
	p, ok := respond.Principal(w, r, h.logger)
	if !ok {
		return
	}

	id, ok := respond.URLID(w, r, h.logger, "id")
	if !ok {
		return
	}

	s, err := h.financials.ProjectFinancials(r.Context(), p, id)
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	respond.JSON(w, h.logger, http.StatusOK, resource.NewSummary(s.Summary))
}

type shareTokenResponse struct {
	ShareToken uuid.UUID `json:"share_token"`
}

func (h *Handler) regenerateShare(w http.ResponseWriter, r *http.Request) {
	p, ok := respond.Principal(w, r, h.logger)
	if !ok {
		return
	}

	id, ok := respond.URLID(w, r, h.logger, "id")
	if !ok {
		return
	}

	token, err := h.shares.RegenerateToken(r.Context(), p, id)
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	respond.JSON(w, h.logger, http.StatusOK, shareTokenResponse{ShareToken: token})
}

type setShareRequest struct {
	Enabled *bool `json:"enabled" validate:"required"`
}

func (h *Handler) setShare(w http.ResponseWriter, r *http.Request) {
	p, ok := respond.Principal(w, r, h.logger)
	if !ok {
		return
	}

	id, ok := respond.URLID(w, r, h.logger, "id")
	if !ok {
		return
	}

	var req setShareRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	if err := h.shares.SetEnabled(r.Context(), p, id, *req.Enabled); err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type addMilestoneRequest struct {
	Title       string          `json:"title" validate:"required,max=255"`
	Description *string         `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	DueDate     *string         `json:"due_date"`
}

func (h *Handler) addMilestone(w http.ResponseWriter, r *http.Request) {
	p, ok := respond.Principal(w, r, h.logger)
	if !ok {
		return
	}

	id, ok := respond.URLID(w, r, h.logger, "id")
	if !ok {
		return
	}

	var req addMilestoneRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	m, err := h.svc.AddMilestone(r.Context(), p, id, project.AddMilestoneParams{
		Title:       req.Title,
		Description: req.Description,
		Amount:      req.Amount,
		DueDate:     req.DueDate,
	})
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	respond.JSON(w, h.logger, http.StatusCreated, resource.NewMilestone(m))
}

type updateMilestoneRequest struct {
	Title       *string `json:"title" validate:"omitempty,max=255"`
	Description *string `json:"description"`
	DueDate     *string `json:"due_date"`
	Cancel      bool    `json:"cancel"`
}

func (h *Handler) updateMilestone(w http.ResponseWriter, r *http.Request) {
	p, ok := respond.Principal(w, r, h.logger)
	if !ok {
		return
	}

	id, ok := respond.URLID(w, r, h.logger, "id")
	if !ok {
		return
	}

	milestoneID, ok := respond.URLID(w, r, h.logger, "milestoneId")
	if !ok {
		return
	}

	var req updateMilestoneRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	m, err := h.svc.UpdateMilestone(r.Context(), p, id, milestoneID, project.UpdateMilestoneParams{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
		Cancel:      req.Cancel,
	})
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	respond.JSON(w, h.logger, http.StatusOK, resource.NewMilestone(m))
}
