package payment

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/MrJamesThe3rd/kova/internal/http/resource"
	"github.com/MrJamesThe3rd/kova/internal/http/respond"
	"github.com/MrJamesThe3rd/kova/internal/milestone"
)

// Handler serves the payments of one milestone, mounted below a route
// carrying the milestone id as {id}.
type Handler struct {
	ledger *milestone.Ledger
	logger *zap.Logger
}

func NewHandler(ledger *milestone.Ledger, logger *zap.Logger) *Handler {
	return &Handler{ledger: ledger, logger: logger}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.record)
	r.Get("/", h.history)
}

type recordPaymentRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	PaymentDate string          `json:"payment_date" validate:"required"`
	Reference   *string         `json:"reference" validate:"omitempty,max=255"`
}

type recordPaymentResponse struct {
	Milestone resource.Milestone `json:"milestone"`
	Payment   resource.Payment   `json:"payment"`
	FullyPaid bool               `json:"fully_paid"`
	Message   string             `json:"message"`
}

func (h *Handler) record(w http.ResponseWriter, r *http.Request) {
	p, ok := respond.Principal(w, r, h.logger)
	if !ok {
		return
	}

	milestoneID, ok := respond.URLID(w, r, h.logger, "id")
	if !ok {
		return
	}

	var req recordPaymentRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	out, err := h.ledger.RecordPayment(r.Context(), p, milestone.RecordPaymentParams{
		MilestoneID: milestoneID,
		Amount:      req.Amount,
		PaymentDate: req.PaymentDate,
		Reference:   req.Reference,
	})
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	respond.JSON(w, h.logger, http.StatusCreated, recordPaymentResponse{
		Milestone: resource.NewMilestone(out.Milestone),
		Payment:   resource.NewPayment(out.Payment),
		FullyPaid: out.FullyPaid,
		Message:   out.Message,
	})
}

type historyResponse struct {
	Payments  []resource.Payment `json:"payments"`
	TotalPaid decimal.Decimal    `json:"total_paid"`
}

func (h *Handler) history(w http.ResponseWriter, r *http.Request) {
	p, ok := respond.Principal(w, r, h.logger)
	if !ok {
		return
	}

	milestoneID, ok := respond.URLID(w, r, h.logger, "id")
	if !ok {
		return
	}

	hist, err := h.ledger.History(r.Context(), p, milestoneID)
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	resp := historyResponse{
		Payments:  make([]resource.Payment, len(hist.Payments)),
		TotalPaid: hist.TotalPaid,
	}
	for i, pay := range hist.Payments {
		resp.Payments[i] = resource.NewPayment(pay)
	}

	respond.JSON(w, h.logger, http.StatusOK, resp)
}
