package template

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/MrJamesThe3rd/kova/internal/http/respond"
	"github.com/MrJamesThe3rd/kova/internal/template"
)

type Handler struct {
	svc    *template.Service
	logger *zap.Logger
}

func NewHandler(svc *template.Service, logger *zap.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
}

type itemResponse struct {
	Title       string          `json:"title"`
	Description *string         `json:"description,omitempty"`
	Percentage  decimal.Decimal `json:"percentage"`
	OrderIndex  int             `json:"order_index"`
}

type templateResponse struct {
	ID          uuid.UUID      `json:"id"`
	Name        string         `json:"name"`
	Description *string        `json:"description,omitempty"`
	IsDefault   bool           `json:"is_default"`
	Items       []itemResponse `json:"items"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	p, ok := respond.Principal(w, r, h.logger)
	if !ok {
		return
	}

	templates, err := h.svc.List(r.Context(), p)
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	resp := make([]templateResponse, len(templates))
	for i, t := range templates {
		items := make([]itemResponse, len(t.Items))
		for j, it := range t.Items {
			items[j] = itemResponse{
				Title:       it.Title,
				Description: it.Description,
				Percentage:  it.Percentage,
				OrderIndex:  it.OrderIndex,
			}
		}

		resp[i] = templateResponse{
			ID:          t.ID,
			Name:        t.Name,
			Description: t.Description,
			IsDefault:   t.IsDefault,
			Items:       items,
		}
	}

	respond.JSON(w, h.logger, http.StatusOK, resp)
}
