package expense

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/MrJamesThe3rd/kova/internal/apperr"
	"github.com/MrJamesThe3rd/kova/internal/expense"
	"github.com/MrJamesThe3rd/kova/internal/http/resource"
	"github.com/MrJamesThe3rd/kova/internal/http/respond"
)

// maxUpload caps the multipart form of an import.
const maxUpload = 10 << 20

// Handler serves the expenses of one project. It is mounted below a route
// carrying the project id as {id}.
type Handler struct {
	svc    *expense.Service
	logger *zap.Logger
}

func NewHandler(svc *expense.Service, logger *zap.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Post("/import", h.importCSV)
	r.Delete("/{expenseId}", h.delete)
}

type createExpenseRequest struct {
	Description string           `json:"description" validate:"required,max=500"`
	Amount      decimal.Decimal  `json:"amount"`
	Category    expense.Category `json:"category" validate:"required"`
	ExpenseDate string           `json:"expense_date" validate:"required"`
	VendorName  *string          `json:"vendor_name" validate:"omitempty,max=255"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	p, ok := respond.Principal(w, r, h.logger)
	if !ok {
		return
	}

	projectID, ok := respond.URLID(w, r, h.logger, "id")
	if !ok {
		return
	}

	var req createExpenseRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	e, err := h.svc.Create(r.Context(), p, projectID, expense.CreateParams{
		Description: req.Description,
		Amount:      req.Amount,
		Category:    req.Category,
		Date:        req.ExpenseDate,
		Vendor:      req.VendorName,
	})
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	respond.JSON(w, h.logger, http.StatusCreated, resource.NewExpense(e))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	p, ok := respond.Principal(w, r, h.logger)
	if !ok {
		return
	}

	projectID, ok := respond.URLID(w, r, h.logger, "id")
	if !ok {
		return
	}

	q := r.URL.Query()
	filter := expense.ListFilter{
		Sort:  expense.SortField(q.Get("sort")),
		Order: expense.SortOrder(q.Get("order")),
	}

	if c := q.Get("category"); c != "" {
		filter.Category = new(expense.Category(c))
	}

	es, err := h.svc.List(r.Context(), p, projectID, filter)
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	respond.JSON(w, h.logger, http.StatusOK, resource.NewExpenses(es))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	p, ok := respond.Principal(w, r, h.logger)
	if !ok {
		return
	}

	projectID, ok := respond.URLID(w, r, h.logger, "id")
	if !ok {
		return
	}

	expenseID, ok := respond.URLID(w, r, h.logger, "expenseId")
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), p, projectID, expenseID); err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type importResponse struct {
	Imported int                `json:"imported"`
	Expenses []resource.Expense `json:"expenses"`
}

func (h *Handler) importCSV(w http.ResponseWriter, r *http.Request) {
	p, ok := respond.Principal(w, r, h.logger)
	if !ok {
		return
	}

	projectID, ok := respond.URLID(w, r, h.logger, "id")
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(maxUpload); err != nil {
		respond.Error(w, r, h.logger, apperr.Invalid("file", "multipart", "failed to parse form: "+err.Error()))
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		respond.Error(w, r, h.logger, apperr.Invalid("file", "required", "is required"))
		return
	}
	defer file.Close()

	es, err := h.svc.Import(r.Context(), p, projectID, file)
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	respond.JSON(w, h.logger, http.StatusCreated, importResponse{
		Imported: len(es),
		Expenses: resource.NewExpenses(es),
	})
}
