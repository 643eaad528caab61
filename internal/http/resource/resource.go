// Package resource holds the JSON shapes shared by several handler packages.
package resource

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/kova/internal/expense"
	"github.com/MrJamesThe3rd/kova/internal/financial"
	"github.com/MrJamesThe3rd/kova/internal/milestone"
)

type Milestone struct {
	ID          uuid.UUID        `json:"id"`
	ProjectID   uuid.UUID        `json:"project_id"`
	Title       string           `json:"title"`
	Description *string          `json:"description,omitempty"`
	Percentage  *decimal.Decimal `json:"percentage"`
	Amount      decimal.Decimal  `json:"amount"`
	AmountPaid  decimal.Decimal  `json:"amount_paid"`
	Status      milestone.Status `json:"status"`
	OrderIndex  int              `json:"order_index"`
	DueDate     *string          `json:"due_date,omitempty"`
	CompletedAt *time.Time       `json:"completed_at,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
}

func NewMilestone(m *milestone.Milestone) Milestone {
	resp := Milestone{
		ID:          m.ID,
		ProjectID:   m.ProjectID,
		Title:       m.Title,
		Description: m.Description,
		Percentage:  m.Percentage,
		Amount:      m.Amount,
		AmountPaid:  m.AmountPaid,
		Status:      m.Status,
		OrderIndex:  m.OrderIndex,
		CompletedAt: m.CompletedAt,
		CreatedAt:   m.CreatedAt,
	}

	if m.DueDate != nil {
		resp.DueDate = new(m.DueDate.Format(time.DateOnly))
	}

	return resp
}

func NewMilestones(ms []*milestone.Milestone) []Milestone {
	resp := make([]Milestone, len(ms))
	for i, m := range ms {
		resp[i] = NewMilestone(m)
	}

	return resp
}

type Payment struct {
	ID          uuid.UUID               `json:"id"`
	MilestoneID uuid.UUID               `json:"milestone_id"`
	Amount      decimal.Decimal         `json:"amount"`
	Status      milestone.PaymentStatus `json:"status"`
	PaidAt      string                  `json:"payment_date"`
	Reference   *string                 `json:"reference,omitempty"`
	CreatedBy   uuid.UUID               `json:"created_by"`
	CreatedAt   time.Time               `json:"created_at"`
}

func NewPayment(p *milestone.Payment) Payment {
	return Payment{
		ID:          p.ID,
		MilestoneID: p.MilestoneID,
		Amount:      p.Amount,
		Status:      p.Status,
		PaidAt:      p.PaidAt.Format(time.DateOnly),
		Reference:   p.Reference,
		CreatedBy:   p.CreatedBy,
		CreatedAt:   p.CreatedAt,
	}
}

type Expense struct {
	ID          uuid.UUID        `json:"id"`
	ProjectID   uuid.UUID        `json:"project_id"`
	Description string           `json:"description"`
	Amount      decimal.Decimal  `json:"amount"`
	Category    expense.Category `json:"category"`
	Date        string           `json:"expense_date"`
	Vendor      *string          `json:"vendor_name,omitempty"`
	AddedBy     uuid.UUID        `json:"added_by"`
	CreatedAt   time.Time        `json:"created_at"`
}

func NewExpense(e *expense.Expense) Expense {
	return Expense{
		ID:          e.ID,
		ProjectID:   e.ProjectID,
		Description: e.Description,
		Amount:      e.Amount,
		Category:    e.Category,
		Date:        e.Date.Format(time.DateOnly),
		Vendor:      e.Vendor,
		AddedBy:     e.AddedBy,
		CreatedAt:   e.CreatedAt,
	}
}

func NewExpenses(es []*expense.Expense) []Expense {
	resp := make([]Expense, len(es))
	for i, e := range es {
		resp[i] = NewExpense(e)
	}

	return resp
}

type CategoryTotal struct {
	Category expense.Category `json:"category"`
	Total    decimal.Decimal  `json:"total"`
	Share    decimal.Decimal  `json:"share"`
}

// Summary mirrors financial.Summary. A partial summary omits amount_spent
// and the category breakdown.
type Summary struct {
	TotalAmount         decimal.Decimal  `json:"total_amount"`
	AmountReceived      decimal.Decimal  `json:"amount_received"`
	AmountSpent         *decimal.Decimal `json:"amount_spent,omitempty"`
	Balance             decimal.Decimal  `json:"balance"`
	AmountOutstanding   decimal.Decimal  `json:"amount_outstanding"`
	MilestonesPaid      int              `json:"milestones_paid"`
	MilestonesPending   int              `json:"milestones_pending"`
	MilestonesCancelled int              `json:"milestones_cancelled"`
	ByCategory          []CategoryTotal  `json:"by_category,omitempty"`
	Partial             bool             `json:"partial"`
}

func NewSummary(s financial.Summary) Summary {
	resp := Summary{
		TotalAmount:         s.TotalAmount,
		AmountReceived:      s.AmountReceived,
		Balance:             s.Balance,
		AmountOutstanding:   s.AmountOutstanding,
		MilestonesPaid:      s.MilestonesPaid,
		MilestonesPending:   s.MilestonesPending,
		MilestonesCancelled: s.MilestonesCancelled,
		Partial:             s.Partial,
	}

	if s.Partial {
		return resp
	}

	resp.AmountSpent = new(s.AmountSpent)

	resp.ByCategory = make([]CategoryTotal, len(s.ByCategory))
	for i, c := range s.ByCategory {
		resp.ByCategory[i] = CategoryTotal{Category: c.Category, Total: c.Total, Share: c.Share}
	}

	return resp
}
