package milestone

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status is the payment state of a milestone. Everything except
// StatusCancelled is derived from AmountPaid and Amount.
type Status string

const (
	StatusPending       Status = "pending"
	StatusPartiallyPaid Status = "partially_paid"
	StatusPaid          Status = "paid"
	StatusCancelled     Status = "cancelled"
)

// StatusFor derives the status of an active milestone from its paid total.
func StatusFor(paid, amount decimal.Decimal) Status {
	switch {
	case !paid.IsPositive():
		return StatusPending
	case paid.GreaterThanOrEqual(amount):
		return StatusPaid
	default:
		return StatusPartiallyPaid
	}
}

// Milestone is one payment stage of a project.
type Milestone struct {
	ID          uuid.UUID
	ProjectID   uuid.UUID
	Title       string
	Description *string
	Percentage  *decimal.Decimal // nil for milestones added after creation
	Amount      decimal.Decimal
	AmountPaid  decimal.Decimal
	Status      Status
	OrderIndex  int
	DueDate     *time.Time
	CompletedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}

// Remaining is the amount still owed on the milestone.
func (m *Milestone) Remaining() decimal.Decimal {
	return m.Amount.Sub(m.AmountPaid)
}

// Settle recomputes Status and CompletedAt after AmountPaid changed.
// Cancelled milestones are left alone.
func (m *Milestone) Settle(now time.Time) {
	if m.Status == StatusCancelled {
		return
	}

	next := StatusFor(m.AmountPaid, m.Amount)

	switch {
	case next == StatusPaid && m.Status != StatusPaid:
		m.CompletedAt = &now
	case next != StatusPaid:
		m.CompletedAt = nil
	}

	m.Status = next
}

type PaymentStatus string

const PaymentStatusPaid PaymentStatus = "paid"

// Payment is an immutable ledger entry against a milestone.
type Payment struct {
	ID          uuid.UUID
	MilestoneID uuid.UUID
	Amount      decimal.Decimal
	Status      PaymentStatus
	PaidAt      time.Time // calendar date
	Reference   *string
	CreatedBy   uuid.UUID
	CreatedAt   time.Time
}
