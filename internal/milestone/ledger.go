package milestone

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/MrJamesThe3rd/kova/internal/apperr"
	"github.com/MrJamesThe3rd/kova/internal/auth"
	"github.com/MrJamesThe3rd/kova/internal/metrics"
	"github.com/MrJamesThe3rd/kova/internal/validate"
)

// Ledger records payments against milestones and keeps each milestone's
// AmountPaid equal to the sum of its payments.
type Ledger struct {
	repo   LedgerRepository
	logger *zap.Logger
	now    func() time.Time
}

func NewLedger(repo LedgerRepository, logger *zap.Logger) *Ledger {
	return &Ledger{repo: repo, logger: logger, now: time.Now}
}

// SetClock replaces the time source used for CompletedAt.
func (l *Ledger) SetClock(now func() time.Time) {
	l.now = now
}

type RecordPaymentParams struct {
	MilestoneID uuid.UUID
	Amount      decimal.Decimal
	PaymentDate string // YYYY-MM-DD, may be backdated or in the future
	Reference   *string
}

// PaymentOutcome is what a caller needs to report a recorded payment.
type PaymentOutcome struct {
	Milestone *Milestone
	Payment   *Payment
	FullyPaid bool
	Message   string
}

// RecordPayment appends a payment and updates the milestone aggregate in one
// transaction. The whole request is rejected when it would take AmountPaid
// past Amount.
func (l *Ledger) RecordPayment(ctx context.Context, p auth.Principal, params RecordPaymentParams) (*PaymentOutcome, error) {
	ltx, err := l.repo.BeginLedger(ctx)
	if err != nil {
		return nil, apperr.Storage("beginning ledger tx", err)
	}
	defer ltx.Rollback()

	m, firmID, err := ltx.LockMilestone(ctx, params.MilestoneID)
	if err != nil {
		return nil, apperr.Storage("locking milestone", err)
	}

	if firmID != p.FirmID {
		metrics.RejectPayment("forbidden")
		return nil, fmt.Errorf("milestone %s: %w", m.ID, apperr.ErrForbidden)
	}

	verr := &apperr.ValidationError{}
	validate.Amount(verr, "amount", params.Amount)
	paidAt := validate.Date(verr, "payment_date", params.PaymentDate)

	if err := verr.Err(); err != nil {
		metrics.RejectPayment("validation")
		return nil, err
	}

	if m.Status == StatusCancelled {
		metrics.RejectPayment("cancelled")
		return nil, apperr.Invalid("milestone_id", "status", "milestone is cancelled")
	}

	newTotal := m.AmountPaid.Add(params.Amount)
	if newTotal.GreaterThan(m.Amount) {
		metrics.RejectPayment("overshoot")
		return nil, apperr.Invalid("amount", "max",
			fmt.Sprintf("payment exceeds milestone amount, remaining %s", m.Remaining().StringFixed(2)))
	}

	payment := &Payment{
		MilestoneID: m.ID,
		Amount:      params.Amount,
		Status:      PaymentStatusPaid,
		PaidAt:      paidAt,
		Reference:   validate.OptionalText(params.Reference),
		CreatedBy:   p.UserID,
	}
	if err := ltx.InsertPayment(ctx, payment); err != nil {
		return nil, apperr.Storage("inserting payment", err)
	}

	m.AmountPaid = newTotal
	m.Settle(l.now())

	if err := ltx.UpdateAggregate(ctx, m); err != nil {
		return nil, apperr.Storage("updating milestone aggregate", err)
	}

	if err := ltx.Commit(); err != nil {
		return nil, apperr.Storage("committing payment", err)
	}

	metrics.RecordPayment(string(m.Status))
	l.logger.Info("payment recorded",
		zap.String("milestone_id", m.ID.String()),
		zap.String("amount", params.Amount.StringFixed(2)),
		zap.String("status", string(m.Status)),
	)

	return newOutcome(m, payment), nil
}

func newOutcome(m *Milestone, payment *Payment) *PaymentOutcome {
	out := &PaymentOutcome{Milestone: m, Payment: payment, FullyPaid: m.Status == StatusPaid}

	if out.FullyPaid {
		out.Message = fmt.Sprintf("Milestone %q is fully paid", m.Title)
	} else {
		out.Message = fmt.Sprintf("Recorded %s on %q, %s remaining",
			payment.Amount.StringFixed(2), m.Title, m.Remaining().StringFixed(2))
	}

	return out
}

// Cancel marks a milestone cancelled. Only milestones with nothing paid can
// be cancelled. A non-nil edit is applied to the locked milestone and saved
// in the same transaction, so a refused cancel leaves the row untouched.
func (l *Ledger) Cancel(ctx context.Context, p auth.Principal, milestoneID uuid.UUID, edit func(*Milestone)) (*Milestone, error) {
	ltx, err := l.repo.BeginLedger(ctx)
	if err != nil {
		return nil, apperr.Storage("beginning ledger tx", err)
	}
	defer ltx.Rollback()

	m, firmID, err := ltx.LockMilestone(ctx, milestoneID)
	if err != nil {
		return nil, apperr.Storage("locking milestone", err)
	}

	if firmID != p.FirmID {
		return nil, fmt.Errorf("milestone %s: %w", m.ID, apperr.ErrForbidden)
	}

	alreadyCancelled := m.Status == StatusCancelled

	if !alreadyCancelled && m.AmountPaid.IsPositive() {
		return nil, apperr.Invalid("status", "paid", "milestone with recorded payments cannot be cancelled")
	}

	if alreadyCancelled && edit == nil {
		return m, nil
	}

	if edit != nil {
		edit(m)

		if err := ltx.UpdateDetails(ctx, m); err != nil {
			return nil, apperr.Storage("updating milestone", err)
		}
	}

	if !alreadyCancelled {
		m.Status = StatusCancelled
		m.CompletedAt = nil

		if err := ltx.UpdateAggregate(ctx, m); err != nil {
			return nil, apperr.Storage("cancelling milestone", err)
		}
	}

	if err := ltx.Commit(); err != nil {
		return nil, apperr.Storage("committing cancel", err)
	}

	return m, nil
}

// History lists the payments of a milestone, newest payment date first.
type History struct {
	Payments  []*Payment
	TotalPaid decimal.Decimal
}

func (l *Ledger) History(ctx context.Context, p auth.Principal, milestoneID uuid.UUID) (*History, error) {
	firmID, err := l.repo.MilestoneFirm(ctx, milestoneID)
	if err != nil {
		return nil, apperr.Storage("resolving milestone firm", err)
	}

	if firmID != p.FirmID {
		return nil, fmt.Errorf("milestone %s: %w", milestoneID, apperr.ErrForbidden)
	}

	payments, err := l.repo.ListPayments(ctx, milestoneID)
	if err != nil {
		return nil, apperr.Storage("listing payments", err)
	}

	total := decimal.Zero
	for _, pay := range payments {
		total = total.Add(pay.Amount)
	}

	return &History{Payments: payments, TotalPaid: total}, nil
}

// ErrOverpaid reports a milestone whose payment rows sum past its amount.
// Reconcile refuses to write such a milestone.
var ErrOverpaid = errors.New("payments exceed milestone amount")

// Reconcile recomputes AmountPaid and Status of a milestone from its payment
// rows. It reports whether anything changed.
func (l *Ledger) Reconcile(ctx context.Context, milestoneID uuid.UUID) (*Milestone, bool, error) {
	ltx, err := l.repo.BeginLedger(ctx)
	if err != nil {
		return nil, false, apperr.Storage("beginning ledger tx", err)
	}
	defer ltx.Rollback()

	m, _, err := ltx.LockMilestone(ctx, milestoneID)
	if err != nil {
		return nil, false, apperr.Storage("locking milestone", err)
	}

	sum, err := ltx.SumPayments(ctx, milestoneID)
	if err != nil {
		return nil, false, apperr.Storage("summing payments", err)
	}

	if sum.GreaterThan(m.Amount) {
		return nil, false, fmt.Errorf("milestone %s: paid %s of %s: %w",
			m.ID, sum.StringFixed(2), m.Amount.StringFixed(2), ErrOverpaid)
	}

	prevStatus := m.Status
	if sum.Equal(m.AmountPaid) && (prevStatus == StatusCancelled || prevStatus == StatusFor(sum, m.Amount)) {
		return m, false, nil
	}

	m.AmountPaid = sum
	m.Settle(l.now())

	if err := ltx.UpdateAggregate(ctx, m); err != nil {
		return nil, false, apperr.Storage("updating milestone aggregate", err)
	}

	if err := ltx.Commit(); err != nil {
		return nil, false, apperr.Storage("committing reconcile", err)
	}

	l.logger.Info("milestone reconciled",
		zap.String("milestone_id", m.ID.String()),
		zap.String("amount_paid", sum.StringFixed(2)),
		zap.String("previous_status", string(prevStatus)),
		zap.String("status", string(m.Status)),
	)

	return m, true, nil
}
