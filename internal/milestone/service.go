package milestone

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=milestone

// TemplateSource resolves a template visible to firmID into the split it
// describes.
type TemplateSource interface {
	TemplateSplit(ctx context.Context, firmID, templateID uuid.UUID) ([]Spec, error)
}

// Inserter persists freshly built milestones. Implementations fill in ID
// and CreatedAt. Project creation passes its transaction here so the
// project and its milestones land together.
type Inserter interface {
	InsertMilestones(ctx context.Context, ms []*Milestone) error
}

// LedgerRepository is the storage the payment ledger needs.
type LedgerRepository interface {
	BeginLedger(ctx context.Context) (LedgerTx, error)
	ListPayments(ctx context.Context, milestoneID uuid.UUID) ([]*Payment, error)
	// MilestoneFirm returns the firm owning the milestone's project.
	MilestoneFirm(ctx context.Context, milestoneID uuid.UUID) (uuid.UUID, error)
}

// LedgerTx is a database transaction scoped to one milestone. LockMilestone
// holds the row until Commit or Rollback, so concurrent payments against
// the same milestone are applied one after another.
type LedgerTx interface {
	LockMilestone(ctx context.Context, id uuid.UUID) (*Milestone, uuid.UUID, error)
	SumPayments(ctx context.Context, milestoneID uuid.UUID) (decimal.Decimal, error)
	InsertPayment(ctx context.Context, p *Payment) error
	UpdateAggregate(ctx context.Context, m *Milestone) error
	UpdateDetails(ctx context.Context, m *Milestone) error
	Commit() error
	Rollback() error
}
