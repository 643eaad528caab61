package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/kova/internal/apperr"
	"github.com/MrJamesThe3rd/kova/internal/milestone"
)

// Querier is satisfied by *sql.DB and *sql.Tx.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

const selectMilestoneColumns = `
	m.id, m.project_id, m.title, m.description, m.percentage, m.amount, m.amount_paid,
	m.status, m.order_index, m.due_date, m.completed_at, m.created_at, m.updated_at
`

// scanMilestone expects the columns of selectMilestoneColumns, optionally
// followed by extra destinations.
func scanMilestone(s scanner, extra ...any) (*milestone.Milestone, error) {
	var m milestone.Milestone

	var status string

	var description sql.NullString

	var pct decimal.NullDecimal

	dest := []any{
		&m.ID, &m.ProjectID, &m.Title, &description, &pct, &m.Amount, &m.AmountPaid,
		&status, &m.OrderIndex, &m.DueDate, &m.CompletedAt, &m.CreatedAt, &m.UpdatedAt,
	}

	if err := s.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}

	m.Status = milestone.Status(status)

	if description.Valid {
		m.Description = &description.String
	}

	if pct.Valid {
		m.Percentage = &pct.Decimal
	}

	return &m, nil
}

func nullablePercentage(p *decimal.Decimal) decimal.NullDecimal {
	if p == nil {
		return decimal.NullDecimal{}
	}

	return decimal.NullDecimal{Decimal: *p, Valid: true}
}

// Insert writes ms through q, filling ID and CreatedAt.
func Insert(ctx context.Context, q Querier, ms []*milestone.Milestone) error {
	query := `
		INSERT INTO milestones (project_id, title, description, percentage, amount, amount_paid, status, order_index, due_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at
	`

	for _, m := range ms {
		err := q.QueryRowContext(ctx, query,
			m.ProjectID,
			m.Title,
			m.Description,
			nullablePercentage(m.Percentage),
			m.Amount,
			m.AmountPaid,
			m.Status,
			m.OrderIndex,
			m.DueDate,
		).Scan(&m.ID, &m.CreatedAt)
		if err != nil {
			return fmt.Errorf("inserting milestone %q: %w", m.Title, err)
		}
	}

	return nil
}

// ListByProject returns the milestones of a project in order.
func ListByProject(ctx context.Context, q Querier, projectID uuid.UUID) ([]*milestone.Milestone, error) {
	query := `SELECT ` + selectMilestoneColumns + `
		FROM milestones m
		WHERE m.project_id = $1
		ORDER BY m.order_index ASC`

	rows, err := q.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, apperr.Storage("listing milestones", err)
	}
	defer rows.Close()

	var ms []*milestone.Milestone

	for rows.Next() {
		m, err := scanMilestone(rows)
		if err != nil {
			return nil, apperr.Storage("scanning milestone", err)
		}

		ms = append(ms, m)
	}

	if err := rows.Err(); err != nil {
		return nil, apperr.Storage("iterating milestone rows", err)
	}

	return ms, nil
}

// ListByProjects groups the milestones of several projects by project id.
func ListByProjects(ctx context.Context, q Querier, projectIDs []uuid.UUID) (map[uuid.UUID][]*milestone.Milestone, error) {
	out := make(map[uuid.UUID][]*milestone.Milestone, len(projectIDs))
	if len(projectIDs) == 0 {
		return out, nil
	}

	ids := make([]string, len(projectIDs))
	for i, id := range projectIDs {
		ids[i] = id.String()
	}

	query := `SELECT ` + selectMilestoneColumns + `
		FROM milestones m
		WHERE m.project_id = ANY($1::uuid[])
		ORDER BY m.project_id, m.order_index ASC`

	rows, err := q.QueryContext(ctx, query, ids)
	if err != nil {
		return nil, apperr.Storage("listing milestones", err)
	}
	defer rows.Close()

	for rows.Next() {
		m, err := scanMilestone(rows)
		if err != nil {
			return nil, apperr.Storage("scanning milestone", err)
		}

		out[m.ProjectID] = append(out[m.ProjectID], m)
	}

	if err := rows.Err(); err != nil {
		return nil, apperr.Storage("iterating milestone rows", err)
	}

	return out, nil
}

// InsertMilestones writes a full milestone set in a single transaction.
func (s *Store) InsertMilestones(ctx context.Context, ms []*milestone.Milestone) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperr.Storage("beginning transaction", err)
	}
	defer dbTx.Rollback()

	if err := Insert(ctx, dbTx, ms); err != nil {
		return apperr.Storage("inserting milestones", err)
	}

	if err := dbTx.Commit(); err != nil {
		return apperr.Storage("committing milestones", err)
	}

	return nil
}

// AppendMilestone adds m after the project's last milestone. The project
// row is locked so concurrent appends get distinct order indexes.
func (s *Store) AppendMilestone(ctx context.Context, m *milestone.Milestone) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperr.Storage("beginning transaction", err)
	}
	defer dbTx.Rollback()

	var locked uuid.UUID
	if err := dbTx.QueryRowContext(ctx, `SELECT id FROM projects WHERE id = $1 FOR UPDATE`, m.ProjectID).Scan(&locked); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.ErrNotFound
		}

		return apperr.Storage("locking project", err)
	}

	next := `SELECT COALESCE(MAX(order_index), 0) + 1 FROM milestones WHERE project_id = $1`
	if err := dbTx.QueryRowContext(ctx, next, m.ProjectID).Scan(&m.OrderIndex); err != nil {
		return apperr.Storage("computing order index", err)
	}

	if err := Insert(ctx, dbTx, []*milestone.Milestone{m}); err != nil {
		return apperr.Storage("inserting milestone", err)
	}

	if err := dbTx.Commit(); err != nil {
		return apperr.Storage("committing milestone", err)
	}

	return nil
}

func (s *Store) GetMilestone(ctx context.Context, id uuid.UUID) (*milestone.Milestone, error) {
	query := `SELECT ` + selectMilestoneColumns + `
		FROM milestones m
		WHERE m.id = $1`

	m, err := scanMilestone(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}

		return nil, apperr.Storage("getting milestone", err)
	}

	return m, nil
}

// UpdateDetails writes the descriptive fields of a milestone. Money fields
// only change through the ledger.
func (s *Store) UpdateDetails(ctx context.Context, m *milestone.Milestone) error {
	return updateDetails(ctx, s.db, m)
}

func updateDetails(ctx context.Context, q Querier, m *milestone.Milestone) error {
	query := `
		UPDATE milestones
		SET title = $1, description = $2, due_date = $3, updated_at = NOW()
		WHERE id = $4
		RETURNING updated_at
	`

	err := q.QueryRowContext(ctx, query, m.Title, m.Description, m.DueDate, m.ID).Scan(&m.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.ErrNotFound
		}

		return apperr.Storage("updating milestone", err)
	}

	return nil
}

func (s *Store) ListByProject(ctx context.Context, projectID uuid.UUID) ([]*milestone.Milestone, error) {
	return ListByProject(ctx, s.db, projectID)
}

func (s *Store) ListByProjects(ctx context.Context, projectIDs []uuid.UUID) (map[uuid.UUID][]*milestone.Milestone, error) {
	return ListByProjects(ctx, s.db, projectIDs)
}

// ListMilestoneIDs returns every milestone id, optionally limited to one project.
func (s *Store) ListMilestoneIDs(ctx context.Context, projectID *uuid.UUID) ([]uuid.UUID, error) {
	query := `SELECT id FROM milestones`

	var args []any

	if projectID != nil {
		query += ` WHERE project_id = $1`

		args = append(args, *projectID)
	}

	query += ` ORDER BY project_id, order_index`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperr.Storage("listing milestone ids", err)
	}
	defer rows.Close()

	var ids []uuid.UUID

	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, apperr.Storage("scanning milestone id", err)
		}

		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, apperr.Storage("iterating milestone ids", err)
	}

	return ids, nil
}

func (s *Store) MilestoneFirm(ctx context.Context, milestoneID uuid.UUID) (uuid.UUID, error) {
	query := `
		SELECT p.firm_id
		FROM milestones m
		JOIN projects p ON p.id = m.project_id
		WHERE m.id = $1
	`

	var firmID uuid.UUID
	if err := s.db.QueryRowContext(ctx, query, milestoneID).Scan(&firmID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return uuid.Nil, apperr.ErrNotFound
		}

		return uuid.Nil, apperr.Storage("resolving milestone firm", err)
	}

	return firmID, nil
}

func (s *Store) ListPayments(ctx context.Context, milestoneID uuid.UUID) ([]*milestone.Payment, error) {
	query := `
		SELECT id, milestone_id, amount, status, paid_at, reference, created_by_user_id, created_at
		FROM milestone_payments
		WHERE milestone_id = $1
		ORDER BY paid_at DESC, created_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query, milestoneID)
	if err != nil {
		return nil, apperr.Storage("listing payments", err)
	}
	defer rows.Close()

	var payments []*milestone.Payment

	for rows.Next() {
		var p milestone.Payment

		var status string

		var reference sql.NullString

		if err := rows.Scan(&p.ID, &p.MilestoneID, &p.Amount, &status, &p.PaidAt, &reference, &p.CreatedBy, &p.CreatedAt); err != nil {
			return nil, apperr.Storage("scanning payment", err)
		}

		p.Status = milestone.PaymentStatus(status)

		if reference.Valid {
			p.Reference = &reference.String
		}

		payments = append(payments, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, apperr.Storage("iterating payment rows", err)
	}

	return payments, nil
}

type ledgerTx struct {
	tx *sql.Tx
}

func (s *Store) BeginLedger(ctx context.Context) (milestone.LedgerTx, error) {
	dbTx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return nil, apperr.Storage("beginning ledger tx", err)
	}

	return &ledgerTx{tx: dbTx}, nil
}

func (ltx *ledgerTx) Commit() error   { return ltx.tx.Commit() }
func (ltx *ledgerTx) Rollback() error { return ltx.tx.Rollback() }

// LockMilestone reads the milestone with FOR UPDATE, so a concurrent ledger
// transaction on the same row waits until this one ends.
func (ltx *ledgerTx) LockMilestone(ctx context.Context, id uuid.UUID) (*milestone.Milestone, uuid.UUID, error) {
	query := `SELECT ` + selectMilestoneColumns + `, p.firm_id
		FROM milestones m
		JOIN projects p ON p.id = m.project_id
		WHERE m.id = $1
		FOR UPDATE OF m`

	var firmID uuid.UUID

	m, err := scanMilestone(ltx.tx.QueryRowContext(ctx, query, id), &firmID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, uuid.Nil, apperr.ErrNotFound
		}

		return nil, uuid.Nil, apperr.Storage("locking milestone", err)
	}

	return m, firmID, nil
}

func (ltx *ledgerTx) SumPayments(ctx context.Context, milestoneID uuid.UUID) (decimal.Decimal, error) {
	var total decimal.Decimal

	err := ltx.tx.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM milestone_payments WHERE milestone_id = $1`, milestoneID,
	).Scan(&total)
	if err != nil {
		return decimal.Zero, apperr.Storage("summing payments", err)
	}

	return total, nil
}

func (ltx *ledgerTx) InsertPayment(ctx context.Context, p *milestone.Payment) error {
	query := `
		INSERT INTO milestone_payments (milestone_id, amount, status, paid_at, reference, created_by_user_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	err := ltx.tx.QueryRowContext(ctx, query,
		p.MilestoneID,
		p.Amount,
		p.Status,
		p.PaidAt.Format(time.DateOnly),
		p.Reference,
		p.CreatedBy,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return apperr.Storage("inserting payment", err)
	}

	return nil
}

// UpdateDetails writes the descriptive fields under the ledger lock.
func (ltx *ledgerTx) UpdateDetails(ctx context.Context, m *milestone.Milestone) error {
	return updateDetails(ctx, ltx.tx, m)
}

func (ltx *ledgerTx) UpdateAggregate(ctx context.Context, m *milestone.Milestone) error {
	query := `
		UPDATE milestones
		SET amount_paid = $1, status = $2, completed_at = $3, updated_at = NOW()
		WHERE id = $4
		RETURNING updated_at
	`

	if err := ltx.tx.QueryRowContext(ctx, query, m.AmountPaid, m.Status, m.CompletedAt, m.ID).Scan(&m.UpdatedAt); err != nil {
		return apperr.Storage("updating milestone aggregate", err)
	}

	return nil
}
