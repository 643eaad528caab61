package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/kova/internal/apperr"
	"github.com/MrJamesThe3rd/kova/internal/expense"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// rowQuerier is satisfied by *sql.DB and *sql.Tx.
type rowQuerier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

const selectExpenseColumns = `
	id, project_id, description, amount, category, expense_date, vendor_name, added_by_user_id, created_at
`

func scanExpense(s scanner) (*expense.Expense, error) {
	var e expense.Expense

	var category string

	var vendor sql.NullString

	if err := s.Scan(
		&e.ID, &e.ProjectID, &e.Description, &e.Amount, &category, &e.Date, &vendor, &e.AddedBy, &e.CreatedAt,
	); err != nil {
		return nil, err
	}

	e.Category = expense.Category(category)

	if vendor.Valid {
		e.Vendor = &vendor.String
	}

	return &e, nil
}

func insert(ctx context.Context, q rowQuerier, e *expense.Expense) error {
	query := `
		INSERT INTO expenses (project_id, description, amount, category, expense_date, vendor_name, added_by_user_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`

	return q.QueryRowContext(ctx, query,
		e.ProjectID,
		e.Description,
		e.Amount,
		e.Category,
		e.Date,
		e.Vendor,
		e.AddedBy,
	).Scan(&e.ID, &e.CreatedAt)
}

func (s *Store) Insert(ctx context.Context, e *expense.Expense) error {
	if err := insert(ctx, s.db, e); err != nil {
		return apperr.Storage("inserting expense", err)
	}

	return nil
}

func (s *Store) InsertBatch(ctx context.Context, es []*expense.Expense) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperr.Storage("beginning transaction", err)
	}
	defer dbTx.Rollback()

	for _, e := range es {
		if err := insert(ctx, dbTx, e); err != nil {
			return apperr.Storage(fmt.Sprintf("inserting expense %q", e.Description), err)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return apperr.Storage("committing expenses", err)
	}

	return nil
}

func (s *Store) Get(ctx context.Context, id uuid.UUID) (*expense.Expense, error) {
	query := `SELECT ` + selectExpenseColumns + ` FROM expenses WHERE id = $1`

	e, err := scanExpense(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}

		return nil, apperr.Storage("getting expense", err)
	}

	return e, nil
}

var sortColumns = map[expense.SortField]string{
	expense.SortDate:    "expense_date",
	expense.SortAmount:  "amount",
	expense.SortCreated: "created_at",
}

func (s *Store) List(ctx context.Context, projectID uuid.UUID, filter expense.ListFilter) ([]*expense.Expense, error) {
	query := `SELECT ` + selectExpenseColumns + ` FROM expenses WHERE project_id = $1`
	args := []any{projectID}

	if filter.Category != nil {
		query += ` AND category = $2`

		args = append(args, *filter.Category)
	}

	column, ok := sortColumns[filter.Sort]
	if !ok {
		column = sortColumns[expense.SortDate]
	}

	direction := "DESC"
	if filter.Order == expense.OrderAsc {
		direction = "ASC"
	}

	query += fmt.Sprintf(` ORDER BY %s %s, created_at %s`, column, direction, direction)

	return s.query(ctx, query, args...)
}

// ListByProject returns every expense of a project, newest first.
func (s *Store) ListByProject(ctx context.Context, projectID uuid.UUID) ([]*expense.Expense, error) {
	return s.List(ctx, projectID, expense.ListFilter{})
}

// ListByProjects groups the expenses of several projects by project id.
func (s *Store) ListByProjects(ctx context.Context, projectIDs []uuid.UUID) (map[uuid.UUID][]*expense.Expense, error) {
	out := make(map[uuid.UUID][]*expense.Expense, len(projectIDs))
	if len(projectIDs) == 0 {
		return out, nil
	}

	ids := make([]string, len(projectIDs))
	for i, id := range projectIDs {
		ids[i] = id.String()
	}

	query := `SELECT ` + selectExpenseColumns + `
		FROM expenses
		WHERE project_id = ANY($1::uuid[])
		ORDER BY project_id, expense_date DESC, created_at DESC`

	es, err := s.query(ctx, query, ids)
	if err != nil {
		return nil, err
	}

	for _, e := range es {
		out[e.ProjectID] = append(out[e.ProjectID], e)
	}

	return out, nil
}

func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = $1`, id)
	if err != nil {
		return apperr.Storage("deleting expense", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return apperr.Storage("reading affected rows", err)
	}

	if n == 0 {
		return apperr.ErrNotFound
	}

	return nil
}

func (s *Store) query(ctx context.Context, query string, args ...any) ([]*expense.Expense, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperr.Storage("listing expenses", err)
	}
	defer rows.Close()

	var es []*expense.Expense

	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, apperr.Storage("scanning expense", err)
		}

		es = append(es, e)
	}

	if err := rows.Err(); err != nil {
		return nil, apperr.Storage("iterating expense rows", err)
	}

	return es, nil
}
