package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/kova/internal/apperr"
	"github.com/MrJamesThe3rd/kova/internal/milestone"
	mstore "github.com/MrJamesThe3rd/kova/internal/milestone/store"
	"github.com/MrJamesThe3rd/kova/internal/project"
)

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

const selectProjectColumns = `
	id, firm_id, created_by_user_id, client_name, client_contact, project_name,
	total_amount, status, share_uuid, share_enabled, created_at, updated_at
`

func scanProject(s scanner) (*project.Project, error) {
	var p project.Project

	var status string

	var contact sql.NullString

	if err := s.Scan(
		&p.ID, &p.FirmID, &p.CreatedBy, &p.ClientName, &contact, &p.Name,
		&p.TotalAmount, &status, &p.ShareToken, &p.ShareEnabled, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}

	p.Status = project.Status(status)

	if contact.Valid {
		p.ClientContact = &contact.String
	}

	return &p, nil
}

type createTx struct {
	tx *sql.Tx
}

func (s *Store) BeginCreate(ctx context.Context) (project.CreateTx, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, apperr.Storage("beginning project tx", err)
	}

	return &createTx{tx: dbTx}, nil
}

func (c *createTx) Commit() error   { return c.tx.Commit() }
func (c *createTx) Rollback() error { return c.tx.Rollback() }

func (c *createTx) InsertProject(ctx context.Context, p *project.Project) error {
	query := `
		INSERT INTO projects (firm_id, created_by_user_id, client_name, client_contact, project_name,
			total_amount, status, share_uuid, share_enabled)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at
	`

	err := c.tx.QueryRowContext(ctx, query,
		p.FirmID,
		p.CreatedBy,
		p.ClientName,
		p.ClientContact,
		p.Name,
		p.TotalAmount,
		p.Status,
		p.ShareToken,
		p.ShareEnabled,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return apperr.Storage("inserting project", err)
	}

	return nil
}

// InsertMilestones writes the project's initial milestones in the same
// transaction as the project row.
func (c *createTx) InsertMilestones(ctx context.Context, ms []*milestone.Milestone) error {
	return mstore.Insert(ctx, c.tx, ms)
}

func (s *Store) GetProject(ctx context.Context, id uuid.UUID) (*project.Project, error) {
	query := `SELECT ` + selectProjectColumns + ` FROM projects WHERE id = $1`

	p, err := scanProject(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}

		return nil, apperr.Storage("getting project", err)
	}

	return p, nil
}

func (s *Store) ListProjects(ctx context.Context, firmID uuid.UUID) ([]*project.Project, error) {
	query := `SELECT ` + selectProjectColumns + `
		FROM projects
		WHERE firm_id = $1
		ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, firmID)
	if err != nil {
		return nil, apperr.Storage("listing projects", err)
	}
	defer rows.Close()

	var projects []*project.Project

	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, apperr.Storage("scanning project", err)
		}

		projects = append(projects, p)
	}

	if err := rows.Err(); err != nil {
		return nil, apperr.Storage("iterating project rows", err)
	}

	return projects, nil
}

// UpdateProject writes the descriptive fields and status. The total and the
// share settings have their own paths.
func (s *Store) UpdateProject(ctx context.Context, p *project.Project) error {
	query := `
		UPDATE projects
		SET client_name = $1, client_contact = $2, project_name = $3, status = $4, updated_at = NOW()
		WHERE id = $5
		RETURNING updated_at
	`

	err := s.db.QueryRowContext(ctx, query, p.ClientName, p.ClientContact, p.Name, p.Status, p.ID).Scan(&p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.ErrNotFound
		}

		return apperr.Storage("updating project", err)
	}

	return nil
}

func (s *Store) DeleteProject(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return apperr.Storage("deleting project", err)
	}

	return expectOne(res)
}

// FindByShareToken returns the project holding token, enabled or not.
func (s *Store) FindByShareToken(ctx context.Context, token uuid.UUID) (*project.Project, error) {
	query := `SELECT ` + selectProjectColumns + ` FROM projects WHERE share_uuid = $1`

	p, err := scanProject(s.db.QueryRowContext(ctx, query, token))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}

		return nil, apperr.Storage("finding shared project", err)
	}

	return p, nil
}

// ReplaceShareToken swaps the token in a single statement, so the old value
// stops matching as soon as it commits.
func (s *Store) ReplaceShareToken(ctx context.Context, id, token uuid.UUID) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE projects SET share_uuid = $1, updated_at = NOW() WHERE id = $2`, token, id)
	if err != nil {
		return apperr.Storage("replacing share token", err)
	}

	return expectOne(res)
}

func (s *Store) SetShareEnabled(ctx context.Context, id uuid.UUID, enabled bool) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE projects SET share_enabled = $1, updated_at = NOW() WHERE id = $2`, enabled, id)
	if err != nil {
		return apperr.Storage("updating share flag", err)
	}

	return expectOne(res)
}

func expectOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return apperr.Storage("reading affected rows", err)
	}

	if n == 0 {
		return apperr.ErrNotFound
	}

	return nil
}
