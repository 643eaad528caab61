package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/kova/internal/apperr"
	"github.com/MrJamesThe3rd/kova/internal/template"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

const selectTemplateColumns = `t.id, t.firm_id, t.name, t.description, t.is_default, t.created_by_user_id, t.created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanTemplate(s scanner) (*template.Template, error) {
	var t template.Template

	var description sql.NullString

	if err := s.Scan(&t.ID, &t.FirmID, &t.Name, &description, &t.IsDefault, &t.CreatedBy, &t.CreatedAt); err != nil {
		return nil, err
	}

	if description.Valid {
		t.Description = &description.String
	}

	return &t, nil
}

func (s *Store) ListVisible(ctx context.Context, firmID uuid.UUID) ([]*template.Template, error) {
	query := `SELECT ` + selectTemplateColumns + `
		FROM milestone_templates t
		WHERE t.is_default OR t.firm_id = $1
		ORDER BY t.is_default DESC, t.name ASC`

	rows, err := s.db.QueryContext(ctx, query, firmID)
	if err != nil {
		return nil, apperr.Storage("listing templates", err)
	}
	defer rows.Close()

	var templates []*template.Template

	byID := make(map[uuid.UUID]*template.Template)

	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, apperr.Storage("scanning template", err)
		}

		templates = append(templates, t)
		byID[t.ID] = t
	}

	if err := rows.Err(); err != nil {
		return nil, apperr.Storage("iterating template rows", err)
	}

	if len(templates) == 0 {
		return templates, nil
	}

	ids := make([]string, 0, len(byID))
	for id := range byID {
		ids = append(ids, id.String())
	}

	items, err := s.listItems(ctx, `template_id = ANY($1::uuid[])`, ids)
	if err != nil {
		return nil, err
	}

	for _, it := range items {
		t := byID[it.TemplateID]
		t.Items = append(t.Items, it)
	}

	return templates, nil
}

func (s *Store) GetVisible(ctx context.Context, firmID, id uuid.UUID) (*template.Template, error) {
	query := `SELECT ` + selectTemplateColumns + `
		FROM milestone_templates t
		WHERE t.id = $1 AND (t.is_default OR t.firm_id = $2)`

	t, err := scanTemplate(s.db.QueryRowContext(ctx, query, id, firmID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}

		return nil, apperr.Storage("getting template", err)
	}

	t.Items, err = s.listItems(ctx, `template_id = $1`, id)
	if err != nil {
		return nil, err
	}

	return t, nil
}

func (s *Store) listItems(ctx context.Context, where string, arg any) ([]template.Item, error) {
	query := `
		SELECT id, template_id, title, description, percentage, order_index
		FROM milestone_template_items
		WHERE ` + where + `
		ORDER BY template_id, order_index ASC`

	rows, err := s.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, apperr.Storage("listing template items", err)
	}
	defer rows.Close()

	var items []template.Item

	for rows.Next() {
		var it template.Item

		var description sql.NullString

		if err := rows.Scan(&it.ID, &it.TemplateID, &it.Title, &description, &it.Percentage, &it.OrderIndex); err != nil {
			return nil, apperr.Storage("scanning template item", err)
		}

		if description.Valid {
			it.Description = &description.String
		}

		items = append(items, it)
	}

	if err := rows.Err(); err != nil {
		return nil, apperr.Storage("iterating template item rows", err)
	}

	return items, nil
}

// UpsertDefault inserts the default template or, when one with the same name
// exists, replaces its description and items.
func (s *Store) UpsertDefault(ctx context.Context, t *template.Template) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperr.Storage("beginning transaction", err)
	}
	defer dbTx.Rollback()

	query := `
		INSERT INTO milestone_templates (name, description, is_default)
		VALUES ($1, $2, TRUE)
		ON CONFLICT (name) WHERE is_default DO UPDATE SET description = EXCLUDED.description
		RETURNING id, created_at
	`

	if err := dbTx.QueryRowContext(ctx, query, t.Name, t.Description).Scan(&t.ID, &t.CreatedAt); err != nil {
		return apperr.Storage("upserting template", err)
	}

	if _, err := dbTx.ExecContext(ctx, `DELETE FROM milestone_template_items WHERE template_id = $1`, t.ID); err != nil {
		return apperr.Storage("clearing template items", err)
	}

	itemQuery := `
		INSERT INTO milestone_template_items (template_id, title, description, percentage, order_index)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	for i := range t.Items {
		it := &t.Items[i]
		it.TemplateID = t.ID

		if err := dbTx.QueryRowContext(ctx, itemQuery, t.ID, it.Title, it.Description, it.Percentage, it.OrderIndex).Scan(&it.ID); err != nil {
			return apperr.Storage("inserting template item", err)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return apperr.Storage("committing template", err)
	}

	return nil
}
