package store

import (
	"context"
	"database/sql"
	"errors"
	"hash/fnv"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/kova/internal/apperr"
	"github.com/MrJamesThe3rd/kova/internal/firm"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func ensureLockKey(userID uuid.UUID) int64 {
	h := fnv.New64a()
	h.Write([]byte("ensure-firm"))
	h.Write(userID[:])

	return int64(h.Sum64())
}

func (s *Store) EnsureOwner(ctx context.Context, f *firm.Firm, u *firm.User) (bool, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, apperr.Storage("beginning ensure tx", err)
	}
	defer dbTx.Rollback()

	if _, err := dbTx.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", ensureLockKey(u.ID)); err != nil {
		return false, apperr.Storage("acquiring ensure lock", err)
	}

	existing := `
		SELECT f.id, f.name, f.created_at, u.firm_id, u.created_at
		FROM users u
		JOIN firms f ON f.id = u.firm_id
		WHERE u.id = $1
	`

	err = dbTx.QueryRowContext(ctx, existing, u.ID).Scan(&f.ID, &f.Name, &f.CreatedAt, &u.FirmID, &u.CreatedAt)
	if err == nil {
		return false, dbTx.Commit()
	}

	if !errors.Is(err, sql.ErrNoRows) {
		return false, apperr.Storage("looking up user", err)
	}

	if err := dbTx.QueryRowContext(ctx,
		`INSERT INTO firms (name) VALUES ($1) RETURNING id, created_at`, f.Name,
	).Scan(&f.ID, &f.CreatedAt); err != nil {
		return false, apperr.Storage("creating firm", err)
	}

	u.FirmID = f.ID

	if err := dbTx.QueryRowContext(ctx,
		`INSERT INTO users (id, firm_id, email, full_name) VALUES ($1, $2, $3, $4) RETURNING created_at`,
		u.ID, u.FirmID, u.Email, u.FullName,
	).Scan(&u.CreatedAt); err != nil {
		return false, apperr.Storage("creating user", err)
	}

	if err := dbTx.Commit(); err != nil {
		return false, apperr.Storage("committing firm", err)
	}

	return true, nil
}

func (s *Store) GetUser(ctx context.Context, id uuid.UUID) (*firm.User, error) {
	var u firm.User

	var fullName sql.NullString

	err := s.db.QueryRowContext(ctx,
		`SELECT id, firm_id, email, full_name, created_at FROM users WHERE id = $1`, id,
	).Scan(&u.ID, &u.FirmID, &u.Email, &fullName, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}

		return nil, apperr.Storage("getting user", err)
	}

	if fullName.Valid {
		u.FullName = &fullName.String
	}

	return &u, nil
}
