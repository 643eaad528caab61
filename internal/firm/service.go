package firm

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/MrJamesThe3rd/kova/internal/apperr"
	"github.com/MrJamesThe3rd/kova/internal/auth"
	"github.com/MrJamesThe3rd/kova/internal/validate"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=firm
type Repository interface {
	// EnsureOwner creates f with u as its first user unless u already
	// exists, in which case f is filled from the user's firm. It reports
	// whether anything was created.
	EnsureOwner(ctx context.Context, f *Firm, u *User) (bool, error)
	GetUser(ctx context.Context, id uuid.UUID) (*User, error)
}

type Service struct {
	repo   Repository
	logger *zap.Logger
}

func NewService(repo Repository, logger *zap.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

type EnsureParams struct {
	UserID   uuid.UUID
	Email    string
	FullName string
	FirmName string
}

// Ensure makes sure the user has a firm. It is meant to run once when an
// account is created and is safe to repeat.
func (s *Service) Ensure(ctx context.Context, params EnsureParams) (*Firm, bool, error) {
	verr := &apperr.ValidationError{}

	if params.UserID == uuid.Nil {
		verr.Add("user_id", "required", "is required")
	}

	email := strings.TrimSpace(params.Email)
	validate.Email(verr, "email", email)

	name := strings.TrimSpace(params.FirmName)
	if name == "" {
		verr.Add("firm_name", "required", "is required")
	}

	if err := verr.Err(); err != nil {
		return nil, false, err
	}

	f := &Firm{Name: name}
	u := &User{ID: params.UserID, Email: strings.ToLower(email), FullName: validate.OptionalText(&params.FullName)}

	created, err := s.repo.EnsureOwner(ctx, f, u)
	if err != nil {
		return nil, false, apperr.Storage("ensuring firm", err)
	}

	if created {
		s.logger.Info("firm created", zap.String("firm_id", f.ID.String()), zap.String("user_id", u.ID.String()))
	}

	return f, created, nil
}

// Principal resolves the firm of a known user.
func (s *Service) Principal(ctx context.Context, userID uuid.UUID) (auth.Principal, error) {
	u, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return auth.Principal{}, apperr.Storage("getting user", err)
	}

	return auth.Principal{UserID: u.ID, FirmID: u.FirmID}, nil
}
