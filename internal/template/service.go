package template

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/MrJamesThe3rd/kova/internal/apperr"
	"github.com/MrJamesThe3rd/kova/internal/auth"
	"github.com/MrJamesThe3rd/kova/internal/milestone"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=template
type Repository interface {
	// ListVisible returns default templates plus those owned by firmID,
	// each with its items in order.
	ListVisible(ctx context.Context, firmID uuid.UUID) ([]*Template, error)
	// GetVisible returns ErrNotFound for templates of other firms.
	GetVisible(ctx context.Context, firmID, id uuid.UUID) (*Template, error)
	// UpsertDefault creates or replaces a default template by name.
	UpsertDefault(ctx context.Context, t *Template) error
}

type Service struct {
	repo   Repository
	logger *zap.Logger
}

func NewService(repo Repository, logger *zap.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) List(ctx context.Context, p auth.Principal) ([]*Template, error) {
	templates, err := s.repo.ListVisible(ctx, p.FirmID)
	if err != nil {
		return nil, apperr.Storage("listing templates", err)
	}

	return templates, nil
}

// TemplateSplit implements milestone.TemplateSource.
func (s *Service) TemplateSplit(ctx context.Context, firmID, templateID uuid.UUID) ([]milestone.Spec, error) {
	t, err := s.repo.GetVisible(ctx, firmID, templateID)
	if err != nil {
		return nil, apperr.Storage("getting template", err)
	}

	return t.Split(), nil
}

// SeedDefaults writes the given catalogue as default templates. Running it
// again replaces the items of templates with the same name.
func (s *Service) SeedDefaults(ctx context.Context, catalog []*Template) (int, error) {
	for _, t := range catalog {
		if !t.IsDefault {
			return 0, fmt.Errorf("template %q is not a default template", t.Name)
		}

		if err := s.repo.UpsertDefault(ctx, t); err != nil {
			return 0, apperr.Storage(fmt.Sprintf("seeding template %q", t.Name), err)
		}

		s.logger.Info("default template seeded", zap.String("name", t.Name), zap.Int("items", len(t.Items)))
	}

	return len(catalog), nil
}
