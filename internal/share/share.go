// Package share decides what an unauthenticated share link may see.
package share

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/MrJamesThe3rd/kova/internal/apperr"
	"github.com/MrJamesThe3rd/kova/internal/auth"
	"github.com/MrJamesThe3rd/kova/internal/expense"
	"github.com/MrJamesThe3rd/kova/internal/financial"
	"github.com/MrJamesThe3rd/kova/internal/metrics"
	"github.com/MrJamesThe3rd/kova/internal/milestone"
	"github.com/MrJamesThe3rd/kova/internal/project"
)

//go:generate mockgen -source=share.go -destination=repository_mock.go -package=share
type Repository interface {
	// FindByShareToken returns the project holding token whether or not
	// sharing is enabled.
	FindByShareToken(ctx context.Context, token uuid.UUID) (*project.Project, error)
	ReplaceShareToken(ctx context.Context, projectID, token uuid.UUID) error
	SetShareEnabled(ctx context.Context, projectID uuid.UUID, enabled bool) error
}

type Authorizer interface {
	Authorize(ctx context.Context, p auth.Principal, id uuid.UUID, access project.Access) (*project.Project, error)
}

type MilestoneLister interface {
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]*milestone.Milestone, error)
}

type ExpenseLister interface {
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]*expense.Expense, error)
}

// View is what a client sees through a share link.
type View struct {
	ProjectName string
	ClientName  string
	Status      project.Status
	Milestones  []*milestone.Milestone
	Expenses    []*expense.Expense
	Summary     financial.Summary
}

type Gate struct {
	repo       Repository
	projects   Authorizer
	milestones MilestoneLister
	expenses   ExpenseLister
	logger     *zap.Logger
	newToken   func() uuid.UUID
}

func NewGate(repo Repository, projects Authorizer, milestones MilestoneLister, expenses ExpenseLister, logger *zap.Logger) *Gate {
	return &Gate{
		repo:       repo,
		projects:   projects,
		milestones: milestones,
		expenses:   expenses,
		logger:     logger,
		newToken:   uuid.New,
	}
}

// errUnshared is the one error for every rejected token, disabled or
// missing alike.
var errUnshared = fmt.Errorf("shared project: %w", apperr.ErrNotFound)

// ResolveSharedProject returns the public view for token. Malformed
// tokens, unknown tokens and projects with sharing disabled all yield the
// same NotFound.
func (g *Gate) ResolveSharedProject(ctx context.Context, token string) (*View, error) {
	id, err := uuid.Parse(token)
	if err != nil || id.Version() != 4 || id.Variant() != uuid.RFC4122 {
		metrics.RecordShareLookup("malformed")
		return nil, errUnshared
	}

	proj, err := g.repo.FindByShareToken(ctx, id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			metrics.RecordShareLookup("not_found")
			return nil, errUnshared
		}

		return nil, apperr.Storage("finding shared project", err)
	}

	if !proj.ShareEnabled {
		metrics.RecordShareLookup("not_found")
		return nil, errUnshared
	}

	ms, err := g.milestones.ListByProject(ctx, proj.ID)
	if err != nil {
		return nil, apperr.Storage("listing milestones", err)
	}

	es, err := g.expenses.ListByProject(ctx, proj.ID)
	if err != nil {
		return nil, apperr.Storage("listing expenses", err)
	}

	metrics.RecordShareLookup("found")

	return &View{
		ProjectName: proj.Name,
		ClientName:  proj.ClientName,
		Status:      proj.Status,
		Milestones:  ms,
		Expenses:    es,
		Summary:     financial.Compute(proj.TotalAmount, ms, es),
	}, nil
}

// RegenerateToken issues a new token. The previous one stops resolving once
// the update commits.
func (g *Gate) RegenerateToken(ctx context.Context, p auth.Principal, projectID uuid.UUID) (uuid.UUID, error) {
	if _, err := g.projects.Authorize(ctx, p, projectID, project.Write); err != nil {
		return uuid.Nil, err
	}

	token := g.newToken()
	if err := g.repo.ReplaceShareToken(ctx, projectID, token); err != nil {
		return uuid.Nil, apperr.Storage("replacing share token", err)
	}

	g.logger.Info("share token regenerated", zap.String("project_id", projectID.String()))

	return token, nil
}

func (g *Gate) SetEnabled(ctx context.Context, p auth.Principal, projectID uuid.UUID, enabled bool) error {
	if _, err := g.projects.Authorize(ctx, p, projectID, project.Write); err != nil {
		return err
	}

	if err := g.repo.SetShareEnabled(ctx, projectID, enabled); err != nil {
		return apperr.Storage("updating share flag", err)
	}

	return nil
}
