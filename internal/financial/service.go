package financial

import (
	"context"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/kova/internal/apperr"
	"github.com/MrJamesThe3rd/kova/internal/auth"
	"github.com/MrJamesThe3rd/kova/internal/expense"
	"github.com/MrJamesThe3rd/kova/internal/project"
)

//go:generate mockgen -source=service.go -destination=service_mock.go -package=financial

// Projects loads projects with their milestones, enforcing firm access.
type Projects interface {
	Get(ctx context.Context, p auth.Principal, id uuid.UUID) (*project.Project, error)
	List(ctx context.Context, p auth.Principal) ([]*project.Project, error)
}

type Expenses interface {
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]*expense.Expense, error)
	ListByProjects(ctx context.Context, projectIDs []uuid.UUID) (map[uuid.UUID][]*expense.Expense, error)
}

type Service struct {
	projects Projects
	expenses Expenses
}

func NewService(projects Projects, expenses Expenses) *Service {
	return &Service{projects: projects, expenses: expenses}
}

// ProjectSummary pairs a project with its summary.
type ProjectSummary struct {
	Project *project.Project
	Summary Summary
}

// ProjectFinancials returns the full summary of one project.
func (s *Service) ProjectFinancials(ctx context.Context, p auth.Principal, id uuid.UUID) (*ProjectSummary, error) {
	proj, err := s.projects.Get(ctx, p, id)
	if err != nil {
		return nil, err
	}

	es, err := s.expenses.ListByProject(ctx, id)
	if err != nil {
		return nil, apperr.Storage("listing expenses", err)
	}

	return &ProjectSummary{
		Project: proj,
		Summary: Compute(proj.TotalAmount, proj.Milestones, es),
	}, nil
}

// Portfolio summarises every project of the caller's firm. Without
// expenses the summaries are partial.
func (s *Service) Portfolio(ctx context.Context, p auth.Principal, withExpenses bool) ([]ProjectSummary, error) {
	projects, err := s.projects.List(ctx, p)
	if err != nil {
		return nil, err
	}

	out := make([]ProjectSummary, len(projects))

	if !withExpenses {
		for i, proj := range projects {
			out[i] = ProjectSummary{Project: proj, Summary: ComputePartial(proj.TotalAmount, proj.Milestones)}
		}

		return out, nil
	}

	ids := make([]uuid.UUID, len(projects))
	for i, proj := range projects {
		ids[i] = proj.ID
	}

	byProject, err := s.expenses.ListByProjects(ctx, ids)
	if err != nil {
		return nil, apperr.Storage("listing expenses", err)
	}

	for i, proj := range projects {
		out[i] = ProjectSummary{Project: proj, Summary: Compute(proj.TotalAmount, proj.Milestones, byProject[proj.ID])}
	}

	return out, nil
}
