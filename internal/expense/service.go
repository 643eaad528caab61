package expense

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/MrJamesThe3rd/kova/internal/apperr"
	"github.com/MrJamesThe3rd/kova/internal/auth"
	"github.com/MrJamesThe3rd/kova/internal/project"
	"github.com/MrJamesThe3rd/kova/internal/validate"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=expense
type Repository interface {
	Insert(ctx context.Context, e *Expense) error
	// InsertBatch writes all expenses or none.
	InsertBatch(ctx context.Context, es []*Expense) error
	Get(ctx context.Context, id uuid.UUID) (*Expense, error)
	List(ctx context.Context, projectID uuid.UUID, filter ListFilter) ([]*Expense, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Authorizer checks a principal's access to a project.
type Authorizer interface {
	Authorize(ctx context.Context, p auth.Principal, id uuid.UUID, access project.Access) (*project.Project, error)
}

// Parser turns an uploaded file into expense rows.
type Parser interface {
	Parse(r io.Reader) ([]Row, error)
}

// Row is one parsed line of an import file. Line is 1-based and counts the
// header.
type Row struct {
	Line   int
	Params CreateParams
}

type Service struct {
	repo     Repository
	projects Authorizer
	parser   Parser
	logger   *zap.Logger
}

func NewService(repo Repository, projects Authorizer, parser Parser, logger *zap.Logger) *Service {
	return &Service{
		repo:     repo,
		projects: projects,
		parser:   parser,
		logger:   logger,
	}
}

type CreateParams struct {
	Description string
	Amount      decimal.Decimal
	Category    Category
	Date        string // YYYY-MM-DD
	Vendor      *string
}

func (s *Service) Create(ctx context.Context, p auth.Principal, projectID uuid.UUID, params CreateParams) (*Expense, error) {
	if _, err := s.projects.Authorize(ctx, p, projectID, project.Write); err != nil {
		return nil, err
	}

	verr := &apperr.ValidationError{}

	e := build(verr, "", projectID, p.UserID, params)
	if err := verr.Err(); err != nil {
		return nil, err
	}

	if err := s.repo.Insert(ctx, e); err != nil {
		return nil, apperr.Storage("inserting expense", err)
	}

	return e, nil
}

func (s *Service) List(ctx context.Context, p auth.Principal, projectID uuid.UUID, filter ListFilter) ([]*Expense, error) {
	if _, err := s.projects.Authorize(ctx, p, projectID, project.Read); err != nil {
		return nil, err
	}

	verr := &apperr.ValidationError{}

	if filter.Category != nil && !filter.Category.Valid() {
		verr.Add("category", "oneof", "must be one of: materials, labor, transport, other")
	}

	switch filter.Sort {
	case "":
		filter.Sort = SortDate
	case SortDate, SortAmount, SortCreated:
	default:
		verr.Add("sort", "oneof", "must be one of: date, amount, created")
	}

	switch filter.Order {
	case "":
		filter.Order = OrderDesc
	case OrderAsc, OrderDesc:
	default:
		verr.Add("order", "oneof", "must be one of: asc, desc")
	}

	if err := verr.Err(); err != nil {
		return nil, err
	}

	es, err := s.repo.List(ctx, projectID, filter)
	if err != nil {
		return nil, apperr.Storage("listing expenses", err)
	}

	return es, nil
}

func (s *Service) Delete(ctx context.Context, p auth.Principal, projectID, expenseID uuid.UUID) error {
	if _, err := s.projects.Authorize(ctx, p, projectID, project.Write); err != nil {
		return err
	}

	e, err := s.repo.Get(ctx, expenseID)
	if err != nil {
		return apperr.Storage("getting expense", err)
	}

	if e.ProjectID != projectID {
		return fmt.Errorf("expense %s in project %s: %w", expenseID, projectID, apperr.ErrNotFound)
	}

	if err := s.repo.Delete(ctx, expenseID); err != nil {
		return apperr.Storage("deleting expense", err)
	}

	return nil
}

// Import parses r and records every row. A single invalid row rejects the
// whole file, with one field error per problem keyed by line number.
func (s *Service) Import(ctx context.Context, p auth.Principal, projectID uuid.UUID, r io.Reader) ([]*Expense, error) {
	if _, err := s.projects.Authorize(ctx, p, projectID, project.Write); err != nil {
		return nil, err
	}

	rows, err := s.parser.Parse(r)
	if err != nil {
		return nil, apperr.Invalid("file", "format", err.Error())
	}

	if len(rows) == 0 {
		return nil, apperr.Invalid("file", "min", "contains no expense rows")
	}

	verr := &apperr.ValidationError{}
	es := make([]*Expense, 0, len(rows))

	for _, row := range rows {
		prefix := fmt.Sprintf("rows[%d].", row.Line)
		es = append(es, build(verr, prefix, projectID, p.UserID, row.Params))
	}

	if err := verr.Err(); err != nil {
		return nil, err
	}

	if err := s.repo.InsertBatch(ctx, es); err != nil {
		return nil, apperr.Storage("importing expenses", err)
	}

	s.logger.Info("expenses imported",
		zap.String("project_id", projectID.String()),
		zap.Int("count", len(es)),
	)

	return es, nil
}

func build(verr *apperr.ValidationError, prefix string, projectID, userID uuid.UUID, params CreateParams) *Expense {
	description := strings.TrimSpace(params.Description)
	if description == "" {
		verr.Add(prefix+"description", "required", "is required")
	}

	validate.Amount(verr, prefix+"amount", params.Amount)

	if !params.Category.Valid() {
		verr.Add(prefix+"category", "oneof", "must be one of: materials, labor, transport, other")
	}

	date := validate.Date(verr, prefix+"expense_date", params.Date)

	return &Expense{
		ProjectID:   projectID,
		Description: description,
		Amount:      params.Amount,
		Category:    params.Category,
		Date:        date,
		Vendor:      validate.OptionalText(params.Vendor),
		AddedBy:     userID,
	}
}
