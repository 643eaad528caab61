package project

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/MrJamesThe3rd/kova/internal/apperr"
	"github.com/MrJamesThe3rd/kova/internal/auth"
	"github.com/MrJamesThe3rd/kova/internal/milestone"
	"github.com/MrJamesThe3rd/kova/internal/validate"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=project
type Repository interface {
	BeginCreate(ctx context.Context) (CreateTx, error)
	GetProject(ctx context.Context, id uuid.UUID) (*Project, error)
	ListProjects(ctx context.Context, firmID uuid.UUID) ([]*Project, error)
	UpdateProject(ctx context.Context, p *Project) error
	DeleteProject(ctx context.Context, id uuid.UUID) error
}

// CreateTx inserts a project and its milestones atomically.
type CreateTx interface {
	InsertProject(ctx context.Context, p *Project) error
	InsertMilestones(ctx context.Context, ms []*milestone.Milestone) error
	Commit() error
	Rollback() error
}

type MilestoneRepository interface {
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]*milestone.Milestone, error)
	ListByProjects(ctx context.Context, projectIDs []uuid.UUID) (map[uuid.UUID][]*milestone.Milestone, error)
	AppendMilestone(ctx context.Context, m *milestone.Milestone) error
	GetMilestone(ctx context.Context, id uuid.UUID) (*milestone.Milestone, error)
	UpdateDetails(ctx context.Context, m *milestone.Milestone) error
}

// Canceller cancels a milestone under the ledger's row lock. A non-nil edit
// is saved in the same transaction as the cancel.
type Canceller interface {
	Cancel(ctx context.Context, p auth.Principal, milestoneID uuid.UUID, edit func(*milestone.Milestone)) (*milestone.Milestone, error)
}

type Service struct {
	repo       Repository
	milestones MilestoneRepository
	allocator  *milestone.Allocator
	canceller  Canceller
	logger     *zap.Logger
}

func NewService(repo Repository, milestones MilestoneRepository, allocator *milestone.Allocator, canceller Canceller, logger *zap.Logger) *Service {
	return &Service{
		repo:       repo,
		milestones: milestones,
		allocator:  allocator,
		canceller:  canceller,
		logger:     logger,
	}
}

type CreateParams struct {
	ClientName    string
	ClientContact *string
	Name          string
	TotalAmount   decimal.Decimal
	// Exactly one of TemplateID and Milestones must be set.
	TemplateID *uuid.UUID
	Milestones []milestone.Spec
}

// Create inserts the project together with its milestones. Nothing is
// written when allocation fails.
func (s *Service) Create(ctx context.Context, p auth.Principal, params CreateParams) (*Project, error) {
	verr := &apperr.ValidationError{}

	clientName := strings.TrimSpace(params.ClientName)
	if clientName == "" {
		verr.Add("client_name", "required", "is required")
	}

	name := strings.TrimSpace(params.Name)
	if name == "" {
		verr.Add("project_name", "required", "is required")
	}

	validate.Amount(verr, "total_amount", params.TotalAmount)

	switch {
	case params.TemplateID == nil && len(params.Milestones) == 0:
		verr.Add("milestones", "required_without", "either template_id or milestones is required")
	case params.TemplateID != nil && len(params.Milestones) > 0:
		verr.Add("milestones", "excluded_with", "template_id and milestones are mutually exclusive")
	}

	if err := verr.Err(); err != nil {
		return nil, err
	}

	proj := &Project{
		FirmID:        p.FirmID,
		CreatedBy:     p.UserID,
		ClientName:    clientName,
		ClientContact: validate.OptionalText(params.ClientContact),
		Name:          name,
		TotalAmount:   params.TotalAmount,
		Status:        StatusActive,
		ShareToken:    uuid.New(),
		ShareEnabled:  true,
	}

	ptx, err := s.repo.BeginCreate(ctx)
	if err != nil {
		return nil, apperr.Storage("beginning project tx", err)
	}
	defer ptx.Rollback()

	if err := ptx.InsertProject(ctx, proj); err != nil {
		return nil, apperr.Storage("inserting project", err)
	}

	if params.TemplateID != nil {
		proj.Milestones, err = s.allocator.FromTemplate(ctx, ptx, p.FirmID, *params.TemplateID, proj.ID, proj.TotalAmount)
	} else {
		proj.Milestones, err = s.allocator.Custom(ctx, ptx, proj.ID, proj.TotalAmount, params.Milestones)
	}

	if err != nil {
		return nil, err
	}

	if err := ptx.Commit(); err != nil {
		return nil, apperr.Storage("committing project", err)
	}

	s.logger.Info("project created",
		zap.String("project_id", proj.ID.String()),
		zap.String("firm_id", proj.FirmID.String()),
		zap.Int("milestones", len(proj.Milestones)),
	)

	return proj, nil
}

// Authorize loads a project and checks that p may access it.
func (s *Service) Authorize(ctx context.Context, p auth.Principal, id uuid.UUID, access Access) (*Project, error) {
	proj, err := s.repo.GetProject(ctx, id)
	if err != nil {
		return nil, apperr.Storage("getting project", err)
	}

	if proj.FirmID != p.FirmID {
		return nil, fmt.Errorf("project %s: %w", id, apperr.ErrForbidden)
	}

	if access == Write && proj.CreatedBy != p.UserID {
		return nil, fmt.Errorf("project %s is owned by another user: %w", id, apperr.ErrForbidden)
	}

	return proj, nil
}

// Get returns a project with its milestones in order.
func (s *Service) Get(ctx context.Context, p auth.Principal, id uuid.UUID) (*Project, error) {
	proj, err := s.Authorize(ctx, p, id, Read)
	if err != nil {
		return nil, err
	}

	proj.Milestones, err = s.milestones.ListByProject(ctx, id)
	if err != nil {
		return nil, apperr.Storage("listing milestones", err)
	}

	return proj, nil
}

// List returns the firm's projects, newest first, with their milestones.
func (s *Service) List(ctx context.Context, p auth.Principal) ([]*Project, error) {
	projects, err := s.repo.ListProjects(ctx, p.FirmID)
	if err != nil {
		return nil, apperr.Storage("listing projects", err)
	}

	ids := make([]uuid.UUID, len(projects))
	for i, proj := range projects {
		ids[i] = proj.ID
	}

	byProject, err := s.milestones.ListByProjects(ctx, ids)
	if err != nil {
		return nil, apperr.Storage("listing milestones", err)
	}

	for _, proj := range projects {
		proj.Milestones = byProject[proj.ID]
	}

	return projects, nil
}

// UpdateParams changes descriptive fields. Nil fields are left alone; the
// total amount cannot be changed.
type UpdateParams struct {
	ClientName    *string
	ClientContact *string
	Name          *string
	Status        *Status
}

func (s *Service) Update(ctx context.Context, p auth.Principal, id uuid.UUID, params UpdateParams) (*Project, error) {
	proj, err := s.Authorize(ctx, p, id, Write)
	if err != nil {
		return nil, err
	}

	verr := &apperr.ValidationError{}

	if params.ClientName != nil {
		proj.ClientName = strings.TrimSpace(*params.ClientName)
		if proj.ClientName == "" {
			verr.Add("client_name", "required", "is required")
		}
	}

	if params.ClientContact != nil {
		proj.ClientContact = validate.OptionalText(params.ClientContact)
	}

	if params.Name != nil {
		proj.Name = strings.TrimSpace(*params.Name)
		if proj.Name == "" {
			verr.Add("project_name", "required", "is required")
		}
	}

	if params.Status != nil {
		if !params.Status.Valid() {
			verr.Add("status", "oneof", "must be one of: active, completed, cancelled, on_hold")
		}

		proj.Status = *params.Status
	}

	if err := verr.Err(); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateProject(ctx, proj); err != nil {
		return nil, apperr.Storage("updating project", err)
	}

	return proj, nil
}

// Delete removes the project and, by cascade, its milestones, payments and
// expenses.
func (s *Service) Delete(ctx context.Context, p auth.Principal, id uuid.UUID) error {
	if _, err := s.Authorize(ctx, p, id, Write); err != nil {
		return err
	}

	if err := s.repo.DeleteProject(ctx, id); err != nil {
		return apperr.Storage("deleting project", err)
	}

	s.logger.Info("project deleted", zap.String("project_id", id.String()))

	return nil
}

// AddMilestoneParams describes a milestone added after creation. It has a
// fixed amount and no percentage.
type AddMilestoneParams struct {
	Title       string
	Description *string
	Amount      decimal.Decimal
	DueDate     *string
}

func (s *Service) AddMilestone(ctx context.Context, p auth.Principal, projectID uuid.UUID, params AddMilestoneParams) (*milestone.Milestone, error) {
	if _, err := s.Authorize(ctx, p, projectID, Write); err != nil {
		return nil, err
	}

	verr := &apperr.ValidationError{}

	title := strings.TrimSpace(params.Title)
	if title == "" {
		verr.Add("title", "required", "is required")
	}

	validate.Amount(verr, "amount", params.Amount)

	due := optionalDate(verr, "due_date", params.DueDate)

	if err := verr.Err(); err != nil {
		return nil, err
	}

	m := &milestone.Milestone{
		ProjectID:   projectID,
		Title:       title,
		Description: validate.OptionalText(params.Description),
		Amount:      params.Amount,
		AmountPaid:  decimal.Zero,
		Status:      milestone.StatusPending,
		DueDate:     due,
	}

	if err := s.milestones.AppendMilestone(ctx, m); err != nil {
		return nil, apperr.Storage("adding milestone", err)
	}

	return m, nil
}

// UpdateMilestoneParams edits a milestone. A non-nil empty DueDate clears
// the due date.
type UpdateMilestoneParams struct {
	Title       *string
	Description *string
	DueDate     *string
	Cancel      bool
}

func (s *Service) UpdateMilestone(ctx context.Context, p auth.Principal, projectID, milestoneID uuid.UUID, params UpdateMilestoneParams) (*milestone.Milestone, error) {
	if _, err := s.Authorize(ctx, p, projectID, Write); err != nil {
		return nil, err
	}

	m, err := s.milestones.GetMilestone(ctx, milestoneID)
	if err != nil {
		return nil, apperr.Storage("getting milestone", err)
	}

	if m.ProjectID != projectID {
		return nil, fmt.Errorf("milestone %s in project %s: %w", milestoneID, projectID, apperr.ErrNotFound)
	}

	verr := &apperr.ValidationError{}

	var title string
	if params.Title != nil {
		title = strings.TrimSpace(*params.Title)
		if title == "" {
			verr.Add("title", "required", "is required")
		}
	}

	var due *time.Time
	if params.DueDate != nil {
		due = optionalDate(verr, "due_date", params.DueDate)
	}

	if err := verr.Err(); err != nil {
		return nil, err
	}

	edited := params.Title != nil || params.Description != nil || params.DueDate != nil

	edit := func(ms *milestone.Milestone) {
		if params.Title != nil {
			ms.Title = title
		}

		if params.Description != nil {
			ms.Description = validate.OptionalText(params.Description)
		}

		if params.DueDate != nil {
			ms.DueDate = due
		}
	}

	if params.Cancel {
		if !edited {
			edit = nil
		}

		return s.canceller.Cancel(ctx, p, milestoneID, edit)
	}

	if !edited {
		return m, nil
	}

	edit(m)

	if err := s.milestones.UpdateDetails(ctx, m); err != nil {
		return nil, apperr.Storage("updating milestone", err)
	}

	return m, nil
}

func optionalDate(verr *apperr.ValidationError, field string, s *string) *time.Time {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}

	d := validate.Date(verr, field, *s)

	return &d
}
