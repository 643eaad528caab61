package milestone

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/kova/internal/apperr"
	"github.com/MrJamesThe3rd/kova/internal/validate"
)

// Allocator creates the initial milestones of a project, either from a
// template or from a caller supplied split.
type Allocator struct {
	templates TemplateSource
}

func NewAllocator(templates TemplateSource) *Allocator {
	return &Allocator{templates: templates}
}

// FromTemplate builds milestones from the items of a template visible to
// firmID. A template with no items is reported as not found.
func (a *Allocator) FromTemplate(ctx context.Context, w Inserter, firmID, templateID, projectID uuid.UUID, total decimal.Decimal) ([]*Milestone, error) {
	specs, err := a.templates.TemplateSplit(ctx, firmID, templateID)
	if err != nil {
		return nil, fmt.Errorf("loading template %s: %w", templateID, err)
	}

	if len(specs) == 0 {
		return nil, fmt.Errorf("template %s has no items: %w", templateID, apperr.ErrNotFound)
	}

	return a.persist(ctx, w, projectID, total, specs)
}

// Custom builds milestones from an explicit split.
func (a *Allocator) Custom(ctx context.Context, w Inserter, projectID uuid.UUID, total decimal.Decimal, specs []Spec) ([]*Milestone, error) {
	return a.persist(ctx, w, projectID, total, specs)
}

func (a *Allocator) persist(ctx context.Context, w Inserter, projectID uuid.UUID, total decimal.Decimal, specs []Spec) ([]*Milestone, error) {
	verr := &apperr.ValidationError{}
	validate.Amount(verr, "total_amount", total)

	if err := ValidateSplit(specs); err != nil {
		var split *apperr.ValidationError
		if !errors.As(err, &split) {
			return nil, err
		}

		verr.Fields = append(verr.Fields, split.Fields...)
	}

	if err := verr.Err(); err != nil {
		return nil, err
	}

	ms := Build(projectID, total, specs)
	if err := w.InsertMilestones(ctx, ms); err != nil {
		return nil, apperr.Storage("inserting milestones", err)
	}

	return ms, nil
}
