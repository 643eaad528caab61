package project

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/kova/internal/http/resource"
	"github.com/MrJamesThe3rd/kova/internal/project"
)

type projectResponse struct {
	ID            uuid.UUID            `json:"id"`
	FirmID        uuid.UUID            `json:"firm_id"`
	CreatedBy     uuid.UUID            `json:"created_by"`
	ClientName    string               `json:"client_name"`
	ClientContact *string              `json:"client_contact,omitempty"`
	ProjectName   string               `json:"project_name"`
	TotalAmount   decimal.Decimal      `json:"total_amount"`
	Status        project.Status       `json:"status"`
	ShareToken    uuid.UUID            `json:"share_token"`
	ShareEnabled  bool                 `json:"share_enabled"`
	Milestones    []resource.Milestone `json:"milestones"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     *time.Time           `json:"updated_at,omitempty"`
}

type projectSummaryResponse struct {
	projectResponse
	Summary resource.Summary `json:"summary"`
}

func toResponse(p *project.Project) projectResponse {
	return projectResponse{
		ID:            p.ID,
		FirmID:        p.FirmID,
		CreatedBy:     p.CreatedBy,
		ClientName:    p.ClientName,
		ClientContact: p.ClientContact,
		ProjectName:   p.Name,
		TotalAmount:   p.TotalAmount,
		Status:        p.Status,
		ShareToken:    p.ShareToken,
		ShareEnabled:  p.ShareEnabled,
		Milestones:    resource.NewMilestones(p.Milestones),
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}
