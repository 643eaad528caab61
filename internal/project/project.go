package project

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/kova/internal/milestone"
)

type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusOnHold    Status = "on_hold"
)

func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusCompleted, StatusCancelled, StatusOnHold:
		return true
	}

	return false
}

// Project is a client engagement whose total is split into milestones.
// TotalAmount never changes after creation.
type Project struct {
	ID            uuid.UUID
	FirmID        uuid.UUID
	CreatedBy     uuid.UUID
	ClientName    string
	ClientContact *string
	Name          string
	TotalAmount   decimal.Decimal
	Status        Status
	ShareToken    uuid.UUID
	ShareEnabled  bool
	CreatedAt     time.Time
	UpdatedAt     *time.Time

	Milestones []*milestone.Milestone // loaded by Get and List
}

// Access is the level of access a caller needs on a project.
type Access int

const (
	// Read is granted to every user of the owning firm.
	Read Access = iota
	// Write is granted only to the user who created the project.
	Write
)
