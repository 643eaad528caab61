package template

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/kova/internal/milestone"
)

// Template is a reusable percentage split. Default templates have no firm
// and are visible to everyone.
type Template struct {
	ID          uuid.UUID
	FirmID      *uuid.UUID
	Name        string
	Description *string
	IsDefault   bool
	CreatedBy   *uuid.UUID
	Items       []Item
	CreatedAt   time.Time
}

type Item struct {
	ID          uuid.UUID
	TemplateID  uuid.UUID
	Title       string
	Description *string
	Percentage  decimal.Decimal
	OrderIndex  int
}

// Split converts the template items into milestone specs.
func (t *Template) Split() []milestone.Spec {
	specs := make([]milestone.Spec, len(t.Items))
	for i, it := range t.Items {
		specs[i] = milestone.Spec{
			Title:       it.Title,
			Description: it.Description,
			Percentage:  it.Percentage,
			OrderIndex:  it.OrderIndex,
		}
	}

	return specs
}
