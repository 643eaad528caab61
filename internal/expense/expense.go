package expense

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Category string

const (
	CategoryMaterials Category = "materials"
	CategoryLabor     Category = "labor"
	CategoryTransport Category = "transport"
	CategoryOther     Category = "other"
)

// Categories lists every category in display order.
var Categories = []Category{CategoryMaterials, CategoryLabor, CategoryTransport, CategoryOther}

func (c Category) Valid() bool {
	switch c {
	case CategoryMaterials, CategoryLabor, CategoryTransport, CategoryOther:
		return true
	}

	return false
}

// Expense is money spent on a project. Expenses are never edited; a wrong
// entry is deleted and recorded again.
type Expense struct {
	ID          uuid.UUID
	ProjectID   uuid.UUID
	Description string
	Amount      decimal.Decimal
	Category    Category
	Date        time.Time
	Vendor      *string
	AddedBy     uuid.UUID
	CreatedAt   time.Time
}

type SortField string

const (
	SortDate    SortField = "date"
	SortAmount  SortField = "amount"
	SortCreated SortField = "created"
)

type SortOrder string

const (
	OrderAsc  SortOrder = "asc"
	OrderDesc SortOrder = "desc"
)

// ListFilter narrows and orders a project's expenses. Zero values mean all
// categories, newest expense date first.
type ListFilter struct {
	Category *Category
	Sort     SortField
	Order    SortOrder
}
