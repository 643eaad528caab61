// Package financial derives project totals from milestones and expenses.
// Nothing is cached: every summary is computed from the rows it is given.
package financial

import (
	"slices"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/kova/internal/expense"
	"github.com/MrJamesThe3rd/kova/internal/milestone"
)

var hundred = decimal.NewFromInt(100)

// Summary is the derived financial state of one project.
//
// A Partial summary was computed without expenses: AmountSpent is zero and
// Balance equals AmountReceived. It is fit for list displays only.
type Summary struct {
	TotalAmount       decimal.Decimal
	AmountReceived    decimal.Decimal
	AmountSpent       decimal.Decimal
	Balance           decimal.Decimal
	AmountOutstanding decimal.Decimal

	MilestonesPaid      int
	MilestonesPending   int
	MilestonesCancelled int

	ByCategory []CategoryTotal
	Partial    bool
}

// CategoryTotal is the spend in one expense category. Share is the
// percentage of AmountSpent, rounded to two places.
type CategoryTotal struct {
	Category expense.Category
	Total    decimal.Decimal
	Share    decimal.Decimal
}

// Compute builds the authoritative summary.
//
// AmountReceived counts every milestone, cancelled ones included, since
// money received stays received. Cancelled milestones are left out of the
// paid and pending counts and out of AmountOutstanding.
func Compute(total decimal.Decimal, ms []*milestone.Milestone, es []*expense.Expense) Summary {
	s := milestoneTotals(total, ms)

	byCategory := make(map[expense.Category]decimal.Decimal)

	for _, e := range es {
		s.AmountSpent = s.AmountSpent.Add(e.Amount)
		byCategory[e.Category] = byCategory[e.Category].Add(e.Amount)
	}

	s.Balance = s.AmountReceived.Sub(s.AmountSpent)
	s.ByCategory = breakdown(byCategory, s.AmountSpent)

	return s
}

// ComputePartial builds a summary from milestones alone.
func ComputePartial(total decimal.Decimal, ms []*milestone.Milestone) Summary {
	s := milestoneTotals(total, ms)
	s.Balance = s.AmountReceived
	s.Partial = true

	return s
}

func milestoneTotals(total decimal.Decimal, ms []*milestone.Milestone) Summary {
	s := Summary{
		TotalAmount:       total,
		AmountReceived:    decimal.Zero,
		AmountSpent:       decimal.Zero,
		AmountOutstanding: decimal.Zero,
	}

	for _, m := range ms {
		s.AmountReceived = s.AmountReceived.Add(m.AmountPaid)

		switch m.Status {
		case milestone.StatusCancelled:
			s.MilestonesCancelled++
			continue
		case milestone.StatusPaid:
			s.MilestonesPaid++
		default:
			s.MilestonesPending++
		}

		s.AmountOutstanding = s.AmountOutstanding.Add(m.Remaining())
	}

	return s
}

// breakdown orders categories by total, largest first, then by the fixed
// category order.
func breakdown(byCategory map[expense.Category]decimal.Decimal, spent decimal.Decimal) []CategoryTotal {
	out := make([]CategoryTotal, 0, len(byCategory))

	for _, c := range expense.Categories {
		total, ok := byCategory[c]
		if !ok {
			continue
		}

		share := decimal.Zero
		if spent.IsPositive() {
			share = total.Mul(hundred).Div(spent).Round(2)
		}

		out = append(out, CategoryTotal{Category: c, Total: total, Share: share})
	}

	slices.SortStableFunc(out, func(a, b CategoryTotal) int {
		return b.Total.Cmp(a.Total)
	})

	return out
}
