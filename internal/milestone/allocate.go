package milestone

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/kova/internal/apperr"
)

var (
	hundred = decimal.NewFromInt(100)

	// PercentTolerance is how far the percentages of a split may drift from 100.
	PercentTolerance = decimal.RequireFromString("0.01")
)

// PercentScale is the number of fractional digits a stored percentage keeps.
const PercentScale = 4

// Spec describes one milestone of a split before amounts are assigned.
type Spec struct {
	Title       string
	Description *string
	Percentage  decimal.Decimal
	OrderIndex  int
}

// ValidateSplit checks a set of milestone specs: at least one entry, every
// title set, percentages within [0, 100] with at most PercentScale decimals
// and summing to 100 within PercentTolerance.
func ValidateSplit(specs []Spec) error {
	verr := &apperr.ValidationError{}

	if len(specs) == 0 {
		verr.Add("milestones", "min", "at least one milestone is required")
		return verr
	}

	sum := decimal.Zero

	for i, s := range specs {
		if strings.TrimSpace(s.Title) == "" {
			verr.Add(fmt.Sprintf("milestones[%d].title", i), "required", "is required")
		}

		switch {
		case s.Percentage.IsNegative() || s.Percentage.GreaterThan(hundred):
			verr.Add(fmt.Sprintf("milestones[%d].percentage", i), "range", "must be between 0 and 100")
		case !s.Percentage.Equal(s.Percentage.Truncate(PercentScale)):
			verr.Add(fmt.Sprintf("milestones[%d].percentage", i), "scale",
				fmt.Sprintf("must have at most %d decimal places", PercentScale))
		}

		if s.OrderIndex < 1 {
			verr.Add(fmt.Sprintf("milestones[%d].order_index", i), "min", "must be at least 1")
		}

		sum = sum.Add(s.Percentage)
	}

	if sum.Sub(hundred).Abs().GreaterThan(PercentTolerance) {
		verr.Add("milestones", "sum", fmt.Sprintf("percentages must sum to 100, got %s", sum.String()))
	}

	return verr.Err()
}

// Allocate splits total across percentages in whole cents. Percentages are
// taken relative to their own sum, so a split inside PercentTolerance still
// allocates exactly total. Each share is floored to the cent and the
// leftover cents go one at a time to the largest remainders, earlier
// entries winning ties.
func Allocate(total decimal.Decimal, percentages []decimal.Decimal) []decimal.Decimal {
	amounts := make([]decimal.Decimal, len(percentages))

	pctSum := decimal.Zero
	for _, pct := range percentages {
		pctSum = pctSum.Add(pct)
	}

	if !pctSum.IsPositive() {
		for i := range amounts {
			amounts[i] = decimal.Zero
		}

		return amounts
	}

	cents := total.Shift(2)

	type share struct {
		idx       int
		remainder decimal.Decimal
	}

	base := make([]decimal.Decimal, len(percentages))
	shares := make([]share, len(percentages))
	allotted := decimal.Zero

	for i, pct := range percentages {
		exact := cents.Mul(pct).Div(pctSum)
		base[i] = exact.Floor()
		shares[i] = share{idx: i, remainder: exact.Sub(base[i])}
		allotted = allotted.Add(base[i])
	}

	leftover := int(cents.Sub(allotted).IntPart())

	slices.SortStableFunc(shares, func(a, b share) int {
		return b.remainder.Cmp(a.remainder)
	})

	for i := 0; i < leftover; i++ {
		idx := shares[i%len(shares)].idx
		base[idx] = base[idx].Add(decimal.NewFromInt(1))
	}

	for i, c := range base {
		amounts[i] = c.Shift(-2)
	}

	return amounts
}

// Build turns validated specs into pending milestones for projectID. Specs
// are ordered by their OrderIndex (ties keep input order) and renumbered
// 1..N so the sequence has no gaps.
func Build(projectID uuid.UUID, total decimal.Decimal, specs []Spec) []*Milestone {
	ordered := slices.Clone(specs)
	slices.SortStableFunc(ordered, func(a, b Spec) int {
		return cmp.Compare(a.OrderIndex, b.OrderIndex)
	})

	pcts := make([]decimal.Decimal, len(ordered))
	for i, s := range ordered {
		pcts[i] = s.Percentage
	}

	amounts := Allocate(total, pcts)

	out := make([]*Milestone, len(ordered))
	for i, s := range ordered {
		out[i] = &Milestone{
			ProjectID:   projectID,
			Title:       strings.TrimSpace(s.Title),
			Description: s.Description,
			Percentage:  &pcts[i],
			Amount:      amounts[i],
			AmountPaid:  decimal.Zero,
			Status:      StatusPending,
			OrderIndex:  i + 1,
		}
	}

	return out
}
