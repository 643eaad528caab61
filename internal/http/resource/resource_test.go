package resource_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/kova/internal/expense"
	"github.com/MrJamesThe3rd/kova/internal/financial"
	"github.com/MrJamesThe3rd/kova/internal/http/resource"
	"github.com/MrJamesThe3rd/kova/internal/milestone"
)

func TestNewSummary(t *testing.T) {
	ms := []*milestone.Milestone{{
		ID:         uuid.New(),
		Amount:     decimal.NewFromInt(1000),
		AmountPaid: decimal.NewFromInt(400),
		Status:     milestone.StatusPartiallyPaid,
	}}
	es := []*expense.Expense{{Amount: decimal.NewFromInt(100), Category: expense.CategoryLabor}}

	t.Run("Full", func(t *testing.T) {
		raw, err := json.Marshal(resource.NewSummary(financial.Compute(decimal.NewFromInt(1000), ms, es)))
		require.NoError(t, err)

		var got map[string]any
		require.NoError(t, json.Unmarshal(raw, &got))

		assert.Equal(t, "100", got["amount_spent"])
		assert.Equal(t, "300", got["balance"])
		assert.Equal(t, false, got["partial"])
		assert.Len(t, got["by_category"], 1)
	})

	t.Run("Partial", func(t *testing.T) {
		raw, err := json.Marshal(resource.NewSummary(financial.ComputePartial(decimal.NewFromInt(1000), ms)))
		require.NoError(t, err)

		var got map[string]any
		require.NoError(t, json.Unmarshal(raw, &got))

		assert.NotContains(t, got, "amount_spent")
		assert.NotContains(t, got, "by_category")
		assert.Equal(t, true, got["partial"])
	})
}

func TestNewMilestone_DueDateIsCalendarDate(t *testing.T) {
	due := time.Date(2026, 5, 31, 0, 0, 0, 0, time.UTC)

	got := resource.NewMilestone(&milestone.Milestone{ID: uuid.New(), DueDate: &due})

	require.NotNil(t, got.DueDate)
	assert.Equal(t, "2026-05-31", *got.DueDate)
	assert.Nil(t, resource.NewMilestone(&milestone.Milestone{}).DueDate)
}
