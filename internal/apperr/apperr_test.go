package apperr_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/MrJamesThe3rd/kova/internal/apperr"
)

func TestValidationError(t *testing.T) {
	verr := &apperr.ValidationError{}
	assert.NoError(t, verr.Err())

	verr.Add("amount", "gt", "must be greater than 0")
	verr.Add("payment_date", "date", "must be a valid YYYY-MM-DD date")

	err := verr.Err()
	assert.ErrorIs(t, err, apperr.ErrValidation)
	assert.NotErrorIs(t, err, apperr.ErrStorage)
	assert.Equal(t,
		"validation failed: amount: must be greater than 0, payment_date: must be a valid YYYY-MM-DD date",
		err.Error())

	var target *apperr.ValidationError
	assert.True(t, errors.As(fmt.Errorf("recording payment: %w", err), &target))
	assert.Len(t, target.Fields, 2)
	assert.True(t, target.Has("amount"))
	assert.False(t, target.Has("reference"))
}

func TestStorage(t *testing.T) {
	cause := errors.New("connection reset")

	err := apperr.Storage("inserting payment", cause)
	assert.ErrorIs(t, err, apperr.ErrStorage)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "inserting payment: connection reset", err.Error())

	assert.NoError(t, apperr.Storage("noop", nil))
	assert.Same(t, apperr.ErrNotFound, apperr.Storage("getting project", apperr.ErrNotFound))
	assert.Equal(t, err, apperr.Storage("outer", err))
}
