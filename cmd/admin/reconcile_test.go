package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/kova/internal/milestone"
)

type fakeLister struct {
	ids []uuid.UUID
	got *uuid.UUID
}

func (f *fakeLister) ListMilestoneIDs(_ context.Context, projectID *uuid.UUID) ([]uuid.UUID, error) {
	f.got = projectID
	return f.ids, nil
}

type result struct {
	m       *milestone.Milestone
	updated bool
	err     error
}

type fakeReconciler map[uuid.UUID]result

func (f fakeReconciler) Reconcile(_ context.Context, id uuid.UUID) (*milestone.Milestone, bool, error) {
	r := f[id]
	return r.m, r.updated, r.err
}

func TestReconcileAll(t *testing.T) {
	clean, drifted, overpaid := uuid.New(), uuid.New(), uuid.New()
	projectID := uuid.New()

	lister := &fakeLister{ids: []uuid.UUID{clean, drifted, overpaid}}
	r := fakeReconciler{
		clean:    {m: &milestone.Milestone{ID: clean}},
		drifted:  {m: &milestone.Milestone{ID: drifted, AmountPaid: decimal.NewFromInt(250), Status: milestone.StatusPartiallyPaid}, updated: true},
		overpaid: {err: fmt.Errorf("milestone %s: %w", overpaid, milestone.ErrOverpaid)},
	}

	var out bytes.Buffer
	err := reconcileAll(context.Background(), lister, r, &projectID, &out)

	require.NoError(t, err)
	assert.Equal(t, &projectID, lister.got)
	assert.Contains(t, out.String(), "fixed "+drifted.String()+": paid 250.00, partially_paid")
	assert.Contains(t, out.String(), "skipped "+overpaid.String())
	assert.Contains(t, out.String(), "checked 3 milestones, fixed 1, overpaid 1")
}

func TestReconcileAll_StopsOnStorageError(t *testing.T) {
	first, second := uuid.New(), uuid.New()

	lister := &fakeLister{ids: []uuid.UUID{first, second}}
	r := fakeReconciler{first: {err: errors.New("connection reset")}}

	var out bytes.Buffer
	err := reconcileAll(context.Background(), lister, r, nil, &out)

	require.Error(t, err)
	assert.Contains(t, err.Error(), first.String())
	assert.NotContains(t, out.String(), "checked")
}
