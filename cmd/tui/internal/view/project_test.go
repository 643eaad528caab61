package view_test

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/kova/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/kova/internal/apperr"
	"github.com/MrJamesThe3rd/kova/internal/auth"
	"github.com/MrJamesThe3rd/kova/internal/financial"
	"github.com/MrJamesThe3rd/kova/internal/milestone"
	"github.com/MrJamesThe3rd/kova/internal/project"
)

type fakeFinancials struct {
	detail *financial.ProjectSummary
	err    error
}

func (f fakeFinancials) ProjectFinancials(context.Context, auth.Principal, uuid.UUID) (*financial.ProjectSummary, error) {
	return f.detail, f.err
}

type fakePayments struct {
	history *milestone.History
}

func (f fakePayments) RecordPayment(context.Context, auth.Principal, milestone.RecordPaymentParams) (*milestone.PaymentOutcome, error) {
	return nil, apperr.ErrForbidden
}

func (f fakePayments) History(context.Context, auth.Principal, uuid.UUID) (*milestone.History, error) {
	return f.history, nil
}

func sampleProject() *financial.ProjectSummary {
	p := &project.Project{
		ID:          uuid.New(),
		Name:        "Kitchen refit",
		ClientName:  "Ana Costa",
		TotalAmount: decimal.NewFromInt(2500),
		Milestones: []*milestone.Milestone{
			{ID: uuid.New(), Title: "Deposit", Amount: decimal.NewFromInt(500), AmountPaid: decimal.NewFromInt(500), Status: milestone.StatusPaid, OrderIndex: 1},
			{ID: uuid.New(), Title: "Cabinets", Amount: decimal.NewFromInt(2000), AmountPaid: decimal.Zero, Status: milestone.StatusPending, OrderIndex: 2},
		},
	}

	return &financial.ProjectSummary{
		Project: p,
		Summary: financial.ComputePartial(p.TotalAmount, p.Milestones),
	}
}

// run feeds the message produced by cmd back into the model.
func run(t *testing.T, m tea.Model, cmd tea.Cmd) tea.Model {
	t.Helper()
	require.NotNil(t, cmd)

	next, _ := m.Update(cmd())

	return next
}

func TestProjectModel_Loads(t *testing.T) {
	detail := sampleProject()
	m := view.NewProjectModel(fakeFinancials{detail: detail}, fakePayments{}, auth.Principal{}, detail.Project.ID)

	next := run(t, m, m.Init())
	out := next.View()

	assert.Contains(t, out, "Kitchen refit")
	assert.Contains(t, out, "Cabinets")
	assert.Contains(t, out, "2000.00")
}

func TestProjectModel_LoadError(t *testing.T) {
	m := view.NewProjectModel(fakeFinancials{err: apperr.ErrNotFound}, fakePayments{}, auth.Principal{}, uuid.New())

	next := run(t, m, m.Init())

	assert.Contains(t, next.View(), "Error")
}

func TestProjectModel_EscGoesBack(t *testing.T) {
	detail := sampleProject()
	m := view.NewProjectModel(fakeFinancials{detail: detail}, fakePayments{}, auth.Principal{}, detail.Project.ID)
	loaded := run(t, m, m.Init())

	_, cmd := loaded.Update(tea.KeyMsg{Type: tea.KeyEsc})

	require.NotNil(t, cmd)
	assert.Equal(t, view.BackMsg{}, cmd())
}

func TestProjectModel_History(t *testing.T) {
	detail := sampleProject()
	ref := "TRF-001"
	history := &milestone.History{
		Payments: []*milestone.Payment{{
			Amount:    decimal.NewFromInt(500),
			PaidAt:    time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
			Reference: &ref,
		}},
		TotalPaid: decimal.NewFromInt(500),
	}

	m := view.NewProjectModel(fakeFinancials{detail: detail}, fakePayments{history: history}, auth.Principal{}, detail.Project.ID)
	loaded := run(t, m, m.Init())

	opened, cmd := loaded.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("h")})
	shown := run(t, opened, cmd)
	out := shown.View()

	assert.Contains(t, out, "2026-03-01")
	assert.Contains(t, out, "TRF-001")
	assert.Contains(t, out, "Total 500.00")
}
