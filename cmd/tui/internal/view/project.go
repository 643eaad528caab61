package view

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/kova/internal/apperr"
	"github.com/MrJamesThe3rd/kova/internal/auth"
	"github.com/MrJamesThe3rd/kova/internal/financial"
	"github.com/MrJamesThe3rd/kova/internal/milestone"
)

type ProjectFinancials interface {
	ProjectFinancials(ctx context.Context, p auth.Principal, id uuid.UUID) (*financial.ProjectSummary, error)
}

type Payments interface {
	RecordPayment(ctx context.Context, p auth.Principal, params milestone.RecordPaymentParams) (*milestone.PaymentOutcome, error)
	History(ctx context.Context, p auth.Principal, milestoneID uuid.UUID) (*milestone.History, error)
}

type projectState int

const (
	projectStateBrowse projectState = iota
	projectStatePay
	projectStateHistory
)

// paymentFields holds the form bindings. It lives behind a pointer so the
// form keeps writing to the same values as the model is copied.
type paymentFields struct {
	amount    string
	date      string
	reference string
}

type ProjectModel struct {
	CommonModel
	financials ProjectFinancials
	payments   Payments
	principal  auth.Principal
	projectID  uuid.UUID

	state   projectState
	table   table.Model
	detail  *financial.ProjectSummary
	history *milestone.History
	form    *huh.Form
	fields  *paymentFields

	loading bool
	err     error
	status  string
	now     func() time.Time
}

func NewProjectModel(financials ProjectFinancials, payments Payments, p auth.Principal, projectID uuid.UUID) ProjectModel {
	return ProjectModel{
		financials: financials,
		payments:   payments,
		principal:  p,
		projectID:  projectID,
		loading:    true,
		now:        time.Now,
		table: newTable([]table.Column{
			{Title: "#", Width: 3},
			{Title: "Milestone", Width: 28},
			{Title: "Status", Width: 15},
			{Title: "Amount", Width: 12},
			{Title: "Paid", Width: 12},
			{Title: "Due", Width: 12},
		}),
	}
}

func (m ProjectModel) Title() string { return "Project" }

func (m ProjectModel) ShortHelp() string {
	switch m.state {
	case projectStatePay:
		return "Navigate form | Esc: cancel"
	case projectStateHistory:
		return "Esc: close"
	}

	return "p: record payment | h: payment history | r: refresh | Esc: back"
}

func (m ProjectModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m ProjectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadProjectMsg:
		m.loading = false
		m.err = msg.err

		if msg.err == nil {
			m.detail = msg.detail
			m.refreshTable()
		}

		return m, nil

	case paymentMsg:
		m.state = projectStateBrowse
		m.form = nil
		m.table.Focus()

		if msg.err != nil {
			m.status = "Payment rejected: " + describe(msg.err)
			return m, nil
		}

		m.status = msg.outcome.Message

		return m, m.loadCmd()

	case historyMsg:
		if msg.err != nil {
			m.state = projectStateBrowse
			m.status = "Error: " + describe(msg.err)

			return m, nil
		}

		m.history = msg.history

		return m, nil

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 16)
		return m, nil
	}

	switch m.state {
	case projectStatePay:
		return m.updatePay(msg)
	case projectStateHistory:
		if key, ok := msg.(tea.KeyMsg); ok && key.Type == tea.KeyEsc {
			m.state = projectStateBrowse
			m.history = nil
			m.table.Focus()
		}

		return m, nil
	}

	return m.updateBrowse(msg)
}

func (m ProjectModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "p":
			return m.enterPayMode()
		case "h":
			ms := m.selected()
			if ms == nil {
				return m, nil
			}

			m.state = projectStateHistory
			m.table.Blur()

			return m, m.historyCmd(ms.ID)
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m ProjectModel) enterPayMode() (tea.Model, tea.Cmd) {
	ms := m.selected()
	if ms == nil {
		return m, nil
	}

	if ms.Status == milestone.StatusCancelled || ms.Status == milestone.StatusPaid {
		m.status = fmt.Sprintf("%q is %s", ms.Title, ms.Status)
		return m, nil
	}

	m.fields = &paymentFields{
		amount: ms.Remaining().StringFixed(2),
		date:   m.now().Format(time.DateOnly),
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("amount").
				Title("Amount").
				Value(&m.fields.amount).
				Validate(func(s string) error {
					_, err := parseAmount(s)
					return err
				}),

			huh.NewInput().
				Key("date").
				Title("Payment date").
				Placeholder("YYYY-MM-DD").
				Value(&m.fields.date).
				Validate(func(s string) error {
					if _, err := time.Parse(time.DateOnly, strings.TrimSpace(s)); err != nil {
						return errors.New("use YYYY-MM-DD")
					}

					return nil
				}),

			huh.NewInput().
				Key("reference").
				Title("Reference").
				Placeholder("optional").
				Value(&m.fields.reference),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = projectStatePay
	m.table.Blur()

	return m, m.form.Init()
}

func (m ProjectModel) updatePay(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.Type == tea.KeyEsc {
		m.state = projectStateBrowse
		m.form = nil
		m.table.Focus()

		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	return m, m.payCmd()
}

func (m ProjectModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading project...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v\n\n(Esc to back)", m.err))
	}

	p, s := m.detail.Project, m.detail.Summary

	header := fmt.Sprintf("%s  %s\n\nTotal %s | Received %s | Spent %s | Balance %s | Outstanding %s",
		lipgloss.NewStyle().Bold(true).Render(p.Name),
		faint(p.ClientName),
		FormatAmount(s.TotalAmount),
		FormatAmount(s.AmountReceived),
		FormatAmount(s.AmountSpent),
		activeStyle(FormatAmount(s.Balance)),
		FormatAmount(s.AmountOutstanding),
	)

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		boxed(m.table.View()),
	)

	var panel string

	switch {
	case m.state == projectStatePay && m.form != nil:
		title := ""
		if ms := m.selected(); ms != nil {
			title = ms.Title
		}

		panel = fmt.Sprintf("Record payment\n\n%s\n\n%s", title, m.form.View())
	case m.state == projectStateHistory:
		panel = m.historyView()
	}

	if panel != "" {
		content = lipgloss.JoinHorizontal(lipgloss.Top, content, lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(48).
			Render(panel))
	}

	if m.status != "" {
		content = faint(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content + "\n" + faint(m.ShortHelp()))
}

func (m ProjectModel) historyView() string {
	if m.history == nil {
		return "Loading payments..."
	}

	if len(m.history.Payments) == 0 {
		return "No payments recorded."
	}

	var b strings.Builder

	b.WriteString("Payments\n\n")

	for _, pay := range m.history.Payments {
		ref := ""
		if pay.Reference != nil {
			ref = " " + *pay.Reference
		}

		fmt.Fprintf(&b, "%s  %10s%s\n", pay.PaidAt.Format(time.DateOnly), FormatAmount(pay.Amount), ref)
	}

	fmt.Fprintf(&b, "\nTotal %s", FormatAmount(m.history.TotalPaid))

	return b.String()
}

func (m ProjectModel) selected() *milestone.Milestone {
	if m.detail == nil {
		return nil
	}

	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.detail.Project.Milestones) {
		return nil
	}

	return m.detail.Project.Milestones[idx]
}

func (m *ProjectModel) refreshTable() {
	milestones := m.detail.Project.Milestones

	rows := make([]table.Row, 0, len(milestones))
	for _, ms := range milestones {
		rows = append(rows, table.Row{
			fmt.Sprint(ms.OrderIndex),
			ms.Title,
			string(ms.Status),
			FormatAmount(ms.Amount),
			FormatAmount(ms.AmountPaid),
			FormatDate(ms.DueDate),
		})
	}

	m.table.SetRows(rows)
}

// describe turns a service error into one line for the status bar.
func describe(err error) string {
	var verr *apperr.ValidationError
	if errors.As(err, &verr) && len(verr.Fields) > 0 {
		msgs := make([]string, len(verr.Fields))
		for i, f := range verr.Fields {
			msgs[i] = f.Field + " " + f.Message
		}

		return strings.Join(msgs, "; ")
	}

	return err.Error()
}

func parseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, errors.New("not a number")
	}

	if !d.IsPositive() {
		return decimal.Zero, errors.New("must be positive")
	}

	return d, nil
}

type loadProjectMsg struct {
	detail *financial.ProjectSummary
	err    error
}

func (m ProjectModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		detail, err := m.financials.ProjectFinancials(ctx, m.principal, m.projectID)

		return loadProjectMsg{detail: detail, err: err}
	}
}

type paymentMsg struct {
	outcome *milestone.PaymentOutcome
	err     error
}

func (m ProjectModel) payCmd() tea.Cmd {
	ms := m.selected()
	if ms == nil || m.fields == nil {
		return nil
	}

	fields := *m.fields

	return func() tea.Msg {
		amount, err := parseAmount(fields.amount)
		if err != nil {
			return paymentMsg{err: apperr.Invalid("amount", "number", err.Error())}
		}

		params := milestone.RecordPaymentParams{
			MilestoneID: ms.ID,
			Amount:      amount,
			PaymentDate: strings.TrimSpace(fields.date),
		}

		if ref := strings.TrimSpace(fields.reference); ref != "" {
			params.Reference = &ref
		}

		ctx, cancel := DbCtx()
		defer cancel()

		out, err := m.payments.RecordPayment(ctx, m.principal, params)

		return paymentMsg{outcome: out, err: err}
	}
}

type historyMsg struct {
	history *milestone.History
	err     error
}

func (m ProjectModel) historyCmd(id uuid.UUID) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		h, err := m.payments.History(ctx, m.principal, id)

		return historyMsg{history: h, err: err}
	}
}
