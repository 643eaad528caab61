package view

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/kova/internal/auth"
	"github.com/MrJamesThe3rd/kova/internal/financial"
	"github.com/MrJamesThe3rd/kova/internal/project"
)

// Portfolio lists the projects of a firm with their summaries.
type Portfolio interface {
	Portfolio(ctx context.Context, p auth.Principal, withExpenses bool) ([]financial.ProjectSummary, error)
}

// OpenProjectMsg asks the app to show one project.
type OpenProjectMsg struct {
	Project *project.Project
}

type ProjectsModel struct {
	CommonModel
	portfolio Portfolio
	principal auth.Principal

	table     table.Model
	summaries []financial.ProjectSummary
	// quick skips expenses and shows partial balances.
	quick   bool
	loading bool
	err     error
}

func NewProjectsModel(portfolio Portfolio, p auth.Principal) ProjectsModel {
	return ProjectsModel{
		portfolio: portfolio,
		principal: p,
		loading:   true,
		table: newTable([]table.Column{
			{Title: "Project", Width: 28},
			{Title: "Client", Width: 20},
			{Title: "Status", Width: 10},
			{Title: "Total", Width: 12},
			{Title: "Received", Width: 12},
			{Title: "Balance", Width: 12},
			{Title: "Paid", Width: 6},
		}),
	}
}

func (m ProjectsModel) Title() string { return "Projects" }

func (m ProjectsModel) ShortHelp() string {
	return "Enter: open | x: toggle expenses | r: refresh | Esc: back"
}

func (m ProjectsModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m ProjectsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadProjectsMsg:
		m.loading = false
		m.err = msg.err

		if msg.err == nil {
			m.summaries = msg.summaries
			m.refreshTable()
		}

		return m, nil

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "x":
			m.quick = !m.quick
			m.loading = true

			return m, m.loadCmd()
		case "enter":
			idx := m.table.Cursor()
			if idx < 0 || idx >= len(m.summaries) {
				return m, nil
			}

			proj := m.summaries[idx].Project

			return m, func() tea.Msg { return OpenProjectMsg{Project: proj} }
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m ProjectsModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading projects...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v", m.err))
	}

	mode := "with expenses"
	if m.quick {
		mode = "payments only"
	}

	header := fmt.Sprintf("%d projects | [x] Balance: %s", len(m.summaries), activeStyle(mode))

	return lipgloss.NewStyle().Padding(1).Render(lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		boxed(m.table.View()),
		faint(m.ShortHelp()),
	))
}

func (m *ProjectsModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.summaries))
	for _, s := range m.summaries {
		rows = append(rows, table.Row{
			s.Project.Name,
			s.Project.ClientName,
			string(s.Project.Status),
			FormatAmount(s.Summary.TotalAmount),
			FormatAmount(s.Summary.AmountReceived),
			FormatAmount(s.Summary.Balance),
			fmt.Sprintf("%d/%d", s.Summary.MilestonesPaid, s.Summary.MilestonesPaid+s.Summary.MilestonesPending),
		})
	}

	m.table.SetRows(rows)
}

type loadProjectsMsg struct {
	summaries []financial.ProjectSummary
	err       error
}

func (m ProjectsModel) loadCmd() tea.Cmd {
	withExpenses := !m.quick

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		summaries, err := m.portfolio.Portfolio(ctx, m.principal, withExpenses)

		return loadProjectsMsg{summaries: summaries, err: err}
	}
}
