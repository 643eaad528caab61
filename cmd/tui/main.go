package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/MrJamesThe3rd/kova/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/kova/internal/auth"
	"github.com/MrJamesThe3rd/kova/internal/config"
	"github.com/MrJamesThe3rd/kova/internal/database"
	expenseStore "github.com/MrJamesThe3rd/kova/internal/expense/store"
	"github.com/MrJamesThe3rd/kova/internal/financial"
	"github.com/MrJamesThe3rd/kova/internal/firm"
	firmStore "github.com/MrJamesThe3rd/kova/internal/firm/store"
	"github.com/MrJamesThe3rd/kova/internal/milestone"
	milestoneStore "github.com/MrJamesThe3rd/kova/internal/milestone/store"
	"github.com/MrJamesThe3rd/kova/internal/project"
	projectStore "github.com/MrJamesThe3rd/kova/internal/project/store"
	"github.com/MrJamesThe3rd/kova/internal/template"
	templateStore "github.com/MrJamesThe3rd/kova/internal/template/store"
)

type screen int

const (
	screenMenu screen = iota
	screenProjects
	screenProject
)

type model struct {
	financials *financial.Service
	ledger     *milestone.Ledger
	principal  auth.Principal

	current screen

	projectsView view.ProjectsModel
	projectView  view.ProjectModel
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if m.current == screenMenu {
			switch msg.String() {
			case "q":
				return m, tea.Quit
			case "1":
				m.current = screenProjects
				m.projectsView = view.NewProjectsModel(m.financials, m.principal)

				return m, m.projectsView.Init()
			}

			return m, nil
		}
	case view.OpenProjectMsg:
		m.current = screenProject
		m.projectView = view.NewProjectModel(m.financials, m.ledger, m.principal, msg.Project.ID)

		return m, m.projectView.Init()
	case view.BackMsg:
		if m.current == screenProject {
			m.current = screenProjects
			return m, m.projectsView.Init()
		}

		m.current = screenMenu

		return m, nil
	}

	switch m.current {
	case screenProjects:
		var next tea.Model
		next, cmd = m.projectsView.Update(msg)
		m.projectsView = next.(view.ProjectsModel)
	case screenProject:
		var next tea.Model
		next, cmd = m.projectView.Update(msg)
		m.projectView = next.(view.ProjectModel)
	}

	return m, cmd
}

func (m model) View() string {
	switch m.current {
	case screenProjects:
		return m.projectsView.View()
	case screenProject:
		return m.projectView.View()
	}

	return lipgloss.NewStyle().Padding(2).Render(
		"Kova\n\n" +
			"1. Projects\n\n" +
			"q. Quit",
	)
}

func main() {
	m, err := initialModel()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		fmt.Fprintln(os.Stderr, "running TUI:", err)
		os.Exit(1)
	}
}

func initialModel() (model, error) {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return model{}, err
	}

	// The screen belongs to bubbletea; service logs would corrupt it.
	logger := zap.NewNop()

	db, err := database.New(cfg.ConnectionString(), nil)
	if err != nil {
		return model{}, fmt.Errorf("connecting to database: %w", err)
	}

	ctx, cancel := view.DbCtx()
	defer cancel()

	principal, err := resolvePrincipal(ctx, cfg, firm.NewService(firmStore.New(db), logger))
	if err != nil {
		return model{}, err
	}

	var (
		projects   = projectStore.New(db)
		milestones = milestoneStore.New(db)
		expenses   = expenseStore.New(db)
	)

	var (
		templates      = template.NewService(templateStore.New(db), logger)
		ledger         = milestone.NewLedger(milestones, logger)
		projectService = project.NewService(projects, milestones, milestone.NewAllocator(templates), ledger, logger)
	)

	return model{
		financials: financial.NewService(projectService, expenses),
		ledger:     ledger,
		principal:  principal,
		current:    screenMenu,
	}, nil
}

// resolvePrincipal builds the principal the TUI acts as. The firm is looked
// up when only the user is configured.
func resolvePrincipal(ctx context.Context, cfg *config.Config, firms *firm.Service) (auth.Principal, error) {
	if cfg.TUI.UserID == "" {
		return auth.Principal{}, errors.New("TUI_USER_ID is required")
	}

	userID, err := uuid.Parse(cfg.TUI.UserID)
	if err != nil {
		return auth.Principal{}, fmt.Errorf("parsing TUI_USER_ID: %w", err)
	}

	if cfg.TUI.FirmID == "" {
		return firms.Principal(ctx, userID)
	}

	firmID, err := uuid.Parse(cfg.TUI.FirmID)
	if err != nil {
		return auth.Principal{}, fmt.Errorf("parsing TUI_FIRM_ID: %w", err)
	}

	return auth.Principal{UserID: userID, FirmID: firmID}, nil
}
