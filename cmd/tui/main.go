package main

import (
	"context"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/carlosandre007/escala/cmd/tui/internal/view"
	"github.com/carlosandre007/escala/internal/charge"
	"github.com/carlosandre007/escala/internal/charge/store"
	"github.com/carlosandre007/escala/internal/config"
	"github.com/carlosandre007/escala/internal/database"
	"github.com/carlosandre007/escala/internal/events"
	"github.com/carlosandre007/escala/internal/scheduler"
)

type model struct {
	view.CommonModel
	schedulerService *scheduler.Service

	currentView View

	scheduleView view.ScheduleModel
}

type View int

const (
	ViewMenu     View = 0
	ViewSchedule View = 1
)

func initialModel() (model, func()) {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// The terminal belongs to the UI, so logs go to a file.
	logFile, err := tea.LogToFile("escala-tui.log", "")
	if err != nil {
		slog.Error("failed to open log file", "error", err)
		os.Exit(1)
	}

	logger, err := cfg.LoggerTo(logFile)
	if err != nil {
		slog.Error("failed to configure logging", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(logger)

	if cfg.DB.Migrate {
		if err := database.Migrate(cfg.ConnectionString()); err != nil {
			slog.Error("failed to migrate database", "error", err)
			os.Exit(1)
		}
	}

	db, err := database.New(context.Background(), cfg.ConnectionString(), cfg.Pool())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	publisher, closePublisher, err := events.Connect(cfg.AMQP.URL, cfg.AMQP.Exchange, cfg.AMQP.RoutingKey)
	if err != nil {
		slog.Error("failed to connect to broker", "error", err)
		os.Exit(1)
	}

	svc, err := newService(cfg, store.New(db), publisher)
	if err != nil {
		slog.Error("failed to build scheduler", "error", err)
		os.Exit(1)
	}

	m := model{
		schedulerService: svc,
		currentView:      ViewMenu,
		scheduleView:     view.NewScheduleModel(svc),
	}

	return m, func() {
		closePublisher()
		db.Close()
	}
}

// newService builds the scheduler the board drives. Every mutation made from
// the board is published through publisher.
func newService(cfg *config.Config, repo charge.Repository, publisher events.Publisher) (*scheduler.Service, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	policy, err := cfg.SuccessorPolicy()
	if err != nil {
		return nil, err
	}

	return scheduler.NewService(repo,
		scheduler.WithPublisher(publisher),
		scheduler.WithLocation(loc),
		scheduler.WithSuccessorPolicy(policy),
	), nil
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if m.currentView == ViewMenu {
			switch msg.String() {
			case "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewSchedule
				m.scheduleView = view.NewScheduleModel(m.schedulerService)
				m.scheduleView.SetSize(m.Width, m.Height)

				return m, m.scheduleView.Init()
			}
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	if m.currentView == ViewSchedule {
		var newModel tea.Model
		newModel, cmd = m.scheduleView.Update(msg)
		m.scheduleView = newModel.(view.ScheduleModel)
	}

	return m, cmd
}

func (m model) View() string {
	switch m.currentView {
	case ViewMenu:
		return lipgloss.NewStyle().Padding(2).Render(
			"Escala\n\n" +
				"1. Weekly Schedule\n\n" +
				"q. Quit",
		)
	case ViewSchedule:
		return m.scheduleView.View()
	}

	return "Unknown View"
}

func main() {
	m, cleanup := initialModel()

	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()

	cleanup()

	if err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
