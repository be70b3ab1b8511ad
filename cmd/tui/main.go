package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/settler/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/settler/internal/config"
	"github.com/MrJamesThe3rd/settler/internal/database"
	"github.com/MrJamesThe3rd/settler/internal/logging"
	"github.com/MrJamesThe3rd/settler/internal/reservation"
	reservationStore "github.com/MrJamesThe3rd/settler/internal/reservation/store"
	"github.com/MrJamesThe3rd/settler/internal/settlement"
	settlementStore "github.com/MrJamesThe3rd/settler/internal/settlement/store"
)

type model struct {
	cfg *config.Config
	loc *time.Location

	settlementService *settlement.Service
	sweeper           *reservation.Sweeper
	settlements       *settlementStore.Store
	reservations      *reservationStore.Store

	currentView View

	settleView       view.RunModel
	sweepView        view.RunModel
	reportView       view.ReportModel
	reservationsView view.ReservationsModel
}

type View int

const (
	ViewMenu         View = 0
	ViewSettle       View = 1
	ViewSweep        View = 2
	ViewReport       View = 3
	ViewReservations View = 4
)

func initialModel(cfg *config.Config, logger *slog.Logger) model {
	loc, err := cfg.Location()
	if err != nil {
		slog.Error("failed to load business timezone", "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.ConnectionString(), 2)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	settlements := settlementStore.New(db)
	reservations := reservationStore.New(db)

	return model{
		cfg:          cfg,
		loc:          loc,
		settlements:  settlements,
		reservations: reservations,
		settlementService: settlement.NewService(settlements, settlement.Config{
			PageSize:  cfg.Settlement.PageSize,
			ChunkSize: cfg.Settlement.ChunkSize,
			Location:  loc,
		}, logger),
		sweeper: reservation.NewSweeper(reservations, reservation.Config{
			TTL:        cfg.Reservation.TTL,
			BatchLimit: cfg.Reservation.BatchLimit,
			ChunkSize:  cfg.Reservation.ChunkSize,
		}, logger),
		currentView: ViewMenu,
	}
}

func (m model) newSettleView() view.RunModel {
	return view.NewRunModel("Settle Due Tasks", func(ctx context.Context, now time.Time) (string, error) {
		res, err := m.settlementService.SettleDueTasks(ctx, now)
		if err != nil {
			return "", err
		}

		return view.SettleSummary(res), nil
	}, m.cfg.Settlement.RunTimeout)
}

func (m model) newSweepView() view.RunModel {
	return view.NewRunModel("Expire Old Reservations", func(ctx context.Context, now time.Time) (string, error) {
		res, err := m.sweeper.ExpireOldReservations(ctx, now)
		if err != nil {
			return "", err
		}

		return view.SweepSummary(res), nil
	}, time.Minute)
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.currentView == ViewMenu {
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewSettle
				m.settleView = m.newSettleView()

				return m, m.settleView.Init()
			case "2":
				m.currentView = ViewSweep
				m.sweepView = m.newSweepView()

				return m, m.sweepView.Init()
			case "3":
				m.currentView = ViewReport
				m.reportView = view.NewReportModel(m.settlements, settlement.BusinessDay(time.Now(), m.loc))

				return m, m.reportView.Init()
			case "4":
				m.currentView = ViewReservations
				m.reservationsView = view.NewReservationsModel(m.reservations, m.cfg.Reservation.TTL)

				return m, m.reservationsView.Init()
			}
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	switch m.currentView {
	case ViewSettle:
		var newModel tea.Model
		newModel, cmd = m.settleView.Update(msg)
		m.settleView = newModel.(view.RunModel)
	case ViewSweep:
		var newModel tea.Model
		newModel, cmd = m.sweepView.Update(msg)
		m.sweepView = newModel.(view.RunModel)
	case ViewReport:
		var newModel tea.Model
		newModel, cmd = m.reportView.Update(msg)
		m.reportView = newModel.(view.ReportModel)
	case ViewReservations:
		var newModel tea.Model
		newModel, cmd = m.reservationsView.Update(msg)
		m.reservationsView = newModel.(view.ReservationsModel)
	}

	return m, cmd
}

func (m model) View() string {
	switch m.currentView {
	case ViewMenu:
		return lipgloss.NewStyle().Padding(2).Render(
			"Settler\n\n" +
				"1. Settle Due Tasks\n" +
				"2. Expire Old Reservations\n" +
				"3. Settlement Report\n" +
				"4. Pending Reservations\n\n" +
				"q. Quit",
		)
	case ViewSettle:
		return m.settleView.View()
	case ViewSweep:
		return m.sweepView.View()
	case ViewReport:
		return m.reportView.View()
	case ViewReservations:
		return m.reservationsView.View()
	}

	return "Unknown View"
}

// openLogger sends service logs to path, since anything written to the
// terminal would draw over the screen.
func openLogger(path, level string) (*slog.Logger, io.Closer, error) {
	f, err := tea.LogToFile(path, "settler-tui")
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}

	return logging.New(f, level, "text"), f, nil
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger, logFile, err := openLogger(cfg.App.TUILogFile, cfg.App.LogLevel)
	if err != nil {
		slog.Error("failed to open log file", "path", cfg.App.TUILogFile, "error", err)
		os.Exit(1)
	}

	p := tea.NewProgram(initialModel(cfg, logger))
	_, err = p.Run()

	logFile.Close()

	if err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
