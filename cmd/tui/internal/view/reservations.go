package view

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/settler/internal/reservation"
)

type PendingLister interface {
	FindExpiredPending(ctx context.Context, cutoff time.Time, limit int) ([]reservation.Reservation, error)
}

const reservationsLimit = 200

// ReservationsModel lists PENDING reservations, by default only those the next sweep would expire.
type ReservationsModel struct {
	CommonModel
	lister PendingLister
	ttl    time.Duration

	table        table.Model
	reservations []reservation.Reservation
	allPending   bool

	loading bool
	err     error
}

func NewReservationsModel(lister PendingLister, ttl time.Duration) ReservationsModel {
	columns := []table.Column{
		{Title: "Created", Width: 20},
		{Title: "Merchant", Width: 20},
		{Title: "Provider", Width: 12},
		{Title: "Period", Width: 10},
		{Title: "Window", Width: 12},
		{Title: "Amount", Width: 14},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return ReservationsModel{
		lister:  lister,
		ttl:     ttl,
		table:   t,
		loading: true,
	}
}

func (m ReservationsModel) Title() string { return "Pending Reservations" }

func (m ReservationsModel) ShortHelp() string {
	return "Esc: back | a: toggle expired/all pending | r: refresh"
}

func (m ReservationsModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m ReservationsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadReservationsMsg:
		m.loading = false
		m.err = msg.err
		m.reservations = msg.reservations
		m.refreshTable()

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
		case "a":
			m.allPending = !m.allPending
			m.loading = true

			return m, m.loadCmd()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m ReservationsModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading reservations...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(errorStyle(fmt.Sprintf("Error: %v", m.err)))
	}

	scope := fmt.Sprintf("older than %s", m.ttl)
	if m.allPending {
		scope = "all"
	}

	total := reservationTotal(m.reservations)

	header := fmt.Sprintf("[a] Showing: %s | %d reservations | %s held",
		activeStyle(scope), len(m.reservations), FormatAmount(total))

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	return lipgloss.NewStyle().Padding(1).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			lipgloss.NewStyle().PaddingBottom(1).Render(header),
			tableView,
		),
	)
}

func (m *ReservationsModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.reservations))
	for _, r := range m.reservations {
		rows = append(rows, table.Row{
			r.CreatedAt.Format(time.DateTime),
			r.Bucket.MerchantID,
			r.Bucket.Provider,
			r.Bucket.Period,
			FormatDate(r.Bucket.WindowStart),
			FormatAmount(r.Amount),
		})
	}
	m.table.SetRows(rows)
}

type loadReservationsMsg struct {
	reservations []reservation.Reservation
	err          error
}

func (m ReservationsModel) loadCmd() tea.Cmd {
	cutoff := time.Now()
	if !m.allPending {
		cutoff = cutoff.Add(-m.ttl)
	}

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		rs, err := m.lister.FindExpiredPending(ctx, cutoff, reservationsLimit)

		return loadReservationsMsg{reservations: rs, err: err}
	}
}
