package view

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/settler/internal/settlement"
)

type ReportReader interface {
	GetReport(ctx context.Context, merchantID string, day time.Time) (*settlement.Report, error)
}

type reportState int

const (
	reportStateForm reportState = iota
	reportStateResult
)

type reportQuery struct {
	merchantID string
	date       string
}

// ReportModel looks up one merchant's ledger row for a business day.
type ReportModel struct {
	CommonModel
	reports ReportReader

	state  reportState
	form   *huh.Form
	query  *reportQuery
	report *settlement.Report
	err    error
}

func NewReportModel(reports ReportReader, today time.Time) ReportModel {
	m := ReportModel{
		reports: reports,
		query:   &reportQuery{date: FormatDate(today)},
	}
	m.form = m.buildForm()

	return m
}

func (m ReportModel) Title() string { return "Settlement Report" }

func (m ReportModel) ShortHelp() string {
	if m.state == reportStateResult {
		return "Esc: back to menu | n: new lookup"
	}

	return "Esc: back | Enter: confirm"
}

func (m ReportModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m ReportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if loaded, ok := msg.(reportLoadedMsg); ok {
		m.state = reportStateResult
		m.report = loaded.report
		m.err = loaded.err

		return m, nil
	}

	if m.state == reportStateResult {
		if keyMsg, ok := msg.(tea.KeyMsg); ok {
			switch keyMsg.String() {
			case "esc":
				return m, Back
			case "n":
				m.state = reportStateForm
				m.form = m.buildForm()

				return m, m.form.Init()
			}
		}

		return m, nil
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		return m, Back
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	return m, m.loadCmd()
}

func (m ReportModel) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("merchant_id").
				Title("Merchant ID").
				Value(&m.query.merchantID).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("merchant id cannot be empty")
					}
					return nil
				}),

			huh.NewInput().
				Key("date").
				Title("Settlement Date").
				Placeholder("YYYY-MM-DD").
				Value(&m.query.date).
				Validate(func(s string) error {
					_, err := time.Parse(time.DateOnly, strings.TrimSpace(s))
					return err
				}),
		),
	).WithWidth(45).WithShowHelp(false)
}

func (m ReportModel) View() string {
	if m.state == reportStateForm {
		return lipgloss.NewStyle().Padding(1).Render(m.form.View())
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(1).Render(errorStyle(fmt.Sprintf("Error: %v", m.err)))
	}

	if m.report == nil {
		return lipgloss.NewStyle().Padding(1).Render(
			fmt.Sprintf("No settlement for %s on %s.", activeStyle(m.query.merchantID), m.query.date),
		)
	}

	r := m.report
	rows := [][2]string{
		{"Transactions", fmt.Sprintf("%d", r.TransactionCount)},
		{"Amount", FormatAmount(r.TransactionAmount)},
		{"Commission", FormatAmount(r.Commission)},
		{"GST", FormatAmount(r.GST)},
		{"Withholding Tax", FormatAmount(r.WithholdingTax)},
		{"Deduction", FormatAmount(r.DeductionApplied)},
		{"Merchant Amount", FormatAmount(r.MerchantAmount)},
	}

	label := lipgloss.NewStyle().Width(18).Faint(true)

	lines := []string{
		lipgloss.NewStyle().Bold(true).Render(fmt.Sprintf("%s  %s", r.MerchantID, FormatDate(r.SettlementDate))),
		"",
	}
	for _, row := range rows {
		lines = append(lines, label.Render(row[0])+row[1])
	}

	return lipgloss.NewStyle().
		Padding(1, 2).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("63")).
		Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

type reportLoadedMsg struct {
	report *settlement.Report
	err    error
}

func (m ReportModel) loadCmd() tea.Cmd {
	merchantID := strings.TrimSpace(m.query.merchantID)
	date := strings.TrimSpace(m.query.date)

	return func() tea.Msg {
		day, err := time.Parse(time.DateOnly, date)
		if err != nil {
			return reportLoadedMsg{err: err}
		}

		ctx, cancel := DbCtx()
		defer cancel()

		report, err := m.reports.GetReport(ctx, merchantID, day)

		return reportLoadedMsg{report: report, err: err}
	}
}
