package view

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// RunFunc executes a job as of now and returns a printable summary.
type RunFunc func(ctx context.Context, now time.Time) (string, error)

type runState int

const (
	runStateConfirm runState = iota
	runStateRunning
	runStateResult
)

// RunModel confirms and runs one job, then shows its summary.
type RunModel struct {
	CommonModel
	title   string
	run     RunFunc
	timeout time.Duration

	state   runState
	form    *huh.Form
	confirm *bool
	spinner spinner.Model
	summary string
	err     error
}

func NewRunModel(title string, run RunFunc, timeout time.Duration) RunModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	m := RunModel{
		title:   title,
		run:     run,
		timeout: timeout,
		spinner: s,
		confirm: new(true),
	}
	m.form = m.buildConfirmForm()

	return m
}

func (m RunModel) Title() string { return m.title }

func (m RunModel) ShortHelp() string {
	switch m.state {
	case runStateResult:
		return "Esc: back to menu"
	case runStateRunning:
		return "Running..."
	}

	return "Esc: back | Enter: confirm"
}

func (m RunModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m RunModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m.state {
	case runStateConfirm:
		return m.updateConfirm(msg)
	case runStateRunning:
		return m.updateRunning(msg)
	case runStateResult:
		if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
			return m, Back
		}
	}

	return m, nil
}

func (m RunModel) updateConfirm(msg tea.Msg) (tea.Model, tea.Cmd) {
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

	if !*m.confirm {
		return m, Back
	}

	m.state = runStateRunning

	return m, tea.Batch(m.spinner.Tick, m.runCmd())
}

func (m RunModel) updateRunning(msg tea.Msg) (tea.Model, tea.Cmd) {
	if result, ok := msg.(runResultMsg); ok {
		m.state = runStateResult
		m.summary = result.body
		m.err = result.err

		return m, nil
	}

	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)

	return m, cmd
}

func (m RunModel) buildConfirmForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(m.title).
				Description("Runs against the live database, as the scheduler would.").
				Affirmative("Run").
				Negative("Cancel").
				Value(m.confirm),
		),
	).WithWidth(50).WithShowHelp(false)
}

func (m RunModel) View() string {
	switch m.state {
	case runStateConfirm:
		return lipgloss.NewStyle().Padding(1).Render(m.form.View())

	case runStateRunning:
		return lipgloss.NewStyle().Padding(1).Render(fmt.Sprintf("%s %s...", m.spinner.View(), m.title))

	case runStateResult:
		if m.err != nil {
			return lipgloss.NewStyle().Padding(1).Render(errorStyle(fmt.Sprintf("Error: %v", m.err)))
		}

		header := lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("46")).
			Render(m.title + ": done")

		return lipgloss.NewStyle().Padding(1).Render(
			lipgloss.JoinVertical(lipgloss.Left, header, "", m.summary),
		)
	}

	return ""
}

type runResultMsg struct {
	body string
	err  error
}

func (m RunModel) runCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
		defer cancel()

		body, err := m.run(ctx, time.Now())

		return runResultMsg{body: body, err: err}
	}
}
