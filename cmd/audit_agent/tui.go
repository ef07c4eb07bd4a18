package main

import (
	"context"
	"fmt"
	"strings"

	bprogress "github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jonathan/presence-audit/internal/progress"
	"github.com/jonathan/presence-audit/internal/types"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	phaseStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	logStyle   = lipgloss.NewStyle().Faint(true)
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	helpStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// logLines is how many of the most recent phase log entries the view shows.
const logLines = 4

type phaseMsg progress.Snapshot

type doneMsg struct {
	report types.Report
	err    error
}

// generateModel renders the loading phases while an audit runs in the background.
type generateModel struct {
	business string
	spinner  spinner.Model
	bar      bprogress.Model
	snap     progress.Snapshot
	cancel   context.CancelFunc

	report    types.Report
	err       error
	done      bool
	cancelled bool
}

func newGenerateModel(business string, cancel context.CancelFunc) generateModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("63"))

	return generateModel{
		business: business,
		spinner:  sp,
		bar:      bprogress.New(bprogress.WithDefaultGradient(), bprogress.WithWidth(40)),
		cancel:   cancel,
	}
}

func (m generateModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m generateModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc", "q":
			if m.cancel != nil {
				m.cancel()
			}
			m.cancelled = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		w := msg.Width - 4
		if w > 60 {
			w = 60
		}
		if w > 10 {
			m.bar.Width = w
		}

	case phaseMsg:
		m.snap = progress.Snapshot(msg)

	case doneMsg:
		m.done = true
		m.report = msg.report
		m.err = msg.err
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m generateModel) View() string {
	if m.done || m.cancelled {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Digital Presence Audit: " + m.business))
	b.WriteString("\n\n")

	label := m.snap.Label
	if label == "" {
		label = "Starting"
	}
	fmt.Fprintf(&b, "%s %s\n\n", m.spinner.View(), phaseStyle.Render(label))
	b.WriteString(m.bar.ViewAs(m.snap.Percent))
	b.WriteString("\n\n")

	log := m.snap.Log
	if len(log) > logLines {
		log = log[len(log)-logLines:]
	}
	for _, line := range log {
		b.WriteString(logStyle.Render(line))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("ctrl+c to cancel"))
	b.WriteString("\n")
	return b.String()
}
