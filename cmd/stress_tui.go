// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Openpulse Labs

package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/openpulse/pulseprobe/pkg/pulsegen"
)

// Exchange log entry
type exchangeLogEntry struct {
	timestamp time.Time
	command   string
	response  string
	outcome   pulsegen.Outcome
	malformed bool
}

// TUI model for the live stress view
type stressModel struct {
	connInfo      string
	totalPlanned  int
	stats         *pulsegen.Stats
	state         pulsegen.SystemState
	log           []exchangeLogEntry
	maxLogEntries int
	exchangeView  viewport.Model
	width         int
	height        int
	done          bool
	runErr        error
	quitting      bool
}

// Messages
type stressTickMsg time.Time
type exchangeMsg struct {
	exchange pulsegen.Exchange
	state    pulsegen.SystemState
}
type runDoneMsg struct {
	err error
}

func initialStressModel(connInfo string, totalPlanned int) stressModel {
	vp := viewport.New(80, 10)
	return stressModel{
		connInfo:      connInfo,
		totalPlanned:  totalPlanned,
		stats:         pulsegen.NewStats(),
		state:         pulsegen.StateUnknown,
		log:           make([]exchangeLogEntry, 0),
		maxLogEntries: 200,
		exchangeView:  vp,
		width:         80,
		height:        24,
	}
}

func (m stressModel) Init() tea.Cmd {
	return tea.Batch(
		stressTickCmd(),
		tea.EnterAltScreen,
	)
}

func stressTickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return stressTickMsg(t)
	})
}

func (m stressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}
		var cmd tea.Cmd
		m.exchangeView, cmd = m.exchangeView.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.exchangeView.Width = msg.Width - 4
		m.exchangeView.Height = m.logHeight()
		m.refreshLogView()

	case stressTickMsg:
		// Update statistics rates
		m.stats.CalculateRates()
		return m, stressTickCmd()

	case exchangeMsg:
		// Counters are duplicated locally: the runner owns its Stats and the
		// TUI must not share mutable state with the runner goroutine.
		m.stats.Record(
			pulsegen.ParseCommand(msg.exchange.Command),
			msg.exchange.Response,
			msg.exchange.Outcome,
			msg.exchange.Malformed,
		)
		m.state = msg.state
		m.addLogEntry(msg.exchange)
		m.refreshLogView()

	case runDoneMsg:
		m.done = true
		m.runErr = msg.err
	}

	return m, nil
}

func (m *stressModel) addLogEntry(ex pulsegen.Exchange) {
	m.log = append(m.log, exchangeLogEntry{
		timestamp: ex.Timestamp,
		command:   ex.Command,
		response:  ex.Response,
		outcome:   ex.Outcome,
		malformed: ex.Malformed,
	})

	// Keep only last N entries
	if len(m.log) > m.maxLogEntries {
		m.log = m.log[len(m.log)-m.maxLogEntries:]
	}
}

func (m *stressModel) logHeight() int {
	h := m.height - 12 // Reserve space for header and stats
	if h < 5 {
		h = 5
	}
	return h
}

func (m *stressModel) refreshLogView() {
	headerStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	okStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	malformedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("11"))

	var b strings.Builder
	for _, entry := range m.log {
		timestamp := entry.timestamp.Format("15:04:05.000")
		cmd := entry.command
		if cmd == "" {
			cmd = `""`
		}
		if entry.malformed {
			cmd = malformedStyle.Render(cmd + " (malformed)")
		}

		var outcome string
		if entry.outcome.Success() {
			outcome = okStyle.Render(entry.outcome.String())
		} else {
			outcome = errorStyle.Render(entry.outcome.String())
		}

		b.WriteString(fmt.Sprintf("%s %s -> %q %s\n",
			headerStyle.Render(timestamp), cmd, entry.response, outcome))
	}

	atBottom := m.exchangeView.AtBottom()
	m.exchangeView.SetContent(b.String())
	if atBottom {
		m.exchangeView.GotoBottom()
	}
}

func (m stressModel) View() string {
	if m.quitting {
		return "Shutting down...\n"
	}

	// Styles
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12")).
		Background(lipgloss.Color("235")).
		Padding(0, 1)

	headerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	statsLabelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("12")).
		Bold(true)

	statsValueStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("10"))

	errorStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("9")).
		Bold(true)

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	// Header
	var s strings.Builder
	s.WriteString(titleStyle.Render("PULSEPROBE - STRESS TEST"))
	s.WriteString("\n")
	s.WriteString(headerStyle.Render(fmt.Sprintf("%s | Press 'q' to quit", m.connInfo)))
	s.WriteString("\n\n")

	if m.done {
		if m.runErr != nil {
			s.WriteString(errorStyle.Render(fmt.Sprintf("✗ Run stopped: %v", m.runErr)))
		} else {
			s.WriteString(statsValueStyle.Render("✓ Run complete"))
		}
		s.WriteString("\n\n")
	}

	// Statistics
	m.stats.CalculateRates()
	var okPercent, errorPercent float64
	if m.stats.Sent > 0 {
		okPercent = float64(m.stats.OK) * 100.0 / float64(m.stats.Sent)
		errorPercent = float64(m.stats.Errors) * 100.0 / float64(m.stats.Sent)
	}

	statsContent := strings.Builder{}
	statsContent.WriteString(fmt.Sprintf("%s %s   %s %s   %s %s\n",
		statsLabelStyle.Render("Sent:"), statsValueStyle.Render(fmt.Sprintf("%d/%d", m.stats.Sent, m.totalPlanned)),
		statsLabelStyle.Render("OK:"), statsValueStyle.Render(fmt.Sprintf("%d (%.1f%%)", m.stats.OK, okPercent)),
		statsLabelStyle.Render("Errors:"), errorStyle.Render(fmt.Sprintf("%d (%.1f%%)", m.stats.Errors, errorPercent)),
	))

	statsContent.WriteString(fmt.Sprintf("%s %s   %s %s   %s %s\n",
		statsLabelStyle.Render("SON:"), statsValueStyle.Render(fmt.Sprintf("%d ok / %d err", m.stats.StartOK, m.stats.StartErr)),
		statsLabelStyle.Render("SOFF:"), statsValueStyle.Render(fmt.Sprintf("%d ok / %d err", m.stats.StopOK, m.stats.StopErr)),
		statsLabelStyle.Render("State:"), statsValueStyle.Render(m.state.String()),
	))

	statsContent.WriteString(fmt.Sprintf("%s %s   %s %s   %s %s",
		statsLabelStyle.Render("Malformed:"), statsValueStyle.Render(fmt.Sprintf("%d", m.stats.Malformed)),
		statsLabelStyle.Render("Timeouts:"), func() string {
			if m.stats.Timeouts > 0 {
				return errorStyle.Render(fmt.Sprintf("%d", m.stats.Timeouts))
			}
			return statsValueStyle.Render("0")
		}(),
		statsLabelStyle.Render("Rate:"), statsValueStyle.Render(fmt.Sprintf("%.1f cmds/s", m.stats.CommandRate)),
	))

	s.WriteString(boxStyle.Render(statsContent.String()))
	s.WriteString("\n\n")

	// Exchange log
	s.WriteString(statsLabelStyle.Render("Exchanges:"))
	s.WriteString("\n")
	s.WriteString(boxStyle.Width(m.width - 4).Render(m.exchangeView.View()))

	return s.String()
}
