// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Tidemark Systems

package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tidemark/sliptap/pkg/slip"
)

// Event log entry
type monitorLogEntry struct {
	timestamp time.Time
	message   string
	isError   bool
}

// Messages
type monitorTickMsg time.Time
type monitorEventMsg streamEvent
type monitorReadErrMsg struct {
	err error
}

// monitorModel is the Bubble Tea model for the stream monitor
type monitorModel struct {
	connInfo      string
	stats         *slip.Statistics
	eventLog      []monitorLogEntry
	maxLogEntries int
	logView       viewport.Model
	follow        bool
	width         int
	height        int
	quitting      bool
	readErr       error
}

func newMonitorModel(connInfo string) monitorModel {
	return monitorModel{
		connInfo:      connInfo,
		stats:         slip.NewStatistics(),
		eventLog:      make([]monitorLogEntry, 0),
		maxLogEntries: 500,
		logView:       viewport.New(80, 12),
		follow:        true,
		width:         80,
		height:        24,
	}
}

func (m monitorModel) Init() tea.Cmd {
	return tea.Batch(
		monitorTickCmd(),
		tea.EnterAltScreen,
	)
}

func monitorTickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return monitorTickMsg(t)
	})
}

func (m monitorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "f":
			m.follow = !m.follow
		default:
			// Scrolling detaches the log from the live tail
			var cmd tea.Cmd
			m.logView, cmd = m.logView.Update(msg)
			m.follow = m.logView.AtBottom()
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.logView.Width = msg.Width - 4
		m.logView.Height = msg.Height - 12
		if m.logView.Height < 3 {
			m.logView.Height = 3
		}
		m.refreshLog()

	case monitorTickMsg:
		m.stats.CalculateRates()
		return m, monitorTickCmd()

	case monitorEventMsg:
		ev := streamEvent(msg)
		applyEvent(m.stats, ev)
		if ev.err != nil {
			m.addLogEntry(fmt.Sprintf("FRAMING ERROR: %v (resynchronized)", ev.err), true)
		} else if monitorShowAll {
			m.addLogEntry(fmt.Sprintf("frame: %d payload bytes (%d on wire)", ev.payloadLen, ev.wireLen), false)
		}

	case monitorReadErrMsg:
		m.readErr = msg.err
		m.addLogEntry(fmt.Sprintf("READ ERROR: %v", msg.err), true)
	}

	return m, nil
}

func (m *monitorModel) addLogEntry(message string, isError bool) {
	m.eventLog = append(m.eventLog, monitorLogEntry{
		timestamp: time.Now(),
		message:   message,
		isError:   isError,
	})
	if len(m.eventLog) > m.maxLogEntries {
		m.eventLog = m.eventLog[len(m.eventLog)-m.maxLogEntries:]
	}
	m.refreshLog()
}

func (m *monitorModel) refreshLog() {
	timestampStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	infoStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("11"))

	var b strings.Builder
	for _, entry := range m.eventLog {
		timestamp := entry.timestamp.Format("15:04:05.000")
		if entry.isError {
			b.WriteString(fmt.Sprintf("%s %s\n",
				timestampStyle.Render(timestamp),
				errorStyle.Render("✗ "+entry.message),
			))
		} else {
			b.WriteString(fmt.Sprintf("%s %s\n",
				timestampStyle.Render(timestamp),
				infoStyle.Render("ℹ "+entry.message),
			))
		}
	}
	m.logView.SetContent(b.String())
	if m.follow {
		m.logView.GotoBottom()
	}
}

func (m monitorModel) View() string {
	if m.quitting {
		return "Shutting down...\n"
	}

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

	var s strings.Builder
	s.WriteString(titleStyle.Render("SLIPTAP - STREAM MONITOR"))
	s.WriteString("\n")
	s.WriteString(headerStyle.Render(fmt.Sprintf("%s | Mode: %s | 'f' follow, 'q' quit",
		m.connInfo, func() string {
			if monitorShowAll {
				return "All frames"
			}
			return "Errors only"
		}())))
	s.WriteString("\n\n")

	if m.readErr != nil {
		s.WriteString(errorStyle.Render(fmt.Sprintf("Connection lost: %v", m.readErr)))
		s.WriteString("\n\n")
	}

	// Statistics
	m.stats.CalculateRates()
	statsContent := strings.Builder{}
	statsContent.WriteString(fmt.Sprintf("%s %s   %s %s   %s %s\n",
		statsLabelStyle.Render("Frames:"), statsValueStyle.Render(fmt.Sprintf("%d (%d empty)", m.stats.TotalFrames, m.stats.EmptyFrames)),
		statsLabelStyle.Render("Payload:"), statsValueStyle.Render(fmt.Sprintf("%d B", m.stats.PayloadBytes)),
		statsLabelStyle.Render("Wire:"), statsValueStyle.Render(fmt.Sprintf("%d B", m.stats.WireBytes)),
	))

	if m.stats.Errors() > 0 {
		statsContent.WriteString(fmt.Sprintf("%s %s (%s %d, %s %d, %s %d)   %s %d\n",
			statsLabelStyle.Render("Errors:"), errorStyle.Render(fmt.Sprintf("%d", m.stats.Errors())),
			headerStyle.Render("header:"), m.stats.HeaderErrors,
			headerStyle.Render("escape:"), m.stats.EscapeErrors,
			headerStyle.Render("other:"), m.stats.OtherErrors,
			statsLabelStyle.Render("Resyncs:"), m.stats.Resyncs,
		))
	}

	statsContent.WriteString(fmt.Sprintf("%s %s   %s %s   %s %s",
		statsLabelStyle.Render("Frame Rate:"), statsValueStyle.Render(fmt.Sprintf("%.1f/s", m.stats.FrameRate)),
		statsLabelStyle.Render("Throughput:"), statsValueStyle.Render(fmt.Sprintf("%.0f B/s", m.stats.ByteRate)),
		statsLabelStyle.Render("Error Rate:"), func() string {
			if m.stats.ErrorRate > 0 {
				return errorStyle.Render(fmt.Sprintf("%.2f/s", m.stats.ErrorRate))
			}
			return statsValueStyle.Render(fmt.Sprintf("%.2f/s", m.stats.ErrorRate))
		}(),
	))

	s.WriteString(boxStyle.Render(statsContent.String()))
	s.WriteString("\n\n")

	// Event log
	s.WriteString(statsLabelStyle.Render("Recent Events:"))
	if !m.follow {
		s.WriteString(headerStyle.Render("  (scrolled; press 'f' to follow)"))
	}
	s.WriteString("\n")

	if len(m.eventLog) == 0 {
		s.WriteString(boxStyle.Width(m.width - 4).Render(headerStyle.Render("(no events yet)")))
	} else {
		s.WriteString(boxStyle.Width(m.width - 4).Render(m.logView.View()))
	}

	return s.String()
}
