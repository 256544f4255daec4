package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kalkin/glv/internal/config"
	"github.com/kalkin/glv/internal/forkpoint"
	"github.com/kalkin/glv/internal/history"
)

// Model is the top level bubbletea model: a header, the history view and a
// footer with key hints.
type Model struct {
	width   int
	height  int
	history *HistoryView
	keys    keyMap
	title   string
	err     error
}

// NewModel assembles the application model. total is the up-front counted
// first-parent history length.
func NewModel(cfg config.Config, builder *history.Builder, worker *forkpoint.Worker, workingDir, revRange string, paths []string, total int) Model {
	return Model{
		history: NewHistoryView(cfg, builder, worker, revRange, paths, total),
		keys:    defaultKeyMap(),
		title:   fmt.Sprintf("%s  %s", strings.TrimSuffix(workingDir, "/"), revRange),
	}
}

func (m Model) Init() tea.Cmd {
	return m.history.Init()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if !m.history.searching && key.Matches(msg, m.keys.Quit) {
			return m, tea.Quit
		}

	case errMsg:
		m.err = msg.err
		return m, tea.Quit

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		// Two chrome rows, the rest belongs to the history.
		msg.Height -= 2
		var cmd tea.Cmd
		m.history, cmd = m.history.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.history, cmd = m.history.Update(msg)
	return m, cmd
}

// Err exposes the failure that ended the program, if any.
func (m Model) Err() error {
	return m.err
}

func (m Model) View() string {
	if m.err != nil {
		return fmt.Sprintf("Error: %v\n", m.err)
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.renderHeader(),
		m.history.View(),
		m.renderFooter(),
	)
}

func (m Model) renderHeader() string {
	style := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("170")).
		Padding(0, 1)
	return style.Render(m.title)
}

func (m Model) renderFooter() string {
	style := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")).
		Padding(0, 1)
	row, total := m.history.Position()
	help := "enter: fold · h: parent · f: follow · /: search · q: quit"
	return style.Render(fmt.Sprintf("%d/%d  %s", row, total, help))
}
