// Package tui renders the deal pipeline as an interactive kanban board in
// the terminal, driving the board controller with keyboard moves instead of
// drag and drop.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"dealflow_backend/internal/board"
	"dealflow_backend/internal/deals/domain"
	"dealflow_backend/internal/deals/repository"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const opTimeout = 10 * time.Second

var (
	columnStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1).
			Width(24)
	focusedColumnStyle = columnStyle.
				BorderForeground(lipgloss.Color("212"))
	titleStyle = lipgloss.NewStyle().Bold(true)
	cardStyle  = lipgloss.NewStyle().PaddingLeft(1)
	cursorCard = lipgloss.NewStyle().PaddingLeft(1).
			Foreground(lipgloss.Color("212")).Bold(true)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
)

type refreshedMsg struct{ err error }

type movedMsg struct{ err error }

// Model is the bubbletea model for the board.
type Model struct {
	controller *board.Controller

	columns []string
	col     int
	row     int

	search    textinput.Model
	searching bool
	moving    bool

	showArchived bool
	status       string
}

// New creates the board model. The controller must already be loaded.
func New(controller *board.Controller) Model {
	search := textinput.New()
	search.Placeholder = "search brand or contact"
	search.CharLimit = 80

	return Model{
		controller: controller,
		columns:    domain.Stages,
		search:     search,
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) refresh() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()
		return refreshedMsg{err: m.controller.Load(ctx)}
	}
}

func (m Model) moveCursorDeal(stage string) tea.Cmd {
	deal, ok := m.cursorDeal()
	if !ok {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()
		return movedMsg{err: m.controller.Move(ctx, deal.ID, board.OnColumn(stage))}
	}
}

func (m Model) archiveCursorDeal() tea.Cmd {
	deal, ok := m.cursorDeal()
	if !ok {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()
		return movedMsg{err: m.controller.Archive(ctx, deal.ID)}
	}
}

func (m Model) columnDeals() map[string][]repository.Deal {
	return m.controller.Columns()
}

func (m Model) cursorDeal() (repository.Deal, bool) {
	deals := m.columnDeals()[m.columns[m.col]]
	if m.row < 0 || m.row >= len(deals) {
		return repository.Deal{}, false
	}
	return deals[m.row], true
}

func (m *Model) clampRow() {
	deals := m.columnDeals()[m.columns[m.col]]
	if m.row >= len(deals) {
		m.row = len(deals) - 1
	}
	if m.row < 0 {
		m.row = 0
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case refreshedMsg:
		if msg.err != nil {
			m.status = "refresh failed: " + msg.err.Error()
		} else {
			m.status = ""
		}
		m.clampRow()
		return m, nil

	case movedMsg:
		m.moving = false
		if msg.err != nil {
			m.status = "move failed: " + msg.err.Error()
		} else {
			m.status = ""
		}
		m.clampRow()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.searching {
		switch msg.String() {
		case "enter", "esc":
			m.searching = false
			m.search.Blur()
			m.controller.SetSearch(m.search.Value())
			m.clampRow()
			return m, nil
		default:
			var cmd tea.Cmd
			m.search, cmd = m.search.Update(msg)
			m.controller.SetSearch(m.search.Value())
			return m, cmd
		}
	}

	if m.moving {
		m.moving = false
		if idx := stageIndexForKey(msg.String()); idx >= 0 {
			return m, m.moveCursorDeal(m.columns[idx])
		}
		m.status = ""
		return m, nil
	}

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "left", "h":
		if m.col > 0 {
			m.col--
			m.clampRow()
		}
	case "right", "l":
		if m.col < len(m.columns)-1 {
			m.col++
			m.clampRow()
		}
	case "up", "k":
		if m.row > 0 {
			m.row--
		}
	case "down", "j":
		m.row++
		m.clampRow()
	case "m":
		if _, ok := m.cursorDeal(); ok {
			m.moving = true
			m.status = "move to: 1-9=columns 0=invoiced p=paid c=complete z=paused esc=cancel"
		}
	case "x":
		return m, m.archiveCursorDeal()
	case "tab":
		m.showArchived = !m.showArchived
		m.controller.SetShowArchived(m.showArchived)
		m.clampRow()
	case "/":
		m.searching = true
		m.search.Focus()
	case "r":
		return m, m.refresh()
	}

	return m, nil
}

// stageIndexForKey maps a move-mode key to a column index: digits 1-9 cover
// the first nine stages, 0/p/c/z the tail of the pipeline.
func stageIndexForKey(key string) int {
	switch key {
	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		return int(key[0] - '1')
	case "0":
		return 9
	case "p":
		return 10
	case "c":
		return 11
	case "z":
		return 12
	default:
		return -1
	}
}

func (m Model) View() string {
	columns := m.columnDeals()

	rendered := make([]string, 0, len(m.columns))
	for i, stage := range m.columns {
		deals := columns[stage]

		var b strings.Builder
		b.WriteString(titleStyle.Render(fmt.Sprintf("%s (%d)", domain.StageLabels[stage], len(deals))))
		b.WriteString("\n")

		for j, deal := range deals {
			label := deal.Brand
			if deal.Value != nil {
				label += " " + dimStyle.Render(*deal.Value)
			}
			if deal.Archived {
				label += dimStyle.Render(" [archived]")
			}
			if i == m.col && j == m.row {
				b.WriteString(cursorCard.Render("> " + label))
			} else {
				b.WriteString(cardStyle.Render(label))
			}
			b.WriteString("\n")
		}

		style := columnStyle
		if i == m.col {
			style = focusedColumnStyle
		}
		rendered = append(rendered, style.Render(b.String()))
	}

	// Three board rows so thirteen columns fit on a normal terminal.
	var rows []string
	for start := 0; start < len(rendered); start += 5 {
		end := start + 5
		if end > len(rendered) {
			end = len(rendered)
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, rendered[start:end]...))
	}

	view := strings.Join(rows, "\n")

	footer := "h/l columns  j/k cards  m move  x archive  tab archived  / search  r refresh  q quit"
	if m.searching {
		footer = m.search.View()
	}
	if m.status != "" {
		footer = statusStyle.Render(m.status)
	}

	return view + "\n" + dimStyle.Render(footer) + "\n"
}
