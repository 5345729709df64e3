// Package tui renders the pipeline board in the terminal and turns mouse
// and keyboard input into board operations.
//
// Keys:
//
//	←/→ ↑/↓ (h/l k/j)  move focus; while moving a card ←/→ pick the target
//	space              pick up the focused card
//	enter              drop it on the focused column
//	esc                cancel the move / dismiss a prompt
//	n                  advance the focused card one stage
//	r                  refetch
//	y / n              answer an automation prompt
//	q                  quit
//
// The mouse can drag cards directly; a press that moves less than the
// activation distance is a click and only focuses the card.
package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"edluar/pipeline/internal/board"
	"edluar/pipeline/internal/model"
)

type loadedMsg struct{ err error }

type settledMsg struct{ out board.Outcome }

// Model is the bubbletea model of the board screen.
type Model struct {
	ctx     context.Context
	session *board.Session
	filter  string

	width, height int

	focusCol int
	focusRow int

	status string
	view   board.Destination
}

// New builds a board screen. The session's navigator is replaced so that
// accepted prompts are reflected in the status line.
func New(ctx context.Context, store board.Store, jobFilter string, opts board.Options) *Model {
	m := &Model{ctx: ctx, filter: jobFilter}
	opts.Navigator = board.NavigatorFunc(m.navigate)
	m.session = board.NewSession(store, opts)
	return m
}

// Run starts the full-screen program and blocks until the user quits.
func Run(m *Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(m.ctx))
	_, err := p.Run()
	return err
}

// Session exposes the underlying board session.
func (m *Model) Session() *board.Session { return m.session }

func (m *Model) navigate(d board.Destination) {
	m.view = d
	switch d.View {
	case board.ViewJobs:
		m.status = "opened jobs"
	default:
		m.status = fmt.Sprintf("opened %s for %s", d.View, d.ApplicationID)
	}
}

func (m *Model) Init() tea.Cmd {
	return m.load(m.filter)
}

func (m *Model) load(filter string) tea.Cmd {
	return func() tea.Msg {
		return loadedMsg{err: m.session.Load(m.ctx, filter)}
	}
}

func (m *Model) refetch() tea.Cmd {
	return func() tea.Msg {
		return loadedMsg{err: m.session.Refetch(m.ctx)}
	}
}

func (m *Model) settle(mv board.Move) tea.Cmd {
	return func() tea.Msg {
		return settledMsg{out: m.session.Settle(m.ctx, mv)}
	}
}

func (m *Model) quickAdvance(id string) tea.Cmd {
	return func() tea.Msg {
		return settledMsg{out: m.session.QuickAdvance(m.ctx, id)}
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height

	case loadedMsg:
		if msg.err != nil {
			m.status = "refresh failed: " + msg.err.Error()
		}
		m.clampFocus()

	case settledMsg:
		m.status = describe(msg.out)
		m.clampFocus()

	case tea.KeyMsg:
		return m, m.handleKey(msg)

	case tea.MouseMsg:
		return m, m.handleMouse(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	key := msg.String()
	if key == "ctrl+c" {
		return tea.Quit
	}

	if m.session.Hints.Current().Show {
		switch key {
		case "y", "enter":
			m.session.Hints.Accept()
		case "n", "esc":
			m.session.Hints.Decline()
		}
		return nil
	}

	dragging := m.session.Drag.State() == board.Dragging
	switch key {
	case "q":
		return tea.Quit
	case "left", "h":
		m.moveFocus(-1, 0, dragging)
	case "right", "l":
		m.moveFocus(1, 0, dragging)
	case "up", "k":
		m.moveFocus(0, -1, dragging)
	case "down", "j":
		m.moveFocus(0, 1, dragging)
	case " ", "space":
		if id, ok := m.focusedID(); ok && m.session.Drag.KeyActivate(id) {
			m.status = "moving card, pick a column and press enter"
		}
	case "enter":
		if !dragging {
			return nil
		}
		mv, ok := m.session.Drop(board.ColumnTarget(model.ActiveStages[m.focusCol]))
		if !ok {
			m.status = "no move"
			return nil
		}
		m.focusRow = len(m.session.Board.Snapshot()[m.focusCol].Data) - 1
		return m.settle(mv)
	case "esc":
		if dragging {
			m.session.Drag.Cancel()
			m.status = "move cancelled"
		}
	case "n":
		if id, ok := m.focusedID(); ok && !dragging {
			return m.quickAdvance(id)
		}
	case "r":
		m.status = "refreshing"
		return m.refetch()
	}
	return nil
}

func (m *Model) handleMouse(msg tea.MouseMsg) tea.Cmd {
	pt := board.Point{X: msg.X, Y: msg.Y}
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft || m.session.Hints.Current().Show {
			return nil
		}
		if id, ok := m.cardAt(msg.X, msg.Y); ok {
			m.session.Drag.PointerDown(id, pt)
		}
	case tea.MouseActionMotion:
		if m.session.Drag.PointerMove(pt) {
			m.status = "dragging"
		}
	case tea.MouseActionRelease:
		if m.session.Drag.State() != board.Dragging {
			// A click: focus the card under the pointer.
			m.session.Drag.Cancel()
			if col, row, ok := m.cellAt(msg.X, msg.Y); ok {
				m.focusCol, m.focusRow = col, row
				m.clampFocus()
			}
			return nil
		}
		mv, ok := m.session.Drop(m.targetAt(msg.X, msg.Y))
		if !ok {
			m.status = "no move"
			return nil
		}
		return m.settle(mv)
	}
	return nil
}

func (m *Model) moveFocus(dCol, dRow int, dragging bool) {
	m.focusCol += dCol
	if !dragging {
		m.focusRow += dRow
	}
	m.clampFocus()
}

func (m *Model) clampFocus() {
	n := len(model.ActiveStages)
	m.focusCol = max(0, min(m.focusCol, n-1))
	size := len(m.session.Board.Snapshot()[m.focusCol].Data)
	m.focusRow = max(0, min(m.focusRow, size-1))
}

func (m *Model) focusedID() (string, bool) {
	cols := m.session.Board.Snapshot()
	data := cols[m.focusCol].Data
	if m.focusRow < 0 || m.focusRow >= len(data) {
		return "", false
	}
	return data[m.focusRow].ID, true
}

func describe(out board.Outcome) string {
	switch {
	case !out.Advanced && out.AdvanceErr == nil:
		return "already at the last stage"
	case out.AdvanceErr != nil:
		return "update failed, board refreshed: " + out.AdvanceErr.Error()
	case out.RefetchErr != nil:
		return fmt.Sprintf("moved to %s, refresh failed: %v", out.Move.To, out.RefetchErr)
	}
	return fmt.Sprintf("moved to %s", out.Move.To)
}
