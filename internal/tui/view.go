package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"edluar/pipeline/internal/board"
	"edluar/pipeline/internal/model"
)

// Layout, in terminal cells. Cards start below the title, status, header
// and separator rows and are cardHeight rows tall.
const (
	colWidth   = 24
	cardsTop   = 4
	cardHeight = 3
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("10"))

	targetHeaderStyle = headerStyle.
				Foreground(lipgloss.Color("11")).
				Underline(true)

	cardStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("7"))

	focusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("12"))

	activeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("11"))

	promptStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("13")).
			Padding(0, 1)
)

var columnTitles = map[model.Status]string{
	model.StatusApplied:     "Applied",
	model.StatusPhoneScreen: "Phone screen",
	model.StatusInterview:   "Interview",
	model.StatusOffer:       "Offer",
	model.StatusHired:       "Hired",
}

func (m *Model) View() string {
	var b strings.Builder

	scope := "all jobs"
	if f := m.session.Board.JobFilter(); f != "" {
		scope = "job " + f
	}
	b.WriteString(titleStyle.Render("Edluar pipeline · "+scope) + "\n")
	b.WriteString(statusStyle.Render(truncate(m.status, max(m.width, colWidth*len(model.ActiveStages)))) + "\n")

	activeID := m.session.Drag.ActiveID()
	cols := m.session.Board.Snapshot()
	rendered := make([]string, len(cols))
	for i, col := range cols {
		rendered[i] = m.renderColumn(i, col, activeID)
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, rendered...))
	b.WriteString("\n")

	if p := m.session.Hints.Current(); p.Show {
		b.WriteString(promptStyle.Render(p.Message() + "\n[y] yes  [n] no"))
		b.WriteString("\n")
	}
	b.WriteString(statusStyle.Render("space grab · enter drop · esc cancel · n advance · r refresh · q quit"))
	return b.String()
}

func (m *Model) renderColumn(i int, col board.Column, activeID string) string {
	lines := make([]string, 0, 2+len(col.Data)*cardHeight)

	header := fmt.Sprintf("%s (%d)", columnTitles[col.ID], len(col.Data))
	hs := headerStyle
	if activeID != "" && i == m.focusCol {
		hs = targetHeaderStyle
	}
	lines = append(lines, hs.Render(pad(header)))
	lines = append(lines, strings.Repeat("─", colWidth-1)+" ")

	for row, app := range col.Data {
		style := cardStyle
		switch {
		case app.ID == activeID:
			style = activeStyle
		case activeID == "" && i == m.focusCol && row == m.focusRow:
			style = focusStyle
		}
		detail := app.JobTitle
		if len(app.Tags) > 0 {
			detail += " · " + strings.Join(app.Tags, ",")
		}
		lines = append(lines,
			style.Render(pad(" "+app.CandidateName)),
			style.Render(pad(" "+detail)),
			pad(""),
		)
	}
	return lipgloss.NewStyle().Width(colWidth).Render(strings.Join(lines, "\n"))
}

// cellAt maps a screen position to a column and card row.
func (m *Model) cellAt(x, y int) (col, row int, ok bool) {
	if x < 0 || y < 0 {
		return 0, 0, false
	}
	col = x / colWidth
	if col >= len(model.ActiveStages) {
		return 0, 0, false
	}
	if y < cardsTop {
		return col, -1, true
	}
	return col, (y - cardsTop) / cardHeight, true
}

// cardAt returns the card under the pointer.
func (m *Model) cardAt(x, y int) (string, bool) {
	col, row, ok := m.cellAt(x, y)
	if !ok || row < 0 {
		return "", false
	}
	data := m.session.Board.Snapshot()[col].Data
	if row >= len(data) {
		return "", false
	}
	return data[row].ID, true
}

// targetAt resolves a release position to a drop target: a card when the
// pointer is over one, otherwise the column surface.
func (m *Model) targetAt(x, y int) board.Target {
	if id, ok := m.cardAt(x, y); ok {
		return board.CardTarget(id)
	}
	col, _, ok := m.cellAt(x, y)
	if !ok {
		return board.NoTarget
	}
	return board.ColumnTarget(model.ActiveStages[col])
}

func pad(s string) string {
	s = truncate(s, colWidth-1)
	return s + strings.Repeat(" ", colWidth-1-lipgloss.Width(s)) + " "
}

func truncate(s string, width int) string {
	if lipgloss.Width(s) <= width {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && lipgloss.Width(string(r))+1 > width {
		r = r[:len(r)-1]
	}
	return string(r) + "…"
}
