package tui

import (
	"context"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"edluar/pipeline/internal/board"
	"edluar/pipeline/internal/model"
)

type memStore struct {
	mu    sync.Mutex
	apps  []model.Application
	moves []string
}

func (s *memStore) FetchApplications(context.Context, string) (model.Grouped, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return model.Group(append([]model.Application(nil), s.apps...)), nil
}

func (s *memStore) UpdateApplicationStage(_ context.Context, id string, st model.Status) (model.StageUpdate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.moves = append(s.moves, id+"→"+string(st))
	for i := range s.apps {
		if s.apps[i].ID == id {
			s.apps[i].Status = st
			return model.StageUpdate{Application: s.apps[i], SuggestAction: model.HintFor(st)}, nil
		}
	}
	return model.StageUpdate{}, assert.AnError
}

func newModel(t *testing.T) (*Model, *memStore) {
	t.Helper()
	store := &memStore{apps: []model.Application{
		{ID: "a1", Status: model.StatusApplied, CandidateName: "Ada"},
		{ID: "a2", Status: model.StatusApplied, CandidateName: "Grace"},
		{ID: "a3", Status: model.StatusPhoneScreen, CandidateName: "Linus"},
		{ID: "a4", Status: model.StatusInterview, CandidateName: "Margaret"},
		{ID: "a5", Status: model.StatusHired, CandidateName: "Dennis"},
	}}
	m := New(context.Background(), store, "", board.Options{ActivationDistance: 3})
	run(t, m, m.Init())
	return m, store
}

// run executes cmd synchronously and feeds its message back into the model.
func run(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	if cmd == nil {
		return
	}
	m.Update(cmd())
}

func press(t *testing.T, m *Model, keys ...tea.KeyMsg) tea.Cmd {
	t.Helper()
	var last tea.Cmd
	for _, k := range keys {
		_, last = m.Update(k)
	}
	return last
}

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

var (
	keySpace = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyRight = tea.KeyMsg{Type: tea.KeyRight}
	keyDown  = tea.KeyMsg{Type: tea.KeyDown}
	keyEsc   = tea.KeyMsg{Type: tea.KeyEsc}
)

func TestInitLoadsBoard(t *testing.T) {
	m, _ := newModel(t)
	counts := m.Session().Board.Counts()
	assert.Equal(t, 2, counts[model.StatusApplied])
	assert.Equal(t, 1, counts[model.StatusHired])
	assert.Contains(t, m.View(), "Applied (2)")
	assert.Contains(t, m.View(), "Ada")
}

func TestKeyboardMoveShowsSchedulerPrompt(t *testing.T) {
	m, store := newModel(t)

	cmd := press(t, m, keySpace, keyRight, keyRight, keyEnter)
	require.NotNil(t, cmd, "drop returns the settle command")
	assert.Equal(t, 2, m.Session().Board.Counts()[model.StatusInterview], "optimistic move")

	run(t, m, cmd)
	assert.Equal(t, []string{"a1→interview"}, store.moves)
	p := m.Session().Hints.Current()
	require.True(t, p.Show)
	assert.Equal(t, model.HintOpenScheduler, p.Action)
	assert.Contains(t, m.View(), "scheduler")

	press(t, m, runes("y"))
	assert.False(t, m.Session().Hints.Current().Show)
	assert.Equal(t, board.Destination{View: board.ViewScheduler, ApplicationID: "a1"}, m.view)
	assert.Contains(t, m.status, "scheduler")
}

func TestKeyboardSameColumnDropDoesNothing(t *testing.T) {
	m, store := newModel(t)

	cmd := press(t, m, keySpace, keyEnter)
	assert.Nil(t, cmd)
	assert.Empty(t, store.moves)
	assert.Equal(t, "no move", m.status)
}

func TestEscCancelsMove(t *testing.T) {
	m, store := newModel(t)

	press(t, m, keySpace, keyRight, keyEsc)
	assert.Equal(t, board.Idle, m.Session().Drag.State())
	assert.Nil(t, press(t, m, keyEnter))
	assert.Empty(t, store.moves)
}

func TestQuickAdvanceKey(t *testing.T) {
	m, store := newModel(t)

	run(t, m, press(t, m, keyDown, runes("n")))
	assert.Equal(t, []string{"a2→phone_screen"}, store.moves)
	assert.True(t, m.Session().Hints.Current().Show, "inbox prompt")

	press(t, m, runes("n"))
	assert.False(t, m.Session().Hints.Current().Show, "n declines while a prompt is up")

	m.focusCol, m.focusRow = 4, 0
	run(t, m, press(t, m, runes("n")))
	assert.Len(t, store.moves, 1, "hired card stays put")
	assert.Equal(t, "already at the last stage", m.status)
}

func mouse(x, y int, action tea.MouseAction) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Action: action, Button: tea.MouseButtonLeft}
}

func TestMouseDragOntoCard(t *testing.T) {
	m, store := newModel(t)

	m.Update(mouse(2, cardsTop, tea.MouseActionPress))
	m.Update(mouse(2*colWidth+2, cardsTop+1, tea.MouseActionMotion))
	require.Equal(t, board.Dragging, m.Session().Drag.State())

	_, cmd := m.Update(mouse(2*colWidth+2, cardsTop+1, tea.MouseActionRelease))
	require.NotNil(t, cmd)
	run(t, m, cmd)
	assert.Equal(t, []string{"a1→interview"}, store.moves)
}

func TestMouseClickOnlyFocuses(t *testing.T) {
	m, store := newModel(t)

	m.Update(mouse(colWidth+1, cardsTop, tea.MouseActionPress))
	m.Update(mouse(colWidth+2, cardsTop, tea.MouseActionMotion))
	_, cmd := m.Update(mouse(colWidth+2, cardsTop, tea.MouseActionRelease))

	assert.Nil(t, cmd)
	assert.Empty(t, store.moves)
	assert.Equal(t, 1, m.focusCol)
	assert.Equal(t, 0, m.focusRow)
}

func TestTargetAt(t *testing.T) {
	m, _ := newModel(t)

	assert.Equal(t, board.CardTarget("a2"), m.targetAt(3, cardsTop+cardHeight))
	assert.Equal(t, board.ColumnTarget(model.StatusOffer), m.targetAt(3*colWidth, cardsTop))
	assert.Equal(t, board.ColumnTarget(model.StatusApplied), m.targetAt(0, 1))
	assert.Equal(t, board.NoTarget, m.targetAt(5*colWidth+1, cardsTop))
	assert.Equal(t, board.NoTarget, m.targetAt(-1, cardsTop))
}
