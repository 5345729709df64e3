package board

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"edluar/pipeline/internal/model"
)

func TestDrag_PointerBelowThresholdIsAClick(t *testing.T) {
	b, _ := loadedBoard(t, model.StatusApplied)
	d := NewDragController(b, 8)

	d.PointerDown(appID(1), Point{10, 10})
	assert.False(t, d.PointerMove(Point{14, 14}), "moved ~5.7, below 8")
	assert.Equal(t, Idle, d.State())

	_, ok := d.PointerUp(ColumnTarget(model.StatusOffer))
	assert.False(t, ok)
	assert.Equal(t, Idle, d.State())
}

func TestDrag_PointerPastThresholdStartsDrag(t *testing.T) {
	b, _ := loadedBoard(t, model.StatusApplied)
	d := NewDragController(b, 8)

	d.PointerDown(appID(1), Point{0, 0})
	require.True(t, d.PointerMove(Point{9, 0}))
	assert.Equal(t, Dragging, d.State())
	assert.Equal(t, appID(1), d.ActiveID())

	mv, ok := d.PointerUp(ColumnTarget(model.StatusOffer))
	require.True(t, ok)
	assert.Equal(t, Move{ApplicationID: appID(1), From: model.StatusApplied, To: model.StatusOffer}, mv)
	assert.Equal(t, Idle, d.State())
	assert.Empty(t, d.ActiveID())
}

func TestDrag_PointerDownOnUnknownCardIgnored(t *testing.T) {
	b, _ := loadedBoard(t, model.StatusApplied)
	d := NewDragController(b, 1)

	d.PointerDown("ghost", Point{})
	assert.False(t, d.PointerMove(Point{50, 50}))
	assert.Equal(t, Idle, d.State())
}

func TestDrag_KeyboardBypassesThreshold(t *testing.T) {
	b, _ := loadedBoard(t, model.StatusApplied)
	d := NewDragController(b, 1000)

	require.True(t, d.KeyActivate(appID(1)))
	assert.Equal(t, Dragging, d.State())
	assert.False(t, d.KeyActivate(appID(1)), "already dragging")
}

func TestDrag_DropOnCardUsesCardsColumn(t *testing.T) {
	b, _ := loadedBoard(t, model.StatusApplied, model.StatusInterview)
	d := NewDragController(b, 0)

	require.True(t, d.KeyActivate(appID(1)))
	mv, ok := d.Drop(CardTarget(appID(2)))
	require.True(t, ok)
	assert.Equal(t, model.StatusInterview, mv.To)
}

func TestDrag_SameColumnDropIsNoOp(t *testing.T) {
	b, _ := loadedBoard(t, model.StatusApplied, model.StatusApplied)
	d := NewDragController(b, 0)

	require.True(t, d.KeyActivate(appID(1)))
	_, ok := d.Drop(ColumnTarget(model.StatusApplied))
	assert.False(t, ok)

	require.True(t, d.KeyActivate(appID(1)))
	_, ok = d.Drop(CardTarget(appID(2)))
	assert.False(t, ok, "card in the same column")

	require.True(t, d.KeyActivate(appID(1)))
	_, ok = d.Drop(CardTarget(appID(1)))
	assert.False(t, ok, "dropped on itself")
	assert.Equal(t, Idle, d.State())
}

func TestDrag_InvalidTargetsCancel(t *testing.T) {
	b, _ := loadedBoard(t, model.StatusApplied)
	d := NewDragController(b, 0)

	for _, target := range []Target{
		NoTarget,
		ColumnTarget(model.StatusRejected),
		CardTarget("ghost"),
		{Kind: TargetColumn, ID: "backlog"},
	} {
		require.True(t, d.KeyActivate(appID(1)))
		_, ok := d.Drop(target)
		assert.False(t, ok, "target %+v", target)
		assert.Equal(t, Idle, d.State())
	}
}

func TestDrag_CancelProducesNoMove(t *testing.T) {
	b, _ := loadedBoard(t, model.StatusApplied)
	d := NewDragController(b, 0)

	require.True(t, d.KeyActivate(appID(1)))
	d.Cancel()
	assert.Equal(t, Idle, d.State())

	_, ok := d.Drop(ColumnTarget(model.StatusOffer))
	assert.False(t, ok, "drop after cancel")
}

func TestDrag_AnyColumnReachable(t *testing.T) {
	for _, to := range []model.Status{model.StatusApplied, model.StatusPhoneScreen, model.StatusInterview, model.StatusOffer} {
		t.Run(string(to), func(t *testing.T) {
			b, _ := loadedBoard(t, model.StatusHired)
			d := NewDragController(b, 0)
			require.True(t, d.KeyActivate(appID(1)))
			mv, ok := d.Drop(ColumnTarget(to))
			require.True(t, ok, "backwards moves are allowed")
			assert.Equal(t, model.StatusHired, mv.From)
			assert.Equal(t, to, mv.To)
		})
	}
}

func TestDrag_DefaultThreshold(t *testing.T) {
	d := NewDragController(New(nil), 0)
	assert.Equal(t, DefaultActivationDistance, d.threshold)
}
