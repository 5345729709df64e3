package board

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"edluar/pipeline/internal/model"
)

func TestGateway_AdvanceReturnsHint(t *testing.T) {
	store := newFakeStore(model.StatusApplied)
	g := NewGateway(store, nil)

	hint, err := g.Advance(context.Background(), appID(1), model.StatusInterview)
	require.NoError(t, err)
	assert.Equal(t, model.HintOpenScheduler, hint)
	assert.Equal(t, []advanceCall{{appID(1), model.StatusInterview}}, store.advanceCalls())
}

func TestGateway_AdvanceFailure(t *testing.T) {
	store := newFakeStore(model.StatusApplied)
	store.updErr = errors.New("503")
	g := NewGateway(store, nil)

	hint, err := g.Advance(context.Background(), appID(1), model.StatusOffer)
	assert.Error(t, err)
	assert.Equal(t, model.HintNone, hint)
}

func TestGateway_QuickAdvanceOrder(t *testing.T) {
	cases := []struct {
		from, to model.Status
	}{
		{model.StatusApplied, model.StatusPhoneScreen},
		{model.StatusPhoneScreen, model.StatusInterview},
		{model.StatusInterview, model.StatusOffer},
		{model.StatusOffer, model.StatusHired},
	}
	for _, c := range cases {
		t.Run(string(c.from), func(t *testing.T) {
			store := newFakeStore(c.from)
			g := NewGateway(store, nil)

			_, advanced, err := g.QuickAdvance(context.Background(), appID(1), c.from)
			require.NoError(t, err)
			assert.True(t, advanced)
			assert.Equal(t, []advanceCall{{appID(1), c.to}}, store.advanceCalls())
		})
	}
}

func TestGateway_QuickAdvanceTerminalNoOp(t *testing.T) {
	for _, st := range []model.Status{model.StatusHired, model.StatusRejected, model.StatusWithdrawn} {
		store := newFakeStore(st)
		g := NewGateway(store, nil)

		var (
			advanced bool
			err      error
		)
		assert.NotPanics(t, func() {
			_, advanced, err = g.QuickAdvance(context.Background(), appID(1), st)
		})
		assert.NoError(t, err)
		assert.False(t, advanced)
		assert.Empty(t, store.advanceCalls(), "no store call from %s", st)
	}
}
