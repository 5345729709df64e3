package board

import (
	"context"
	"log/slog"

	"edluar/pipeline/internal/model"
)

// Gateway is the board's only path for stage changes.
type Gateway struct {
	store Store
	log   *slog.Logger
}

// NewGateway returns a gateway writing through store.
func NewGateway(store Store, logger *slog.Logger) *Gateway {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gateway{store: store, log: logger.With("component", "gateway")}
}

// Advance asks the store to move the application to newStage and returns
// the store's follow-up hint. A failure is logged and returned; the board's
// optimistic state is left alone, the caller's refetch corrects it.
func (g *Gateway) Advance(ctx context.Context, applicationID string, newStage model.Status) (model.Hint, error) {
	upd, err := g.store.UpdateApplicationStage(ctx, applicationID, newStage)
	if err != nil {
		g.log.Error("stage update failed", "applicationId", applicationID, "to", newStage, "err", err)
		return model.HintNone, err
	}
	g.log.Debug("stage updated", "applicationId", applicationID, "to", newStage, "suggestAction", upd.SuggestAction)
	return upd.SuggestAction, nil
}

// QuickAdvance moves the application one stage forward in the canonical
// order. It reports false without calling the store when currentStage is
// hired or has no column.
func (g *Gateway) QuickAdvance(ctx context.Context, applicationID string, currentStage model.Status) (model.Hint, bool, error) {
	next, ok := model.NextStage(currentStage)
	if !ok {
		return model.HintNone, false, nil
	}
	hint, err := g.Advance(ctx, applicationID, next)
	return hint, true, err
}
