package board

import (
	"context"
	"log/slog"

	"edluar/pipeline/internal/model"
)

// Options configures a Session.
type Options struct {
	ActivationDistance int
	Navigator          Navigator
	Logger             *slog.Logger
}

// Session wires the board, the drag controller, the gateway and the hint
// resolver around one store.
type Session struct {
	Board   *Board
	Drag    *DragController
	Gateway *Gateway
	Hints   *HintResolver

	store Store
	log   *slog.Logger
}

// NewSession returns a session with an empty board.
func NewSession(store Store, opts Options) *Session {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	b := New(logger)
	return &Session{
		Board:   b,
		Drag:    NewDragController(b, opts.ActivationDistance),
		Gateway: NewGateway(store, logger),
		Hints:   NewHintResolver(opts.Navigator, logger),
		store:   store,
		log:     logger.With("component", "session"),
	}
}

// Load hydrates the board, scoped to jobFilter ("" for every job).
func (s *Session) Load(ctx context.Context, jobFilter string) error {
	return s.Board.Load(ctx, s.store, jobFilter)
}

// Refetch reloads the board with its current job filter.
func (s *Session) Refetch(ctx context.Context) error {
	return s.Board.Load(ctx, s.store, s.Board.JobFilter())
}

// Drop commits the current drag onto t and applies the move to the board
// right away. The returned move must be passed to Settle.
func (s *Session) Drop(t Target) (Move, bool) {
	mv, ok := s.Drag.Drop(t)
	if !ok {
		return Move{}, false
	}
	if !s.Board.ApplyLocalMove(mv.ApplicationID, mv.From, mv.To) {
		return Move{}, false
	}
	return mv, true
}

// Outcome is what happened after a move was sent to the store.
type Outcome struct {
	Move       Move
	Advanced   bool
	Hint       model.Hint
	Prompted   bool
	AdvanceErr error
	RefetchErr error
}

// Settle reports a dropped move to the store, offers any hint and then
// refetches unconditionally.
func (s *Session) Settle(ctx context.Context, mv Move) Outcome {
	out := Outcome{Move: mv}
	out.Hint, out.AdvanceErr = s.Gateway.Advance(ctx, mv.ApplicationID, mv.To)
	out.Advanced = out.AdvanceErr == nil
	s.finish(ctx, &out)
	return out
}

// QuickAdvance moves a card one stage forward without dragging. Cards in
// hired (or missing from the board) are left alone and nothing is sent.
func (s *Session) QuickAdvance(ctx context.Context, applicationID string) Outcome {
	current, ok := s.Board.Find(applicationID)
	if !ok {
		return Outcome{}
	}
	next, _ := model.NextStage(current)
	out := Outcome{Move: Move{ApplicationID: applicationID, From: current, To: next}}

	out.Hint, out.Advanced, out.AdvanceErr = s.Gateway.QuickAdvance(ctx, applicationID, current)
	if !out.Advanced {
		return out
	}
	if out.AdvanceErr != nil {
		out.Advanced = false
	}
	s.finish(ctx, &out)
	return out
}

func (s *Session) finish(ctx context.Context, out *Outcome) {
	if out.AdvanceErr == nil {
		out.Prompted = s.Hints.Offer(out.Hint, out.Move.ApplicationID)
	}
	if err := s.Refetch(ctx); err != nil {
		out.RefetchErr = err
	}
}
