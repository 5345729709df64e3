// Package pipeline contains the server-side business logic of the
// application pipeline. It is transport-agnostic: used by the REST handlers
// (internal/api), the gRPC server (internal/rpc) and the sweep scheduler.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"edluar/pipeline/internal/events"
	"edluar/pipeline/internal/model"
)

// ─── Service ─────────────────────────────────────────────────────────────────

// Service encapsulates the stage-update rules and their side effects.
type Service struct {
	repo  Repository
	pub   events.Publisher
	log   *slog.Logger
	now   func() time.Time
	sweep singleflight.Group
}

// NewService returns a configured Service. A nil publisher drops events.
func NewService(repo Repository, pub events.Publisher, logger *slog.Logger) *Service {
	if pub == nil {
		pub = events.Nop{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo: repo,
		pub:  pub,
		log:  logger.With("component", "pipeline"),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// ─── Reads ───────────────────────────────────────────────────────────────────

// Applications returns the board view: applications grouped by active stage,
// optionally scoped to one job. Rejected and withdrawn applications are left
// out.
func (s *Service) Applications(ctx context.Context, jobID string) (model.Grouped, error) {
	apps, err := s.repo.ListApplications(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	return model.Group(apps), nil
}

// Application returns one application by id.
func (s *Service) Application(ctx context.Context, id string) (*model.Application, error) {
	return s.repo.GetApplication(ctx, id)
}

// History returns the stage history of an application, oldest first.
func (s *Service) History(ctx context.Context, id string) ([]model.StageEvent, error) {
	if _, err := s.repo.GetApplication(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.History(ctx, id)
}

// Jobs lists jobs with their hired counts.
func (s *Service) Jobs(ctx context.Context) ([]model.Job, error) {
	return s.repo.ListJobs(ctx)
}

// ─── Stage updates ───────────────────────────────────────────────────────────

// UpdateStage moves an application to newStatus and returns the updated
// record with an optional follow-up hint:
//
//	phone_screen → OPEN_INBOX
//	interview    → OPEN_SCHEDULER_MODAL
//	hired        → JOB_CLOSED when the move filled the job's headcount
//
// Any stage may be reached from any other; the board allows arbitrary drops.
// Moving to the current status is accepted and yields no hint.
func (s *Service) UpdateStage(ctx context.Context, id, newStatus string) (*model.StageUpdate, error) {
	to, err := model.ParseStatus(newStatus)
	if err != nil {
		return nil, &ValidationError{Msg: err.Error()}
	}

	change, err := s.repo.MoveStage(ctx, id, to, s.now())
	if err != nil {
		return nil, err
	}

	update := &model.StageUpdate{Application: change.Application}
	if change.Unchanged() {
		return update, nil
	}

	switch {
	case change.JobClosed:
		update.SuggestAction = model.HintJobClosed
	default:
		update.SuggestAction = model.HintFor(to)
	}

	s.log.Info("stage changed",
		"applicationId", id,
		"from", change.From,
		"to", to,
		"suggestAction", update.SuggestAction,
	)

	// Publish events (non-fatal)
	if err := s.pub.Publish(ctx, events.ChannelStageChanged, events.StageChanged{
		Type:          events.ChannelStageChanged,
		ApplicationID: id,
		JobID:         change.Application.JobID,
		From:          string(change.From),
		To:            string(to),
		SuggestAction: string(update.SuggestAction),
	}); err != nil {
		s.log.Warn("publish failed", "channel", events.ChannelStageChanged, "err", err)
	}
	if change.JobClosed && change.Job != nil {
		s.publishJobClosed(ctx, *change.Job)
	}

	return update, nil
}

// ─── Headcount sweep ─────────────────────────────────────────────────────────

// SweepFilledJobs closes every open job that already reached its headcount,
// e.g. after a bulk import. Concurrent callers share one run.
func (s *Service) SweepFilledJobs(ctx context.Context) ([]model.Job, error) {
	v, err, shared := s.sweep.Do("sweep", func() (any, error) {
		closed, err := s.repo.CloseFilledJobs(ctx, s.now())
		if err != nil {
			return nil, fmt.Errorf("close filled jobs: %w", err)
		}
		for _, j := range closed {
			s.publishJobClosed(ctx, j)
		}
		return closed, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		s.log.Debug("sweep shared with an in-flight run")
	}
	return v.([]model.Job), nil
}

func (s *Service) publishJobClosed(ctx context.Context, j model.Job) {
	s.log.Info("job closed, headcount reached", "jobId", j.ID, "headcount", j.Headcount, "hired", j.HiredCount)
	if err := s.pub.Publish(ctx, events.ChannelJobClosed, events.JobClosed{
		Type:      events.ChannelJobClosed,
		JobID:     j.ID,
		Headcount: j.Headcount,
		Hired:     j.HiredCount,
	}); err != nil {
		s.log.Warn("publish failed", "channel", events.ChannelJobClosed, "err", err)
	}
}
