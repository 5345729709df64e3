package pipeline

import (
	"context"
	"time"

	"edluar/pipeline/internal/model"
)

// StageChange is what a repository reports after moving an application.
type StageChange struct {
	Application model.Application
	From        model.Status
	// JobClosed is set when this move filled the job's headcount and the
	// job was closed in the same transaction.
	JobClosed bool
	Job       *model.Job
}

// Unchanged reports whether the move was a no-op.
func (c *StageChange) Unchanged() bool {
	return c.From == c.Application.Status
}

// Repository is the Application Store. Implementations live in
// internal/store (SQLite and PostgreSQL).
type Repository interface {
	// ListApplications returns applications with display fields joined in,
	// oldest first. An empty jobID means every job.
	ListApplications(ctx context.Context, jobID string) ([]model.Application, error)
	GetApplication(ctx context.Context, id string) (*model.Application, error)

	// MoveStage sets the application's status, stamps updated_at and appends
	// a history entry in one transaction. Moving to hired closes the job
	// when its headcount is reached. Moving to the current status writes
	// nothing. Returns ErrNotFound for an unknown id.
	MoveStage(ctx context.Context, id string, to model.Status, at time.Time) (*StageChange, error)
	History(ctx context.Context, id string) ([]model.StageEvent, error)

	ListJobs(ctx context.Context) ([]model.Job, error)
	// CloseFilledJobs closes every open job at or above its headcount and
	// returns the jobs it closed.
	CloseFilledJobs(ctx context.Context, at time.Time) ([]model.Job, error)

	Writer
}

// Writer creates records. Used by seeding.
type Writer interface {
	CreateJob(ctx context.Context, j *model.Job) error
	CreateCandidate(ctx context.Context, c *model.Candidate) error
	CreateApplication(ctx context.Context, a *model.Application) error
}
