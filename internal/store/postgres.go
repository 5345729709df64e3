package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"edluar/pipeline/internal/model"
	"edluar/pipeline/internal/pipeline"
)

const postgresSchema = `
DO $$ BEGIN
	CREATE TYPE application_status AS ENUM
		('applied', 'phone_screen', 'interview', 'offer', 'hired', 'rejected', 'withdrawn');
EXCEPTION WHEN duplicate_object THEN NULL;
END $$;

CREATE TABLE IF NOT EXISTS jobs (
	id         TEXT PRIMARY KEY,
	title      TEXT NOT NULL,
	headcount  INTEGER NOT NULL DEFAULT 0,
	status     TEXT NOT NULL DEFAULT 'open' CHECK (status IN ('open', 'closed')),
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	closed_at  TIMESTAMPTZ NULL
);

CREATE TABLE IF NOT EXISTS candidates (
	id     TEXT PRIMARY KEY,
	name   TEXT NOT NULL,
	email  TEXT NOT NULL DEFAULT '',
	source TEXT NOT NULL DEFAULT '',
	tags   TEXT[] NOT NULL DEFAULT '{}'
);

CREATE TABLE IF NOT EXISTS applications (
	id           TEXT PRIMARY KEY,
	job_id       TEXT NOT NULL REFERENCES jobs(id) ON DELETE CASCADE,
	candidate_id TEXT NOT NULL REFERENCES candidates(id) ON DELETE CASCADE,
	status       application_status NOT NULL DEFAULT 'applied',
	applied_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS stage_events (
	id             BIGSERIAL PRIMARY KEY,
	application_id TEXT NOT NULL REFERENCES applications(id) ON DELETE CASCADE,
	from_status    application_status NOT NULL,
	to_status      application_status NOT NULL,
	at             TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_applications_job_id ON applications(job_id);
CREATE INDEX IF NOT EXISTS idx_applications_status ON applications(status);
CREATE INDEX IF NOT EXISTS idx_stage_events_application ON stage_events(application_id);
`

const postgresSelectApplication = `
SELECT a.id, a.job_id, a.candidate_id, a.status::text, a.applied_at, a.updated_at,
       c.name, c.email, c.source, c.tags, j.title
FROM applications a
JOIN candidates c ON c.id = a.candidate_id
JOIN jobs j ON j.id = a.job_id`

const postgresSelectJob = `
SELECT j.id, j.title, j.headcount, j.status, j.created_at, j.closed_at,
       (SELECT COUNT(*) FROM applications a WHERE a.job_id = j.id AND a.status = 'hired')::int
FROM jobs j`

// Postgres is a pipeline.Repository backed by a pgx connection pool.
type Postgres struct {
	pool *pgxpool.Pool
}

var _ pipeline.Repository = (*Postgres)(nil)

// NewPostgres wraps an open pool. Call Migrate before use.
func NewPostgres(pool *pgxpool.Pool) *Postgres { return &Postgres{pool: pool} }

// Migrate creates the enum type and all tables.
func (p *Postgres) Migrate(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("postgres migrate: %w", err)
	}
	return nil
}

// Close closes the pool.
func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

// ─── Applications ────────────────────────────────────────────────────────────

func (p *Postgres) ListApplications(ctx context.Context, jobID string) ([]model.Application, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if jobID != "" {
		rows, err = p.pool.Query(ctx, postgresSelectApplication+` WHERE a.job_id = $1 ORDER BY a.applied_at, a.id`, jobID)
	} else {
		rows, err = p.pool.Query(ctx, postgresSelectApplication+` ORDER BY a.applied_at, a.id`)
	}
	if err != nil {
		return nil, fmt.Errorf("listApplications query: %w", err)
	}
	defer rows.Close()

	apps := make([]model.Application, 0)
	for rows.Next() {
		a, err := scanPostgresApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("listApplications scan: %w", err)
		}
		apps = append(apps, *a)
	}
	return apps, rows.Err()
}

func (p *Postgres) GetApplication(ctx context.Context, id string) (*model.Application, error) {
	a, err := scanPostgresApplication(p.pool.QueryRow(ctx, postgresSelectApplication+` WHERE a.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, pipeline.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getApplication: %w", err)
	}
	return a, nil
}

func (p *Postgres) MoveStage(ctx context.Context, id string, to model.Status, at time.Time) (*pipeline.StageChange, error) {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("moveStage begin: %w", err)
	}
	defer tx.Rollback(ctx)

	// Row lock serialises concurrent moves of the same application.
	var from, jobID string
	err = tx.QueryRow(ctx,
		`SELECT status::text, job_id FROM applications WHERE id = $1 FOR UPDATE`, id,
	).Scan(&from, &jobID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, pipeline.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("moveStage select: %w", err)
	}

	change := &pipeline.StageChange{From: model.Status(from)}
	if change.From != to {
		if _, err := tx.Exec(ctx,
			`UPDATE applications SET status = $1::application_status, updated_at = $2 WHERE id = $3`,
			string(to), at, id,
		); err != nil {
			return nil, fmt.Errorf("moveStage update: %w", err)
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO stage_events (application_id, from_status, to_status, at)
			 VALUES ($1, $2::application_status, $3::application_status, $4)`,
			id, from, string(to), at,
		); err != nil {
			return nil, fmt.Errorf("moveStage history: %w", err)
		}

		if model.IsHired(to) {
			job, err := scanPostgresJob(tx.QueryRow(ctx, postgresSelectJob+` WHERE j.id = $1 FOR UPDATE OF j`, jobID))
			if err != nil {
				return nil, fmt.Errorf("moveStage job: %w", err)
			}
			if job.Status == model.JobOpen && job.Filled() {
				if _, err := tx.Exec(ctx,
					`UPDATE jobs SET status = 'closed', closed_at = $1 WHERE id = $2`, at, jobID,
				); err != nil {
					return nil, fmt.Errorf("moveStage close job: %w", err)
				}
				closedAt := at
				job.Status = model.JobClosed
				job.ClosedAt = &closedAt
				change.JobClosed = true
				change.Job = job
			}
		}
	}

	app, err := scanPostgresApplication(tx.QueryRow(ctx, postgresSelectApplication+` WHERE a.id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("moveStage reload: %w", err)
	}
	change.Application = *app

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("moveStage commit: %w", err)
	}
	return change, nil
}

func (p *Postgres) History(ctx context.Context, id string) ([]model.StageEvent, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT application_id, from_status::text, to_status::text, at
		 FROM stage_events WHERE application_id = $1 ORDER BY id`, id)
	if err != nil {
		return nil, fmt.Errorf("history query: %w", err)
	}
	defer rows.Close()

	out := make([]model.StageEvent, 0)
	for rows.Next() {
		var (
			ev       model.StageEvent
			from, to string
		)
		if err := rows.Scan(&ev.ApplicationID, &from, &to, &ev.At); err != nil {
			return nil, fmt.Errorf("history scan: %w", err)
		}
		ev.From, ev.To = model.Status(from), model.Status(to)
		ev.At = ev.At.UTC()
		out = append(out, ev)
	}
	return out, rows.Err()
}

// ─── Jobs ────────────────────────────────────────────────────────────────────

func (p *Postgres) ListJobs(ctx context.Context) ([]model.Job, error) {
	rows, err := p.pool.Query(ctx, postgresSelectJob+` ORDER BY j.created_at, j.id`)
	if err != nil {
		return nil, fmt.Errorf("listJobs query: %w", err)
	}
	defer rows.Close()

	jobs := make([]model.Job, 0)
	for rows.Next() {
		j, err := scanPostgresJob(rows)
		if err != nil {
			return nil, fmt.Errorf("listJobs scan: %w", err)
		}
		jobs = append(jobs, *j)
	}
	return jobs, rows.Err()
}

func (p *Postgres) CloseFilledJobs(ctx context.Context, at time.Time) ([]model.Job, error) {
	rows, err := p.pool.Query(ctx,
		`WITH filled AS (
		   SELECT j.id
		   FROM jobs j
		   WHERE j.status = 'open' AND j.headcount > 0
		     AND (SELECT COUNT(*) FROM applications a
		          WHERE a.job_id = j.id AND a.status = 'hired') >= j.headcount
		   FOR UPDATE
		 ), upd AS (
		   UPDATE jobs SET status = 'closed', closed_at = $1
		   FROM filled WHERE jobs.id = filled.id
		   RETURNING jobs.*
		 )
		 SELECT upd.id, upd.title, upd.headcount, upd.status, upd.created_at, upd.closed_at,
		        (SELECT COUNT(*) FROM applications a WHERE a.job_id = upd.id AND a.status = 'hired')::int
		 FROM upd`,
		at,
	)
	if err != nil {
		return nil, fmt.Errorf("closeFilledJobs: %w", err)
	}
	defer rows.Close()

	var closed []model.Job
	for rows.Next() {
		j, err := scanPostgresJob(rows)
		if err != nil {
			return nil, fmt.Errorf("closeFilledJobs scan: %w", err)
		}
		closed = append(closed, *j)
	}
	return closed, rows.Err()
}

// ─── Writes ──────────────────────────────────────────────────────────────────

func (p *Postgres) CreateJob(ctx context.Context, j *model.Job) error {
	prepareJob(j)
	_, err := p.pool.Exec(ctx,
		`INSERT INTO jobs (id, title, headcount, status, created_at) VALUES ($1, $2, $3, $4, $5)`,
		j.ID, j.Title, j.Headcount, string(j.Status), j.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("createJob: %w", err)
	}
	return nil
}

func (p *Postgres) CreateCandidate(ctx context.Context, c *model.Candidate) error {
	prepareCandidate(c)
	_, err := p.pool.Exec(ctx,
		`INSERT INTO candidates (id, name, email, source, tags) VALUES ($1, $2, $3, $4, $5)`,
		c.ID, c.Name, c.Email, c.Source, c.Tags,
	)
	if err != nil {
		return fmt.Errorf("createCandidate: %w", err)
	}
	return nil
}

func (p *Postgres) CreateApplication(ctx context.Context, a *model.Application) error {
	if err := prepareApplication(a); err != nil {
		return err
	}
	_, err := p.pool.Exec(ctx,
		`INSERT INTO applications (id, job_id, candidate_id, status, applied_at, updated_at)
		 VALUES ($1, $2, $3, $4::application_status, $5, $6)`,
		a.ID, a.JobID, a.CandidateID, string(a.Status), a.AppliedAt, a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("createApplication: %w", err)
	}
	return nil
}

// ─── Scanning ────────────────────────────────────────────────────────────────

func scanPostgresApplication(row pgx.Row) (*model.Application, error) {
	var (
		a      model.Application
		status string
	)
	if err := row.Scan(
		&a.ID, &a.JobID, &a.CandidateID, &status, &a.AppliedAt, &a.UpdatedAt,
		&a.CandidateName, &a.CandidateEmail, &a.Source, &a.Tags, &a.JobTitle,
	); err != nil {
		return nil, err
	}
	a.Status = model.Status(status)
	a.AppliedAt, a.UpdatedAt = a.AppliedAt.UTC(), a.UpdatedAt.UTC()
	return &a, nil
}

func scanPostgresJob(row pgx.Row) (*model.Job, error) {
	var (
		j      model.Job
		status string
	)
	if err := row.Scan(&j.ID, &j.Title, &j.Headcount, &status, &j.CreatedAt, &j.ClosedAt, &j.HiredCount); err != nil {
		return nil, err
	}
	j.Status = model.JobStatus(status)
	j.CreatedAt = j.CreatedAt.UTC()
	return &j, nil
}
