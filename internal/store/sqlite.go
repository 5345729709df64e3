// Package store implements pipeline.Repository on SQLite (database/sql with
// the modernc driver) and on PostgreSQL (pgxpool).
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"edluar/pipeline/internal/model"
	"edluar/pipeline/internal/pipeline"
)

// timeLayout is fixed-width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS jobs (
	id         TEXT PRIMARY KEY,
	title      TEXT NOT NULL,
	headcount  INTEGER NOT NULL DEFAULT 0,
	status     TEXT NOT NULL DEFAULT 'open' CHECK (status IN ('open', 'closed')),
	created_at TEXT NOT NULL,
	closed_at  TEXT NULL
);

CREATE TABLE IF NOT EXISTS candidates (
	id     TEXT PRIMARY KEY,
	name   TEXT NOT NULL,
	email  TEXT NOT NULL DEFAULT '',
	source TEXT NOT NULL DEFAULT '',
	tags   TEXT NOT NULL DEFAULT '[]'
);

CREATE TABLE IF NOT EXISTS applications (
	id           TEXT PRIMARY KEY,
	job_id       TEXT NOT NULL REFERENCES jobs(id) ON DELETE CASCADE,
	candidate_id TEXT NOT NULL REFERENCES candidates(id) ON DELETE CASCADE,
	status       TEXT NOT NULL DEFAULT 'applied' CHECK (status IN
	             ('applied', 'phone_screen', 'interview', 'offer', 'hired', 'rejected', 'withdrawn')),
	applied_at   TEXT NOT NULL,
	updated_at   TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS stage_events (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	application_id TEXT NOT NULL REFERENCES applications(id) ON DELETE CASCADE,
	from_status    TEXT NOT NULL,
	to_status      TEXT NOT NULL,
	at             TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_applications_job_id ON applications(job_id);
CREATE INDEX IF NOT EXISTS idx_applications_status ON applications(status);
CREATE INDEX IF NOT EXISTS idx_stage_events_application ON stage_events(application_id);
`

const sqliteSelectApplication = `
SELECT a.id, a.job_id, a.candidate_id, a.status, a.applied_at, a.updated_at,
       c.name, c.email, c.source, c.tags, j.title
FROM applications a
JOIN candidates c ON c.id = a.candidate_id
JOIN jobs j ON j.id = a.job_id`

const sqliteSelectJob = `
SELECT j.id, j.title, j.headcount, j.status, j.created_at, j.closed_at,
       (SELECT COUNT(*) FROM applications a WHERE a.job_id = j.id AND a.status = 'hired')
FROM jobs j`

// SQLite is a pipeline.Repository backed by a SQLite database.
type SQLite struct {
	db *sql.DB
}

var _ pipeline.Repository = (*SQLite)(nil)

// NewSQLite wraps an open database. Call Migrate before use.
func NewSQLite(db *sql.DB) *SQLite { return &SQLite{db: db} }

// Migrate creates all tables.
func (s *SQLite) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, sqliteSchema); err != nil {
		return fmt.Errorf("sqlite migrate: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLite) Close() error { return s.db.Close() }

// ─── Applications ────────────────────────────────────────────────────────────

func (s *SQLite) ListApplications(ctx context.Context, jobID string) ([]model.Application, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if jobID != "" {
		rows, err = s.db.QueryContext(ctx, sqliteSelectApplication+` WHERE a.job_id = ? ORDER BY a.applied_at, a.id`, jobID)
	} else {
		rows, err = s.db.QueryContext(ctx, sqliteSelectApplication+` ORDER BY a.applied_at, a.id`)
	}
	if err != nil {
		return nil, fmt.Errorf("listApplications query: %w", err)
	}
	defer rows.Close()

	apps := make([]model.Application, 0)
	for rows.Next() {
		a, err := scanSQLiteApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("listApplications scan: %w", err)
		}
		apps = append(apps, *a)
	}
	return apps, rows.Err()
}

func (s *SQLite) GetApplication(ctx context.Context, id string) (*model.Application, error) {
	a, err := scanSQLiteApplication(s.db.QueryRowContext(ctx, sqliteSelectApplication+` WHERE a.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, pipeline.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getApplication: %w", err)
	}
	return a, nil
}

func (s *SQLite) MoveStage(ctx context.Context, id string, to model.Status, at time.Time) (*pipeline.StageChange, error) {
	change, err := s.moveStageTx(ctx, id, to, at)
	if err != nil {
		return nil, err
	}
	// Re-read after commit; the pool holds a single connection.
	app, err := s.GetApplication(ctx, id)
	if err != nil {
		return nil, err
	}
	change.Application = *app
	return change, nil
}

func (s *SQLite) moveStageTx(ctx context.Context, id string, to model.Status, at time.Time) (*pipeline.StageChange, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("moveStage begin: %w", err)
	}
	defer tx.Rollback()

	var from, jobID string
	err = tx.QueryRowContext(ctx, `SELECT status, job_id FROM applications WHERE id = ?`, id).Scan(&from, &jobID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, pipeline.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("moveStage select: %w", err)
	}

	change := &pipeline.StageChange{From: model.Status(from)}
	if change.From == to {
		return change, nil
	}

	stamp := at.UTC().Format(timeLayout)
	if _, err := tx.ExecContext(ctx,
		`UPDATE applications SET status = ?, updated_at = ? WHERE id = ?`,
		string(to), stamp, id,
	); err != nil {
		return nil, fmt.Errorf("moveStage update: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO stage_events (application_id, from_status, to_status, at) VALUES (?, ?, ?, ?)`,
		id, from, string(to), stamp,
	); err != nil {
		return nil, fmt.Errorf("moveStage history: %w", err)
	}

	if model.IsHired(to) {
		job, err := scanSQLiteJob(tx.QueryRowContext(ctx, sqliteSelectJob+` WHERE j.id = ?`, jobID))
		if err != nil {
			return nil, fmt.Errorf("moveStage job: %w", err)
		}
		if job.Status == model.JobOpen && job.Filled() {
			if _, err := tx.ExecContext(ctx,
				`UPDATE jobs SET status = 'closed', closed_at = ? WHERE id = ?`, stamp, jobID,
			); err != nil {
				return nil, fmt.Errorf("moveStage close job: %w", err)
			}
			closedAt := at.UTC()
			job.Status = model.JobClosed
			job.ClosedAt = &closedAt
			change.JobClosed = true
			change.Job = job
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("moveStage commit: %w", err)
	}
	return change, nil
}

func (s *SQLite) History(ctx context.Context, id string) ([]model.StageEvent, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT application_id, from_status, to_status, at
		 FROM stage_events WHERE application_id = ? ORDER BY id`, id)
	if err != nil {
		return nil, fmt.Errorf("history query: %w", err)
	}
	defer rows.Close()

	out := make([]model.StageEvent, 0)
	for rows.Next() {
		var (
			ev       model.StageEvent
			from, to string
			at       string
		)
		if err := rows.Scan(&ev.ApplicationID, &from, &to, &at); err != nil {
			return nil, fmt.Errorf("history scan: %w", err)
		}
		ev.From, ev.To = model.Status(from), model.Status(to)
		if ev.At, err = parseTime(at); err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

// ─── Jobs ────────────────────────────────────────────────────────────────────

func (s *SQLite) ListJobs(ctx context.Context) ([]model.Job, error) {
	rows, err := s.db.QueryContext(ctx, sqliteSelectJob+` ORDER BY j.created_at, j.id`)
	if err != nil {
		return nil, fmt.Errorf("listJobs query: %w", err)
	}
	defer rows.Close()

	jobs := make([]model.Job, 0)
	for rows.Next() {
		j, err := scanSQLiteJob(rows)
		if err != nil {
			return nil, fmt.Errorf("listJobs scan: %w", err)
		}
		jobs = append(jobs, *j)
	}
	return jobs, rows.Err()
}

func (s *SQLite) CloseFilledJobs(ctx context.Context, at time.Time) ([]model.Job, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("closeFilledJobs begin: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, sqliteSelectJob+` WHERE j.status = 'open' AND j.headcount > 0`)
	if err != nil {
		return nil, fmt.Errorf("closeFilledJobs query: %w", err)
	}
	var filled []model.Job
	for rows.Next() {
		j, err := scanSQLiteJob(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("closeFilledJobs scan: %w", err)
		}
		if j.Filled() {
			filled = append(filled, *j)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	stamp := at.UTC().Format(timeLayout)
	closedAt := at.UTC()
	for i := range filled {
		if _, err := tx.ExecContext(ctx,
			`UPDATE jobs SET status = 'closed', closed_at = ? WHERE id = ?`, stamp, filled[i].ID,
		); err != nil {
			return nil, fmt.Errorf("closeFilledJobs update: %w", err)
		}
		filled[i].Status = model.JobClosed
		filled[i].ClosedAt = &closedAt
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("closeFilledJobs commit: %w", err)
	}
	return filled, nil
}

// ─── Writes ──────────────────────────────────────────────────────────────────

func (s *SQLite) CreateJob(ctx context.Context, j *model.Job) error {
	prepareJob(j)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO jobs (id, title, headcount, status, created_at) VALUES (?, ?, ?, ?, ?)`,
		j.ID, j.Title, j.Headcount, string(j.Status), j.CreatedAt.Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("createJob: %w", err)
	}
	return nil
}

func (s *SQLite) CreateCandidate(ctx context.Context, c *model.Candidate) error {
	prepareCandidate(c)
	tags, err := json.Marshal(c.Tags)
	if err != nil {
		return fmt.Errorf("createCandidate tags: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO candidates (id, name, email, source, tags) VALUES (?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.Email, c.Source, string(tags),
	)
	if err != nil {
		return fmt.Errorf("createCandidate: %w", err)
	}
	return nil
}

func (s *SQLite) CreateApplication(ctx context.Context, a *model.Application) error {
	if err := prepareApplication(a); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO applications (id, job_id, candidate_id, status, applied_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		a.ID, a.JobID, a.CandidateID, string(a.Status),
		a.AppliedAt.Format(timeLayout), a.UpdatedAt.Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("createApplication: %w", err)
	}
	return nil
}

// ─── Scanning ────────────────────────────────────────────────────────────────

type scanner interface {
	Scan(dest ...any) error
}

func scanSQLiteApplication(row scanner) (*model.Application, error) {
	var (
		a                  model.Application
		status             string
		appliedAt, updated string
		tags               string
	)
	if err := row.Scan(
		&a.ID, &a.JobID, &a.CandidateID, &status, &appliedAt, &updated,
		&a.CandidateName, &a.CandidateEmail, &a.Source, &tags, &a.JobTitle,
	); err != nil {
		return nil, err
	}
	a.Status = model.Status(status)

	var err error
	if a.AppliedAt, err = parseTime(appliedAt); err != nil {
		return nil, err
	}
	if a.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, err
	}
	if tags != "" {
		if err := json.Unmarshal([]byte(tags), &a.Tags); err != nil {
			return nil, fmt.Errorf("decode tags of %s: %w", a.ID, err)
		}
	}
	return &a, nil
}

func scanSQLiteJob(row scanner) (*model.Job, error) {
	var (
		j         model.Job
		status    string
		createdAt string
		closedAt  sql.NullString
	)
	if err := row.Scan(&j.ID, &j.Title, &j.Headcount, &status, &createdAt, &closedAt, &j.HiredCount); err != nil {
		return nil, err
	}
	j.Status = model.JobStatus(status)

	var err error
	if j.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if closedAt.Valid {
		t, err := parseTime(closedAt.String)
		if err != nil {
			return nil, err
		}
		j.ClosedAt = &t
	}
	return &j, nil
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}
