package model

import "time"

// Application is one candidate's application to one job. Candidate and job
// fields are joined in for display only.
type Application struct {
	ID          string    `json:"id"`
	JobID       string    `json:"job_id"`
	CandidateID string    `json:"candidate_id"`
	Status      Status    `json:"status"`
	AppliedAt   time.Time `json:"applied_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	CandidateName  string   `json:"name,omitempty"`
	CandidateEmail string   `json:"email,omitempty"`
	JobTitle       string   `json:"job_title,omitempty"`
	Tags           []string `json:"tags,omitempty"`
	Source         string   `json:"source,omitempty"`
}

// JobStatus is the lifecycle of a job posting.
type JobStatus string

const (
	JobOpen   JobStatus = "open"
	JobClosed JobStatus = "closed"
)

// Job is a posting applications belong to. Headcount zero means unlimited.
type Job struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	Headcount  int        `json:"headcount"`
	Status     JobStatus  `json:"status"`
	HiredCount int        `json:"hired_count"`
	CreatedAt  time.Time  `json:"created_at"`
	ClosedAt   *time.Time `json:"closed_at,omitempty"`
}

// Filled reports whether the job has reached its headcount.
func (j Job) Filled() bool {
	return j.Headcount > 0 && j.HiredCount >= j.Headcount
}

// Candidate is a person who applies to jobs.
type Candidate struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Email  string   `json:"email"`
	Source string   `json:"source,omitempty"`
	Tags   []string `json:"tags,omitempty"`
}

// StageEvent is one entry of an application's stage history.
type StageEvent struct {
	ApplicationID string    `json:"application_id"`
	From          Status    `json:"from"`
	To            Status    `json:"to"`
	At            time.Time `json:"at"`
}

// Grouped holds applications keyed by active stage.
type Grouped map[Status][]Application

// Group partitions apps by status. Applications whose status has no column
// are left out. Every active stage is present in the result, possibly empty.
func Group(apps []Application) Grouped {
	g := make(Grouped, len(ActiveStages))
	for _, st := range ActiveStages {
		g[st] = []Application{}
	}
	for _, a := range apps {
		if !IsActive(a.Status) {
			continue
		}
		g[a.Status] = append(g[a.Status], a)
	}
	return g
}

// Flatten returns the grouped applications in column order.
func (g Grouped) Flatten() []Application {
	var out []Application
	for _, st := range ActiveStages {
		out = append(out, g[st]...)
	}
	return out
}

// StageUpdate is the result of a stage change.
type StageUpdate struct {
	Application   Application `json:"application"`
	SuggestAction Hint        `json:"suggestAction,omitempty"`
}
