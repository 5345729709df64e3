package store

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"edluar/pipeline/internal/model"
	"edluar/pipeline/internal/pipeline"
)

func prepareJob(j *model.Job) {
	if j.ID == "" {
		j.ID = uuid.NewString()
	}
	if j.Status == "" {
		j.Status = model.JobOpen
	}
	if j.CreatedAt.IsZero() {
		j.CreatedAt = time.Now()
	}
	j.CreatedAt = j.CreatedAt.UTC()
}

func prepareCandidate(c *model.Candidate) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Tags == nil {
		c.Tags = []string{}
	}
}

func prepareApplication(a *model.Application) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.Status == "" {
		a.Status = model.StatusApplied
	}
	if _, err := model.ParseStatus(string(a.Status)); err != nil {
		return &pipeline.ValidationError{Msg: err.Error()}
	}
	if a.JobID == "" || a.CandidateID == "" {
		return &pipeline.ValidationError{Msg: fmt.Sprintf("application %s needs job_id and candidate_id", a.ID)}
	}
	if a.AppliedAt.IsZero() {
		a.AppliedAt = time.Now()
	}
	a.AppliedAt = a.AppliedAt.UTC()
	if a.UpdatedAt.IsZero() {
		a.UpdatedAt = a.AppliedAt
	}
	a.UpdatedAt = a.UpdatedAt.UTC()
	return nil
}
