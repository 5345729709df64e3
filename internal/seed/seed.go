// Package seed loads demo fixtures (jobs, candidates, applications) from
// YAML into a repository.
//
//	jobs:
//	  - key: backend
//	    title: Backend Engineer
//	    headcount: 2
//	candidates:
//	  - key: ada
//	    name: Ada Lovelace
//	    email: ada@example.com
//	applications:
//	  - job: backend
//	    candidate: ada
//	    status: interview
package seed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"edluar/pipeline/internal/model"
	"edluar/pipeline/internal/pipeline"
)

// Fixtures is the YAML document.
type Fixtures struct {
	Jobs         []JobFixture         `yaml:"jobs"`
	Candidates   []CandidateFixture   `yaml:"candidates"`
	Applications []ApplicationFixture `yaml:"applications"`
}

type JobFixture struct {
	Key       string `yaml:"key"`
	Title     string `yaml:"title"`
	Headcount int    `yaml:"headcount"`
}

type CandidateFixture struct {
	Key    string   `yaml:"key"`
	Name   string   `yaml:"name"`
	Email  string   `yaml:"email"`
	Source string   `yaml:"source"`
	Tags   []string `yaml:"tags"`
}

type ApplicationFixture struct {
	Job       string    `yaml:"job"`
	Candidate string    `yaml:"candidate"`
	Status    string    `yaml:"status"`
	AppliedAt time.Time `yaml:"applied_at"`
}

// Result counts what Apply created.
type Result struct {
	Jobs         int
	Candidates   int
	Applications int
}

// Parse decodes and validates a fixtures document. Unknown fields are
// rejected.
func Parse(data []byte) (*Fixtures, error) {
	var f Fixtures
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse fixtures: %w", err)
	}
	if err := f.validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// LoadFile reads and parses path.
func LoadFile(path string) (*Fixtures, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixtures: %w", err)
	}
	return Parse(data)
}

func (f *Fixtures) validate() error {
	jobs := make(map[string]bool, len(f.Jobs))
	for i, j := range f.Jobs {
		if j.Key == "" || j.Title == "" {
			return fmt.Errorf("jobs[%d]: key and title are required", i)
		}
		if jobs[j.Key] {
			return fmt.Errorf("jobs[%d]: duplicate key %q", i, j.Key)
		}
		if j.Headcount < 0 {
			return fmt.Errorf("jobs[%d]: headcount must not be negative", i)
		}
		jobs[j.Key] = true
	}

	candidates := make(map[string]bool, len(f.Candidates))
	for i, c := range f.Candidates {
		if c.Key == "" || c.Name == "" {
			return fmt.Errorf("candidates[%d]: key and name are required", i)
		}
		if candidates[c.Key] {
			return fmt.Errorf("candidates[%d]: duplicate key %q", i, c.Key)
		}
		candidates[c.Key] = true
	}

	for i, a := range f.Applications {
		if !jobs[a.Job] {
			return fmt.Errorf("applications[%d]: unknown job %q", i, a.Job)
		}
		if !candidates[a.Candidate] {
			return fmt.Errorf("applications[%d]: unknown candidate %q", i, a.Candidate)
		}
		if a.Status != "" {
			if _, err := model.ParseStatus(a.Status); err != nil {
				return fmt.Errorf("applications[%d]: %w", i, err)
			}
		}
	}
	return nil
}

// Apply writes the fixtures through w. Records are created in document
// order; the first failure stops the run.
func Apply(ctx context.Context, w pipeline.Writer, f *Fixtures) (Result, error) {
	var res Result
	jobIDs := make(map[string]string, len(f.Jobs))
	for _, jf := range f.Jobs {
		j := &model.Job{Title: jf.Title, Headcount: jf.Headcount}
		if err := w.CreateJob(ctx, j); err != nil {
			return res, fmt.Errorf("job %q: %w", jf.Key, err)
		}
		jobIDs[jf.Key] = j.ID
		res.Jobs++
	}

	candidateIDs := make(map[string]string, len(f.Candidates))
	for _, cf := range f.Candidates {
		c := &model.Candidate{Name: cf.Name, Email: cf.Email, Source: cf.Source, Tags: cf.Tags}
		if err := w.CreateCandidate(ctx, c); err != nil {
			return res, fmt.Errorf("candidate %q: %w", cf.Key, err)
		}
		candidateIDs[cf.Key] = c.ID
		res.Candidates++
	}

	for i, af := range f.Applications {
		a := &model.Application{
			JobID:       jobIDs[af.Job],
			CandidateID: candidateIDs[af.Candidate],
			Status:      model.Status(af.Status),
			AppliedAt:   af.AppliedAt,
		}
		if err := w.CreateApplication(ctx, a); err != nil {
			return res, fmt.Errorf("applications[%d]: %w", i, err)
		}
		res.Applications++
	}
	return res, nil
}
