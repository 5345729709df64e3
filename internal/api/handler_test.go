package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"edluar/pipeline/internal/api"
	"edluar/pipeline/internal/model"
	"edluar/pipeline/internal/pipeline"
	"edluar/pipeline/internal/store"
)

type fixture struct {
	router http.Handler
	job    *model.Job
	ids    []string
}

func newFixture(t *testing.T, headcount int, statuses ...model.Status) fixture {
	t.Helper()
	ctx := context.Background()
	repo, err := store.Open(ctx, "sqlite:"+filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	require.NoError(t, repo.Migrate(ctx))
	t.Cleanup(func() { repo.Close() })

	f := fixture{job: &model.Job{Title: "Recruiter", Headcount: headcount}}
	require.NoError(t, repo.CreateJob(ctx, f.job))
	for _, st := range statuses {
		c := &model.Candidate{Name: "Grace", Email: "grace@example.com"}
		require.NoError(t, repo.CreateCandidate(ctx, c))
		a := &model.Application{JobID: f.job.ID, CandidateID: c.ID, Status: st}
		require.NoError(t, repo.CreateApplication(ctx, a))
		f.ids = append(f.ids, a.ID)
	}

	f.router = api.NewHandler(pipeline.NewService(repo, nil, nil), nil, "test").Router()
	return f
}

func (f fixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	f := newFixture(t, 0)
	rec := f.do(t, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestListApplications_GroupedByStage(t *testing.T) {
	f := newFixture(t, 0, model.StatusApplied, model.StatusInterview, model.StatusRejected)

	rec := f.do(t, http.MethodGet, "/api/applications", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got map[string][]model.Application
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Len(t, got, 5, "every active column is present")
	assert.Len(t, got["applied"], 1)
	assert.Len(t, got["interview"], 1)
	assert.Empty(t, got["offer"])
	_, hasRejected := got["rejected"]
	assert.False(t, hasRejected)

	rec = f.do(t, http.MethodGet, "/api/applications?job_id=other", "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Empty(t, got["applied"])
}

func TestUpdateStage_SuggestAction(t *testing.T) {
	f := newFixture(t, 0, model.StatusApplied)
	path := "/api/applications/" + f.ids[0] + "/stage"

	rec := f.do(t, http.MethodPatch, path, `{"status":"phone_screen"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "OPEN_INBOX", body["suggestAction"])
	app := body["application"].(map[string]any)
	assert.Equal(t, "phone_screen", app["status"])

	rec = f.do(t, http.MethodPatch, path, `{"status":"offer"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	v, present := body["suggestAction"]
	assert.True(t, present, "suggestAction is always present")
	assert.Nil(t, v)
}

func TestUpdateStage_JobClosed(t *testing.T) {
	f := newFixture(t, 1, model.StatusOffer)

	rec := f.do(t, http.MethodPatch, "/api/applications/"+f.ids[0]+"/stage", `{"status":"hired"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"suggestAction":"JOB_CLOSED"`)

	rec = f.do(t, http.MethodGet, "/api/jobs", "")
	var jobs []model.Job
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &jobs))
	require.Len(t, jobs, 1)
	assert.Equal(t, model.JobClosed, jobs[0].Status)
	assert.Equal(t, 1, jobs[0].HiredCount)
}

func TestUpdateStage_Errors(t *testing.T) {
	f := newFixture(t, 0, model.StatusApplied)

	tests := []struct {
		name string
		path string
		body string
		code int
	}{
		{"unknown status", "/api/applications/" + f.ids[0] + "/stage", `{"status":"archived"}`, http.StatusBadRequest},
		{"missing status", "/api/applications/" + f.ids[0] + "/stage", `{}`, http.StatusBadRequest},
		{"bad json", "/api/applications/" + f.ids[0] + "/stage", `{`, http.StatusBadRequest},
		{"unknown id", "/api/applications/nope/stage", `{"status":"offer"}`, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(t, http.MethodPatch, tt.path, tt.body)
			assert.Equal(t, tt.code, rec.Code)
			assert.Contains(t, rec.Body.String(), `"error"`)
		})
	}
}

func TestGetApplicationAndHistory(t *testing.T) {
	f := newFixture(t, 0, model.StatusApplied)
	id := f.ids[0]

	rec := f.do(t, http.MethodGet, "/api/applications/"+id, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"Grace"`)

	f.do(t, http.MethodPatch, "/api/applications/"+id+"/stage", `{"status":"interview"}`)
	rec = f.do(t, http.MethodGet, "/api/applications/"+id+"/history", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var hist []model.StageEvent
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &hist))
	require.Len(t, hist, 1)
	assert.Equal(t, model.StatusApplied, hist[0].From)
	assert.Equal(t, model.StatusInterview, hist[0].To)

	rec = f.do(t, http.MethodGet, "/api/applications/nope/history", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSweep(t *testing.T) {
	f := newFixture(t, 1, model.StatusHired)

	rec := f.do(t, http.MethodPost, "/api/jobs/sweep", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"closed":1`)
}

func TestCORSPreflight(t *testing.T) {
	f := newFixture(t, 0)
	rec := f.do(t, http.MethodOptions, "/api/applications", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
