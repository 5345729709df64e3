package board

import (
	"context"
	"errors"
	"sync"
	"time"

	"edluar/pipeline/internal/model"
)

type advanceCall struct {
	ID string
	To model.Status
}

// fakeStore is an in-memory Application Store.
type fakeStore struct {
	mu       sync.Mutex
	apps     []model.Application
	hints    map[model.Status]model.Hint
	calls    []advanceCall
	fetches  int
	fetchErr error
	updErr   error
	// override, when set, is applied server-side instead of the requested
	// status to simulate a store that disagrees with the client.
	override model.Status
}

func newFakeStore(statuses ...model.Status) *fakeStore {
	f := &fakeStore{hints: map[model.Status]model.Hint{
		model.StatusPhoneScreen: model.HintOpenInbox,
		model.StatusInterview:   model.HintOpenScheduler,
	}}
	base := time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC)
	for i, st := range statuses {
		f.apps = append(f.apps, model.Application{
			ID:        appID(i + 1),
			JobID:     "job-1",
			Status:    st,
			AppliedAt: base.Add(time.Duration(i) * time.Minute),
		})
	}
	return f
}

func appID(n int) string { return "app-" + string(rune('0'+n)) }

func (f *fakeStore) FetchApplications(_ context.Context, jobID string) (model.Grouped, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches++
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	var scoped []model.Application
	for _, a := range f.apps {
		if jobID == "" || a.JobID == jobID {
			scoped = append(scoped, a)
		}
	}
	return model.Group(scoped), nil
}

func (f *fakeStore) UpdateApplicationStage(_ context.Context, id string, status model.Status) (model.StageUpdate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, advanceCall{ID: id, To: status})
	if f.updErr != nil {
		return model.StageUpdate{}, f.updErr
	}
	for i := range f.apps {
		if f.apps[i].ID != id {
			continue
		}
		applied := status
		if f.override != "" {
			applied = f.override
		}
		f.apps[i].Status = applied
		f.apps[i].UpdatedAt = time.Now()
		return model.StageUpdate{Application: f.apps[i], SuggestAction: f.hints[status]}, nil
	}
	return model.StageUpdate{}, errors.New("application not found")
}

func (f *fakeStore) advanceCalls() []advanceCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]advanceCall(nil), f.calls...)
}

func (f *fakeStore) fetchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetches
}

type recordingNavigator struct {
	mu    sync.Mutex
	dests []Destination
}

func (n *recordingNavigator) Navigate(d Destination) {
	n.mu.Lock()
	n.dests = append(n.dests, d)
	n.mu.Unlock()
}
