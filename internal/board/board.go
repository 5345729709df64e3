// Package board is the client side of the pipeline: an in-memory projection
// of applications into stage columns, the drag session state machine that
// moves cards between them, the gateway that reports moves to the store, and
// the resolver that turns server hints into prompts.
//
// The board applies moves optimistically and never rolls them back; every
// stage update is followed by a full refetch that replaces the columns with
// what the store reports.
package board

import (
	"context"
	"log/slog"
	"sync"

	"edluar/pipeline/internal/model"
)

// Store is the Application Store as seen from the board.
type Store interface {
	// FetchApplications returns applications grouped by stage, optionally
	// scoped to one job.
	FetchApplications(ctx context.Context, jobID string) (model.Grouped, error)
	UpdateApplicationStage(ctx context.Context, id string, status model.Status) (model.StageUpdate, error)
}

// Column is one stage bucket. Data keeps the order the store returned.
type Column struct {
	ID   model.Status
	Data []*model.Application
}

// Board holds the five stage columns. It is safe for concurrent use.
type Board struct {
	mu        sync.RWMutex
	columns   []*Column
	jobFilter string
	log       *slog.Logger
}

// New returns an empty board with one column per active stage.
func New(logger *slog.Logger) *Board {
	if logger == nil {
		logger = slog.Default()
	}
	b := &Board{log: logger.With("component", "board")}
	b.columns = emptyColumns()
	return b
}

func emptyColumns() []*Column {
	cols := make([]*Column, len(model.ActiveStages))
	for i, st := range model.ActiveStages {
		cols[i] = &Column{ID: st, Data: []*model.Application{}}
	}
	return cols
}

// Load fetches applications (all jobs when jobFilter is empty) and replaces
// the columns. On failure the previous columns stay as they were and the
// error is returned for the caller to surface or ignore.
func (b *Board) Load(ctx context.Context, store Store, jobFilter string) error {
	grouped, err := store.FetchApplications(ctx, jobFilter)
	if err != nil {
		b.log.Warn("load failed, keeping previous columns", "jobFilter", jobFilter, "err", err)
		return err
	}
	b.mu.Lock()
	b.jobFilter = jobFilter
	b.columns = partition(grouped.Flatten())
	b.mu.Unlock()
	return nil
}

// Replace rebuilds the columns from a flat list of applications.
func (b *Board) Replace(apps []model.Application) {
	b.mu.Lock()
	b.columns = partition(apps)
	b.mu.Unlock()
}

// partition buckets apps by their own status field, dropping anything
// without a column and any repeated id.
func partition(apps []model.Application) []*Column {
	cols := emptyColumns()
	seen := make(map[string]bool, len(apps))
	for i := range apps {
		a := apps[i]
		idx := model.StageIndex(a.Status)
		if idx < 0 || seen[a.ID] {
			continue
		}
		seen[a.ID] = true
		cols[idx].Data = append(cols[idx].Data, &a)
	}
	return cols
}

// JobFilter returns the job the board was last loaded for.
func (b *Board) JobFilter() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.jobFilter
}

// Find returns the column holding the application.
func (b *Board) Find(applicationID string) (model.Status, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	col, _ := b.locate(applicationID)
	if col == nil {
		return "", false
	}
	return col.ID, true
}

func (b *Board) locate(applicationID string) (*Column, int) {
	for _, col := range b.columns {
		for i, a := range col.Data {
			if a.ID == applicationID {
				return col, i
			}
		}
	}
	return nil, -1
}

func (b *Board) column(id model.Status) *Column {
	idx := model.StageIndex(id)
	if idx < 0 {
		return nil
	}
	return b.columns[idx]
}

// ApplyLocalMove moves the application from one column to the end of
// another and sets its status to the target column. It reports false and
// changes nothing when from and to are equal, either column is unknown, or
// the application is not in from.
func (b *Board) ApplyLocalMove(applicationID string, from, to model.Status) bool {
	if from == to {
		return false
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	src, dst := b.column(from), b.column(to)
	if src == nil || dst == nil {
		return false
	}
	idx := -1
	for i, a := range src.Data {
		if a.ID == applicationID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}

	app := src.Data[idx]
	src.Data = append(src.Data[:idx:idx], src.Data[idx+1:]...)
	app.Status = to
	dst.Data = append(dst.Data, app)
	return true
}

// Get returns a copy of the application.
func (b *Board) Get(applicationID string) (model.Application, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	col, i := b.locate(applicationID)
	if col == nil {
		return model.Application{}, false
	}
	return *col.Data[i], true
}

// Snapshot returns a deep copy of the columns in display order.
func (b *Board) Snapshot() []Column {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]Column, len(b.columns))
	for i, col := range b.columns {
		data := make([]*model.Application, len(col.Data))
		for j, a := range col.Data {
			cp := *a
			data[j] = &cp
		}
		out[i] = Column{ID: col.ID, Data: data}
	}
	return out
}

// Counts returns the number of cards per column.
func (b *Board) Counts() map[model.Status]int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make(map[model.Status]int, len(b.columns))
	for _, col := range b.columns {
		out[col.ID] = len(col.Data)
	}
	return out
}
