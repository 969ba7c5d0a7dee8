package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	subjectStore "tracker/internal/adapters/storage/subject"
	"tracker/internal/domain/subject"
)

// User-facing messages for persistence commands.
const (
	MsgSaved        = "Data saved successfully!"
	MsgLoaded       = "Data loaded successfully!"
	MsgNoSavedData  = "No saved data found."
	MsgCleared      = "All data cleared."
	MsgSaveFailed   = "Could not save data: storage is unavailable."
	MsgLoadFailed   = "Could not load data: storage is unavailable."
	MsgCorruptData  = "Saved data is corrupted and was not loaded."
	MsgClearFailed  = "Could not clear saved data: storage is unavailable."
	MsgClearConfirm = "Are you sure you want to clear all attendance data? This action cannot be undone."
)

// SubjectStoreForOrchestrator defines the store interface needed by the data orchestrators.
type SubjectStoreForOrchestrator interface {
	Save(ctx context.Context, records []subject.Record) error
	Load(ctx context.Context) ([]subject.Record, error)
	Remove(ctx context.Context) error
}

// --- Save Data ---

// SaveDataDeps holds dependencies for SaveData.
type SaveDataDeps struct {
	List  *subject.List
	Store SubjectStoreForOrchestrator
}

// ExecuteSaveData writes the whole list to the persistent slot.
// PRE: deps.List and deps.Store are non-nil
// POST: The slot holds the current list; failures wrap subjectStore.ErrUnavailable
// and leave the in-memory list untouched
func ExecuteSaveData(ctx context.Context, deps SaveDataDeps) error {
	records := deps.List.Records()
	if err := deps.Store.Save(ctx, records); err != nil {
		slog.Warn("data_event", "event", "save_failed", "count", len(records), "error", err)
		return err
	}
	slog.Info("data_event", "event", "data_saved", "count", len(records))
	return nil
}

// --- Load Data ---

// LoadDataDeps holds dependencies for LoadData.
type LoadDataDeps struct {
	List  *subject.List
	Store SubjectStoreForOrchestrator
	Now   func() time.Time
}

// ExecuteLoadData replaces the list with the saved one.
// Percentages are recomputed and missing dates backfilled with today.
// PRE: deps.List and deps.Store are non-nil
// POST: On success the list equals the saved list. Returns subjectStore.ErrNoSavedData
// when nothing was saved and subjectStore.ErrCorruptData when the saved list does not
// decode or breaks a record invariant; in both cases the list is unchanged.
func ExecuteLoadData(ctx context.Context, deps LoadDataDeps) (int, error) {
	records, err := deps.Store.Load(ctx)
	if err != nil {
		slog.Warn("data_event", "event", "load_failed", "error", err)
		return 0, err
	}
	if err := deps.List.ReplaceAll(records, deps.Now()); err != nil {
		slog.Warn("data_event", "event", "load_failed", "error", err)
		return 0, fmt.Errorf("%w: %v", subjectStore.ErrCorruptData, err)
	}
	slog.Info("data_event", "event", "data_loaded", "count", len(records))
	return len(records), nil
}

// --- Clear Data ---

// ClearDataDeps holds dependencies for ClearData.
type ClearDataDeps struct {
	List  *subject.List
	Store SubjectStoreForOrchestrator
}

// ExecuteClearData removes the saved slot and empties the list.
// Callers confirm with the user first.
// PRE: deps.List and deps.Store are non-nil
// POST: On success the slot is gone and the list is empty; if the slot cannot be
// removed the list is kept
func ExecuteClearData(ctx context.Context, deps ClearDataDeps) error {
	if err := deps.Store.Remove(ctx); err != nil {
		slog.Warn("data_event", "event", "clear_failed", "error", err)
		return err
	}
	n := deps.List.Len()
	deps.List.Clear()
	slog.Info("data_event", "event", "data_cleared", "count", n)
	return nil
}
