package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	subjectStore "tracker/internal/adapters/storage/subject"
	"tracker/internal/application/projections"
	"tracker/internal/domain/confirmation"
	"tracker/internal/domain/notification"
	"tracker/internal/domain/subject"
)

// ErrUnknownCommand is returned by Dispatch for commands it does not handle.
var ErrUnknownCommand = errors.New("unknown command")

// Command is a user action handled by the Tracker.
type Command interface {
	CommandName() string
}

// AddSubject adds a subject from the add form.
type AddSubject struct {
	Name     string
	Attended string
	Total    string
}

// EditField changes one field of one subject in place.
type EditField struct {
	Index int
	Field string
	Value string
}

// RequestRemove asks the user to confirm removing a subject.
type RequestRemove struct {
	Index int
}

// SaveData writes the list to the persistent slot.
type SaveData struct{}

// LoadData replaces the list with the saved one.
type LoadData struct{}

// RequestClear asks the user to confirm wiping all data.
type RequestClear struct{}

// AcceptConfirmation answers "Yes" to the pending confirmation.
type AcceptConfirmation struct {
	ID string
}

// DeclineConfirmation answers "No" to the pending confirmation, or dismisses it
// through the backdrop.
type DeclineConfirmation struct {
	ID       string
	Backdrop bool
}

func (AddSubject) CommandName() string          { return "add_subject" }
func (EditField) CommandName() string           { return "edit_field" }
func (RequestRemove) CommandName() string       { return "request_remove" }
func (SaveData) CommandName() string            { return "save_data" }
func (LoadData) CommandName() string            { return "load_data" }
func (RequestClear) CommandName() string        { return "request_clear" }
func (AcceptConfirmation) CommandName() string  { return "accept_confirmation" }
func (DeclineConfirmation) CommandName() string { return "decline_confirmation" }

// RenderMode tells the HTTP adapter how to redraw after a command.
type RenderMode int

const (
	RenderNone RenderMode = iota
	RenderFull
	RenderPatch
)

// String returns the mode name used in JSON responses.
func (m RenderMode) String() string {
	switch m {
	case RenderFull:
		return "full"
	case RenderPatch:
		return "patch"
	default:
		return "none"
	}
}

// Outcome is the result of one dispatched command.
type Outcome struct {
	Render RenderMode
	Patch  *projections.RowPatch
	Err    error
}

// Command outcome labels reported to the CommandRecorder.
const (
	outcomeOK       = "ok"
	outcomeRejected = "rejected"
	outcomeFailed   = "failed"
)

// CommandRecorder receives the duration and outcome of every command.
type CommandRecorder interface {
	RecordCommand(name, outcome string, d time.Duration)
}

// TrackerDeps holds dependencies for the Tracker.
type TrackerDeps struct {
	Store         SubjectStoreForOrchestrator
	Notifications *notification.Center
	Gate          *confirmation.Gate
	Recorder      CommandRecorder // optional
	Now           func() time.Time
}

// Tracker owns the subject list and serializes every user command against it.
// INVARIANT: the list is only touched while mu is held
type Tracker struct {
	mu       sync.Mutex
	list     *subject.List
	store    SubjectStoreForOrchestrator
	toasts   *notification.Center
	gate     *confirmation.Gate
	recorder CommandRecorder
	now      func() time.Time
}

// NewTracker creates a tracker with an empty list.
// PRE: Store, Notifications, Gate and Now are set
// POST: Returns a tracker ready for Start
func NewTracker(deps TrackerDeps) *Tracker {
	return &Tracker{
		list:     subject.NewList(),
		store:    deps.Store,
		toasts:   deps.Notifications,
		gate:     deps.Gate,
		recorder: deps.Recorder,
		now:      deps.Now,
	}
}

// Start performs the initial load, as when the page is first opened.
func (t *Tracker) Start(ctx context.Context) Outcome {
	return t.Dispatch(ctx, LoadData{})
}

// Dispatch runs one command to completion.
// PRE: cmd is one of the command types of this package
// POST: State changed only as the command allows; Outcome says how to redraw and
// carries the error, if any, that was already reported as a toast
func (t *Tracker) Dispatch(ctx context.Context, cmd Command) Outcome {
	t.mu.Lock()
	defer t.mu.Unlock()

	start := time.Now()
	out := t.dispatch(ctx, cmd)
	if t.recorder != nil {
		t.recorder.RecordCommand(cmd.CommandName(), outcomeLabel(out.Err), time.Since(start))
	}
	return out
}

func (t *Tracker) dispatch(ctx context.Context, cmd Command) Outcome {
	switch c := cmd.(type) {
	case AddSubject:
		return t.addSubject(ctx, c)
	case EditField:
		return t.editField(ctx, c)
	case RequestRemove:
		return t.requestRemove(c)
	case SaveData:
		return t.persist(ctx, Outcome{Render: RenderNone})
	case LoadData:
		return t.loadData(ctx)
	case RequestClear:
		t.gate.Open(MsgClearConfirm, t.clearData)
		return Outcome{Render: RenderFull}
	case AcceptConfirmation:
		return t.accept(ctx, c)
	case DeclineConfirmation:
		return t.decline(c)
	default:
		slog.Warn("tracker_event", "event", "unknown_command", "command", fmt.Sprintf("%T", cmd))
		return Outcome{Err: fmt.Errorf("%w: %T", ErrUnknownCommand, cmd)}
	}
}

// View returns the full-render view of the list.
func (t *Tracker) View() projections.GetSubjectListResult {
	t.mu.Lock()
	defer t.mu.Unlock()
	return projections.QueryGetSubjectList(projections.GetSubjectListDeps{Subjects: t.list})
}

// Records returns a copy of the list.
func (t *Tracker) Records() []subject.Record {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.list.Records()
}

// Pending returns the confirmation waiting for an answer, if any.
func (t *Tracker) Pending() (confirmation.Confirmation, bool) {
	return t.gate.Pending()
}

// Notifications returns the toasts currently on screen.
func (t *Tracker) Notifications() []notification.Notification {
	return t.toasts.Active(t.now())
}

func (t *Tracker) addSubject(ctx context.Context, c AddSubject) Outcome {
	_, err := ExecuteAddSubject(ctx, AddSubjectInput{
		Name:     c.Name,
		Attended: c.Attended,
		Total:    c.Total,
	}, AddSubjectDeps{List: t.list, Now: t.now})
	if err != nil {
		return t.reject(err)
	}
	return t.persist(ctx, Outcome{Render: RenderFull})
}

func (t *Tracker) editField(ctx context.Context, c EditField) Outcome {
	change, err := ExecuteEditField(ctx, EditFieldInput{
		Index: c.Index,
		Field: c.Field,
		Value: c.Value,
	}, EditFieldDeps{List: t.list, Now: t.now})
	if err != nil {
		return t.reject(err)
	}
	patch, err := projections.QueryGetRowPatch(change, projections.GetRowPatchDeps{Subjects: t.list})
	if err != nil {
		return t.reject(err)
	}
	return t.persist(ctx, Outcome{Render: RenderPatch, Patch: &patch})
}

func (t *Tracker) requestRemove(c RequestRemove) Outcome {
	r, err := t.list.At(c.Index)
	if err != nil {
		return t.reject(rejectInput(err))
	}
	index := c.Index
	t.gate.Open(RemoveConfirmationMessage(r.Name), func(ctx context.Context) error {
		if _, err := ExecuteRemoveSubject(ctx, RemoveSubjectInput{Index: index}, RemoveSubjectDeps{List: t.list}); err != nil {
			t.reject(err)
			return err
		}
		return t.persist(ctx, Outcome{}).Err
	})
	return Outcome{Render: RenderFull}
}

// accept runs the confirmed action. The action reports its own toasts.
func (t *Tracker) accept(ctx context.Context, c AcceptConfirmation) Outcome {
	err := t.gate.Accept(ctx, c.ID)
	if errors.Is(err, confirmation.ErrNoPending) {
		return Outcome{Render: RenderNone, Err: err}
	}
	return Outcome{Render: RenderFull, Err: err}
}

func (t *Tracker) decline(c DeclineConfirmation) Outcome {
	var err error
	if c.Backdrop {
		err = t.gate.Dismiss(c.ID)
	} else {
		err = t.gate.Decline(c.ID)
	}
	return Outcome{Render: RenderFull, Err: err}
}

func (t *Tracker) loadData(ctx context.Context) Outcome {
	t.gate.Cancel()
	_, err := ExecuteLoadData(ctx, LoadDataDeps{List: t.list, Store: t.store, Now: t.now})
	switch {
	case err == nil:
		t.toasts.Notify(MsgLoaded, notification.SeverityInfo)
		return Outcome{Render: RenderFull}
	case errors.Is(err, subjectStore.ErrNoSavedData):
		t.toasts.Notify(MsgNoSavedData, notification.SeverityWarning)
		return Outcome{Render: RenderFull}
	case errors.Is(err, subjectStore.ErrCorruptData):
		t.toasts.Notify(MsgCorruptData, notification.SeverityError)
	default:
		t.toasts.Notify(MsgLoadFailed, notification.SeverityError)
	}
	return Outcome{Render: RenderFull, Err: err}
}

// clearData is the action behind the clear confirmation.
func (t *Tracker) clearData(ctx context.Context) error {
	if err := ExecuteClearData(ctx, ClearDataDeps{List: t.list, Store: t.store}); err != nil {
		t.toasts.Notify(MsgClearFailed, notification.SeverityError)
		return err
	}
	t.toasts.Notify(MsgCleared, notification.SeverityError)
	return nil
}

// persist saves the list and reports the result as a toast.
func (t *Tracker) persist(ctx context.Context, out Outcome) Outcome {
	if err := ExecuteSaveData(ctx, SaveDataDeps{List: t.list, Store: t.store}); err != nil {
		t.toasts.Notify(MsgSaveFailed, notification.SeverityError)
		out.Err = err
		return out
	}
	t.toasts.Notify(MsgSaved, notification.SeveritySuccess)
	return out
}

// reject reports rejected input and leaves the screen as it is.
func (t *Tracker) reject(err error) Outcome {
	msg := MsgInvalidSubject
	var verr *ValidationError
	if errors.As(err, &verr) {
		msg = verr.Message
	}
	t.toasts.Notify(msg, notification.SeverityError)
	return Outcome{Render: RenderNone, Err: err}
}

func outcomeLabel(err error) string {
	switch {
	case err == nil, errors.Is(err, subjectStore.ErrNoSavedData):
		return outcomeOK
	case errors.Is(err, subject.ErrInvalidInput),
		errors.Is(err, subject.ErrIndexOutOfRange),
		errors.Is(err, confirmation.ErrNoPending):
		return outcomeRejected
	default:
		return outcomeFailed
	}
}
