package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"tracker/internal/domain/subject"
)

// User-facing messages for rejected subject input.
const (
	MsgInvalidSubject    = "Please enter valid data: Subject Name, Attended (>=0), Total (>=0), and Attended <= Total."
	MsgInvalidCount      = "Please enter a valid non-negative number."
	MsgAttendedNotCount  = "Attended must be a whole number of 0 or more."
	MsgTotalNotCount     = "Total must be a whole number of 0 or more."
	MsgAttendedOverTotal = "Attended cannot exceed Total."
	MsgEmptyName         = "Subject name cannot be empty."
	MsgUnknownField      = "That field cannot be edited."
	MsgSubjectGone       = "That subject no longer exists."
)

// ValidationError is rejected user input together with the message shown for it.
type ValidationError struct {
	Message string
	Err     error
}

// Error implements error.
func (e *ValidationError) Error() string {
	return e.Message
}

// Unwrap exposes the underlying domain error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// rejectInput wraps a domain error with its user-facing message.
func rejectInput(err error) error {
	msg := MsgInvalidSubject
	switch {
	case errors.Is(err, subject.ErrIndexOutOfRange):
		msg = MsgSubjectGone
	case errors.Is(err, subject.ErrEmptyName):
		msg = MsgEmptyName
	case errors.Is(err, subject.ErrNegativeCount):
		msg = MsgInvalidCount
	case errors.Is(err, subject.ErrAttendedOverTotal):
		msg = MsgAttendedOverTotal
	case errors.Is(err, subject.ErrUnknownField):
		msg = MsgUnknownField
	}
	return &ValidationError{Message: msg, Err: err}
}

// --- Add Subject ---

// AddSubjectInput carries the raw values of the add form.
type AddSubjectInput struct {
	Name     string
	Attended string
	Total    string
}

// AddSubjectDeps holds dependencies for AddSubject.
type AddSubjectDeps struct {
	List *subject.List
	Now  func() time.Time
}

// ExecuteAddSubject validates the form and appends a new subject.
// PRE: deps.List is non-nil
// POST: On success the subject is the last record of the list; on error the list is
// unchanged and the error is a *ValidationError naming the offending fields
func ExecuteAddSubject(_ context.Context, input AddSubjectInput, deps AddSubjectDeps) (subject.Record, error) {
	in := SubjectInput{
		Name:     strings.TrimSpace(input.Name),
		Attended: strings.TrimSpace(input.Attended),
		Total:    strings.TrimSpace(input.Total),
	}
	if err := validateSubjectInput(in); err != nil {
		return subject.Record{}, err
	}

	r, err := deps.List.Add(in.Name, in.Attended, in.Total, deps.Now())
	if err != nil {
		return subject.Record{}, rejectInput(err)
	}

	slog.Info("subject_event", "event", "subject_added", "name", r.Name, "attended", r.Attended, "total", r.Total, "percentage", r.Percentage)
	return r, nil
}

// --- Edit Field ---

// EditFieldInput carries a single in-place edit.
type EditFieldInput struct {
	Index int
	Field string
	Value string
}

// EditFieldDeps holds dependencies for EditField.
type EditFieldDeps struct {
	List *subject.List
	Now  func() time.Time
}

// ExecuteEditField commits one field of one subject.
// PRE: deps.List is non-nil
// POST: On success the field holds the new value and the returned change tells which
// parts of the row must be re-rendered; on error nothing changed and the error is a
// *ValidationError
func ExecuteEditField(_ context.Context, input EditFieldInput, deps EditFieldDeps) (subject.FieldChange, error) {
	current, err := deps.List.At(input.Index)
	if err != nil {
		return subject.FieldChange{}, rejectInput(err)
	}
	candidate, err := editedInput(current, input.Field, input.Value)
	if err != nil {
		return subject.FieldChange{}, rejectInput(err)
	}
	if err := validateSubjectInput(candidate); err != nil {
		return subject.FieldChange{}, err
	}

	change, err := deps.List.UpdateField(input.Index, input.Field, input.Value, deps.Now())
	if err != nil {
		return subject.FieldChange{}, rejectInput(err)
	}
	if change.ValueChanged {
		slog.Info("subject_event", "event", "subject_edited", "index", input.Index, "field", input.Field)
	}
	return change, nil
}

// editedInput is r as typed input, with field replaced by raw.
func editedInput(r subject.Record, field, raw string) (SubjectInput, error) {
	in := SubjectInput{
		Name:     r.Name,
		Attended: strconv.Itoa(r.Attended),
		Total:    strconv.Itoa(r.Total),
	}
	switch field {
	case subject.FieldName:
		in.Name = raw
	case subject.FieldAttended:
		in.Attended = strings.TrimSpace(raw)
	case subject.FieldTotal:
		in.Total = strings.TrimSpace(raw)
	default:
		return SubjectInput{}, subject.ErrUnknownField
	}
	return in, nil
}

// --- Remove Subject ---

// RemoveSubjectInput identifies the subject to remove.
type RemoveSubjectInput struct {
	Index int
}

// RemoveSubjectDeps holds dependencies for RemoveSubject.
type RemoveSubjectDeps struct {
	List *subject.List
}

// ExecuteRemoveSubject deletes a subject. Callers confirm with the user first.
// PRE: deps.List is non-nil
// POST: On success the list is one shorter and later subjects shifted down
func ExecuteRemoveSubject(_ context.Context, input RemoveSubjectInput, deps RemoveSubjectDeps) (subject.Record, error) {
	r, err := deps.List.Remove(input.Index)
	if err != nil {
		return subject.Record{}, rejectInput(err)
	}
	slog.Info("subject_event", "event", "subject_removed", "index", input.Index, "name", r.Name)
	return r, nil
}

// RemoveConfirmationMessage is the Markdown question asked before removing a subject.
// The name is escaped so it renders literally.
func RemoveConfirmationMessage(name string) string {
	return `Are you sure you want to remove "` + escapeMarkdown(name) + `"?`
}

// escapeMarkdown backslash-escapes ASCII punctuation.
func escapeMarkdown(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r < 0x80 && strings.ContainsRune("!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~", r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
