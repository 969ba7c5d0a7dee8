package subject_test

import (
	"errors"
	"testing"
	"time"

	"tracker/internal/domain/subject"
)

var (
	day1 = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	day2 = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
)

func seededList(t *testing.T) *subject.List {
	t.Helper()
	l := subject.NewList()
	for _, s := range []struct{ name, attended, total string }{
		{"Math", "8", "10"},
		{"Physics", "3", "10"},
		{"Chemistry", "5", "5"},
	} {
		if _, err := l.Add(s.name, s.attended, s.total, day1); err != nil {
			t.Fatalf("seed %s: %v", s.name, err)
		}
	}
	return l
}

// TestList_Add tests appending records with derived fields.
func TestList_Add(t *testing.T) {
	l := subject.NewList()
	r, err := l.Add("  Math ", "8", "10", day1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Name != "Math" {
		t.Errorf("expected trimmed name Math, got %q", r.Name)
	}
	if r.Percentage != "80.00" {
		t.Errorf("expected percentage 80.00, got %s", r.Percentage)
	}
	if r.LastUpdated != "2026-03-01" {
		t.Errorf("expected lastUpdated 2026-03-01, got %s", r.LastUpdated)
	}

	r, err = l.Add("Physics", "3", "10", day1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Percentage != "30.00" {
		t.Errorf("expected percentage 30.00, got %s", r.Percentage)
	}
	if l.Len() != 2 {
		t.Errorf("expected 2 records, got %d", l.Len())
	}
	got := l.Records()
	if got[0].Name != "Math" || got[1].Name != "Physics" {
		t.Errorf("expected insertion order, got %v", got)
	}
}

// TestList_Add_Rejected tests that invalid input leaves the list unchanged.
func TestList_Add_Rejected(t *testing.T) {
	tests := []struct {
		name, subjectName, attended, total string
	}{
		{"empty name", "", "1", "2"},
		{"blank name", "   ", "1", "2"},
		{"non-numeric attended", "Math", "x", "2"},
		{"non-numeric total", "Math", "1", ""},
		{"negative attended", "Math", "-1", "2"},
		{"negative total", "Math", "0", "-2"},
		{"attended over total", "Math", "11", "10"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := seededList(t)
			_, err := l.Add(tt.subjectName, tt.attended, tt.total, day1)
			if !errors.Is(err, subject.ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
			if l.Len() != 3 {
				t.Errorf("expected length 3 after rejected add, got %d", l.Len())
			}
		})
	}
}

// TestList_UpdateField_Name tests that a changed name moves lastUpdated.
func TestList_UpdateField_Name(t *testing.T) {
	l := seededList(t)
	change, err := l.UpdateField(0, subject.FieldName, "Maths", day2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !change.ValueChanged {
		t.Error("expected ValueChanged")
	}
	if change.PercentageChanged {
		t.Error("name edit should not recompute percentage")
	}
	r, _ := l.At(0)
	if r.Name != "Maths" {
		t.Errorf("expected name Maths, got %s", r.Name)
	}
	if r.LastUpdated != "2026-03-02" {
		t.Errorf("expected lastUpdated to move to 2026-03-02, got %s", r.LastUpdated)
	}
}

// TestList_UpdateField_SameValue tests that an unchanged value keeps lastUpdated.
func TestList_UpdateField_SameValue(t *testing.T) {
	l := seededList(t)
	change, err := l.UpdateField(0, subject.FieldAttended, "8", day2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if change.ValueChanged {
		t.Error("expected ValueChanged=false for identical value")
	}
	r, _ := l.At(0)
	if r.LastUpdated != "2026-03-01" {
		t.Errorf("expected lastUpdated to stay 2026-03-01, got %s", r.LastUpdated)
	}
	if r.Percentage != "80.00" {
		t.Errorf("expected percentage 80.00, got %s", r.Percentage)
	}
}

// TestList_UpdateField_Numeric tests recomputation after a count edit.
func TestList_UpdateField_Numeric(t *testing.T) {
	l := seededList(t)
	change, err := l.UpdateField(1, subject.FieldAttended, "9", day2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !change.PercentageChanged || !change.ValueChanged {
		t.Errorf("expected percentage and value change, got %+v", change)
	}
	r, _ := l.At(1)
	if r.Attended != 9 || r.Percentage != "90.00" {
		t.Errorf("expected 9 attended at 90.00, got %d at %s", r.Attended, r.Percentage)
	}

	if _, err := l.UpdateField(1, subject.FieldTotal, "0", day2); !errors.Is(err, subject.ErrAttendedOverTotal) {
		t.Fatalf("expected ErrAttendedOverTotal, got %v", err)
	}
	if _, err := l.UpdateField(1, subject.FieldAttended, "0", day2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := l.UpdateField(1, subject.FieldTotal, "0", day2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r, _ = l.At(1)
	if r.Percentage != subject.NotApplicable {
		t.Errorf("expected N/A for zero total, got %s", r.Percentage)
	}
}

// TestList_UpdateField_TotalBelowAttended tests the prospective attended/total check.
func TestList_UpdateField_TotalBelowAttended(t *testing.T) {
	l := seededList(t)
	_, err := l.UpdateField(0, subject.FieldTotal, "7", day2)
	if !errors.Is(err, subject.ErrAttendedOverTotal) {
		t.Fatalf("expected ErrAttendedOverTotal, got %v", err)
	}
	r, _ := l.At(0)
	if r.Attended != 8 || r.Total != 10 || r.LastUpdated != "2026-03-01" {
		t.Errorf("expected record unchanged, got %+v", r)
	}
}

// TestList_UpdateField_Invalid tests rejected edits.
func TestList_UpdateField_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		index   int
		field   string
		raw     string
		wantErr error
	}{
		{"negative", 0, subject.FieldAttended, "-3", subject.ErrNegativeCount},
		{"non-numeric", 0, subject.FieldTotal, "ten", subject.ErrNegativeCount},
		{"empty name", 0, subject.FieldName, " ", subject.ErrEmptyName},
		{"unknown field", 0, "percentage", "100", subject.ErrUnknownField},
		{"index too large", 3, subject.FieldName, "X", subject.ErrIndexOutOfRange},
		{"negative index", -1, subject.FieldName, "X", subject.ErrIndexOutOfRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := seededList(t)
			before := l.Records()
			_, err := l.UpdateField(tt.index, tt.field, tt.raw, day2)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			after := l.Records()
			for i := range before {
				if before[i] != after[i] {
					t.Errorf("record %d changed: %+v -> %+v", i, before[i], after[i])
				}
			}
		})
	}
}

// TestList_Remove_Shifts tests that a repeated remove at the same index takes the next record.
func TestList_Remove_Shifts(t *testing.T) {
	l := seededList(t)
	r, err := l.Remove(0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Name != "Math" {
		t.Errorf("expected Math removed, got %s", r.Name)
	}
	r, err = l.Remove(0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Name != "Physics" {
		t.Errorf("expected Physics removed second, got %s", r.Name)
	}
	if l.Len() != 1 {
		t.Errorf("expected 1 record left, got %d", l.Len())
	}
	if _, err := l.Remove(5); !errors.Is(err, subject.ErrIndexOutOfRange) {
		t.Errorf("expected ErrIndexOutOfRange, got %v", err)
	}
}

// TestList_ReplaceAll tests normalization of loaded records.
func TestList_ReplaceAll(t *testing.T) {
	l := seededList(t)
	err := l.ReplaceAll([]subject.Record{
		{Name: "Biology", Attended: 3, Total: 4, Percentage: "99.99", LastUpdated: "2025-12-01"},
		{Name: "History", Attended: 0, Total: 0},
	}, day2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := l.Records()
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
	if got[0].Percentage != "75.00" {
		t.Errorf("expected stored percentage to be recomputed to 75.00, got %s", got[0].Percentage)
	}
	if got[0].LastUpdated != "2025-12-01" {
		t.Errorf("expected existing date kept, got %s", got[0].LastUpdated)
	}
	if got[1].Percentage != subject.NotApplicable {
		t.Errorf("expected N/A, got %s", got[1].Percentage)
	}
	if got[1].LastUpdated != "2026-03-02" {
		t.Errorf("expected backfilled date 2026-03-02, got %s", got[1].LastUpdated)
	}
}

// TestList_ReplaceAll_Invalid tests that a bad batch leaves the list untouched.
func TestList_ReplaceAll_Invalid(t *testing.T) {
	l := seededList(t)
	err := l.ReplaceAll([]subject.Record{
		{Name: "Biology", Attended: 3, Total: 4},
		{Name: "Broken", Attended: 9, Total: 4},
	}, day2)
	if !errors.Is(err, subject.ErrAttendedOverTotal) {
		t.Fatalf("expected ErrAttendedOverTotal, got %v", err)
	}
	if l.Len() != 3 {
		t.Errorf("expected list untouched, got %d records", l.Len())
	}
}

// TestList_Clear tests emptying the list.
func TestList_Clear(t *testing.T) {
	l := seededList(t)
	l.Clear()
	if l.Len() != 0 {
		t.Errorf("expected empty list, got %d", l.Len())
	}
	if got := l.Records(); len(got) != 0 {
		t.Errorf("expected no records, got %v", got)
	}
}

// TestList_RecordsIsCopy tests that callers cannot mutate the list through Records.
func TestList_RecordsIsCopy(t *testing.T) {
	l := seededList(t)
	got := l.Records()
	got[0].Name = "Hacked"
	r, _ := l.At(0)
	if r.Name != "Math" {
		t.Errorf("expected list to be unaffected, got %s", r.Name)
	}
}
