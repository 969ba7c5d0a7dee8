package projections

import (
	"errors"
	"testing"
	"time"

	"tracker/internal/domain/subject"
)

var testDay = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func newTestList(t *testing.T) *subject.List {
	t.Helper()
	l := subject.NewList()
	for _, s := range [][3]string{{"Math", "8", "10"}, {"Physics", "3", "10"}, {"Art", "0", "0"}} {
		if _, err := l.Add(s[0], s[1], s[2], testDay); err != nil {
			t.Fatalf("seed %s: %v", s[0], err)
		}
	}
	return l
}

// TestQueryGetSubjectList tests the full list view.
func TestQueryGetSubjectList(t *testing.T) {
	result := QueryGetSubjectList(GetSubjectListDeps{Subjects: newTestList(t)})
	if result.Empty {
		t.Fatal("expected non-empty result")
	}
	if len(result.Rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(result.Rows))
	}
	want := []SubjectRow{
		{Index: 0, Name: "Math", Attended: 8, Total: 10, PercentageText: "80.00%", Status: StatusGood, LastUpdated: "Last Updated: 2026-03-01"},
		{Index: 1, Name: "Physics", Attended: 3, Total: 10, PercentageText: "30.00%", Status: StatusWarning, LastUpdated: "Last Updated: 2026-03-01"},
		{Index: 2, Name: "Art", Attended: 0, Total: 0, PercentageText: "N/A", Status: StatusWarning, LastUpdated: "Last Updated: 2026-03-01"},
	}
	for i, w := range want {
		if result.Rows[i] != w {
			t.Errorf("row %d = %+v, want %+v", i, result.Rows[i], w)
		}
	}
	if result.GoodCount != 1 || result.WarningCount != 2 {
		t.Errorf("expected 1 good / 2 warning, got %d / %d", result.GoodCount, result.WarningCount)
	}
	if result.OverallPercentage != "55.00%" {
		t.Errorf("expected overall 55.00%%, got %s", result.OverallPercentage)
	}
}

// TestQueryGetSubjectList_Empty tests the placeholder.
func TestQueryGetSubjectList_Empty(t *testing.T) {
	result := QueryGetSubjectList(GetSubjectListDeps{Subjects: subject.NewList()})
	if !result.Empty {
		t.Error("expected Empty")
	}
	if result.Placeholder != EmptyListMessage {
		t.Errorf("expected placeholder, got %q", result.Placeholder)
	}
	if result.Rows == nil || len(result.Rows) != 0 {
		t.Errorf("expected empty non-nil rows, got %v", result.Rows)
	}
	if result.OverallPercentage != "N/A" {
		t.Errorf("expected overall N/A, got %s", result.OverallPercentage)
	}
}

// TestStatusOf tests the threshold styling policy.
func TestStatusOf(t *testing.T) {
	tests := map[string]string{
		"75.00":  StatusGood,
		"74.99":  StatusWarning,
		"100.00": StatusGood,
		"N/A":    StatusWarning,
	}
	for in, want := range tests {
		if got := StatusOf(in); got != want {
			t.Errorf("StatusOf(%q) = %s, want %s", in, got, want)
		}
	}
}

// TestLastUpdatedLabel tests the label for missing dates.
func TestLastUpdatedLabel(t *testing.T) {
	if got := LastUpdatedLabel(""); got != "Last Updated: N/A" {
		t.Errorf("got %q", got)
	}
}

// TestQueryGetRowPatch tests which parts of a row a field edit touches.
func TestQueryGetRowPatch(t *testing.T) {
	l := newTestList(t)
	deps := GetRowPatchDeps{Subjects: l}
	nextDay := testDay.AddDate(0, 0, 1)

	// Numeric change: percentage and date.
	change, err := l.UpdateField(1, subject.FieldAttended, "9", nextDay)
	if err != nil {
		t.Fatalf("UpdateField: %v", err)
	}
	patch, err := QueryGetRowPatch(change, deps)
	if err != nil {
		t.Fatalf("QueryGetRowPatch: %v", err)
	}
	if patch.PercentageText == nil || *patch.PercentageText != "90.00%" {
		t.Errorf("expected percentage 90.00%%, got %v", patch.PercentageText)
	}
	if patch.Status == nil || *patch.Status != StatusGood {
		t.Errorf("expected status good, got %v", patch.Status)
	}
	if patch.LastUpdated == nil || *patch.LastUpdated != "Last Updated: 2026-03-02" {
		t.Errorf("expected new date label, got %v", patch.LastUpdated)
	}

	// Unchanged numeric value: percentage only.
	change, _ = l.UpdateField(0, subject.FieldAttended, "8", nextDay)
	patch, _ = QueryGetRowPatch(change, deps)
	if patch.PercentageText == nil {
		t.Error("expected percentage in patch")
	}
	if patch.LastUpdated != nil {
		t.Errorf("expected no date change, got %s", *patch.LastUpdated)
	}

	// Name change: date only.
	change, _ = l.UpdateField(0, subject.FieldName, "Maths", nextDay)
	patch, _ = QueryGetRowPatch(change, deps)
	if patch.PercentageText != nil || patch.Status != nil {
		t.Error("name edit should not patch percentage")
	}
	if patch.LastUpdated == nil {
		t.Error("expected date in patch")
	}

	// Same name: nothing to patch.
	change, _ = l.UpdateField(0, subject.FieldName, "Maths", nextDay)
	patch, _ = QueryGetRowPatch(change, deps)
	if !patch.IsEmpty() {
		t.Errorf("expected empty patch, got %+v", patch)
	}
}

// TestQueryGetRowPatch_OutOfRange tests a stale index.
func TestQueryGetRowPatch_OutOfRange(t *testing.T) {
	_, err := QueryGetRowPatch(subject.FieldChange{Index: 9}, GetRowPatchDeps{Subjects: subject.NewList()})
	if !errors.Is(err, subject.ErrIndexOutOfRange) {
		t.Errorf("expected ErrIndexOutOfRange, got %v", err)
	}
}
