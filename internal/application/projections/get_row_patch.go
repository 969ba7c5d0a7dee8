package projections

import (
	"tracker/internal/domain/subject"
)

// RowPatch carries only the parts of a row that a field edit can change.
// Nil pointers mean "leave as is".
type RowPatch struct {
	Index          int     `json:"index"`
	PercentageText *string `json:"percentage_text,omitempty"`
	Status         *string `json:"status,omitempty"`
	LastUpdated    *string `json:"last_updated,omitempty"`
}

// IsEmpty reports whether the patch changes nothing on screen.
func (p RowPatch) IsEmpty() bool {
	return p.PercentageText == nil && p.LastUpdated == nil
}

// GetRowPatchDeps holds dependencies for GetRowPatch.
type GetRowPatchDeps struct {
	Subjects SubjectSource
}

// QueryGetRowPatch builds the incremental update for one edited row.
// PRE: change comes from a successful UpdateField on deps.Subjects
// POST: Percentage fields set iff the percentage was recomputed; LastUpdated set iff
// the value changed
func QueryGetRowPatch(change subject.FieldChange, deps GetRowPatchDeps) (RowPatch, error) {
	r, err := deps.Subjects.At(change.Index)
	if err != nil {
		return RowPatch{}, err
	}
	patch := RowPatch{Index: change.Index}
	if change.PercentageChanged {
		text := percentageText(r.Percentage)
		status := StatusOf(r.Percentage)
		patch.PercentageText = &text
		patch.Status = &status
	}
	if change.ValueChanged {
		label := LastUpdatedLabel(r.LastUpdated)
		patch.LastUpdated = &label
	}
	return patch, nil
}
