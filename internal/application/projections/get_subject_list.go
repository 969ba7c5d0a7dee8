package projections

import (
	"tracker/internal/domain/subject"
)

// Row status classes
const (
	StatusGood    = "good"
	StatusWarning = "warning"
)

// EmptyListMessage is shown in place of the list when there are no subjects.
const EmptyListMessage = "No subjects added yet. Add one above to start tracking."

// SubjectRow is one editable row of the list.
type SubjectRow struct {
	Index          int    `json:"index"`
	Name           string `json:"name"`
	Attended       int    `json:"attended"`
	Total          int    `json:"total"`
	PercentageText string `json:"percentage_text"`
	Status         string `json:"status"`
	LastUpdated    string `json:"last_updated"`
}

// GetSubjectListResult is the full-render view of the list.
type GetSubjectListResult struct {
	Rows              []SubjectRow `json:"rows"`
	Empty             bool         `json:"empty"`
	Placeholder       string       `json:"placeholder,omitempty"`
	GoodCount         int          `json:"good_count"`
	WarningCount      int          `json:"warning_count"`
	OverallPercentage string       `json:"overall_percentage"`
}

// GetSubjectListDeps holds dependencies for GetSubjectList.
type GetSubjectListDeps struct {
	Subjects SubjectSource
}

// QueryGetSubjectList builds the full list view.
// PRE: deps.Subjects is non-nil
// POST: One row per record in list order; Empty and Placeholder set when there are none
func QueryGetSubjectList(deps GetSubjectListDeps) GetSubjectListResult {
	records := deps.Subjects.Records()
	result := GetSubjectListResult{Rows: make([]SubjectRow, 0, len(records))}
	var attended, total int
	for i, r := range records {
		row := toRow(i, r)
		if row.Status == StatusGood {
			result.GoodCount++
		} else {
			result.WarningCount++
		}
		attended += r.Attended
		total += r.Total
		result.Rows = append(result.Rows, row)
	}
	result.OverallPercentage = percentageText(subject.ComputePercentage(attended, total))
	if len(records) == 0 {
		result.Empty = true
		result.Placeholder = EmptyListMessage
	}
	return result
}

// PercentageText renders a stored percentage for display: "80.00%" or "N/A".
func percentageText(p string) string {
	if p == subject.NotApplicable || p == "" {
		return subject.NotApplicable
	}
	return p + "%"
}

// StatusOf returns the style class for a stored percentage.
func StatusOf(p string) string {
	if subject.IsGood(p) {
		return StatusGood
	}
	return StatusWarning
}

// LastUpdatedLabel renders the row's date label.
func LastUpdatedLabel(date string) string {
	if date == "" {
		date = subject.NotApplicable
	}
	return "Last Updated: " + date
}

func toRow(index int, r subject.Record) SubjectRow {
	return SubjectRow{
		Index:          index,
		Name:           r.Name,
		Attended:       r.Attended,
		Total:          r.Total,
		PercentageText: percentageText(r.Percentage),
		Status:         StatusOf(r.Percentage),
		LastUpdated:    LastUpdatedLabel(r.LastUpdated),
	}
}
