package subject

import (
	"fmt"
	"strings"
	"time"
)

// FieldChange describes the effect of a single in-place field edit.
type FieldChange struct {
	Index             int
	Field             string
	ValueChanged      bool // the stored value differs from the previous one
	PercentageChanged bool // a numeric field was committed and the percentage recomputed
}

// List is the ordered, in-memory sequence of subject records.
// Order is insertion order; callers address records by position and must not
// keep an index across a Remove, since later records shift down by one.
type List struct {
	records []Record
}

// NewList creates an empty list.
func NewList() *List {
	return &List{}
}

// Len returns the number of records.
func (l *List) Len() int {
	return len(l.records)
}

// Records returns a copy of the records in order.
func (l *List) Records() []Record {
	out := make([]Record, len(l.records))
	copy(out, l.records)
	return out
}

// At returns the record at index.
// PRE: 0 <= index < Len()
// POST: Returns a copy of the record or ErrIndexOutOfRange
func (l *List) At(index int) (Record, error) {
	if err := l.checkIndex(index); err != nil {
		return Record{}, err
	}
	return l.records[index], nil
}

// Add validates raw user input and appends a new record.
// PRE: name, attended, total are raw form values
// POST: On success a record with computed percentage and today's date is appended;
// on error the list is unchanged
func (l *List) Add(name, attended, total string, now time.Time) (Record, error) {
	a, err := ParseCount(attended)
	if err != nil {
		return Record{}, err
	}
	t, err := ParseCount(total)
	if err != nil {
		return Record{}, err
	}
	r := Record{
		Name:        strings.TrimSpace(name),
		Attended:    a,
		Total:       t,
		LastUpdated: FormatDate(now),
	}
	if err := r.Validate(); err != nil {
		return Record{}, err
	}
	r.Recompute()
	l.records = append(l.records, r)
	return r, nil
}

// UpdateField commits a single field edit after checking the prospective record.
// PRE: 0 <= index < Len(); field is one of ValidFields
// POST: On success the field holds the new value, Percentage is recomputed for
// numeric fields, and LastUpdated moves to now only if the value changed.
// On error the record is unchanged.
func (l *List) UpdateField(index int, field, raw string, now time.Time) (FieldChange, error) {
	if err := l.checkIndex(index); err != nil {
		return FieldChange{}, err
	}
	if !IsValidField(field) {
		return FieldChange{}, ErrUnknownField
	}

	current := l.records[index]
	next := current
	switch field {
	case FieldName:
		next.Name = raw
	case FieldAttended, FieldTotal:
		n, err := ParseCount(raw)
		if err != nil {
			return FieldChange{}, err
		}
		if field == FieldAttended {
			next.Attended = n
		} else {
			next.Total = n
		}
	}
	if err := next.Validate(); err != nil {
		return FieldChange{}, err
	}

	change := FieldChange{Index: index, Field: field}
	change.ValueChanged = next.Name != current.Name ||
		next.Attended != current.Attended ||
		next.Total != current.Total
	if field != FieldName {
		next.Recompute()
		change.PercentageChanged = true
	}
	if change.ValueChanged {
		next.LastUpdated = FormatDate(now)
	}
	l.records[index] = next
	return change, nil
}

// Remove deletes the record at index and returns it.
// PRE: 0 <= index < Len()
// POST: Len() decreases by one; records after index shift down
func (l *List) Remove(index int) (Record, error) {
	if err := l.checkIndex(index); err != nil {
		return Record{}, err
	}
	removed := l.records[index]
	l.records = append(l.records[:index], l.records[index+1:]...)
	return removed, nil
}

// ReplaceAll swaps the whole sequence, as done when loading saved data.
// Percentages are recomputed and missing dates are backfilled with now.
// PRE: records come from an untrusted source
// POST: On success the list equals records (normalized); if any record breaks an
// invariant the list is unchanged
func (l *List) ReplaceAll(records []Record, now time.Time) error {
	next := make([]Record, len(records))
	for i, r := range records {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
		r.Recompute()
		if r.LastUpdated == "" {
			r.LastUpdated = FormatDate(now)
		}
		next[i] = r
	}
	l.records = next
	return nil
}

// Clear empties the list.
func (l *List) Clear() {
	l.records = nil
}

func (l *List) checkIndex(index int) error {
	if index < 0 || index >= len(l.records) {
		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}
	return nil
}
