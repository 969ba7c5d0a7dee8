package subject

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// NotApplicable is the percentage shown when no classes have been held yet.
const NotApplicable = "N/A"

// GoodThreshold is the attendance percentage at or above which a subject is in good standing.
const GoodThreshold = 75.0

// MaxCountDigits bounds a typed class count so it always fits an int.
const MaxCountDigits = 9

// countPattern is a class count as typed: digits only, no sign.
var countPattern = regexp.MustCompile(fmt.Sprintf(`^[0-9]{1,%d}$`, MaxCountDigits))

// DateLayout is the format of Record.LastUpdated.
const DateLayout = "2006-01-02"

// Editable fields
const (
	FieldName     = "name"
	FieldAttended = "attended"
	FieldTotal    = "total"
)

// ValidFields contains the fields that can be edited in place.
var ValidFields = []string{FieldName, FieldAttended, FieldTotal}

// Domain errors
var (
	ErrInvalidInput      = errors.New("invalid subject input")
	ErrEmptyName         = fmt.Errorf("%w: subject name cannot be empty", ErrInvalidInput)
	ErrNegativeCount     = fmt.Errorf("%w: please enter a valid non-negative number", ErrInvalidInput)
	ErrAttendedOverTotal = fmt.Errorf("%w: attended classes cannot be more than total classes", ErrInvalidInput)
	ErrUnknownField      = fmt.Errorf("%w: field must be one of: name, attended, total", ErrInvalidInput)
	ErrIndexOutOfRange   = errors.New("subject index out of range")
)

// Record is one subject's attendance entry.
// Percentage is derived from Attended and Total and is never authoritative on its own.
type Record struct {
	Name        string `json:"name"`
	Attended    int    `json:"attended"`
	Total       int    `json:"total"`
	Percentage  string `json:"percentage"`
	LastUpdated string `json:"lastUpdated"`
}

// Validate checks the record invariants.
// PRE: Record struct is populated
// POST: Returns nil if valid, error otherwise
// INVARIANT: Name non-empty, 0 <= Attended <= Total
func (r *Record) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return ErrEmptyName
	}
	if r.Attended < 0 || r.Total < 0 {
		return ErrNegativeCount
	}
	if r.Attended > r.Total {
		return ErrAttendedOverTotal
	}
	return nil
}

// Recompute refreshes the derived percentage from Attended and Total.
// POST: Percentage == ComputePercentage(Attended, Total)
func (r *Record) Recompute() {
	r.Percentage = ComputePercentage(r.Attended, r.Total)
}

// IsGood reports whether the record's attendance meets GoodThreshold.
func (r *Record) IsGood() bool {
	return IsGood(r.Percentage)
}

// ComputePercentage returns attended/total as a percentage with two decimals,
// or NotApplicable when total is zero.
func ComputePercentage(attended, total int) string {
	if total == 0 {
		return NotApplicable
	}
	return strconv.FormatFloat(float64(attended)/float64(total)*100, 'f', 2, 64)
}

// IsGood reports whether a percentage string is numeric and at least GoodThreshold.
// NotApplicable and anything unparsable are not good.
func IsGood(percentage string) bool {
	v, err := strconv.ParseFloat(percentage, 64)
	if err != nil {
		return false
	}
	return v >= GoodThreshold
}

// FormatDate renders t the way LastUpdated is stored.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseCount parses a class count typed by the user.
// PRE: raw is user input
// POST: Returns a non-negative integer or ErrNegativeCount
func ParseCount(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if !IsCount(raw) {
		return 0, ErrNegativeCount
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, ErrNegativeCount
	}
	return n, nil
}

// IsCount reports whether raw is a class count ParseCount accepts, without trimming.
func IsCount(raw string) bool {
	return countPattern.MatchString(raw)
}

// IsValidField reports whether field can be edited in place.
func IsValidField(field string) bool {
	for _, f := range ValidFields {
		if f == field {
			return true
		}
	}
	return false
}
