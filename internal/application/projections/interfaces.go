package projections

import (
	"tracker/internal/domain/subject"
)

// SubjectSource is the read side of the subject list.
type SubjectSource interface {
	Records() []subject.Record
	At(index int) (subject.Record, error)
}
