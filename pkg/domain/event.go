package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var ErrUnknownEventStatus = errors.New("unknown event status")

type EventStatus string

const (
	EventActive    EventStatus = "ACTIVE"
	EventCompleted EventStatus = "COMPLETED"
	EventSchedule  EventStatus = "SCHEDULE"
	EventSkipped   EventStatus = "SKIPPED"
)

func (s EventStatus) String() string {
	return string(s)
}

func AsEventStatus(s string) (EventStatus, error) {
	switch EventStatus(s) {
	case EventActive, EventCompleted, EventSchedule, EventSkipped:
		return EventStatus(s), nil
	default:
		return EventStatus(s), fmt.Errorf("%w: %s", ErrUnknownEventStatus, s)
	}
}

// DataValue is one data-element value carried by an incoming event.
//
// DataElement is a reference under the batch's data-element id scheme.
type DataValue struct {
	DataElement       string
	Value             string
	ProvidedElsewhere bool
}

// Note is a free-text comment attached to an event.
type Note struct {
	Uid      string
	Value    string
	StoredBy string
	StoredAt time.Time
}

// Event is one incoming data-capture record of an import batch.
//
// All entity fields are references under the batch's id schemes, not
// resolved entities; resolution is what the work-context loader does.
type Event struct {
	Uid                      string
	Program                  string
	ProgramStage             string
	OrgUnit                  string
	TrackedEntity            string
	Enrollment               string
	AttributeOptionCombo     string
	AttributeCategoryOptions string
	AssignedUser             string
	Status                   EventStatus
	OccurredAt               *time.Time
	Geometry                 json.RawMessage
	DataValues               []DataValue
	Notes                    []Note
}

// PersistedEvent is the already-stored row for an event uid, loaded for
// updates. EnrollmentUid feeds the enrollment fallback resolution.
type PersistedEvent struct {
	Id             int64
	Uid            string
	EnrollmentId   int64
	EnrollmentUid  string
	ProgramStageId int64
	Status         EventStatus
	Deleted        bool
	Geometry       []byte
}
