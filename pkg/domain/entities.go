package domain

import (
	"errors"
	"fmt"
)

// TrackedEntity is the subject (e.g. a person) events are captured for.
type TrackedEntity struct {
	Identifiable
	TypeUid    string
	OrgUnitUid string
	Inactive   bool
	Deleted    bool
}

var ErrUnknownEnrollmentStatus = errors.New("unknown enrollment status")

type EnrollmentStatus string

const (
	EnrollmentActive    EnrollmentStatus = "ACTIVE"
	EnrollmentCompleted EnrollmentStatus = "COMPLETED"
	EnrollmentCancelled EnrollmentStatus = "CANCELLED"
)

func AsEnrollmentStatus(s string) (EnrollmentStatus, error) {
	switch EnrollmentStatus(s) {
	case EnrollmentActive, EnrollmentCompleted, EnrollmentCancelled:
		return EnrollmentStatus(s), nil
	default:
		return EnrollmentStatus(s), fmt.Errorf("%w: %s", ErrUnknownEnrollmentStatus, s)
	}
}

// Enrollment is a tracked entity's participation in a program
// (a program instance row).
type Enrollment struct {
	Id               int64
	Uid              string
	ProgramUid       string
	TrackedEntityUid string
	Status           EnrollmentStatus
	Deleted          bool

	// Program is re-attached from the batch's program map after
	// resolution; nil when the program was not part of the batch.
	Program *Program
}

// CategoryOptionCombo disaggregates an event (attribute option combo).
type CategoryOptionCombo struct {
	Identifiable
	CategoryComboUid string
	Default          bool
}

type ValueType string

const (
	ValueTypeText    ValueType = "TEXT"
	ValueTypeNumber  ValueType = "NUMBER"
	ValueTypeInteger ValueType = "INTEGER"
	ValueTypeBoolean ValueType = "BOOLEAN"
	ValueTypeDate    ValueType = "DATE"
	ValueTypeFile    ValueType = "FILE_RESOURCE"
)

// DataElement describes one capturable value of a program stage.
type DataElement struct {
	Identifiable
	ValueType    ValueType
	OptionSetUid string
}

// User is an importing or assigned user (userinfo row).
type User struct {
	Id       int64
	Uid      string
	Username string
	Disabled bool
}
