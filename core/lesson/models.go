package lesson

import (
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/kelasi/core"
)

type Status string

// Statuses
const (
	StatusProgrammed Status = "PROGRAMMED"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
	StatusCancelled  Status = "CANCELLED"
	StatusReported   Status = "REPORTED"
)

// Statuses lists every lesson status in display order.
var Statuses = []Status{StatusProgrammed, StatusInProgress, StatusCompleted, StatusCancelled, StatusReported}

func (s Status) Valid() bool {
	_, ok := statusDisplays[s]
	return ok
}

// Lesson is one scheduled session of an AcademicUE.
// Date must stay within the AcademicUE's [StartDate, EndDate] window.
type Lesson struct {
	ID           string    `json:"id"`
	AcademicUEID string    `json:"academic_ue_id"`
	Date         core.Date `json:"date"`
	Status       Status    `json:"status"`
}

// AcademicUE is the instantiation of a course unit (UE) for a given year.
type AcademicUE struct {
	ID          string    `json:"id"`
	UEID        string    `json:"ue_id"`
	Name        string    `json:"name"`
	Year        int       `json:"year"`
	ProfessorID string    `json:"professor_id"`
	StartDate   core.Date `json:"start_date"`
	EndDate     core.Date `json:"end_date"`
}

// Contains reports whether d falls within the AcademicUE window (bounds included).
func (ue AcademicUE) Contains(d core.Date) bool {
	return d.Within(ue.StartDate, ue.EndDate)
}

// StatusChangeRequest is the payload of a status transition request.
type StatusChangeRequest struct {
	Status string `json:"status" validate:"required,lessonstatus"`
	Date   string `json:"date" validate:"omitempty,isodate"`
}

func (r *StatusChangeRequest) Validate(validate *validator.Validate) error {
	r.Status = core.CleanString(r.Status)
	r.Date = core.CleanString(r.Date)
	return validate.Struct(r)
}

// Parse returns the typed target status and optional date. Call Validate first.
func (r StatusChangeRequest) Parse() (Status, *core.Date, error) {
	status, err := ParseStatus(r.Status)
	if err != nil {
		return "", nil, err
	}
	if r.Date == "" {
		return status, nil, nil
	}
	date, err := core.ParseDate(r.Date)
	if err != nil {
		return "", nil, core.NewValidationError(err, core.FieldError{Field: "date", Error: err.Error()})
	}
	return status, &date, nil
}
