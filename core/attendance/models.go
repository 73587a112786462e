package attendance

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/kelasi/core"
	"github.com/trezcool/kelasi/core/lesson"
)

type Status string

// Statuses
const (
	StatusNone     Status = "" // not recorded yet
	StatusPresent  Status = "P"
	StatusRemote   Status = "M"
	StatusMedical  Status = "CM"
	StatusAbsent   Status = "A"
	StatusDropout  Status = "ABANDON"
	StatusExempted Status = "D"
)

// Statuses lists every recordable status in display order.
var Statuses = []Status{StatusPresent, StatusRemote, StatusMedical, StatusAbsent, StatusDropout, StatusExempted}

// Valid reports whether s is a recorded status (StatusNone is not).
func (s Status) Valid() bool {
	_, ok := statusDisplays[s]
	return ok
}

type Student struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email,omitempty"`
}

func (s Student) FullName() string {
	return strings.TrimSpace(s.LastName + " " + s.FirstName)
}

// Record is the attendance of one student for one lesson.
// ID is empty until the record is saved; at most one record exists per (LessonID, StudentID).
type Record struct {
	ID        string `json:"id,omitempty"`
	LessonID  string `json:"lesson_id"`
	StudentID string `json:"student_id"`
	Status    Status `json:"status"`
}

// IsPlaceholder reports whether r stands for "not yet recorded".
func (r Record) IsPlaceholder() bool {
	return r.Status == StatusNone
}

type recordKey struct {
	lessonID  string
	studentID string
}

func (r Record) key() recordKey {
	return recordKey{lessonID: r.LessonID, studentID: r.StudentID}
}

// Context is the snapshot needed to edit the attendance of a lesson.
type Context struct {
	Lesson     lesson.Lesson     `json:"lesson"`
	AcademicUE lesson.AcademicUE `json:"academic_ue"`
	Students   []Student         `json:"students"`
	Records    []Record          `json:"attendances"`
}

// StudentIDs returns the ids of the enrolled students.
func (c Context) StudentIDs() []string {
	ids := make([]string, 0, len(c.Students))
	for _, s := range c.Students {
		ids = append(ids, s.ID)
	}
	return ids
}

type LessonAttendance struct {
	LessonID string    `json:"lesson_id"`
	Date     core.Date `json:"date"`
	Status   Status    `json:"status"`
}

// SummaryRow is the attendance of one student over the lessons of an AcademicUE.
type SummaryRow struct {
	Student     Student            `json:"student"`
	Attendances []LessonAttendance `json:"attendances"`
}

// AssignRequest is the payload of a staged attendance assignment.
type AssignRequest struct {
	Status string `json:"status" validate:"required,attendancestatus"`
}

func (r *AssignRequest) Validate(validate *validator.Validate) error {
	r.Status = core.CleanString(r.Status)
	return validate.Struct(r)
}
