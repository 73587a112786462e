package echoapi

import (
	"github.com/trezcool/kelasi/core"
	"github.com/trezcool/kelasi/core/attendance"
	"github.com/trezcool/kelasi/core/lesson"
	"github.com/trezcool/kelasi/core/user"
)

type LessonResponse struct {
	lesson.Lesson
	StatusLabel    string        `json:"status_label"`
	StatusCategory core.Category `json:"status_category"`
}

func NewLessonResponse(lsn lesson.Lesson) LessonResponse {
	return LessonResponse{
		Lesson:         lsn,
		StatusLabel:    lsn.Status.Label(),
		StatusCategory: lsn.Status.Category(),
	}
}

func NewLessonListResponse(lessons []lesson.Lesson) []LessonResponse {
	resp := make([]LessonResponse, 0, len(lessons))
	for _, lsn := range lessons {
		resp = append(resp, NewLessonResponse(lsn))
	}
	return resp
}

type RecordResponse struct {
	attendance.Record
	StudentName string        `json:"student_name"`
	Label       string        `json:"label"`
	Category    core.Category `json:"category"`
}

// SessionResponse is the state of an attendance editing session.
type SessionResponse struct {
	Lesson     LessonResponse      `json:"lesson"`
	AcademicUE lesson.AcademicUE   `json:"academic_ue"`
	Records    []RecordResponse    `json:"attendances"`
	Missing    []string            `json:"missing"`
	Complete   bool                `json:"complete"`
	Dirty      bool                `json:"dirty"`
	Assignable []attendance.Status `json:"assignable"`
}

func NewSessionResponse(sess *attendance.Session, role user.Role) SessionResponse {
	c := sess.Context()
	names := make(map[string]string, len(c.Students))
	for _, s := range c.Students {
		names[s.ID] = s.FullName()
	}

	records := sess.Records()
	resp := SessionResponse{
		Lesson:     NewLessonResponse(c.Lesson),
		AcademicUE: c.AcademicUE,
		Records:    make([]RecordResponse, 0, len(records)),
		Missing:    append(make([]string, 0), sess.Missing()...),
		Complete:   sess.IsComplete(),
		Dirty:      sess.Dirty(),
		Assignable: attendance.AssignableStatuses(role),
	}
	for _, r := range records {
		resp.Records = append(resp.Records, RecordResponse{
			Record:      r,
			StudentName: names[r.StudentID],
			Label:       r.Status.Label(),
			Category:    r.Status.Category(),
		})
	}
	return resp
}

type SummaryRowResponse struct {
	attendance.SummaryRow
	Stats attendance.Stats `json:"stats"`
}

func NewSummaryResponse(rows []attendance.SummaryRow) []SummaryRowResponse {
	resp := make([]SummaryRowResponse, 0, len(rows))
	for _, row := range rows {
		resp = append(resp, SummaryRowResponse{SummaryRow: row, Stats: row.Stats()})
	}
	return resp
}
