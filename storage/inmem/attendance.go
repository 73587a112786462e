package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/kelasi/core"
	"github.com/trezcool/kelasi/core/attendance"
)

type attendanceRepository struct {
	db *DB
}

var _ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check

func NewAttendanceRepository(db *DB) attendance.Repository {
	return &attendanceRepository{db: db}
}

func (repo *attendanceRepository) GetLessonAttendanceContext(_ context.Context, lessonID string) (attendance.Context, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	if err := repo.db.enter("GetLessonAttendanceContext"); err != nil {
		return attendance.Context{}, err
	}

	lsn, ok := repo.db.lessons[lessonID]
	if !ok {
		return attendance.Context{}, errors.Wrapf(core.ErrNotFound, "lesson %s", lessonID)
	}
	c := attendance.Context{
		Lesson:     lsn,
		AcademicUE: repo.db.academicUEs[lsn.AcademicUEID],
		Students:   repo.db.studentsOf(lsn.AcademicUEID),
		Records:    make([]attendance.Record, 0),
	}
	for _, r := range repo.db.records {
		if r.LessonID == lessonID {
			c.Records = append(c.Records, r)
		}
	}
	sort.Slice(c.Records, func(i, j int) bool { return c.Records[i].StudentID < c.Records[j].StudentID })
	return c, nil
}

// UpsertAttendanceBatch is all or nothing: the batch is checked as a whole before anything is written.
func (repo *attendanceRepository) UpsertAttendanceBatch(_ context.Context, records []attendance.Record) ([]attendance.Record, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	if err := repo.db.enter("UpsertAttendanceBatch"); err != nil {
		return nil, err
	}

	for _, r := range records {
		if _, ok := repo.db.lessons[r.LessonID]; !ok {
			return nil, errors.Errorf("unknown lesson %q", r.LessonID)
		}
		if _, ok := repo.db.students[r.StudentID]; !ok {
			return nil, errors.Errorf("unknown student %q", r.StudentID)
		}
		if !r.Status.Valid() {
			return nil, errors.Errorf("invalid attendance status %q for student %s", r.Status, r.StudentID)
		}
		if r.ID != "" {
			if existing, ok := repo.db.records[r.ID]; ok &&
				(existing.LessonID != r.LessonID || existing.StudentID != r.StudentID) {
				return nil, errors.Errorf("record %s belongs to another lesson or student", r.ID)
			}
		}
	}

	saved := make([]attendance.Record, 0, len(records))
	for _, r := range records {
		rec := r
		if existing, ok := repo.db.findRecord(r.LessonID, r.StudentID); ok {
			rec.ID = existing.ID
		} else if rec.ID == "" {
			rec.ID = newID()
		}
		repo.db.records[rec.ID] = rec
		saved = append(saved, rec)
	}
	return saved, nil
}

func (repo *attendanceRepository) QueryAttendanceSummary(_ context.Context, academicUEID string) ([]attendance.SummaryRow, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	if err := repo.db.enter("QueryAttendanceSummary"); err != nil {
		return nil, err
	}

	if _, ok := repo.db.academicUEs[academicUEID]; !ok {
		return nil, errors.Wrapf(core.ErrNotFound, "academic UE %s", academicUEID)
	}
	lessons := repo.db.lessonsOf(academicUEID)
	students := repo.db.studentsOf(academicUEID)

	rows := make([]attendance.SummaryRow, 0, len(students))
	for _, s := range students {
		row := attendance.SummaryRow{
			Student:     s,
			Attendances: make([]attendance.LessonAttendance, 0, len(lessons)),
		}
		for _, lsn := range lessons {
			la := attendance.LessonAttendance{LessonID: lsn.ID, Date: lsn.Date}
			if rec, ok := repo.db.findRecord(lsn.ID, s.ID); ok {
				la.Status = rec.Status
			}
			row.Attendances = append(row.Attendances, la)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// findRecord looks a record up by its (lessonID, studentID) key. The caller must hold the lock.
func (db *DB) findRecord(lessonID, studentID string) (attendance.Record, bool) {
	for _, r := range db.records {
		if r.LessonID == lessonID && r.StudentID == studentID {
			return r, true
		}
	}
	return attendance.Record{}, false
}

// studentsOf returns the students enrolled in an AcademicUE sorted by name. The caller must hold the lock.
func (db *DB) studentsOf(academicUEID string) []attendance.Student {
	students := make([]attendance.Student, 0, len(db.enrolments[academicUEID]))
	for _, id := range db.enrolments[academicUEID] {
		if s, ok := db.students[id]; ok {
			students = append(students, s)
		}
	}
	sort.Slice(students, func(i, j int) bool {
		return strings.ToLower(students[i].FullName()) < strings.ToLower(students[j].FullName())
	})
	return students
}
