package inmemdb

import (
	"sync"

	"github.com/google/uuid"

	"github.com/trezcool/kelasi/core/attendance"
	"github.com/trezcool/kelasi/core/lesson"
)

// DB is an in-memory Course/Schedule Service, used by tests and the demo mode.
type DB struct {
	mutex sync.RWMutex

	academicUEs map[string]lesson.AcademicUE
	lessons     map[string]lesson.Lesson
	students    map[string]attendance.Student
	enrolments  map[string][]string // {academicUEID: [studentID]}
	records     map[string]attendance.Record

	calls    map[string]int
	failures []error
}

func Open() (*DB, error) {
	db := &DB{
		academicUEs: make(map[string]lesson.AcademicUE),
		lessons:     make(map[string]lesson.Lesson),
		students:    make(map[string]attendance.Student),
		enrolments:  make(map[string][]string),
		records:     make(map[string]attendance.Record),
		calls:       make(map[string]int),
	}
	return db, nil
}

func newID() string {
	return uuid.New().String()
}

// FailNext makes the next repository call return err, without side effect.
// Calls queue up: FailNext(a); FailNext(b) fails the next two calls.
func (db *DB) FailNext(err error) {
	db.mutex.Lock()
	defer db.mutex.Unlock()
	db.failures = append(db.failures, err)
}

// Calls returns how many times the repository operation `op` was called (eg: "UpsertAttendanceBatch").
func (db *DB) Calls(op string) int {
	db.mutex.RLock()
	defer db.mutex.RUnlock()
	return db.calls[op]
}

// enter records a call to op and pops the next injected failure. The caller must hold the lock.
func (db *DB) enter(op string) error {
	db.calls[op]++
	if len(db.failures) == 0 {
		return nil
	}
	err := db.failures[0]
	db.failures = db.failures[1:]
	return err
}

func (db *DB) AddAcademicUE(ue lesson.AcademicUE) lesson.AcademicUE {
	db.mutex.Lock()
	defer db.mutex.Unlock()
	if ue.ID == "" {
		ue.ID = newID()
	}
	db.academicUEs[ue.ID] = ue
	return ue
}

func (db *DB) AddLesson(lsn lesson.Lesson) lesson.Lesson {
	db.mutex.Lock()
	defer db.mutex.Unlock()
	if lsn.ID == "" {
		lsn.ID = newID()
	}
	if lsn.Status == "" {
		lsn.Status = lesson.StatusProgrammed
	}
	db.lessons[lsn.ID] = lsn
	return lsn
}

// AddStudent saves a student and enrols them in the given AcademicUEs.
func (db *DB) AddStudent(s attendance.Student, academicUEIDs ...string) attendance.Student {
	db.mutex.Lock()
	defer db.mutex.Unlock()
	if s.ID == "" {
		s.ID = newID()
	}
	db.students[s.ID] = s
	for _, ueID := range academicUEIDs {
		db.enrolments[ueID] = append(db.enrolments[ueID], s.ID)
	}
	return s
}

// AllRecords returns every stored attendance record.
func (db *DB) AllRecords() []attendance.Record {
	db.mutex.RLock()
	defer db.mutex.RUnlock()
	records := make([]attendance.Record, 0, len(db.records))
	for _, r := range db.records {
		records = append(records, r)
	}
	return records
}
