package attendance

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/trezcool/kelasi/core"
	"github.com/trezcool/kelasi/core/user"
)

var (
	// errors
	ErrValidationFailed   = errors.New("attendance is incomplete")
	ErrStatusNotAllowed   = errors.New("status not allowed for this role")
	ErrStudentNotEnrolled = errors.New("student is not enrolled in this lesson")

	missingStatusText = "attendance status is required"
)

// IsComplete reports whether every enrolled student has a record with a recorded status.
// The status does not need to be assignable by the current role.
func IsComplete(records []Record, enrolledStudentIDs []string) bool {
	return len(missingStudents(records, enrolledStudentIDs)) == 0
}

func missingStudents(records []Record, enrolledStudentIDs []string) []string {
	recorded := make(map[string]bool, len(records))
	for _, r := range records {
		if r.Status.Valid() {
			recorded[r.StudentID] = true
		}
	}
	var missing []string
	for _, id := range enrolledStudentIDs {
		if !recorded[id] {
			missing = append(missing, id)
		}
	}
	return missing
}

func incompleteError(missing []string) error {
	flds := make([]core.FieldError, 0, len(missing))
	for _, id := range missing {
		flds = append(flds, core.FieldError{Field: id, Error: missingStatusText})
	}
	return core.NewValidationError(ErrValidationFailed, flds...)
}

// Session is one attendance editing session of a lesson.
//
// It holds the context snapshot fetched when the session was opened, the confirmed records
// (last known server state) and the staged ones (local edits, not sent yet).
// A Session is not safe for concurrent use.
type Session struct {
	context   Context
	confirmed map[recordKey]Record
	staged    map[recordKey]Record
}

// NewSession starts a session from a context snapshot.
func NewSession(c Context) *Session {
	sess := &Session{context: c}
	sess.confirm(c.Records)
	return sess
}

func (sess *Session) confirm(records []Record) {
	sess.confirmed = make(map[recordKey]Record, len(records))
	for _, r := range records {
		sess.confirmed[r.key()] = r
	}
	sess.Discard()
}

// Discard drops every staged edit.
func (sess *Session) Discard() {
	sess.staged = make(map[recordKey]Record, len(sess.confirmed))
	for k, r := range sess.confirmed {
		sess.staged[k] = r
	}
}

func (sess *Session) Context() Context { return sess.context }

func (sess *Session) LessonID() string { return sess.context.Lesson.ID }

// Set stages status for (lessonID, studentID), creating the placeholder record first if needed.
// It never calls the backend.
func (sess *Session) Set(lessonID, studentID string, status Status) {
	k := recordKey{lessonID: lessonID, studentID: studentID}
	rec, ok := sess.staged[k]
	if !ok {
		rec = Record{LessonID: lessonID, StudentID: studentID, Status: StatusNone}
	}
	rec.Status = status
	sess.staged[k] = rec
}

// Assign stages status for an enrolled student of the session lesson, if role may assign it.
func (sess *Session) Assign(role user.Role, studentID string, status Status) error {
	if !sess.isEnrolled(studentID) {
		return errors.Wrap(ErrStudentNotEnrolled, studentID)
	}
	if !CanAssign(role, status) {
		return core.NewValidationError(
			errors.Wrapf(ErrStatusNotAllowed, "%s (%s)", status, role),
			core.FieldError{Field: "status", Error: ErrStatusNotAllowed.Error()},
		)
	}
	sess.Set(sess.LessonID(), studentID, status)
	return nil
}

func (sess *Session) isEnrolled(studentID string) bool {
	for _, s := range sess.context.Students {
		if s.ID == studentID {
			return true
		}
	}
	return false
}

// Record returns the staged record of a student of the session lesson, a placeholder if none exists.
func (sess *Session) Record(studentID string) Record {
	k := recordKey{lessonID: sess.LessonID(), studentID: studentID}
	if rec, ok := sess.staged[k]; ok {
		return rec
	}
	return Record{LessonID: sess.LessonID(), StudentID: studentID}
}

// Records returns the staged records: enrolled students first (in enrolment order, placeholders included),
// then any other staged record.
func (sess *Session) Records() []Record {
	return sess.ordered(sess.staged, true)
}

// LessonRecords returns the staged records of the session lesson in enrolment order, placeholders included.
// Records staged for other lessons through Set are left out.
func (sess *Session) LessonRecords() []Record {
	records := sess.Records()
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if r.LessonID == sess.LessonID() {
			out = append(out, r)
		}
	}
	return out
}

// Confirmed returns the records as last confirmed by the backend.
func (sess *Session) Confirmed() []Record {
	return sess.ordered(sess.confirmed, false)
}

func (sess *Session) ordered(records map[recordKey]Record, withPlaceholders bool) []Record {
	out := make([]Record, 0, len(records)+len(sess.context.Students))
	seen := make(map[recordKey]bool, len(records))
	for _, s := range sess.context.Students {
		k := recordKey{lessonID: sess.LessonID(), studentID: s.ID}
		seen[k] = true
		if rec, ok := records[k]; ok {
			out = append(out, rec)
		} else if withPlaceholders {
			out = append(out, Record{LessonID: k.lessonID, StudentID: k.studentID})
		}
	}

	extra := make([]Record, 0)
	for k, rec := range records {
		if !seen[k] {
			extra = append(extra, rec)
		}
	}
	sort.Slice(extra, func(i, j int) bool {
		if extra[i].LessonID != extra[j].LessonID {
			return extra[i].LessonID < extra[j].LessonID
		}
		return extra[i].StudentID < extra[j].StudentID
	})
	return append(out, extra...)
}

// Missing returns the enrolled students without a recorded status.
func (sess *Session) Missing() []string {
	return missingStudents(sess.lessonRecords(), sess.context.StudentIDs())
}

// IsComplete gates the submission: every enrolled student has a recorded status.
func (sess *Session) IsComplete() bool {
	return len(sess.Missing()) == 0
}

func (sess *Session) lessonRecords() []Record {
	records := make([]Record, 0, len(sess.staged))
	for k, r := range sess.staged {
		if k.lessonID == sess.LessonID() {
			records = append(records, r)
		}
	}
	return records
}

// Dirty reports whether some staged record differs from the confirmed state.
func (sess *Session) Dirty() bool {
	for k, r := range sess.staged {
		if c, ok := sess.confirmed[k]; !ok || c.Status != r.Status {
			if ok || r.Status != StatusNone {
				return true
			}
		}
	}
	return false
}
