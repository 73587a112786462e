package attendance

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/kelasi/core"
)

type (
	// Repository is the attendance side of the Course/Schedule Service.
	Repository interface {
		GetLessonAttendanceContext(ctx context.Context, lessonID string) (Context, error)
		// UpsertAttendanceBatch updates records having an ID and creates the others.
		// The backend is idempotent by (LessonID, StudentID): a resubmitted batch never duplicates records.
		UpsertAttendanceBatch(ctx context.Context, records []Record) ([]Record, error)
		QueryAttendanceSummary(ctx context.Context, academicUEID string) ([]SummaryRow, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func remoteErr(op string, err error) error {
	if errors.Cause(err) == core.ErrNotFound {
		return errors.Wrap(err, op)
	}
	return core.AsRemote(op, err)
}

// Open fetches the attendance context of a lesson and starts an editing session on it.
func (svc *Service) Open(ctx context.Context, lessonID string) (*Session, error) {
	c, err := svc.repo.GetLessonAttendanceContext(ctx, lessonID)
	if err != nil {
		return nil, remoteErr("fetching lesson attendance context", err)
	}
	return NewSession(c), nil
}

// SubmitRecords sends the batch of one lesson once every enrolled student has a recorded status.
// Records without a recorded status are not sent.
// An incomplete batch fails with ErrValidationFailed without calling the backend.
func (svc *Service) SubmitRecords(ctx context.Context, records []Record, enrolledStudentIDs []string) ([]Record, error) {
	if missing := missingStudents(records, enrolledStudentIDs); len(missing) > 0 {
		return nil, incompleteError(missing)
	}

	batch := make([]Record, 0, len(records))
	for _, r := range records {
		if r.Status.Valid() {
			batch = append(batch, r)
		}
	}
	saved, err := svc.repo.UpsertAttendanceBatch(ctx, batch)
	if err != nil {
		return nil, remoteErr("upserting attendance batch", err)
	}
	return saved, nil
}

// Submit sends the staged records of the session lesson.
// On success the backend answer becomes the confirmed state of the session;
// on failure the session keeps its staged edits so the same submission can be retried.
func (svc *Service) Submit(ctx context.Context, sess *Session) error {
	saved, err := svc.SubmitRecords(ctx, sess.LessonRecords(), sess.Context().StudentIDs())
	if err != nil {
		return err
	}
	sess.confirm(saved)
	return nil
}

// Summary returns the attendance of every student of an AcademicUE, sorted by orderings (student name by default).
func (svc *Service) Summary(ctx context.Context, academicUEID string, orderings []core.Ordering) ([]SummaryRow, error) {
	rows, err := svc.repo.QueryAttendanceSummary(ctx, academicUEID)
	if err != nil {
		return nil, remoteErr("fetching attendance summary", err)
	}
	if err = SortSummary(rows, orderings); err != nil {
		return nil, err
	}
	return rows, nil
}
