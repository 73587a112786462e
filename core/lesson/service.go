package lesson

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/kelasi/core"
)

var (
	// errors
	ErrDateRequired        = errors.New("a date is required to report the lesson")
	ErrInvalidDateRange    = errors.New("date is outside of the academic UE period")
	ErrDuplicateLessonDate = errors.New("another lesson of the academic UE is already scheduled on this date")
)

type (
	// Repository is the lesson side of the Course/Schedule Service.
	Repository interface {
		GetLesson(ctx context.Context, id string) (Lesson, error)
		GetAcademicUE(ctx context.Context, id string) (AcademicUE, error)
		QueryLessonsByAcademicUE(ctx context.Context, academicUEID string) ([]Lesson, error)
		// UpdateLessonStatusAndDate applies both fields in one call; a nil date leaves the date unchanged.
		UpdateLessonStatusAndDate(ctx context.Context, id string, status Status, date *core.Date) (Lesson, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// remoteErr keeps ErrNotFound visible to callers and reports anything else as a RemoteError.
func remoteErr(op string, err error) error {
	if errors.Cause(err) == core.ErrNotFound {
		return errors.Wrap(err, op)
	}
	return core.AsRemote(op, err)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Lesson, error) {
	lsn, err := svc.repo.GetLesson(ctx, id)
	if err != nil {
		return Lesson{}, remoteErr("fetching lesson", err)
	}
	return lsn, nil
}

func (svc *Service) GetAcademicUE(ctx context.Context, id string) (AcademicUE, error) {
	ue, err := svc.repo.GetAcademicUE(ctx, id)
	if err != nil {
		return AcademicUE{}, remoteErr("fetching academic UE", err)
	}
	return ue, nil
}

func (svc *Service) QueryByAcademicUE(ctx context.Context, academicUEID string) ([]Lesson, error) {
	lessons, err := svc.repo.QueryLessonsByAcademicUE(ctx, academicUEID)
	if err != nil {
		return nil, remoteErr("fetching academic UE lessons", err)
	}
	return lessons, nil
}

// CheckReschedule verifies that lsn may be moved to date:
// the date must be within its AcademicUE window and not be taken by another lesson of the same AcademicUE.
func (svc *Service) CheckReschedule(ctx context.Context, lsn Lesson, date core.Date) error {
	ue, err := svc.GetAcademicUE(ctx, lsn.AcademicUEID)
	if err != nil {
		return err
	}
	if !ue.Contains(date) {
		return errors.Wrapf(ErrInvalidDateRange, "%s not in [%s, %s]", date, ue.StartDate, ue.EndDate)
	}

	lessons, err := svc.QueryByAcademicUE(ctx, lsn.AcademicUEID)
	if err != nil {
		return err
	}
	for _, other := range lessons {
		if other.ID != lsn.ID && other.Date.Equal(date) {
			return errors.Wrapf(ErrDuplicateLessonDate, "lesson %s on %s", other.ID, date)
		}
	}
	return nil
}

// RequestStatusChange moves lsn to status and returns the lesson as confirmed by the backend.
//
// REPORTED is a two-phase transition: without a date ErrDateRequired is returned so the caller can prompt for one.
// Every other status is reachable from any status; a date given with them is ignored.
// lsn itself is never modified, on failure nothing has been committed.
func (svc *Service) RequestStatusChange(ctx context.Context, lsn Lesson, status Status, date *core.Date) (Lesson, error) {
	if !status.Valid() {
		err := errors.Errorf("unknown lesson status %q", status)
		return Lesson{}, core.NewValidationError(err, core.FieldError{Field: "status", Error: err.Error()})
	}

	if status == StatusReported {
		if date == nil || date.IsZero() {
			return Lesson{}, ErrDateRequired
		}
		if err := svc.CheckReschedule(ctx, lsn, *date); err != nil {
			return Lesson{}, err
		}
	} else {
		date = nil
	}

	updated, err := svc.repo.UpdateLessonStatusAndDate(ctx, lsn.ID, status, date)
	if err != nil {
		return Lesson{}, remoteErr("updating lesson status", err)
	}
	return updated, nil
}

// RequestStatusChangeByID fetches the lesson first, see RequestStatusChange.
func (svc *Service) RequestStatusChangeByID(ctx context.Context, id string, status Status, date *core.Date) (Lesson, error) {
	lsn, err := svc.GetByID(ctx, id)
	if err != nil {
		return Lesson{}, err
	}
	return svc.RequestStatusChange(ctx, lsn, status, date)
}
