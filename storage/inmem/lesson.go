package inmemdb

import (
	"context"
	"sort"

	"github.com/pkg/errors"

	"github.com/trezcool/kelasi/core"
	"github.com/trezcool/kelasi/core/lesson"
)

type lessonRepository struct {
	db *DB
}

var _ lesson.Repository = (*lessonRepository)(nil) // interface compliance check

func NewLessonRepository(db *DB) lesson.Repository {
	return &lessonRepository{db: db}
}

func (repo *lessonRepository) GetLesson(_ context.Context, id string) (lesson.Lesson, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	if err := repo.db.enter("GetLesson"); err != nil {
		return lesson.Lesson{}, err
	}

	if lsn, ok := repo.db.lessons[id]; ok {
		return lsn, nil
	}
	return lesson.Lesson{}, errors.Wrapf(core.ErrNotFound, "lesson %s", id)
}

func (repo *lessonRepository) GetAcademicUE(_ context.Context, id string) (lesson.AcademicUE, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	if err := repo.db.enter("GetAcademicUE"); err != nil {
		return lesson.AcademicUE{}, err
	}

	if ue, ok := repo.db.academicUEs[id]; ok {
		return ue, nil
	}
	return lesson.AcademicUE{}, errors.Wrapf(core.ErrNotFound, "academic UE %s", id)
}

func (repo *lessonRepository) QueryLessonsByAcademicUE(_ context.Context, academicUEID string) ([]lesson.Lesson, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	if err := repo.db.enter("QueryLessonsByAcademicUE"); err != nil {
		return nil, err
	}

	if _, ok := repo.db.academicUEs[academicUEID]; !ok {
		return nil, errors.Wrapf(core.ErrNotFound, "academic UE %s", academicUEID)
	}
	return repo.db.lessonsOf(academicUEID), nil
}

func (repo *lessonRepository) UpdateLessonStatusAndDate(_ context.Context, id string, status lesson.Status, date *core.Date) (lesson.Lesson, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	if err := repo.db.enter("UpdateLessonStatusAndDate"); err != nil {
		return lesson.Lesson{}, err
	}

	lsn, ok := repo.db.lessons[id]
	if !ok {
		return lesson.Lesson{}, errors.Wrapf(core.ErrNotFound, "lesson %s", id)
	}
	if !status.Valid() {
		return lesson.Lesson{}, errors.Errorf("invalid lesson status %q", status)
	}
	lsn.Status = status
	if date != nil {
		lsn.Date = *date
	}
	repo.db.lessons[id] = lsn
	return lsn, nil
}

// lessonsOf returns the lessons of an AcademicUE sorted by date. The caller must hold the lock.
func (db *DB) lessonsOf(academicUEID string) []lesson.Lesson {
	lessons := make([]lesson.Lesson, 0)
	for _, lsn := range db.lessons {
		if lsn.AcademicUEID == academicUEID {
			lessons = append(lessons, lsn)
		}
	}
	sort.Slice(lessons, func(i, j int) bool {
		if !lessons[i].Date.Equal(lessons[j].Date) {
			return lessons[i].Date.Before(lessons[j].Date)
		}
		return lessons[i].ID < lessons[j].ID
	})
	return lessons
}
