package inmemdb

import (
	"strconv"
	"time"

	"github.com/trezcool/kelasi/core"
	"github.com/trezcool/kelasi/core/attendance"
	"github.com/trezcool/kelasi/core/lesson"
)

// Seed loads a small demo data set: one AcademicUE (2024-01-01..2024-06-30) with a weekly lesson and 3 students.
// Ids are stable so the demo can be driven from the command line.
func Seed(db *DB) {
	ue := db.AddAcademicUE(lesson.AcademicUE{
		ID:          "ue-algo-2024",
		UEID:        "ue-algo",
		Name:        "Algorithmique",
		Year:        2024,
		ProfessorID: "prof-1",
		StartDate:   core.NewDate(2024, time.January, 1),
		EndDate:     core.NewDate(2024, time.June, 30),
	})

	day := core.NewDate(2024, time.January, 8).Time()
	for i := 1; i <= 8; i++ {
		db.AddLesson(lesson.Lesson{
			ID:           "lesson-" + strconv.Itoa(i),
			AcademicUEID: ue.ID,
			Date:         core.DateOf(day),
			Status:       lesson.StatusProgrammed,
		})
		day = day.AddDate(0, 0, 7)
	}

	db.AddStudent(attendance.Student{ID: "student-1", FirstName: "Aline", LastName: "Kabongo", Email: "aline@kelasi.cd"}, ue.ID)
	db.AddStudent(attendance.Student{ID: "student-2", FirstName: "Benoît", LastName: "Mutombo", Email: "benoit@kelasi.cd"}, ue.ID)
	db.AddStudent(attendance.Student{ID: "student-3", FirstName: "Chantal", LastName: "Ilunga", Email: "chantal@kelasi.cd"}, ue.ID)
}
