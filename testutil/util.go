package testutil

import (
	"io"
	"testing"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/kelasi/core"
	"github.com/trezcool/kelasi/core/attendance"
	"github.com/trezcool/kelasi/core/lesson"
	"github.com/trezcool/kelasi/core/user"
	logsvc "github.com/trezcool/kelasi/services/logger"
	inmemdb "github.com/trezcool/kelasi/storage/inmem"
)

// NewConfig returns a TEST configuration, independent of the environment.
func NewConfig() *core.Config {
	conf := new(core.Config)
	conf.AppName = "Kelasi"
	conf.Build = "test"
	conf.Env = "TEST"
	conf.TestMode = true
	conf.SecretKey = "test-secret-key"
	conf.Server.DisableReqLogs = true
	conf.Server.JWTExpirationDelta = time.Hour
	conf.Schedule.Demo = true
	conf.Schedule.Timeout = 5 * time.Second
	conf.Session.TTL = time.Hour
	conf.Session.MaxEntries = 100
	return conf
}

func NewLogger(conf *core.Config) core.Logger {
	return logsvc.New(io.Discard, "TEST : ", conf)
}

// NewValidator returns a validator with every custom tag registered.
func NewValidator() (*validator.Validate, ut.Translator) {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	lesson.InitValidators(validate, translator)
	attendance.InitValidators(validate, translator)
	return validate, translator
}

// Backend is an in-memory Course/Schedule Service loaded with one AcademicUE
// (2024-01-01..2024-06-30), 3 weekly lessons and 3 enrolled students.
type Backend struct {
	DB       *inmemdb.DB
	UE       lesson.AcademicUE
	Lessons  []lesson.Lesson
	Students []attendance.Student
}

func NewBackend(t *testing.T) Backend {
	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("inmemdb.Open() failed: %v", err)
	}

	b := Backend{DB: db}
	b.UE = db.AddAcademicUE(lesson.AcademicUE{
		ID:          "ue-1",
		UEID:        "algo",
		Name:        "Algorithmique",
		Year:        2024,
		ProfessorID: "prof-1",
		StartDate:   core.NewDate(2024, time.January, 1),
		EndDate:     core.NewDate(2024, time.June, 30),
	})
	for i, id := range []string{"lesson-1", "lesson-2", "lesson-3"} {
		b.Lessons = append(b.Lessons, db.AddLesson(lesson.Lesson{
			ID:           id,
			AcademicUEID: b.UE.ID,
			Date:         core.NewDate(2024, time.January, 8+7*i),
		}))
	}
	b.Students = []attendance.Student{
		db.AddStudent(attendance.Student{ID: "s1", FirstName: "Aline", LastName: "Kabongo"}, b.UE.ID),
		db.AddStudent(attendance.Student{ID: "s2", FirstName: "Benoît", LastName: "Mutombo"}, b.UE.ID),
		db.AddStudent(attendance.Student{ID: "s3", FirstName: "Chantal", LastName: "Ilunga"}, b.UE.ID),
	}
	return b
}

func (b Backend) LessonRepository() lesson.Repository {
	return inmemdb.NewLessonRepository(b.DB)
}

func (b Backend) AttendanceRepository() attendance.Repository {
	return inmemdb.NewAttendanceRepository(b.DB)
}

func CreateUser(id string, roles ...user.Role) user.User {
	return user.User{
		ID:    id,
		Name:  "User " + id,
		Email: id + "@test.cd",
		Roles: roles,
	}
}
