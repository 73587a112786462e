package dig_container

import (
	"log"
	"os"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	echoapi "github.com/trezcool/kelasi/apps/api/echo"
	"github.com/trezcool/kelasi/core"
	"github.com/trezcool/kelasi/core/attendance"
	"github.com/trezcool/kelasi/core/lesson"
	logsvc "github.com/trezcool/kelasi/services/logger"
	schedulesvc "github.com/trezcool/kelasi/services/schedule"
	inmemdb "github.com/trezcool/kelasi/storage/inmem"
)

type ScheduleLoggerParam struct {
	dig.In
	Logger core.Logger `name:"scheduleLogger"`
}

type serverParams struct {
	dig.In
	Conf          *core.Config
	Logger        core.Logger
	LessonSvc     *lesson.Service
	AttendanceSvc *attendance.Service
	Sessions      *echoapi.SessionStore
	Validate      *validator.Validate
	Translator    ut.Translator
}

func newLogger(conf *core.Config) core.Logger {
	return logsvc.New(os.Stdout, "API : ", conf)
}

func newScheduleLogger(conf *core.Config) core.Logger {
	return logsvc.New(os.Stdout, "SCHEDULE : ", conf)
}

// newRepositories serves the Course/Schedule Service over REST, or from a seeded in-memory backend in demo mode.
func newRepositories(conf *core.Config, loggerParam ScheduleLoggerParam) (lesson.Repository, attendance.Repository, error) {
	if conf.Schedule.Demo {
		db, err := inmemdb.Open()
		if err != nil {
			return nil, nil, errors.Wrap(err, "opening in-memory backend")
		}
		inmemdb.Seed(db)
		loggerParam.Logger.Info("serving demo data from the in-memory backend")
		return inmemdb.NewLessonRepository(db), inmemdb.NewAttendanceRepository(db), nil
	}

	client := schedulesvc.NewClient(conf, loggerParam.Logger)
	return client, client, nil
}

func newServer(p serverParams) *echoapi.Server {
	return echoapi.NewServer(echoapi.ServerDeps{
		Conf:          p.Conf,
		Logger:        p.Logger,
		LessonSvc:     p.LessonSvc,
		AttendanceSvc: p.AttendanceSvc,
		Sessions:      p.Sessions,
		Validate:      p.Validate,
		Translator:    p.Translator,
	})
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newScheduleLogger, dig.Name("scheduleLogger")))
	must(c.Provide(newRepositories))
	must(c.Provide(lesson.NewService))
	must(c.Provide(attendance.NewService))
	must(c.Provide(echoapi.NewSessionStore))
	must(c.Provide(validator.New))
	must(c.Provide(core.NewTranslator))
	must(c.Provide(newServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
