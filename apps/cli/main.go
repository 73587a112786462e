package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dgrijalva/jwt-go"
	"github.com/pkg/errors"
	"golang.org/x/term"

	"github.com/trezcool/kelasi/core"
	"github.com/trezcool/kelasi/core/attendance"
	"github.com/trezcool/kelasi/core/lesson"
	"github.com/trezcool/kelasi/core/user"
	logsvc "github.com/trezcool/kelasi/services/logger"
	schedulesvc "github.com/trezcool/kelasi/services/schedule"
	inmemdb "github.com/trezcool/kelasi/storage/inmem"
)

var isTerminalFunc = term.IsTerminal // mockable

func main() {
	conf := core.NewConfig()
	logger := logsvc.New(os.Stderr, "CLI : ", conf)

	lessonRepo, attendanceRepo, err := newRepositories(conf, logger)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up repositories: %v", err), err)
	}

	role, err := roleFromToken(conf.Schedule.Token)
	if err != nil {
		logger.Warn("could not read the role from the configured token", err)
	}
	if role == "" && conf.Schedule.Demo {
		role = user.RoleProfessor
	}

	cli := &commandLine{
		lessonSvc:     lesson.NewService(lessonRepo),
		attendanceSvc: attendance.NewService(attendanceRepo),
		roles:         user.StaticRole(role),
		demo:          conf.Schedule.Demo,
		format:        formatter{colors: isTerminalFunc(int(os.Stdout.Fd()))},
	}
	if isTerminalFunc(int(os.Stdin.Fd())) {
		cli.prompt = promptLine(os.Stdin, os.Stdout)
	}

	if err = cli.rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, cli.format.explain(err))
		os.Exit(1)
	}
}

// newRepositories talks to the Course/Schedule Service, or to a freshly seeded in-memory backend in demo mode.
func newRepositories(conf *core.Config, logger core.Logger) (lesson.Repository, attendance.Repository, error) {
	if conf.Schedule.Demo {
		db, err := inmemdb.Open()
		if err != nil {
			return nil, nil, errors.Wrap(err, "opening in-memory backend")
		}
		inmemdb.Seed(db)
		return inmemdb.NewLessonRepository(db), inmemdb.NewAttendanceRepository(db), nil
	}
	client := schedulesvc.NewClient(conf, logger)
	return client, client, nil
}

type tokenClaims struct {
	jwt.StandardClaims
	Roles []string `json:"roles"`
}

// roleFromToken reads the primary role carried by token without verifying it:
// the Course/Schedule Service verifies the token on every call.
func roleFromToken(token string) (user.Role, error) {
	if token == "" {
		return "", nil
	}
	var claims tokenClaims
	if _, _, err := new(jwt.Parser).ParseUnverified(token, &claims); err != nil {
		return "", errors.Wrap(err, "parsing token")
	}
	roles := make([]user.Role, 0, len(claims.Roles))
	for _, r := range claims.Roles {
		roles = append(roles, user.ParseRole(r))
	}
	return user.PrimaryRole(roles), nil
}

func promptLine(in io.Reader, out io.Writer) func(question string) (string, error) {
	reader := bufio.NewReader(in)
	return func(question string) (string, error) {
		fmt.Fprint(out, question)
		line, err := reader.ReadString('\n')
		if err != nil && err != io.EOF {
			return "", err
		}
		return strings.TrimSpace(line), nil
	}
}
