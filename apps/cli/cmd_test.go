package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/dgrijalva/jwt-go"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/kelasi/core"
	"github.com/trezcool/kelasi/core/attendance"
	"github.com/trezcool/kelasi/core/lesson"
	"github.com/trezcool/kelasi/core/user"
	"github.com/trezcool/kelasi/testutil"
)

func setup(t *testing.T, role user.Role) (*commandLine, testutil.Backend) {
	backend := testutil.NewBackend(t)
	return &commandLine{
		lessonSvc:     lesson.NewService(backend.LessonRepository()),
		attendanceSvc: attendance.NewService(backend.AttendanceRepository()),
		roles:         user.StaticRole(role),
		demo:          true,
	}, backend
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	wantOut    []string
}

// execute runs the command tree and captures stdout.
func execute(cli *commandLine, args ...string) (string, error) {
	root := cli.rootCmd()
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func runCLITests(t *testing.T, cli *commandLine, tests []cliTest) {
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(cli, tt.args...)
			switch {
			case tt.wantErr != nil:
				assert.True(t, errors.Is(err, tt.wantErr), "err = %v; wantErr %v", err, tt.wantErr)
			case tt.wantErrStr != "":
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErrStr)
			default:
				require.NoError(t, err)
			}
			for _, want := range tt.wantOut {
				assert.Contains(t, out, want)
			}
		})
	}
}

// lineOf returns the first output line starting with prefix.
func lineOf(out, prefix string) string {
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, prefix) {
			return line
		}
	}
	return ""
}

func Test_commandLine_statuses(t *testing.T) {
	cli, _ := setup(t, user.RoleProfessor)

	out, err := execute(cli, "statuses")
	require.NoError(t, err)
	assert.Contains(t, out, "Lesson statuses")
	assert.Contains(t, lineOf(out, "REPORTED"), "Reporté")
	assert.Contains(t, lineOf(out, "P "), "yes")
	assert.Contains(t, lineOf(out, "CM "), "no")
	assert.Contains(t, lineOf(out, "ABANDON "), "no")

	out, err = execute(cli, "--role", "educator", "statuses")
	require.NoError(t, err)
	assert.Contains(t, lineOf(out, "CM "), "yes")
}

func Test_commandLine_role(t *testing.T) {
	cli, _ := setup(t, user.RoleProfessor)
	cli.demo = false

	runCLITests(t, cli, []cliTest{
		{name: "--role outside demo mode", args: []string{"--role", "ADMINISTRATOR", "statuses"}, wantErr: errRoleFlag},
	})

	cli.demo = true
	runCLITests(t, cli, []cliTest{
		{name: "unknown role", args: []string{"--role", "janitor", "statuses"}, wantErrStr: `unknown role "janitor"`},
	})
}

func Test_commandLine_lessonStatus(t *testing.T) {
	cli, backend := setup(t, user.RoleProfessor)
	lessons := backend.Lessons

	runCLITests(t, cli, []cliTest{
		{name: "show", args: []string{"lesson", "show", lessons[0].ID}, wantOut: []string{"lesson-1", "2024-01-08", "Programmé"}},
		{name: "show (unknown)", args: []string{"lesson", "show", "nope"}, wantErr: core.ErrNotFound},
		{name: "no args", args: []string{"lesson", "status", lessons[0].ID}, wantErrStr: "accepts 2 arg(s)"},
		{name: "unknown status", args: []string{"lesson", "status", lessons[0].ID, "DONE"}, wantErrStr: `unknown lesson status "DONE"`},
		{name: "malformed date", args: []string{"lesson", "status", lessons[0].ID, "REPORTED", "--date", "tomorrow"}, wantErrStr: `parsing date "tomorrow"`},
		{name: "report without date", args: []string{"lesson", "status", lessons[0].ID, "REPORTED"}, wantErr: lesson.ErrDateRequired},
		{
			name: "report on a taken date", args: []string{"lesson", "status", lessons[0].ID, "REPORTED", "--date", lessons[1].Date.String()},
			wantErr: lesson.ErrDuplicateLessonDate,
		},
		{
			name: "report out of range", args: []string{"lesson", "status", lessons[0].ID, "REPORTED", "--date", "2023-12-31"},
			wantErr: lesson.ErrInvalidDateRange,
		},
		{name: "complete", args: []string{"lesson", "status", lessons[1].ID, "terminé"}, wantOut: []string{"Terminé"}},
	})

	t.Run("staff only", func(t *testing.T) {
		cli, _ := setup(t, user.RoleStudent)
		_, err := execute(cli, "lesson", "status", lessons[0].ID, "COMPLETED")
		assert.Equal(t, errNotStaff, err)
	})

	t.Run("report prompts for the date", func(t *testing.T) {
		var asked string
		cli.prompt = func(question string) (string, error) {
			asked = question
			return "2024-02-26", nil
		}
		defer func() { cli.prompt = nil }()

		out, err := execute(cli, "lesson", "status", lessons[0].ID, "REPORTED")
		require.NoError(t, err)
		assert.Equal(t, "New date (YYYY-MM-DD): ", asked)
		assert.Contains(t, out, "Reporté")

		lsn, err := cli.lessonSvc.GetByID(context.Background(), lessons[0].ID)
		require.NoError(t, err)
		assert.Equal(t, lesson.StatusReported, lsn.Status)
		assert.Equal(t, core.MustParseDate("2024-02-26"), lsn.Date)
	})

	t.Run("empty answer", func(t *testing.T) {
		cli.prompt = func(string) (string, error) { return "", nil }
		defer func() { cli.prompt = nil }()

		_, err := execute(cli, "lesson", "status", lessons[2].ID, "REPORTED")
		assert.Equal(t, lesson.ErrDateRequired, errors.Cause(err))
	})
}

func Test_commandLine_attendance(t *testing.T) {
	cli, backend := setup(t, user.RoleProfessor)
	lsn := backend.Lessons[0].ID

	runCLITests(t, cli, []cliTest{
		{name: "show", args: []string{"attendance", lsn}, wantOut: []string{"Ilunga Chantal", "Non renseigné", "missing: s3, s1, s2", "assignable: P M A"}},
		{name: "bad --set", args: []string{"attendance", lsn, "--set", "s1"}, wantErr: errBadSetFlag},
		{name: "status not allowed", args: []string{"attendance", lsn, "--set", "s1=CM"}, wantErr: attendance.ErrStatusNotAllowed},
		{name: "not enrolled", args: []string{"attendance", lsn, "--set", "s9=P"}, wantErr: attendance.ErrStudentNotEnrolled},
		{name: "incomplete", args: []string{"attendance", lsn, "--set", "s1=P", "--submit"}, wantErr: attendance.ErrValidationFailed},
	})
	assert.Equal(t, 0, backend.DB.Calls("UpsertAttendanceBatch"))
	assert.Empty(t, backend.DB.AllRecords(), "staged edits are never sent without --submit")

	runCLITests(t, cli, []cliTest{
		{
			name: "submit",
			args: []string{"attendance", lsn, "--set", "s1=P", "--set", "s2=Absence non justifiée", "--set", "s3=m", "--submit"},
			wantOut: []string{"Attendance submitted.", "complete"},
		},
	})
	assert.Len(t, backend.DB.AllRecords(), 3)

	out, err := execute(cli, "attendance", lsn)
	require.NoError(t, err)
	assert.Contains(t, lineOf(out, "s2 "), "Absence non justifiée")
	assert.Contains(t, lineOf(out, "s3 "), "Distanciel")
}

func Test_commandLine_summary(t *testing.T) {
	cli, backend := setup(t, user.RoleEducator)
	lessons := backend.Lessons
	_, err := backend.AttendanceRepository().UpsertAttendanceBatch(context.Background(), []attendance.Record{
		{LessonID: lessons[0].ID, StudentID: "s1", Status: attendance.StatusAbsent},
		{LessonID: lessons[0].ID, StudentID: "s2", Status: attendance.StatusPresent},
		{LessonID: lessons[0].ID, StudentID: "s3", Status: attendance.StatusMedical},
	})
	require.NoError(t, err)

	out, err := execute(cli, "summary", backend.UE.ID, "--ordering", "-absences,student")
	require.NoError(t, err)
	assert.Contains(t, out, "01-08")
	kabongo, ilunga, mutombo := strings.Index(out, "Kabongo"), strings.Index(out, "Ilunga"), strings.Index(out, "Mutombo")
	assert.True(t, kabongo < ilunga && ilunga < mutombo, out)
	assert.Contains(t, lineOf(out, "Mutombo"), "100%")

	runCLITests(t, cli, []cliTest{
		{name: "unknown ordering", args: []string{"summary", backend.UE.ID, "--ordering", "age"}, wantErrStr: `cannot order by "age"`},
		{name: "unknown academic UE", args: []string{"summary", "nope"}, wantErr: core.ErrNotFound},
	})
}

func Test_roleFromToken(t *testing.T) {
	sign := func(roles ...string) string {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{Roles: roles}).SignedString([]byte("whatever"))
		require.NoError(t, err)
		return token
	}

	tests := []struct {
		name    string
		token   string
		want    user.Role
		wantErr bool
	}{
		{name: "no token"},
		{name: "single role", token: sign("professor"), want: user.RoleProfessor},
		{name: "highest role wins", token: sign("STUDENT", "EDUCATOR", "PROFESSOR"), want: user.RoleEducator},
		{name: "unknown roles", token: sign("JANITOR"), want: ""},
		{name: "garbage", token: "not-a-jwt", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := roleFromToken(tt.token)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func Test_promptLine(t *testing.T) {
	out := new(bytes.Buffer)
	prompt := promptLine(strings.NewReader(" 2024-03-04 \n"), out)

	answer, err := prompt("Date? ")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-04", answer)
	assert.Equal(t, "Date? ", out.String())

	answer, err = prompt("Again? ")
	require.NoError(t, err)
	assert.Empty(t, answer)
}

func Test_formatter_explain(t *testing.T) {
	f := formatter{}

	err := core.NewValidationError(attendance.ErrValidationFailed,
		core.FieldError{Field: "s1", Error: "attendance status is required"},
	)
	assert.Equal(t, "error: submitting: attendance is incomplete\n  s1: attendance status is required", f.explain(errors.Wrap(err, "submitting")))
	assert.Equal(t,
		"error: a date is required to report the lesson (use --date YYYY-MM-DD)",
		f.explain(lesson.ErrDateRequired),
	)
}
