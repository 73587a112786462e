package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/trezcool/kelasi/core"
	"github.com/trezcool/kelasi/core/attendance"
	"github.com/trezcool/kelasi/core/lesson"
	"github.com/trezcool/kelasi/core/user"
)

var (
	errNotStaff   = errors.New("permission denied: a staff role is required")
	errRoleFlag   = errors.New("--role is only available in demo mode")
	errBadSetFlag = errors.New("--set expects STUDENT=STATUS")
)

type commandLine struct {
	lessonSvc     *lesson.Service
	attendanceSvc *attendance.Service
	roles         user.RoleProvider
	demo          bool
	format        formatter

	// prompt asks the operator for a value; nil when stdin is not a terminal.
	prompt func(question string) (string, error)
}

func (cli *commandLine) rootCmd() *cobra.Command {
	var roleFlag string

	root := &cobra.Command{
		Use:           "kelasi",
		Short:         "Lesson status & attendance tool",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if roleFlag == "" {
				return nil
			}
			if !cli.demo {
				return errRoleFlag
			}
			role := user.ParseRole(roleFlag)
			if !role.Valid() {
				return errors.Errorf("unknown role %q", roleFlag)
			}
			cli.roles = user.StaticRole(role)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&roleFlag, "role", "", "act with this role (demo mode only)")

	root.AddCommand(
		cli.statusesCmd(),
		cli.lessonCmd(),
		cli.attendanceCmd(),
		cli.summaryCmd(),
	)
	return root
}

func (cli *commandLine) role() user.Role {
	if cli.roles == nil {
		return ""
	}
	return cli.roles.CurrentUserRole()
}

func (cli *commandLine) requireStaff() error {
	if !cli.role().IsStaff() {
		return errNotStaff
	}
	return nil
}

func (cli *commandLine) statusesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "statuses",
		Short: "List lesson & attendance statuses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprint(cmd.OutOrStdout(), cli.format.statuses(cli.role()))
			return nil
		},
	}
}

func (cli *commandLine) lessonCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lesson",
		Short: "Show a lesson or change its status",
	}
	cmd.AddCommand(cli.lessonShowCmd(), cli.lessonStatusCmd())
	return cmd
}

func (cli *commandLine) lessonShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show LESSON_ID",
		Short: "Show a lesson",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lsn, err := cli.lessonSvc.GetByID(context.Background(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), cli.format.lesson(lsn))
			return nil
		},
	}
}

func (cli *commandLine) lessonStatusCmd() *cobra.Command {
	var dateFlag string

	cmd := &cobra.Command{
		Use:   "status LESSON_ID STATUS",
		Short: "Change the status of a lesson (REPORTED needs a new date)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cli.requireStaff(); err != nil {
				return err
			}
			status, err := lesson.ParseStatus(args[1])
			if err != nil {
				return err
			}
			var date *core.Date
			if dateFlag != "" {
				d, err := core.ParseDate(dateFlag)
				if err != nil {
					return err
				}
				date = &d
			}

			ctx := context.Background()
			lsn, err := cli.lessonSvc.RequestStatusChangeByID(ctx, args[0], status, date)
			if errors.Cause(err) == lesson.ErrDateRequired && cli.prompt != nil {
				if date, err = cli.promptDate(); err != nil {
					return err
				}
				lsn, err = cli.lessonSvc.RequestStatusChangeByID(ctx, args[0], status, date)
			}
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), cli.format.lesson(lsn))
			return nil
		},
	}
	cmd.Flags().StringVar(&dateFlag, "date", "", "new date of a REPORTED lesson (YYYY-MM-DD)")
	return cmd
}

func (cli *commandLine) promptDate() (*core.Date, error) {
	answer, err := cli.prompt("New date (YYYY-MM-DD): ")
	if err != nil {
		return nil, errors.Wrap(err, "reading date")
	}
	if answer == "" {
		return nil, lesson.ErrDateRequired
	}
	date, err := core.ParseDate(answer)
	if err != nil {
		return nil, err
	}
	return &date, nil
}

func (cli *commandLine) attendanceCmd() *cobra.Command {
	var sets []string
	var submit bool

	cmd := &cobra.Command{
		Use:   "attendance LESSON_ID",
		Short: "Show, stage & submit the attendance of a lesson",
		Example: "  kelasi attendance lesson-1 --set student-1=P --set student-2=A --set student-3=M --submit\n" +
			"  kelasi attendance lesson-1 --set \"student-2=Absence non justifiée\"",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cli.requireStaff(); err != nil {
				return err
			}
			ctx := context.Background()
			sess, err := cli.attendanceSvc.Open(ctx, args[0])
			if err != nil {
				return err
			}

			for _, set := range sets {
				studentID, raw, ok := strings.Cut(set, "=")
				if !ok || studentID == "" {
					return errors.Wrap(errBadSetFlag, set)
				}
				status, err := attendance.ParseStatus(raw)
				if err != nil {
					return err
				}
				if err = sess.Assign(cli.role(), strings.TrimSpace(studentID), status); err != nil {
					return errors.Wrapf(err, "assigning %s", set)
				}
			}

			out := cmd.OutOrStdout()
			if submit {
				if err = cli.attendanceSvc.Submit(ctx, sess); err != nil {
					fmt.Fprint(out, cli.format.session(sess, cli.role()))
					return err
				}
				fmt.Fprintln(out, cli.format.category(core.CategorySuccess, "Attendance submitted."))
			}
			fmt.Fprint(out, cli.format.session(sess, cli.role()))
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&sets, "set", nil, "stage a status: STUDENT=STATUS (code or label), repeatable")
	cmd.Flags().BoolVar(&submit, "submit", false, "submit the attendance once every student has a status")
	return cmd
}

func (cli *commandLine) summaryCmd() *cobra.Command {
	var ordering string

	cmd := &cobra.Command{
		Use:   "summary ACADEMIC_UE_ID",
		Short: "Show the attendance of every student of an academic UE",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cli.requireStaff(); err != nil {
				return err
			}
			rows, err := cli.attendanceSvc.Summary(context.Background(), args[0], core.ParseOrderings(ordering))
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), cli.format.summary(rows))
			return nil
		},
	}
	cmd.Flags().StringVar(&ordering, "ordering", "", "student, absences, presence_rate; prefix with - to reverse, eg: -absences,student")
	return cmd
}
