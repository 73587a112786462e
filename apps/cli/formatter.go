package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/pkg/errors"

	"github.com/trezcool/kelasi/core"
	"github.com/trezcool/kelasi/core/attendance"
	"github.com/trezcool/kelasi/core/lesson"
	"github.com/trezcool/kelasi/core/user"
)

var (
	categoryStyles = map[core.Category]lipgloss.Style{
		core.CategoryInfo:         lipgloss.NewStyle().Foreground(lipgloss.Color("#83a598")),
		core.CategoryWarning:      lipgloss.NewStyle().Foreground(lipgloss.Color("#fabd2f")),
		core.CategorySuccess:      lipgloss.NewStyle().Foreground(lipgloss.Color("#8ec07c")),
		core.CategoryDanger:       lipgloss.NewStyle().Foreground(lipgloss.Color("#fb4934")),
		core.CategoryDangerStrong: lipgloss.NewStyle().Foreground(lipgloss.Color("#cc241d")).Bold(true),
		core.CategoryNeutral:      lipgloss.NewStyle().Foreground(lipgloss.Color("#928374")),
	}
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#fe8019")).Bold(true)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#928374"))
)

// formatter renders the command outputs; colors are off when stdout is not a terminal.
type formatter struct {
	colors bool
}

func (f formatter) render(style lipgloss.Style, text string) string {
	if !f.colors {
		return text
	}
	return style.Render(text)
}

func (f formatter) category(c core.Category, text string) string {
	return f.render(categoryStyles[c], text)
}

func (f formatter) header(text string) string {
	return fmt.Sprintf("%s\n%s\n", f.render(headerStyle, text), f.render(dimStyle, strings.Repeat("─", lipgloss.Width(text))))
}

// table aligns columns on their visible width.
func (f formatter) table(headers []string, rows [][]string) string {
	const colGap = 2

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i := 0; i < len(headers) && i < len(row); i++ {
			if w := lipgloss.Width(row[i]); w > widths[i] {
				widths[i] = w
			}
		}
	}

	var b strings.Builder
	writeRow := func(cells []string, style *lipgloss.Style) {
		for i := range headers {
			var cell string
			if i < len(cells) {
				cell = cells[i]
			}
			pad := widths[i] - lipgloss.Width(cell)
			if style != nil {
				cell = f.render(*style, cell)
			}
			b.WriteString(cell)
			if i < len(headers)-1 {
				b.WriteString(strings.Repeat(" ", pad+colGap))
			}
		}
		b.WriteString("\n")
	}

	writeRow(headers, &headerStyle)
	for _, row := range rows {
		writeRow(row, nil)
	}
	return b.String()
}

func (f formatter) lesson(lsn lesson.Lesson) string {
	return f.table(
		[]string{"LESSON", "ACADEMIC UE", "DATE", "STATUS"},
		[][]string{{lsn.ID, lsn.AcademicUEID, lsn.Date.String(), f.category(lsn.Status.Category(), lsn.Status.Label())}},
	)
}

func (f formatter) statuses(role user.Role) string {
	var b strings.Builder

	b.WriteString(f.header("Lesson statuses"))
	rows := make([][]string, 0, len(lesson.Statuses))
	for _, info := range lesson.StatusInfos() {
		rows = append(rows, []string{string(info.Value), f.category(info.Category, info.Label)})
	}
	b.WriteString(f.table([]string{"CODE", "LABEL"}, rows))

	b.WriteString("\n")
	b.WriteString(f.header("Attendance statuses"))
	rows = make([][]string, 0, len(attendance.Statuses))
	for _, info := range attendance.StatusInfos(role) {
		assignable := "no"
		if info.Assignable {
			assignable = "yes"
		}
		rows = append(rows, []string{string(info.Value), f.category(info.Category, info.Label), assignable})
	}
	b.WriteString(f.table([]string{"CODE", "LABEL", "ASSIGNABLE"}, rows))
	return b.String()
}

func (f formatter) session(sess *attendance.Session, role user.Role) string {
	c := sess.Context()
	var b strings.Builder

	b.WriteString(f.header(fmt.Sprintf("%s · %s · %s", c.AcademicUE.Name, c.Lesson.Date, c.Lesson.ID)))
	rows := make([][]string, 0, len(c.Students))
	for _, s := range c.Students {
		rec := sess.Record(s.ID)
		rows = append(rows, []string{s.ID, s.FullName(), f.category(rec.Status.Category(), rec.Status.Label())})
	}
	b.WriteString(f.table([]string{"STUDENT", "NAME", "STATUS"}, rows))

	codes := make([]string, 0)
	for _, s := range attendance.AssignableStatuses(role) {
		codes = append(codes, string(s))
	}
	b.WriteString("\n")
	b.WriteString(f.render(dimStyle, "assignable: "+strings.Join(codes, " ")) + "\n")
	if missing := sess.Missing(); len(missing) > 0 {
		b.WriteString(f.category(core.CategoryWarning, "missing: "+strings.Join(missing, ", ")) + "\n")
	} else {
		b.WriteString(f.category(core.CategorySuccess, "complete") + "\n")
	}
	return b.String()
}

func (f formatter) summary(rows []attendance.SummaryRow) string {
	if len(rows) == 0 {
		return f.render(dimStyle, "no students") + "\n"
	}

	headers := []string{"STUDENT"}
	for _, la := range rows[0].Attendances {
		headers = append(headers, la.Date.Time().Format("01-02"))
	}
	headers = append(headers, "ABSENCES", "PRESENCE")

	table := make([][]string, 0, len(rows))
	for _, row := range rows {
		cells := []string{row.Student.FullName()}
		for _, la := range row.Attendances {
			code := string(la.Status)
			if la.Status == attendance.StatusNone {
				code = "·"
			}
			cells = append(cells, f.category(la.Status.Category(), code))
		}
		stats := row.Stats()
		cells = append(cells, strconv.Itoa(stats.Absences), strconv.Itoa(int(stats.PresenceRate*100+0.5))+"%")
		table = append(table, cells)
	}
	return f.table(headers, table)
}

// explain renders err for the operator.
func (f formatter) explain(err error) string {
	var vErr *core.ValidationError
	switch {
	case errors.Cause(err) == lesson.ErrDateRequired:
		return f.category(core.CategoryDanger, "error: "+err.Error()+" (use --date YYYY-MM-DD)")
	case errors.As(err, &vErr) && len(vErr.Fields) > 0:
		var b strings.Builder
		b.WriteString(f.category(core.CategoryDanger, "error: "+err.Error()))
		for _, fld := range vErr.Fields {
			b.WriteString(fmt.Sprintf("\n  %s: %s", fld.Field, fld.Error))
		}
		return b.String()
	}
	return f.category(core.CategoryDanger, "error: "+err.Error())
}
