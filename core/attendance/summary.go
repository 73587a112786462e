package attendance

import (
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/kelasi/core"
)

// summary ordering fields
const (
	OrderByStudent      = "student"
	OrderByAbsences     = "absences"
	OrderByPresenceRate = "presence_rate"
)

var defaultSummaryOrdering = []core.Ordering{{Field: OrderByStudent, Ascending: true}}

// Stats aggregates the attendance of one student.
type Stats struct {
	Lessons      int            `json:"lessons"`
	Recorded     int            `json:"recorded"`
	Counts       map[Status]int `json:"counts"`
	Absences     int            `json:"absences"`      // unjustified only
	PresenceRate float64        `json:"presence_rate"` // (P + M) / recorded
}

func (row SummaryRow) Stats() Stats {
	stats := Stats{
		Lessons: len(row.Attendances),
		Counts:  make(map[Status]int, len(Statuses)),
	}
	for _, a := range row.Attendances {
		if !a.Status.Valid() {
			continue
		}
		stats.Recorded++
		stats.Counts[a.Status]++
	}
	stats.Absences = stats.Counts[StatusAbsent]
	if stats.Recorded > 0 {
		stats.PresenceRate = float64(stats.Counts[StatusPresent]+stats.Counts[StatusRemote]) / float64(stats.Recorded)
	}
	return stats
}

// SortSummary sorts rows in place. Fields: student, absences, presence_rate.
func SortSummary(rows []SummaryRow, orderings []core.Ordering) error {
	if len(orderings) == 0 {
		orderings = defaultSummaryOrdering
	}
	for _, ord := range orderings {
		switch ord.Field {
		case OrderByStudent, OrderByAbsences, OrderByPresenceRate:
		default:
			err := errors.Errorf("cannot order by %q", ord.Field)
			return core.NewValidationError(err, core.FieldError{Field: "ordering", Error: err.Error()})
		}
	}

	stats := make(map[string]Stats, len(rows))
	for _, row := range rows {
		stats[row.Student.ID] = row.Stats()
	}

	sort.SliceStable(rows, func(i, j int) bool {
		for _, ord := range orderings {
			cmp := compareRows(rows[i], rows[j], stats, ord.Field)
			if cmp == 0 {
				continue
			}
			if ord.Ascending {
				return cmp < 0
			}
			return cmp > 0
		}
		return false
	})
	return nil
}

func compareRows(a, b SummaryRow, stats map[string]Stats, field string) int {
	switch field {
	case OrderByAbsences:
		return compareInts(stats[a.Student.ID].Absences, stats[b.Student.ID].Absences)
	case OrderByPresenceRate:
		ra, rb := stats[a.Student.ID].PresenceRate, stats[b.Student.ID].PresenceRate
		switch {
		case ra < rb:
			return -1
		case ra > rb:
			return 1
		}
		return 0
	default:
		return strings.Compare(
			strings.ToLower(a.Student.FullName()),
			strings.ToLower(b.Student.FullName()),
		)
	}
}

func compareInts(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
