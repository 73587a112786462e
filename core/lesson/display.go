package lesson

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/kelasi/core"
)

type statusDisplay struct {
	label    string
	category core.Category
}

var (
	statusDisplays = map[Status]statusDisplay{
		StatusProgrammed: {label: "Programmé", category: core.CategoryInfo},
		StatusInProgress: {label: "En cours", category: core.CategoryWarning},
		StatusCompleted:  {label: "Terminé", category: core.CategorySuccess},
		StatusCancelled:  {label: "Annulé", category: core.CategoryDanger},
		StatusReported:   {label: "Reporté", category: core.CategoryWarning},
	}

	// reverse lookup, built once
	statusesByLabel = func() map[string]Status {
		m := make(map[string]Status, len(statusDisplays))
		for status, disp := range statusDisplays {
			m[strings.ToLower(disp.label)] = status
		}
		return m
	}()
)

func (s Status) Label() string {
	if disp, ok := statusDisplays[s]; ok {
		return disp.label
	}
	return string(s)
}

func (s Status) Category() core.Category {
	if disp, ok := statusDisplays[s]; ok {
		return disp.category
	}
	return core.CategoryNeutral
}

// StatusFromLabel maps a display label back to its status (case insensitive).
func StatusFromLabel(label string) (Status, bool) {
	status, ok := statusesByLabel[core.CleanString(label, true /* lower */)]
	return status, ok
}

// ParseStatus accepts a status code (any casing) or a display label.
func ParseStatus(s string) (Status, error) {
	status := Status(strings.ToUpper(core.CleanString(s)))
	if status.Valid() {
		return status, nil
	}
	if status, ok := StatusFromLabel(s); ok {
		return status, nil
	}
	err := errors.Errorf("unknown lesson status %q", s)
	return "", core.NewValidationError(err, core.FieldError{Field: "status", Error: err.Error()})
}

// StatusInfo is the display form of a status.
type StatusInfo struct {
	Value    Status        `json:"value"`
	Label    string        `json:"label"`
	Category core.Category `json:"category"`
}

func StatusInfos() []StatusInfo {
	infos := make([]StatusInfo, 0, len(Statuses))
	for _, s := range Statuses {
		infos = append(infos, StatusInfo{Value: s, Label: s.Label(), Category: s.Category()})
	}
	return infos
}
