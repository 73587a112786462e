package attendance

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
		StatusPresent:  {label: "Présentiel", category: core.CategorySuccess},
		StatusRemote:   {label: "Distanciel", category: core.CategorySuccess},
		StatusMedical:  {label: "Certificat médical", category: core.CategoryWarning},
		StatusAbsent:   {label: "Absence non justifiée", category: core.CategoryDanger},
		StatusDropout:  {label: "Abandon", category: core.CategoryDangerStrong},
		StatusExempted: {label: "Dispensé", category: core.CategoryNeutral},
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
	if s == StatusNone {
		return "Non renseigné"
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

// ParseStatus accepts a status code (any casing) or a display label. The empty string is not a status.
func ParseStatus(s string) (Status, error) {
	status := Status(strings.ToUpper(core.CleanString(s)))
	if status.Valid() {
		return status, nil
	}
	if status, ok := StatusFromLabel(s); ok {
		return status, nil
	}
	err := errors.Errorf("unknown attendance status %q", s)
	return "", core.NewValidationError(err, core.FieldError{Field: "status", Error: err.Error()})
}

// StatusInfo is the display form of a status.
type StatusInfo struct {
	Value      Status        `json:"value"`
	Label      string        `json:"label"`
	Category   core.Category `json:"category"`
	Assignable bool          `json:"assignable"`
}
