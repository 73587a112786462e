package attendance

import (
	"github.com/trezcool/kelasi/core/user"
)

var assignableStatuses = map[user.Role][]Status{
	user.RoleAdministrator: {StatusPresent, StatusRemote, StatusMedical, StatusAbsent, StatusDropout, StatusExempted},
	user.RoleEducator:      {StatusPresent, StatusRemote, StatusMedical, StatusAbsent, StatusDropout, StatusExempted},
	user.RoleProfessor:     {StatusPresent, StatusRemote, StatusAbsent},
}

// AssignableStatuses returns the statuses role may assign, in display order.
// Students and unknown roles get none.
func AssignableStatuses(role user.Role) []Status {
	statuses := assignableStatuses[role]
	out := make([]Status, len(statuses))
	copy(out, statuses)
	return out
}

func CanAssign(role user.Role, status Status) bool {
	for _, s := range assignableStatuses[role] {
		if s == status {
			return true
		}
	}
	return false
}

// StatusInfos returns every status with its display form, flagged with whether role may assign it.
func StatusInfos(role user.Role) []StatusInfo {
	infos := make([]StatusInfo, 0, len(Statuses))
	for _, s := range Statuses {
		infos = append(infos, StatusInfo{
			Value:      s,
			Label:      s.Label(),
			Category:   s.Category(),
			Assignable: CanAssign(role, s),
		})
	}
	return infos
}
