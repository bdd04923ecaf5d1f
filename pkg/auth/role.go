package auth

type Role string

const (
	RoleAdmin Role = "admin"
	// RoleLibrarian keeps the spelling stored in the users table.
	RoleLibrarian Role = "liberian"
)

// StaffRoles may use every library endpoint.
var StaffRoles = []Role{RoleAdmin, RoleLibrarian}

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleLibrarian:
		return true
	}
	return false
}

func (r Role) In(roles []Role) bool {
	for i := range roles {
		if roles[i] == r {
			return true
		}
	}
	return false
}
