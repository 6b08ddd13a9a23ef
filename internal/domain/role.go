package domain

// Role constants define the allowed principal roles.
const (
	RoleUser       = "user"
	RoleAdmin      = "admin"
	RoleSuperAdmin = "superadmin"
)

// ValidRoles returns the set of valid roles.
func ValidRoles() []string {
	return []string{RoleUser, RoleAdmin, RoleSuperAdmin}
}

// IsValidRole checks whether role is one of ValidRoles.
func IsValidRole(role string) bool {
	for _, r := range ValidRoles() {
		if r == role {
			return true
		}
	}
	return false
}
