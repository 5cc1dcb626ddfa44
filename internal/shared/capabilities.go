package shared

// Roles a principal may hold. A principal has exactly one.
const (
	RoleAdmin    = "admin"
	RoleEmployee = "employee"
)

// Capabilities gating each class of operation.
const (
	CapManageEmployees = "manage-employees"
	CapManageRoles     = "manage-roles"
	CapManagePayroll   = "manage-payroll"
	CapViewOwnProfile  = "view-own-profile"
	CapUpdateOwnPhoto  = "update-own-photo"
)

var roleCapabilities = map[string][]string{
	RoleAdmin:    {CapManageEmployees, CapManageRoles, CapManagePayroll},
	RoleEmployee: {CapViewOwnProfile, CapUpdateOwnPhoto},
}

// RoleGrants reports whether the role grants the capability. The set is
// closed: unknown roles and unknown capabilities grant nothing.
func RoleGrants(role, capability string) bool {
	for _, c := range roleCapabilities[role] {
		if c == capability {
			return true
		}
	}
	return false
}

// CapabilitiesForRole lists the capabilities the role grants.
func CapabilitiesForRole(role string) []string {
	caps := roleCapabilities[role]
	out := make([]string, len(caps))
	copy(out, caps)
	return out
}

// ValidRole reports whether the role name is one of the known roles.
func ValidRole(role string) bool {
	_, ok := roleCapabilities[role]
	return ok
}
