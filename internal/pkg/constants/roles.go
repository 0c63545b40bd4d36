package constants

const (
	Admin  = "ADMIN"
	Broker = "BROKER"
)

// ValidRoles is the set of roles a session user may carry.
var ValidRoles = []string{Admin, Broker}

// IsValidRole returns true if role is one of the allowed values.
func IsValidRole(role string) bool {
	return contains(ValidRoles, role)
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
