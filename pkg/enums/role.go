package enums

import "fmt"

// Role identifies which API surface an actor belongs to.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleSeller Role = "seller"
	RoleClient Role = "client"
)

var validRoles = []Role{
	RoleAdmin,
	RoleSeller,
	RoleClient,
}

// String implements fmt.Stringer.
func (r Role) String() string {
	return string(r)
}

// IsValid reports whether the value is a known Role.
func (r Role) IsValid() bool {
	for _, candidate := range validRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseRole converts raw input into Role.
func ParseRole(value string) (Role, error) {
	for _, candidate := range validRoles {
		if equalFold(string(candidate), value) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid role %q", value)
}

// Platform tags the client application that issued the token.
type Platform string

const (
	PlatformAdmin  Platform = "ADMIN"
	PlatformClient Platform = "CLIENT"
	PlatformDevice Platform = "DEVICE"
)

// IsValid reports whether the value is a known Platform.
func (p Platform) IsValid() bool {
	switch p {
	case PlatformAdmin, PlatformClient, PlatformDevice:
		return true
	}
	return false
}
