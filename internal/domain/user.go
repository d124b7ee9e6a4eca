package domain

// Role роль пользователя платформы
type Role string

const (
	RoleClient  Role = "client"
	RolePartner Role = "partner"
	RoleAdmin   Role = "admin"
)

// IsValid returns true for a known role
func (r Role) IsValid() bool {
	switch r {
	case RoleClient, RolePartner, RoleAdmin:
		return true
	}
	return false
}

// Actor authenticated caller of an operation
type Actor struct {
	UserID int64
	Role   Role
}

// IsAdmin returns true for platform administrators
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// IsPartner returns true for service providers
func (a Actor) IsPartner() bool {
	return a.Role == RolePartner
}
