package domain

import "time"

// Role enumerates the account roles recognized by the service.
type Role string

const (
	RoleManager       Role = "manager"
	RoleTechnician    Role = "technician"
	RoleDataCollector Role = "data_collector"
)

// Valid reports whether the role is one of the recognized values.
func (r Role) Valid() bool {
	switch r {
	case RoleManager, RoleTechnician, RoleDataCollector:
		return true
	}
	return false
}

// User is the domain model for all accounts: managers, technicians and
// data collectors share one collection distinguished by Role.
type User struct {
	ID           string
	FullName     string
	Email        string
	Username     string
	PasswordHash string
	Role         Role
	Specialty    *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserRef is the denormalized identity attached to issue reads for display.
type UserRef struct {
	ID        string
	Username  string
	FullName  string
	Specialty *string
}

// Ref returns the display reference for the user.
func (u *User) Ref() *UserRef {
	if u == nil {
		return nil
	}
	return &UserRef{
		ID:        u.ID,
		Username:  u.Username,
		FullName:  u.FullName,
		Specialty: u.Specialty,
	}
}
