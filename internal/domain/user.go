package domain

import (
	"strings"
	"time"
)

// RoleName identifies one of the fixed roles.
type RoleName string

const (
	RoleAdministrator RoleName = "Administrator"
	RoleOperator      RoleName = "Logistics Operator"
	RoleCourier       RoleName = "Courier"
)

// RoleCatalog lists the roles seeded at boot.
func RoleCatalog() []RoleName {
	return []RoleName{RoleAdministrator, RoleOperator, RoleCourier}
}

// Role is a named permission group.
type Role struct {
	ID   string
	Name RoleName
}

// User is a staff account: administrator, operator or courier.
type User struct {
	ID           string
	Name         string
	Email        string
	Phone        string
	RoleID       string
	RoleName     RoleName
	BranchID     *string
	Active       bool
	PasswordHash string
	CreatedAt    time.Time
}

// HasRole reports whether the user holds the role.
func (u *User) HasRole(role RoleName) bool {
	return u != nil && u.RoleName == role
}

// Contact returns the public projection of the user.
func (u *User) Contact() *StaffContact {
	if u == nil {
		return nil
	}
	return &StaffContact{ID: u.ID, Name: u.Name, Phone: u.Phone, Email: u.Email}
}

// NormalizeEmail lowercases and trims an address for comparisons.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// StaffContact exposes the business fields of a user referenced by a package.
type StaffContact struct {
	ID    string
	Name  string
	Phone string
	Email string
}
