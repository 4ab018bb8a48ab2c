package dto

import (
	"time"

	"github.com/spec-kit/courier-service/internal/domain"
)

// LoginRequest payload. Email also accepts the super admin username.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IdentityResponse describes the authenticated caller.
type IdentityResponse struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Email    string          `json:"email"`
	Role     domain.RoleName `json:"role"`
	BranchID *string         `json:"branch_id"`
}

// UserCreateRequest payload.
type UserCreateRequest struct {
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Phone    string  `json:"phone"`
	Password string  `json:"password"`
	RoleID   string  `json:"role_id"`
	BranchID *string `json:"branch_id"`
	Active   *bool   `json:"active"`
}

// UserUpdateRequest payload; omitted fields are left unchanged.
type UserUpdateRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Phone    *string `json:"phone"`
	Password *string `json:"password"`
	RoleID   *string `json:"role_id"`
	BranchID *string `json:"branch_id"`
	Active   *bool   `json:"active"`
}

// UserResponse never carries the password hash.
type UserResponse struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Email     string          `json:"email"`
	Phone     string          `json:"phone"`
	RoleID    string          `json:"role_id"`
	Role      domain.RoleName `json:"role"`
	BranchID  *string         `json:"branch_id"`
	Active    bool            `json:"active"`
	CreatedAt time.Time       `json:"created_at"`
}

// RoleResponse payload.
type RoleResponse struct {
	ID   string          `json:"id"`
	Name domain.RoleName `json:"name"`
}

// StaffContactResponse is the business projection of a staff member.
type StaffContactResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}
