package domain

import "time"

// Roles known to the admin console.
const (
	RoleAdmin    = "admin"
	RoleManager  = "manager"
	RoleVendor   = "vendor"
	RoleCustomer = "customer"
)

// UserProfile is the signed-in operator as returned by /auth/login.
// It is replaced wholesale on every login.
type UserProfile struct {
	ID             string `json:"id"`
	FullName       string `json:"fullName"`
	Email          string `json:"email"`
	Role           string `json:"role"`
	ProfilePicture string `json:"profilePicture,omitempty"`
}

// IsAdmin reports whether the profile carries the admin role.
func (u *UserProfile) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// User is a platform account listed in the users screen.
type User struct {
	ID             string     `json:"id"`
	FullName       string     `json:"fullName"`
	Email          string     `json:"email"`
	Phone          string     `json:"phone,omitempty"`
	Role           string     `json:"role"`
	Active         bool       `json:"isActive"`
	BusinessID     string     `json:"businessId,omitempty"`
	ProfilePicture string     `json:"profilePicture,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	LastLoginAt    *time.Time `json:"lastLoginAt,omitempty"`
}
