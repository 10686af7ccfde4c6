package auth

import (
	"time"

	"github.com/taskboard/taskboard/internal/rbac"
)

// User represents an authenticated user account.
type User struct {
	ID             int64
	Email          string
	PasswordHash   string
	Role           rbac.Role
	OrganizationID int64
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Principal is the identity a request acts as once u has logged in.
func (u User) Principal() rbac.Principal {
	return rbac.Principal{ID: u.ID, Role: u.Role, OrganizationID: u.OrganizationID, Email: u.Email}
}
