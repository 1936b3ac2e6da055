package models

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Identity is who the current caller is. The zero value is the anonymous identity.
type Identity struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role,omitempty"`
}

// Authenticated reports whether the identity names a signed-in user.
func (i Identity) Authenticated() bool {
	return i.UserID != ""
}

// IdentityOf returns the identity of a stored user.
func IdentityOf(u User) Identity {
	return Identity{UserID: u.ID, Email: u.Email, Role: u.Role}
}
