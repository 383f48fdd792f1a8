package domain

import (
	"slices"
	"time"
)

// Permission is a named capability checked before a mutating request runs.
type Permission string

const (
	PermAddNote    Permission = "notes.add_note"
	PermChangeNote Permission = "notes.change_note"
	PermDeleteNote Permission = "notes.delete_note"
)

// User is an account that can sign in and author notes.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	IsSuperuser  bool
	Permissions  []Permission
	CreatedAt    time.Time
}

// Identity is the authenticated principal attached to a request.
// It carries no credentials.
type Identity struct {
	UserID      int64        `json:"id"`
	Username    string       `json:"username"`
	IsSuperuser bool         `json:"is_superuser"`
	Permissions []Permission `json:"permissions"`
}

// IdentityOf strips credentials from u.
func IdentityOf(u User) Identity {
	return Identity{
		UserID:      u.ID,
		Username:    u.Username,
		IsSuperuser: u.IsSuperuser,
		Permissions: u.Permissions,
	}
}

// Has reports whether the identity holds perm. Superusers hold every permission.
func (i Identity) Has(perm Permission) bool {
	if i.IsSuperuser {
		return true
	}
	return slices.Contains(i.Permissions, perm)
}

// Session is the result of a successful login.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Identity  Identity  `json:"identity"`
}
