package models

import "time"

// User represents a CMS editor account. PasswordHash is never serialized
// into API responses.
type User struct {
	ID           string     `bson:"_id,omitempty" json:"id"`
	Email        string     `bson:"email" json:"email"`
	Username     string     `bson:"username" json:"username"`
	Role         string     `bson:"role" json:"role"`
	Active       bool       `bson:"active" json:"active"`
	PasswordHash string     `bson:"passwordHash" json:"-"`
	LastLoginAt  *time.Time `bson:"lastLoginAt,omitempty" json:"lastLoginAt,omitempty"`
	CreatedAt    time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time  `bson:"updatedAt" json:"updatedAt"`
}

// Roles understood by the CMS authorization layer.
const (
	RoleAdmin  = "admin"
	RoleEditor = "editor"
)
