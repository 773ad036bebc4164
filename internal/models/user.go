package models

import (
	"slices"
	"time"
)

// Platform roles
const (
	RoleAdmin   = "admin"
	RoleTeacher = "teacher"
	RoleStudent = "student"
)

// Profile is the signed-in user as reported by the platform API
type Profile struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// HasRole reports whether the profile holds one of roles
func (p *Profile) HasRole(roles ...string) bool {
	return p != nil && slices.Contains(roles, p.Role)
}

// User is a row of the user administration list
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}
