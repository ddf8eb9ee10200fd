package models

import (
	"time"

	"github.com/google/uuid"
)

// Role represents the access level of a user within the platform
type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleCustomer Role = "CUSTOMER"
	RoleKitchen  Role = "KITCHEN"
	RoleOperator Role = "OPERATOR"
	RoleManager  Role = "MANAGER"
)

// AllRoles lists every role the platform recognizes
var AllRoles = []Role{RoleAdmin, RoleCustomer, RoleKitchen, RoleOperator, RoleManager}

// ParseRole maps a role string to a known Role.
// Unrecognized values fall back to RoleCustomer, the least-privileged role.
func ParseRole(s string) Role {
	r := Role(s)
	if r.IsValid() {
		return r
	}
	return RoleCustomer
}

// IsValid returns true if the role is one of the enumerated values
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleCustomer, RoleKitchen, RoleOperator, RoleManager:
		return true
	}
	return false
}

// User represents a registered account
type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	CPF          string    `json:"cpf" db:"cpf"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Birthday     time.Time `json:"birthday" db:"birthday"`
	Role         Role      `json:"role" db:"role"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// TableName returns the table name for the User model
func (User) TableName() string {
	return "users"
}

// NewUser creates a new User instance
func NewUser(name, email, cpf, passwordHash string, birthday time.Time, role Role) *User {
	now := time.Now()
	return &User{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		CPF:          cpf,
		PasswordHash: passwordHash,
		Birthday:     birthday,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// IsAdmin returns true if the user has the ADMIN role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
