package domain

import "time"

// Role classifies what a user is allowed to do.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	return r == RoleCustomer || r == RoleAdmin
}

// User represents a registered account of the store.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Phone        string
	Address      string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
