package auth

import "time"

// Principal represents an authenticable identity with exactly one role.
// Principals are provisioned externally; the gate only reads them.
type Principal struct {
	ID           int64
	Email        string
	PasswordHash string
	Role         string
	EmployeeID   *int64
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
