package roles

import "time"

// Role represents a job role assignable to employees.
type Role struct {
	ID          int64     `json:"id"`
	RoleName    string    `json:"role_name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
