package employees

import "time"

// Employee is one directory record. EmpID is assigned at creation and
// immutable afterwards; ProfilePhoto is an opaque reference resolved by the
// external media store.
type Employee struct {
	ID            int64      `json:"-"`
	EmpID         string     `json:"emp_id"`
	FirstName     string     `json:"first_name"`
	LastName      string     `json:"last_name"`
	Email         string     `json:"email"`
	MobileNo      *string    `json:"mobile_no,omitempty"`
	DOB           *time.Time `json:"dob,omitempty"`
	RoleID        *int64     `json:"role_id,omitempty"`
	RoleName      *string    `json:"role_name,omitempty"`
	Salary        *float64   `json:"salary,omitempty"`
	DateOfJoining *time.Time `json:"date_of_joining,omitempty"`
	ProfilePhoto  *string    `json:"profile_photo,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// ListFilters narrows and pages the employee listing.
type ListFilters struct {
	Search  string
	RoleID  *int64
	Page    int
	PerPage int
}
