package employees

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/atlas-hrm/atlas-hrm/internal/shared"
)

// Input carries employee fields for create and update operations.
type Input struct {
	EmpID         string
	FirstName     string
	LastName      string
	Email         string
	MobileNo      *string
	DOB           *time.Time
	RoleID        *int64
	Salary        *float64
	DateOfJoining *time.Time
	ProfilePhoto  *string
}

// Service handles employee directory business logic.
type Service struct {
	repo Repository
}

// NewService builds a Service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns a filtered page of employees plus the total count.
func (s *Service) List(ctx context.Context, filters ListFilters) ([]Employee, int, error) {
	return s.repo.List(ctx, filters)
}

// Get fetches one employee by its public emp_id.
func (s *Service) Get(ctx context.Context, empID string) (Employee, error) {
	if strings.TrimSpace(empID) == "" {
		return Employee{}, shared.ValidationError("emp_id", "is required")
	}
	return s.repo.GetByEmpID(ctx, empID)
}

// ResolveEmpID maps a public emp_id to the internal row ID, failing with
// ErrUnknownEmployee when it does not resolve. Used by the payroll engine
// for its referential check.
func (s *Service) ResolveEmpID(ctx context.Context, empID string) (int64, error) {
	emp, err := s.repo.GetByEmpID(ctx, empID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return 0, shared.ErrUnknownEmployee
		}
		return 0, err
	}
	return emp.ID, nil
}

// Profile fetches the employee linked to the calling principal.
func (s *Service) Profile(ctx context.Context, employeeID int64) (Employee, error) {
	return s.repo.GetByID(ctx, employeeID)
}

// Create provisions the directory record together with its login principal.
// The password is hashed here; it never reaches the repository in clear.
func (s *Service) Create(ctx context.Context, in Input, password string) (Employee, error) {
	if err := validateInput(in, true); err != nil {
		return Employee{}, err
	}
	if len(password) < 6 {
		return Employee{}, shared.ValidationError("password", "must be at least 6 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return Employee{}, err
	}
	return s.repo.Create(ctx, employeeFromInput(in), string(hash))
}

// Update modifies an employee. EmpID is immutable once assigned: a payload
// that tries to change it is rejected rather than silently ignored.
func (s *Service) Update(ctx context.Context, empID string, in Input) (Employee, error) {
	if in.EmpID != "" && in.EmpID != empID {
		return Employee{}, shared.ValidationError("emp_id", "cannot be changed after creation")
	}
	in.EmpID = empID
	if err := validateInput(in, false); err != nil {
		return Employee{}, err
	}
	return s.repo.Update(ctx, empID, employeeFromInput(in))
}

// UpdateOwnPhoto stores a new opaque photo reference for the caller's own
// record. The identity comes from the session, never from the request body.
func (s *Service) UpdateOwnPhoto(ctx context.Context, employeeID int64, photoRef string) (Employee, error) {
	photoRef = strings.TrimSpace(photoRef)
	if photoRef == "" {
		return Employee{}, shared.ValidationError("photo_ref", "is required")
	}
	return s.repo.UpdatePhoto(ctx, employeeID, photoRef)
}

// Delete removes the employee and, via cascade, its principal and payroll rows.
func (s *Service) Delete(ctx context.Context, empID string) error {
	if strings.TrimSpace(empID) == "" {
		return shared.ValidationError("emp_id", "is required")
	}
	return s.repo.Delete(ctx, empID)
}

func validateInput(in Input, creating bool) error {
	if creating && strings.TrimSpace(in.EmpID) == "" {
		return shared.ValidationError("emp_id", "is required")
	}
	if strings.TrimSpace(in.FirstName) == "" {
		return shared.ValidationError("first_name", "is required")
	}
	if strings.TrimSpace(in.LastName) == "" {
		return shared.ValidationError("last_name", "is required")
	}
	if strings.TrimSpace(in.Email) == "" {
		return shared.ValidationError("email", "is required")
	}
	if in.Salary != nil && *in.Salary < 0 {
		return shared.ValidationError("salary", "must not be negative")
	}
	return nil
}

func employeeFromInput(in Input) Employee {
	return Employee{
		EmpID:         strings.TrimSpace(in.EmpID),
		FirstName:     strings.TrimSpace(in.FirstName),
		LastName:      strings.TrimSpace(in.LastName),
		Email:         strings.TrimSpace(in.Email),
		MobileNo:      in.MobileNo,
		DOB:           in.DOB,
		RoleID:        in.RoleID,
		Salary:        in.Salary,
		DateOfJoining: in.DateOfJoining,
		ProfilePhoto:  in.ProfilePhoto,
	}
}
