package shared

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrRoleMismatch occurs when the stored role differs from the role the login claimed.
	ErrRoleMismatch = errors.New("role mismatch")
	// ErrSessionExpired occurs when a session token is missing, revoked, or timed out.
	ErrSessionExpired = errors.New("session expired")
	// ErrCapabilityDenied occurs when the session's role does not grant the capability.
	ErrCapabilityDenied = errors.New("capability denied")
	// ErrValidation indicates a malformed or out-of-range field.
	ErrValidation = errors.New("validation failed")
	// ErrDuplicatePeriod occurs when a payroll record already exists for the employee and period.
	ErrDuplicatePeriod = errors.New("duplicate payroll period")
	// ErrDuplicateIdentifier occurs on an email, emp_id, or role name collision.
	ErrDuplicateIdentifier = errors.New("duplicate identifier")
	// ErrUnknownEmployee indicates the employee reference does not resolve.
	ErrUnknownEmployee = errors.New("unknown employee")
	// ErrUnknownRole indicates the role reference does not resolve.
	ErrUnknownRole = errors.New("unknown role")
	// ErrReferentialConflict occurs when a delete is blocked by rows still referencing the target.
	ErrReferentialConflict = errors.New("referential conflict")
)

// ValidationError wraps ErrValidation with the offending field and reason.
func ValidationError(field, reason string) error {
	return fmt.Errorf("%w: %s %s", ErrValidation, field, reason)
}
