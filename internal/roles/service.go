package roles

import (
	"context"
	"strings"

	"github.com/atlas-hrm/atlas-hrm/internal/shared"
)

// Service handles role business logic.
type Service struct {
	repo Repository
}

// NewService builds a Service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns all roles ordered by name.
func (s *Service) List(ctx context.Context) ([]Role, error) {
	return s.repo.List(ctx)
}

// Get fetches one role.
func (s *Service) Get(ctx context.Context, id int64) (Role, error) {
	if id <= 0 {
		return Role{}, shared.ValidationError("id", "must be positive")
	}
	return s.repo.Get(ctx, id)
}

// Create inserts a new role. Role names are unique.
func (s *Service) Create(ctx context.Context, roleName, description string) (Role, error) {
	roleName = strings.TrimSpace(roleName)
	if roleName == "" {
		return Role{}, shared.ValidationError("role_name", "is required")
	}
	return s.repo.Create(ctx, Role{RoleName: roleName, Description: strings.TrimSpace(description)})
}

// Update modifies an existing role.
func (s *Service) Update(ctx context.Context, id int64, roleName, description string) (Role, error) {
	if id <= 0 {
		return Role{}, shared.ValidationError("id", "must be positive")
	}
	roleName = strings.TrimSpace(roleName)
	if roleName == "" {
		return Role{}, shared.ValidationError("role_name", "is required")
	}
	return s.repo.Update(ctx, id, Role{RoleName: roleName, Description: strings.TrimSpace(description)})
}

// Delete removes a role. A role still referenced by at least one employee
// fails with ErrReferentialConflict and is left in place.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return shared.ValidationError("id", "must be positive")
	}
	return s.repo.Delete(ctx, id)
}
