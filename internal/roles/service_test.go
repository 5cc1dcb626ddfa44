package roles

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlas-hrm/atlas-hrm/internal/shared"
	_ "github.com/atlas-hrm/atlas-hrm/testing"
)

type mockRepository struct {
	roles      map[int64]Role
	referenced map[int64]bool
	nextID     int64
}

func newMockRepository() *mockRepository {
	return &mockRepository{roles: make(map[int64]Role), referenced: make(map[int64]bool), nextID: 1}
}

func (m *mockRepository) List(ctx context.Context) ([]Role, error) {
	out := make([]Role, 0, len(m.roles))
	for _, r := range m.roles {
		out = append(out, r)
	}
	return out, nil
}

func (m *mockRepository) Get(ctx context.Context, id int64) (Role, error) {
	r, ok := m.roles[id]
	if !ok {
		return Role{}, shared.ErrNotFound
	}
	return r, nil
}

func (m *mockRepository) Create(ctx context.Context, role Role) (Role, error) {
	for _, existing := range m.roles {
		if existing.RoleName == role.RoleName {
			return Role{}, shared.ErrDuplicateIdentifier
		}
	}
	role.ID = m.nextID
	m.nextID++
	role.CreatedAt = time.Now()
	role.UpdatedAt = role.CreatedAt
	m.roles[role.ID] = role
	return role, nil
}

func (m *mockRepository) Update(ctx context.Context, id int64, role Role) (Role, error) {
	existing, ok := m.roles[id]
	if !ok {
		return Role{}, shared.ErrNotFound
	}
	for otherID, other := range m.roles {
		if otherID != id && other.RoleName == role.RoleName {
			return Role{}, shared.ErrDuplicateIdentifier
		}
	}
	role.ID = id
	role.CreatedAt = existing.CreatedAt
	role.UpdatedAt = time.Now()
	m.roles[id] = role
	return role, nil
}

func (m *mockRepository) Delete(ctx context.Context, id int64) error {
	if _, ok := m.roles[id]; !ok {
		return shared.ErrNotFound
	}
	if m.referenced[id] {
		return shared.ErrReferentialConflict
	}
	delete(m.roles, id)
	return nil
}

func TestCreateTrimsAndRequiresName(t *testing.T) {
	svc := NewService(newMockRepository())

	role, err := svc.Create(context.Background(), "  Engineer  ", " Builds things ")
	require.NoError(t, err)
	assert.Equal(t, "Engineer", role.RoleName)
	assert.Equal(t, "Builds things", role.Description)

	_, err = svc.Create(context.Background(), "   ", "no name")
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestCreateDuplicateName(t *testing.T) {
	svc := NewService(newMockRepository())

	_, err := svc.Create(context.Background(), "Engineer", "")
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), "Engineer", "again")
	require.ErrorIs(t, err, shared.ErrDuplicateIdentifier)
}

func TestUpdateRenames(t *testing.T) {
	svc := NewService(newMockRepository())

	created, err := svc.Create(context.Background(), "Engineer", "")
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), created.ID, "Senior Engineer", "leads a squad")
	require.NoError(t, err)
	assert.Equal(t, "Senior Engineer", updated.RoleName)

	_, err = svc.Update(context.Background(), 0, "x", "")
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestDeleteReferencedRoleRefused(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)

	created, err := svc.Create(context.Background(), "Engineer", "")
	require.NoError(t, err)
	repo.referenced[created.ID] = true

	err = svc.Delete(context.Background(), created.ID)
	require.ErrorIs(t, err, shared.ErrReferentialConflict)

	// Still present after the refused delete.
	_, err = svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
}

func TestDeleteUnknownRole(t *testing.T) {
	svc := NewService(newMockRepository())
	err := svc.Delete(context.Background(), 99)
	require.ErrorIs(t, err, shared.ErrNotFound)
}
