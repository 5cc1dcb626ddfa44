package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/atlas-hrm/atlas-hrm/internal/auth"
	"github.com/atlas-hrm/atlas-hrm/internal/shared"
	_ "github.com/atlas-hrm/atlas-hrm/testing"
)

type stubRepo struct {
	principal      *auth.Principal
	sessionsSaved  int
	sessionsPurged int64
}

func (s *stubRepo) FindByEmail(ctx context.Context, email string) (*auth.Principal, error) {
	if s.principal == nil || s.principal.Email != email {
		return nil, shared.ErrNotFound
	}
	return s.principal, nil
}

func (s *stubRepo) CreateSession(ctx context.Context, token string, principalID int64, expiresAt time.Time, ip, ua string) error {
	s.sessionsSaved++
	return nil
}

func (s *stubRepo) DeleteSession(ctx context.Context, token string) error {
	return nil
}

func (s *stubRepo) DeleteExpiredSessions(ctx context.Context, before time.Time) (int64, error) {
	return s.sessionsPurged, nil
}

func newService(t *testing.T, repo auth.Repository, ttl time.Duration) (*auth.Service, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := shared.NewSessionStore(client, ttl)
	return auth.NewService(repo, store, nil), mr
}

func employeePrincipal(t *testing.T, password string) *auth.Principal {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	employeeID := int64(7)
	return &auth.Principal{
		ID:           3,
		Email:        "worker@test.local",
		PasswordHash: string(hash),
		Role:         shared.RoleEmployee,
		EmployeeID:   &employeeID,
		IsActive:     true,
	}
}

func TestAuthenticateIssuesRoleScopedSession(t *testing.T) {
	repo := &stubRepo{principal: employeePrincipal(t, "secret1")}
	svc, _ := newService(t, repo, time.Hour)

	sess, principal, err := svc.Authenticate(context.Background(), "worker@test.local", "secret1", shared.RoleEmployee, "127.0.0.1", "test")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if sess.Token == "" {
		t.Fatalf("expected a token")
	}
	if sess.Role != shared.RoleEmployee {
		t.Fatalf("expected employee session, got %q", sess.Role)
	}
	if sess.EmployeeID == nil || *sess.EmployeeID != 7 {
		t.Fatalf("expected employee reference on session")
	}
	if principal.ID != 3 {
		t.Fatalf("unexpected principal %d", principal.ID)
	}
	if repo.sessionsSaved != 1 {
		t.Fatalf("expected one audit row, got %d", repo.sessionsSaved)
	}
}

func TestAuthenticateRoleMismatchIssuesNothing(t *testing.T) {
	repo := &stubRepo{principal: employeePrincipal(t, "secret1")}
	svc, mr := newService(t, repo, time.Hour)

	_, _, err := svc.Authenticate(context.Background(), "worker@test.local", "secret1", shared.RoleAdmin, "", "")
	if !errors.Is(err, shared.ErrRoleMismatch) {
		t.Fatalf("expected role mismatch, got %v", err)
	}
	if got := len(mr.Keys()); got != 0 {
		t.Fatalf("expected no session keys, got %d", got)
	}
	if repo.sessionsSaved != 0 {
		t.Fatalf("expected no audit rows, got %d", repo.sessionsSaved)
	}
}

func TestAuthenticateRejectsBadCredentials(t *testing.T) {
	repo := &stubRepo{principal: employeePrincipal(t, "secret1")}
	svc, _ := newService(t, repo, time.Hour)

	cases := []struct {
		name     string
		email    string
		password string
	}{
		{"wrong password", "worker@test.local", "wrong"},
		{"unknown email", "ghost@test.local", "secret1"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := svc.Authenticate(context.Background(), tc.email, tc.password, shared.RoleEmployee, "", "")
			if !errors.Is(err, shared.ErrInvalidCredentials) {
				t.Fatalf("expected invalid credentials, got %v", err)
			}
		})
	}
}

func TestAuthenticateRejectsInactivePrincipal(t *testing.T) {
	principal := employeePrincipal(t, "secret1")
	principal.IsActive = false
	svc, _ := newService(t, &stubRepo{principal: principal}, time.Hour)

	_, _, err := svc.Authenticate(context.Background(), "worker@test.local", "secret1", shared.RoleEmployee, "", "")
	if !errors.Is(err, shared.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
}

func TestAuthenticateRejectsUnknownRoleClaim(t *testing.T) {
	svc, _ := newService(t, &stubRepo{principal: employeePrincipal(t, "secret1")}, time.Hour)

	_, _, err := svc.Authenticate(context.Background(), "worker@test.local", "secret1", "superuser", "", "")
	if !errors.Is(err, shared.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAuthorizeGrantsAndDenies(t *testing.T) {
	svc, _ := newService(t, &stubRepo{principal: employeePrincipal(t, "secret1")}, time.Hour)

	sess, _, err := svc.Authenticate(context.Background(), "worker@test.local", "secret1", shared.RoleEmployee, "", "")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}

	got, err := svc.Authorize(context.Background(), sess.Token, shared.CapViewOwnProfile)
	if err != nil {
		t.Fatalf("authorize own profile: %v", err)
	}
	if got.PrincipalID != sess.PrincipalID {
		t.Fatalf("authorized wrong session")
	}

	if _, err := svc.Authorize(context.Background(), sess.Token, shared.CapManagePayroll); !errors.Is(err, shared.ErrCapabilityDenied) {
		t.Fatalf("expected capability denial, got %v", err)
	}
}

func TestAuthorizeExpiredToken(t *testing.T) {
	svc, mr := newService(t, &stubRepo{principal: employeePrincipal(t, "secret1")}, time.Minute)

	sess, _, err := svc.Authenticate(context.Background(), "worker@test.local", "secret1", shared.RoleEmployee, "", "")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}

	mr.FastForward(2 * time.Minute)

	if _, err := svc.Authorize(context.Background(), sess.Token, shared.CapViewOwnProfile); !errors.Is(err, shared.ErrSessionExpired) {
		t.Fatalf("expected session expiry, got %v", err)
	}
}

func TestInvalidateIsIdempotent(t *testing.T) {
	svc, _ := newService(t, &stubRepo{principal: employeePrincipal(t, "secret1")}, time.Hour)

	sess, _, err := svc.Authenticate(context.Background(), "worker@test.local", "secret1", shared.RoleEmployee, "", "")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}

	if err := svc.Invalidate(context.Background(), sess.Token); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if _, err := svc.Authorize(context.Background(), sess.Token, shared.CapViewOwnProfile); !errors.Is(err, shared.ErrSessionExpired) {
		t.Fatalf("expected revoked token to be rejected, got %v", err)
	}
	if err := svc.Invalidate(context.Background(), sess.Token); err != nil {
		t.Fatalf("second invalidate: %v", err)
	}
}
