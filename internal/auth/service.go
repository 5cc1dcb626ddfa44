package auth

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/atlas-hrm/atlas-hrm/internal/shared"
)

// Service is the access control gate: it authenticates principals, issues
// role-scoped sessions, and decides per request whether a role may reach a
// capability.
type Service struct {
	repo     Repository
	sessions *shared.SessionStore
	logger   *slog.Logger
}

// NewService constructs a new Service.
func NewService(repo Repository, sessions *shared.SessionStore, logger *slog.Logger) *Service {
	return &Service{repo: repo, sessions: sessions, logger: logger}
}

// Authenticate validates credentials and issues a session scoped to the
// claimed role. A correct password with the wrong claimed role fails with
// ErrRoleMismatch and no session is issued: an employee credential can never
// open an admin session.
func (s *Service) Authenticate(ctx context.Context, email, password, claimedRole, ip, ua string) (*shared.Session, *Principal, error) {
	if !shared.ValidRole(claimedRole) {
		return nil, nil, shared.ValidationError("user_type", "must be admin or employee")
	}
	principal, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, nil, shared.ErrInvalidCredentials
	}
	if !principal.IsActive {
		return nil, nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(principal.PasswordHash), []byte(password)); err != nil {
		return nil, nil, shared.ErrInvalidCredentials
	}
	if principal.Role != claimedRole {
		return nil, nil, shared.ErrRoleMismatch
	}

	sess, err := s.sessions.Issue(ctx, shared.Session{
		PrincipalID: principal.ID,
		Email:       principal.Email,
		Role:        principal.Role,
		EmployeeID:  principal.EmployeeID,
	})
	if err != nil {
		return nil, nil, err
	}
	if err := s.repo.CreateSession(ctx, sess.Token, principal.ID, sess.ExpiresAt, ip, ua); err != nil {
		// The Redis grant is authoritative; the Postgres row is an audit trail.
		if s.logger != nil {
			s.logger.Warn("record session", slog.Any("error", err))
		}
	}
	return sess, principal, nil
}

// Authorize resolves a token and decides whether its role grants the
// capability. This is the authoritative check for every directory and
// payroll operation; route gating only applies it uniformly.
func (s *Service) Authorize(ctx context.Context, token, capability string) (*shared.Session, error) {
	sess, err := s.sessions.Load(ctx, token)
	if err != nil {
		return nil, err
	}
	if !shared.RoleGrants(sess.Role, capability) {
		return nil, shared.ErrCapabilityDenied
	}
	return sess, nil
}

// Invalidate revokes the session. Idempotent: revoking an already-revoked or
// expired token succeeds.
func (s *Service) Invalidate(ctx context.Context, token string) error {
	if err := s.sessions.Revoke(ctx, token); err != nil {
		return err
	}
	if err := s.repo.DeleteSession(ctx, token); err != nil {
		if s.logger != nil {
			s.logger.Warn("delete session record", slog.Any("error", err))
		}
	}
	return nil
}

// PurgeExpiredSessions removes stale audit rows; called from the background
// worker.
func (s *Service) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	return s.repo.DeleteExpiredSessions(ctx, time.Now().UTC())
}
