package shared

import "context"

type sessionContextKey struct{}

// ContextWithSession attaches an authorized session to the request context.
// Only the capability middleware writes it; handlers read it to learn the
// caller's principal and linked employee.
func ContextWithSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, sess)
}

// SessionFromContext returns the session set by the capability middleware,
// or nil on an ungated route.
func SessionFromContext(ctx context.Context) *Session {
	sess, _ := ctx.Value(sessionContextKey{}).(*Session)
	return sess
}
