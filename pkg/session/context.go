package session

import "context"

type ctxKey struct{}

// NewContext returns a copy of ctx carrying s as the current session.
// Dropping the returned context restores the previous current session.
func NewContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the current session carried by ctx, if any.
func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(*Session)
	return s, ok && s != nil
}
