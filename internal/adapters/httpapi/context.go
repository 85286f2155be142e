package httpapi

import (
	"context"

	"clubtracker-backend/internal/platform/auth"
)

type sessionKey struct{}

func WithSession(ctx context.Context, s auth.Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

func SessionFromContext(ctx context.Context) (auth.Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(auth.Session)
	return s, ok && s.MemberID != ""
}
