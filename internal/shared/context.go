package shared

import (
	"context"

	"github.com/odyssey-erp/backoffice/internal/backend"
)

type sessionContextKey struct{}

// ContextWithSession stores the session in context.
func ContextWithSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, sess)
}

// SessionFromContext extracts the session from context.
func SessionFromContext(ctx context.Context) *Session {
	sess, _ := ctx.Value(sessionContextKey{}).(*Session)
	return sess
}

const databaseSessionKey = "database"

// SelectedDatabase reads the operator's dataset choice, falling back to def.
func SelectedDatabase(sess *Session, def backend.Database) backend.Database {
	if sess == nil {
		return def
	}
	if db, err := backend.ParseDatabase(sess.Get(databaseSessionKey)); err == nil {
		return db
	}
	return def
}

// SelectDatabase remembers the operator's dataset choice.
func SelectDatabase(sess *Session, db backend.Database) {
	if sess != nil {
		sess.Set(databaseSessionKey, string(db))
	}
}
