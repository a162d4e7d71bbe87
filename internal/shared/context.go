package shared

import "context"

// Flash kinds understood by the layout template.
const (
	FlashSuccess = "success"
	FlashError   = "error"
	FlashInfo    = "info"
)

type ctxKey int

const sessionKey ctxKey = iota

// ContextWithSession attaches the request's session.
func ContextWithSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, sessionKey, sess)
}

// SessionFromContext returns the request's session or nil outside the
// session middleware.
func SessionFromContext(ctx context.Context) *Session {
	sess, _ := ctx.Value(sessionKey).(*Session)
	return sess
}

// CurrentUser returns the signed-in operator. It reports false for anonymous
// requests and for sessions whose token was cleared.
func CurrentUser(ctx context.Context) (SessionUser, bool) {
	sess := SessionFromContext(ctx)
	if !sess.Authenticated() {
		return SessionUser{}, false
	}
	return sess.User()
}

// AddFlash queues a flash on the request's session. Requests without one
// drop the message.
func AddFlash(ctx context.Context, kind, message string) {
	if sess := SessionFromContext(ctx); sess != nil {
		sess.AddFlash(FlashMessage{Kind: kind, Message: message})
	}
}
