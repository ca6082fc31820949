package httpx

import "context"

type ctxKey string

const (
	// CtxKeyAccountID carries the authenticated account id (int64).
	CtxKeyAccountID ctxKey = "account_id"

	// CtxKeySessionID carries the session's jti (string), used for logout.
	CtxKeySessionID ctxKey = "session_id"
)

// AccountIDFromCtx returns the authenticated account id, or false when the
// request carries no resolved session.
func AccountIDFromCtx(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(CtxKeyAccountID).(int64)
	return id, ok
}

// SessionIDFromCtx returns the session id (jti) of the resolved session.
func SessionIDFromCtx(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(CtxKeySessionID).(string)
	return id, ok
}
