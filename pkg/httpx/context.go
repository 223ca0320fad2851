package httpx

import "context"

type ctxKey string

const (
	CtxKeySubjectID ctxKey = "subject_id"
	CtxKeyEmail     ctxKey = "email"
	CtxKeyUsername  ctxKey = "username"
	CtxKeySession   ctxKey = "session_token"
)

// SubjectIDFromCtx returns the authenticated subject id injected by the
// session guard, or "" for unauthenticated requests.
func SubjectIDFromCtx(ctx context.Context) string {
	if v, ok := ctx.Value(CtxKeySubjectID).(string); ok {
		return v
	}
	return ""
}

// SessionTokenFromCtx returns the raw session credential for the request,
// for handlers that revalidate it against the identity provider.
func SessionTokenFromCtx(ctx context.Context) string {
	if v, ok := ctx.Value(CtxKeySession).(string); ok {
		return v
	}
	return ""
}
