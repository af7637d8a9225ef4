package domain

import "context"

type CtxKey string

const (
	KeyAccountID    CtxKey = "AccountID"
	KeyAccountEmail CtxKey = "Email"
	KeyAccessToken  CtxKey = "AccessToken"
	KeySnapshot     CtxKey = "Snapshot"
	KeyRequestID    CtxKey = "RequestID"
)

// WithAccountID marks ctx as acting for accountID.
func WithAccountID(ctx context.Context, accountID string) context.Context {
	return context.WithValue(ctx, KeyAccountID, accountID)
}

// AccountIDFrom returns the authenticated account id carried by ctx.
func AccountIDFrom(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(KeyAccountID).(string)
	return id, ok && id != ""
}

type clientMetaKey struct{}

// WithClientMeta attaches the caller's network identity for rate limits and audit logs.
func WithClientMeta(ctx context.Context, meta ClientMeta) context.Context {
	return context.WithValue(ctx, clientMetaKey{}, meta)
}

func ClientMetaFrom(ctx context.Context) ClientMeta {
	meta, _ := ctx.Value(clientMetaKey{}).(ClientMeta)
	return meta
}
