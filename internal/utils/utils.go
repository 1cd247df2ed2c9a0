package utils

import (
	"context"
)

type contextKey string

const ContextPrincipalKey contextKey = "principal"

// WithPrincipal stores the resolved identity for the duration of a request.
// The access guard is the only writer; handlers read it back through
// auth.PrincipalFromContext.
func WithPrincipal(ctx context.Context, principal any) context.Context {
	return context.WithValue(ctx, ContextPrincipalKey, principal)
}

func PrincipalValue(ctx context.Context) any {
	return ctx.Value(ContextPrincipalKey)
}
