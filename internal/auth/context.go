package auth

import (
	"context"
)

type adminKey struct{}

func ContextWithAdmin(ctx context.Context, c *Claims) context.Context {
	return context.WithValue(ctx, adminKey{}, c)
}

func AdminFromContext(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(adminKey{}).(*Claims)
	return c, ok
}
