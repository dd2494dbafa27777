package middleware

import (
	"net/http"
	"strings"

	"github.com/josh-kwaku/bank-backoffice/internal/auth"
	"github.com/josh-kwaku/bank-backoffice/internal/handler"
	"github.com/josh-kwaku/bank-backoffice/internal/logging"
)

// AdminAuth rejects requests without a valid admin bearer token and stores
// the token's claims on the request context.
func AdminAuth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				handler.RespondAppError(w, handler.ErrMissingToken, nil)
				return
			}

			token, found := strings.CutPrefix(header, "Bearer ")
			if !found || token == "" {
				handler.RespondAppError(w, handler.ErrInvalidToken, nil)
				return
			}

			claims, err := auth.ValidateToken(token, secret)
			if err != nil {
				logging.FromContext(r.Context()).Warn("admin token rejected", "error", err)
				handler.RespondAppError(w, handler.ErrInvalidToken, nil)
				return
			}

			ctx := auth.ContextWithAdmin(r.Context(), claims)
			ctx = logging.WithLogger(ctx, logging.FromContext(ctx).With("admin_id", claims.AdminID))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
