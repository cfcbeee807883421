package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	dErrors "aakar/pkg/domain-errors"
	"aakar/pkg/platform/httputil"
)

// JWTValidator defines the interface for validating admin tokens.
type JWTValidator interface {
	Validate(tokenString string) (subject string, err error)
}

type contextKeyAdmin struct{}

// ContextKeyAdmin is exported for use in handlers.
var ContextKeyAdmin = contextKeyAdmin{}

// GetAdmin retrieves the authenticated admin subject from the context.
func GetAdmin(ctx context.Context) string {
	subject, ok := ctx.Value(ContextKeyAdmin).(string)
	if !ok {
		return ""
	}
	return subject
}

// RequireAdmin guards admin routes with a bearer token check.
func RequireAdmin(validator JWTValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "missing bearer token"))
				return
			}
			subject, err := validator.Validate(token)
			if err != nil {
				logger.WarnContext(r.Context(), "admin token rejected",
					"request_id", GetRequestID(r.Context()),
					"error", err.Error(),
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "invalid token"))
				return
			}
			ctx := context.WithValue(r.Context(), ContextKeyAdmin, subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
