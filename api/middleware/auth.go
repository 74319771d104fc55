package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/kitchenequip/equipment-backend/api/responses"
	pkgAuth "github.com/kitchenequip/equipment-backend/pkg/auth"
	"github.com/kitchenequip/equipment-backend/pkg/auth/session"
	"github.com/kitchenequip/equipment-backend/pkg/config"
	pkgerrors "github.com/kitchenequip/equipment-backend/pkg/errors"
	"github.com/kitchenequip/equipment-backend/pkg/logger"
)

// Auth validates a bearer token and seeds the request context with the
// caller's id, user type and token id. A nil verifier skips the session check.
func Auth(cfg config.JWTConfig, verifier session.AccessSessionChecker, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			token := raw
			if strings.HasPrefix(strings.ToLower(token), "bearer ") {
				token = strings.TrimSpace(token[7:])
			}
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "Missing credentials."))
				return
			}

			claims, err := pkgAuth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "Invalid token."))
				return
			}

			if claims.ID == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "Missing session id."))
				return
			}

			if verifier != nil {
				ok, err := verifier.HasSession(r.Context(), claims.ID)
				if err != nil {
					responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "validate session"))
					return
				}
				if !ok {
					responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "Session expired."))
					return
				}
			}

			ctx := context.WithValue(r.Context(), ctxUserID, claims.UserID)
			ctx = context.WithValue(ctx, ctxUserType, claims.UserType)
			ctx = context.WithValue(ctx, ctxAccessID, claims.ID)

			if logg != nil {
				ctx = logg.WithActorID(ctx, claims.UserID)
				ctx = logg.WithActorRole(ctx, string(claims.UserType))
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
