package http

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"toolshare-backend/internal/api/grpc/interceptor"
	"toolshare-backend/internal/config"
	"toolshare-backend/internal/logger"
	"toolshare-backend/internal/security"
)

type contextKey string

const userIDKey contextKey = "user-id"

// UserIDFromContext returns the authenticated user set by AuthMiddleware.
func UserIDFromContext(ctx context.Context) (int32, bool) {
	id, ok := ctx.Value(userIDKey).(int32)
	return id, ok && id > 0
}

// AuthMiddleware applies the same per-endpoint security levels as the gRPC
// interceptor, keyed by "METHOD /route/template".
func AuthMiddleware(tm security.TokenManager) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			endpoint := r.Method + " " + r.URL.Path
			if route := mux.CurrentRoute(r); route != nil {
				if tpl, err := route.GetPathTemplate(); err == nil {
					endpoint = r.Method + " " + tpl
				}
			}
			if config.GetSecurityLevel(endpoint) == config.SecurityPublic {
				next.ServeHTTP(w, r)
				return
			}

			header := r.Header.Get("Authorization")
			if header == "" {
				writeJSON(w, http.StatusUnauthorized, errorBody{Error: "authorization token is not provided"})
				return
			}
			claims, err := tm.ValidateAccessToken(interceptor.BearerToken(header))
			if err != nil {
				logger.Debug("Rejected token", "endpoint", endpoint, "error", err)
				writeJSON(w, http.StatusUnauthorized, errorBody{Error: "invalid token"})
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userIDKey, claims.UserID)))
		})
	}
}
