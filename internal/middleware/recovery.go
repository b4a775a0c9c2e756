package middleware

import (
	"net/http"
	"runtime/debug"

	"go.uber.org/zap"

	"branchpoint-backend/pkg/api"
)

// Recovery converts panics into 500 responses instead of dropped
// connections.
func Recovery(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("panic recovered",
						zap.Any("panic", err),
						zap.String("requestId", GetRequestID(r.Context())),
						zap.String("path", r.URL.Path),
						zap.ByteString("stack", debug.Stack()),
					)
					if w.Header().Get("Content-Type") == "" {
						api.Error(w, http.StatusInternalServerError, "Internal server error")
					}
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
