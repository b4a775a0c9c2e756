package middleware

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

const userIDHeader = "x-user-id"

type userIDContextKey struct{}

// Identity resolves the caller from the x-user-id header. Requests without
// the header get a fresh pseudo-identity, which effectively scopes them to
// an empty account. This is a demo affordance, not authentication.
func Identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := r.Header.Get(userIDHeader)
		if userID == "" {
			userID = fmt.Sprintf("user_%d", time.Now().UnixMilli())
		}
		ctx := context.WithValue(r.Context(), userIDContextKey{}, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserID returns the caller identity established by Identity, or "".
func UserID(ctx context.Context) string {
	if id, ok := ctx.Value(userIDContextKey{}).(string); ok {
		return id
	}
	return ""
}
