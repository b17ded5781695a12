package httpx

import (
	"context"
	"net/http"
	"strconv"
)

type contextKey string

// contextKeyUserID carries the requester resolved by RequireUser.
const contextKeyUserID contextKey = "user_id"

// RequireUser resolves the requester identity from the X-User-ID header.
// Token verification happens upstream; by the time a request reaches this
// service the header is trusted.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get("X-User-ID")
		if raw == "" {
			writeError(w, http.StatusUnauthorized, "missing_user", "X-User-ID header is required")
			return
		}

		userID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid_user", "X-User-ID must be an integer")
			return
		}

		ctx := context.WithValue(r.Context(), contextKeyUserID, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requesterID extracts the user set by RequireUser using the comma-ok
// idiom; ok is false on routes outside the authenticated group.
func requesterID(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(contextKeyUserID).(int64)
	return userID, ok
}
