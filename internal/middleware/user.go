package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// UserIDHeader carries the caller's claimed identity. It is trusted as-is:
// identity verification is out of scope for this service, and the value is
// used purely as an opaque partition key.
const UserIDHeader = "X-User-Id"

// ctxKey is unexported so no other package can forge or collide with our
// context entries.
type ctxKey int

const userIDKey ctxKey = iota

// UserID extracts and parses the X-User-Id header, rejecting the request
// with 400 before the handler runs if the header is missing, blank, or not
// a UUID. On success the parsed UUID travels in the request context.
func UserID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := strings.TrimSpace(r.Header.Get(UserIDHeader))
		if raw == "" {
			rejectRequest(w, "missing "+UserIDHeader+" header")
			return
		}

		userID, err := uuid.Parse(raw)
		if err != nil {
			rejectRequest(w, "invalid "+UserIDHeader+" header")
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserIDFrom returns the user id stored by the UserID middleware.
// The second return is false when the middleware did not run — handlers
// treat that as a missing header rather than panicking.
func UserIDFrom(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(userIDKey).(uuid.UUID)
	return id, ok
}

// rejectRequest writes the same {"error","message"} shape the handler
// package uses, so middleware failures look like any other API error.
func rejectRequest(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	json.NewEncoder(w).Encode(map[string]string{
		"error":   "validation_error",
		"message": message,
	})
}
