package server

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const (
	// UserHeader carries an authenticated user id set by an upstream gateway.
	UserHeader = "X-User-ID"

	// SessionCookie identifies anonymous visitors across visits.
	SessionCookie = "odds_session"

	sessionMaxAge = 365 * 24 * time.Hour
)

type ctxKey struct{}

// Identify attaches the caller's user id to the request context. It prefers
// the gateway header, then the session cookie, and otherwise issues a new
// anonymous session.
func Identify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := r.Header.Get(UserHeader)

		if userID == "" {
			if c, err := r.Cookie(SessionCookie); err == nil {
				if _, err := uuid.Parse(c.Value); err == nil {
					userID = c.Value
				}
			}
		}

		if userID == "" {
			userID = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     SessionCookie,
				Value:    userID,
				Path:     "/",
				MaxAge:   int(sessionMaxAge.Seconds()),
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}

		ctx := context.WithValue(r.Context(), ctxKey{}, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserID returns the caller id stored by Identify.
func UserID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}
