package middleware

import (
	"net/http"

	"github.com/alkarmah/storefront/api/responses"
	"github.com/alkarmah/storefront/internal/session"
	"github.com/alkarmah/storefront/pkg/logger"
)

type sessionReader interface {
	Current() session.Snapshot
	RequireUser() (session.Credential, error)
}

// Session seeds the request context with the signed-in user, when there is one.
func Session(sessions sessionReader, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			snap := sessions.Current()
			ctx := r.Context()
			if snap.Authenticated() && snap.User != nil {
				ctx = WithUserID(ctx, snap.User.ID)
				if logg != nil {
					ctx = logg.WithUserID(ctx, snap.User.ID)
				}
			}
			if logg != nil {
				ctx = logg.WithField(ctx, "session_state", string(snap.State))
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireSession rejects the request unless a user is signed in with a live token.
func RequireSession(sessions sessionReader, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, err := sessions.RequireUser(); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
