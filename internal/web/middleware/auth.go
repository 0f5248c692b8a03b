package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/mandjevant/noteboard/internal/logging"
	"github.com/mandjevant/noteboard/internal/model"
)

// SessionCookie is the name of the login session cookie.
const SessionCookie = "noteboard_session"

// SessionValidator resolves a session token to its user.
type SessionValidator interface {
	ValidateSession(ctx context.Context, token string) (*model.User, error)
}

type userContextKey struct{}

// ContextWithUser returns a context carrying the authenticated user.
func ContextWithUser(ctx context.Context, user *model.User) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// UserFromContext returns the authenticated user, if any.
func UserFromContext(ctx context.Context) (*model.User, bool) {
	user, ok := ctx.Value(userContextKey{}).(*model.User)
	return user, ok && user != nil
}

// SessionAuth resolves the session cookie into a user and stores it in the
// request context. Requests without a valid session pass through
// unauthenticated; route-level guards decide what that means.
func SessionAuth(v SessionValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookie)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(w, r)
				return
			}

			user, err := v.ValidateSession(r.Context(), cookie.Value)
			if err != nil {
				// Expired or revoked; clear the stale cookie.
				http.SetCookie(w, &http.Cookie{
					Name:     SessionCookie,
					Value:    "",
					Path:     "/",
					MaxAge:   -1,
					HttpOnly: true,
				})
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(ContextWithUser(r.Context(), user)))
		})
	}
}

// RequireUser rejects unauthenticated requests. API requests get a 401 JSON
// body; page requests are redirected to the login page.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := UserFromContext(r.Context()); !ok {
			deny(w, r, http.StatusUnauthorized, "Not authenticated")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireSuperuser rejects requests from non-superusers.
func RequireSuperuser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFromContext(r.Context())
		if !ok {
			deny(w, r, http.StatusUnauthorized, "Not authenticated")
			return
		}
		if !user.IsSuperuser {
			logging.FromContext(r.Context()).Warn("forbidden",
				"path", r.URL.Path,
				"user_id", user.ID,
			)
			deny(w, r, http.StatusForbidden, "The user doesn't have enough privileges")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func deny(w http.ResponseWriter, r *http.Request, status int, detail string) {
	if wantsJSON(r) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]string{"detail": detail})
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// wantsJSON reports whether the client should get a JSON error instead of a
// redirect to the login page.
func wantsJSON(r *http.Request) bool {
	if r.Header.Get("HX-Request") == "true" {
		return false
	}
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		return true
	}
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		return true
	}
	return strings.HasPrefix(r.URL.Path, "/api/")
}
