package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/alexedwards/scs/v2"
)

type contextKey string

const identityContextKey contextKey = "identity"

const (
	SessionSubjectKey = "user_sub"
	SessionEmailKey   = "user_email"
	SessionNameKey    = "user_name"
)

// Identity is the signed-in user as recorded in the session.
type Identity struct {
	Subject string
	Email   string
	Name    string
}

// PutIdentity stores id in the session.
func PutIdentity(ctx context.Context, sm *scs.SessionManager, id Identity) {
	sm.Put(ctx, SessionSubjectKey, id.Subject)
	sm.Put(ctx, SessionEmailKey, id.Email)
	sm.Put(ctx, SessionNameKey, id.Name)
}

// ClearIdentity removes any identity from the session.
func ClearIdentity(ctx context.Context, sm *scs.SessionManager) {
	sm.Remove(ctx, SessionSubjectKey)
	sm.Remove(ctx, SessionEmailKey)
	sm.Remove(ctx, SessionNameKey)
}

// Identify sets the session's Identity, if any, on the request context.
// Requests without one pass through unchanged.
func Identify(sm *scs.SessionManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sub := sm.GetString(r.Context(), SessionSubjectKey)
			if sub == "" {
				next.ServeHTTP(w, r)
				return
			}
			id := &Identity{
				Subject: sub,
				Email:   sm.GetString(r.Context(), SessionEmailKey),
				Name:    sm.GetString(r.Context(), SessionNameKey),
			}
			ctx := context.WithValue(r.Context(), identityContextKey, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth redirects to /auth/login when no identity is on the context.
// Must be used after Identify.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if IdentityFromContext(r.Context()) == nil {
			http.Redirect(w, r, "/auth/login?redirect="+url.QueryEscape(r.URL.RequestURI()), http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAuthAPI is RequireAuth for JSON clients: it answers 401 instead of
// redirecting.
func RequireAuthAPI(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if IdentityFromContext(r.Context()) == nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"error": "authentication required",
				"code":  "UNAUTHORIZED",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// IdentityFromContext returns the signed-in identity, or nil.
func IdentityFromContext(ctx context.Context) *Identity {
	id, _ := ctx.Value(identityContextKey).(*Identity)
	return id
}

// SubjectFromContext returns the signed-in subject, or "".
func SubjectFromContext(ctx context.Context) string {
	if id := IdentityFromContext(ctx); id != nil {
		return id.Subject
	}
	return ""
}
