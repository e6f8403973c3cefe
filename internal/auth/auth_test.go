package auth

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/alexedwards/scs/v2/memstore"
)

func TestGeneratePKCE(t *testing.T) {
	verifier, challenge, err := GeneratePKCE()
	if err != nil {
		t.Fatalf("GeneratePKCE: %v", err)
	}
	h := sha256.Sum256([]byte(verifier))
	if want := base64.RawURLEncoding.EncodeToString(h[:]); challenge != want {
		t.Errorf("challenge = %q, want S256(verifier) %q", challenge, want)
	}
}

func TestGenerateState_Unique(t *testing.T) {
	a, err := GenerateState()
	if err != nil {
		t.Fatalf("GenerateState: %v", err)
	}
	b, _ := GenerateState()
	if a == "" || a == b {
		t.Errorf("states should be non-empty and distinct: %q %q", a, b)
	}
}

func TestSafeRedirect(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", "/"},
		{"/", "/"},
		{"/?domain=app", "/?domain=app"},
		{"https://evil.example", "/"},
		{"//evil.example", "/"},
		{"/\\evil.example", "/"},
		{"relative", "/"},
	}
	for _, tt := range tests {
		if got := safeRedirect(tt.in); got != tt.want {
			t.Errorf("safeRedirect(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func newMemSessions() *scs.SessionManager {
	sm := scs.New()
	sm.Store = memstore.NewWithCleanupInterval(time.Minute)
	return sm
}

func TestIdentify(t *testing.T) {
	sm := newMemSessions()

	var got *Identity
	probe := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = IdentityFromContext(r.Context())
	})

	// Anonymous requests pass through.
	rec := httptest.NewRecorder()
	sm.LoadAndSave(Identify(sm)(probe)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if got != nil {
		t.Fatalf("anonymous identity = %+v, want nil", got)
	}

	// Sign in, then replay the cookie.
	rec = httptest.NewRecorder()
	signIn := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		PutIdentity(r.Context(), sm, Identity{Subject: "sub-1", Email: "a@example.com"})
	})
	sm.LoadAndSave(signIn).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	cookies := rec.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("expected session cookie")
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	sm.LoadAndSave(Identify(sm)(probe)).ServeHTTP(httptest.NewRecorder(), req)
	if got == nil || got.Subject != "sub-1" || got.Email != "a@example.com" {
		t.Errorf("identity = %+v", got)
	}
}

func TestRequireAuth(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	rec := httptest.NewRecorder()
	RequireAuth(ok).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/?x=1", nil))
	if rec.Code != http.StatusFound {
		t.Fatalf("anonymous status = %d, want 302", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/auth/login?redirect=%2F%3Fx%3D1" {
		t.Errorf("Location = %q", loc)
	}

	rec = httptest.NewRecorder()
	RequireAuthAPI(ok).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/workspace", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("API anonymous status = %d, want 401", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(context.WithValue(req.Context(), identityContextKey, &Identity{Subject: "sub-1"}))
	rec = httptest.NewRecorder()
	RequireAuth(ok).ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Errorf("signed-in status = %d, want 204", rec.Code)
	}
}

func TestCallback_RejectsBadState(t *testing.T) {
	h := NewHandlers(nil, newMemSessions(), nil, false)
	req := httptest.NewRequest(http.MethodGet, "/auth/callback?state=abc", nil)
	req.AddCookie(&http.Cookie{Name: cookieState, Value: "xyz"})
	rec := httptest.NewRecorder()
	h.Callback(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}
