package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/joestump/kernel-prism/internal/api"
	"github.com/joestump/kernel-prism/internal/imagegen"
	"github.com/joestump/kernel-prism/internal/session"
	"github.com/joestump/kernel-prism/internal/store"
	"github.com/joestump/kernel-prism/internal/testutil"
)

// testEnv holds the router and stores needed for API integration tests.
// It replays the session cookie so consecutive requests share a workspace.
type testEnv struct {
	Router      http.Handler
	ExportStore *store.ExportStore
	ExportCh    chan store.ExportEvent
	cookie      *http.Cookie
	cookieName  string
}

type envOption func(*api.Deps)

func withRenderer(g imagegen.Generator) envOption {
	return func(d *api.Deps) { d.Renderer = g }
}

func withResetClearsSubject(v bool) envOption {
	return func(d *api.Deps) { d.ResetClearsSubject = v }
}

// newTestEnv creates an in-memory SQLite test database, runs migrations,
// and wires up the API router behind a real session manager.
func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()
	db := testutil.NewTestDB(t)

	sm := session.NewManager(db, "sqlite3", time.Hour, false)
	es := store.NewExportStore(db)
	ch := make(chan store.ExportEvent, 16)

	deps := api.Deps{
		Workspaces:         session.NewWorkspaces(sm),
		ExportStore:        es,
		ExportCh:           ch,
		Logger:             zap.NewNop(),
		ResetClearsSubject: true,
	}
	for _, opt := range opts {
		opt(&deps)
	}

	return &testEnv{
		Router:      sm.LoadAndSave(api.NewAPIRouter(deps)),
		ExportStore: es,
		ExportCh:    ch,
		cookieName:  sm.Cookie.Name,
	}
}

// do sends a request with an optional JSON body and records the response.
func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if e.cookie != nil {
		req.AddCookie(e.cookie)
	}
	rec := httptest.NewRecorder()
	e.Router.ServeHTTP(rec, req)
	for _, c := range rec.Result().Cookies() {
		if c.Name == e.cookieName {
			e.cookie = c
		}
	}
	return rec
}

// workspace sends a request expected to return 200 with a workspace body.
func (e *testEnv) workspace(t *testing.T, method, path string, body any) api.WorkspaceResponse {
	t.Helper()
	rec := e.do(t, method, path, body)
	if rec.Code != http.StatusOK {
		t.Fatalf("%s %s: status = %d, want 200; body: %s", method, path, rec.Code, rec.Body.String())
	}
	var resp api.WorkspaceResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return resp
}

// createCategory creates a custom category and returns the created response.
func (e *testEnv) createCategory(t *testing.T, name string) api.CreateCategoryResponse {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/workspace/categories", api.CreateCategoryRequest{Name: name})
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST /workspace/categories: status = %d, want 201; body: %s", rec.Code, rec.Body.String())
	}
	var resp api.CreateCategoryResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return resp
}

// flushExports writes every queued export event synchronously.
func (e *testEnv) flushExports(t *testing.T) {
	t.Helper()
	for {
		select {
		case ev := <-e.ExportCh:
			if _, err := e.ExportStore.Record(context.Background(), ev); err != nil {
				t.Fatalf("record export: %v", err)
			}
		default:
			return
		}
	}
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) api.ErrorResponse {
	t.Helper()
	var resp api.ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode error body: %v; body: %s", err, rec.Body.String())
	}
	return resp
}

type fakeRenderer struct {
	img    *imagegen.Image
	err    error
	prompt string
}

func (f *fakeRenderer) Render(_ context.Context, prompt string) (*imagegen.Image, error) {
	f.prompt = prompt
	return f.img, f.err
}
