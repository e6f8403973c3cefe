package api_test

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/joestump/kernel-prism/internal/api"
)

func TestWorkspace_GetDefaults(t *testing.T) {
	env := newTestEnv(t)
	resp := env.workspace(t, http.MethodGet, "/workspace", nil)

	if resp.Domain != "image" || resp.Title != "SAERLCV KERNEL" {
		t.Errorf("domain/title = %q/%q", resp.Domain, resp.Title)
	}
	if len(resp.Categories) != 6 {
		t.Errorf("len(categories) = %d, want 6", len(resp.Categories))
	}
	if !strings.Contains(resp.Prompt, "S:: Untitled") {
		t.Errorf("prompt missing untitled subject:\n%s", resp.Prompt)
	}
	if resp.Selected == nil {
		t.Error("selected should encode as [] not null")
	}
}

func TestWorkspace_BuildPrompt(t *testing.T) {
	env := newTestEnv(t)
	env.workspace(t, http.MethodPut, "/workspace/subject", api.SetSubjectRequest{Subject: "  a lighthouse  "})
	env.workspace(t, http.MethodPost, "/workspace/tags/toggle", api.TagRequest{Tag: "Oil Painting"})
	resp := env.workspace(t, http.MethodPost, "/workspace/categories/style/custom-tags", api.TagRequest{Tag: "  Neon  "})

	if resp.Subject != "  a lighthouse  " {
		t.Errorf("subject = %q, want verbatim", resp.Subject)
	}
	if !strings.Contains(resp.Prompt, "S:: a lighthouse") {
		t.Errorf("prompt missing trimmed subject:\n%s", resp.Prompt)
	}
	if !strings.Contains(resp.Prompt, "Neon · Oil Painting") {
		t.Errorf("prompt missing custom-first tag text:\n%s", resp.Prompt)
	}
	for _, c := range resp.Categories {
		if c.ID == "style" {
			if c.ActiveCount != 2 {
				t.Errorf("style active_count = %d, want 2", c.ActiveCount)
			}
			if diff := cmp.Diff([]string{"Neon"}, c.CustomTags); diff != "" {
				t.Errorf("custom tags (-want +got):\n%s", diff)
			}
		}
	}
}

func TestWorkspace_DomainSwitchIsolation(t *testing.T) {
	env := newTestEnv(t)
	env.workspace(t, http.MethodPost, "/workspace/tags/toggle", api.TagRequest{Tag: "Golden Hour"})

	app := env.workspace(t, http.MethodPut, "/workspace/domain", api.SetDomainRequest{Domain: "APP"})
	if app.Domain != "app" {
		t.Fatalf("domain = %q, want app", app.Domain)
	}
	if len(app.Selected) != 0 {
		t.Errorf("app selection = %v, want empty", app.Selected)
	}

	img := env.workspace(t, http.MethodPut, "/workspace/domain", api.SetDomainRequest{Domain: "image"})
	if diff := cmp.Diff([]string{"Golden Hour"}, img.Selected); diff != "" {
		t.Errorf("image selection after round trip (-want +got):\n%s", diff)
	}
}

func TestWorkspace_InvalidDomain(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodPut, "/workspace/domain", api.SetDomainRequest{Domain: "video"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if got := decodeError(t, rec).Code; got != "INVALID_DOMAIN" {
		t.Errorf("code = %q, want INVALID_DOMAIN", got)
	}
	if resp := env.workspace(t, http.MethodGet, "/workspace", nil); resp.Domain != "image" {
		t.Errorf("domain changed to %q", resp.Domain)
	}
}

func TestWorkspace_UnknownFieldRejected(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodPut, "/workspace/subject", map[string]string{"title": "x"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestWorkspace_CreateCategory(t *testing.T) {
	env := newTestEnv(t)
	env.workspace(t, http.MethodPut, "/workspace/domain", api.SetDomainRequest{Domain: "free"})

	rec := env.do(t, http.MethodPost, "/workspace/categories", api.CreateCategoryRequest{Name: " Mood & Tone "})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201; body: %s", rec.Code, rec.Body.String())
	}
	var resp api.CreateCategoryResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	c := resp.Category
	if !strings.HasPrefix(c.ID, "custom-") || c.Label != "Mood & Tone" || !c.Custom {
		t.Errorf("category = %+v", c)
	}
	if c.Key != "M" || c.DisplayLabel != "Mood" {
		t.Errorf("key/display = %q/%q, want M/Mood", c.Key, c.DisplayLabel)
	}

	ws := env.workspace(t, http.MethodPost, "/workspace/categories/"+c.ID+"/custom-tags", api.TagRequest{Tag: "Calm"})
	if !strings.Contains(ws.Prompt, "〔Subject · Mood〕") || !strings.Contains(ws.Prompt, "M:: Calm") {
		t.Errorf("prompt:\n%s", ws.Prompt)
	}
}

func TestWorkspace_CreateCategoryEmptyName(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodPost, "/workspace/categories", api.CreateCategoryRequest{Name: "   "})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", rec.Code)
	}
}

func TestWorkspace_EmptyCustomTag(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodPost, "/workspace/categories/style/custom-tags", api.TagRequest{Tag: " "})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	if got := decodeError(t, rec).Code; got != "EMPTY_TAG" {
		t.Errorf("code = %q, want EMPTY_TAG", got)
	}
}

func TestWorkspace_RemoveCustomTag(t *testing.T) {
	env := newTestEnv(t)
	env.workspace(t, http.MethodPost, "/workspace/categories/style/custom-tags", api.TagRequest{Tag: "Neon Glow"})

	resp := env.workspace(t, http.MethodDelete, "/workspace/categories/style/custom-tags/Neon%20Glow", nil)
	for _, c := range resp.Categories {
		if c.ID == "style" && len(c.CustomTags) != 0 {
			t.Errorf("custom tags = %v, want empty", c.CustomTags)
		}
	}

	// Absent tags are a no-op.
	env.workspace(t, http.MethodDelete, "/workspace/categories/style/custom-tags/missing", nil)
}

func TestWorkspace_RemoveCustomTagWithSlash(t *testing.T) {
	env := newTestEnv(t)
	env.workspace(t, http.MethodPost, "/workspace/categories/style/custom-tags", api.TagRequest{Tag: "A/B"})

	resp := env.workspace(t, http.MethodDelete, "/workspace/categories/style/custom-tags/A%2FB", nil)
	for _, c := range resp.Categories {
		if c.ID == "style" && len(c.CustomTags) != 0 {
			t.Errorf("custom tags = %v, want empty", c.CustomTags)
		}
	}
}

func TestWorkspace_Reset(t *testing.T) {
	keep := false
	tests := []struct {
		name        string
		serverClear bool
		body        any
		wantSubject string
	}{
		{"server default clears", true, nil, ""},
		{"server default keeps", false, nil, "fox"},
		{"request overrides", true, api.ResetRequest{ClearSubject: &keep}, "fox"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, withResetClearsSubject(tt.serverClear))
			env.workspace(t, http.MethodPut, "/workspace/subject", api.SetSubjectRequest{Subject: "fox"})
			env.workspace(t, http.MethodPost, "/workspace/tags/toggle", api.TagRequest{Tag: "Golden Hour"})
			env.createCategory(t, "Extra")

			resp := env.workspace(t, http.MethodPost, "/workspace/reset", tt.body)
			if resp.Subject != tt.wantSubject {
				t.Errorf("subject = %q, want %q", resp.Subject, tt.wantSubject)
			}
			if len(resp.Selected) != 0 || len(resp.Categories) != 6 {
				t.Errorf("reset left selected=%v categories=%d", resp.Selected, len(resp.Categories))
			}
		})
	}
}

func TestPrompt_PlainText(t *testing.T) {
	env := newTestEnv(t)
	env.workspace(t, http.MethodPut, "/workspace/domain", api.SetDomainRequest{Domain: "app"})
	env.workspace(t, http.MethodPut, "/workspace/subject", api.SetSubjectRequest{Subject: "Yoga Tracker"})

	rec := env.do(t, http.MethodGet, "/prompt", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("Content-Type = %q", ct)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "▛///▞ APP-GEN KERNEL ::") || !strings.HasSuffix(body, ":: ∎\n") {
		t.Errorf("prompt:\n%s", body)
	}
}
