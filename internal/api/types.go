package api

import (
	"time"

	"github.com/joestump/kernel-prism/internal/kernel"
	"github.com/joestump/kernel-prism/internal/store"
)

// --- Workspace types ---

// OptionResponse is one built-in option of a category.
type OptionResponse struct {
	Tag      string `json:"tag"`
	Selected bool   `json:"selected"`
}

// CategoryResponse is one category of the active domain.
type CategoryResponse struct {
	ID           string           `json:"id"`
	Label        string           `json:"label"`
	Key          string           `json:"key"`
	DisplayLabel string           `json:"display_label"`
	Custom       bool             `json:"custom"`
	Options      []OptionResponse `json:"options"`
	CustomTags   []string         `json:"custom_tags"`
	ActiveCount  int              `json:"active_count"`
}

// WorkspaceResponse is the active domain's state plus the compiled prompt.
type WorkspaceResponse struct {
	Domain     string             `json:"domain"`
	Title      string             `json:"title"`
	Subject    string             `json:"subject"`
	Categories []CategoryResponse `json:"categories"`
	Selected   []string           `json:"selected"`
	Prompt     string             `json:"prompt"`
}

func toWorkspaceResponse(v kernel.View) WorkspaceResponse {
	resp := WorkspaceResponse{
		Domain:     v.Domain.String(),
		Title:      v.Domain.Title(),
		Subject:    v.Subject,
		Categories: make([]CategoryResponse, 0, len(v.Categories)),
		Selected:   v.Selected,
		Prompt:     v.Prompt,
	}
	if resp.Selected == nil {
		resp.Selected = []string{}
	}
	for _, c := range v.Categories {
		cr := CategoryResponse{
			ID:           c.ID,
			Label:        c.Label,
			Key:          c.Key,
			DisplayLabel: c.DisplayLabel,
			Custom:       c.Custom,
			Options:      make([]OptionResponse, len(c.Options)),
			CustomTags:   c.CustomTags,
			ActiveCount:  c.Count,
		}
		if cr.CustomTags == nil {
			cr.CustomTags = []string{}
		}
		for i, o := range c.Options {
			cr.Options[i] = OptionResponse{Tag: o.Tag, Selected: o.Selected}
		}
		resp.Categories = append(resp.Categories, cr)
	}
	return resp
}

// SetDomainRequest is the request body for PUT /api/v1/workspace/domain.
type SetDomainRequest struct {
	Domain string `json:"domain"`
}

// SetSubjectRequest is the request body for PUT /api/v1/workspace/subject.
type SetSubjectRequest struct {
	Subject string `json:"subject"`
}

// TagRequest is the request body for tag toggles and custom tag additions.
type TagRequest struct {
	Tag string `json:"tag"`
}

// CreateCategoryRequest is the request body for POST /api/v1/workspace/categories.
type CreateCategoryRequest struct {
	Name string `json:"name"`
}

// CreateCategoryResponse carries the new category and the updated workspace.
type CreateCategoryResponse struct {
	Category  CategoryResponse  `json:"category"`
	Workspace WorkspaceResponse `json:"workspace"`
}

// ResetRequest is the optional request body for POST /api/v1/workspace/reset.
// A nil ClearSubject uses the server default.
type ResetRequest struct {
	ClearSubject *bool `json:"clear_subject,omitempty"`
}

// --- Export types ---

// ExportResponse is the JSON representation of a recorded export.
type ExportResponse struct {
	ID        string    `json:"id"`
	Domain    string    `json:"domain"`
	Subject   string    `json:"subject"`
	Prompt    string    `json:"prompt"`
	CreatedAt time.Time `json:"created_at"`
}

// ExportListResponse lists a session's exports, newest first.
type ExportListResponse struct {
	Exports []ExportResponse `json:"exports"`
}

// QueuedExportResponse is returned by POST /api/v1/exports. The row is
// written asynchronously, so only the prompt is echoed.
type QueuedExportResponse struct {
	Domain string `json:"domain"`
	Prompt string `json:"prompt"`
	Queued bool   `json:"queued"`
}

func toExportResponse(x *store.Export) ExportResponse {
	return ExportResponse{
		ID:        x.ID,
		Domain:    x.Domain,
		Subject:   x.Subject,
		Prompt:    x.Prompt,
		CreatedAt: x.CreatedAt,
	}
}

// --- Render types ---

// RenderResponse is the body of a successful POST /api/v1/render.
type RenderResponse struct {
	MIMEType string `json:"mime_type"`
	DataURL  string `json:"data_url"`
	Prompt   string `json:"prompt"`
}
