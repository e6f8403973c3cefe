package kernel

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestWorkspaceJSON_RoundTrip(t *testing.T) {
	w := New(WithIDGenerator(counterIDs()))
	w.SetSubject("a fox")
	w.ToggleTag("Oil Painting")
	w.AddCustomTag("style", "Neon")
	w.AddCustomTag("style", "Chrome")
	w.SetDomain(DomainFree)
	c := w.CreateCategory("Mood")
	w.AddCustomTag(c.ID, "Calm")
	w.SetDomain(DomainApp)
	w.ToggleTag("Bento Grid")

	data, err := json.Marshal(w)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	got := New()
	if err := json.Unmarshal(data, got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if got.Domain() != DomainApp || got.Subject() != "a fox" {
		t.Errorf("header = %q %q", got.Domain(), got.Subject())
	}
	for _, d := range Domains() {
		if diff := cmp.Diff(w.State(d), got.State(d), cmpopts.EquateEmpty()); diff != "" {
			t.Errorf("%s state mismatch:\n%s", d, diff)
		}
	}
	if got.Prompt() != w.Prompt() {
		t.Error("prompt differs after round trip")
	}
}

func TestWorkspaceJSON_MissingDomainsDefault(t *testing.T) {
	got := New()
	if err := json.Unmarshal([]byte(`{"domain":"free","subject":"x"}`), got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if diff := cmp.Diff(DefaultCategories(DomainImage), got.State(DomainImage).Categories); diff != "" {
		t.Errorf("image defaults:\n%s", diff)
	}
}

func TestWorkspaceJSON_UnknownDomain(t *testing.T) {
	tests := []string{
		`{"domain":"video"}`,
		`{"domain":"image","states":{"video":{}}}`,
	}
	for _, doc := range tests {
		err := json.Unmarshal([]byte(doc), New())
		if !errors.Is(err, ErrUnknownDomain) {
			t.Errorf("Unmarshal(%s) = %v, want ErrUnknownDomain", doc, err)
		}
	}
}

func TestWorkspaceJSON_DropsDuplicateCustomTags(t *testing.T) {
	got := New()
	doc := `{"domain":"image","states":{"image":{"custom":{"style":["Neon","Chrome","Neon"]}}}}`
	if err := json.Unmarshal([]byte(doc), got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if n := len(got.State(DomainImage).Custom["style"]); n != 2 {
		t.Errorf("len = %d, want 2", n)
	}
}
