package kernel

import (
	"errors"
	"testing"
)

func TestParseDomain(t *testing.T) {
	tests := []struct {
		in      string
		want    Domain
		wantErr error
	}{
		{in: "image", want: DomainImage},
		{in: "app", want: DomainApp},
		{in: "free", want: DomainFree},
		{in: " IMAGE ", want: DomainImage},
		{in: "App", want: DomainApp},
		{in: "", wantErr: ErrUnknownDomain},
		{in: "video", wantErr: ErrUnknownDomain},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDomain(tt.in)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ParseDomain(%q) err = %v, want %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseDomain(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestDomainTitles(t *testing.T) {
	tests := []struct {
		d       Domain
		title   string
		version string
	}{
		{DomainImage, "SAERLCV KERNEL", "--v 6.0"},
		{DomainApp, "APP-GEN KERNEL", ""},
		{DomainFree, "FREE KERNEL", ""},
	}
	for _, tt := range tests {
		if got := tt.d.Title(); got != tt.title {
			t.Errorf("%s.Title() = %q, want %q", tt.d, got, tt.title)
		}
		if got := tt.d.VersionLine(); got != tt.version {
			t.Errorf("%s.VersionLine() = %q, want %q", tt.d, got, tt.version)
		}
		if tt.d.Label() == "" || tt.d.Placeholder() == "" {
			t.Errorf("%s: empty label or placeholder", tt.d)
		}
	}
}

func TestDefaultCategories_Catalog(t *testing.T) {
	wantIDs := map[Domain][]string{
		DomainImage: {"style", "epoch", "realism", "lighting", "camera", "vibe"},
		DomainApp:   {"toolkit", "type", "features", "typography", "shapes", "iconography", "colors", "layout", "interaction"},
		DomainFree:  {},
	}
	for d, ids := range wantIDs {
		cats := DefaultCategories(d)
		if len(cats) != len(ids) {
			t.Fatalf("%s: %d categories, want %d", d, len(cats), len(ids))
		}
		for i, c := range cats {
			if c.ID != ids[i] {
				t.Errorf("%s[%d].ID = %q, want %q", d, i, c.ID, ids[i])
			}
			if len(c.Options) == 0 {
				t.Errorf("%s/%s has no options", d, c.ID)
			}
		}
	}
	style := DefaultCategories(DomainImage)[0]
	if style.Label != "Artist & Style" || style.Options[7] != "Zdzisław Beksiński" || !style.HasOption("Pixel Art") {
		t.Errorf("style = %+v", style)
	}
	camera := DefaultCategories(DomainImage)[4]
	if camera.Options[len(camera.Options)-1] != "f/1.8" {
		t.Errorf("camera options = %v", camera.Options)
	}
}
