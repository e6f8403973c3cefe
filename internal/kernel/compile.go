package kernel

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	// Untitled replaces a subject that is empty after trimming.
	Untitled = "Untitled"

	// TagSeparator joins tags within a category and labels in the header.
	TagSeparator = " · "

	banner = "///▙▖▙▖▞▞▙▂▂▂▂▂▂▂▂▂▂▂▂▂▂▂▂▂▂▂▂▂▂"
)

// labelKeys is tested in order; the first label substring that matches
// wins. Both "Shapes" and "Subject" map to S, and "Color" shares C with
// "Camera", so keys are not unique.
var labelKeys = []struct {
	substr string
	key    string
}{
	{"Subject", "S"},
	{"Artist", "A"},
	{"Epoch", "E"},
	{"Realism", "R"},
	{"Lighting", "L"},
	{"Camera", "C"},
	{"Vibe", "V"},
	{"Toolkit", "U"},
	{"Type", "T"},
	{"Features", "K"},
	{"Typography", "F"},
	{"Shapes", "S"},
	{"Iconography", "I"},
	{"Color", "C"},
	{"Layout", "L"},
	{"Interaction", "N"},
}

// Input is everything the compiler reads. It never mutates any of it.
type Input struct {
	Domain     Domain
	Subject    string
	Categories []Category
	Selected   map[string]struct{}
	Custom     map[string][]string
}

// Part is one line of the compiled prompt body.
type Part struct {
	Key   string
	Label string
	Value string
}

// LabelKey derives the single-letter body key for a category label.
func LabelKey(label string) string {
	for _, lk := range labelKeys {
		if strings.Contains(label, lk.substr) {
			return lk.key
		}
	}
	for _, r := range label {
		// Full case mapping: "ß" becomes "SS" and "ﬁ" becomes "FI".
		return cases.Upper(language.Und).String(string(r))
	}
	return ""
}

// DisplayLabel is the header label: everything before the first "&",
// trimmed.
func DisplayLabel(label string) string {
	before, _, _ := strings.Cut(label, "&")
	return strings.TrimSpace(before)
}

// SubjectValue trims the subject and substitutes Untitled when empty.
func SubjectValue(subject string) string {
	if s := strings.TrimSpace(subject); s != "" {
		return s
	}
	return Untitled
}

// TagText joins a category's custom tags (newest first) followed by its
// selected built-in options in option order. A string present in both
// appears once, at its custom position.
func TagText(c Category, selected map[string]struct{}, custom map[string][]string) string {
	customTags := custom[c.ID]
	seen := make(map[string]bool, len(customTags)+len(c.Options))
	tags := make([]string, 0, len(customTags)+len(c.Options))
	add := func(t string) {
		if seen[t] {
			return
		}
		seen[t] = true
		tags = append(tags, t)
	}
	for _, t := range customTags {
		add(t)
	}
	for _, opt := range c.Options {
		if _, ok := selected[opt]; ok {
			add(opt)
		}
	}
	return strings.Join(tags, TagSeparator)
}

// Parts returns the Subject part followed by one part per category with
// non-empty tag text, in category order.
func Parts(in Input) []Part {
	parts := make([]Part, 0, len(in.Categories)+1)
	parts = append(parts, Part{Key: "S", Label: "Subject", Value: SubjectValue(in.Subject)})
	for _, c := range in.Categories {
		value := TagText(c, in.Selected, in.Custom)
		if value == "" {
			continue
		}
		parts = append(parts, Part{
			Key:   LabelKey(c.Label),
			Label: DisplayLabel(c.Label),
			Value: value,
		})
	}
	return parts
}

// Compile renders the kernel prompt. The Subject part always survives
// filtering, so the result is never empty; a state where no category
// contributes yields a prompt with the Subject line alone.
func Compile(in Input) string {
	parts := Parts(in)

	labels := make([]string, len(parts))
	lines := make([]string, len(parts))
	for i, p := range parts {
		labels[i] = p.Label
		lines[i] = p.Key + ":: " + p.Value
	}

	var b strings.Builder
	b.WriteString(banner)
	b.WriteString("\n▛///▞ ")
	b.WriteString(in.Domain.Title())
	b.WriteString(" ::\n//▞▞〔")
	b.WriteString(strings.Join(labels, TagSeparator))
	b.WriteString("〕\n")
	b.WriteString(strings.Join(lines, "\n"))
	b.WriteString("\n:: ∎\n")
	b.WriteString(in.Domain.VersionLine())
	return b.String()
}
