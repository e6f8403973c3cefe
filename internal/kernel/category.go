package kernel

import (
	_ "embed"
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"
)

// Category is a named, ordered group of built-in tag options. Custom tags
// for a category are keyed by its ID and live in DomainState.
type Category struct {
	ID      string   `yaml:"id" json:"id"`
	Label   string   `yaml:"label" json:"label"`
	Options []string `yaml:"options" json:"options"`
}

// Custom reports whether the category was created by the user rather than
// shipped in the built-in catalog.
func (c Category) Custom() bool {
	return len(c.Options) == 0
}

// HasOption reports whether tag is one of the category's built-in options.
func (c Category) HasOption(tag string) bool {
	return slices.Contains(c.Options, tag)
}

func (c Category) clone() Category {
	c.Options = slices.Clone(c.Options)
	return c
}

func cloneCategories(cats []Category) []Category {
	out := make([]Category, len(cats))
	for i, c := range cats {
		out[i] = c.clone()
	}
	return out
}

//go:embed catalog.yaml
var catalogYAML []byte

var catalog map[Domain][]Category

func init() {
	var raw map[Domain][]Category
	if err := yaml.Unmarshal(catalogYAML, &raw); err != nil {
		panic("decode catalog: " + err.Error())
	}
	for d := range raw {
		if !d.Valid() {
			panic(fmt.Sprintf("catalog: unknown domain %q", d))
		}
	}
	catalog = raw
}

// DefaultCategories returns a fresh copy of the built-in categories for d.
// The free domain has none.
func DefaultCategories(d Domain) []Category {
	return cloneCategories(catalog[d])
}
