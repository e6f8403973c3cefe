package kernel

import (
	"maps"
	"slices"
)

// DomainState is the selection state owned by one domain.
//
// Selected is a single flat set of tag text shared by every category in the
// domain. A tag counts as selected for a category only because that
// category's Options contain it, so two categories sharing an option string
// cannot be toggled independently.
type DomainState struct {
	Categories []Category
	Selected   map[string]struct{}
	Custom     map[string][]string
}

func newDomainState(d Domain) *DomainState {
	return &DomainState{
		Categories: DefaultCategories(d),
		Selected:   make(map[string]struct{}),
		Custom:     make(map[string][]string),
	}
}

// IsSelected reports whether tag is in the selected set.
func (s DomainState) IsSelected(tag string) bool {
	_, ok := s.Selected[tag]
	return ok
}

// SelectedTags returns the selected set as a sorted slice.
func (s DomainState) SelectedTags() []string {
	return slices.Sorted(maps.Keys(s.Selected))
}

// Category returns the category with the given id.
func (s DomainState) Category(id string) (Category, bool) {
	for _, c := range s.Categories {
		if c.ID == id {
			return c, true
		}
	}
	return Category{}, false
}

// ActiveCount is the badge count for a category: its selected built-in
// options plus its custom tags.
func (s DomainState) ActiveCount(categoryID string) int {
	n := len(s.Custom[categoryID])
	if c, ok := s.Category(categoryID); ok {
		for _, opt := range c.Options {
			if s.IsSelected(opt) {
				n++
			}
		}
	}
	return n
}

func (s *DomainState) toggle(tag string) {
	if s.IsSelected(tag) {
		delete(s.Selected, tag)
		return
	}
	s.Selected[tag] = struct{}{}
}

// addCustom prepends tag so the newest custom tag comes first. Exact
// duplicates are ignored.
func (s *DomainState) addCustom(categoryID, tag string) bool {
	current := s.Custom[categoryID]
	if slices.Contains(current, tag) {
		return false
	}
	next := make([]string, 0, len(current)+1)
	next = append(next, tag)
	next = append(next, current...)
	s.Custom[categoryID] = next
	return true
}

func (s *DomainState) removeCustom(categoryID, tag string) bool {
	current, ok := s.Custom[categoryID]
	if !ok {
		return false
	}
	i := slices.Index(current, tag)
	if i < 0 {
		return false
	}
	next := slices.Delete(slices.Clone(current), i, i+1)
	if len(next) == 0 {
		delete(s.Custom, categoryID)
		return true
	}
	s.Custom[categoryID] = next
	return true
}

func (s *DomainState) reset(d Domain) {
	*s = *newDomainState(d)
}

func (s *DomainState) clone() *DomainState {
	out := &DomainState{
		Categories: cloneCategories(s.Categories),
		Selected:   maps.Clone(s.Selected),
		Custom:     make(map[string][]string, len(s.Custom)),
	}
	if out.Selected == nil {
		out.Selected = make(map[string]struct{})
	}
	for id, tags := range s.Custom {
		out.Custom[id] = slices.Clone(tags)
	}
	return out
}
