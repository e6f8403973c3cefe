package kernel

import (
	"slices"

	"github.com/google/uuid"
)

// Workspace owns the whole builder state: the active domain, the global
// subject, and one DomainState per domain. All mutation goes through its
// methods, and every tag or category operation targets the active domain.
// A Workspace is not safe for concurrent use; callers serialize access.
type Workspace struct {
	domain  Domain
	subject string
	states  map[Domain]*DomainState
	newID   func() string
}

// Option configures a Workspace.
type Option func(*Workspace)

// WithIDGenerator overrides how custom category ids are minted. The
// generator must never repeat a value.
func WithIDGenerator(fn func() string) Option {
	return func(w *Workspace) { w.newID = fn }
}

// NewCategoryID mints a category id that cannot collide with built-in ids
// or with ids minted before a reset.
func NewCategoryID() string {
	return "custom-" + uuid.NewString()
}

// New returns a workspace on the image domain with every domain at its
// built-in defaults.
func New(opts ...Option) *Workspace {
	w := &Workspace{
		domain: DomainImage,
		states: make(map[Domain]*DomainState, 3),
		newID:  NewCategoryID,
	}
	for _, d := range Domains() {
		w.states[d] = newDomainState(d)
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Domain returns the active domain.
func (w *Workspace) Domain() Domain { return w.domain }

// Subject returns the raw, untrimmed subject.
func (w *Workspace) Subject() string { return w.subject }

// State returns a copy of the state held for d.
func (w *Workspace) State(d Domain) DomainState {
	s, ok := w.states[d]
	if !ok {
		return *newDomainState(d)
	}
	return *s.clone()
}

func (w *Workspace) active() *DomainState {
	return w.states[w.domain]
}

// SetDomain switches the active domain. Other domains keep their state.
// Values outside the three domains are ignored; use ParseDomain at input
// boundaries.
func (w *Workspace) SetDomain(d Domain) {
	if !d.Valid() {
		return
	}
	w.domain = d
}

// SetSubject stores the subject verbatim. Trimming happens at compile time.
func (w *Workspace) SetSubject(s string) {
	w.subject = s
}

// ToggleTag flips tag in the active domain's selected set. Tags that no
// category offers may be toggled; they never reach the prompt.
func (w *Workspace) ToggleTag(tag string) {
	w.active().toggle(tag)
}

// AddCustomTag prepends tag to the category's custom tags. Adding a tag
// that is already present changes nothing. categoryID is not checked
// against the category list.
func (w *Workspace) AddCustomTag(categoryID, tag string) {
	w.active().addCustom(categoryID, tag)
}

// RemoveCustomTag drops tag from the category's custom tags if present.
func (w *Workspace) RemoveCustomTag(categoryID, tag string) {
	w.active().removeCustom(categoryID, tag)
}

// CreateCategory appends an empty category labelled name to the active
// domain and returns it.
func (w *Workspace) CreateCategory(name string) Category {
	c := Category{ID: w.newID(), Label: name, Options: []string{}}
	s := w.active()
	s.Categories = append(s.Categories, c)
	return c.clone()
}

// ResetDomain restores the active domain's built-in categories and clears
// its selections and custom tags. The subject is left alone.
func (w *Workspace) ResetDomain() {
	w.active().reset(w.domain)
}

// ResetDomainAndSubject is ResetDomain followed by clearing the subject.
func (w *Workspace) ResetDomainAndSubject() {
	w.ResetDomain()
	w.subject = ""
}

// Input returns the compiler input for the active domain. The returned
// value shares storage with the workspace and must not be modified.
func (w *Workspace) Input() Input {
	s := w.active()
	return Input{
		Domain:     w.domain,
		Subject:    w.subject,
		Categories: s.Categories,
		Selected:   s.Selected,
		Custom:     s.Custom,
	}
}

// Prompt compiles the active domain.
func (w *Workspace) Prompt() string {
	return Compile(w.Input())
}

// OptionView is a built-in option with its selection flag.
type OptionView struct {
	Tag      string
	Selected bool
}

// CategoryView is a category as the presentation layer renders it.
type CategoryView struct {
	ID           string
	Label        string
	Key          string
	DisplayLabel string
	Custom       bool
	Options      []OptionView
	CustomTags   []string
	Count        int
}

// View is a read-only snapshot of the active domain plus the compiled
// prompt. It shares no storage with the workspace.
type View struct {
	Domain     Domain
	Subject    string
	Categories []CategoryView
	Selected   []string
	CustomTags map[string][]string
	Prompt     string
}

// View snapshots the active domain.
func (w *Workspace) View() View {
	s := w.active()
	v := View{
		Domain:     w.domain,
		Subject:    w.subject,
		Categories: make([]CategoryView, 0, len(s.Categories)),
		Selected:   s.SelectedTags(),
		CustomTags: make(map[string][]string, len(s.Custom)),
		Prompt:     w.Prompt(),
	}
	for id, tags := range s.Custom {
		v.CustomTags[id] = slices.Clone(tags)
	}
	for _, c := range s.Categories {
		cv := CategoryView{
			ID:           c.ID,
			Label:        c.Label,
			Key:          LabelKey(c.Label),
			DisplayLabel: DisplayLabel(c.Label),
			Custom:       c.Custom(),
			Options:      make([]OptionView, len(c.Options)),
			CustomTags:   slices.Clone(s.Custom[c.ID]),
			Count:        s.ActiveCount(c.ID),
		}
		for i, opt := range c.Options {
			cv.Options[i] = OptionView{Tag: opt, Selected: s.IsSelected(opt)}
		}
		v.Categories = append(v.Categories, cv)
	}
	return v
}
