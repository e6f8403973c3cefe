package kernel

import (
	"encoding/json"
	"fmt"
)

type workspaceDoc struct {
	Domain  Domain               `json:"domain"`
	Subject string               `json:"subject"`
	States  map[Domain]domainDoc `json:"states"`
}

type domainDoc struct {
	Categories []Category          `json:"categories"`
	Selected   []string            `json:"selected"`
	Custom     map[string][]string `json:"custom,omitempty"`
}

// MarshalJSON encodes the full workspace, every domain included.
func (w *Workspace) MarshalJSON() ([]byte, error) {
	doc := workspaceDoc{
		Domain:  w.domain,
		Subject: w.subject,
		States:  make(map[Domain]domainDoc, len(w.states)),
	}
	for d, s := range w.states {
		doc.States[d] = domainDoc{
			Categories: s.Categories,
			Selected:   s.SelectedTags(),
			Custom:     s.Custom,
		}
	}
	return json.Marshal(doc)
}

// UnmarshalJSON replaces the workspace with a decoded document. Domains
// missing from the document start at their defaults.
func (w *Workspace) UnmarshalJSON(data []byte) error {
	var doc workspaceDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	if !doc.Domain.Valid() {
		return fmt.Errorf("decode workspace: %w: %q", ErrUnknownDomain, doc.Domain)
	}

	states := make(map[Domain]*DomainState, 3)
	for _, d := range Domains() {
		states[d] = newDomainState(d)
	}
	for d, ds := range doc.States {
		if !d.Valid() {
			return fmt.Errorf("decode workspace: %w: %q", ErrUnknownDomain, d)
		}
		s := states[d]
		if ds.Categories != nil {
			s.Categories = ds.Categories
		}
		for _, tag := range ds.Selected {
			s.Selected[tag] = struct{}{}
		}
		for id, tags := range ds.Custom {
			// Prepending in reverse through addCustom keeps stored order and
			// drops duplicates a hand-edited document might carry.
			for i := len(tags) - 1; i >= 0; i-- {
				s.addCustom(id, tags[i])
			}
		}
	}

	w.domain = doc.Domain
	w.subject = doc.Subject
	w.states = states
	if w.newID == nil {
		w.newID = NewCategoryID
	}
	return nil
}
