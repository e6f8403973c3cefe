package kernel

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownDomain is returned when a string does not name a domain.
var ErrUnknownDomain = errors.New("domain must be one of: image, app, free")

// Domain selects one of the independent prompt-building contexts.
type Domain string

const (
	DomainImage Domain = "image"
	DomainApp   Domain = "app"
	DomainFree  Domain = "free"
)

// Domains lists every domain in display order.
func Domains() []Domain {
	return []Domain{DomainImage, DomainApp, DomainFree}
}

// ParseDomain maps user input to a Domain. Matching is case-insensitive.
func ParseDomain(s string) (Domain, error) {
	switch d := Domain(strings.ToLower(strings.TrimSpace(s))); d {
	case DomainImage, DomainApp, DomainFree:
		return d, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownDomain, s)
	}
}

// Valid reports whether d is one of the three known domains.
func (d Domain) Valid() bool {
	switch d {
	case DomainImage, DomainApp, DomainFree:
		return true
	}
	return false
}

// Title is the kernel title printed in the compiled prompt header.
func (d Domain) Title() string {
	switch d {
	case DomainImage:
		return "SAERLCV KERNEL"
	case DomainApp:
		return "APP-GEN KERNEL"
	default:
		return "FREE KERNEL"
	}
}

// VersionLine is the final line of the compiled prompt. Only image prompts
// carry a model version flag.
func (d Domain) VersionLine() string {
	if d == DomainImage {
		return "--v 6.0"
	}
	return ""
}

// Label is the domain's tab caption.
func (d Domain) Label() string {
	switch d {
	case DomainImage:
		return "IMAGE"
	case DomainApp:
		return "APP UI"
	default:
		return "FREE"
	}
}

// Placeholder hints what the subject field expects.
func (d Domain) Placeholder() string {
	switch d {
	case DomainImage:
		return "Enter core subject..."
	case DomainApp:
		return "Enter app concept (e.g. 'Yoga Tracker')..."
	default:
		return "Enter subject..."
	}
}

func (d Domain) String() string { return string(d) }
