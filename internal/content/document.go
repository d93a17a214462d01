package content

import (
	"encoding/json"
	"time"
)

// Document is one content domain's editable state: a set of named sections
// plus an optimistic version counter bumped on every mutation.
type Document struct {
	Domain    string                     `json:"domain" bson:"domain"`
	Version   int64                      `json:"version" bson:"version"`
	Sections  map[string]json.RawMessage `json:"sections" bson:"sections"`
	UpdatedAt time.Time                  `json:"updatedAt" bson:"updatedAt"`
}

// domainSections enumerates the allow-listed section keys per content domain.
// Section updates outside this list are rejected.
var domainSections = map[string][]string{
	DomainHomepage:       {"hero", "schools", "testimonials", "faq", "stats", "cta"},
	DomainSanskritSchool: {"hero", "curriculum", "teachers", "faq"},
}

const (
	DomainHomepage       = "homepage"
	DomainSanskritSchool = "sanskrit-school"
)

// Domains returns the known content domain names.
func Domains() []string {
	out := make([]string, 0, len(domainSections))
	for d := range domainSections {
		out = append(out, d)
	}
	return out
}

// KnownDomain reports whether the domain has a registered section allow-list.
func KnownDomain(domain string) bool {
	_, ok := domainSections[domain]
	return ok
}

// ValidSection reports whether section is allow-listed for the domain.
func ValidSection(domain, section string) bool {
	for _, s := range domainSections[domain] {
		if s == section {
			return true
		}
	}
	return false
}

// clone returns a deep copy so cached documents are never aliased by callers.
func (d *Document) clone() *Document {
	cp := &Document{
		Domain:    d.Domain,
		Version:   d.Version,
		UpdatedAt: d.UpdatedAt,
		Sections:  make(map[string]json.RawMessage, len(d.Sections)),
	}
	for k, v := range d.Sections {
		raw := make(json.RawMessage, len(v))
		copy(raw, v)
		cp.Sections[k] = raw
	}
	return cp
}
