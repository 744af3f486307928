// Package content defines the editable marketing sections, their default
// scaffolds and the typed shapes the rest of the service reads from them.
package content

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Section names one editable content document.
type Section string

// The fixed set of sections.
const (
	Home      Section = "home"
	About     Section = "about"
	Services  Section = "services"
	Packages  Section = "packages"
	Portfolio Section = "portfolio"
	Contact   Section = "contact"
	Settings  Section = "settings"
)

// Sections lists every valid section in display order.
var Sections = []Section{Home, About, Services, Packages, Portfolio, Contact, Settings}

var (
	// ErrInvalidSection is returned for a name outside Sections.
	ErrInvalidSection = errors.New("invalid section")

	// ErrInvalidPayload is returned when a document is not a JSON object
	// or a known list field has the wrong shape.
	ErrInvalidPayload = errors.New("invalid payload")
)

// ParseSection resolves a case-insensitive section name.
func ParseSection(name string) (Section, error) {
	s := Section(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range Sections {
		if s == known {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidSection, name)
}

// Document is a section's JSON object exactly as stored.
type Document = json.RawMessage

// listFields names the top-level keys that must hold arrays when present.
var listFields = map[Section][]string{
	Home:      {"highlights"},
	About:     {"locations", "training"},
	Services:  {"services"},
	Packages:  {"packages"},
	Portfolio: {"items"},
}

// objectFields names the top-level keys that must hold objects when present.
var objectFields = map[Section][]string{
	Home:     {"hero"},
	About:    {"about"},
	Services: {"hero"},
	Contact:  {"social", "address"},
	Settings: {"admin", "profile", "general"},
}

// ValidateDocument checks that raw is a JSON object and that the section's
// well-known fields have the expected shape. The document is returned compacted.
func ValidateDocument(section Section, raw []byte) (Document, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' || !json.Valid(trimmed) {
		return nil, fmt.Errorf("%w: body must be a JSON object", ErrInvalidPayload)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	for _, name := range listFields[section] {
		if v, ok := fields[name]; ok && !isKind(v, '[') {
			return nil, fmt.Errorf("%w: %q must be an array", ErrInvalidPayload, name)
		}
	}
	for _, name := range objectFields[section] {
		if v, ok := fields[name]; ok && !isKind(v, '{') {
			return nil, fmt.Errorf("%w: %q must be an object", ErrInvalidPayload, name)
		}
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, trimmed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return Document(buf.Bytes()), nil
}

// isKind reports whether v starts with the given JSON delimiter. A JSON null
// is accepted for any kind so editors can clear a field.
func isKind(v json.RawMessage, delim byte) bool {
	v = bytes.TrimSpace(v)
	if bytes.Equal(v, []byte("null")) {
		return true
	}
	return len(v) > 0 && v[0] == delim
}
