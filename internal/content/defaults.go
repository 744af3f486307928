package content

import (
	"embed"
	"fmt"
)

//go:embed defaults/*.json
var defaultsFS embed.FS

// Default returns the built-in scaffold served for a section that has never
// been written. Each call returns a fresh copy.
func Default(section Section) Document {
	data, err := defaultsFS.ReadFile(fmt.Sprintf("defaults/%s.json", section))
	if err != nil {
		return Document("{}")
	}
	doc, err := ValidateDocument(section, data)
	if err != nil {
		return Document("{}")
	}
	return doc
}
