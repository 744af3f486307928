package content

import (
	"encoding/json"
	"fmt"
)

// AdminSettings is the admin identity kept under settings.admin.
// Password is a legacy plaintext field that recovery clears.
type AdminSettings struct {
	Username        string  `json:"username"`
	PasswordHash    string  `json:"passwordHash"`
	RecoveryKeyHash string  `json:"recoveryKeyHash"`
	Password        *string `json:"password"`
}

// ReadAdmin extracts settings.admin from a settings document.
// Missing or malformed admin data yields a zero AdminSettings.
func ReadAdmin(doc Document) AdminSettings {
	var settings struct {
		Admin AdminSettings `json:"admin"`
	}
	if err := json.Unmarshal(doc, &settings); err != nil {
		return AdminSettings{}
	}
	return settings.Admin
}

// WithAdminPassword returns a copy of the settings document with
// admin.passwordHash replaced and admin.password cleared. Every other field
// of the document, and of the admin object, is carried over untouched.
func WithAdminPassword(doc Document, passwordHash string) (Document, error) {
	settings := map[string]json.RawMessage{}
	if len(doc) > 0 {
		if err := json.Unmarshal(doc, &settings); err != nil {
			return nil, fmt.Errorf("%w: settings: %v", ErrInvalidPayload, err)
		}
	}

	admin := map[string]json.RawMessage{}
	if raw, ok := settings["admin"]; ok && isKind(raw, '{') && string(raw) != "null" {
		if err := json.Unmarshal(raw, &admin); err != nil {
			return nil, fmt.Errorf("%w: settings.admin: %v", ErrInvalidPayload, err)
		}
	}

	hash, err := json.Marshal(passwordHash)
	if err != nil {
		return nil, err
	}
	admin["passwordHash"] = hash
	admin["password"] = json.RawMessage("null")

	adminRaw, err := json.Marshal(admin)
	if err != nil {
		return nil, err
	}
	settings["admin"] = adminRaw

	out, err := json.Marshal(settings)
	if err != nil {
		return nil, err
	}
	return Document(out), nil
}

// secretAdminFields never leave the server on unauthenticated reads.
var secretAdminFields = []string{"passwordHash", "recoveryKeyHash", "password"}

// RedactAdmin returns doc with the admin credential fields removed. Documents
// that are not settings-shaped are returned unchanged.
func RedactAdmin(doc Document) Document {
	settings := map[string]json.RawMessage{}
	if err := json.Unmarshal(doc, &settings); err != nil {
		return doc
	}
	raw, ok := settings["admin"]
	if !ok || !isKind(raw, '{') {
		return doc
	}
	admin := map[string]json.RawMessage{}
	if err := json.Unmarshal(raw, &admin); err != nil {
		return doc
	}
	for _, f := range secretAdminFields {
		delete(admin, f)
	}
	adminRaw, err := json.Marshal(admin)
	if err != nil {
		return doc
	}
	settings["admin"] = adminRaw
	out, err := json.Marshal(settings)
	if err != nil {
		return doc
	}
	return Document(out)
}
