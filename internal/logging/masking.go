package logging

import (
	"encoding/json"
	"fmt"
	"strings"
)

const redacted = "[REDACTED]"

// sensitiveFields are JSON keys whose values never reach the logs.
var sensitiveFields = map[string]bool{
	"password":        true,
	"newpassword":     true,
	"recoverykey":     true,
	"passwordhash":    true,
	"recoverykeyhash": true,
	"token":           true,
}

// MaskHeader redacts sensitive header values based on header name.
//
// Cookies, the admin key and anything named like a password or secret are
// fully redacted. Authorization and storage access keys keep their last
// four characters. Other headers are returned unchanged.
func MaskHeader(name, value string) string {
	lowerName := strings.ToLower(name)

	switch {
	case lowerName == "cookie",
		lowerName == "set-cookie",
		lowerName == "x-admin-key",
		strings.Contains(lowerName, "password"),
		strings.Contains(lowerName, "secret"):
		return redacted
	case lowerName == "authorization", lowerName == "accesskey":
		if len(value) < 4 {
			return "****"
		}
		return "****" + value[len(value)-4:]
	}
	return value
}

// MaskQuery redacts the shared admin key from a raw query string.
func MaskQuery(raw string) string {
	if raw == "" {
		return raw
	}
	parts := strings.Split(raw, "&")
	for i, p := range parts {
		if k, _, ok := strings.Cut(p, "="); ok && strings.EqualFold(k, "key") {
			parts[i] = k + "=" + redacted
		}
	}
	return strings.Join(parts, "&")
}

// MaskJSONBody redacts credential fields anywhere in a JSON body. Bodies
// that are not JSON are returned unchanged.
func MaskJSONBody(body []byte) []byte {
	if len(body) == 0 {
		return body
	}

	var data any
	if err := json.Unmarshal(body, &data); err != nil {
		return body
	}

	result, err := json.Marshal(maskJSONValue(data))
	if err != nil {
		return body
	}
	return result
}

func maskJSONValue(value any) any {
	switch v := value.(type) {
	case map[string]any:
		result := make(map[string]any, len(v))
		for key, val := range v {
			if sensitiveFields[strings.ToLower(key)] {
				if val == nil {
					result[key] = nil
				} else {
					result[key] = redacted
				}
				continue
			}
			result[key] = maskJSONValue(val)
		}
		return result
	case []any:
		result := make([]any, len(v))
		for i, item := range v {
			result[i] = maskJSONValue(item)
		}
		return result
	default:
		return value
	}
}

// FormatBinaryData formats binary data for logging.
func FormatBinaryData(data []byte) string {
	return fmt.Sprintf("[BINARY: %d bytes]", len(data))
}
