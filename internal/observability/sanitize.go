package observability

import "unicode"

const defaultStringLimit = 256

// sanitizeString drops control characters and truncates to limit runes.
func sanitizeString(value string, limit int) string {
	if limit <= 0 {
		limit = defaultStringLimit
	}
	cleaned := make([]rune, 0, len(value))
	for _, r := range value {
		if unicode.IsControl(r) {
			continue
		}
		cleaned = append(cleaned, r)
		if len(cleaned) == limit {
			break
		}
	}
	return string(cleaned)
}

// SanitizePath makes a request path or route pattern safe to log.
func SanitizePath(path string) string {
	if path == "" {
		return "/"
	}
	return sanitizeString(path, 180)
}

// SanitizeMethod makes an HTTP method safe to log.
func SanitizeMethod(method string) string {
	return sanitizeString(method, 10)
}
