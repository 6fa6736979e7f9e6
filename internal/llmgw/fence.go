package llmgw

import "strings"

// stripFences removes a single leading/trailing markdown code fence
// (```json ... ``` or ``` ... ```) around a model response, if present,
// and trims surrounding whitespace either way.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl != -1 {
		lang := strings.TrimSpace(s[:nl])
		if lang == "" || isFenceLang(lang) {
			s = s[nl+1:]
		}
	}

	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func isFenceLang(lang string) bool {
	switch strings.ToLower(lang) {
	case "json", "javascript", "js":
		return true
	default:
		return false
	}
}
