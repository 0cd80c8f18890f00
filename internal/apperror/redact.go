package apperror

import (
	"regexp"
	"strings"
)

const redacted = "[REDACTED]"

var (
	reBearer      = regexp.MustCompile(`(?i)\bbearer\s+[A-Za-z0-9\-._~+/]+=*`)
	reOpenAIKey   = regexp.MustCompile(`\bsk-[A-Za-z0-9_\-]{8,}`)
	reGoogleKey   = regexp.MustCompile(`\bAIza[0-9A-Za-z_\-]{20,}`)
	reKeyValue    = regexp.MustCompile(`(?i)\b(api[_-]?key|x-api-key|access[_-]?token|token|secret|password|authorization)(\s*[:=]\s*)["']?[^\s"'&,;]+`)
	reExtensionID = regexp.MustCompile(`\b(chrome|moz|safari-web)-extension://[^/\s]+`)
)

// Redact masks bearer tokens, provider API keys, key=value secrets and
// browser-extension identifiers in s.
func Redact(s string) string {
	if s == "" {
		return s
	}
	s = reBearer.ReplaceAllString(s, "Bearer "+redacted)
	s = reOpenAIKey.ReplaceAllString(s, redacted)
	s = reGoogleKey.ReplaceAllString(s, redacted)
	s = reKeyValue.ReplaceAllString(s, "${1}${2}"+redacted)
	s = reExtensionID.ReplaceAllString(s, "${1}-extension://"+redacted)
	return s
}

func sensitiveKey(key string) bool {
	k := strings.ToLower(strings.NewReplacer("-", "", "_", "").Replace(key))
	for _, s := range []string{"apikey", "token", "secret", "password", "authorization", "cookie"} {
		if strings.HasSuffix(k, s) {
			return true
		}
	}
	return false
}

func redactValue(key string, value any) any {
	if sensitiveKey(key) {
		return redacted
	}
	switch v := value.(type) {
	case string:
		return Redact(v)
	case error:
		return Redact(v.Error())
	default:
		return v
	}
}

func redactContext(ctx map[string]any) map[string]any {
	if len(ctx) == 0 {
		return nil
	}
	out := make(map[string]any, len(ctx))
	for k, v := range ctx {
		out[k] = redactValue(k, v)
	}
	return out
}
