package envfile

import (
	"regexp"
	"strings"
)

// sensitiveKeyPattern matches the key suffixes that hold credentials.
// Anything matching is never written to logs in the clear.
var sensitiveKeyPattern = regexp.MustCompile(`(?i)(_KEY|_APIKEY|_API_KEY|_TOKEN|_SECRET|_PASSWORD|_PASS|_PRIVATE_KEY)$`)

// IsSensitive reports whether the key's value must be redacted in logs.
func IsSensitive(key string) bool {
	return sensitiveKeyPattern.MatchString(key)
}

// RedactValue masks a secret for display, keeping the first two characters
// as a recognition aid.
func RedactValue(v string) string {
	if v == "" {
		return ""
	}
	if len(v) <= 2 {
		return "••••••••"
	}
	return v[:2] + "••••••••"
}

// Redacted returns every definition as "KEY=value" with sensitive values
// masked. This is the only form in which .env content may reach a log.
func (s *Store) Redacted() ([]string, error) {
	keys, err := s.Keys()
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(keys))
	for _, key := range keys {
		val, err := s.Get(key)
		if err != nil {
			return nil, err
		}
		if IsSensitive(key) {
			val = RedactValue(val)
		}
		out = append(out, key+"="+val)
	}
	return out, nil
}

// RedactedString joins Redacted output for one-shot debug dumps.
func (s *Store) RedactedString() (string, error) {
	lines, err := s.Redacted()
	if err != nil {
		return "", err
	}
	return strings.Join(lines, "\n"), nil
}
