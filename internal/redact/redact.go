// Package redact scrubs sensitive material from strings before they
// reach logs or error responses. Raw errors from the auth and storage
// layers can carry tokens, credentials or SQL fragments; everything
// logged through the API error path goes through here first.
package redact

import "regexp"

// Placeholders substituted for matched material.
const (
	CredentialPlaceholder = "[REDACTED_CREDENTIAL]"
	TokenPlaceholder      = "[REDACTED_TOKEN]"
	EmailPlaceholder      = "[REDACTED_EMAIL]"
	SQLPlaceholder        = "[REDACTED_SQL]"
)

type rule struct {
	pattern     *regexp.Regexp
	placeholder string
}

var rules = []rule{
	// Connection strings with inline credentials.
	{regexp.MustCompile(`(?i)(postgres|postgresql|mysql)://[^@\s]+@`), CredentialPlaceholder},
	// password=..., secret: "...", and similar key/value leaks.
	{regexp.MustCompile(`(?i)(password|passwd|secret|api[_-]?key)([=:\s]['"]?)[^'"&\s]{3,}`), CredentialPlaceholder},
	// Standard three-part JWT.
	{regexp.MustCompile(`eyJ[a-zA-Z0-9_-]+\.eyJ[a-zA-Z0-9_-]+\.[a-zA-Z0-9_-]+`), TokenPlaceholder},
	// Bcrypt hashes as stored in the users table.
	{regexp.MustCompile(`\$2[aby]\$\d{2}\$[./A-Za-z0-9]{53}`), CredentialPlaceholder},
	// Email addresses.
	{regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`), EmailPlaceholder},
	// SQL fragments that could leak schema or data.
	{regexp.MustCompile(`(?i)(SELECT|INSERT|UPDATE|DELETE)[\s\w,*()]+(?:FROM|INTO|SET)(?:[\s\w,*()='"$]+)?`), SQLPlaceholder},
}

// String redacts sensitive information from the input string.
func String(input string) string {
	if input == "" {
		return input
	}
	result := input
	for _, r := range rules {
		result = r.pattern.ReplaceAllString(result, r.placeholder)
	}
	return result
}

// Error redacts an error's message. Safe to call with a nil error.
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}
