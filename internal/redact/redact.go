// Package redact strips credentials, tokens, hosts, file paths and SQL
// literals from strings before they are logged. Storage and driver errors
// routinely embed connection strings and query text; every error that
// reaches a log line at the API boundary goes through Error.
package redact

import "regexp"

// Placeholders substituted for redacted fragments.
const (
	CredentialPlaceholder = "[REDACTED_CREDENTIAL]"
	KeyPlaceholder        = "[REDACTED_KEY]"
	TokenPlaceholder      = "[REDACTED_TOKEN]"
	JWTPlaceholder        = "[REDACTED_JWT]"
	EmailPlaceholder      = "[REDACTED_EMAIL]"
	HostPlaceholder       = "[REDACTED_HOST]"
	PathPlaceholder       = "[REDACTED_PATH]"
	StackTracePlaceholder = "[STACK_TRACE_REDACTED]"
	SQLLiteralPlaceholder = "'?'"
)

type rule struct {
	pattern     *regexp.Regexp
	replacement string
}

// rules run in order; earlier rules see the raw text. Values never start
// with '[' so that placeholders are not redacted twice.
var rules = []rule{
	{regexp.MustCompile(`goroutine \d+ \[[^\]]*\]:[\s\S]*`), StackTracePlaceholder},
	{regexp.MustCompile(`(?i)\b(?:postgres(?:ql)?|pgx|mysql|sqlite|file)://[^\s@/]+@`), CredentialPlaceholder},
	{regexp.MustCompile(`(?i)\b(?:password|passwd|pwd)\s*[=:]\s*['"]?[^'"&\s\[]+['"]?`), CredentialPlaceholder},
	{regexp.MustCompile(`(?i)\bbearer\s+[A-Za-z0-9._~+/=-]+`), "Bearer " + TokenPlaceholder},
	{regexp.MustCompile(`eyJ[\w-]+\.eyJ[\w-]+\.[\w-]+`), JWTPlaceholder},
	{regexp.MustCompile(`(?i)\b(?:api[_-]?key|secret|token|jwt_secret)\s*[=:]\s*['"]?[^'"&\s\[]{8,}['"]?`), KeyPlaceholder},
	{regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`), EmailPlaceholder},
	{regexp.MustCompile(`\b(?:\d{1,3}\.){3}\d{1,3}(?::\d{1,5})?\b`), HostPlaceholder},
	{regexp.MustCompile(`\b[A-Za-z][\w-]*(?:\.[\w-]+)*\.[A-Za-z]{2,}:\d{1,5}\b`), HostPlaceholder},
	{regexp.MustCompile(`(?:/[\w.-]+){2,}`), PathPlaceholder},
}

var (
	sqlStatement = regexp.MustCompile(`(?i)\b(?:SELECT|INSERT|UPDATE|DELETE)\b[\s\S]*\b(?:FROM|INTO|SET|WHERE)\b`)
	sqlLiteral   = regexp.MustCompile(`'(?:[^']|'')*'`)
)

// String redacts sensitive fragments of input. Quoted literals are replaced
// only when the text contains a SQL statement.
func String(input string) string {
	if input == "" {
		return input
	}

	result := input
	for _, r := range rules {
		result = r.pattern.ReplaceAllString(result, r.replacement)
	}
	if sqlStatement.MatchString(result) {
		result = sqlLiteral.ReplaceAllString(result, SQLLiteralPlaceholder)
	}
	return result
}

// Error redacts the message of err. A nil error yields "".
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}
