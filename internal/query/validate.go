package query

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// MaxStatementLength bounds candidate SQL length, in runes, before
// execution.
const MaxStatementLength = 2000

// Rejection reason kinds, used as metric labels and log fields.
const (
	RejectNotReadOnly       = "not_read_only"
	RejectForbiddenKeyword  = "forbidden_keyword"
	RejectSuspiciousPattern = "suspicious_pattern"
	RejectTooLong           = "too_long"
)

// RejectionError describes why a candidate statement failed validation.
// The reason is for server-side logging only and must never be returned
// to chat callers.
type RejectionError struct {
	Kind   string
	Reason string
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("query rejected: %s", e.Reason)
}

var forbiddenKeywords = []string{
	"DROP", "DELETE", "INSERT", "UPDATE", "ALTER", "CREATE", "TRUNCATE",
	"EXEC", "EXECUTE", "CALL", "DECLARE", "GRANT", "REVOKE",
	"COMMIT", "ROLLBACK", "SAVEPOINT", "SET", "SHOW", "DESCRIBE", "EXPLAIN",
}

// Keyword matching is word-bounded so column names like updated_date or
// tokens like OFFSET do not trip the UPDATE and SET entries.
var forbiddenKeywordPatterns = compileKeywordPatterns(forbiddenKeywords)

var suspiciousPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i);\s*(SELECT|INSERT|UPDATE|DELETE|DROP|CREATE|ALTER|TRUNCATE|EXEC|EXECUTE|CALL|GRANT|REVOKE)\b`),
	regexp.MustCompile(`--`),
	regexp.MustCompile(`/\*|\*/`),
	regexp.MustCompile(`(?is)\bUNION\b.*\bSELECT\b`),
	regexp.MustCompile(`(?i)\b(OR|AND)\s+1\s*=\s*1`),
}

func compileKeywordPatterns(keywords []string) []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, 0, len(keywords))
	for _, keyword := range keywords {
		patterns = append(patterns, regexp.MustCompile(`(?i)\b`+keyword+`\b`))
	}
	return patterns
}

// Validate applies the read-only policy to a candidate statement. Rules
// run in order and the first failure wins. This is a conservative
// denylist gate over untrusted model output, not a SQL parser.
func Validate(candidate string) error {
	trimmed := strings.TrimSpace(candidate)
	upper := strings.ToUpper(trimmed)
	if !strings.HasPrefix(upper, "SELECT") && !strings.HasPrefix(upper, "WITH") {
		return &RejectionError{Kind: RejectNotReadOnly, Reason: "only read queries allowed"}
	}
	for i, pattern := range forbiddenKeywordPatterns {
		if pattern.MatchString(trimmed) {
			return &RejectionError{
				Kind:   RejectForbiddenKeyword,
				Reason: fmt.Sprintf("contains forbidden keyword %s", forbiddenKeywords[i]),
			}
		}
	}
	for _, pattern := range suspiciousPatterns {
		if pattern.MatchString(trimmed) {
			return &RejectionError{Kind: RejectSuspiciousPattern, Reason: "suspicious pattern"}
		}
	}
	if utf8.RuneCountInString(trimmed) > MaxStatementLength {
		return &RejectionError{Kind: RejectTooLong, Reason: "too long"}
	}
	return nil
}
