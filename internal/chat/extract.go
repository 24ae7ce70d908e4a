package chat

import (
	"regexp"
	"strings"
)

var (
	sqlFencePattern = regexp.MustCompile("(?is)```sql\\s*(.*?)\\s*```")
	anyFencePattern = regexp.MustCompile("(?s)```(?:[a-zA-Z0-9_-]*\\s*\n)?(.*?)```")
)

var sqlLeadingVerbs = []string{"SELECT", "WITH", "INSERT", "UPDATE", "DELETE"}

// extractSQL pulls candidate SQL out of a model reply. A fence tagged
// sql wins; otherwise the first fence whose interior starts with a SQL
// verb is used. Write verbs are detected here on purpose so the
// validator stays the single enforcement point for read-only policy.
func extractSQL(reply string) (string, bool) {
	if match := sqlFencePattern.FindStringSubmatch(reply); match != nil {
		candidate := strings.TrimSpace(match[1])
		if candidate != "" {
			return candidate, true
		}
	}
	for _, match := range anyFencePattern.FindAllStringSubmatch(reply, -1) {
		candidate := strings.TrimSpace(match[1])
		upper := strings.ToUpper(candidate)
		for _, verb := range sqlLeadingVerbs {
			if strings.HasPrefix(upper, verb) {
				return candidate, true
			}
		}
	}
	return "", false
}
