package storage

import (
	"fmt"
	"path"
	"regexp"
	"time"
)

var pathComponentPattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._/-]{0,127}$`)

// BuildReportObjectKey builds the object key for an exported cost report,
// partitioned by export date so reports are easy to browse and expire.
func BuildReportObjectKey(prefix string, exportTime time.Time, reportID string) (string, error) {
	if err := validatePathComponent(prefix, "prefix"); err != nil {
		return "", err
	}
	if err := validatePathComponent(reportID, "report id"); err != nil {
		return "", err
	}

	ts := exportTime.UTC()
	return path.Join(
		prefix,
		fmt.Sprintf("%04d/%02d/%02d", ts.Year(), ts.Month(), ts.Day()),
		fmt.Sprintf("cost-report-%s.parquet", reportID),
	), nil
}

func validatePathComponent(value, field string) error {
	if !pathComponentPattern.MatchString(value) {
		return fmt.Errorf("invalid %s: %q", field, value)
	}
	return nil
}
