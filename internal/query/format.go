package query

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	displayRowLimit  = 10
	displayCellLimit = 30
)

// EmptyResultText is the fixed literal returned for a result with no rows.
const EmptyResultText = "No results found."

// Format renders a result for chat display. A single row becomes
// "column: value" lines; larger results become a bounded text table.
func Format(result Result) string {
	if len(result.Rows) == 0 {
		return EmptyResultText
	}
	if len(result.Rows) == 1 {
		lines := make([]string, 0, len(result.Columns))
		for i, column := range result.Columns {
			lines = append(lines, fmt.Sprintf("%s: %s", column, stringifyCell(result.Rows[0][i])))
		}
		return strings.Join(lines, "\n")
	}

	header := strings.Join(result.Columns, " | ")
	lines := make([]string, 0, len(result.Rows)+3)
	lines = append(lines, header, strings.Repeat("-", len(header)))

	displayed := result.Rows
	if len(displayed) > displayRowLimit {
		displayed = displayed[:displayRowLimit]
	}
	for _, row := range displayed {
		cells := make([]string, 0, len(row))
		for _, value := range row {
			cells = append(cells, truncateCell(stringifyCell(value)))
		}
		lines = append(lines, strings.Join(cells, " | "))
	}
	if len(result.Rows) > displayRowLimit {
		lines = append(lines, fmt.Sprintf("... and %d more rows", len(result.Rows)-displayRowLimit))
	}
	return strings.Join(lines, "\n")
}

func stringifyCell(value any) string {
	if value == nil {
		return "NULL"
	}
	return fmt.Sprintf("%v", value)
}

// truncateCell bounds a cell to displayCellLimit runes so multibyte
// values are not cut mid-character.
func truncateCell(value string) string {
	if utf8.RuneCountInString(value) <= displayCellLimit {
		return value
	}
	runes := []rune(value)
	return string(runes[:displayCellLimit-3]) + "..."
}
