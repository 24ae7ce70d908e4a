// Package query runs model-proposed SQL against the dashboard database
// behind a read-only gate. Candidate statements are validated before
// execution and results are bounded and rendered for chat display.
package query

import "time"

// MaxRows bounds how many rows a single query may return to the caller.
const MaxRows = 1000

type Result struct {
	Columns  []string
	Rows     [][]any
	Duration time.Duration
}
