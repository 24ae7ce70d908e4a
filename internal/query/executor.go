package query

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/cloudboard/cloudboard/internal/observability"
)

// ErrExecution is the only error chat callers see for a failed query.
// Validator reasons and database error text stay server-side so model
// output cannot learn schema details from error messages.
var ErrExecution = errors.New("execution failed due to security or syntax error")

type Executor struct {
	db      *sql.DB
	timeout time.Duration
	logger  *slog.Logger
}

func NewExecutor(db *sql.DB, timeout time.Duration, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{db: db, timeout: timeout, logger: logger}
}

// Execute validates the candidate statement and runs it as a single
// parameterless read. Results are truncated to MaxRows.
func (e *Executor) Execute(ctx context.Context, sqlText string) (Result, error) {
	if err := Validate(sqlText); err != nil {
		var rejection *RejectionError
		if errors.As(err, &rejection) {
			e.logger.Warn("query rejected", "kind", rejection.Kind, "reason", rejection.Reason)
			observability.IncrementQueryRejections(rejection.Kind)
		}
		return Result{}, ErrExecution
	}

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	start := time.Now()
	rows, err := e.db.QueryContext(ctx, stripTrailingSemicolons(sqlText))
	if err != nil {
		e.logger.Warn("query execution failed", "error", err)
		observability.IncrementQueryExecutionFailures()
		return Result{}, ErrExecution
	}
	defer func() { _ = rows.Close() }()

	columns, err := rows.Columns()
	if err != nil {
		e.logger.Warn("query columns failed", "error", err)
		observability.IncrementQueryExecutionFailures()
		return Result{}, ErrExecution
	}

	resultRows := make([][]any, 0)
	for len(resultRows) < MaxRows && rows.Next() {
		values := make([]any, len(columns))
		scanTargets := make([]any, len(columns))
		for i := range values {
			scanTargets[i] = &values[i]
		}
		if err := rows.Scan(scanTargets...); err != nil {
			e.logger.Warn("query row scan failed", "error", err)
			observability.IncrementQueryExecutionFailures()
			return Result{}, ErrExecution
		}
		resultRows = append(resultRows, normalizeValues(values))
	}
	if err := rows.Err(); err != nil {
		e.logger.Warn("query iteration failed", "error", err)
		observability.IncrementQueryExecutionFailures()
		return Result{}, ErrExecution
	}

	duration := time.Since(start)
	observability.ObserveQueryExecution(duration)
	return Result{Columns: columns, Rows: resultRows, Duration: duration}, nil
}

func normalizeValues(values []any) []any {
	normalized := make([]any, len(values))
	for i, value := range values {
		switch typed := value.(type) {
		case []byte:
			normalized[i] = string(typed)
		default:
			normalized[i] = typed
		}
	}
	return normalized
}

func stripTrailingSemicolons(sqlText string) string {
	trimmed := strings.TrimSpace(sqlText)
	for strings.HasSuffix(trimmed, ";") {
		trimmed = strings.TrimSpace(strings.TrimSuffix(trimmed, ";"))
	}
	return trimmed
}
