package rdbms

import (
	"context"
	"fmt"

	"github.com/Richard-GOZAN/imdb-analytics-platform/logger"
)

// QueryResult is the self-contained outcome of a warehouse query, shaped for
// callers that render results rather than handle errors (conversational
// clients included). Err carries the failure text when Success is false.
type QueryResult struct {
	Success  bool            `json:"success"`
	Columns  []string        `json:"columns,omitempty"`
	Rows     [][]interface{} `json:"rows,omitempty"`
	RowCount int             `json:"rowCount"`
	Err      string          `json:"error,omitempty"`
}

// ExecuteQuery runs sqltext against the warehouse and scans the values
// dynamically. It never returns a Go error: failures are reported inside
// the QueryResult.
func ExecuteQuery(ctx context.Context, log logger.Logger, db Connector, sqltext string) QueryResult {
	fail := func(err error) QueryResult {
		log.Error("query failed: ", err)
		return QueryResult{Success: false, Err: err.Error()}
	}
	rows, err := db.QueryContext(ctx, sqltext)
	if err != nil {
		return fail(fmt.Errorf("error during database query using SQL: '%v': %w", sqltext, err))
	}
	defer func() {
		_ = rows.Close()
	}()
	cols, err := rows.Columns()
	if err != nil {
		return fail(fmt.Errorf("error fetching columns: %w", err))
	}
	// Scan the values dynamically.
	lenCols := len(cols)
	scanPtrs := make([]interface{}, lenCols)
	scanVals := make([]interface{}, lenCols)
	for idx := 0; idx < lenCols; idx++ { // for each column...
		scanPtrs[idx] = &scanVals[idx] // save the value.
	}
	retval := QueryResult{Success: true, Columns: cols, Rows: make([][]interface{}, 0)}
	for rows.Next() {
		select { // quit if asked to, else continue...
		case <-ctx.Done():
			return fail(ctx.Err())
		default:
		}
		if err := rows.Scan(scanPtrs...); err != nil {
			return fail(fmt.Errorf("error scanning row: %v", err))
		}
		// Make a new row.
		row := make([]interface{}, lenCols)
		for idx := range scanVals { // for each value...
			row[idx] = scanVals[idx]
		}
		retval.Rows = append(retval.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return fail(fmt.Errorf("error during row fetch: %w", err))
	}
	retval.RowCount = len(retval.Rows)
	return retval
}
