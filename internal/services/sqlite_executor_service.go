package services

import (
	"database/sql"
	"fmt"
	"strings"

	// SQLite driver, registered as "sqlite3".
	_ "github.com/mattn/go-sqlite3"

	"dbassist/internal/logger"
	"dbassist/pkg/dbatypes"
)

// LocalExecutorService implements the SQLExecutor contract against a local
// SQLite database, for working without the remote execution endpoint. It
// produces the same result shape as the server: row data for SELECTs, a
// collapsed aggregate payload for single-value aggregates, and affected-row
// counts for mutations.
type LocalExecutorService struct {
	initialized bool
	path        string
	db          *sql.DB
}

// NewLocalExecutorService creates a new LocalExecutorService for the SQLite
// database at path (":memory:" works).
func NewLocalExecutorService(path string) *LocalExecutorService {
	return &LocalExecutorService{path: path}
}

// Name returns the service name "local_executor" for registration.
func (l *LocalExecutorService) Name() string {
	return "local_executor"
}

// Initialize opens the SQLite database.
func (l *LocalExecutorService) Initialize() error {
	if l.path == "" {
		return fmt.Errorf("local executor requires a database path")
	}

	db, err := sql.Open("sqlite3", l.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	l.db = db
	l.initialized = true
	logger.Debug("LocalExecutorService initialized", "path", l.path)
	return nil
}

// Close releases the database handle.
func (l *LocalExecutorService) Close() error {
	if l.db == nil {
		return nil
	}
	return l.db.Close()
}

// ExecuteSQL runs one statement. Statement-level failures (syntax errors,
// constraint violations) come back as a result with Success=false, never as
// an error: they are part of the conversation, not a transport fault.
func (l *LocalExecutorService) ExecuteSQL(sqlText string) (*dbatypes.QueryResult, error) {
	if !l.initialized {
		return nil, fmt.Errorf("local executor service not initialized")
	}

	// Syntax check without executing.
	statement, err := l.db.Prepare(sqlText)
	if err != nil {
		return &dbatypes.QueryResult{
			Success: false,
			Message: fmt.Sprintf("SQL syntax error: %v", err),
		}, nil
	}
	_ = statement.Close()

	queryType := queryTypeOf(sqlText)
	if queryType == "SELECT" || queryType == "EXPLAIN" {
		return l.runQuery(sqlText)
	}
	return l.runExec(sqlText, queryType)
}

func (l *LocalExecutorService) runQuery(sqlText string) (*dbatypes.QueryResult, error) {
	rows, err := l.db.Query(sqlText)
	if err != nil {
		return &dbatypes.QueryResult{
			Success: false,
			Message: fmt.Sprintf("Execution error: %v", err),
		}, nil
	}
	defer func() {
		_ = rows.Close()
	}()

	columns, err := rows.Columns()
	if err != nil {
		return &dbatypes.QueryResult{
			Success: false,
			Message: fmt.Sprintf("Execution error: %v", err),
		}, nil
	}

	data := make([]map[string]any, 0)
	for rows.Next() {
		values := make([]any, len(columns))
		pointers := make([]any, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return &dbatypes.QueryResult{
				Success: false,
				Message: fmt.Sprintf("Execution error: %v", err),
			}, nil
		}

		row := make(map[string]any, len(columns))
		for i, column := range columns {
			// Drivers hand text back as []byte
			if b, ok := values[i].([]byte); ok {
				row[column] = string(b)
			} else {
				row[column] = values[i]
			}
		}
		data = append(data, row)
	}
	if err := rows.Err(); err != nil {
		return &dbatypes.QueryResult{
			Success: false,
			Message: fmt.Sprintf("Execution error: %v", err),
		}, nil
	}

	rowCount := len(data)

	// A single-value aggregate collapses into the aggregate payload.
	if isAggregateSQL(sqlText) && rowCount == 1 && len(columns) == 1 {
		function := detectAggregateFunction(sqlText)
		value := data[0][columns[0]]
		return &dbatypes.QueryResult{
			Success:          true,
			QueryType:        "SELECT",
			RowCount:         1,
			IsAggregateQuery: true,
			Message:          fmt.Sprintf("%s result: %v", function, value),
			AggregateResult: &dbatypes.AggregateResult{
				Function:    function,
				Value:       value,
				DisplayName: aggregateDisplayName(function),
			},
		}, nil
	}

	logger.ServiceOperation("local_executor", "query", "rows", rowCount)
	return &dbatypes.QueryResult{
		Success:   true,
		QueryType: "SELECT",
		Data:      data,
		Columns:   columns,
		RowCount:  rowCount,
	}, nil
}

func (l *LocalExecutorService) runExec(sqlText, queryType string) (*dbatypes.QueryResult, error) {
	result, err := l.db.Exec(sqlText)
	if err != nil {
		return &dbatypes.QueryResult{
			Success: false,
			Message: fmt.Sprintf("Execution error: %v", err),
		}, nil
	}

	affected, err := result.RowsAffected()
	if err != nil {
		affected = 0
	}

	logger.ServiceOperation("local_executor", "exec", "type", queryType, "affected", affected)
	return &dbatypes.QueryResult{
		Success:      true,
		QueryType:    queryType,
		AffectedRows: int(affected),
		Message:      fmt.Sprintf("%s operation completed successfully. Affected rows: %d", queryType, affected),
	}, nil
}

// queryTypeOf classifies a statement by its leading keyword.
func queryTypeOf(sqlText string) string {
	upper := strings.ToUpper(strings.TrimSpace(sqlText))
	for _, queryType := range []string{
		"SELECT", "INSERT", "UPDATE", "DELETE",
		"CREATE", "ALTER", "DROP", "TRUNCATE",
		"MERGE", "CALL", "EXPLAIN",
	} {
		if strings.HasPrefix(upper, queryType) {
			return queryType
		}
	}
	return "UNKNOWN"
}

// isAggregateSQL reports whether the statement uses an aggregate function.
func isAggregateSQL(sqlText string) bool {
	upper := strings.ToUpper(sqlText)
	return strings.Contains(upper, "COUNT(") || strings.Contains(upper, "SUM(") ||
		strings.Contains(upper, "AVG(") || strings.Contains(upper, "MAX(") ||
		strings.Contains(upper, "MIN(") || strings.Contains(upper, "GROUP BY")
}

func detectAggregateFunction(sqlText string) string {
	upper := strings.ToUpper(sqlText)
	switch {
	case strings.Contains(upper, "COUNT("):
		return "COUNT"
	case strings.Contains(upper, "SUM("):
		return "SUM"
	case strings.Contains(upper, "AVG("):
		return "AVG"
	case strings.Contains(upper, "MAX("):
		return "MAX"
	case strings.Contains(upper, "MIN("):
		return "MIN"
	}
	return "AGGREGATE"
}

func aggregateDisplayName(function string) string {
	switch function {
	case "COUNT":
		return "Total Count"
	case "SUM":
		return "Sum"
	case "AVG":
		return "Average"
	case "MAX":
		return "Maximum"
	case "MIN":
		return "Minimum"
	}
	return "Result"
}
