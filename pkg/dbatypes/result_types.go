// Package dbatypes defines the shared types for the db-assistant chat engine.
// This file contains the SQL execution result DTOs exchanged with the
// execution collaborators.
package dbatypes

// AggregateResult carries the single value produced by an aggregate query
// (COUNT, SUM, AVG, MAX, MIN) together with its display name.
type AggregateResult struct {
	Function    string `json:"function"`
	Value       any    `json:"value"`
	DisplayName string `json:"displayName"`
}

// QueryResult is the structured outcome of executing one SQL statement.
// Success distinguishes a completed execution from a reported failure;
// exactly one of the row-returning fields (Data/Columns/RowCount), the
// AffectedRows count, or the aggregate payload is meaningful depending on
// the query type.
type QueryResult struct {
	Success          bool             `json:"success"`
	Message          string           `json:"message,omitempty"`
	Data             []map[string]any `json:"data,omitempty"`
	Columns          []string         `json:"columns,omitempty"`
	RowCount         int              `json:"rowCount"`
	QueryType        string           `json:"queryType,omitempty"`
	AffectedRows     int              `json:"affectedRows"`
	IsAggregateQuery bool             `json:"isAggregateQuery"`
	AggregateResult  *AggregateResult `json:"aggregateResult,omitempty"`
}

// HasTableData reports whether the result carries rows suitable for tabular
// display.
func (r *QueryResult) HasTableData() bool {
	return r != nil && len(r.Data) > 0 && len(r.Columns) > 0
}

// TableColumns returns the column names of a row-returning result, or nil.
func (r *QueryResult) TableColumns() []string {
	if r == nil {
		return nil
	}
	return r.Columns
}

// TableData returns the rows of a row-returning result, or nil.
func (r *QueryResult) TableData() []map[string]any {
	if r == nil {
		return nil
	}
	return r.Data
}

// SQLRequest is the request body for executing a literal SQL statement.
type SQLRequest struct {
	SQL string `json:"sql"`
}

// SQLResponse is the response body of a generation request.
type SQLResponse struct {
	SQL   string `json:"sql"`
	Error string `json:"error,omitempty"`
}
