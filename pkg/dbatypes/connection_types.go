// Package dbatypes defines the shared types for the db-assistant chat engine.
// This file contains the database connection and history DTOs owned by the
// connection-management collaborator.
package dbatypes

import "time"

// ConnectionProfile describes one saved database connection. The engine
// treats it as an opaque reference; only ID matters for session scoping.
type ConnectionProfile struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	DBType   string `json:"dbType"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Database string `json:"database"`
	Username string `json:"username"`
}

// SchemaResponse carries the textual schema of the active connection.
type SchemaResponse struct {
	Schema string `json:"schema"`
}

// HistoryEntry is one logged query from the server-side query history.
type HistoryEntry struct {
	ID             int       `json:"id"`
	Query          string    `json:"query"`
	QueryTime      time.Time `json:"queryTime"`
	QueryType      string    `json:"queryType"`
	ConnectionName string    `json:"connectionName"`
}
