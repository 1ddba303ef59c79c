// Package dbatypes defines the shared types for the db-assistant chat engine.
// This file contains the core architectural interfaces: the service lifecycle
// contract and the collaborator contracts the engine consumes.
package dbatypes

// Service defines the interface for dbassist services. Services are
// registered at startup and initialized before first use.
type Service interface {
	Name() string
	Initialize() error
}

// AssistantClient is the contract the chat engine consumes from the
// transport collaborator. GetMessages returns raw, loosely-typed payloads in
// server order (oldest first); classification into ChatMessage values is the
// engine's job, not the transport's.
type AssistantClient interface {
	// GenerateSQL submits a natural-language request. The resolved value is
	// not interpreted by the engine; only completion or failure matters.
	GenerateSQL(request string) error

	// GetMessages fetches the full ordered message history for the given
	// connection.
	GetMessages(connectionID int) ([]map[string]any, error)

	// ClearChat deletes the server-side history for the active connection.
	ClearChat() error
}

// SQLExecutor executes one literal SQL statement and returns its structured
// result. A non-nil error means the call itself failed (network, driver);
// a result with Success=false means the statement was rejected.
type SQLExecutor interface {
	ExecuteSQL(sql string) (*QueryResult, error)
}

// ConnectionSource exposes the active connection and its schema, owned by
// the connection-management collaborator.
type ConnectionSource interface {
	ActiveConnection() (*ConnectionProfile, error)
	Schema() (string, error)
}
