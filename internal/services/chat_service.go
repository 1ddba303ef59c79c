// Package services provides the chat engine services for dbassist.
package services

import (
	"fmt"
	"strings"

	"dbassist/internal/classify"
	"dbassist/internal/logger"
	"dbassist/internal/session"
	"dbassist/pkg/dbatypes"
)

// ChatService orchestrates one chat turn: validate the input, optimistically
// echo the user's request, ask the server to generate SQL, then reload the
// full history so the server's ordering becomes the session's. It holds no
// timeline state of its own; everything lives in the session store.
type ChatService struct {
	initialized bool
	store       *session.Store
	client      dbatypes.AssistantClient
	classifier  *classify.Classifier
}

// NewChatService creates a new ChatService bound to the given store and
// transport collaborator.
func NewChatService(store *session.Store, client dbatypes.AssistantClient) *ChatService {
	return &ChatService{
		store:      store,
		client:     client,
		classifier: classify.New(nil),
	}
}

// NewChatServiceWithClock creates a ChatService whose classifier derives
// identifiers from the given clock. Used by tests for deterministic IDs.
func NewChatServiceWithClock(store *session.Store, client dbatypes.AssistantClient, clock classify.Clock) *ChatService {
	return &ChatService{
		store:      store,
		client:     client,
		classifier: classify.New(clock),
	}
}

// Name returns the service name "chat" for registration.
func (c *ChatService) Name() string {
	return "chat"
}

// Initialize sets up the ChatService for operation.
func (c *ChatService) Initialize() error {
	if c.store == nil {
		return fmt.Errorf("chat service requires a session store")
	}
	if c.client == nil {
		return fmt.Errorf("chat service requires an assistant client")
	}
	c.initialized = true
	return nil
}

// SendMessage runs one user turn.
//
// Preconditions: non-empty trimmed text, an active connection, and no turn
// or execution already in flight. A failed precondition is a silent no-op,
// not an error: it mirrors a disabled send button, and the caller has
// nothing to surface.
//
// On submit the trimmed request is appended immediately as an optimistic
// echo. When generation completes, whatever it returned, the full history is
// reloaded and replaces the session wholesale: the server interleaves the
// echoed request with the generated response in one authoritative log, so
// reconciliation discards the local echo on purpose. When generation fails,
// the echo stays: the assistant failed, but the user did say what they said.
func (c *ChatService) SendMessage(text string) error {
	if !c.initialized {
		return fmt.Errorf("chat service not initialized")
	}

	trimmed := strings.TrimSpace(text)
	if trimmed == "" || !c.store.HasActiveConnection() || c.store.Busy() {
		return nil
	}
	if !c.store.SetBusy(true) {
		return nil
	}

	echo := c.classifier.Classify(map[string]any{
		"sender":  string(dbatypes.SenderUser),
		"content": trimmed,
	})
	c.store.Append(echo)
	logger.TurnEvent("submitted", "chars", len(trimmed))

	if err := c.client.GenerateSQL(trimmed); err != nil {
		// Optimistic echo stays; only busy is rolled back.
		c.store.SetBusy(false)
		logger.TurnEvent("generation failed", "error", err)
		return fmt.Errorf("sql generation failed: %w", err)
	}

	reloadErr := c.LoadHistory()
	c.store.SetBusy(false)
	if reloadErr != nil {
		// The session keeps its pre-reload state, echo included. The next
		// successful reload reconciles it against the server log.
		logger.TurnEvent("reload failed", "error", reloadErr)
		return fmt.Errorf("history reload failed: %w", reloadErr)
	}

	logger.TurnEvent("reconciled", "messages", c.store.Len())
	return nil
}

// LoadHistory fetches the full ordered history for the active connection,
// classifies every payload, and replaces the session timeline wholesale.
// The server's ordering is trusted as-is. Without an active connection this
// is a no-op. On fetch failure the timeline is left untouched.
func (c *ChatService) LoadHistory() error {
	if !c.initialized {
		return fmt.Errorf("chat service not initialized")
	}

	connection := c.store.ActiveConnection()
	if connection == nil {
		return nil
	}

	payloads, err := c.client.GetMessages(connection.ID)
	if err != nil {
		return fmt.Errorf("failed to load messages: %w", err)
	}

	messages := make([]dbatypes.ChatMessage, 0, len(payloads))
	for _, payload := range payloads {
		messages = append(messages, c.classifier.Classify(payload))
	}
	c.store.ReplaceAll(messages)

	logger.ServiceOperation("chat", "history loaded", "messages", len(messages))
	return nil
}

// ActivateConnection binds the session to a connection and loads its
// history. The previous session, if any, is discarded. Passing nil just
// deactivates the session.
func (c *ChatService) ActivateConnection(connection *dbatypes.ConnectionProfile) error {
	if !c.initialized {
		return fmt.Errorf("chat service not initialized")
	}

	c.store.SetActiveConnection(connection)
	if connection == nil {
		return nil
	}
	return c.LoadHistory()
}

// ClearChat deletes the server-side history and empties the session. The
// local timeline is only cleared once the server confirms the delete.
func (c *ChatService) ClearChat() error {
	if !c.initialized {
		return fmt.Errorf("chat service not initialized")
	}
	if !c.store.HasActiveConnection() {
		return nil
	}

	if err := c.client.ClearChat(); err != nil {
		return fmt.Errorf("failed to clear chat: %w", err)
	}

	c.store.Clear()
	return nil
}
