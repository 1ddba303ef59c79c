package services

import (
	"fmt"
	"strings"

	"dbassist/internal/classify"
	"dbassist/internal/logger"
	"dbassist/internal/session"
	"dbassist/pkg/dbatypes"
)

// ExecutionService orchestrates running a literal SQL statement against the
// active connection. Unlike a chat turn, the outcome is appended directly to
// the session without a history reload: the server does not log ad-hoc
// executed statements in the chat history.
type ExecutionService struct {
	initialized bool
	store       *session.Store
	executor    dbatypes.SQLExecutor
	classifier  *classify.Classifier
}

// NewExecutionService creates a new ExecutionService bound to the given
// store and executor collaborator.
func NewExecutionService(store *session.Store, executor dbatypes.SQLExecutor) *ExecutionService {
	return &ExecutionService{
		store:      store,
		executor:   executor,
		classifier: classify.New(nil),
	}
}

// NewExecutionServiceWithClock creates an ExecutionService whose classifier
// derives identifiers from the given clock. Used by tests.
func NewExecutionServiceWithClock(store *session.Store, executor dbatypes.SQLExecutor, clock classify.Clock) *ExecutionService {
	return &ExecutionService{
		store:      store,
		executor:   executor,
		classifier: classify.New(clock),
	}
}

// Name returns the service name "execution" for registration.
func (e *ExecutionService) Name() string {
	return "execution"
}

// Initialize sets up the ExecutionService for operation.
func (e *ExecutionService) Initialize() error {
	if e.store == nil {
		return fmt.Errorf("execution service requires a session store")
	}
	if e.executor == nil {
		return fmt.Errorf("execution service requires a sql executor")
	}
	e.initialized = true
	return nil
}

// ExecuteSQL runs one literal SQL statement and appends its outcome to the
// session. An empty statement or an in-flight turn is a silent no-op. A
// successful result is classified into a query outcome; a reported failure
// or a transport error becomes a visible degraded assistant message so the
// failure stays part of the local record.
func (e *ExecutionService) ExecuteSQL(sqlText string) error {
	if !e.initialized {
		return fmt.Errorf("execution service not initialized")
	}

	if strings.TrimSpace(sqlText) == "" {
		return nil
	}
	if !e.store.SetBusy(true) {
		return nil
	}
	defer e.store.SetBusy(false)

	result, err := e.executor.ExecuteSQL(sqlText)
	if err != nil {
		e.appendFailureNotice("❌ Execution failed due to network error")
		logger.Error("SQL execution failed", "error", err)
		return fmt.Errorf("sql execution failed: %w", err)
	}

	if !result.Success {
		e.appendFailureNotice(fmt.Sprintf("❌ Execution failed: %s", result.Message))
		logger.ServiceOperation("execution", "statement rejected", "message", result.Message)
		return nil
	}

	outcome := e.classifier.Classify(result)
	e.store.Append(outcome)
	logger.ServiceOperation("execution", "outcome appended", "summary", outcome.Summary)
	return nil
}

// appendFailureNotice records a failure as a degraded assistant message.
// Routing it through the classifier keeps message construction in one place.
func (e *ExecutionService) appendFailureNotice(notice string) {
	message := e.classifier.Classify(map[string]any{
		"sender":  string(dbatypes.SenderAssistant),
		"content": notice,
	})
	e.store.Append(message)
}
