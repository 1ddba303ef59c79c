// Package session holds the chat session state for the active database
// connection: the ordered message timeline, the in-flight flag, and the
// active connection reference. All engine state lives here; the controllers
// in internal/services hold none of their own.
package session

import (
	"sync"

	"dbassist/pkg/dbatypes"
)

// Store is the single shared mutable resource of the chat engine. Insertion
// order of the message slice is the conversation order of record; the store
// never reorders or classifies. The busy flag is an advisory single-writer
// lock: it spans one turn or execution from submission to terminal outcome.
type Store struct {
	mu         sync.RWMutex
	messages   []dbatypes.ChatMessage
	busy       bool
	connection *dbatypes.ConnectionProfile
}

// NewStore creates an empty session store with no active connection.
func NewStore() *Store {
	return &Store{
		messages: make([]dbatypes.ChatMessage, 0),
	}
}

// ReplaceAll sets the ordered timeline wholesale. Used after a full history
// reload: the caller's ordering is authoritative and is trusted as-is. Any
// optimistic local entries not reproduced by the new sequence are gone.
func (s *Store) ReplaceAll(messages []dbatypes.ChatMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.messages = make([]dbatypes.ChatMessage, len(messages))
	copy(s.messages, messages)
}

// Append adds one message at the tail. Used for the optimistic echo of a
// user request and for execution outcomes.
func (s *Store) Append(message dbatypes.ChatMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.messages = append(s.messages, message)
}

// Clear empties the timeline and resets the busy flag.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.messages = make([]dbatypes.ChatMessage, 0)
	s.busy = false
}

// SetBusy toggles the in-flight flag and reports whether the transition was
// applied. Setting busy while already busy is rejected (returns false, state
// untouched): exactly one turn or execution may be in flight at a time, and
// callers must treat a false return as "a submission is already running".
func (s *Store) SetBusy(busy bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if busy && s.busy {
		return false
	}
	s.busy = busy
	return true
}

// Busy reports whether a turn or execution is in flight.
func (s *Store) Busy() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.busy
}

// Messages returns an immutable snapshot of the ordered timeline.
func (s *Store) Messages() []dbatypes.ChatMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := make([]dbatypes.ChatMessage, len(s.messages))
	copy(snapshot, s.messages)
	return snapshot
}

// Len returns the number of messages in the timeline.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages)
}

// SetActiveConnection switches the session to a new connection. The previous
// session is discarded: the timeline empties and busy resets. Passing nil
// deactivates the session entirely.
func (s *Store) SetActiveConnection(connection *dbatypes.ConnectionProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.connection = connection
	s.messages = make([]dbatypes.ChatMessage, 0)
	s.busy = false
}

// ActiveConnection returns the active connection profile, or nil.
func (s *Store) ActiveConnection() *dbatypes.ConnectionProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.connection
}

// HasActiveConnection reports whether the session is bound to a connection.
func (s *Store) HasActiveConnection() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.connection != nil
}
