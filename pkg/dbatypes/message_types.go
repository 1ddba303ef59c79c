// Package dbatypes defines the shared types for the db-assistant chat engine.
// This file contains the timeline message model: one closed, tagged variant
// type covering user requests, assistant-generated text, and SQL execution
// outcomes.
package dbatypes

import "time"

// SenderType identifies who produced a message.
type SenderType string

// Message senders.
const (
	SenderUser      SenderType = "USER"
	SenderAssistant SenderType = "ASSISTANT"
)

// MessageKind is the discriminator tag of ChatMessage. The set is closed:
// every consumer must handle all three kinds.
type MessageKind string

// Message kinds.
const (
	KindUser  MessageKind = "USER"  // natural-language request typed by the user
	KindLLM   MessageKind = "LLM"   // SQL or prose generated by the assistant
	KindQuery MessageKind = "QUERY" // outcome of executing a literal SQL statement
)

// ChatMessage is a single entry in the conversation timeline. Which fields
// are meaningful depends on Kind: Content for KindUser and KindLLM, Summary
// and Result for KindQuery. Insertion order is the conversation order of
// record; SentAt may be client-synthesized and is for display only.
type ChatMessage struct {
	ID      int64        `json:"id"`
	Sender  SenderType   `json:"sender"`
	SentAt  time.Time    `json:"sentAt"`
	Kind    MessageKind  `json:"kind"`
	Content string       `json:"content,omitempty"`
	Summary string       `json:"summary,omitempty"`
	Result  *QueryResult `json:"result,omitempty"`
}

// IsUserRequest reports whether the message is a user-typed request.
func (m ChatMessage) IsUserRequest() bool {
	return m.Kind == KindUser
}

// IsAssistantGenerated reports whether the message is assistant-generated
// text (SQL or explanation).
func (m ChatMessage) IsAssistantGenerated() bool {
	return m.Kind == KindLLM
}

// IsQueryOutcome reports whether the message is an SQL execution outcome.
func (m ChatMessage) IsQueryOutcome() bool {
	return m.Kind == KindQuery
}

// DisplayText returns the text a UI should render for the message: the
// content for user and assistant messages, the summary for query outcomes.
// This is the single projection presentation code should call instead of
// branching on Kind itself.
func (m ChatMessage) DisplayText() string {
	switch m.Kind {
	case KindUser, KindLLM:
		return m.Content
	case KindQuery:
		return m.Summary
	}
	return ""
}
