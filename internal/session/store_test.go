package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dbassist/pkg/dbatypes"
)

func userMessage(id int64, content string) dbatypes.ChatMessage {
	return dbatypes.ChatMessage{ID: id, Kind: dbatypes.KindUser, Sender: dbatypes.SenderUser, Content: content}
}

func assistantMessage(id int64, content string) dbatypes.ChatMessage {
	return dbatypes.ChatMessage{ID: id, Kind: dbatypes.KindLLM, Sender: dbatypes.SenderAssistant, Content: content}
}

func TestStore_AppendPreservesOrder(t *testing.T) {
	store := NewStore()

	store.Append(userMessage(1, "first"))
	store.Append(assistantMessage(2, "second"))
	store.Append(userMessage(3, "third"))

	messages := store.Messages()
	require.Len(t, messages, 3)
	assert.Equal(t, "first", messages[0].Content)
	assert.Equal(t, "second", messages[1].Content)
	assert.Equal(t, "third", messages[2].Content)
}

func TestStore_ReplaceAllReplacesNotMerges(t *testing.T) {
	store := NewStore()
	store.Append(userMessage(99, "optimistic echo"))

	server := []dbatypes.ChatMessage{
		userMessage(1, "show all users"),
		assistantMessage(2, "SELECT * FROM users;"),
	}
	store.ReplaceAll(server)

	messages := store.Messages()
	require.Len(t, messages, 2)
	assert.Equal(t, int64(1), messages[0].ID)
	assert.Equal(t, int64(2), messages[1].ID)
}

func TestStore_ReplaceAllTrustsCallerOrdering(t *testing.T) {
	store := NewStore()

	// IDs intentionally out of order: the store must not re-sort.
	store.ReplaceAll([]dbatypes.ChatMessage{
		assistantMessage(5, "later id first"),
		userMessage(2, "earlier id second"),
	})

	messages := store.Messages()
	require.Len(t, messages, 2)
	assert.Equal(t, int64(5), messages[0].ID)
	assert.Equal(t, int64(2), messages[1].ID)
}

func TestStore_MessagesReturnsSnapshot(t *testing.T) {
	store := NewStore()
	store.Append(userMessage(1, "original"))

	snapshot := store.Messages()
	snapshot[0].Content = "mutated"

	messages := store.Messages()
	require.Len(t, messages, 1)
	assert.Equal(t, "original", messages[0].Content)
}

func TestStore_SetBusyRejectsReentry(t *testing.T) {
	store := NewStore()

	assert.True(t, store.SetBusy(true))
	assert.True(t, store.Busy())

	// Second submission while in flight is rejected, state untouched.
	assert.False(t, store.SetBusy(true))
	assert.True(t, store.Busy())

	assert.True(t, store.SetBusy(false))
	assert.False(t, store.Busy())

	// Clearing an already-clear flag is fine.
	assert.True(t, store.SetBusy(false))
}

func TestStore_ClearEmptiesAndResetsBusy(t *testing.T) {
	store := NewStore()
	store.Append(userMessage(1, "hello"))
	store.SetBusy(true)

	store.Clear()

	assert.Zero(t, store.Len())
	assert.False(t, store.Busy())
}

func TestStore_SetActiveConnectionDiscardsSession(t *testing.T) {
	store := NewStore()
	assert.False(t, store.HasActiveConnection())

	store.SetActiveConnection(&dbatypes.ConnectionProfile{ID: 1, Name: "prod"})
	store.Append(userMessage(1, "hello"))
	store.SetBusy(true)
	assert.True(t, store.HasActiveConnection())

	store.SetActiveConnection(&dbatypes.ConnectionProfile{ID: 2, Name: "staging"})

	assert.Zero(t, store.Len())
	assert.False(t, store.Busy())
	require.NotNil(t, store.ActiveConnection())
	assert.Equal(t, 2, store.ActiveConnection().ID)

	store.SetActiveConnection(nil)
	assert.False(t, store.HasActiveConnection())
}
