package context

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConversationHistoryRequiresConversationID(t *testing.T) {
	_, err := NewConversationHistory("")
	assert.Error(t, err)

	ch, err := NewConversationHistory("conv-1")
	require.NoError(t, err)
	assert.Equal(t, DefaultHistorySize, ch.MaxMessages)
	assert.Empty(t, ch.GetRecentMessages(10))
}

func TestNewConversationHistoryWithMaxValidatesBounds(t *testing.T) {
	_, err := NewConversationHistoryWithMax("conv-1", 0)
	assert.Error(t, err)

	_, err = NewConversationHistoryWithMax("conv-1", MaxHistorySize+1)
	assert.Error(t, err)

	ch, err := NewConversationHistoryWithMax("conv-1", 2)
	require.NoError(t, err)
	assert.Equal(t, 2, ch.MaxMessages)
}

func TestAddUserAndAssistantMessagesRecordRoleAndContent(t *testing.T) {
	ch, err := NewConversationHistory("conv-1")
	require.NoError(t, err)

	ch.AddUserMessage("hello", nil)
	ch.AddAssistantMessage("hi there", map[string]interface{}{"finishReason": "stop"})

	recent := ch.GetRecentMessages(10)
	require.Len(t, recent, 2)
	assert.Equal(t, RoleUser, recent[0].Role)
	assert.Equal(t, "hello", recent[0].Content)
	assert.Equal(t, RoleAssistant, recent[1].Role)
	assert.Equal(t, "hi there", recent[1].Content)
	assert.Equal(t, "stop", recent[1].Metadata["finishReason"])
}

func TestAddMessageTrimsToMaxMessages(t *testing.T) {
	ch, err := NewConversationHistoryWithMax("conv-1", 2)
	require.NoError(t, err)

	ch.AddUserMessage("one", nil)
	ch.AddAssistantMessage("two", nil)
	ch.AddUserMessage("three", nil)

	recent := ch.GetRecentMessages(10)
	require.Len(t, recent, 2)
	assert.Equal(t, "two", recent[0].Content)
	assert.Equal(t, "three", recent[1].Content)
}

func TestGetRecentMessagesLimitsToRequestedCount(t *testing.T) {
	ch, err := NewConversationHistory("conv-1")
	require.NoError(t, err)

	ch.AddUserMessage("one", nil)
	ch.AddAssistantMessage("two", nil)
	ch.AddUserMessage("three", nil)

	recent := ch.GetRecentMessages(2)
	require.Len(t, recent, 2)
	assert.Equal(t, "two", recent[0].Content)
	assert.Equal(t, "three", recent[1].Content)
}

func TestConversationErrorReportsConversationIDAndOperation(t *testing.T) {
	_, err := NewConversationHistoryWithMax("conv-1", 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "conv-1")
	assert.Contains(t, err.Error(), "new")
}
