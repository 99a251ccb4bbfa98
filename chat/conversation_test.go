package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darko-mesaros/bedrust/model"
)

func TestConversation_TurnProtocol(t *testing.T) {
	c := NewConversation()
	assert.True(t, c.Empty())

	c.AddUserMessage("What is 2+2?")
	c.AddAssistantMessage("4")

	assert.False(t, c.Empty())
	require.Len(t, c.Messages, 2)
	assert.Equal(t, "user", c.Messages[0].Role)
	assert.Equal(t, []string{"What is 2+2?"}, c.Messages[0].Content)
	assert.Equal(t, "assistant", c.Messages[1].Role)
}

func TestConversation_Clear(t *testing.T) {
	c := NewConversation()
	c.AddUserMessage("a")
	c.AddAssistantMessage("b")
	c.AddUserMessage("c")
	c.AddAssistantMessage("d")
	title := "some title"
	c.Title = &title
	c.filename = "some_title_12345678.json"
	before := c.Timestamp

	c.Clear()

	assert.True(t, c.Empty())
	assert.Nil(t, c.Title)
	assert.Nil(t, c.Summary)
	assert.Empty(t, c.Filename())
	// A fresh timestamp is set; it is at least not left unset.
	assert.NotEmpty(t, c.Timestamp)
	_ = before // same-second clears can legitimately produce an equal stamp
}

func TestConversation_Transcript(t *testing.T) {
	c := NewConversation()
	c.AddUserMessage("hello")
	c.AddAssistantMessage("hi there")

	assert.Equal(t, "user:hello\n\nassistant:hi there", c.Transcript())
}

func TestConversation_ModelMessages(t *testing.T) {
	c := NewConversation()
	c.AddUserMessage("hello")
	c.AddAssistantMessage("hi")

	msgs := c.ModelMessages()
	require.Len(t, msgs, 2)
	assert.Equal(t, model.RoleUser, msgs[0].Role)
	assert.Equal(t, model.RoleAssistant, msgs[1].Role)

	// Returned content is a copy, not a view into the session.
	msgs[0].Content[0] = "mutated"
	assert.Equal(t, "hello", c.Messages[0].Content[0])
}
