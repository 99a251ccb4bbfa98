package testutil

import (
	"github.com/darko-mesaros/bedrust/chat"
)

// ConversationBuilder helps construct conversations with fluent chaining for
// tests. Example:
//
//	c := NewConversationBuilder().Turn("hi", "hello").Title("Greetings").Build()
type ConversationBuilder struct {
	title    string
	summary  string
	messages []chat.Message
}

// NewConversationBuilder creates an empty builder. Chain the methods you
// need, then call Build.
func NewConversationBuilder() *ConversationBuilder {
	return &ConversationBuilder{}
}

// Title sets the conversation title (chainable).
func (b *ConversationBuilder) Title(t string) *ConversationBuilder { b.title = t; return b }

// Summary sets the conversation summary (chainable).
func (b *ConversationBuilder) Summary(s string) *ConversationBuilder { b.summary = s; return b }

// User appends a user message (chainable).
func (b *ConversationBuilder) User(text string) *ConversationBuilder {
	b.messages = append(b.messages, chat.Message{Role: "user", Content: []string{text}})
	return b
}

// Assistant appends an assistant message (chainable).
func (b *ConversationBuilder) Assistant(text string) *ConversationBuilder {
	b.messages = append(b.messages, chat.Message{Role: "assistant", Content: []string{text}})
	return b
}

// Turn appends one complete question/answer exchange (chainable).
func (b *ConversationBuilder) Turn(question, answer string) *ConversationBuilder {
	return b.User(question).Assistant(answer)
}

// Build returns the assembled conversation.
func (b *ConversationBuilder) Build() *chat.Conversation {
	c := chat.NewConversation()
	if b.title != "" {
		title := b.title
		c.Title = &title
	}
	if b.summary != "" {
		summary := b.summary
		c.Summary = &summary
	}
	c.Messages = append(c.Messages, b.messages...)
	return c
}
