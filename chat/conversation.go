package chat

import (
	"fmt"
	"strings"
	"time"

	"github.com/darko-mesaros/bedrust/model"
)

// Message is one persisted conversation turn: a role plus an ordered sequence
// of text segments. The JSON shape matches the on-disk document format.
type Message struct {
	Role    string   `json:"role"`
	Content []string `json:"content"`
}

// Conversation is the in-memory session state. It starts empty, grows by one
// user message and one assistant message per turn, and is replaced wholesale
// when a persisted document is loaded.
type Conversation struct {
	Title     *string   `json:"title"`
	Summary   *string   `json:"summary"`
	Messages  []Message `json:"messages"`
	Timestamp string    `json:"timestamp"`

	// filename is the associated document once saved, so subsequent saves
	// overwrite the same file. Deliberately not serialized.
	filename string
}

// NewConversation returns an empty session stamped with the current time.
func NewConversation() *Conversation {
	return &Conversation{Timestamp: time.Now().Format(time.RFC3339)}
}

// Empty reports whether the session holds no messages yet.
func (c *Conversation) Empty() bool { return len(c.Messages) == 0 }

// AddUserMessage appends one user turn.
func (c *Conversation) AddUserMessage(text string) {
	c.Messages = append(c.Messages, Message{Role: string(model.RoleUser), Content: []string{text}})
}

// AddAssistantMessage appends one assistant turn.
func (c *Conversation) AddAssistantMessage(text string) {
	c.Messages = append(c.Messages, Message{Role: string(model.RoleAssistant), Content: []string{text}})
}

// Clear resets the session to empty with a fresh timestamp and drops the
// filename association, so the next save creates a new document.
func (c *Conversation) Clear() {
	c.Title = nil
	c.Summary = nil
	c.Messages = nil
	c.Timestamp = time.Now().Format(time.RFC3339)
	c.filename = ""
}

// Filename returns the associated document name, empty before the first save.
func (c *Conversation) Filename() string { return c.filename }

// Transcript flattens the messages into "role:text" paragraphs, the form fed
// to the title and summary housekeeping prompts and to completion-style
// model families.
func (c *Conversation) Transcript() string {
	parts := make([]string, 0, len(c.Messages))
	for _, m := range c.Messages {
		parts = append(parts, fmt.Sprintf("%s:%s", m.Role, strings.Join(m.Content, "\n")))
	}
	return strings.Join(parts, "\n\n")
}

// ModelMessages converts the session history into the canonical form the
// request builder consumes for chat-style families.
func (c *Conversation) ModelMessages() []model.Message {
	out := make([]model.Message, 0, len(c.Messages))
	for _, m := range c.Messages {
		content := make([]string, len(m.Content))
		copy(content, m.Content)
		out = append(out, model.Message{Role: model.Role(m.Role), Content: content})
	}
	return out
}
