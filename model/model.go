package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Family tags the wire-level request/response shape a model expects. Several
// catalog entries can share one family (e.g. both Claude 3 variants).
type Family string

const (
	// FamilyClaude is the legacy Anthropic completion shape driven by a
	// Human/Assistant scaffolded prompt.
	FamilyClaude Family = "claude"
	// FamilyClaude3 is the Anthropic messages shape with role-tagged content
	// blocks; the only image-capable family in the catalog.
	FamilyClaude3 Family = "claude3"
	// FamilyCohere is the Cohere Command text generation shape.
	FamilyCohere Family = "cohere"
	// FamilyLlama2 is the Meta Llama 2 chat shape.
	FamilyLlama2 Family = "llama2"
	// FamilyJurassic2 is the AI21 Jurassic-2 completion shape.
	FamilyJurassic2 Family = "jurassic2"
	// FamilyTitan is the Amazon Titan text shape with a nested generation config.
	FamilyTitan Family = "titan"
	// FamilyMistral is the Mistral/Mixtral instruct shape.
	FamilyMistral Family = "mistral"
)

// Build-time errors. These are surfaced immediately and never retried.
var (
	// ErrUnknownModel indicates the identifier is not present in the catalog.
	ErrUnknownModel = errors.New("unknown model identifier")
	// ErrMissingQuestion indicates the target family requires a non-empty
	// question but none was supplied.
	ErrMissingQuestion = errors.New("question must not be empty")
	// ErrUnsupportedModality indicates an image was supplied for a family
	// without an image slot.
	ErrUnsupportedModality = errors.New("model family does not accept image input")
)

// DecodeError reports a response payload that did not match the expected
// per-family shape. It carries the model identifier for diagnostics.
type DecodeError struct {
	ModelID string
	Err     error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding response from %q: %v", e.ModelID, e.Err)
}

// Unwrap exposes the underlying cause.
func (e *DecodeError) Unwrap() error { return e.Err }

// Role identifies the author of a conversation message.
type Role string

const (
	// RoleUser marks a human turn.
	RoleUser Role = "user"
	// RoleAssistant marks a model turn.
	RoleAssistant Role = "assistant"
)

// Message is one turn of a conversation in the canonical, family-agnostic
// form: a role plus an ordered sequence of text segments.
type Message struct {
	Role    Role
	Content []string
}

// Text joins the message's content segments.
func (m Message) Text() string { return strings.Join(m.Content, "\n") }

// InferenceParameters are the sampling defaults owned by a catalog entry.
// They are copied, never shared, into each request body.
type InferenceParameters struct {
	Temperature   float64  `toml:"temperature"`
	TopP          float64  `toml:"top_p"`
	TopK          *int     `toml:"top_k"`
	MaxTokens     int      `toml:"max_tokens"`
	StopSequences []string `toml:"stop_sequences"`
}

func (p InferenceParameters) topK() int {
	if p.TopK == nil {
		return 0
	}
	return *p.TopK
}

func (p InferenceParameters) stops() []string {
	if p.StopSequences == nil {
		return []string{}
	}
	out := make([]string, len(p.StopSequences))
	copy(out, p.StopSequences)
	return out
}

// Image is an optional binary image payload attached to a request. Format is
// the file extension style name ("png", "jpeg").
type Image struct {
	Format string
	Data   []byte
}

// MediaType returns the MIME type for the image format.
func (i Image) MediaType() string {
	switch strings.ToLower(i.Format) {
	case "jpg", "jpeg":
		return "image/jpeg"
	case "gif":
		return "image/gif"
	case "webp":
		return "image/webp"
	default:
		return "image/png"
	}
}

// Input is the canonical request content handed to the builder. Chat-style
// families consume Messages; completion-style families consume Question and,
// when Question is empty, fall back to a flattened transcript of Messages.
type Input struct {
	Question string
	Messages []Message
	Image    *Image
	// System is an optional system prompt; only the chat-style family has a
	// slot for it, other families ignore it.
	System string
}

// transcript flattens the message list into "role: text" paragraphs.
func (in Input) transcript() string {
	parts := make([]string, 0, len(in.Messages))
	for _, m := range in.Messages {
		parts = append(parts, fmt.Sprintf("%s: %s", m.Role, m.Text()))
	}
	return strings.Join(parts, "\n\n")
}

// prompt resolves the single-string prompt for completion-style families.
func (in Input) prompt() (string, error) {
	q := in.Question
	if strings.TrimSpace(q) == "" {
		q = in.transcript()
	}
	if strings.TrimSpace(q) == "" {
		return "", ErrMissingQuestion
	}
	return q, nil
}

// Options is the fully built invocation payload: one request body variant
// plus the wire metadata the data plane needs. It is created fresh per call,
// never mutated after construction, and consumed exactly once.
type Options struct {
	ModelID     string
	Family      Family
	ContentType string
	Accept      string
	Body        Body
}

// MarshalBody serializes the family-specific request body.
func (o Options) MarshalBody() ([]byte, error) {
	return json.Marshal(o.Body)
}

// Body is the closed set of per-family request body variants. Concrete body
// types implement the unexported isBody marker.
type Body interface{ isBody() }
