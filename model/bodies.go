package model

import (
	"encoding/base64"
	"fmt"
)

// anthropicVersion is the fixed API version tag Bedrock expects for the
// Claude 3 messages shape.
const anthropicVersion = "bedrock-2023-05-31"

// ClaudeBody is the legacy Anthropic completion request.
type ClaudeBody struct {
	Prompt            string   `json:"prompt"`
	Temperature       float64  `json:"temperature"`
	TopP              float64  `json:"top_p"`
	TopK              int      `json:"top_k"`
	MaxTokensToSample int      `json:"max_tokens_to_sample"`
	StopSequences     []string `json:"stop_sequences"`
}

func (ClaudeBody) isBody() {}

// Claude3Body is the Anthropic messages request.
type Claude3Body struct {
	AnthropicVersion string           `json:"anthropic_version"`
	MaxTokens        int              `json:"max_tokens"`
	System           string           `json:"system,omitempty"`
	Messages         []Claude3Message `json:"messages"`
}

func (Claude3Body) isBody() {}

// Claude3Message is one role-tagged message of the Claude 3 shape.
type Claude3Message struct {
	Role    string           `json:"role"`
	Content []Claude3Content `json:"content"`
}

// Claude3Content is a single content block: either text or an inline image.
type Claude3Content struct {
	Type   string              `json:"type"`
	Text   string              `json:"text,omitempty"`
	Source *Claude3ImageSource `json:"source,omitempty"`
}

// Claude3ImageSource carries base64 encoded image bytes.
type Claude3ImageSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

// CohereBody is the Cohere Command request.
type CohereBody struct {
	Prompt        string   `json:"prompt"`
	MaxTokens     int      `json:"max_tokens"`
	Temperature   float64  `json:"temperature"`
	P             float64  `json:"p"`
	K             int      `json:"k"`
	StopSequences []string `json:"stop_sequences"`
	Stream        bool     `json:"stream"`
}

func (CohereBody) isBody() {}

// Llama2Body is the Meta Llama 2 request.
type Llama2Body struct {
	Prompt      string  `json:"prompt"`
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p"`
	MaxGenLen   int     `json:"max_gen_len"`
}

func (Llama2Body) isBody() {}

// Jurassic2Body is the AI21 Jurassic-2 request. Field names are camelCase on
// the wire.
type Jurassic2Body struct {
	Prompt        string   `json:"prompt"`
	Temperature   float64  `json:"temperature"`
	TopP          float64  `json:"topP"`
	MaxTokens     int      `json:"maxTokens"`
	StopSequences []string `json:"stopSequences"`
}

func (Jurassic2Body) isBody() {}

// TitanBody is the Amazon Titan text request with its nested generation config.
type TitanBody struct {
	InputText            string         `json:"inputText"`
	TextGenerationConfig TitanGenConfig `json:"textGenerationConfig"`
}

func (TitanBody) isBody() {}

// TitanGenConfig holds the Titan sampling parameters.
type TitanGenConfig struct {
	Temperature   float64  `json:"temperature"`
	TopP          float64  `json:"topP"`
	MaxTokenCount int      `json:"maxTokenCount"`
	StopSequences []string `json:"stopSequences"`
}

// MistralBody is the Mistral/Mixtral instruct request.
type MistralBody struct {
	Prompt      string   `json:"prompt"`
	Temperature float64  `json:"temperature"`
	TopP        float64  `json:"top_p"`
	TopK        int      `json:"top_k"`
	MaxTokens   int      `json:"max_tokens"`
	Stop        []string `json:"stop"`
}

func (MistralBody) isBody() {}

// --- builders, one per family ---

func buildClaude(in Input, p InferenceParameters) (Body, error) {
	if in.Image != nil {
		return nil, ErrUnsupportedModality
	}
	q, err := in.prompt()
	if err != nil {
		return nil, err
	}
	return ClaudeBody{
		// Legacy completion models need the Human/Assistant turn scaffold.
		Prompt:            fmt.Sprintf("\n\nHuman: %s\n\nAssistant:", q),
		Temperature:       p.Temperature,
		TopP:              p.TopP,
		TopK:              p.topK(),
		MaxTokensToSample: p.MaxTokens,
		StopSequences:     p.stops(),
	}, nil
}

func buildClaude3(in Input, p InferenceParameters) (Body, error) {
	var messages []Claude3Message
	switch {
	case len(in.Messages) > 0:
		for _, m := range in.Messages {
			msg := Claude3Message{Role: string(m.Role)}
			for _, seg := range m.Content {
				msg.Content = append(msg.Content, Claude3Content{Type: "text", Text: seg})
			}
			messages = append(messages, msg)
		}
	case in.Question != "":
		messages = []Claude3Message{{
			Role:    string(RoleUser),
			Content: []Claude3Content{{Type: "text", Text: in.Question}},
		}}
	default:
		return nil, ErrMissingQuestion
	}

	if in.Image != nil {
		// The image rides along with the last user message.
		idx := len(messages) - 1
		messages[idx].Content = append(messages[idx].Content, Claude3Content{
			Type: "image",
			Source: &Claude3ImageSource{
				Type:      "base64",
				MediaType: in.Image.MediaType(),
				Data:      base64.StdEncoding.EncodeToString(in.Image.Data),
			},
		})
	}

	return Claude3Body{
		AnthropicVersion: anthropicVersion,
		MaxTokens:        p.MaxTokens,
		System:           in.System,
		Messages:         messages,
	}, nil
}

func buildCohere(in Input, p InferenceParameters) (Body, error) {
	if in.Image != nil {
		return nil, ErrUnsupportedModality
	}
	q, err := in.prompt()
	if err != nil {
		return nil, err
	}
	return CohereBody{
		Prompt:        q,
		MaxTokens:     p.MaxTokens,
		Temperature:   p.Temperature,
		P:             p.TopP,
		K:             p.topK(),
		StopSequences: p.stops(),
		Stream:        true,
	}, nil
}

func buildLlama2(in Input, p InferenceParameters) (Body, error) {
	if in.Image != nil {
		return nil, ErrUnsupportedModality
	}
	q, err := in.prompt()
	if err != nil {
		return nil, err
	}
	return Llama2Body{
		Prompt:      q,
		Temperature: p.Temperature,
		TopP:        p.TopP,
		MaxGenLen:   p.MaxTokens,
	}, nil
}

func buildJurassic2(in Input, p InferenceParameters) (Body, error) {
	if in.Image != nil {
		return nil, ErrUnsupportedModality
	}
	q, err := in.prompt()
	if err != nil {
		return nil, err
	}
	return Jurassic2Body{
		Prompt:        q,
		Temperature:   p.Temperature,
		TopP:          p.TopP,
		MaxTokens:     p.MaxTokens,
		StopSequences: p.stops(),
	}, nil
}

func buildTitan(in Input, p InferenceParameters) (Body, error) {
	if in.Image != nil {
		return nil, ErrUnsupportedModality
	}
	q, err := in.prompt()
	if err != nil {
		return nil, err
	}
	return TitanBody{
		InputText: q,
		TextGenerationConfig: TitanGenConfig{
			Temperature:   p.Temperature,
			TopP:          p.TopP,
			MaxTokenCount: p.MaxTokens,
			StopSequences: p.stops(),
		},
	}, nil
}

func buildMistral(in Input, p InferenceParameters) (Body, error) {
	if in.Image != nil {
		return nil, ErrUnsupportedModality
	}
	q, err := in.prompt()
	if err != nil {
		return nil, err
	}
	return MistralBody{
		Prompt:      q,
		Temperature: p.Temperature,
		TopP:        p.TopP,
		TopK:        p.topK(),
		MaxTokens:   p.MaxTokens,
		Stop:        p.stops(),
	}, nil
}
