package model

import (
	"fmt"
	"sort"
)

// Entry describes one catalog model: its wire family, its default inference
// parameters, and the builder/decoder functions for that family. Builder and
// decoders are registered exactly once, here, so no other package dispatches
// on model identifiers.
type Entry struct {
	ID     string
	Family Family
	Params InferenceParameters

	build       func(in Input, p InferenceParameters) (Body, error)
	decode      func(payload []byte) (string, error)
	decodeChunk func(payload []byte) (string, error)
}

// Catalog is the static table of supported models keyed by identifier.
type Catalog struct {
	entries map[string]*Entry
}

func intPtr(v int) *int { return &v }

// NewCatalog constructs the catalog with compiled-in defaults. Defaults can
// be overridden per model via SetParams (driven by the configuration file).
func NewCatalog() *Catalog {
	c := &Catalog{entries: map[string]*Entry{}}

	claudeDefaults := InferenceParameters{Temperature: 1.0, TopP: 1.0, TopK: intPtr(250), MaxTokens: 500}
	mistralDefaults := InferenceParameters{Temperature: 0.5, TopP: 0.9, TopK: intPtr(200), MaxTokens: 1024}

	c.register(&Entry{
		ID: "anthropic.claude-v2", Family: FamilyClaude, Params: claudeDefaults,
		build: buildClaude, decode: decodeClaude, decodeChunk: decodeClaude,
	})
	c.register(&Entry{
		ID: "anthropic.claude-v2:1", Family: FamilyClaude, Params: claudeDefaults,
		build: buildClaude, decode: decodeClaude, decodeChunk: decodeClaude,
	})
	c.register(&Entry{
		ID: "anthropic.claude-3-sonnet-20240229-v1:0", Family: FamilyClaude3,
		Params: InferenceParameters{Temperature: 1.0, TopP: 1.0, MaxTokens: 1000},
		build:  buildClaude3, decode: decodeClaude3, decodeChunk: decodeClaude3Chunk,
	})
	c.register(&Entry{
		ID: "anthropic.claude-3-haiku-20240307-v1:0", Family: FamilyClaude3,
		Params: InferenceParameters{Temperature: 1.0, TopP: 1.0, MaxTokens: 1000},
		build:  buildClaude3, decode: decodeClaude3, decodeChunk: decodeClaude3Chunk,
	})
	c.register(&Entry{
		ID: "cohere.command-text-v14", Family: FamilyCohere,
		Params: InferenceParameters{Temperature: 1.0, TopP: 0.1, TopK: intPtr(1), MaxTokens: 500},
		build:  buildCohere, decode: decodeCohere, decodeChunk: decodeCohereChunk,
	})
	c.register(&Entry{
		ID: "meta.llama2-70b-chat-v1", Family: FamilyLlama2,
		Params: InferenceParameters{Temperature: 1.0, TopP: 0.1, MaxTokens: 1024},
		build:  buildLlama2, decode: decodeLlama2, decodeChunk: decodeLlama2,
	})
	c.register(&Entry{
		ID: "ai21.j2-ultra-v1", Family: FamilyJurassic2,
		Params: InferenceParameters{Temperature: 0.7, TopP: 1.0, MaxTokens: 200},
		build:  buildJurassic2, decode: decodeJurassic2, decodeChunk: decodeJurassic2Chunk,
	})
	c.register(&Entry{
		ID: "amazon.titan-text-express-v1", Family: FamilyTitan,
		Params: InferenceParameters{Temperature: 0, TopP: 1.0, MaxTokens: 8192},
		build:  buildTitan, decode: decodeTitan, decodeChunk: decodeTitanChunk,
	})
	c.register(&Entry{
		ID: "mistral.mixtral-8x7b-instruct-v0:1", Family: FamilyMistral, Params: mistralDefaults,
		build: buildMistral, decode: decodeMistral, decodeChunk: decodeMistral,
	})
	c.register(&Entry{
		ID: "mistral.mistral-7b-instruct-v0:2", Family: FamilyMistral, Params: mistralDefaults,
		build: buildMistral, decode: decodeMistral, decodeChunk: decodeMistral,
	})

	return c
}

func (c *Catalog) register(e *Entry) { c.entries[e.ID] = e }

// Entry returns the catalog entry for a model identifier.
func (c *Catalog) Entry(modelID string) (*Entry, bool) {
	e, ok := c.entries[modelID]
	return e, ok
}

// IDs returns all known model identifiers, sorted.
func (c *Catalog) IDs() []string {
	ids := make([]string, 0, len(c.entries))
	for id := range c.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// SetParams replaces the default inference parameters for one model.
func (c *Catalog) SetParams(modelID string, p InferenceParameters) error {
	e, ok := c.entries[modelID]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownModel, modelID)
	}
	e.Params = p
	return nil
}

// Build produces the invocation Options for a model from the canonical input.
// It fails with ErrUnknownModel for identifiers outside the catalog and with
// the builder's own error for invalid input (missing question, unsupported
// image modality). Pure: no I/O, catalog defaults are copied into the body.
func (c *Catalog) Build(modelID string, in Input) (Options, error) {
	e, ok := c.entries[modelID]
	if !ok {
		return Options{}, fmt.Errorf("%w: %q", ErrUnknownModel, modelID)
	}
	body, err := e.build(in, e.Params)
	if err != nil {
		return Options{}, fmt.Errorf("building request for %q: %w", modelID, err)
	}
	return Options{
		ModelID:     e.ID,
		Family:      e.Family,
		ContentType: "application/json",
		Accept:      "*/*",
		Body:        body,
	}, nil
}

// Decode extracts the text fragment from a raw response payload. The
// streaming flag selects the chunk decoder, whose contract differs: known
// non-text control events yield an empty fragment, not an error. All decode
// failures, including an unknown model identifier (a programmer error, since
// the builder stage rejects those first), surface as a *DecodeError carrying
// the model identifier.
func (c *Catalog) Decode(modelID string, payload []byte, streaming bool) (string, error) {
	e, ok := c.entries[modelID]
	if !ok {
		return "", &DecodeError{ModelID: modelID, Err: ErrUnknownModel}
	}
	decode := e.decode
	if streaming {
		decode = e.decodeChunk
	}
	text, err := decode(payload)
	if err != nil {
		return "", &DecodeError{ModelID: modelID, Err: err}
	}
	return text, nil
}
