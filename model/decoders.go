package model

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

// Decoders turn raw response bytes into the text fragment they encode. Each
// family registers two: one for a complete response body and one for a
// streaming chunk. A chunk that is a known control event (message start/stop,
// content block boundaries) decodes to the empty string, not an error.

var errEmptyPayload = errors.New("empty response payload")

func decodeClaude(payload []byte) (string, error) {
	var out struct {
		Completion string `json:"completion"`
	}
	if err := json.Unmarshal(payload, &out); err != nil {
		return "", err
	}
	return out.Completion, nil
}

func decodeClaude3(payload []byte) (string, error) {
	var out struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.Unmarshal(payload, &out); err != nil {
		return "", err
	}
	if len(out.Content) == 0 {
		return "", errEmptyPayload
	}
	var text string
	for _, block := range out.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}
	return text, nil
}

// decodeClaude3Chunk handles the non-uniform streaming event shapes. The
// protocol interleaves text deltas with control events (message_start,
// content_block_start, message_stop, ...), so this probes the payload as
// generic JSON and only emits text for an incremental text delta.
func decodeClaude3Chunk(payload []byte) (string, error) {
	if !gjson.ValidBytes(payload) {
		return "", fmt.Errorf("chunk is not valid JSON")
	}
	delta := gjson.GetBytes(payload, "delta")
	if !delta.Exists() {
		return "", nil
	}
	if delta.Get("type").String() != "text_delta" {
		return "", nil
	}
	return delta.Get("text").String(), nil
}

func decodeCohere(payload []byte) (string, error) {
	var out struct {
		Generations []struct {
			Text string `json:"text"`
		} `json:"generations"`
	}
	if err := json.Unmarshal(payload, &out); err != nil {
		return "", err
	}
	if len(out.Generations) == 0 {
		return "", errEmptyPayload
	}
	return out.Generations[0].Text, nil
}

func decodeCohereChunk(payload []byte) (string, error) {
	var out struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(payload, &out); err != nil {
		return "", err
	}
	return out.Text, nil
}

func decodeLlama2(payload []byte) (string, error) {
	var out struct {
		Generation string `json:"generation"`
	}
	if err := json.Unmarshal(payload, &out); err != nil {
		return "", err
	}
	return out.Generation, nil
}

func decodeJurassic2(payload []byte) (string, error) {
	var out struct {
		Completions []struct {
			Data struct {
				Text string `json:"text"`
			} `json:"data"`
		} `json:"completions"`
	}
	if err := json.Unmarshal(payload, &out); err != nil {
		return "", err
	}
	if len(out.Completions) == 0 {
		return "", errEmptyPayload
	}
	return out.Completions[0].Data.Text, nil
}

// decodeJurassic2Chunk probes generically: Jurassic-2 does not stream in
// practice, but a chunk shaped like the full body still decodes.
func decodeJurassic2Chunk(payload []byte) (string, error) {
	if !gjson.ValidBytes(payload) {
		return "", fmt.Errorf("chunk is not valid JSON")
	}
	return gjson.GetBytes(payload, "completions.0.data.text").String(), nil
}

func decodeTitan(payload []byte) (string, error) {
	var out struct {
		Results []struct {
			OutputText string `json:"outputText"`
		} `json:"results"`
	}
	if err := json.Unmarshal(payload, &out); err != nil {
		return "", err
	}
	if len(out.Results) == 0 {
		return "", errEmptyPayload
	}
	return out.Results[0].OutputText, nil
}

func decodeTitanChunk(payload []byte) (string, error) {
	var out struct {
		OutputText string `json:"outputText"`
	}
	if err := json.Unmarshal(payload, &out); err != nil {
		return "", err
	}
	return out.OutputText, nil
}

func decodeMistral(payload []byte) (string, error) {
	var out struct {
		Outputs []struct {
			Text string `json:"text"`
		} `json:"outputs"`
	}
	if err := json.Unmarshal(payload, &out); err != nil {
		return "", err
	}
	if len(out.Outputs) == 0 {
		return "", errEmptyPayload
	}
	return out.Outputs[0].Text, nil
}
