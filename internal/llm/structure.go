package llm

import (
	"context"
	"encoding/json"
	"strings"
)

const structuringSystemPrompt = `You are a markdown to JSON converter. Convert the provided markdown analysis into a clean, structured JSON format.

CRITICAL RULES:
1. Output ONLY valid JSON - no explanations, no markdown code blocks, no extra text
2. Do NOT wrap the JSON in code fences or any markdown formatting
3. Start your response directly with { and end with }
4. Preserve ALL information from the markdown
5. Keep ALL hyperlinks exactly as they appear
6. Maintain hierarchical structure from markdown
7. Use consistent key names across all sections

EXAMPLE OUTPUT FORMAT (adapt structure to match input):
{"sections":[{"title":"SECTION 1","opportunities":[{"name":"...","link":"...","priority":"High"}]}]}`

// Structured is the outcome of converting markdown analysis to JSON.
// Structuring is best-effort: when the conversion fails, Text carries the
// original markdown unchanged, Degraded is set, and Reason records why.
// The analysis is never discarded.
type Structured struct {
	Text     string
	Degraded bool
	Reason   string
}

// Structurer converts markdown analysis into machine-parseable JSON using a
// cheap model. It never returns an error; failures degrade to the raw input.
type Structurer struct {
	client *Client
}

// NewStructurer wraps a client for markdown-to-JSON conversion.
func NewStructurer(client *Client) *Structurer {
	return &Structurer{client: client}
}

// Structure converts markdown into JSON, degrading to the raw markdown on any
// failure.
func (s *Structurer) Structure(ctx context.Context, markdown string) Structured {
	if strings.TrimSpace(markdown) == "" {
		return Structured{Text: markdown, Degraded: true, Reason: "empty analysis"}
	}
	if s == nil || s.client == nil {
		return Structured{Text: markdown, Degraded: true, Reason: "structurer not configured"}
	}

	userPrompt := "Convert this markdown to structured JSON (output ONLY the JSON, no markdown formatting):\n\n" + markdown
	content, err := s.client.CompleteJSON(ctx, structuringSystemPrompt, userPrompt)
	if err != nil {
		return Structured{Text: markdown, Degraded: true, Reason: err.Error()}
	}

	var payload json.RawMessage
	if err := DecodeLLMJSON(content, &payload); err != nil {
		return Structured{Text: markdown, Degraded: true, Reason: "invalid JSON from model: " + err.Error()}
	}
	return Structured{Text: string(payload)}
}
