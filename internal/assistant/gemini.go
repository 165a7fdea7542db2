package assistant

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const systemInstruction = `You are a helpful assistant for a small jewelry shop's local billing app. Always assume the domain is gold/silver jewelry billing.
- When the user asks for rates, refer to provided 'Rates: ...' context.
- When asked to summarise months, use provided compact KPIs; do not ask for more data.
- When generating bills, acknowledge parsed items and mention missing customer details if any.
- Be concise and avoid unrelated interpretations (e.g., do not interpret 'gold' as 'Google').
- Respond in plain text. Do not output code blocks or tool call snippets.`

// Summarizer turns a prompt with shop context into a short reply.
type Summarizer interface {
	Summarize(ctx context.Context, prompt string) (string, error)
}

var ErrEmptyCompletion = errors.New("model returned no text")

// GeminiSummarizer answers through the Gemini API.
type GeminiSummarizer struct {
	client    *genai.Client
	model     string
	maxTokens int32
}

// NewGeminiSummarizer opens a client for apiKey. Close it when done.
func NewGeminiSummarizer(ctx context.Context, apiKey, model string) (*GeminiSummarizer, error) {
	if apiKey == "" {
		return nil, errors.New("gemini api key is empty")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}
	return &GeminiSummarizer{client: client, model: model, maxTokens: 256}, nil
}

func (g *GeminiSummarizer) Summarize(ctx context.Context, prompt string) (string, error) {
	model := g.client.GenerativeModel(g.model)
	model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(systemInstruction)}}
	model.SetTemperature(0.2)
	model.SetMaxOutputTokens(g.maxTokens)

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	text := cleanCompletion(responseText(resp))
	if text == "" {
		return "", ErrEmptyCompletion
	}
	return text, nil
}

func (g *GeminiSummarizer) Close() error {
	return g.client.Close()
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var parts []string
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			parts = append(parts, string(txt))
		}
	}
	return strings.Join(parts, " ")
}

var (
	codeFenceRe = regexp.MustCompile("(?s)```.*?```")
	toolCodeRe  = regexp.MustCompile(`(?is)\s*tool_code.*$`)
)

// cleanCompletion drops fenced blocks and trailing tool call text.
func cleanCompletion(s string) string {
	s = codeFenceRe.ReplaceAllString(s, "")
	s = toolCodeRe.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}
