package inference

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/sashabaranov/go-openai"
	"google.golang.org/api/option"
)

// GeminiChat answers chat completion requests with a Gemini model. System
// messages become the model's system instruction.
type GeminiChat struct {
	client *genai.Client
}

var _ ChatBackend = (*GeminiChat)(nil)

func NewGeminiChat(ctx context.Context, apiKey string) (*GeminiChat, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &GeminiChat{client: client}, nil
}

func (g *GeminiChat) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	model := g.client.GenerativeModel(req.Model)
	if req.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(req.MaxTokens))
	}

	system, parts := geminiPrompt(req.Messages)
	model.SystemInstruction = system

	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return openai.ChatCompletionResponse{}, fmt.Errorf("failed to generate content: %w", err)
	}

	return geminiResponse(req.Model, resp)
}

// geminiPrompt splits chat messages into a system instruction and the
// content parts sent to the model. The last system message wins.
func geminiPrompt(messages []openai.ChatCompletionMessage) (*genai.Content, []genai.Part) {
	var system *genai.Content
	var parts []genai.Part
	for _, msg := range messages {
		if msg.Role == openai.ChatMessageRoleSystem {
			system = &genai.Content{Parts: []genai.Part{genai.Text(msg.Content)}}
			continue
		}
		parts = append(parts, genai.Text(msg.Content))
	}
	return system, parts
}

func geminiResponse(model string, resp *genai.GenerateContentResponse) (openai.ChatCompletionResponse, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return openai.ChatCompletionResponse{}, fmt.Errorf("no candidates returned from gemini: %w", ErrEmptyResponse)
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			text.WriteString(string(t))
		}
	}

	return openai.ChatCompletionResponse{
		Model: model,
		Choices: []openai.ChatCompletionChoice{{
			Message: openai.ChatCompletionMessage{
				Role:    openai.ChatMessageRoleAssistant,
				Content: text.String(),
			},
		}},
	}, nil
}

func (g *GeminiChat) Close() error {
	return g.client.Close()
}
