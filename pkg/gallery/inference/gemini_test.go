package inference_test

import (
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NethermindEth/genaiterest/pkg/gallery/inference"
)

func TestGeminiPrompt(t *testing.T) {
	system, parts := inference.GeminiPrompt([]openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: "Describe the task."},
		{Role: openai.ChatMessageRoleUser, Content: "List 3 fashion photography subjects"},
	})

	require.NotNil(t, system)
	assert.Equal(t, []genai.Part{genai.Text("Describe the task.")}, system.Parts)
	assert.Equal(t, []genai.Part{genai.Text("List 3 fashion photography subjects")}, parts)
}

func TestGeminiPrompt_NoSystemMessage(t *testing.T) {
	system, parts := inference.GeminiPrompt([]openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleUser, Content: "hello"},
	})

	assert.Nil(t, system)
	assert.Len(t, parts, 1)
}

func TestGeminiResponse(t *testing.T) {
	resp, err := inference.GeminiResponse("gemini-1.5-flash", &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []genai.Part{
				genai.Text("1. silk gown\n"),
				genai.Blob{MIMEType: "image/png"},
				genai.Text("2. street style"),
			}},
		}},
	})
	require.NoError(t, err)

	content, err := inference.ChatContent(resp)
	require.NoError(t, err)
	assert.Equal(t, "1. silk gown\n2. street style", content)
	assert.Equal(t, "gemini-1.5-flash", resp.Model)
	assert.Equal(t, openai.ChatMessageRoleAssistant, resp.Choices[0].Message.Role)
}

func TestGeminiResponse_Empty(t *testing.T) {
	tests := []struct {
		name string
		resp *genai.GenerateContentResponse
	}{
		{name: "nil response", resp: nil},
		{name: "no candidates", resp: &genai.GenerateContentResponse{}},
		{name: "candidate without content", resp: &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := inference.GeminiResponse("gemini-1.5-flash", tt.resp)
			assert.ErrorIs(t, err, inference.ErrEmptyResponse)
		})
	}
}
