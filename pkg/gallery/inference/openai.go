package inference

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// NewOpenAIChat returns a chat backend for OpenAI or any OpenAI-compatible
// endpoint, such as a hosted Llama 2 deployment.
func NewOpenAIChat(apiKey string, baseURL string, httpClient *http.Client) *openai.Client {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = strings.TrimRight(baseURL, "/")
	}
	if httpClient != nil {
		config.HTTPClient = httpClient
	}
	return openai.NewClientWithConfig(config)
}

type OpenAIImageGenerator struct {
	model  string
	client *openai.Client
}

var _ ImageBackend = (*OpenAIImageGenerator)(nil)

func NewOpenAIImageGenerator(apiKey string, baseURL string, model string, httpClient *http.Client) *OpenAIImageGenerator {
	return &OpenAIImageGenerator{
		model:  model,
		client: NewOpenAIChat(apiKey, baseURL, httpClient),
	}
}

func (g *OpenAIImageGenerator) GenerateImage(ctx context.Context, req ImageRequest) (*ImageResponse, error) {
	resp, err := g.client.CreateImage(ctx, openai.ImageRequest{
		Prompt:         generatePrompt(req.Prompt, req.NegativePrompt),
		Size:           openai.CreateImageSize1024x1024,
		ResponseFormat: openai.CreateImageResponseFormatB64JSON,
		N:              1,
		Model:          g.model,
	})
	if err != nil {
		return nil, err
	}

	if len(resp.Data) == 0 || resp.Data[0].B64JSON == "" {
		return nil, fmt.Errorf("no image data returned: %w", ErrEmptyResponse)
	}

	return &ImageResponse{
		Completion: map[string]string{"image_0": resp.Data[0].B64JSON},
	}, nil
}

// generatePrompt folds the negative prompt in, since the images API has no
// separate field for it.
func generatePrompt(prompt string, negativePrompt string) string {
	if negativePrompt == "" {
		return prompt
	}
	return fmt.Sprintf("%s\n\nAvoid: %s", prompt, negativePrompt)
}
