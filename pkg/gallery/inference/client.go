package inference

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/cenkalti/backoff/v4"
	"github.com/sashabaranov/go-openai"
)

const (
	defaultMaxInFlight   = 16
	defaultRetryInterval = 500 * time.Millisecond
)

// Client submits backend requests without waiting for them. Implementations
// must be safe for concurrent use.
type Client interface {
	SubmitChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (*Future[openai.ChatCompletionResponse], error)
	SubmitImageGeneration(ctx context.Context, req ImageRequest) (*Future[*ImageResponse], error)
}

// ChatBackend is satisfied by *openai.Client.
type ChatBackend interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

type ImageBackend interface {
	GenerateImage(ctx context.Context, req ImageRequest) (*ImageResponse, error)
}

type ImageRequest struct {
	Prompt         string  `json:"prompt"`
	NegativePrompt string  `json:"negative_prompt"`
	StylePreset    string  `json:"style_preset"`
	CfgScale       float64 `json:"cfg_scale"`
	Steps          int     `json:"steps"`
	Seed           int64   `json:"seed,omitempty"`
	Width          int     `json:"width,omitempty"`
	Height         int     `json:"height,omitempty"`
}

type ImageResponse struct {
	Completion map[string]string `json:"completion"`
}

// Image returns the first generated image as base64.
func (r *ImageResponse) Image() (string, error) {
	if r == nil || r.Completion["image_0"] == "" {
		return "", ErrEmptyResponse
	}
	return r.Completion["image_0"], nil
}

// ChatContent returns the message content of the first choice.
func ChatContent(resp openai.ChatCompletionResponse) (string, error) {
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}

type AsyncClientConfig struct {
	Chat  ChatBackend
	Image ImageBackend

	MaxInFlight   int
	MaxRetries    int
	RetryInterval time.Duration
}

// AsyncClient turns synchronous backends into future-returning ones. Each
// request is retried with exponential backoff inside its pool task.
type AsyncClient struct {
	chat  ChatBackend
	image ImageBackend

	chatPool  pond.ResultPool[openai.ChatCompletionResponse]
	imagePool pond.ResultPool[*ImageResponse]

	maxRetries    int
	retryInterval time.Duration
	closed        atomic.Bool
}

var _ Client = (*AsyncClient)(nil)

func NewAsyncClient(config AsyncClientConfig) (*AsyncClient, error) {
	if config.Chat == nil {
		return nil, errors.New("chat backend is nil")
	}
	if config.Image == nil {
		return nil, errors.New("image backend is nil")
	}

	if config.MaxInFlight <= 0 {
		config.MaxInFlight = defaultMaxInFlight
	}
	if config.RetryInterval <= 0 {
		config.RetryInterval = defaultRetryInterval
	}
	if config.MaxRetries < 0 {
		config.MaxRetries = 0
	}

	return &AsyncClient{
		chat:          config.Chat,
		image:         config.Image,
		chatPool:      pond.NewResultPool[openai.ChatCompletionResponse](config.MaxInFlight),
		imagePool:     pond.NewResultPool[*ImageResponse](config.MaxInFlight),
		maxRetries:    config.MaxRetries,
		retryInterval: config.RetryInterval,
	}, nil
}

func (c *AsyncClient) SubmitChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (*Future[openai.ChatCompletionResponse], error) {
	if c.closed.Load() {
		return nil, ErrClientClosed
	}

	result := c.chatPool.SubmitErr(func() (openai.ChatCompletionResponse, error) {
		return backoff.RetryWithData(func() (openai.ChatCompletionResponse, error) {
			resp, err := c.chat.CreateChatCompletion(ctx, req)
			if err != nil {
				return resp, permanentUnlessRetryable(newBackendError("chat", err))
			}
			if len(resp.Choices) == 0 {
				return resp, backoff.Permanent(newBackendError("chat", ErrEmptyResponse))
			}
			return resp, nil
		}, c.backOff(ctx))
	})

	return FromResult(result), nil
}

func (c *AsyncClient) SubmitImageGeneration(ctx context.Context, req ImageRequest) (*Future[*ImageResponse], error) {
	if c.closed.Load() {
		return nil, ErrClientClosed
	}

	result := c.imagePool.SubmitErr(func() (*ImageResponse, error) {
		return backoff.RetryWithData(func() (*ImageResponse, error) {
			resp, err := c.image.GenerateImage(ctx, req)
			if err != nil {
				return nil, permanentUnlessRetryable(newBackendError("image", err))
			}
			if _, err := resp.Image(); err != nil {
				return nil, backoff.Permanent(newBackendError("image", err))
			}
			return resp, nil
		}, c.backOff(ctx))
	})

	return FromResult(result), nil
}

// Close stops accepting requests and waits for in-flight ones.
func (c *AsyncClient) Close() {
	if c.closed.Swap(true) {
		return
	}
	c.chatPool.StopAndWait()
	c.imagePool.StopAndWait()
}

func (c *AsyncClient) backOff(ctx context.Context) backoff.BackOffContext {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.retryInterval
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(c.maxRetries)), ctx)
}

func permanentUnlessRetryable(err error) error {
	if retryable(err) {
		return err
	}
	return backoff.Permanent(err)
}
