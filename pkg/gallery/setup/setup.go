package setup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"golang.org/x/time/rate"

	"github.com/NethermindEth/genaiterest/pkg/gallery/debug"
	"github.com/NethermindEth/genaiterest/pkg/gallery/inference"
	"github.com/NethermindEth/genaiterest/pkg/gallery/pipeline"
)

type SetupResult struct {
	Config *Config
	Chat   inference.ChatBackend
	Image  inference.ImageBackend

	closers []io.Closer
}

func Setup(ctx context.Context) (*SetupResult, error) {
	config, err := NewConfigFromEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to get config from env: %w", err)
	}

	return NewSetupResult(ctx, config, http.DefaultClient)
}

// NewSetupResult builds the configured chat and image backends.
func NewSetupResult(ctx context.Context, config *Config, httpClient *http.Client) (*SetupResult, error) {
	if config == nil {
		return nil, errors.New("config is nil")
	}

	result := &SetupResult{Config: config}

	switch config.ChatProvider {
	case ChatProviderGemini:
		gemini, err := inference.NewGeminiChat(ctx, config.GeminiApiKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create chat backend: %w", err)
		}
		result.Chat = gemini
		result.closers = append(result.closers, gemini)
	default:
		result.Chat = inference.NewOpenAIChat(config.ChatApiKey, config.ChatBaseUrl, httpClient)
	}

	switch config.ImageProvider {
	case ImageProviderOpenAI:
		result.Image = inference.NewOpenAIImageGenerator(config.ImageApiKey, config.ImageEndpoint, config.ImageModel, httpClient)
	default:
		result.Image = inference.NewSDXLGenerator(config.ImageEndpoint, config.ImageApiKey, httpClient)
	}

	if debug.IsDebugShowSetup() {
		slog.Info("setup output", "setupOutput", config.Redacted())
	}

	return result, nil
}

func (r *SetupResult) NewClient() (*inference.AsyncClient, error) {
	return inference.NewAsyncClient(inference.AsyncClientConfig{
		Chat:        r.Chat,
		Image:       r.Image,
		MaxInFlight: r.Config.MaxInFlight,
		MaxRetries:  r.Config.MaxRetries,
	})
}

// PipelineOptions returns coordinator options. Every call gets its own rate
// limiter.
func (r *SetupResult) PipelineOptions() pipeline.Options {
	opts := pipeline.Options{
		SubjectCount:    r.Config.SubjectCount,
		Columns:         r.Config.GridColumns,
		ChatModel:       r.Config.ChatModel,
		PollInterval:    r.Config.PollInterval,
		RecheckDelay:    r.Config.RecheckDelay,
		StallTimeout:    r.Config.StallTimeout,
		SendStylePreset: r.Config.SendStylePreset,
	}
	if r.Config.ImageRate > 0 {
		opts.Limiter = rate.NewLimiter(rate.Limit(r.Config.ImageRate), 1)
	}
	return opts
}

func (r *SetupResult) Close() error {
	var errs []error
	for _, c := range r.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
