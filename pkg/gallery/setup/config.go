package setup

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	ChatProviderOpenAI = "openai"
	ChatProviderGemini = "gemini"

	ImageProviderSDXL   = "sdxl"
	ImageProviderOpenAI = "openai"
)

const (
	defaultApiIpPort         = ":8080"
	defaultChatBaseUrl       = "https://text.octoai.run/v1"
	defaultChatModel         = "llama-2-13b-chat"
	defaultSubjectCount      = 10
	defaultGridColumns       = 5
	defaultPollInterval      = 100 * time.Millisecond
	defaultRecheckDelay      = 50 * time.Millisecond
	defaultStallTimeout      = 3 * time.Minute
	defaultGenerationTimeout = 10 * time.Minute
	defaultMaxRetries        = 3
	defaultMaxInFlight       = 16
	defaultSessionTTL        = time.Hour
)

type Config struct {
	ApiIpPort string

	ChatProvider string
	ChatBaseUrl  string
	ChatApiKey   string
	ChatModel    string
	GeminiApiKey string

	ImageProvider string
	ImageEndpoint string
	ImageApiKey   string
	ImageModel    string

	SubjectCount      int
	GridColumns       int
	PollInterval      time.Duration
	RecheckDelay      time.Duration
	StallTimeout      time.Duration
	GenerationTimeout time.Duration
	MaxRetries        int
	MaxInFlight       int
	// ImageRate is image submissions per second; zero means unlimited.
	ImageRate       float64
	SendStylePreset bool
	SessionTTL      time.Duration

	LogLevel string
	LogFile  string
}

func NewConfigFromEnv() (*Config, error) {
	octoAiToken := os.Getenv(EnvOctoAiToken)

	config := &Config{
		ApiIpPort: getEnv(EnvApiIpPort, defaultApiIpPort),

		ChatProvider: getEnv(EnvChatProvider, ChatProviderOpenAI),
		ChatBaseUrl:  getEnv(EnvChatBaseUrl, defaultChatBaseUrl),
		ChatApiKey:   getEnv(EnvChatApiKey, octoAiToken),
		ChatModel:    getEnv(EnvChatModel, defaultChatModel),
		GeminiApiKey: os.Getenv(EnvGeminiApiKey),

		ImageProvider: getEnv(EnvImageProvider, ImageProviderSDXL),
		ImageEndpoint: os.Getenv(EnvImageEndpoint),
		ImageApiKey:   getEnv(EnvImageApiKey, octoAiToken),
		ImageModel:    os.Getenv(EnvImageModel),

		LogLevel: os.Getenv(EnvLogLevel),
		LogFile:  os.Getenv(EnvLogFile),
	}

	var errs []error
	collect := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	var err error
	config.SubjectCount, err = getEnvInt(EnvSubjectCount, defaultSubjectCount)
	collect(err)
	config.GridColumns, err = getEnvInt(EnvGridColumns, defaultGridColumns)
	collect(err)
	config.MaxRetries, err = getEnvInt(EnvMaxRetries, defaultMaxRetries)
	collect(err)
	config.MaxInFlight, err = getEnvInt(EnvMaxInFlight, defaultMaxInFlight)
	collect(err)
	config.PollInterval, err = getEnvDuration(EnvPollInterval, defaultPollInterval)
	collect(err)
	config.RecheckDelay, err = getEnvDuration(EnvRecheckDelay, defaultRecheckDelay)
	collect(err)
	config.StallTimeout, err = getEnvDuration(EnvStallTimeout, defaultStallTimeout)
	collect(err)
	config.GenerationTimeout, err = getEnvDuration(EnvGenerationTimeout, defaultGenerationTimeout)
	collect(err)
	config.SessionTTL, err = getEnvDuration(EnvSessionTTL, defaultSessionTTL)
	collect(err)
	config.ImageRate, err = getEnvFloat(EnvImageRate, 0)
	collect(err)
	config.SendStylePreset, err = getEnvBool(EnvSendStylePreset, false)
	collect(err)

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) Validate() error {
	switch c.ChatProvider {
	case ChatProviderOpenAI:
		if c.ChatApiKey == "" {
			return errors.New("CHAT_API_KEY or OCTOAI_TOKEN is required")
		}
	case ChatProviderGemini:
		if c.GeminiApiKey == "" {
			return errors.New("GEMINI_API_KEY is required")
		}
	default:
		return fmt.Errorf("CHAT_PROVIDER must be %q or %q, got %q", ChatProviderOpenAI, ChatProviderGemini, c.ChatProvider)
	}

	switch c.ImageProvider {
	case ImageProviderSDXL:
		if c.ImageEndpoint == "" {
			return errors.New("IMAGE_ENDPOINT is required")
		}
	case ImageProviderOpenAI:
		if c.ImageApiKey == "" {
			return errors.New("IMAGE_API_KEY or OCTOAI_TOKEN is required")
		}
	default:
		return fmt.Errorf("IMAGE_PROVIDER must be %q or %q, got %q", ImageProviderSDXL, ImageProviderOpenAI, c.ImageProvider)
	}

	if c.ChatModel == "" {
		return errors.New("CHAT_MODEL is required")
	}
	if c.SubjectCount <= 0 {
		return errors.New("SUBJECT_COUNT must be positive")
	}
	if c.GridColumns <= 0 {
		return errors.New("GRID_COLUMNS must be positive")
	}
	if c.MaxRetries < 0 {
		return errors.New("MAX_RETRIES must not be negative")
	}
	if c.MaxInFlight <= 0 {
		return errors.New("MAX_IN_FLIGHT must be positive")
	}
	if c.ImageRate < 0 {
		return errors.New("IMAGE_RATE must not be negative")
	}
	if c.PollInterval <= 0 || c.RecheckDelay <= 0 || c.StallTimeout <= 0 || c.GenerationTimeout <= 0 || c.SessionTTL <= 0 {
		return errors.New("durations must be positive")
	}

	return nil
}

// Redacted returns a copy with secrets masked, for logging.
func (c Config) Redacted() Config {
	c.ChatApiKey = redact(c.ChatApiKey)
	c.GeminiApiKey = redact(c.GeminiApiKey)
	c.ImageApiKey = redact(c.ImageApiKey)
	return c
}

func redact(secret string) string {
	if secret == "" {
		return ""
	}
	return "<redacted>"
}

func getEnv(key string, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}

func getEnvBool(key string, fallback bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
