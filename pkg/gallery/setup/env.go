package setup

const (
	EnvApiIpPort = "API_IP_PORT"

	EnvChatProvider = "CHAT_PROVIDER"
	EnvChatBaseUrl  = "CHAT_BASE_URL"
	EnvChatApiKey   = "CHAT_API_KEY"
	EnvChatModel    = "CHAT_MODEL"
	EnvGeminiApiKey = "GEMINI_API_KEY"

	EnvImageProvider = "IMAGE_PROVIDER"
	EnvImageEndpoint = "IMAGE_ENDPOINT"
	EnvImageApiKey   = "IMAGE_API_KEY"
	EnvImageModel    = "IMAGE_MODEL"

	// EnvOctoAiToken is used for both backends when their own key is unset.
	EnvOctoAiToken = "OCTOAI_TOKEN"

	EnvSubjectCount      = "SUBJECT_COUNT"
	EnvGridColumns       = "GRID_COLUMNS"
	EnvPollInterval      = "POLL_INTERVAL"
	EnvRecheckDelay      = "RECHECK_DELAY"
	EnvStallTimeout      = "STALL_TIMEOUT"
	EnvGenerationTimeout = "GENERATION_TIMEOUT"
	EnvMaxRetries        = "MAX_RETRIES"
	EnvMaxInFlight       = "MAX_IN_FLIGHT"
	EnvImageRate         = "IMAGE_RATE"
	EnvSendStylePreset   = "SEND_STYLE_PRESET"
	EnvSessionTTL        = "SESSION_TTL"

	EnvLogLevel = "LOG_LEVEL"
	EnvLogFile  = "LOG_FILE"
)
