package inference

var (
	GeminiPrompt   = geminiPrompt
	GeminiResponse = geminiResponse
)
