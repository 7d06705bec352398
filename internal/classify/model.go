package classify

import "os"

// Default models per provider.
const (
	// DefaultGeminiModel is stable, balanced performance.
	DefaultGeminiModel = "gemini-2.5-flash"

	// DefaultOpenAIModel is a low-cost vision-capable chat model.
	DefaultOpenAIModel = "gpt-4o-mini"

	// DefaultOllamaModel is a local multimodal model.
	DefaultOllamaModel = "llava:latest"
)

var modelEnv = map[Provider]string{
	ProviderGemini: "GEMINI_MODEL",
	ProviderOpenAI: "OPENAI_MODEL",
	ProviderOllama: "OLLAMA_MODEL",
}

var baseURLEnv = map[Provider]string{
	ProviderOpenAI: "OPENAI_BASE_URL",
	ProviderOllama: "OLLAMA_HOST",
}

// DefaultModel returns the built-in model for a provider.
func DefaultModel(p Provider) string {
	switch p {
	case ProviderOpenAI:
		return DefaultOpenAIModel
	case ProviderOllama:
		return DefaultOllamaModel
	default:
		return DefaultGeminiModel
	}
}

// ModelName resolves the model to use, from:
//  1. the --model flag (if set)
//  2. the provider's *_MODEL environment variable (if set)
//  3. DefaultModel
func ModelName(p Provider, flag string) string {
	if flag != "" {
		return flag
	}
	if env := os.Getenv(modelEnv[p]); env != "" {
		return env
	}
	return DefaultModel(p)
}

// BaseURL returns the endpoint override for a provider from the environment.
func BaseURL(p Provider) string {
	if name, ok := baseURLEnv[p]; ok {
		return os.Getenv(name)
	}
	return ""
}
