package factory

import (
	"fmt"

	"ai-lecture-be/pkg/llm"
	"ai-lecture-be/pkg/llm/gemini"
	"ai-lecture-be/pkg/llm/ollama"
)

func NewProvider(providerType, modelName, baseURL, geminiAPIKey string) (llm.Provider, error) {
	switch providerType {
	case "ollama":
		if baseURL == "" {
			baseURL = "http://localhost:11434"
		}
		return ollama.NewOllamaProvider(baseURL, modelName), nil
	case "gemini":
		if geminiAPIKey == "" {
			return nil, fmt.Errorf("gemini provider requires an API key")
		}
		return gemini.NewGeminiProvider(geminiAPIKey, modelName), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", providerType)
	}
}
