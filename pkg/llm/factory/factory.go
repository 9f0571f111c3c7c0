package factory

import (
	"fmt"

	"medivault-be/pkg/llm"
	"medivault-be/pkg/llm/gemini"
	"medivault-be/pkg/llm/huggingface"
	"medivault-be/pkg/llm/ollama"
)

func NewProvider(providerType, modelName, baseURL, geminiKey, huggingfaceKey string) (llm.Provider, error) {
	switch providerType {
	case "ollama":
		if baseURL == "" {
			baseURL = "http://localhost:11434" // Default
		}
		return ollama.NewOllamaProvider(baseURL, modelName), nil
	case "gemini":
		if geminiKey == "" {
			return nil, fmt.Errorf("gemini provider requires an API key")
		}
		return gemini.NewGeminiProvider(geminiKey, modelName), nil
	case "huggingface":
		if huggingfaceKey == "" {
			return nil, fmt.Errorf("huggingface provider requires an API key")
		}
		return huggingface.NewHuggingFaceProvider(huggingfaceKey, "", modelName), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", providerType)
	}
}
