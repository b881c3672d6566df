package llmcatalog

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// NormalizeProviderName turns a provider key such as "mistralai" into the
// display name used on canonical models.
func NormalizeProviderName(key string) string {
	lower := strings.ToLower(strings.TrimSpace(key))
	switch lower {
	case "":
		return UnknownProvider
	case "alibaba", "qwen":
		return "Qwen"
	case "01-ai", "01.ai":
		return "01.AI"
	case "mistralai", "mistral":
		return "Mistral"
	case "meta-llama", "llama":
		return "Meta"
	case "google":
		return "Google"
	case "anthropic":
		return "Anthropic"
	case "openai":
		return "OpenAI"
	case "microsoft":
		return "Microsoft"
	case "perplexity":
		return "Perplexity"
	case "cohere":
		return "Cohere"
	case "nousresearch":
		return "Nous Research"
	case "deepseek":
		return "DeepSeek"
	case "openrouter":
		return "OpenRouter"
	case "huggingface", "hugging-face", "hf":
		return "Hugging Face"
	case "xai", "x-ai":
		return "xAI"
	default:
		caser := cases.Title(language.English)
		return caser.String(lower)
	}
}
