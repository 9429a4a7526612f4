package ai

import "strings"

// ProviderName identifies a back-end.
type ProviderName string

const (
	ProviderGoogle    ProviderName = "google"
	ProviderAnthropic ProviderName = "anthropic"
	ProviderOpenAI    ProviderName = "openai"
	ProviderOllama    ProviderName = "ollama"
	ProviderLocal     ProviderName = "local"
)

// ParseProviderName normalizes a user supplied provider name.
// Unknown or empty names return "".
func ParseProviderName(s string) ProviderName {
	switch ProviderName(strings.ToLower(strings.TrimSpace(s))) {
	case ProviderGoogle, "gemini":
		return ProviderGoogle
	case ProviderAnthropic, "claude":
		return ProviderAnthropic
	case ProviderOpenAI:
		return ProviderOpenAI
	case ProviderOllama:
		return ProviderOllama
	case ProviderLocal, "whisper":
		return ProviderLocal
	}
	return ""
}

// Capability names what a Chain does, for logs and error messages.
type Capability string

const (
	CapabilityText          Capability = "text-generation"
	CapabilityTranscription Capability = "transcription"
)

// DefaultTextOrder is the try-order for text generation without a preference.
var DefaultTextOrder = []ProviderName{
	ProviderGoogle,
	ProviderAnthropic,
	ProviderOpenAI,
	ProviderOllama,
}

// DefaultTranscriptionOrder is the try-order for transcription without a preference.
var DefaultTranscriptionOrder = []ProviderName{
	ProviderOpenAI,
	ProviderGoogle,
	ProviderLocal,
}
