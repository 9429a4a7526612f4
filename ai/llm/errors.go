package llm

import (
	"errors"

	"github.com/parkho-ai/contentengine/ai"
	"github.com/tmc/langchaingo/llms"
)

// ErrUnsupportedMedia indicates an artifact type the model cannot accept.
var ErrUnsupportedMedia = errors.New("unsupported media type")

func errorMapperFor(name ai.ProviderName) *llms.ErrorMapper {
	switch name {
	case ai.ProviderOpenAI:
		return llms.OpenAIErrorMapper()
	case ai.ProviderAnthropic:
		return llms.AnthropicErrorMapper()
	case ai.ProviderGoogle:
		return llms.GoogleAIErrorMapper()
	}
	return llms.NewErrorMapper(string(name))
}

// Classify maps langchaingo's standardized errors onto ai failure classes.
// It is meant to be passed to ai.WithClassifier.
func Classify(err error) ai.FailureClass {
	switch {
	case llms.IsAuthenticationError(err):
		return ai.FailureAuthentication
	case llms.IsRateLimitError(err):
		return ai.FailureRateLimit
	case llms.IsTimeoutError(err), llms.IsCanceledError(err):
		return ai.FailureTimeout
	case llms.IsQuotaExceededError(err):
		return ai.FailureQuota
	case llms.IsContentFilterError(err):
		return ai.FailureContentFilter
	case llms.IsProviderUnavailableError(err):
		return ai.FailureUnavailable
	}
	return ai.DefaultClassifier(err)
}
