package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.NotNil(t, cfg)
	assert.Equal(t, "gemini-2.0-flash", cfg.GoogleModel)
	assert.Equal(t, "claude-3-haiku-20240307", cfg.AnthropicModel)
	assert.Equal(t, "gpt-4o-mini", cfg.OpenAIModel)
	assert.Equal(t, "gemini-2.5-flash", cfg.MediaModel)
	assert.Equal(t, DefaultTextOrder, cfg.TextOrder)
	assert.Equal(t, DefaultTranscriptionOrder, cfg.TranscriptionOrder)
	assert.False(t, cfg.HasGoogle())
}

func TestNewConfig(t *testing.T) {
	t.Run("with no options", func(t *testing.T) {
		cfg := NewConfig()
		assert.Equal(t, DefaultConfig(), cfg)
	})

	t.Run("with credentials", func(t *testing.T) {
		cfg := NewConfig(
			WithGoogleAPIKey("g"),
			WithAnthropicAPIKey("a"),
			WithOpenAIAPIKey("o"),
		)

		assert.Equal(t, "g", cfg.GoogleAPIKey)
		assert.Equal(t, "a", cfg.AnthropicAPIKey)
		assert.Equal(t, "o", cfg.OpenAIAPIKey)
		assert.True(t, cfg.HasGoogle())
	})

	t.Run("with custom orders", func(t *testing.T) {
		cfg := NewConfig(
			WithTextOrder(ProviderOpenAI, ProviderGoogle),
			WithTranscriptionOrder(ProviderLocal),
		)

		assert.Equal(t, []ProviderName{ProviderOpenAI, ProviderGoogle}, cfg.TextOrder)
		assert.Equal(t, []ProviderName{ProviderLocal}, cfg.TranscriptionOrder)
	})

	t.Run("default orders are not shared", func(t *testing.T) {
		cfg := NewConfig()
		cfg.TextOrder[0] = ProviderOllama
		assert.Equal(t, ProviderGoogle, DefaultTextOrder[0])
	})
}

func TestConfigNormalize(t *testing.T) {
	cfg := NewConfig(
		WithGoogleAPIKey("  key \n"),
		WithLocalWhisperHost("http://localhost:8000/"),
		WithOllamaHost("http://localhost:11434/"),
	)
	cfg.TextOrder = nil
	cfg.Normalize()

	assert.Equal(t, "key", cfg.GoogleAPIKey)
	assert.Equal(t, "http://localhost:8000/v1", cfg.LocalWhisperHost)
	assert.Equal(t, "http://localhost:11434", cfg.OllamaHost)
	assert.Equal(t, DefaultTextOrder, cfg.TextOrder)
}

func TestConfigValidate(t *testing.T) {
	t.Run("defaults are valid without credentials", func(t *testing.T) {
		require.NoError(t, DefaultConfig().Validate())
	})

	t.Run("missing media model", func(t *testing.T) {
		cfg := NewConfig(WithMediaModel(""))
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "MediaModel")
	})

	t.Run("unknown provider in order", func(t *testing.T) {
		cfg := NewConfig(WithTextOrder("mystery"))
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "mystery")
	})
}

func TestParseProviderName(t *testing.T) {
	assert.Equal(t, ProviderGoogle, ParseProviderName("Gemini"))
	assert.Equal(t, ProviderAnthropic, ParseProviderName(" claude "))
	assert.Equal(t, ProviderOpenAI, ParseProviderName("openai"))
	assert.Equal(t, ProviderLocal, ParseProviderName("whisper"))
	assert.Equal(t, ProviderName(""), ParseProviderName("other"))
	assert.Equal(t, ProviderName(""), ParseProviderName(""))
}
