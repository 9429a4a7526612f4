package llm

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/parkho-ai/contentengine/ai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/fake"
)

// failingModel is an llms.Model that always returns err.
type failingModel struct {
	err   error
	calls int
}

func (m *failingModel) GenerateContent(_ context.Context, _ []llms.MessageContent, _ ...llms.CallOption) (*llms.ContentResponse, error) {
	m.calls++
	return nil, m.err
}

func (m *failingModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, m, prompt, options...)
}

func TestGenerator_Invoke(t *testing.T) {
	client := fake.NewFakeLLM([]string{"Paris is the capital of France."})
	gen := NewGenerator(ai.ProviderGoogle, "gemini-2.0-flash", client)

	require.True(t, gen.Available())
	assert.Equal(t, ai.ProviderGoogle, gen.Name())

	resp, err := gen.Invoke(context.Background(), ai.TextRequest{
		System: "You are terse.",
		Prompt: "What is the capital of France?",
		JSON:   true,
	})
	require.NoError(t, err)
	assert.Equal(t, "Paris is the capital of France.", resp.Text)
	assert.Equal(t, "gemini-2.0-flash", resp.Model)
}

func TestGenerator_NilClientUnavailable(t *testing.T) {
	gen := NewGenerator(ai.ProviderAnthropic, "claude", nil)

	assert.False(t, gen.Available())
	_, err := gen.Invoke(context.Background(), ai.TextRequest{Prompt: "hi"})
	assert.ErrorIs(t, err, ai.ErrProviderNotConfigured)
}

func TestGenerator_EmptyResponse(t *testing.T) {
	gen := NewGenerator(ai.ProviderOllama, "qwen", fake.NewFakeLLM([]string{"   "}))

	_, err := gen.Invoke(context.Background(), ai.TextRequest{Prompt: "hi"})
	assert.ErrorIs(t, err, ai.ErrEmptyResponse)
	assert.Equal(t, ai.FailureEmpty, Classify(err))
}

func TestGenerator_ErrorsAreClassified(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ai.FailureClass
	}{
		{"rate limit", errors.New("429 too many requests"), ai.FailureRateLimit},
		{"auth", errors.New("401 unauthorized: bad api key"), ai.FailureAuthentication},
		{"unavailable", errors.New("503 service unavailable"), ai.FailureUnavailable},
		{"deadline", context.DeadlineExceeded, ai.FailureTimeout},
		{"unknown", errors.New("something odd"), ai.FailureUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model := &failingModel{err: tt.err}
			gen := NewGenerator(ai.ProviderOpenAI, "gpt", model)

			_, err := gen.Invoke(context.Background(), ai.TextRequest{Prompt: "hi"})
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.err)
			assert.Equal(t, tt.want, Classify(err))
			assert.Equal(t, 1, model.calls)
		})
	}
}

func TestGenerator_InChainFallsThrough(t *testing.T) {
	primary := NewGenerator(ai.ProviderGoogle, "gemini", &failingModel{err: errors.New("503 service unavailable")})
	secondary := NewGenerator(ai.ProviderAnthropic, "claude", fake.NewFakeLLM([]string{"fallback answer"}))

	chain, err := ai.NewChain(ai.CapabilityText, ai.DefaultTextOrder,
		[]ai.TextGenerator{primary, secondary}, ai.WithClassifier(Classify))
	require.NoError(t, err)

	outcome, err := chain.Execute(context.Background(), ai.TextRequest{Prompt: "hi"}, "")
	require.NoError(t, err)
	assert.Equal(t, "fallback answer", outcome.Output.Text)
	assert.Equal(t, ai.ProviderAnthropic, outcome.Provider)
	assert.True(t, outcome.FallbackOccurred)
	require.Len(t, outcome.Failures, 1)
	assert.Equal(t, ai.FailureUnavailable, outcome.Failures[0].Class)
}

func TestAudioTranscriber_Invoke(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "clip.mp3")
	// ID3 header is enough for mimetype to report audio/mpeg.
	require.NoError(t, os.WriteFile(path, append([]byte("ID3\x03\x00\x00\x00\x00\x00\x00"), make([]byte, 512)...), 0o644))

	tr := NewAudioTranscriber(ai.ProviderGoogle, "gemini-2.5-flash", fake.NewFakeLLM([]string{"  hello world \n"}))
	out, err := tr.Invoke(context.Background(), ai.AudioRequest{Path: path, Language: "en"})
	require.NoError(t, err)
	assert.Equal(t, "hello world", out.Text)
	assert.Equal(t, "en", out.Language)
}

func TestMediaAnalyzer_RejectsNonMedia(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("plain text, not audio"), 0o644))

	m := NewMediaAnalyzer(ai.ProviderGoogle, "gemini", fake.NewFakeLLM([]string{"unused"}))
	_, err := m.Analyze(context.Background(), ai.MediaRequest{Path: path, Prompt: "describe"})
	assert.ErrorIs(t, err, ErrUnsupportedMedia)
}

func TestMediaAnalyzer_ExplicitMIMEType(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "clip.bin")
	require.NoError(t, os.WriteFile(path, make([]byte, 64), 0o644))

	m := NewMediaAnalyzer(ai.ProviderGoogle, "gemini", fake.NewFakeLLM([]string{`{"title":"x"}`}))
	resp, err := m.Analyze(context.Background(), ai.MediaRequest{
		Path:     path,
		MIMEType: "audio/webm; codecs=opus",
		Prompt:   "describe",
	})
	require.NoError(t, err)
	assert.Equal(t, `{"title":"x"}`, resp.Text)
}
