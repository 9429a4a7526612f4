package ai

import (
	"context"
	"time"
)

// Provider is one interchangeable back-end for a single capability.
// Implementations must be thread-safe for concurrent use.
type Provider[Req, Out any] interface {
	// Name identifies the provider in try-orders and logs.
	Name() ProviderName

	// Available reports whether the provider is configured for use.
	// This is a static check (credentials present) and never calls out.
	Available() bool

	// Invoke performs the capability call.
	Invoke(ctx context.Context, req Req) (Out, error)
}

// TextRequest is a single text-generation call.
type TextRequest struct {
	// System is the optional system prompt.
	System string

	// Prompt is the user prompt.
	Prompt string

	// Temperature controls sampling randomness. Zero uses the provider default.
	Temperature float64

	// MaxTokens limits the response length. Zero uses the provider default.
	MaxTokens int

	// JSON requests a JSON-only response where the provider supports it.
	JSON bool
}

// TextResponse is the result of a text-generation call.
type TextResponse struct {
	Text  string
	Model string
}

// AudioRequest is a single transcription call.
type AudioRequest struct {
	// Path is the local path of the audio artifact.
	Path string

	// MIMEType of the artifact. Detected from the file when empty.
	MIMEType string

	// Language is an optional ISO-639-1 hint.
	Language string
}

// Transcript is the result of a transcription call.
type Transcript struct {
	Text     string
	Language string
	Duration time.Duration
}

// TextGenerator is a text-generation provider.
type TextGenerator = Provider[TextRequest, TextResponse]

// Transcriber is an audio-transcription provider.
type Transcriber = Provider[AudioRequest, Transcript]

// MediaRequest asks a multimodal model to analyze one media artifact and
// answer with a single structured response.
type MediaRequest struct {
	Path        string
	MIMEType    string
	Prompt      string
	Temperature float64
	MaxTokens   int
}

// MediaAnalyzer is a single richer back-end that accepts media directly.
// It is used by fast single-call pipelines and is not part of any Chain.
type MediaAnalyzer interface {
	Name() ProviderName
	Available() bool
	Analyze(ctx context.Context, req MediaRequest) (TextResponse, error)
}

// TextChain is the fallback chain used for every text-generation call.
type TextChain = Chain[TextRequest, TextResponse]

// TranscriptionChain is the fallback chain used for audio transcription.
type TranscriptionChain = Chain[AudioRequest, Transcript]

// AIProvider aggregates the AI services for convenient initialization and
// lifecycle management. The chains it returns share configuration and
// clients with the media analyzer.
type AIProvider interface {
	// Text returns the text-generation chain.
	Text() *TextChain

	// Transcription returns the transcription chain.
	Transcription() *TranscriptionChain

	// Media returns the multimodal analyzer used by fast pipelines.
	// It may be unavailable when no multimodal credentials are configured.
	Media() MediaAnalyzer

	// Close releases resources held by the provider and its services.
	Close() error
}
