// Package transcribe provides Whisper-compatible transcription providers.
//
// The same implementation serves the hosted OpenAI audio API and local
// OpenAI-compatible servers such as faster-whisper-server:
//
//	cloud := transcribe.NewWhisper(ai.ProviderOpenAI, cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.WhisperModel)
//	local := transcribe.NewWhisper(ai.ProviderLocal, "", cfg.LocalWhisperHost, cfg.LocalWhisperModel)
//
// Gemini-based transcription lives in ai/llm because it shares the
// multimodal client with the fast video path.
package transcribe
