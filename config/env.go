package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/parkho-ai/contentengine/ai"
)

// LookupFunc reports the value of an environment variable.
type LookupFunc func(key string) (string, bool)

// DefaultEnvFiles are loaded when LoadEnvFiles is called without arguments.
// .env.local is read first so its values take precedence over .env.
var DefaultEnvFiles = []string{".env.local", ".env"}

// LoadEnvFiles loads .env files into the process environment. Missing files
// are skipped and variables that are already set are never overwritten.
func LoadEnvFiles(files ...string) error {
	if len(files) == 0 {
		files = DefaultEnvFiles
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load env file %s: %w", f, err)
		}
	}
	return nil
}

// ApplyEnv overrides c with the recognised environment variables.
func (c *Config) ApplyEnv(lookup LookupFunc) error {
	if c.AI == nil {
		c.AI = ai.DefaultConfig()
	}
	e := envReader{lookup: lookup}

	e.str("GOOGLE_API_KEY", &c.AI.GoogleAPIKey)
	e.str("ANTHROPIC_API_KEY", &c.AI.AnthropicAPIKey)
	e.str("OPENAI_API_KEY", &c.AI.OpenAIAPIKey)
	e.str("OPENAI_BASE_URL", &c.AI.OpenAIBaseURL)
	e.str("OLLAMA_HOST", &c.AI.OllamaHost)
	e.str("LOCAL_WHISPER_URL", &c.AI.LocalWhisperHost)
	e.str("GOOGLE_MODEL_NAME", &c.AI.GoogleModel)
	e.str("ANTHROPIC_MODEL_NAME", &c.AI.AnthropicModel)
	e.str("OPENAI_MODEL_NAME", &c.AI.OpenAIModel)
	e.str("GEMINI_VIDEO_MODEL_NAME", &c.AI.MediaModel)
	e.order("TEXT_PROVIDER_ORDER", &c.AI.TextOrder)
	e.order("TRANSCRIPTION_PROVIDER_ORDER", &c.AI.TranscriptionOrder)

	e.str("CONTENTENGINE_DB_PATH", &c.DBPath)
	e.str("FILE_STORAGE_DIR", &c.FilesDir)
	e.str("TEMP_FILES_DIR", &c.TempDir)
	e.boolean("YOUTUBE_AUDIO_CACHE_ENABLED", &c.CacheEnabled)
	e.str("YOUTUBE_AUDIO_CACHE_DIR", &c.CacheDir)
	e.scaled("YOUTUBE_AUDIO_CACHE_TTL_DAYS", 24*time.Hour, &c.CacheTTL)
	e.scaled("YOUTUBE_CACHE_CLEANUP_INTERVAL_HOURS", time.Hour, &c.CacheSweepInterval)

	e.str("CONTENT_PROCESSING_STRATEGY", &c.DefaultStrategy)
	e.str("CONTENT_STRATEGY", &c.DefaultStrategy)
	e.boolean("ENABLE_STRATEGY_FALLBACK", &c.EnableFallback)
	e.boolean("GEMINI_VIDEO_API_ENABLED", &c.FastPathEnabled)
	e.integer("MAX_CONCURRENT_JOBS", &c.MaxConcurrentJobs)
	e.scaled("JOB_TIMEOUT_MINUTES", time.Minute, &c.JobTimeout)
	e.float("MAX_VIDEO_LENGTH_MINUTES", &c.MaxVideoMinutes)
	e.integer64("MAX_AUDIO_FILE_SIZE_MB", &c.MaxAudioMB)

	e.str("RAG_ENGINE_URL", &c.CollectionURL)
	e.str("COLLECTION_USER_ID", &c.CollectionUserID)

	return errors.Join(e.errs...)
}

// envReader collects parse errors so every bad variable is reported at once.
type envReader struct {
	lookup LookupFunc
	errs   []error
}

func (e *envReader) get(key string) (string, bool) {
	v, ok := e.lookup(key)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

func (e *envReader) fail(key, value string, err error) {
	e.errs = append(e.errs, fmt.Errorf("%w: %s=%q: %v", ErrInvalidConfig, key, value, err))
}

func (e *envReader) str(key string, dst *string) {
	if v, ok := e.get(key); ok {
		*dst = v
	}
}

func (e *envReader) boolean(key string, dst *bool) {
	v, ok := e.get(key)
	if !ok {
		return
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		e.fail(key, v, err)
		return
	}
	*dst = b
}

func (e *envReader) integer(key string, dst *int) {
	v, ok := e.get(key)
	if !ok {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		e.fail(key, v, err)
		return
	}
	*dst = n
}

func (e *envReader) integer64(key string, dst *int64) {
	v, ok := e.get(key)
	if !ok {
		return
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		e.fail(key, v, err)
		return
	}
	*dst = n
}

func (e *envReader) float(key string, dst *float64) {
	v, ok := e.get(key)
	if !ok {
		return
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		e.fail(key, v, err)
		return
	}
	*dst = f
}

// scaled reads a count of unit, or a Go duration string such as "90m".
func (e *envReader) scaled(key string, unit time.Duration, dst *time.Duration) {
	v, ok := e.get(key)
	if !ok {
		return
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		*dst = time.Duration(f * float64(unit))
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		e.fail(key, v, err)
		return
	}
	*dst = d
}

func (e *envReader) order(key string, dst *[]ai.ProviderName) {
	v, ok := e.get(key)
	if !ok {
		return
	}
	var names []ai.ProviderName
	for _, part := range strings.Split(v, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if name := ai.ParseProviderName(part); name != "" {
			names = append(names, name)
		} else {
			names = append(names, ai.ProviderName(strings.ToLower(part)))
		}
	}
	*dst = names
}
