package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/parkho-ai/contentengine/ai"
	"github.com/parkho-ai/contentengine/cache"
	"github.com/parkho-ai/contentengine/core"
	"github.com/parkho-ai/contentengine/orchestrator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mapLookup(env map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	require.NotNil(t, cfg.AI)
	assert.Equal(t, orchestrator.AutoStrategy, cfg.DefaultStrategy)
	assert.True(t, cfg.EnableFallback)
	assert.True(t, cfg.FastPathEnabled)
	assert.True(t, cfg.CacheEnabled)
	assert.Equal(t, 5, cfg.MaxConcurrentJobs)
	assert.Equal(t, cache.DefaultTTL, cfg.CacheTTL)
	assert.Equal(t, time.Duration(0), cfg.JobTimeout)
	assert.Equal(t, 30*time.Minute, cfg.MaxVideoDuration())
	assert.Equal(t, int64(500<<20), cfg.MaxAudioBytes())
	assert.NoError(t, cfg.Validate())
}

func TestNewConfig_Options(t *testing.T) {
	aiCfg := ai.NewConfig(ai.WithGoogleAPIKey("key"))
	cfg := NewConfig(
		WithDBPath("/data/jobs"),
		WithCacheDir("/data/cache"),
		WithDefaultStrategy("General_Pipeline "),
		WithFallback(false),
		WithFastPath(false),
		WithMaxConcurrentJobs(2),
		WithJobTimeout(time.Minute),
		WithCollectionURL("http://rag.local/api/v1/"),
		WithAI(aiCfg),
	)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "/data/jobs", cfg.DBPath)
	assert.Equal(t, "/data/cache", cfg.CacheDir)
	assert.Equal(t, "general_pipeline", cfg.DefaultStrategy)
	assert.False(t, cfg.EnableFallback)
	assert.False(t, cfg.FastPathEnabled)
	assert.Equal(t, 2, cfg.MaxConcurrentJobs)
	assert.Equal(t, time.Minute, cfg.JobTimeout)
	assert.Equal(t, "http://rag.local/api/v1", cfg.CollectionURL)
	assert.Same(t, aiCfg, cfg.AI)
}

func TestNormalize_RepairsInvalidValues(t *testing.T) {
	cfg := &Config{MaxConcurrentJobs: -1, JobTimeout: -time.Second, MaxVideoMinutes: 10, MaxAudioMB: 1}
	require.NoError(t, cfg.Validate())

	assert.NotNil(t, cfg.AI)
	assert.Equal(t, orchestrator.DefaultMaxConcurrentJobs, cfg.MaxConcurrentJobs)
	assert.Equal(t, time.Duration(0), cfg.JobTimeout)
	assert.Equal(t, orchestrator.AutoStrategy, cfg.DefaultStrategy)
	assert.Equal(t, cache.DefaultSweepInterval, cfg.CacheSweepInterval)
	assert.NotEmpty(t, cfg.CacheDir)
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero video minutes", func(c *Config) { c.MaxVideoMinutes = 0 }},
		{"zero audio size", func(c *Config) { c.MaxAudioMB = 0 }},
		{"negative question count", func(c *Config) {
			c.QuestionCounts = map[core.QuestionType]int{core.QuestionTypeTrueFalse: -1}
		}},
		{"unknown provider", func(c *Config) { c.AI.TextOrder = []ai.ProviderName{"mystery"} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := writeFile(t, "engine.yaml", `
db_path: /var/lib/contentengine
cache_ttl: 48h
enable_fallback: false
max_video_minutes: 45
question_counts:
  multiple_choice: 8
  short_answer: 0
ai:
  google_api_key: " g-key "
  text_order: [anthropic, google]
`)
	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFile(path))
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "/var/lib/contentengine", cfg.DBPath)
	assert.Equal(t, 48*time.Hour, cfg.CacheTTL)
	assert.False(t, cfg.EnableFallback)
	assert.True(t, cfg.FastPathEnabled)
	assert.Equal(t, 45.0, cfg.MaxVideoMinutes)
	assert.Equal(t, map[core.QuestionType]int{
		core.QuestionTypeMultipleChoice: 8,
		core.QuestionTypeShortAnswer:    0,
	}, cfg.QuestionCounts)
	assert.Equal(t, "g-key", cfg.AI.GoogleAPIKey)
	assert.Equal(t, []ai.ProviderName{ai.ProviderAnthropic, ai.ProviderGoogle}, cfg.AI.TextOrder)
	assert.Equal(t, ai.DefaultConfig().MediaModel, cfg.AI.MediaModel)
}

func TestLoadFile_Errors(t *testing.T) {
	cfg := DefaultConfig()
	assert.Error(t, cfg.LoadFile(filepath.Join(t.TempDir(), "missing.yaml")))

	bad := writeFile(t, "bad.yaml", "max_concurrent_jobs: [1, 2\n")
	assert.ErrorIs(t, cfg.LoadFile(bad), ErrInvalidConfig)
}

func TestApplyEnv(t *testing.T) {
	cfg := DefaultConfig()
	err := cfg.ApplyEnv(mapLookup(map[string]string{
		"GOOGLE_API_KEY":               "google",
		"OPENAI_API_KEY":               "openai",
		"LOCAL_WHISPER_URL":            "http://localhost:8000",
		"CONTENT_STRATEGY":             "fast_video",
		"ENABLE_STRATEGY_FALLBACK":     "false",
		"MAX_CONCURRENT_JOBS":          "3",
		"JOB_TIMEOUT_MINUTES":          "10",
		"YOUTUBE_AUDIO_CACHE_TTL_DAYS": "2",
		"MAX_VIDEO_LENGTH_MINUTES":     "12.5",
		"TEXT_PROVIDER_ORDER":          "Claude, gemini",
		"RAG_ENGINE_URL":               "http://rag.local",
		"TEMP_FILES_DIR":               "  ",
	}))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "google", cfg.AI.GoogleAPIKey)
	assert.Equal(t, "openai", cfg.AI.OpenAIAPIKey)
	assert.Equal(t, "http://localhost:8000/v1", cfg.AI.LocalWhisperHost)
	assert.Equal(t, "fast_video", cfg.DefaultStrategy)
	assert.False(t, cfg.EnableFallback)
	assert.Equal(t, 3, cfg.MaxConcurrentJobs)
	assert.Equal(t, 10*time.Minute, cfg.JobTimeout)
	assert.Equal(t, 48*time.Hour, cfg.CacheTTL)
	assert.Equal(t, 12*time.Minute+30*time.Second, cfg.MaxVideoDuration())
	assert.Equal(t, []ai.ProviderName{ai.ProviderAnthropic, ai.ProviderGoogle}, cfg.AI.TextOrder)
	assert.Equal(t, "http://rag.local", cfg.CollectionURL)
	assert.NotEmpty(t, cfg.TempDir, "blank values are ignored")
}

func TestApplyEnv_ReportsEveryBadValue(t *testing.T) {
	cfg := DefaultConfig()
	err := cfg.ApplyEnv(mapLookup(map[string]string{
		"ENABLE_STRATEGY_FALLBACK": "maybe",
		"MAX_CONCURRENT_JOBS":      "many",
		"JOB_TIMEOUT_MINUTES":      "soon",
	}))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.Contains(t, err.Error(), "ENABLE_STRATEGY_FALLBACK")
	assert.Contains(t, err.Error(), "MAX_CONCURRENT_JOBS")
	assert.Contains(t, err.Error(), "JOB_TIMEOUT_MINUTES")
	assert.True(t, cfg.EnableFallback)
}

func TestLoad_PrecedenceAndEnvFiles(t *testing.T) {
	file := writeFile(t, "engine.yaml", "max_concurrent_jobs: 2\ndefault_strategy: general_pipeline\n")
	envFile := writeFile(t, ".env", "MAX_CONCURRENT_JOBS=7\nCONTENT_STRATEGY=fast_video\n")

	t.Setenv("CONTENT_STRATEGY", "general_pipeline")
	t.Setenv("MAX_CONCURRENT_JOBS", "")
	require.NoError(t, os.Unsetenv("MAX_CONCURRENT_JOBS"))

	cfg, err := Load(file, envFile)
	require.NoError(t, err)

	assert.Equal(t, 7, cfg.MaxConcurrentJobs, ".env overrides the file")
	assert.Equal(t, "general_pipeline", cfg.DefaultStrategy, "the environment overrides .env")
}

func TestLoadEnvFiles_MissingIsSkipped(t *testing.T) {
	assert.NoError(t, LoadEnvFiles(filepath.Join(t.TempDir(), "absent.env")))
}
