// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package config

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/parkho-ai/contentengine/ai"
	"github.com/parkho-ai/contentengine/cache"
	"github.com/parkho-ai/contentengine/core"
	"github.com/parkho-ai/contentengine/orchestrator"
	"gopkg.in/yaml.v3"
)

// Config holds every setting needed to assemble the engine.
type Config struct {
	// AI holds provider credentials, models and try-orders.
	AI *ai.Config `yaml:"ai"`

	// DBPath is the job store directory. Empty keeps jobs in memory.
	DBPath string `yaml:"db_path"`

	// FilesDir resolves relative PDF and DOCX references.
	FilesDir string `yaml:"files_dir"`

	// TempDir receives downloads that are not cached.
	TempDir string `yaml:"temp_dir"`

	CacheEnabled       bool          `yaml:"cache_enabled"`
	CacheDir           string        `yaml:"cache_dir"`
	CacheTTL           time.Duration `yaml:"cache_ttl"`
	CacheSweepInterval time.Duration `yaml:"cache_sweep_interval"`

	// DefaultStrategy names the strategy used when a job does not request
	// one. "auto" selects by score.
	DefaultStrategy   string        `yaml:"default_strategy"`
	EnableFallback    bool          `yaml:"enable_fallback"`
	FastPathEnabled   bool          `yaml:"fast_path_enabled"`
	MaxConcurrentJobs int           `yaml:"max_concurrent_jobs"`
	ParseConcurrency  int           `yaml:"parse_concurrency"`
	JobTimeout        time.Duration `yaml:"job_timeout"`

	MaxVideoMinutes float64 `yaml:"max_video_minutes"`
	MaxAudioMB      int64   `yaml:"max_audio_mb"`

	// CollectionURL enables collection context retrieval.
	CollectionURL    string `yaml:"collection_url"`
	CollectionUserID string `yaml:"collection_user_id"`

	// QuestionCounts overrides the default question mix.
	QuestionCounts map[core.QuestionType]int `yaml:"question_counts"`
}

// Option is a functional option for configuring a Config.
type Option func(*Config)

// WithDBPath sets the job store directory.
func WithDBPath(path string) Option {
	return func(c *Config) {
		c.DBPath = path
	}
}

// WithCacheDir sets the artifact cache directory.
func WithCacheDir(dir string) Option {
	return func(c *Config) {
		c.CacheDir = dir
	}
}

// WithDefaultStrategy sets the strategy used when a job names none.
func WithDefaultStrategy(name string) Option {
	return func(c *Config) {
		c.DefaultStrategy = name
	}
}

// WithFallback enables or disables the single fallback attempt.
func WithFallback(enabled bool) Option {
	return func(c *Config) {
		c.EnableFallback = enabled
	}
}

// WithFastPath enables or disables the fast video strategy.
func WithFastPath(enabled bool) Option {
	return func(c *Config) {
		c.FastPathEnabled = enabled
	}
}

// WithMaxConcurrentJobs bounds the executor pool.
func WithMaxConcurrentJobs(n int) Option {
	return func(c *Config) {
		c.MaxConcurrentJobs = n
	}
}

// WithJobTimeout bounds each job. Zero disables the bound.
func WithJobTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.JobTimeout = d
	}
}

// WithCollectionURL enables collection context retrieval.
func WithCollectionURL(url string) Option {
	return func(c *Config) {
		c.CollectionURL = url
	}
}

// WithAI replaces the AI configuration.
func WithAI(cfg *ai.Config) Option {
	return func(c *Config) {
		c.AI = cfg
	}
}

// DefaultConfig returns a Config with default values and no credentials.
func DefaultConfig() *Config {
	tmp := filepath.Join(os.TempDir(), "contentengine")
	return &Config{
		AI:                 ai.DefaultConfig(),
		FilesDir:           ".",
		TempDir:            tmp,
		CacheEnabled:       true,
		CacheDir:           filepath.Join(tmp, "audio"),
		CacheTTL:           cache.DefaultTTL,
		CacheSweepInterval: cache.DefaultSweepInterval,
		DefaultStrategy:    orchestrator.AutoStrategy,
		EnableFallback:     true,
		FastPathEnabled:    true,
		MaxConcurrentJobs:  orchestrator.DefaultMaxConcurrentJobs,
		ParseConcurrency:   4,
		MaxVideoMinutes:    30,
		MaxAudioMB:         500,
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
//
// Example:
//
//	cfg := NewConfig(
//	    WithDBPath("/var/lib/contentengine"),
//	    WithFallback(false),
//	)
func NewConfig(opts ...Option) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Load builds a Config from defaults, the YAML file at path (skipped when
// empty), the given .env files and the process environment, in that order.
// Variables already set in the environment win over .env files.
func Load(path string, envFiles ...string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return nil, err
		}
	}
	if err := LoadEnvFiles(envFiles...); err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile merges the YAML document at path into c.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, path, err)
	}
	if c.AI == nil {
		c.AI = ai.DefaultConfig()
	}
	return nil
}

// Normalize ensures the configuration is in a canonical form.
func (c *Config) Normalize() {
	if c.AI == nil {
		c.AI = ai.DefaultConfig()
	}
	c.AI.Normalize()

	c.DefaultStrategy = strings.ToLower(strings.TrimSpace(c.DefaultStrategy))
	if c.DefaultStrategy == "" {
		c.DefaultStrategy = orchestrator.AutoStrategy
	}
	c.CollectionURL = strings.TrimSuffix(strings.TrimSpace(c.CollectionURL), "/")
	if c.MaxConcurrentJobs <= 0 {
		c.MaxConcurrentJobs = orchestrator.DefaultMaxConcurrentJobs
	}
	if c.ParseConcurrency <= 0 {
		c.ParseConcurrency = 4
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = cache.DefaultTTL
	}
	if c.CacheSweepInterval <= 0 {
		c.CacheSweepInterval = cache.DefaultSweepInterval
	}
	if c.JobTimeout < 0 {
		c.JobTimeout = 0
	}
	if c.TempDir == "" {
		c.TempDir = filepath.Join(os.TempDir(), "contentengine")
	}
	if c.CacheDir == "" {
		c.CacheDir = filepath.Join(c.TempDir, "audio")
	}
	if c.FilesDir == "" {
		c.FilesDir = "."
	}
	c.QuestionCounts = maps.Clone(c.QuestionCounts)
}

// Validate checks that the configuration is usable.
// It automatically normalizes the configuration before validation.
func (c *Config) Validate() error {
	c.Normalize()

	if err := c.AI.Validate(); err != nil {
		return errors.Join(ErrInvalidConfig, err)
	}
	if c.MaxVideoMinutes <= 0 {
		return fmt.Errorf("%w: max_video_minutes must be positive", ErrInvalidConfig)
	}
	if c.MaxAudioMB <= 0 {
		return fmt.Errorf("%w: max_audio_mb must be positive", ErrInvalidConfig)
	}
	if err := core.ValidateOptions(core.ProcessingOptions{QuestionCounts: c.QuestionCounts}); err != nil {
		return errors.Join(ErrInvalidConfig, err)
	}
	return nil
}

// MaxVideoDuration returns MaxVideoMinutes as a duration.
func (c *Config) MaxVideoDuration() time.Duration {
	return time.Duration(c.MaxVideoMinutes * float64(time.Minute))
}

// MaxAudioBytes returns MaxAudioMB in bytes.
func (c *Config) MaxAudioBytes() int64 {
	return c.MaxAudioMB << 20
}
