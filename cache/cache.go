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

package cache

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-crypt/x/blake2b"
	"github.com/panjf2000/ants/v2"
	"github.com/parkho-ai/contentengine/core"
)

const (
	// DefaultTTL is how long an artifact stays valid.
	DefaultTTL = 7 * 24 * time.Hour

	// DefaultMinSize is the integrity floor. Smaller files are treated as corrupt.
	DefaultMinSize int64 = 1024

	// DefaultExtension is appended to cached artifact names.
	DefaultExtension = ".mp3"

	// DefaultSweepInterval is the StartSweeper period when none is given.
	DefaultSweepInterval = 24 * time.Hour

	defaultPoolSize = 4
	tempPattern     = ".tmp-*"
)

// Observer is notified of every lookup outcome.
type Observer func(hit bool)

// Stats is a snapshot of cache usage.
type Stats struct {
	Hits       int64   `json:"hits"`
	Misses     int64   `json:"misses"`
	HitRate    float64 `json:"hit_rate"`
	Files      int     `json:"files"`
	TotalBytes int64   `json:"total_bytes"`
	Dir        string  `json:"dir"`
}

// ArtifactCache stores downloaded artifacts on local disk keyed by a
// caller-chosen string. Entries expire after a TTL and files below a size
// floor are treated as corrupt. All file I/O runs on a bounded worker pool.
type ArtifactCache struct {
	dir      string
	ttl      time.Duration
	minSize  int64
	ext      string
	pool     *ants.Pool
	now      func() time.Time
	observe  Observer
	logger   *slog.Logger
	hits     atomic.Int64
	misses   atomic.Int64
	release  sync.Once
	released atomic.Bool
}

// Option configures an ArtifactCache.
type Option func(*ArtifactCache) error

// WithTTL sets the entry lifetime. Non-positive values keep the default.
func WithTTL(ttl time.Duration) Option {
	return func(c *ArtifactCache) error {
		if ttl > 0 {
			c.ttl = ttl
		}
		return nil
	}
}

// WithMinSize sets the integrity floor in bytes.
func WithMinSize(size int64) Option {
	return func(c *ArtifactCache) error {
		if size >= 0 {
			c.minSize = size
		}
		return nil
	}
}

// WithExtension sets the file extension of cached artifacts.
func WithExtension(ext string) Option {
	return func(c *ArtifactCache) error {
		if ext != "" && !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		c.ext = ext
		return nil
	}
}

// WithPoolSize sets the number of concurrent file operations.
func WithPoolSize(size int) Option {
	return func(c *ArtifactCache) error {
		if size < 1 {
			size = 1
		}
		if c.pool != nil {
			c.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		c.pool = pool
		return nil
	}
}

// WithObserver registers a hit/miss callback, typically a metrics counter.
func WithObserver(o Observer) Option {
	return func(c *ArtifactCache) error {
		c.observe = o
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *ArtifactCache) error {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger.With("component", "artifact-cache")
		return nil
	}
}

// WithClock overrides time.Now. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(c *ArtifactCache) error {
		if now != nil {
			c.now = now
		}
		return nil
	}
}

// New creates a cache rooted at dir, creating the directory if needed.
// Call Release when done to stop the worker pool.
func New(dir string, opts ...Option) (*ArtifactCache, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, ErrDirRequired
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}

	pool, err := ants.NewPool(defaultPoolSize)
	if err != nil {
		return nil, err
	}

	c := &ArtifactCache{
		dir:     dir,
		ttl:     DefaultTTL,
		minSize: DefaultMinSize,
		ext:     DefaultExtension,
		pool:    pool,
		now:     time.Now,
		logger:  slog.Default().With("component", "artifact-cache"),
	}

	for _, opt := range opts {
		if optErr := opt(c); optErr != nil {
			c.Release()
			return nil, optErr
		}
	}
	return c, nil
}

// Dir returns the cache directory.
func (c *ArtifactCache) Dir() string {
	return c.dir
}

// Release stops the worker pool. The cache must not be used afterwards.
func (c *ArtifactCache) Release() {
	c.release.Do(func() {
		c.released.Store(true)
		if c.pool != nil {
			c.pool.Release()
		}
	})
}

// Path returns the file path an entry for key is stored at.
func (c *ArtifactCache) Path(key string) string {
	return filepath.Join(c.dir, SafeKey(key)+c.ext)
}

// Get looks up key. It reports a miss when the entry is absent, older than
// the TTL, or smaller than the integrity floor; expired and corrupt entries
// are deleted. Errors are only returned for cancellation or a closed cache.
func (c *ArtifactCache) Get(ctx context.Context, key string) (core.CacheEntry, bool, error) {
	if key == "" {
		return core.CacheEntry{}, false, ErrKeyRequired
	}

	var entry core.CacheEntry
	var hit bool
	err := c.run(ctx, func() error {
		entry, hit = c.lookup(key)
		return nil
	})
	if err != nil {
		return core.CacheEntry{}, false, err
	}

	c.record(hit)
	return entry, hit, nil
}

func (c *ArtifactCache) lookup(key string) (core.CacheEntry, bool) {
	path := c.Path(key)
	info, err := os.Stat(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			c.logger.Warn("cache stat failed", "key", key, "err", err)
		}
		return core.CacheEntry{}, false
	}

	age := c.now().Sub(info.ModTime())
	switch {
	case age > c.ttl:
		c.logger.Debug("cache entry expired", "key", key, "age", age)
		c.remove(path)
		return core.CacheEntry{}, false
	case info.Size() < c.minSize:
		c.logger.Warn("cache entry below integrity floor", "key", key, "size", info.Size())
		c.remove(path)
		return core.CacheEntry{}, false
	}

	return core.CacheEntry{
		Key:       key,
		Path:      path,
		CreatedAt: info.ModTime(),
		Size:      info.Size(),
	}, true
}

// Put copies the artifact at srcPath into the cache under key. Sources
// below the integrity floor are rejected. An existing entry is replaced
// atomically.
func (c *ArtifactCache) Put(ctx context.Context, key, srcPath string) (core.CacheEntry, error) {
	if key == "" {
		return core.CacheEntry{}, ErrKeyRequired
	}

	var entry core.CacheEntry
	err := c.run(ctx, func() error {
		var err error
		entry, err = c.store(key, srcPath)
		return err
	})
	if err != nil {
		return core.CacheEntry{}, err
	}

	c.logger.Debug("cached artifact", "key", key, "size", entry.Size)
	return entry, nil
}

func (c *ArtifactCache) store(key, srcPath string) (core.CacheEntry, error) {
	src, err := os.Open(srcPath)
	if err != nil {
		return core.CacheEntry{}, fmt.Errorf("opening artifact: %w", err)
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return core.CacheEntry{}, fmt.Errorf("stat artifact: %w", err)
	}
	if info.Size() < c.minSize {
		return core.CacheEntry{}, core.ValidationError(
			fmt.Sprintf("artifact %q is %d bytes, minimum is %d", key, info.Size(), c.minSize),
			ErrArtifactTooSmall)
	}

	tmp, err := os.CreateTemp(c.dir, tempPattern)
	if err != nil {
		return core.CacheEntry{}, fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	size, err := io.Copy(tmp, src)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmpPath)
		return core.CacheEntry{}, fmt.Errorf("copying artifact: %w", err)
	}

	path := c.Path(key)
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return core.CacheEntry{}, fmt.Errorf("committing artifact: %w", err)
	}

	now := c.now()
	if err := os.Chtimes(path, now, now); err != nil {
		c.logger.Warn("setting cache entry time failed", "key", key, "err", err)
	}

	return core.CacheEntry{Key: key, Path: path, CreatedAt: now, Size: size}, nil
}

// Invalidate deletes the entry for key and reports whether one existed.
func (c *ArtifactCache) Invalidate(ctx context.Context, key string) (bool, error) {
	if key == "" {
		return false, ErrKeyRequired
	}

	var removed bool
	err := c.run(ctx, func() error {
		err := os.Remove(c.Path(key))
		switch {
		case err == nil:
			removed = true
		case errors.Is(err, fs.ErrNotExist):
		default:
			return err
		}
		return nil
	})
	return removed, err
}

// SweepExpired deletes every expired or corrupt entry and stray temp files
// and returns the number of files removed.
func (c *ArtifactCache) SweepExpired(ctx context.Context) (int, error) {
	var removed int
	err := c.run(ctx, func() error {
		entries, err := os.ReadDir(c.dir)
		if err != nil {
			return err
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			info, err := e.Info()
			if err != nil {
				continue
			}
			stale := c.now().Sub(info.ModTime()) > c.ttl
			if isTemp(e.Name()) || stale || info.Size() < c.minSize {
				if c.remove(filepath.Join(c.dir, e.Name())) {
					removed++
				}
			}
		}
		return nil
	})
	if err != nil {
		return removed, err
	}

	if removed > 0 {
		c.logger.Info("swept cache", "removed", removed)
	}
	return removed, nil
}

// Stats returns hit/miss counters and the current size of the cache directory.
func (c *ArtifactCache) Stats(ctx context.Context) (Stats, error) {
	stats := Stats{
		Hits:   c.hits.Load(),
		Misses: c.misses.Load(),
		Dir:    c.dir,
	}
	if total := stats.Hits + stats.Misses; total > 0 {
		stats.HitRate = float64(stats.Hits) / float64(total)
	}

	err := c.run(ctx, func() error {
		entries, err := os.ReadDir(c.dir)
		if err != nil {
			return err
		}
		for _, e := range entries {
			if e.IsDir() || isTemp(e.Name()) {
				continue
			}
			info, err := e.Info()
			if err != nil {
				continue
			}
			stats.Files++
			stats.TotalBytes += info.Size()
		}
		return nil
	})
	return stats, err
}

// StartSweeper runs SweepExpired every interval until ctx is cancelled.
// It returns immediately; the returned channel is closed when the sweeper stops.
func (c *ArtifactCache) StartSweeper(ctx context.Context, interval time.Duration) <-chan struct{} {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := c.SweepExpired(ctx); err != nil && ctx.Err() == nil {
					c.logger.Warn("cache sweep failed", "err", err)
				}
			}
		}
	}()
	return done
}

// run executes fn on the I/O pool and waits for it.
func (c *ArtifactCache) run(ctx context.Context, fn func() error) error {
	if c.released.Load() {
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	done := make(chan error, 1)
	if err := c.pool.Submit(func() { done <- fn() }); err != nil {
		if errors.Is(err, ants.ErrPoolClosed) {
			return ErrClosed
		}
		return err
	}

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *ArtifactCache) remove(path string) bool {
	if err := os.Remove(path); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			c.logger.Warn("removing cache file failed", "path", path, "err", err)
		}
		return false
	}
	return true
}

func (c *ArtifactCache) record(hit bool) {
	if hit {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	if c.observe != nil {
		c.observe(hit)
	}
}

func isTemp(name string) bool {
	return strings.HasPrefix(name, ".tmp-")
}

// SafeKey maps key onto a filename stem made of [A-Za-z0-9_-]. Keys that
// already qualify are used as is. Other keys keep their usable characters
// followed by a short BLAKE2b digest of the full key, so keys that differ
// only in stripped characters do not share a file. Keys with no usable
// characters become a hex digest.
func SafeKey(key string) string {
	var b strings.Builder
	b.Grow(len(key))
	for _, r := range key {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			b.WriteRune(r)
		}
	}
	if key != "" && b.Len() == len(key) {
		return key
	}
	if b.Len() == 0 {
		return keyDigest(key, 16)
	}
	return b.String() + "-" + keyDigest(key, 8)
}

func keyDigest(key string, size int) string {
	h, _ := blake2b.New(size, nil)
	h.Write([]byte(key))
	return hex.EncodeToString(h.Sum(nil))
}
