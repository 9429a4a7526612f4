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

package parsers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/parkho-ai/contentengine/ai"
	"github.com/parkho-ai/contentengine/cache"
	"github.com/parkho-ai/contentengine/core"
)

const (
	// DefaultMaxVideoDuration is the longest video accepted.
	DefaultMaxVideoDuration = 30 * time.Minute

	// DefaultMaxAudioBytes caps a downloaded audio stream.
	DefaultMaxAudioBytes int64 = 500 << 20

	minTranscriptChars   = 10
	maxDescriptionChars  = 500
	defaultAudioMIMEType = "audio/mp4"
)

// AudioArtifact is a local audio file ready for transcription or analysis.
type AudioArtifact struct {
	Path     string
	MIMEType string
	Cached   bool
	Size     int64
	temp     bool
}

// Close removes the file when it is an uncached temporary download.
func (a *AudioArtifact) Close() error {
	if a == nil || !a.temp {
		return nil
	}
	err := os.Remove(a.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// VideoFetcher validates videos and obtains their audio through the
// artifact cache. It is shared by the video parser and the fast pipeline.
type VideoFetcher struct {
	source        VideoSource
	cache         *cache.ArtifactCache
	maxDuration   time.Duration
	maxAudioBytes int64
	tempDir       string
	logger        *slog.Logger
}

// FetcherOption configures a VideoFetcher.
type FetcherOption func(*VideoFetcher)

// WithArtifactCache enables audio caching.
func WithArtifactCache(c *cache.ArtifactCache) FetcherOption {
	return func(f *VideoFetcher) {
		f.cache = c
	}
}

// WithMaxDuration sets the longest video accepted.
func WithMaxDuration(d time.Duration) FetcherOption {
	return func(f *VideoFetcher) {
		if d > 0 {
			f.maxDuration = d
		}
	}
}

// WithMaxAudioBytes sets the audio download cap.
func WithMaxAudioBytes(n int64) FetcherOption {
	return func(f *VideoFetcher) {
		if n > 0 {
			f.maxAudioBytes = n
		}
	}
}

// WithTempDir sets where uncached downloads are written.
func WithTempDir(dir string) FetcherOption {
	return func(f *VideoFetcher) {
		f.tempDir = dir
	}
}

// NewVideoFetcher creates a fetcher over source.
func NewVideoFetcher(source VideoSource, opts ...FetcherOption) *VideoFetcher {
	f := &VideoFetcher{
		source:        source,
		maxDuration:   DefaultMaxVideoDuration,
		maxAudioBytes: DefaultMaxAudioBytes,
		logger:        slog.Default().With("component", "video-fetcher"),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Probe extracts the video id, fetches metadata and enforces the duration
// limit. No media is downloaded.
func (f *VideoFetcher) Probe(ctx context.Context, url string) (VideoInfo, error) {
	id, err := ExtractVideoID(url)
	if err != nil {
		return VideoInfo{}, err
	}

	info, err := f.source.Info(ctx, url)
	if err != nil {
		return VideoInfo{}, core.ParsingError("failed to extract video info", err)
	}
	if info.ID == "" {
		info.ID = id
	}
	info.URL = url

	if info.Duration > f.maxDuration {
		return VideoInfo{}, core.ParsingError(
			fmt.Sprintf("video too long: %.1fmin > %.0fmin", info.Duration.Minutes(), f.maxDuration.Minutes()),
			ErrVideoTooLong)
	}
	return info, nil
}

// Audio returns the video's audio, from the cache when possible.
// The caller must Close the artifact.
func (f *VideoFetcher) Audio(ctx context.Context, info VideoInfo) (*AudioArtifact, error) {
	if f.cache != nil {
		entry, hit, err := f.cache.Get(ctx, info.ID)
		if err != nil {
			if ctx.Err() != nil {
				return nil, err
			}
			f.logger.Warn("audio cache lookup failed", "video_id", info.ID, "err", err)
		}
		if hit {
			f.logger.Info("audio cache hit", "video_id", info.ID)
			return &AudioArtifact{Path: entry.Path, MIMEType: sniffAudioMIMEType(entry.Path), Cached: true, Size: entry.Size}, nil
		}
	}

	download, err := f.download(ctx, info)
	if err != nil {
		return nil, err
	}
	if f.cache == nil {
		return download, nil
	}

	entry, err := f.cache.Put(ctx, info.ID, download.Path)
	if err != nil {
		// Caching is best-effort; keep using the temporary download.
		f.logger.Warn("caching audio failed", "video_id", info.ID, "err", err)
		return download, nil
	}
	download.Close()
	return &AudioArtifact{Path: entry.Path, MIMEType: download.MIMEType, Cached: true, Size: entry.Size}, nil
}

// sniffAudioMIMEType recovers the type of a cached audio stream. Containers
// detected as video (webm, mp4) hold audio only here, so they are reported
// under audio/.
func sniffAudioMIMEType(path string) string {
	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return defaultAudioMIMEType
	}
	for m := mt; m != nil; m = m.Parent() {
		base, _, _ := strings.Cut(m.String(), ";")
		switch {
		case strings.HasPrefix(base, "audio/"):
			return base
		case strings.HasPrefix(base, "video/"):
			return "audio/" + strings.TrimPrefix(base, "video/")
		}
	}
	return defaultAudioMIMEType
}

func (f *VideoFetcher) download(ctx context.Context, info VideoInfo) (*AudioArtifact, error) {
	stream, size, mimeType, err := f.source.OpenAudio(ctx, info.URL)
	if err != nil {
		return nil, core.ParsingError("failed to download audio", err)
	}
	defer stream.Close()

	if size > f.maxAudioBytes {
		return nil, audioTooLarge(size, f.maxAudioBytes)
	}

	tmp, err := os.CreateTemp(f.tempDir, "audio-"+SafeFileStem(info.ID)+"-*")
	if err != nil {
		return nil, core.ParsingError("failed to create temp file", err)
	}
	artifact := &AudioArtifact{Path: tmp.Name(), MIMEType: mimeType, temp: true}
	if artifact.MIMEType == "" {
		artifact.MIMEType = defaultAudioMIMEType
	}

	n, err := io.Copy(tmp, io.LimitReader(stream, f.maxAudioBytes+1))
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		artifact.Close()
		return nil, core.ParsingError("failed to download audio", err)
	}
	if n > f.maxAudioBytes {
		artifact.Close()
		return nil, audioTooLarge(n, f.maxAudioBytes)
	}
	artifact.Size = n

	f.logger.Info("downloaded audio", "video_id", info.ID, "bytes", n)
	return artifact, nil
}

func audioTooLarge(size, limit int64) error {
	return core.ParsingError(
		fmt.Sprintf("audio file too large: %.1fMB > %dMB", float64(size)/(1<<20), limit>>20),
		ErrAudioTooLarge)
}

// SafeFileStem is cache.SafeKey, exposed for temp file naming.
func SafeFileStem(s string) string {
	return cache.SafeKey(s)
}

// VideoParser turns a video URL into a transcript using the transcription chain.
type VideoParser struct {
	fetcher    *VideoFetcher
	transcribe *ai.TranscriptionChain
	preferred  ai.ProviderName
	logger     *slog.Logger
}

// NewVideoParser creates a video parser. preferred may be empty.
func NewVideoParser(fetcher *VideoFetcher, transcription *ai.TranscriptionChain, preferred ai.ProviderName) *VideoParser {
	return &VideoParser{
		fetcher:    fetcher,
		transcribe: transcription,
		preferred:  preferred,
		logger:     slog.Default().With("component", "video-parser"),
	}
}

// ContentType implements parsing.Parser.
func (p *VideoParser) ContentType() core.ContentType {
	return core.ContentTypeVideo
}

// Parse validates the video, obtains its audio and transcribes it.
func (p *VideoParser) Parse(ctx context.Context, source core.ContentSource) (core.ParseResult, error) {
	start := time.Now()

	info, err := p.fetcher.Probe(ctx, source.Reference)
	if err != nil {
		return core.ParseResult{}, err
	}
	p.logger.Info("video parse started", "video_id", info.ID, "duration", info.Duration)

	audio, err := p.fetcher.Audio(ctx, info)
	if err != nil {
		return core.ParseResult{}, err
	}
	defer audio.Close()

	outcome, err := p.transcribe.Execute(ctx, ai.AudioRequest{Path: audio.Path, MIMEType: audio.MIMEType}, p.preferred)
	if err != nil {
		return core.ParseResult{}, err
	}

	transcript := strings.TrimSpace(outcome.Output.Text)
	if len([]rune(transcript)) < minTranscriptChars {
		return core.ParseResult{}, core.ParsingError("transcription returned empty or very short transcript", ErrTranscriptTooShort)
	}

	description := info.Description
	if r := []rune(description); len(r) > maxDescriptionChars {
		description = string(r[:maxDescriptionChars])
	}

	p.logger.Info("video parse completed",
		"video_id", info.ID,
		"provider", outcome.Provider,
		"took", time.Since(start))

	return core.ParseResult{
		Success: true,
		Content: transcript,
		Title:   info.Title,
		Metadata: map[string]any{
			"video_id":               info.ID,
			"title":                  info.Title,
			"duration":               int(info.Duration.Seconds()),
			"uploader":               info.Author,
			"description":            description,
			"transcript_length":      len(transcript),
			"source_type":            "youtube",
			"subtype":                "youtube",
			"audio_cached":           audio.Cached,
			"transcription_provider": string(outcome.Provider),
			"transcription_fallback": outcome.FallbackOccurred,
		},
	}, nil
}
