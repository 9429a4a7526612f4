package parsers

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/parkho-ai/contentengine/ai"
	"github.com/parkho-ai/contentengine/ai/mock"
	"github.com/parkho-ai/contentengine/cache"
	"github.com/parkho-ai/contentengine/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testVideoURL = "https://www.youtube.com/watch?v=dQw4w9WgXcQ"

type fakeVideoSource struct {
	info      VideoInfo
	infoErr   error
	audio     []byte
	mimeType  string
	size      int64
	openErr   error
	infoCalls atomic.Int32
	openCalls atomic.Int32
}

func (s *fakeVideoSource) Info(ctx context.Context, url string) (VideoInfo, error) {
	s.infoCalls.Add(1)
	return s.info, s.infoErr
}

func (s *fakeVideoSource) OpenAudio(ctx context.Context, url string) (io.ReadCloser, int64, string, error) {
	s.openCalls.Add(1)
	if s.openErr != nil {
		return nil, 0, "", s.openErr
	}
	size := s.size
	if size == 0 {
		size = int64(len(s.audio))
	}
	mimeType := s.mimeType
	if mimeType == "" {
		mimeType = "audio/mp4"
	}
	return io.NopCloser(bytes.NewReader(s.audio)), size, mimeType, nil
}

func newFakeSource() *fakeVideoSource {
	return &fakeVideoSource{
		info: VideoInfo{
			ID:          "dQw4w9WgXcQ",
			Title:       "Intro Video",
			Author:      "Teacher",
			Description: "An introduction",
			Duration:    5 * time.Minute,
		},
		audio: bytes.Repeat([]byte{0x42}, 4096),
	}
}

func transcriptionChain(t *testing.T, transcribers ...*mock.MockTranscriber) *ai.TranscriptionChain {
	t.Helper()
	providers := make([]ai.Transcriber, len(transcribers))
	for i, tr := range transcribers {
		providers[i] = tr
	}
	chain, err := ai.NewChain(ai.CapabilityTranscription, nil, providers)
	require.NoError(t, err)
	return chain
}

func newAudioCache(t *testing.T) *cache.ArtifactCache {
	t.Helper()
	c, err := cache.New(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(c.Release)
	return c
}

func TestExtractVideoID(t *testing.T) {
	cases := map[string]string{
		"https://www.youtube.com/watch?v=dQw4w9WgXcQ":            "dQw4w9WgXcQ",
		"https://youtube.com/watch?feature=share&v=dQw4w9WgXcQ": "dQw4w9WgXcQ",
		"https://youtu.be/dQw4w9WgXcQ?t=10":                      "dQw4w9WgXcQ",
		"https://www.youtube.com/embed/dQw4w9WgXcQ":              "dQw4w9WgXcQ",
		"https://www.youtube.com/shorts/dQw4w9WgXcQ":             "dQw4w9WgXcQ",
	}
	for url, want := range cases {
		id, err := ExtractVideoID(url)
		require.NoError(t, err, url)
		assert.Equal(t, want, id, url)
	}

	_, err := ExtractVideoID("https://example.com/video")
	require.ErrorIs(t, err, ErrInvalidVideoURL)
	assert.False(t, IsVideoURL("not a url"))
	assert.True(t, IsVideoURL(testVideoURL))
}

func TestVideoFetcher_ProbeRejectsLongVideo(t *testing.T) {
	source := newFakeSource()
	source.info.Duration = 45 * time.Minute
	fetcher := NewVideoFetcher(source)

	_, err := fetcher.Probe(context.Background(), testVideoURL)
	require.ErrorIs(t, err, ErrVideoTooLong)
	assert.Contains(t, err.Error(), "45.0min > 30min")
	assert.Equal(t, int32(0), source.openCalls.Load())
}

func TestVideoFetcher_ProbeInfoError(t *testing.T) {
	source := newFakeSource()
	source.infoErr = errors.New("video unavailable")
	fetcher := NewVideoFetcher(source)

	_, err := fetcher.Probe(context.Background(), testVideoURL)
	require.Error(t, err)
	assert.Equal(t, core.KindParsing, core.KindOf(err))
}

func TestVideoFetcher_AudioCachedAfterFirstDownload(t *testing.T) {
	source := newFakeSource()
	audioCache := newAudioCache(t)
	fetcher := NewVideoFetcher(source, WithArtifactCache(audioCache), WithTempDir(t.TempDir()))
	ctx := context.Background()

	info, err := fetcher.Probe(ctx, testVideoURL)
	require.NoError(t, err)

	first, err := fetcher.Audio(ctx, info)
	require.NoError(t, err)
	assert.True(t, first.Cached)
	assert.Equal(t, audioCache.Path(info.ID), first.Path)
	require.NoError(t, first.Close())
	assert.FileExists(t, first.Path)

	second, err := fetcher.Audio(ctx, info)
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, int64(4096), second.Size)
	assert.Equal(t, int32(1), source.openCalls.Load())

	stats, err := audioCache.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Hits)
}

// webmAudio returns bytes with an EBML header declaring the webm doctype.
func webmAudio() []byte {
	header := []byte{0x1A, 0x45, 0xDF, 0xA3, 0x9F, 0x42, 0x86, 0x81, 0x01, 0x42, 0x82, 0x84, 'w', 'e', 'b', 'm'}
	return append(header, make([]byte, 4096)...)
}

func TestVideoFetcher_CachedAudioKeepsMIMEType(t *testing.T) {
	source := newFakeSource()
	source.audio = webmAudio()
	source.mimeType = "audio/webm"
	fetcher := NewVideoFetcher(source, WithArtifactCache(newAudioCache(t)), WithTempDir(t.TempDir()))
	ctx := context.Background()

	first, err := fetcher.Audio(ctx, source.info)
	require.NoError(t, err)
	assert.Equal(t, "audio/webm", first.MIMEType)

	second, err := fetcher.Audio(ctx, source.info)
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, "audio/webm", second.MIMEType)
	assert.Equal(t, int32(1), source.openCalls.Load())
}

func TestSniffAudioMIMEType_UnknownFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audio.bin")
	require.NoError(t, os.WriteFile(path, bytes.Repeat([]byte{0x42}, 2048), 0o644))
	assert.Equal(t, "audio/mp4", sniffAudioMIMEType(path))
	assert.Equal(t, "audio/mp4", sniffAudioMIMEType(filepath.Join(t.TempDir(), "missing")))
}

func TestVideoFetcher_AudioWithoutCacheIsTemporary(t *testing.T) {
	source := newFakeSource()
	fetcher := NewVideoFetcher(source, WithTempDir(t.TempDir()))

	artifact, err := fetcher.Audio(context.Background(), source.info)
	require.NoError(t, err)
	assert.False(t, artifact.Cached)
	assert.Equal(t, "audio/mp4", artifact.MIMEType)
	assert.FileExists(t, artifact.Path)

	require.NoError(t, artifact.Close())
	_, err = os.Stat(artifact.Path)
	assert.True(t, os.IsNotExist(err))
}

func TestVideoFetcher_AudioTooLarge(t *testing.T) {
	t.Run("declared size", func(t *testing.T) {
		source := newFakeSource()
		source.size = 10 << 20
		fetcher := NewVideoFetcher(source, WithMaxAudioBytes(1<<20), WithTempDir(t.TempDir()))

		_, err := fetcher.Audio(context.Background(), source.info)
		require.ErrorIs(t, err, ErrAudioTooLarge)
	})

	t.Run("unknown size", func(t *testing.T) {
		source := newFakeSource()
		source.size = -1
		dir := t.TempDir()
		fetcher := NewVideoFetcher(source, WithMaxAudioBytes(1024), WithTempDir(dir))

		_, err := fetcher.Audio(context.Background(), source.info)
		require.ErrorIs(t, err, ErrAudioTooLarge)

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})
}

func TestVideoParser_Parse(t *testing.T) {
	source := newFakeSource()
	openai := mock.NewMockTranscriber(ai.ProviderOpenAI, "")
	openai.InvokeFunc = func(ctx context.Context, req ai.AudioRequest) (ai.Transcript, error) {
		return ai.Transcript{}, errors.New("503 service unavailable")
	}
	google := mock.NewMockTranscriber(ai.ProviderGoogle, "Welcome to the lecture on cells.")

	fetcher := NewVideoFetcher(source, WithArtifactCache(newAudioCache(t)), WithTempDir(t.TempDir()))
	parser := NewVideoParser(fetcher, transcriptionChain(t, openai, google), "")

	result, err := parser.Parse(context.Background(), core.ContentSource{
		ContentType: core.ContentTypeVideo,
		Reference:   testVideoURL,
	})
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, "Intro Video", result.Title)
	assert.Equal(t, "Welcome to the lecture on cells.", result.Content)
	assert.Equal(t, "dQw4w9WgXcQ", result.Metadata["video_id"])
	assert.Equal(t, 300, result.Metadata["duration"])
	assert.Equal(t, "youtube", result.Metadata["subtype"])
	assert.Equal(t, "google", result.Metadata["transcription_provider"])
	assert.Equal(t, true, result.Metadata["transcription_fallback"])
	assert.Equal(t, 1, openai.CallCount())
}

func TestVideoParser_ShortTranscript(t *testing.T) {
	source := newFakeSource()
	fetcher := NewVideoFetcher(source, WithTempDir(t.TempDir()))
	parser := NewVideoParser(fetcher, transcriptionChain(t, mock.NewMockTranscriber(ai.ProviderOpenAI, "uh")), "")

	_, err := parser.Parse(context.Background(), core.ContentSource{ContentType: core.ContentTypeVideo, Reference: testVideoURL})
	require.ErrorIs(t, err, ErrTranscriptTooShort)
}

func TestVideoParser_InvalidURL(t *testing.T) {
	source := newFakeSource()
	parser := NewVideoParser(NewVideoFetcher(source), transcriptionChain(t, mock.NewMockTranscriber(ai.ProviderOpenAI, "text")), "")

	_, err := parser.Parse(context.Background(), core.ContentSource{ContentType: core.ContentTypeVideo, Reference: "https://example.com/clip"})
	require.ErrorIs(t, err, ErrInvalidVideoURL)
	assert.Equal(t, int32(0), source.infoCalls.Load())
}
