package parsers

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/kkdai/youtube/v2"
	"github.com/parkho-ai/contentengine/core"
)

var videoIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`youtube\.com/watch\?(?:.*&)?v=([a-zA-Z0-9_-]{11})`),
	regexp.MustCompile(`youtu\.be/([a-zA-Z0-9_-]{11})`),
	regexp.MustCompile(`youtube\.com/embed/([a-zA-Z0-9_-]{11})`),
	regexp.MustCompile(`youtube\.com/shorts/([a-zA-Z0-9_-]{11})`),
}

// ExtractVideoID returns the 11-character video id in ref.
func ExtractVideoID(ref string) (string, error) {
	for _, re := range videoIDPatterns {
		if m := re.FindStringSubmatch(ref); m != nil {
			return m[1], nil
		}
	}
	return "", core.ParsingError(fmt.Sprintf("invalid video URL: %s", ref), ErrInvalidVideoURL)
}

// IsVideoURL reports whether ref contains a recognizable video id.
func IsVideoURL(ref string) bool {
	_, err := ExtractVideoID(ref)
	return err == nil
}

// VideoInfo is the metadata needed before committing to a download.
type VideoInfo struct {
	ID          string
	URL         string
	Title       string
	Author      string
	Description string
	Duration    time.Duration
}

// VideoSource resolves video metadata and streams audio.
type VideoSource interface {
	Info(ctx context.Context, url string) (VideoInfo, error)

	// OpenAudio opens the best audio-only stream. size is -1 when unknown.
	OpenAudio(ctx context.Context, url string) (stream io.ReadCloser, size int64, mimeType string, err error)
}

// YouTubeSource implements VideoSource with github.com/kkdai/youtube.
type YouTubeSource struct {
	client *youtube.Client
}

// NewYouTubeSource creates a source with a default client.
func NewYouTubeSource() *YouTubeSource {
	return &YouTubeSource{client: &youtube.Client{}}
}

// Info fetches the video's metadata without downloading media.
func (s *YouTubeSource) Info(ctx context.Context, url string) (VideoInfo, error) {
	video, err := s.client.GetVideoContext(ctx, url)
	if err != nil {
		return VideoInfo{}, fmt.Errorf("fetching video info: %w", err)
	}
	return VideoInfo{
		ID:          video.ID,
		URL:         url,
		Title:       video.Title,
		Author:      video.Author,
		Description: video.Description,
		Duration:    video.Duration,
	}, nil
}

// OpenAudio prefers an audio/mp4 stream and falls back to any audio format.
func (s *YouTubeSource) OpenAudio(ctx context.Context, url string) (io.ReadCloser, int64, string, error) {
	video, err := s.client.GetVideoContext(ctx, url)
	if err != nil {
		return nil, 0, "", fmt.Errorf("fetching video info: %w", err)
	}

	formats := video.Formats.WithAudioChannels().Type("audio/mp4")
	if len(formats) == 0 {
		formats = video.Formats.WithAudioChannels().Type("audio/")
	}
	if len(formats) == 0 {
		return nil, 0, "", ErrNoAudioFormat
	}
	formats.Sort()
	format := formats[0]

	stream, size, err := s.client.GetStreamContext(ctx, video, &format)
	if err != nil {
		return nil, 0, "", fmt.Errorf("opening audio stream: %w", err)
	}
	mimeType, _, _ := strings.Cut(format.MimeType, ";")
	return stream, size, strings.TrimSpace(mimeType), nil
}
