package parsers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/parkho-ai/contentengine/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePage = `<!DOCTYPE html>
<html>
<head>
  <title>Photosynthesis Basics</title>
  <meta name="description" content="How plants make food">
  <meta name="author" content="Jane Doe">
  <meta property="og:site_name" content="Biology Hub">
  <script>var tracking = true;</script>
</head>
<body>
  <nav>Home | About</nav>
  <main>
    <h1>Photosynthesis</h1>
    <p>Plants convert light energy into chemical energy.</p>
  </main>
  <footer>Copyright</footer>
</body>
</html>`

func webSource(url string) core.ContentSource {
	return core.ContentSource{ContentType: core.ContentTypeWebPage, Reference: url}
}

func TestWebParser_Parse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(samplePage))
	}))
	defer server.Close()

	parser := NewWebParser()
	result, err := parser.Parse(context.Background(), webSource(server.URL+"/article"))
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, "Photosynthesis Basics", result.Title)
	assert.Contains(t, result.Content, "Plants convert light energy into chemical energy.")
	assert.NotContains(t, result.Content, "Home | About")
	assert.NotContains(t, result.Content, "tracking")
	assert.NotContains(t, result.Content, "Copyright")

	assert.Equal(t, "How plants make food", result.Metadata["description"])
	assert.Equal(t, "Jane Doe", result.Metadata["author"])
	assert.Equal(t, "Biology Hub", result.Metadata["og_site_name"])
	assert.Equal(t, "url", result.Metadata["subtype"])
	assert.Equal(t, http.StatusOK, result.Metadata["status_code"])
}

func TestWebParser_TruncatesLongContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html><body><main><p>" + strings.Repeat("a", 500) + "</p></main></body></html>"))
	}))
	defer server.Close()

	parser := NewWebParser(WithMaxChars(100))
	result, err := parser.Parse(context.Background(), webSource(server.URL))
	require.NoError(t, err)

	assert.True(t, strings.HasSuffix(result.Content, truncatedSuffix))
	assert.Equal(t, 100+len(truncatedSuffix), len(result.Content))
	assert.Equal(t, true, result.Metadata["truncated"])
}

func TestWebParser_BodyOverReadLimitIsFlagged(t *testing.T) {
	page := "<html><head><title>Big</title></head><body><main><p>" +
		strings.Repeat("word ", 400) + "</p></main></body></html>"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(page))
	}))
	defer server.Close()

	result, err := NewWebParser(WithMaxPageBytes(1024)).Parse(context.Background(), webSource(server.URL))
	require.NoError(t, err)
	assert.Equal(t, true, result.Metadata["truncated"])
	assert.Equal(t, 1024, result.Metadata["content_length"])
	assert.Equal(t, "Big", result.Title)

	result, err = NewWebParser().Parse(context.Background(), webSource(server.URL))
	require.NoError(t, err)
	assert.NotContains(t, result.Metadata, "truncated")
	assert.Equal(t, len(page), result.Metadata["content_length"])
}

func TestWebParser_TitleFallsBackToHost(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html><body><article><p>Untitled body text</p></article></body></html>"))
	}))
	defer server.Close()

	result, err := NewWebParser().Parse(context.Background(), webSource(server.URL))
	require.NoError(t, err)
	assert.Equal(t, strings.TrimPrefix(server.URL, "http://"), result.Title)
}

func TestWebParser_Errors(t *testing.T) {
	t.Run("invalid url", func(t *testing.T) {
		_, err := NewWebParser().Parse(context.Background(), webSource("ftp://example.com/file"))
		require.ErrorIs(t, err, ErrInvalidURL)
		assert.Equal(t, core.KindParsing, core.KindOf(err))
	})

	t.Run("http status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "gone", http.StatusNotFound)
		}))
		defer server.Close()

		_, err := NewWebParser().Parse(context.Background(), webSource(server.URL))
		require.ErrorIs(t, err, ErrInvalidURL)
		assert.Contains(t, err.Error(), "404")
	})

	t.Run("not html", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"a":1}`))
		}))
		defer server.Close()

		_, err := NewWebParser().Parse(context.Background(), webSource(server.URL))
		require.ErrorIs(t, err, ErrUnsupportedPage)
	})

	t.Run("empty page", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			w.Write([]byte("<html><body><nav>menu</nav></body></html>"))
		}))
		defer server.Close()

		_, err := NewWebParser().Parse(context.Background(), webSource(server.URL))
		require.ErrorIs(t, err, ErrNoText)
	})

	t.Run("timeout", func(t *testing.T) {
		done := make(chan struct{})
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-done:
			case <-time.After(2 * time.Second):
			}
		}))
		defer server.Close()
		defer close(done)

		parser := NewWebParser(WithHTTPClient(&http.Client{Timeout: 50 * time.Millisecond}))
		_, err := parser.Parse(context.Background(), webSource(server.URL))
		require.Error(t, err)
		assert.Equal(t, "request timed out", core.Message(err))
	})
}
