package collection

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_GetContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/retrieve", r.URL.Path)
		assert.Equal(t, "user-7", r.Header.Get("x-user-id"))

		var req retrieveRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Cells intro", req.Query)
		assert.Equal(t, 5, req.TopK)
		assert.Equal(t, "bio-101", req.Filters["collection_id"])

		json.NewEncoder(w).Encode(retrieveResponse{
			Success: true,
			Results: []Chunk{
				{ID: "c1", Text: "Cells are the unit of life."},
				{ID: "c2", Text: "   "},
				{ID: "c3", Text: "Mitochondria make ATP."},
			},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL+"/", WithUserID("user-7"))
	text, err := client.GetContext(context.Background(), "bio-101", "Cells intro")
	require.NoError(t, err)
	assert.Equal(t, "Cells are the unit of life.\n\nMitochondria make ATP.", text)
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "overloaded", http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode(retrieveResponse{Success: true, Results: []Chunk{{Text: "ok"}}})
	}))
	defer server.Close()

	client := NewClient(server.URL, WithRetry(3, time.Millisecond))
	chunks, err := client.Retrieve(context.Background(), "c", "q")
	require.NoError(t, err)
	assert.Len(t, chunks, 1)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "unknown collection", http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(server.URL, WithRetry(3, time.Millisecond))
	_, err := client.GetContext(context.Background(), "missing", "q")
	require.ErrorIs(t, err, ErrRequestFailed)
	assert.Contains(t, err.Error(), "404")
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_NotConfigured(t *testing.T) {
	_, err := NewClient("").GetContext(context.Background(), "c", "q")
	require.ErrorIs(t, err, ErrNotConfigured)
}

func TestBuildQuery(t *testing.T) {
	assert.Equal(t, "Title body", BuildQuery("Title", "  body  "))

	long := strings.Repeat("x", 800)
	q := BuildQuery("T", long)
	assert.Equal(t, "T "+strings.Repeat("x", 500), q)

	assert.Equal(t, "body", BuildQuery("", "body"))
}
