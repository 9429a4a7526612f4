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

package collection

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultTopK is the number of chunks requested per query.
	DefaultTopK = 5

	// DefaultTimeout bounds one retrieval request.
	DefaultTimeout = 120 * time.Second

	defaultMaxAttempts = 3
	defaultBaseDelay   = 500 * time.Millisecond
	maxQueryBodyChars  = 500
)

// Provider returns contextual text for a named collection.
type Provider interface {
	GetContext(ctx context.Context, collectionID, query string) (string, error)
}

// Chunk is one retrieved passage.
type Chunk struct {
	ID        string  `json:"chunk_id"`
	Text      string  `json:"chunk_text"`
	Relevance float64 `json:"relevance_score"`
	FileID    string  `json:"file_id"`
}

type retrieveRequest struct {
	Query          string         `json:"query"`
	TopK           int            `json:"top_k"`
	IncludeSources bool           `json:"include_sources"`
	Filters        map[string]any `json:"filters,omitempty"`
}

type retrieveResponse struct {
	Success bool    `json:"success"`
	Results []Chunk `json:"results"`
}

// Client retrieves collection context from an HTTP retrieval service.
type Client struct {
	baseURL     string
	userID      string
	topK        int
	maxAttempts int
	baseDelay   time.Duration
	http        *http.Client
	logger      *slog.Logger
}

var _ Provider = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		if c != nil {
			cl.http = c
		}
	}
}

// WithUserID sets the x-user-id header sent with each request.
func WithUserID(id string) Option {
	return func(c *Client) {
		c.userID = id
	}
}

// WithTopK sets the number of chunks requested.
func WithTopK(k int) Option {
	return func(c *Client) {
		if k > 0 {
			c.topK = k
		}
	}
}

// WithRetry sets the retry policy.
func WithRetry(maxAttempts int, baseDelay time.Duration) Option {
	return func(c *Client) {
		c.maxAttempts = maxAttempts
		c.baseDelay = baseDelay
	}
}

// NewClient creates a retrieval client for baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		topK:        DefaultTopK,
		maxAttempts: defaultMaxAttempts,
		baseDelay:   defaultBaseDelay,
		http:        &http.Client{Timeout: DefaultTimeout},
		logger:      slog.Default().With("component", "collection-client"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Retrieve returns the chunks most relevant to query within collectionID.
func (c *Client) Retrieve(ctx context.Context, collectionID, query string) ([]Chunk, error) {
	if c.baseURL == "" {
		return nil, ErrNotConfigured
	}

	body, err := json.Marshal(retrieveRequest{
		Query:          query,
		TopK:           c.topK,
		IncludeSources: true,
		Filters:        map[string]any{"collection_id": collectionID},
	})
	if err != nil {
		return nil, err
	}

	var resp retrieveResponse
	err = RetryWithBackoff(ctx, func() error {
		return c.post(ctx, "/retrieve", body, &resp)
	}, c.maxAttempts, c.baseDelay)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("retrieved collection context", "collection_id", collectionID, "chunks", len(resp.Results))
	return resp.Results, nil
}

// GetContext joins the retrieved chunks into one block of text.
func (c *Client) GetContext(ctx context.Context, collectionID, query string) (string, error) {
	chunks, err := c.Retrieve(ctx, collectionID, query)
	if err != nil {
		return "", err
	}
	texts := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		if t := strings.TrimSpace(chunk.Text); t != "" {
			texts = append(texts, t)
		}
	}
	return strings.Join(texts, "\n\n"), nil
}

func (c *Client) post(ctx context.Context, path string, body []byte, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return Permanent(err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.userID != "" {
		req.Header.Set("x-user-id", c.userID)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		err := fmt.Errorf("%w: status %d: %s", ErrRequestFailed, resp.StatusCode, strings.TrimSpace(string(snippet)))
		if resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			return Permanent(err)
		}
		return err
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return Permanent(fmt.Errorf("%w: decoding response: %v", ErrRequestFailed, err))
	}
	return nil
}

// BuildQuery forms the retrieval query from a document title and the start
// of its text.
func BuildQuery(title, text string) string {
	text = strings.TrimSpace(text)
	if r := []rune(text); len(r) > maxQueryBodyChars {
		text = string(r[:maxQueryBodyChars])
	}
	return strings.TrimSpace(title + " " + text)
}
