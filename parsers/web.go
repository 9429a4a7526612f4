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
	"net/http"
	"net/url"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	"github.com/gabriel-vasile/mimetype"
	"github.com/parkho-ai/contentengine/core"
)

const (
	// DefaultWebTimeout bounds a single page fetch.
	DefaultWebTimeout = 30 * time.Second

	// DefaultMaxWebChars caps the extracted text of one page.
	DefaultMaxWebChars = 1_000_000

	defaultUserAgent = "Mozilla/5.0 (compatible; contentengine/1.0)"
	truncatedSuffix  = "... [Content truncated]"

	// DefaultMaxPageBytes caps the HTML read from one response.
	DefaultMaxPageBytes int64 = 20 << 20
)

// mainSelectors are tried in order to find the primary content of a page.
var mainSelectors = []string{
	"main",
	"article",
	".content",
	".main-content",
	"#content",
	"#main",
	".post-content",
	".entry-content",
}

// WebParser fetches an HTML page and converts its main content to Markdown.
type WebParser struct {
	client    *http.Client
	maxChars  int
	maxBytes  int64
	userAgent string
	logger    *slog.Logger
}

// WebOption configures a WebParser.
type WebOption func(*WebParser)

// WithHTTPClient sets the HTTP client used for fetching.
func WithHTTPClient(client *http.Client) WebOption {
	return func(p *WebParser) {
		if client != nil {
			p.client = client
		}
	}
}

// WithMaxChars sets the extracted text cap.
func WithMaxChars(n int) WebOption {
	return func(p *WebParser) {
		if n > 0 {
			p.maxChars = n
		}
	}
}

// WithMaxPageBytes sets how much of a response body is read.
func WithMaxPageBytes(n int64) WebOption {
	return func(p *WebParser) {
		if n > 0 {
			p.maxBytes = n
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) WebOption {
	return func(p *WebParser) {
		if ua != "" {
			p.userAgent = ua
		}
	}
}

// NewWebParser creates a web page parser.
func NewWebParser(opts ...WebOption) *WebParser {
	p := &WebParser{
		client:    &http.Client{Timeout: DefaultWebTimeout},
		maxChars:  DefaultMaxWebChars,
		maxBytes:  DefaultMaxPageBytes,
		userAgent: defaultUserAgent,
		logger:    slog.Default().With("component", "web-parser"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ContentType implements parsing.Parser.
func (p *WebParser) ContentType() core.ContentType {
	return core.ContentTypeWebPage
}

// Parse fetches source.Reference and extracts its readable text.
func (p *WebParser) Parse(ctx context.Context, source core.ContentSource) (core.ParseResult, error) {
	pageURL, err := parseHTTPURL(source.Reference)
	if err != nil {
		return core.ParseResult{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL.String(), http.NoBody)
	if err != nil {
		return core.ParseResult{}, core.ParsingError("failed to create request", err)
	}
	req.Header.Set("User-Agent", p.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := p.client.Do(req)
	if err != nil {
		var urlErr *url.Error
		if errors.As(err, &urlErr) && urlErr.Timeout() {
			return core.ParseResult{}, core.ParsingError("request timed out", err)
		}
		return core.ParseResult{}, core.ParsingError("failed to fetch URL", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return core.ParseResult{}, core.ParsingError(
			fmt.Sprintf("failed to fetch URL: status %d", resp.StatusCode), ErrInvalidURL)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, p.maxBytes+1))
	if err != nil {
		return core.ParseResult{}, core.ParsingError("failed to read page", err)
	}
	bodyTruncated := int64(len(body)) > p.maxBytes
	if bodyTruncated {
		body = body[:p.maxBytes]
		p.logger.Warn("page body exceeds read limit", "url", pageURL.String(), "limit", p.maxBytes)
	}

	contentType := resp.Header.Get("Content-Type")
	if !isHTML(contentType, body) {
		return core.ParseResult{}, core.ParsingError(
			fmt.Sprintf("unsupported content type: %s", contentType), ErrUnsupportedPage)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return core.ParseResult{}, core.ParsingError("failed to parse HTML", err)
	}

	metadata := extractPageMetadata(doc, pageURL)
	metadata["status_code"] = resp.StatusCode
	metadata["content_type"] = contentType
	metadata["content_length"] = len(body)
	if bodyTruncated {
		metadata["truncated"] = true
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		title = pageURL.Host
	}

	doc.Find("script, style, nav, header, footer, noscript, iframe").Remove()

	converter := md.NewConverter(pageURL.Host, true, nil)
	content := strings.TrimSpace(converter.Convert(mainContent(doc)))
	if content == "" {
		return core.ParseResult{}, core.ParsingError("no readable content found on webpage", ErrNoText)
	}

	if runes := []rune(content); len(runes) > p.maxChars {
		content = string(runes[:p.maxChars]) + truncatedSuffix
		metadata["truncated"] = true
	}

	p.logger.Debug("parsed web page", "url", pageURL.String(), "chars", len(content))

	return core.ParseResult{
		Success:  true,
		Content:  content,
		Title:    title,
		Metadata: metadata,
	}, nil
}

func parseHTTPURL(ref string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(ref))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, core.ParsingError(fmt.Sprintf("invalid URL: %s", ref), ErrInvalidURL)
	}
	return u, nil
}

func isHTML(contentType string, body []byte) bool {
	if strings.Contains(strings.ToLower(contentType), "text/html") ||
		strings.Contains(strings.ToLower(contentType), "application/xhtml") {
		return true
	}
	if contentType == "" {
		return mimetype.Detect(body).Is("text/html")
	}
	return false
}

// mainContent returns the first matching main-content element, or body.
func mainContent(doc *goquery.Document) *goquery.Selection {
	for _, selector := range mainSelectors {
		if sel := doc.Find(selector).First(); sel.Length() > 0 {
			return sel
		}
	}
	if body := doc.Find("body"); body.Length() > 0 {
		return body
	}
	return doc.Selection
}

func extractPageMetadata(doc *goquery.Document, pageURL *url.URL) map[string]any {
	metadata := map[string]any{
		"url":       pageURL.String(),
		"domain":    pageURL.Host,
		"subtype":   "url",
		"extracted": time.Now().UTC().Format(time.RFC3339),
	}

	named := map[string]string{
		"description": "description",
		"author":      "author",
		"keywords":    "keywords",
	}
	for name, key := range named {
		if v, ok := doc.Find(fmt.Sprintf("meta[name='%s']", name)).Attr("content"); ok && v != "" {
			metadata[key] = strings.TrimSpace(v)
		}
	}

	og := map[string]string{
		"og:title":       "og_title",
		"og:description": "og_description",
		"og:site_name":   "og_site_name",
	}
	for property, key := range og {
		if v, ok := doc.Find(fmt.Sprintf("meta[property='%s']", property)).Attr("content"); ok && v != "" {
			metadata[key] = strings.TrimSpace(v)
		}
	}
	return metadata
}
