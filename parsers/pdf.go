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
	"fmt"
	"log/slog"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/parkho-ai/contentengine/core"
)

// DefaultMaxPDFSize is the largest PDF accepted.
const DefaultMaxPDFSize int64 = 10 << 20

// PDFParser extracts page text from local PDF files.
type PDFParser struct {
	baseDir string
	maxSize int64
	logger  *slog.Logger
}

// NewPDFParser creates a PDF parser. Relative references are resolved
// against baseDir. A non-positive maxSize uses DefaultMaxPDFSize.
func NewPDFParser(baseDir string, maxSize int64) *PDFParser {
	if maxSize <= 0 {
		maxSize = DefaultMaxPDFSize
	}
	return &PDFParser{
		baseDir: baseDir,
		maxSize: maxSize,
		logger:  slog.Default().With("component", "pdf-parser"),
	}
}

// ContentType implements parsing.Parser.
func (p *PDFParser) ContentType() core.ContentType {
	return core.ContentTypePDF
}

// Parse reads every page of the PDF, prefixing each with a page marker.
func (p *PDFParser) Parse(ctx context.Context, source core.ContentSource) (result core.ParseResult, err error) {
	path := resolvePath(p.baseDir, source.Reference)
	info, err := statFile(path, p.maxSize)
	if err != nil {
		return core.ParseResult{}, err
	}
	if _, err := checkMIME(path, "application/pdf"); err != nil {
		return core.ParseResult{}, err
	}

	// The pdf package panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			err = core.ParsingError(fmt.Sprintf("failed to parse PDF: %v", r), nil)
		}
	}()

	f, reader, err := pdf.Open(path)
	if err != nil {
		return core.ParseResult{}, core.ParsingError("failed to open PDF", err)
	}
	defer f.Close()

	pages := reader.NumPage()
	var parts []string
	for i := 1; i <= pages; i++ {
		if err := ctx.Err(); err != nil {
			return core.ParseResult{}, err
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			p.logger.Debug("skipping unreadable page", "page", i, "err", err)
			continue
		}
		if text = strings.TrimSpace(text); text != "" {
			parts = append(parts, fmt.Sprintf("--- Page %d ---\n%s", i, text))
		}
	}

	if len(parts) == 0 {
		return core.ParseResult{}, core.ParsingError("no text content found in PDF", ErrNoText)
	}

	metadata := map[string]any{
		"file_name":  info.Name(),
		"file_size":  info.Size(),
		"page_count": pages,
		"subtype":    "file",
	}
	docInfo := reader.Trailer().Key("Info")
	for key, name := range map[string]string{
		"Title":    "title",
		"Author":   "author",
		"Creator":  "creator",
		"Producer": "producer",
		"Subject":  "subject",
	} {
		if v := strings.TrimSpace(docInfo.Key(key).Text()); v != "" {
			metadata[name] = v
		}
	}

	title, _ := metadata["title"].(string)
	if title == "" {
		title = titleFromPath(path)
	}

	p.logger.Debug("parsed PDF", "file", info.Name(), "pages", pages, "extracted", len(parts))

	return core.ParseResult{
		Success:  true,
		Content:  strings.Join(parts, "\n\n"),
		Title:    title,
		Metadata: metadata,
	}, nil
}
