package parsing

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/parkho-ai/contentengine/core"
)

// UntitledContent is the combined title when no source has a title.
const UntitledContent = "Untitled Content"

const titleSeparator = " | "

// Combine merges the successful results, in source order, into one
// document. Each chunk is prefixed with a marker naming the source. Failed
// results are logged and skipped. At least one success is required.
func Combine(results []core.ParseResult) (core.CombinedDocument, error) {
	logger := slog.Default().With("component", "parsing-coordinator")

	ordered := slices.Clone(results)
	slices.SortStableFunc(ordered, func(a, b core.ParseResult) int {
		return a.SourceIndex - b.SourceIndex
	})

	var chunks []string
	var titles []string
	var sources []core.SourceMetadata

	for _, r := range ordered {
		if !r.Success || r.Content == "" {
			logger.Warn("excluding failed source", "index", r.SourceIndex, "type", r.ContentType, "error", r.Error)
			continue
		}

		n := r.SourceIndex + 1
		title := r.Title
		if title == "" {
			title = fmt.Sprintf("Source %d", n)
		} else {
			titles = append(titles, r.Title)
		}

		var marker string
		if r.Collection {
			marker = fmt.Sprintf("=== Collection Source %d: %s ===", n, title)
		} else {
			marker = fmt.Sprintf("=== Source %d (%s): %s ===", n, r.ContentType, title)
		}
		chunks = append(chunks, marker+"\n"+r.Content)

		sources = append(sources, core.SourceMetadata{
			Index:       r.SourceIndex,
			ContentType: r.ContentType,
			Subtype:     Subtype(r),
			Title:       r.Title,
			Metadata:    r.Metadata,
		})
	}

	if len(chunks) == 0 {
		return core.CombinedDocument{}, core.ParsingError(
			"no content could be extracted", core.ErrNoContentExtracted)
	}

	title := UntitledContent
	if len(titles) > 0 {
		title = strings.Join(titles, titleSeparator)
	}

	return core.CombinedDocument{
		Text:    strings.Join(chunks, "\n\n"),
		Title:   title,
		Sources: sources,
	}, nil
}

// Subtype describes where a result came from. Parsers may set it
// explicitly with a "subtype" metadata entry.
func Subtype(r core.ParseResult) string {
	if s, ok := r.Metadata["subtype"].(string); ok && s != "" {
		return s
	}
	if r.Collection {
		return "collection"
	}
	switch r.ContentType {
	case core.ContentTypeVideo:
		return "youtube"
	case core.ContentTypeWebPage:
		return "url"
	}
	return "file"
}

// SuccessCount returns the number of successful results.
func SuccessCount(results []core.ParseResult) int {
	n := 0
	for _, r := range results {
		if r.Success {
			n++
		}
	}
	return n
}
