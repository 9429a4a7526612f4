package parsers

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/fumiama/go-docx"
	"github.com/parkho-ai/contentengine/core"
)

// DefaultMaxDOCXSize is the largest DOCX accepted.
const DefaultMaxDOCXSize int64 = 5 << 20

// DOCXParser extracts paragraphs and table cells from local DOCX files.
type DOCXParser struct {
	baseDir string
	maxSize int64
	logger  *slog.Logger
}

// NewDOCXParser creates a DOCX parser. Relative references are resolved
// against baseDir. A non-positive maxSize uses DefaultMaxDOCXSize.
func NewDOCXParser(baseDir string, maxSize int64) *DOCXParser {
	if maxSize <= 0 {
		maxSize = DefaultMaxDOCXSize
	}
	return &DOCXParser{
		baseDir: baseDir,
		maxSize: maxSize,
		logger:  slog.Default().With("component", "docx-parser"),
	}
}

// ContentType implements parsing.Parser.
func (p *DOCXParser) ContentType() core.ContentType {
	return core.ContentTypeDOCX
}

// Parse extracts body paragraphs followed by table cell text.
func (p *DOCXParser) Parse(ctx context.Context, source core.ContentSource) (result core.ParseResult, err error) {
	path := resolvePath(p.baseDir, source.Reference)
	info, err := statFile(path, p.maxSize)
	if err != nil {
		return core.ParseResult{}, err
	}
	if _, err := checkMIME(path, "application/vnd.openxmlformats-officedocument.wordprocessingml.document", "application/zip"); err != nil {
		return core.ParseResult{}, err
	}

	f, err := os.Open(path)
	if err != nil {
		return core.ParseResult{}, core.ParsingError("failed to open DOCX", err)
	}
	defer f.Close()

	defer func() {
		if r := recover(); r != nil {
			err = core.ParsingError(fmt.Sprintf("failed to parse DOCX: %v", r), nil)
		}
	}()

	doc, err := docx.Parse(f, info.Size())
	if err != nil {
		return core.ParseResult{}, core.ParsingError("failed to parse DOCX", err)
	}

	var paragraphs, cells []string
	tables := 0
	for _, item := range doc.Document.Body.Items {
		switch o := item.(type) {
		case *docx.Paragraph:
			if text := strings.TrimSpace(o.String()); text != "" {
				paragraphs = append(paragraphs, text)
			}
		case *docx.Table:
			tables++
			cells = append(cells, tableCells(o)...)
		}
	}

	parts := append(paragraphs, cells...)
	if len(parts) == 0 {
		return core.ParseResult{}, core.ParsingError("no text content found in DOCX", ErrNoText)
	}

	title := titleFromPath(path)
	p.logger.Debug("parsed DOCX", "file", info.Name(), "paragraphs", len(paragraphs), "tables", tables)

	return core.ParseResult{
		Success: true,
		Content: strings.Join(parts, "\n\n"),
		Title:   title,
		Metadata: map[string]any{
			"file_name":       info.Name(),
			"file_size":       info.Size(),
			"paragraph_count": len(paragraphs),
			"table_count":     tables,
			"title":           title,
			"subtype":         "file",
		},
	}, nil
}

func tableCells(t *docx.Table) []string {
	var out []string
	for _, row := range t.TableRows {
		for _, cell := range row.TableCells {
			for _, para := range cell.Paragraphs {
				if text := strings.TrimSpace(para.String()); text != "" {
					out = append(out, text)
				}
			}
			for _, nested := range cell.Tables {
				out = append(out, tableCells(nested)...)
			}
		}
	}
	return out
}
