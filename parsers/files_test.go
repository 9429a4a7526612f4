package parsers

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fumiama/go-docx"
	"github.com/parkho-ai/contentengine/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func writeDOCX(t *testing.T, dir, name string) string {
	t.Helper()
	w := docx.New().WithDefaultTheme()
	w.AddParagraph().AddText("Cell biology overview")
	w.AddParagraph().AddText("Mitochondria produce energy.")
	table := w.AddTable(1, 2, 0, nil)
	table.TableRows[0].TableCells[0].AddParagraph().AddText("Organelle")
	table.TableRows[0].TableCells[1].AddParagraph().AddText("Function")

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	_, err = w.WriteTo(f)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	return path
}

func TestDOCXParser_Parse(t *testing.T) {
	dir := t.TempDir()
	writeDOCX(t, dir, "notes.docx")

	parser := NewDOCXParser(dir, 0)
	result, err := parser.Parse(context.Background(), core.ContentSource{
		ContentType: core.ContentTypeDOCX,
		Reference:   "notes.docx",
	})
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, "notes", result.Title)
	assert.Contains(t, result.Content, "Mitochondria produce energy.")
	assert.Contains(t, result.Content, "Organelle")
	assert.Contains(t, result.Content, "Function")
	assert.Less(t, strings.Index(result.Content, "Cell biology"), strings.Index(result.Content, "Organelle"))
	assert.Equal(t, 1, result.Metadata["table_count"])
	assert.Equal(t, "file", result.Metadata["subtype"])
}

func TestDOCXParser_Errors(t *testing.T) {
	dir := t.TempDir()
	parser := NewDOCXParser(dir, 0)

	_, err := parser.Parse(context.Background(), core.ContentSource{ContentType: core.ContentTypeDOCX, Reference: "missing.docx"})
	require.ErrorIs(t, err, ErrFileNotFound)
	assert.Equal(t, core.KindParsing, core.KindOf(err))

	writeFile(t, dir, "plain.docx", []byte(strings.Repeat("not a zip archive\n", 20)))
	_, err = parser.Parse(context.Background(), core.ContentSource{ContentType: core.ContentTypeDOCX, Reference: "plain.docx"})
	require.ErrorIs(t, err, ErrUnexpectedFileType)

	small := NewDOCXParser(dir, 10)
	writeDOCX(t, dir, "big.docx")
	_, err = small.Parse(context.Background(), core.ContentSource{ContentType: core.ContentTypeDOCX, Reference: "big.docx"})
	require.ErrorIs(t, err, ErrFileTooLarge)
}

func TestPDFParser_Errors(t *testing.T) {
	dir := t.TempDir()
	parser := NewPDFParser(dir, 0)

	t.Run("not found", func(t *testing.T) {
		_, err := parser.Parse(context.Background(), core.ContentSource{ContentType: core.ContentTypePDF, Reference: "missing.pdf"})
		require.ErrorIs(t, err, ErrFileNotFound)
	})

	t.Run("directory", func(t *testing.T) {
		require.NoError(t, os.Mkdir(filepath.Join(dir, "folder.pdf"), 0o755))
		_, err := parser.Parse(context.Background(), core.ContentSource{ContentType: core.ContentTypePDF, Reference: "folder.pdf"})
		require.ErrorIs(t, err, ErrFileNotFound)
	})

	t.Run("too large", func(t *testing.T) {
		path := writeFile(t, dir, "big.pdf", append([]byte("%PDF-1.4\n"), make([]byte, 2048)...))
		_, err := NewPDFParser("", 1024).Parse(context.Background(), core.ContentSource{ContentType: core.ContentTypePDF, Reference: path})
		require.ErrorIs(t, err, ErrFileTooLarge)
	})

	t.Run("wrong type", func(t *testing.T) {
		writeFile(t, dir, "notes.pdf", []byte("just some text, not a PDF"))
		_, err := parser.Parse(context.Background(), core.ContentSource{ContentType: core.ContentTypePDF, Reference: "notes.pdf"})
		require.ErrorIs(t, err, ErrUnexpectedFileType)
	})

	t.Run("malformed", func(t *testing.T) {
		writeFile(t, dir, "broken.pdf", []byte("%PDF-1.4\nthis is not a real document body\n%%EOF\n"))
		result, err := parser.Parse(context.Background(), core.ContentSource{ContentType: core.ContentTypePDF, Reference: "broken.pdf"})
		require.Error(t, err)
		assert.False(t, result.Success)
		assert.Equal(t, core.KindParsing, core.KindOf(err))
	})
}

func TestDetectContentType(t *testing.T) {
	dir := t.TempDir()

	pdfPath := writeFile(t, dir, "a.bin", []byte("%PDF-1.4\n%%EOF\n"))
	assert.Equal(t, core.ContentTypePDF, DetectContentType(pdfPath))

	htmlPath := writeFile(t, dir, "b.bin", []byte("<!DOCTYPE html><html><body>hi</body></html>"))
	assert.Equal(t, core.ContentTypeWebPage, DetectContentType(htmlPath))

	txtPath := writeFile(t, dir, "d.txt", []byte("plain text"))
	assert.Equal(t, core.ContentType(""), DetectContentType(txtPath))

	assert.Equal(t, core.ContentType(""), DetectContentType(filepath.Join(dir, "missing")))
}

func TestResolvePath(t *testing.T) {
	assert.Equal(t, "file.pdf", resolvePath("", "file.pdf"))
	assert.Equal(t, filepath.Join("uploads", "file.pdf"), resolvePath("uploads", " file.pdf "))
	assert.Equal(t, "/abs/file.pdf", resolvePath("uploads", "/abs/file.pdf"))
}
