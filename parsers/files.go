package parsers

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/parkho-ai/contentengine/core"
)

// resolvePath maps a file reference onto a local path. Relative references
// are resolved against baseDir when one is set.
func resolvePath(baseDir, ref string) string {
	ref = strings.TrimSpace(ref)
	if baseDir == "" || filepath.IsAbs(ref) {
		return ref
	}
	return filepath.Join(baseDir, ref)
}

// statFile checks that path is a regular file no larger than maxSize.
func statFile(path string, maxSize int64) (os.FileInfo, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, core.ParsingError(fmt.Sprintf("file not found: %s", filepath.Base(path)), ErrFileNotFound)
		}
		return nil, core.ParsingError("cannot access file", err)
	}
	if info.IsDir() {
		return nil, core.ParsingError(fmt.Sprintf("%s is a directory", filepath.Base(path)), ErrFileNotFound)
	}
	if maxSize > 0 && info.Size() > maxSize {
		return nil, core.ParsingError(
			fmt.Sprintf("file too large: %d bytes (max: %d)", info.Size(), maxSize),
			ErrFileTooLarge)
	}
	return info, nil
}

// checkMIME sniffs path and requires it to match one of want.
// Detection follows mimetype's hierarchy, so a DOCX also matches
// application/zip.
func checkMIME(path string, want ...string) (string, error) {
	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return "", core.ParsingError("cannot read file", err)
	}
	for _, w := range want {
		if mt.Is(w) {
			return mt.String(), nil
		}
	}
	for p := mt.Parent(); p != nil; p = p.Parent() {
		for _, w := range want {
			if p.Is(w) {
				return mt.String(), nil
			}
		}
	}
	return "", core.ParsingError(
		fmt.Sprintf("expected %s, found %s", strings.Join(want, " or "), mt.String()),
		ErrUnexpectedFileType)
}

// DetectContentType guesses the content type of a local file from its
// contents. It returns "" when the file is none of the supported document
// types.
func DetectContentType(path string) core.ContentType {
	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return ""
	}
	switch {
	case mt.Is("application/pdf"):
		return core.ContentTypePDF
	case mt.Is("application/vnd.openxmlformats-officedocument.wordprocessingml.document"):
		return core.ContentTypeDOCX
	case mt.Is("text/html"):
		return core.ContentTypeWebPage
	case strings.HasPrefix(mt.String(), "video/"), strings.HasPrefix(mt.String(), "audio/"):
		return core.ContentTypeVideo
	}
	return ""
}

func titleFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
