// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package source reads a document container into its ordered paragraph
// strings. Word (.docx) containers and plain text (.txt, .md) are
// supported. Any failure to open or decode a container is reported as
// ErrContainerUnreadable; partial content is never returned.
package source

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrContainerUnreadable is the single fatal error of a parse run: the
// document could not be opened or decoded.
var ErrContainerUnreadable = errors.New("container unreadable")

// zipMagic starts every .docx (and any other zip) file.
var zipMagic = []byte("PK\x03\x04")

// Paragraphs reads the file at path and returns its paragraphs in
// document order. The path "-" reads from stdin.
func Paragraphs(path string) ([]string, error) {
	if path == "-" {
		return ParagraphsFrom("stdin", os.Stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrContainerUnreadable, err)
	}
	defer f.Close()
	return ParagraphsFrom(path, f)
}

// ParagraphsFrom reads a container from r. name is used for the format
// decision (by extension) and in error messages; content that starts with
// the zip signature is always treated as .docx.
func ParagraphsFrom(name string, r io.Reader) ([]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrContainerUnreadable, name, err)
	}

	ext := strings.ToLower(filepath.Ext(name))
	switch {
	case bytes.HasPrefix(data, zipMagic) || ext == ".docx":
		paras, err := docxParagraphs(data)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrContainerUnreadable, name, err)
		}
		return paras, nil
	case ext == ".txt" || ext == ".md" || ext == "" || name == "stdin":
		return textParagraphs(data), nil
	default:
		return nil, fmt.Errorf("%w: %s: unsupported format %q", ErrContainerUnreadable, name, ext)
	}
}

// Text joins paragraphs with newlines, the form the segmenter consumes.
func Text(paragraphs []string) string {
	return strings.Join(paragraphs, "\n")
}

// ReadText is Paragraphs followed by Text.
func ReadText(path string) (string, error) {
	paras, err := Paragraphs(path)
	if err != nil {
		return "", err
	}
	return Text(paras), nil
}

// textParagraphs splits plain text into lines, dropping a UTF-8 BOM.
// CRLF and lone CR line endings count as newlines.
func textParagraphs(data []byte) []string {
	s := strings.TrimPrefix(string(data), "\uFEFF")
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = strings.TrimSuffix(s, "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}
