//
// Inkwell is pleased to support the open source community by making aikit available.
//
// Copyright (C) 2026 Inkwell.  All rights reserved.
//
// aikit is licensed under the Apache License Version 2.0.
//
//

// Package document loads text content out of the file formats authors attach
// to posts, so it can be cached, embedded, or summarized.
package document

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Document is one loaded file, reduced to plain text.
type Document struct {
	// Name identifies the document, usually the file name without extension.
	Name string
	// Content is the extracted plain text.
	Content string
	// Metadata carries format-specific details such as the page count.
	Metadata map[string]any
}

// Reader extracts a document from a raw byte stream.
type Reader interface {
	// Read extracts the document named name from r.
	Read(name string, r io.Reader) (*Document, error)
}

// readers maps file extensions to their reader.
var readers = map[string]Reader{
	".txt":  &TextReader{},
	".md":   &MarkdownReader{},
	".pdf":  &PDFReader{},
	".docx": &DocxReader{},
}

// UnsupportedExtensionError reports a file extension no reader handles.
type UnsupportedExtensionError struct {
	Ext       string
	Supported []string
}

func (e *UnsupportedExtensionError) Error() string {
	return fmt.Sprintf("document: unsupported extension %q (supported: %s)",
		e.Ext, strings.Join(e.Supported, ", "))
}

// SupportedExtensions returns the extensions ReadFile accepts, sorted.
func SupportedExtensions() []string {
	exts := make([]string, 0, len(readers))
	for ext := range readers {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// ReadFile loads the file at path with the reader matching its extension.
func ReadFile(path string) (*Document, error) {
	ext := strings.ToLower(filepath.Ext(path))
	r, ok := readers[ext]
	if !ok {
		return nil, &UnsupportedExtensionError{Ext: ext, Supported: SupportedExtensions()}
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("document: open %s: %w", path, err)
	}
	defer f.Close()
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return r.Read(name, f)
}
