//
// Inkwell is pleased to support the open source community by making aikit available.
//
// Copyright (C) 2026 Inkwell.  All rights reserved.
//
// aikit is licensed under the Apache License Version 2.0.
//
//

package document

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDFReader extracts the plain text of every page.
type PDFReader struct{}

// Read implements Reader.
func (*PDFReader) Read(name string, r io.Reader) (*Document, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("document: read %s: %w", name, err)
	}
	pdfReader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("document: parse pdf %s: %w", name, err)
	}

	var sb strings.Builder
	totalPages := pdfReader.NumPage()
	for pageIndex := 1; pageIndex <= totalPages; pageIndex++ {
		page := pdfReader.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil || text == "" {
			continue
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	}
	return &Document{
		Name:     name,
		Content:  sb.String(),
		Metadata: map[string]any{"pages": totalPages},
	}, nil
}
