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
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// DocxReader extracts paragraph text from the word/document.xml part of a
// DOCX archive.
type DocxReader struct{}

// Read implements Reader.
func (*DocxReader) Read(name string, r io.Reader) (*Document, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("document: read %s: %w", name, err)
	}
	archive, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("document: open docx %s: %w", name, err)
	}
	part, err := archive.Open("word/document.xml")
	if err != nil {
		return nil, fmt.Errorf("document: docx %s has no document part: %w", name, err)
	}
	defer part.Close()

	text, err := extractDocxText(part)
	if err != nil {
		return nil, fmt.Errorf("document: parse docx %s: %w", name, err)
	}
	return &Document{Name: name, Content: text}, nil
}

// extractDocxText walks the WordprocessingML token stream, collecting the
// character data of w:t elements and terminating lines at paragraph ends.
func extractDocxText(r io.Reader) (string, error) {
	decoder := xml.NewDecoder(r)
	var sb strings.Builder
	inText := false
	for {
		token, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", err
		}
		switch tok := token.(type) {
		case xml.StartElement:
			if tok.Name.Local == "t" {
				inText = true
			}
		case xml.EndElement:
			switch tok.Name.Local {
			case "t":
				inText = false
			case "p":
				sb.WriteString("\n")
			}
		case xml.CharData:
			if inText {
				sb.Write(tok)
			}
		}
	}
	return strings.TrimRight(sb.String(), "\n"), nil
}
