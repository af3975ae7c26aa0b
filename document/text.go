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
	"fmt"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// TextReader reads plain text files as-is.
type TextReader struct{}

// Read implements Reader.
func (*TextReader) Read(name string, r io.Reader) (*Document, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("document: read %s: %w", name, err)
	}
	return &Document{Name: name, Content: string(content)}, nil
}

// MarkdownReader parses markdown and keeps only its text, so prompts and
// embeddings are not polluted with formatting syntax.
type MarkdownReader struct{}

// Read implements Reader.
func (*MarkdownReader) Read(name string, r io.Reader) (*Document, error) {
	source, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("document: read %s: %w", name, err)
	}
	md := goldmark.New()
	root := md.Parser().Parse(text.NewReader(source))

	var sb strings.Builder
	err = ast.Walk(root, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			// Separate block-level nodes with a newline.
			if node.Type() == ast.TypeBlock && sb.Len() > 0 {
				sb.WriteString("\n")
			}
			return ast.WalkContinue, nil
		}
		if t, ok := node.(*ast.Text); ok {
			sb.Write(t.Segment.Value(source))
			if t.SoftLineBreak() || t.HardLineBreak() {
				sb.WriteString("\n")
			}
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, fmt.Errorf("document: parse markdown %s: %w", name, err)
	}
	return &Document{
		Name:    name,
		Content: strings.TrimRight(sb.String(), "\n"),
	}, nil
}
