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
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextReader(t *testing.T) {
	doc, err := (&TextReader{}).Read("notes", strings.NewReader("plain content\n"))
	require.NoError(t, err)
	assert.Equal(t, "notes", doc.Name)
	assert.Equal(t, "plain content\n", doc.Content)
}

func TestMarkdownReaderStripsFormatting(t *testing.T) {
	src := "# Title\n\nSome **bold** and *italic* text.\n\n- first\n- second\n"
	doc, err := (&MarkdownReader{}).Read("post", strings.NewReader(src))
	require.NoError(t, err)

	assert.Contains(t, doc.Content, "Title")
	assert.Contains(t, doc.Content, "Some bold and italic text.")
	assert.Contains(t, doc.Content, "first")
	assert.Contains(t, doc.Content, "second")
	assert.NotContains(t, doc.Content, "#")
	assert.NotContains(t, doc.Content, "**")
}

func TestPDFReaderRejectsGarbage(t *testing.T) {
	_, err := (&PDFReader{}).Read("broken", strings.NewReader("not a pdf"))
	require.Error(t, err)
}

func docxArchive(t *testing.T, documentXML string) *bytes.Reader {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	part, err := w.Create("word/document.xml")
	require.NoError(t, err)
	_, err = part.Write([]byte(documentXML))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return bytes.NewReader(buf.Bytes())
}

func TestDocxReader(t *testing.T) {
	const documentXML = `<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>First paragraph.</w:t></w:r></w:p>
    <w:p><w:r><w:t>Second </w:t></w:r><w:r><w:t>paragraph.</w:t></w:r></w:p>
  </w:body>
</w:document>`
	doc, err := (&DocxReader{}).Read("report", docxArchive(t, documentXML))
	require.NoError(t, err)
	assert.Equal(t, "First paragraph.\nSecond paragraph.", doc.Content)
}

func TestDocxReaderMissingPart(t *testing.T) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	require.NoError(t, w.Close())

	_, err := (&DocxReader{}).Read("empty", bytes.NewReader(buf.Bytes()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no document part")
}

func TestReadFileDispatchesByExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "draft.md")
	require.NoError(t, os.WriteFile(path, []byte("## Heading\n\nbody text\n"), 0o600))

	doc, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "draft", doc.Name)
	assert.Contains(t, doc.Content, "Heading")
	assert.Contains(t, doc.Content, "body text")
}

func TestReadFileUnsupportedExtension(t *testing.T) {
	_, err := ReadFile("slides.pptx")
	var uerr *UnsupportedExtensionError
	require.ErrorAs(t, err, &uerr)
	assert.Equal(t, ".pptx", uerr.Ext)
	assert.Contains(t, uerr.Supported, ".md")
	assert.Contains(t, uerr.Supported, ".pdf")
}
