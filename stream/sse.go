//
// Inkwell is pleased to support the open source community by making aikit available.
//
// Copyright (C) 2026 Inkwell.  All rights reserved.
//
// aikit is licensed under the Apache License Version 2.0.
//
//

package stream

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// doneSentinel is the literal data payload that closes an SSE stream.
const doneSentinel = "[DONE]"

// Event is one Server-Sent-Events message.
type Event struct {
	// ID is the optional event identifier.
	ID string
	// Name is the optional event type; the wire default is "message".
	Name string
	// Data is JSON-encoded into the data line.
	Data any
}

// Writer frames events onto an HTTP response in text/event-stream format.
type Writer struct {
	w       io.Writer
	flusher http.Flusher
}

// NewWriter creates an SSE writer over w, flushing after every frame when w
// supports it.
func NewWriter(w io.Writer) *Writer {
	sw := &Writer{w: w}
	if f, ok := w.(http.Flusher); ok {
		sw.flusher = f
	}
	return sw
}

// Send frames one event: optional id and event lines, a JSON data line, and
// the blank-line terminator.
func (w *Writer) Send(e *Event) error {
	payload, err := json.Marshal(e.Data)
	if err != nil {
		return fmt.Errorf("stream: encode sse data: %w", err)
	}
	var sb strings.Builder
	if e.ID != "" {
		fmt.Fprintf(&sb, "id: %s\n", e.ID)
	}
	if e.Name != "" {
		fmt.Fprintf(&sb, "event: %s\n", e.Name)
	}
	fmt.Fprintf(&sb, "data: %s\n\n", payload)
	return w.write(sb.String())
}

// SendError frames a failure as an error event carrying {"error": message},
// so clients see the failure in-band instead of a broken connection.
func (w *Writer) SendError(err error) error {
	return w.Send(&Event{Name: "error", Data: map[string]string{"error": err.Error()}})
}

// Done writes the terminal sentinel frame.
func (w *Writer) Done() error {
	return w.write("data: " + doneSentinel + "\n\n")
}

func (w *Writer) write(frame string) error {
	if _, err := io.WriteString(w.w, frame); err != nil {
		return fmt.Errorf("stream: write sse frame: %w", err)
	}
	if w.flusher != nil {
		w.flusher.Flush()
	}
	return nil
}

// Message is one decoded Server-Sent-Events frame.
type Message struct {
	ID   string
	Name string
	Data []byte
}

// Reader decodes text/event-stream payloads frame by frame. Partial frames
// are buffered until the blank-line boundary arrives; the [DONE] sentinel
// terminates the stream as io.EOF rather than surfacing as data.
type Reader struct {
	src io.Reader
	buf []byte
	eof bool
}

// NewReader creates an SSE reader over src.
func NewReader(src io.Reader) *Reader {
	return &Reader{src: src}
}

// Next returns the next complete frame, or io.EOF at end of stream.
func (r *Reader) Next() (*Message, error) {
	for {
		if frame, ok := r.takeFrame(); ok {
			msg := parseFrame(frame)
			if msg == nil {
				continue
			}
			if msg.Name == "" && string(msg.Data) == doneSentinel {
				return nil, io.EOF
			}
			return msg, nil
		}
		if r.eof {
			return nil, io.EOF
		}
		chunk := make([]byte, 4096)
		n, err := r.src.Read(chunk)
		if n > 0 {
			r.buf = append(r.buf, chunk[:n]...)
		}
		if errors.Is(err, io.EOF) {
			r.eof = true
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("stream: read sse: %w", err)
		}
	}
}

// takeFrame pops one newline-pair-delimited frame off the buffer.
func (r *Reader) takeFrame() ([]byte, bool) {
	idx := bytes.Index(r.buf, []byte("\n\n"))
	if idx < 0 {
		return nil, false
	}
	frame := r.buf[:idx]
	r.buf = r.buf[idx+2:]
	return frame, true
}

// parseFrame decodes the id/event/data lines of one frame. Frames without a
// data line (comments, keep-alives) return nil.
func parseFrame(frame []byte) *Message {
	msg := &Message{}
	hasData := false
	var data [][]byte
	for _, line := range bytes.Split(frame, []byte("\n")) {
		switch {
		case bytes.HasPrefix(line, []byte("id:")):
			msg.ID = string(bytes.TrimSpace(line[len("id:"):]))
		case bytes.HasPrefix(line, []byte("event:")):
			msg.Name = string(bytes.TrimSpace(line[len("event:"):]))
		case bytes.HasPrefix(line, []byte("data:")):
			hasData = true
			data = append(data, bytes.TrimSpace(line[len("data:"):]))
		}
	}
	if !hasData {
		return nil
	}
	msg.Data = bytes.Join(data, []byte("\n"))
	return msg
}
