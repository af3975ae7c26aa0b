//
// Inkwell is pleased to support the open source community by making aikit available.
//
// Copyright (C) 2026 Inkwell.  All rights reserved.
//
// aikit is licensed under the Apache License Version 2.0.
//
//

// Package stream provides consumers and adapters for response streams:
// per-chunk callbacks, batching, progress, retry, rate limiting, and SSE
// framing for HTTP relays.
package stream

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/inkwell-cms/aikit/gemini"
)

// Chunk is one callback invocation from a stream consumer. A terminal chunk
// has Done set; a failed stream additionally carries Err. Consumers always
// receive exactly one terminal chunk, errors included.
type Chunk struct {
	Text    string
	Thought bool
	Done    bool
	Err     error
}

// Handler receives chunks as a stream is consumed.
type Handler func(Chunk)

// Text drains the stream, invoking the handler for every non-empty text
// fragment and once more with a terminal chunk. It returns the accumulated
// text and the stream error, if any.
func Text(ch <-chan *gemini.Response, onChunk Handler) (string, error) {
	var sb strings.Builder
	for rsp := range ch {
		if err := terminalError(rsp); err != nil {
			onChunk(Chunk{Done: true, Err: err})
			return sb.String(), err
		}
		if rsp.Done {
			break
		}
		if rsp.Text != "" {
			sb.WriteString(rsp.Text)
			onChunk(Chunk{Text: rsp.Text})
		}
	}
	onChunk(Chunk{Done: true})
	return sb.String(), nil
}

// ThinkingResult is the outcome of WithThinking.
type ThinkingResult struct {
	Text     string
	Thoughts []string
}

// WithThinking drains the stream like Text but routes reasoning fragments
// to thought chunks, keeping them out of the accumulated answer.
func WithThinking(ch <-chan *gemini.Response, onChunk Handler) (*ThinkingResult, error) {
	result := &ThinkingResult{}
	var sb strings.Builder
	for rsp := range ch {
		if err := terminalError(rsp); err != nil {
			onChunk(Chunk{Done: true, Err: err})
			return result, err
		}
		if rsp.Done {
			break
		}
		if rsp.Reasoning != "" {
			result.Thoughts = append(result.Thoughts, rsp.Reasoning)
			onChunk(Chunk{Text: rsp.Reasoning, Thought: true})
		}
		if rsp.Text != "" {
			sb.WriteString(rsp.Text)
			onChunk(Chunk{Text: rsp.Text})
		}
	}
	onChunk(Chunk{Done: true})
	result.Text = sb.String()
	return result, nil
}

// Batching groups batchSize text fragments per callback and flushes the
// final partial batch before returning.
func Batching(ch <-chan *gemini.Response, batchSize int, onBatch func([]string)) error {
	if batchSize <= 0 {
		batchSize = 1
	}
	batch := make([]string, 0, batchSize)
	flush := func() {
		if len(batch) > 0 {
			onBatch(batch)
			batch = make([]string, 0, batchSize)
		}
	}
	for rsp := range ch {
		if err := terminalError(rsp); err != nil {
			flush()
			return err
		}
		if rsp.Done {
			break
		}
		if rsp.Text == "" {
			continue
		}
		batch = append(batch, rsp.Text)
		if len(batch) == batchSize {
			flush()
		}
	}
	flush()
	return nil
}

// Progress reports cumulative consumption of a stream.
type Progress struct {
	Chunks  int
	Chars   int
	Percent float64
}

// WithProgress drains the stream, reporting chunk and character counts as
// fragments arrive and Percent 100 on completion.
func WithProgress(ch <-chan *gemini.Response, onProgress func(Progress)) (string, error) {
	var sb strings.Builder
	chunks := 0
	for rsp := range ch {
		if err := terminalError(rsp); err != nil {
			return sb.String(), err
		}
		if rsp.Done {
			break
		}
		if rsp.Text == "" {
			continue
		}
		chunks++
		sb.WriteString(rsp.Text)
		onProgress(Progress{Chunks: chunks, Chars: sb.Len()})
	}
	onProgress(Progress{Chunks: chunks, Chars: sb.Len(), Percent: 100})
	return sb.String(), nil
}

// Collect fully drains the stream and returns its terminal response. Useful
// when completeness matters more than latency.
func Collect(ch <-chan *gemini.Response) (*gemini.Response, error) {
	var final *gemini.Response
	for rsp := range ch {
		final = rsp
	}
	if final == nil {
		return nil, fmt.Errorf("stream: channel closed without a terminal response")
	}
	if err := terminalError(final); err != nil {
		return nil, err
	}
	return final, nil
}

// Factory opens a fresh stream, used by WithRetry to restart from scratch.
type Factory func() <-chan *gemini.Response

// WithRetry consumes a stream built by the factory, restarting from scratch
// on failure with 2^attempt seconds of backoff between attempts. There is
// no resume: the handler sees the retried stream from its beginning. The
// last error is returned once maxRetries restarts are exhausted.
func WithRetry(ctx context.Context, factory Factory, maxRetries int, onChunk Handler) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(1<<attempt) * time.Second
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}
		text, err := Text(factory(), onChunk)
		if err == nil {
			return text, nil
		}
		lastErr = err
	}
	return "", lastErr
}

// RateLimited wraps a handler to enforce a minimum spacing between
// invocations. Chunks arriving too quickly are delayed, never dropped.
func RateLimited(onChunk Handler, minDelay time.Duration) Handler {
	var last time.Time
	return func(c Chunk) {
		if !last.IsZero() {
			if wait := minDelay - time.Since(last); wait > 0 {
				time.Sleep(wait)
			}
		}
		last = time.Now()
		onChunk(c)
	}
}

// terminalError extracts the error of a terminal stream response.
func terminalError(rsp *gemini.Response) error {
	if rsp.Error != nil {
		return rsp.Error
	}
	return nil
}
