//
// Inkwell is pleased to support the open source community by making aikit available.
//
// Copyright (C) 2026 Inkwell.  All rights reserved.
//
// aikit is licensed under the Apache License Version 2.0.
//
//

package gemini

import (
	"strings"
	"time"

	"google.golang.org/genai"
)

// Error type constants for ResponseError.
const (
	ErrorTypeAPIError    = "api_error"
	ErrorTypeStreamError = "stream_error"
)

// ResponseError carries a provider failure surfaced through a Response.
type ResponseError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// Error implements the error interface.
func (e *ResponseError) Error() string {
	return e.Message
}

// FunctionCall is a tool invocation emitted by the model.
type FunctionCall struct {
	ID   string         `json:"id,omitempty"`
	Name string         `json:"name"`
	Args map[string]any `json:"args"`
}

// Usage reports token consumption for one response.
type Usage struct {
	PromptTokens  int `json:"prompt_tokens"`
	OutputTokens  int `json:"output_tokens"`
	ThoughtTokens int `json:"thought_tokens"`
	CachedTokens  int `json:"cached_tokens"`
	TotalTokens   int `json:"total_tokens"`
}

// Response is the typed result of a generation call. Provider payloads are
// converted into it immediately on receipt so downstream code never touches
// an untyped blob.
//
// For streaming calls a Response is either an incremental chunk
// (IsPartial=true) or the final aggregated result (Done=true). Exactly one
// Done response terminates a stream, and it may carry an Error.
type Response struct {
	ID      string    `json:"id,omitempty"`
	Model   string    `json:"model,omitempty"`
	Created time.Time `json:"created,omitempty"`

	// Text is the visible answer text of this response or chunk.
	Text string `json:"text,omitempty"`
	// Reasoning is thought-trace text, populated only when the provider
	// signals separated thinking parts.
	Reasoning string `json:"reasoning,omitempty"`
	// FunctionCalls are the tool invocations requested by the model, in the
	// order they appear across all candidates.
	FunctionCalls []FunctionCall `json:"function_calls,omitempty"`
	// Candidates retains the raw provider candidates for callers that need
	// non-text parts, such as generated image bytes.
	Candidates []*genai.Candidate `json:"-"`

	FinishReason string         `json:"finish_reason,omitempty"`
	Usage        *Usage         `json:"usage,omitempty"`
	Done         bool           `json:"done"`
	IsPartial    bool           `json:"is_partial,omitempty"`
	Error        *ResponseError `json:"error,omitempty"`
}

// HasFunctionCalls reports whether the model requested any tool invocations.
func (r *Response) HasFunctionCalls() bool {
	return len(r.FunctionCalls) > 0
}

// ExtractFunctionCalls scans every candidate part of a raw provider response
// for function-call parts. It returns an empty slice when there are none.
func ExtractFunctionCalls(rsp *genai.GenerateContentResponse) []FunctionCall {
	calls := []FunctionCall{}
	if rsp == nil {
		return calls
	}
	for _, candidate := range rsp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part.FunctionCall == nil {
				continue
			}
			calls = append(calls, FunctionCall{
				ID:   part.FunctionCall.ID,
				Name: part.FunctionCall.Name,
				Args: part.FunctionCall.Args,
			})
		}
	}
	return calls
}

func errorResponse(err error, errType string) *Response {
	return &Response{
		Created: time.Now(),
		Done:    true,
		Error: &ResponseError{
			Message: err.Error(),
			Type:    errType,
		},
	}
}

func buildChunkResponse(rsp *genai.GenerateContentResponse) *Response {
	return convertResponse(rsp, false, true)
}

func buildFinalResponse(rsp *genai.GenerateContentResponse) *Response {
	return convertResponse(rsp, true, false)
}

// convertResponse converts a raw provider response, splitting visible text
// from thought parts and collecting function calls across candidates.
func convertResponse(rsp *genai.GenerateContentResponse, done, partial bool) *Response {
	if rsp == nil {
		return &Response{Done: done, IsPartial: partial}
	}
	response := &Response{
		ID:         rsp.ResponseID,
		Model:      rsp.ModelVersion,
		Created:    rsp.CreateTime,
		Candidates: rsp.Candidates,
		Done:       done,
		IsPartial:  partial,
	}
	var (
		textBuilder      strings.Builder
		reasoningBuilder strings.Builder
	)
	for _, candidate := range rsp.Candidates {
		if candidate.FinishReason != "" {
			response.FinishReason = string(candidate.FinishReason)
		}
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part.Text != "" {
				if part.Thought {
					reasoningBuilder.WriteString(part.Text)
				} else {
					textBuilder.WriteString(part.Text)
				}
			}
			if part.FunctionCall != nil {
				response.FunctionCalls = append(response.FunctionCalls, FunctionCall{
					ID:   part.FunctionCall.ID,
					Name: part.FunctionCall.Name,
					Args: part.FunctionCall.Args,
				})
			}
		}
	}
	response.Text = textBuilder.String()
	response.Reasoning = reasoningBuilder.String()
	response.Usage = convertUsage(rsp.UsageMetadata)
	return response
}

func convertUsage(usage *genai.GenerateContentResponseUsageMetadata) *Usage {
	if usage == nil {
		return nil
	}
	return &Usage{
		PromptTokens:  int(usage.PromptTokenCount),
		OutputTokens:  int(usage.CandidatesTokenCount),
		ThoughtTokens: int(usage.ThoughtsTokenCount),
		CachedTokens:  int(usage.CachedContentTokenCount),
		TotalTokens:   int(usage.TotalTokenCount),
	}
}
