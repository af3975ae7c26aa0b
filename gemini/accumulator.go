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
)

// accumulator builds the final aggregated Response from streamed chunks.
type accumulator struct {
	model         string
	text          strings.Builder
	reasoning     strings.Builder
	finishReason  string
	functionCalls []FunctionCall
	usage         Usage
	sawUsage      bool
}

func (a *accumulator) accumulate(chunk *Response) {
	if chunk.Model != "" {
		a.model = chunk.Model
	}
	if chunk.FinishReason != "" {
		a.finishReason = chunk.FinishReason
	}
	a.text.WriteString(chunk.Text)
	a.reasoning.WriteString(chunk.Reasoning)
	a.functionCalls = append(a.functionCalls, chunk.FunctionCalls...)
	if chunk.Usage != nil {
		// Usage metadata on Gemini chunks is cumulative; keep the latest.
		a.usage = *chunk.Usage
		a.sawUsage = true
	}
}

func (a *accumulator) buildResponse() *Response {
	response := &Response{
		Model:         a.model,
		Created:       time.Now(),
		Text:          a.text.String(),
		Reasoning:     a.reasoning.String(),
		FunctionCalls: a.functionCalls,
		FinishReason:  a.finishReason,
		Done:          true,
	}
	if a.sawUsage {
		usage := a.usage
		response.Usage = &usage
	}
	return response
}
