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
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"

	"github.com/inkwell-cms/aikit/config"
	"github.com/inkwell-cms/aikit/telemetry"
)

// thinkingPreamble is prepended to prompts by GenerateWithThinking. This is a
// prompt-engineering technique; the response interleaves reasoning and answer
// in one text. Use streaming with a thinking budget for provider-separated
// thought chunks.
const thinkingPreamble = "Think through this step by step, showing your reasoning before the final answer.\n\n"

// Generator is the text-generation facade. It is stateless and safe for
// concurrent use across goroutines.
type Generator struct {
	client            Client
	cfg               *config.Config
	channelBufferSize int
}

// New constructs a Generator, building the underlying provider client from
// the configuration. The only network activity at construction time is none;
// credentials are validated by config.New.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*Generator, error) {
	if cfg == nil {
		return nil, errors.New("gemini: config cannot be nil")
	}
	client, err := genai.NewClient(ctx, cfg.ClientConfig())
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	return NewWithClient(WrapClient(client), cfg, opts...), nil
}

// NewWithClient constructs a Generator over an existing Client. Used by tests
// and by callers sharing one provider client across feature packages.
func NewWithClient(client Client, cfg *config.Config, opts ...Option) *Generator {
	o := defaultOptions
	for _, opt := range opts {
		opt(&o)
	}
	return &Generator{
		client:            client,
		cfg:               cfg,
		channelBufferSize: o.channelBufferSize,
	}
}

// Client returns the underlying provider client for sharing with other
// feature packages.
func (g *Generator) Client() Client {
	return g.client
}

// Config returns the configuration the Generator was built with.
func (g *Generator) Config() *config.Config {
	return g.cfg
}

// Generate issues a single non-streaming generation call. Provider errors
// propagate unmodified; there is no retry built in.
func (g *Generator) Generate(ctx context.Context, contents []*genai.Content, opts ...CallOption) (*Response, error) {
	call := g.buildCall(opts)
	ctx, span := telemetry.StartSpan(ctx, telemetry.OperationGenerateContent, call.model)
	rsp, err := g.client.Models().GenerateContent(ctx, call.model, contents, call.config)
	telemetry.EndSpan(span, err)
	if err != nil {
		return nil, err
	}
	return buildFinalResponse(rsp), nil
}

// GenerateText is Generate for a bare prompt string.
func (g *Generator) GenerateText(ctx context.Context, prompt string, opts ...CallOption) (*Response, error) {
	return g.Generate(ctx, Text(prompt), opts...)
}

// GenerateStream issues a streaming generation call. The returned channel
// yields incremental chunks (IsPartial) followed by exactly one terminal
// response (Done), which carries the accumulated text or the stream error.
// The channel is closed after the terminal response; consumers must drain it.
func (g *Generator) GenerateStream(ctx context.Context, contents []*genai.Content, opts ...CallOption) <-chan *Response {
	call := g.buildCall(opts)
	responseChan := make(chan *Response, g.channelBufferSize)
	go func() {
		defer close(responseChan)
		ctx, span := telemetry.StartSpan(ctx, telemetry.OperationGenerateContent, call.model)
		stream := g.client.Models().GenerateContentStream(ctx, call.model, contents, call.config)
		acc := &accumulator{}
		for chunk, err := range stream {
			if err != nil {
				telemetry.EndSpan(span, err)
				select {
				case responseChan <- errorResponse(err, ErrorTypeAPIError):
				case <-ctx.Done():
				}
				return
			}
			response := buildChunkResponse(chunk)
			acc.accumulate(response)
			select {
			case responseChan <- response:
			case <-ctx.Done():
				telemetry.EndSpan(span, ctx.Err())
				return
			}
		}
		telemetry.EndSpan(span, nil)
		select {
		case responseChan <- acc.buildResponse():
		case <-ctx.Done():
		}
	}()
	return responseChan
}

// GenerateTextStream is GenerateStream for a bare prompt string.
func (g *Generator) GenerateTextStream(ctx context.Context, prompt string, opts ...CallOption) <-chan *Response {
	return g.GenerateStream(ctx, Text(prompt), opts...)
}

// GenerateStructured forces a JSON response conforming to schema. The schema
// is either a *genai.Schema or a raw JSON-schema document (any JSON-
// serializable value). Callers must still parse Response.Text defensively; a
// malformed model response surfaces as a downstream parse error.
func (g *Generator) GenerateStructured(ctx context.Context, contents []*genai.Content, schema any, opts ...CallOption) (*Response, error) {
	structured := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	}
	switch s := schema.(type) {
	case nil:
	case *genai.Schema:
		structured.ResponseSchema = s
	default:
		structured.ResponseJsonSchema = s
	}
	opts = append(opts, WithGenerationConfig(structured))
	return g.Generate(ctx, contents, opts...)
}

// GenerateWithThinking wraps the prompt with an explicit step-by-step
// instruction when enabled. See thinkingPreamble for the caveat versus
// provider-level thought separation.
func (g *Generator) GenerateWithThinking(ctx context.Context, prompt string, enableThinking bool, opts ...CallOption) (*Response, error) {
	if enableThinking {
		prompt = thinkingPreamble + prompt
	}
	return g.Generate(ctx, Text(prompt), opts...)
}

// CountTokens returns the number of tokens the contents would consume for
// the default or overridden model.
func (g *Generator) CountTokens(ctx context.Context, contents []*genai.Content, opts ...CallOption) (int32, error) {
	call := g.buildCall(opts)
	rsp, err := g.client.Models().CountTokens(ctx, call.model, contents, nil)
	if err != nil {
		return 0, err
	}
	return rsp.TotalTokens, nil
}

// buildCall resolves the effective model and generation config for one call:
// client defaults first, per-call overrides on top, key by key.
func (g *Generator) buildCall(opts []CallOption) *callOptions {
	call := &callOptions{model: g.cfg.TextModel}
	for _, opt := range opts {
		opt(call)
	}
	merged := config.MergeGenerationConfigs(g.cfg.GenerationConfig, call.config)
	if merged == nil {
		merged = &genai.GenerateContentConfig{}
	}
	if call.systemInstruction != "" {
		merged.SystemInstruction = systemInstruction(call.systemInstruction)
	}
	if len(call.tools) > 0 {
		merged.Tools = call.tools
		if merged.ToolConfig == nil {
			// AUTO lets the model decide between calling tools and answering.
			merged.ToolConfig = &genai.ToolConfig{
				FunctionCallingConfig: &genai.FunctionCallingConfig{
					Mode: genai.FunctionCallingConfigModeAuto,
				},
			}
		}
	}
	if call.toolConfig != nil {
		merged.ToolConfig = call.toolConfig
	}
	switch {
	case len(call.safetySettings) > 0:
		merged.SafetySettings = call.safetySettings
	case len(merged.SafetySettings) == 0 && len(g.cfg.SafetySettings) > 0:
		merged.SafetySettings = g.cfg.SafetySettings
	}
	call.config = merged
	return call
}
