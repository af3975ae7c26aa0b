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
	"google.golang.org/genai"
)

const defaultChannelBufferSize = 256

// options contains construction options for a Generator.
type options struct {
	channelBufferSize int
}

var defaultOptions = options{
	channelBufferSize: defaultChannelBufferSize,
}

// Option configures a Generator.
type Option func(*options)

// WithChannelBufferSize sets the buffer size for streaming response
// channels, 256 by default.
func WithChannelBufferSize(size int) Option {
	return func(o *options) {
		if size <= 0 {
			size = defaultChannelBufferSize
		}
		o.channelBufferSize = size
	}
}

// callOptions holds per-call overrides for a generation request.
type callOptions struct {
	model             string
	config            *genai.GenerateContentConfig
	systemInstruction string
	tools             []*genai.Tool
	toolConfig        *genai.ToolConfig
	safetySettings    []*genai.SafetySetting
}

// CallOption configures a single generation call.
type CallOption func(*callOptions)

// WithModel overrides the default text model for this call.
func WithModel(model string) CallOption {
	return func(o *callOptions) {
		o.model = model
	}
}

// WithGenerationConfig merges the given config over the client defaults for
// this call, override wins key by key.
func WithGenerationConfig(config *genai.GenerateContentConfig) CallOption {
	return func(o *callOptions) {
		o.config = config
	}
}

// WithSystemInstruction sets the system instruction for this call.
func WithSystemInstruction(text string) CallOption {
	return func(o *callOptions) {
		o.systemInstruction = text
	}
}

// WithTools attaches tool declarations to this call.
func WithTools(tools []*genai.Tool) CallOption {
	return func(o *callOptions) {
		o.tools = tools
	}
}

// WithToolConfig sets the function-calling configuration for this call.
func WithToolConfig(tc *genai.ToolConfig) CallOption {
	return func(o *callOptions) {
		o.toolConfig = tc
	}
}

// WithSafetySettings overrides the default safety settings for this call.
func WithSafetySettings(settings []*genai.SafetySetting) CallOption {
	return func(o *callOptions) {
		o.safetySettings = settings
	}
}
