//
// Inkwell is pleased to support the open source community by making aikit available.
//
// Copyright (C) 2026 Inkwell.  All rights reserved.
//
// aikit is licensed under the Apache License Version 2.0.
//
//

// Package multimodal answers prompts about images, video, and audio by
// combining text with media parts in a single model turn.
package multimodal

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/inkwell-cms/aikit/gemini"
)

// Analyzer issues multimodal analysis calls through a generation facade.
type Analyzer struct {
	generator *gemini.Generator
}

// New creates an analyzer.
func New(generator *gemini.Generator) *Analyzer {
	return &Analyzer{generator: generator}
}

// Analyze sends one user turn holding the prompt followed by the media
// parts and returns the model's answer.
func (a *Analyzer) Analyze(ctx context.Context, prompt string, media []*genai.Part,
	opts ...gemini.CallOption) (*gemini.Response, error) {
	if prompt == "" {
		return nil, fmt.Errorf("multimodal: prompt is empty")
	}
	if len(media) == 0 {
		return nil, fmt.Errorf("multimodal: no media provided")
	}
	parts := make([]*genai.Part, 0, len(media)+1)
	parts = append(parts, genai.NewPartFromText(prompt))
	parts = append(parts, media...)
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
	return a.generator.Generate(ctx, contents, opts...)
}

// AnalyzeImages analyzes one or more image sources. Sources may be URLs,
// data URLs, or raw base64 payloads.
func (a *Analyzer) AnalyzeImages(ctx context.Context, prompt string, sources []string,
	opts ...gemini.CallOption) (*gemini.Response, error) {
	media, err := sourcesToParts(sources, "image/jpeg")
	if err != nil {
		return nil, err
	}
	return a.Analyze(ctx, prompt, media, opts...)
}

// AnalyzeVideo analyzes a single video source.
func (a *Analyzer) AnalyzeVideo(ctx context.Context, prompt, source string,
	opts ...gemini.CallOption) (*gemini.Response, error) {
	part, err := SourceToPart(source, "video/mp4")
	if err != nil {
		return nil, err
	}
	return a.Analyze(ctx, prompt, []*genai.Part{part}, opts...)
}

// AnalyzeAudio analyzes a single audio source.
func (a *Analyzer) AnalyzeAudio(ctx context.Context, prompt, source string,
	opts ...gemini.CallOption) (*gemini.Response, error) {
	part, err := SourceToPart(source, "audio/mpeg")
	if err != nil {
		return nil, err
	}
	return a.Analyze(ctx, prompt, []*genai.Part{part}, opts...)
}

// SourceToPart normalizes a raw media source into a prompt part. Cloud
// storage and web URLs become file references; data URLs are unwrapped into
// inline data; anything else is treated as a raw base64 payload of the
// given default MIME type.
func SourceToPart(source, defaultMIMEType string) (*genai.Part, error) {
	switch {
	case strings.HasPrefix(source, "gs://"),
		strings.HasPrefix(source, "http://"),
		strings.HasPrefix(source, "https://"):
		return genai.NewPartFromURI(source, defaultMIMEType), nil
	case strings.HasPrefix(source, "data:"):
		meta, payload, ok := strings.Cut(strings.TrimPrefix(source, "data:"), ",")
		if !ok {
			return nil, fmt.Errorf("multimodal: malformed data url")
		}
		mimeType := strings.TrimSuffix(meta, ";base64")
		if mimeType == "" {
			mimeType = defaultMIMEType
		}
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("multimodal: decode data url: %w", err)
		}
		return genai.NewPartFromBytes(data, mimeType), nil
	default:
		data, err := base64.StdEncoding.DecodeString(source)
		if err != nil {
			return nil, fmt.Errorf("multimodal: decode media payload: %w", err)
		}
		return genai.NewPartFromBytes(data, defaultMIMEType), nil
	}
}

func sourcesToParts(sources []string, defaultMIMEType string) ([]*genai.Part, error) {
	parts := make([]*genai.Part, 0, len(sources))
	for _, source := range sources {
		part, err := SourceToPart(source, defaultMIMEType)
		if err != nil {
			return nil, err
		}
		parts = append(parts, part)
	}
	return parts, nil
}
