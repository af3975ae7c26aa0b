//
// Inkwell is pleased to support the open source community by making aikit available.
//
// Copyright (C) 2026 Inkwell.  All rights reserved.
//
// aikit is licensed under the Apache License Version 2.0.
//
//

// Package imagegen generates and edits post imagery through the provider's
// image models.
package imagegen

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/inkwell-cms/aikit/config"
	"github.com/inkwell-cms/aikit/gemini"
	"github.com/inkwell-cms/aikit/telemetry"
)

const (
	// maxPromptLength bounds image prompts before any network call.
	maxPromptLength = 4000

	minImages = 1
	maxImages = 4

	// defaultEditModel is the image-capable generation model used by Edit;
	// the dedicated image models only support text-to-image.
	defaultEditModel = "gemini-2.5-flash-image"

	defaultMIMEType = "image/png"
)

// Image is one generated or edited image.
type Image struct {
	Data     []byte
	MIMEType string
}

// Generator wraps the provider image endpoints.
type Generator struct {
	models gemini.Models
	cfg    *config.Config
}

// New creates an image generator over the given client.
func New(client gemini.Client, cfg *config.Config) *Generator {
	return &Generator{models: client.Models(), cfg: cfg}
}

// Options carries the optional fields of Generate and Edit.
type Options struct {
	// Model overrides the configured image model.
	Model string
	// NumberOfImages in [1, 4]; out-of-range values are clamped, not
	// rejected. Zero means one image.
	NumberOfImages int
	// AspectRatio such as "1:1" or "16:9".
	AspectRatio string
	// NegativePrompt describes what to keep out of the image.
	NegativePrompt string
}

// Generate produces images from a text prompt.
func (g *Generator) Generate(ctx context.Context, prompt string, opts *Options) ([]Image, error) {
	if err := validatePrompt(prompt); err != nil {
		return nil, err
	}
	if opts == nil {
		opts = &Options{}
	}
	model := opts.Model
	if model == "" {
		model = g.cfg.ImageModel
	}
	cfg := &genai.GenerateImagesConfig{
		NumberOfImages: clampImageCount(opts.NumberOfImages),
		AspectRatio:    opts.AspectRatio,
		NegativePrompt: opts.NegativePrompt,
	}

	ctx, span := telemetry.StartSpan(ctx, telemetry.OperationGenerateImages, model)
	rsp, err := g.models.GenerateImages(ctx, model, prompt, cfg)
	telemetry.EndSpan(span, err)
	if err != nil {
		return nil, fmt.Errorf("imagegen: generate: %w", err)
	}

	images := make([]Image, 0, len(rsp.GeneratedImages))
	for _, generated := range rsp.GeneratedImages {
		if generated.Image == nil {
			continue
		}
		images = append(images, Image{
			Data:     generated.Image.ImageBytes,
			MIMEType: imageMIMEType(generated.Image.MIMEType),
		})
	}
	if len(images) == 0 {
		return nil, fmt.Errorf("imagegen: provider returned no images")
	}
	return images, nil
}

// Edit transforms an existing image according to the prompt. It goes through
// an image-capable generation model with image response modality rather than
// the text-to-image endpoint.
func (g *Generator) Edit(ctx context.Context, image Image, prompt string, opts *Options) (*Image, error) {
	if err := validatePrompt(prompt); err != nil {
		return nil, err
	}
	if len(image.Data) == 0 {
		return nil, fmt.Errorf("imagegen: image data is empty")
	}
	if opts == nil {
		opts = &Options{}
	}
	model := opts.Model
	if model == "" {
		model = defaultEditModel
	}

	parts := []*genai.Part{
		genai.NewPartFromBytes(image.Data, imageMIMEType(image.MIMEType)),
		genai.NewPartFromText(prompt),
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
	cfg := &genai.GenerateContentConfig{
		ResponseModalities: []string{"TEXT", "IMAGE"},
	}

	ctx, span := telemetry.StartSpan(ctx, telemetry.OperationGenerateContent, model)
	rsp, err := g.models.GenerateContent(ctx, model, contents, cfg)
	telemetry.EndSpan(span, err)
	if err != nil {
		return nil, fmt.Errorf("imagegen: edit: %w", err)
	}

	for _, candidate := range rsp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				return &Image{
					Data:     part.InlineData.Data,
					MIMEType: imageMIMEType(part.InlineData.MIMEType),
				}, nil
			}
		}
	}
	return nil, fmt.Errorf("imagegen: response contains no image")
}

// ImagePart classifies a source string into a prompt part: http(s) URLs
// become file references, data URLs are unwrapped, anything else is treated
// as base64 payload of the given MIME type.
func ImagePart(source, mimeType string) (*genai.Part, error) {
	switch {
	case strings.HasPrefix(source, "http://"), strings.HasPrefix(source, "https://"):
		return genai.NewPartFromURI(source, imageMIMEType(mimeType)), nil
	case strings.HasPrefix(source, "data:"):
		mime, data, err := decodeDataURL(source)
		if err != nil {
			return nil, err
		}
		return genai.NewPartFromBytes(data, mime), nil
	default:
		data, err := base64.StdEncoding.DecodeString(source)
		if err != nil {
			return nil, fmt.Errorf("imagegen: decode image payload: %w", err)
		}
		return genai.NewPartFromBytes(data, imageMIMEType(mimeType)), nil
	}
}

// decodeDataURL unwraps a  data:<mime>;base64,<payload>  URL.
func decodeDataURL(source string) (mimeType string, data []byte, err error) {
	rest := strings.TrimPrefix(source, "data:")
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, fmt.Errorf("imagegen: malformed data url")
	}
	mimeType = strings.TrimSuffix(meta, ";base64")
	if mimeType == "" {
		mimeType = defaultMIMEType
	}
	data, err = base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("imagegen: decode data url: %w", err)
	}
	return mimeType, data, nil
}

func validatePrompt(prompt string) error {
	if strings.TrimSpace(prompt) == "" {
		return fmt.Errorf("imagegen: prompt is empty")
	}
	if len(prompt) > maxPromptLength {
		return fmt.Errorf("imagegen: prompt exceeds %d characters", maxPromptLength)
	}
	return nil
}

func clampImageCount(n int) int32 {
	if n < minImages {
		return minImages
	}
	if n > maxImages {
		return maxImages
	}
	return int32(n)
}

func imageMIMEType(mimeType string) string {
	if mimeType == "" {
		return defaultMIMEType
	}
	return mimeType
}
