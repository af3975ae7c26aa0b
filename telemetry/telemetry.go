//
// Inkwell is pleased to support the open source community by making aikit available.
//
// Copyright (C) 2026 Inkwell.  All rights reserved.
//
// aikit is licensed under the Apache License Version 2.0.
//
//

// Package telemetry provides tracing helpers for aikit provider calls.
//
// Spans follow the OpenTelemetry GenAI semantic conventions. No exporter is
// configured here; callers install their own tracer provider.
package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// InstrumentName identifies aikit spans.
const InstrumentName = "inkwell.aikit"

// GenAI operation names.
const (
	OperationGenerateContent = "generate_content"
	OperationEmbeddings      = "embeddings"
	OperationGenerateImages  = "generate_images"
	OperationUploadFile      = "upload_file"
)

// GenAI semantic convention attribute keys.
const (
	KeyOperationName = "gen_ai.operation.name"
	KeyProviderName  = "gen_ai.provider.name"
	KeyRequestModel  = "gen_ai.request.model"
)

// ProviderGemini is the gen_ai.provider.name value for all aikit spans.
const ProviderGemini = "gcp.gemini"

// Tracer is the tracer used for all aikit spans.
var Tracer = otel.Tracer(InstrumentName)

// StartSpan starts a provider-call span named "<operation> <model>" with the
// standard GenAI attributes attached.
func StartSpan(ctx context.Context, operation, model string) (context.Context, trace.Span) {
	name := operation
	if model != "" {
		name = fmt.Sprintf("%s %s", operation, model)
	}
	return Tracer.Start(ctx, name, trace.WithAttributes(
		attribute.String(KeyOperationName, operation),
		attribute.String(KeyProviderName, ProviderGemini),
		attribute.String(KeyRequestModel, model),
	))
}

// EndSpan finishes a span, recording err when non-nil.
func EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
