//
// Inkwell is pleased to support the open source community by making aikit available.
//
// Copyright (C) 2026 Inkwell.  All rights reserved.
//
// aikit is licensed under the Apache License Version 2.0.
//
//

// Package embedding computes text embedding vectors and ranks them by
// cosine similarity, backing related-post lookup and semantic search.
package embedding

import (
	"context"
	"fmt"
	"sync"

	"github.com/panjf2000/ants/v2"
	"google.golang.org/genai"

	"github.com/inkwell-cms/aikit/config"
	"github.com/inkwell-cms/aikit/gemini"
	"github.com/inkwell-cms/aikit/telemetry"
)

// Task types hint how a vector will be used; the provider tunes the
// embedding accordingly.
const (
	TaskRetrievalQuery     = "RETRIEVAL_QUERY"
	TaskRetrievalDocument  = "RETRIEVAL_DOCUMENT"
	TaskSemanticSimilarity = "SEMANTIC_SIMILARITY"
	TaskClassification     = "CLASSIFICATION"
	TaskClustering         = "CLUSTERING"
)

// defaultBatchConcurrency bounds the worker pool used by EmbedBatch.
const defaultBatchConcurrency = 4

// Embedder wraps the provider embedding endpoint.
type Embedder struct {
	models      gemini.Models
	cfg         *config.Config
	concurrency int
}

// Option configures an Embedder.
type Option func(*Embedder)

// WithBatchConcurrency sets the number of parallel embed calls EmbedBatch
// issues, 4 by default.
func WithBatchConcurrency(n int) Option {
	return func(e *Embedder) {
		if n > 0 {
			e.concurrency = n
		}
	}
}

// New creates an embedder over the given client.
func New(client gemini.Client, cfg *config.Config, opts ...Option) *Embedder {
	e := &Embedder{
		models:      client.Models(),
		cfg:         cfg,
		concurrency: defaultBatchConcurrency,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// EmbedOptions carries the optional fields of Embed.
type EmbedOptions struct {
	// Model overrides the configured embedding model.
	Model string
	// TaskType hints the vector's intended use.
	TaskType string
	// Title labels the content; only meaningful for retrieval documents.
	Title string
}

// Embed computes the embedding vector for one text.
func (e *Embedder) Embed(ctx context.Context, text string, opts *EmbedOptions) ([]float32, error) {
	if text == "" {
		return nil, fmt.Errorf("embedding: text is empty")
	}
	if opts == nil {
		opts = &EmbedOptions{}
	}
	if opts.Title != "" && opts.TaskType != TaskRetrievalDocument {
		return nil, fmt.Errorf("embedding: title requires task type %s", TaskRetrievalDocument)
	}
	model := opts.Model
	if model == "" {
		model = e.cfg.EmbeddingModel
	}
	cfg := &genai.EmbedContentConfig{}
	if opts.TaskType != "" {
		cfg.TaskType = opts.TaskType
	}
	if opts.Title != "" {
		cfg.Title = opts.Title
	}

	ctx, span := telemetry.StartSpan(ctx, telemetry.OperationEmbeddings, model)
	rsp, err := e.models.EmbedContent(ctx, model, gemini.Text(text), cfg)
	telemetry.EndSpan(span, err)
	if err != nil {
		return nil, fmt.Errorf("embedding: embed: %w", err)
	}
	if len(rsp.Embeddings) == 0 || rsp.Embeddings[0] == nil {
		return nil, fmt.Errorf("embedding: provider returned no embedding")
	}
	return rsp.Embeddings[0].Values, nil
}

// EmbedQuery embeds a search query.
func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return e.Embed(ctx, text, &EmbedOptions{TaskType: TaskRetrievalQuery})
}

// EmbedDocument embeds a document for later retrieval. The title is optional.
func (e *Embedder) EmbedDocument(ctx context.Context, text, title string) ([]float32, error) {
	return e.Embed(ctx, text, &EmbedOptions{TaskType: TaskRetrievalDocument, Title: title})
}

// EmbedBatch embeds every text in parallel over a bounded worker pool.
// Results keep input order; any failure fails the whole batch.
func (e *Embedder) EmbedBatch(ctx context.Context, texts []string, taskType string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	pool, err := ants.NewPool(e.concurrency)
	if err != nil {
		return nil, fmt.Errorf("embedding: create pool: %w", err)
	}
	defer pool.Release()

	results := make([][]float32, len(texts))
	errs := make([]error, len(texts))
	var wg sync.WaitGroup
	for i, text := range texts {
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			results[i], errs[i] = e.Embed(ctx, text, &EmbedOptions{TaskType: taskType})
		})
		if submitErr != nil {
			wg.Done()
			errs[i] = fmt.Errorf("embedding: submit: %w", submitErr)
		}
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}
