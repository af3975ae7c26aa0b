//
// Inkwell is pleased to support the open source community by making aikit available.
//
// Copyright (C) 2026 Inkwell.  All rights reserved.
//
// aikit is licensed under the Apache License Version 2.0.
//
//

package embedding

import (
	"context"
	"errors"
	"iter"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/inkwell-cms/aikit/config"
	"github.com/inkwell-cms/aikit/gemini"
)

type fakeModels struct {
	mu        sync.Mutex
	callCount int
	lastModel string
	lastCfg   *genai.EmbedContentConfig
	vectors   map[string][]float32
	err       error
}

func (f *fakeModels) EmbedContent(ctx context.Context, model string, contents []*genai.Content,
	cfg *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.callCount++
	f.lastModel, f.lastCfg = model, cfg
	if f.err != nil {
		return nil, f.err
	}
	text := contents[0].Parts[0].Text
	values, ok := f.vectors[text]
	if !ok {
		values = []float32{1, 0, 0}
	}
	return &genai.EmbedContentResponse{
		Embeddings: []*genai.ContentEmbedding{{Values: values}},
	}, nil
}

func (f *fakeModels) GenerateContent(ctx context.Context, model string, contents []*genai.Content,
	cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeModels) GenerateContentStream(ctx context.Context, model string, contents []*genai.Content,
	cfg *genai.GenerateContentConfig) iter.Seq2[*genai.GenerateContentResponse, error] {
	return nil
}

func (f *fakeModels) GenerateImages(ctx context.Context, model string, prompt string,
	cfg *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeModels) CountTokens(ctx context.Context, model string, contents []*genai.Content,
	cfg *genai.CountTokensConfig) (*genai.CountTokensResponse, error) {
	return nil, errors.New("not implemented")
}

type fakeClient struct {
	models *fakeModels
}

func (f *fakeClient) Models() gemini.Models { return f.models }
func (f *fakeClient) Files() gemini.Files   { return nil }
func (f *fakeClient) Caches() gemini.Caches { return nil }

func newTestEmbedder(models *fakeModels, opts ...Option) *Embedder {
	cfg := &config.Config{APIKey: "test", EmbeddingModel: "gemini-embedding-001"}
	return New(&fakeClient{models: models}, cfg, opts...)
}

func TestEmbedUsesConfiguredModel(t *testing.T) {
	models := &fakeModels{}
	e := newTestEmbedder(models)

	vec, err := e.Embed(context.Background(), "hello", nil)
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 0, 0}, vec)
	assert.Equal(t, "gemini-embedding-001", models.lastModel)
}

func TestEmbedRejectsEmptyText(t *testing.T) {
	e := newTestEmbedder(&fakeModels{})
	_, err := e.Embed(context.Background(), "", nil)
	assert.ErrorContains(t, err, "text is empty")
}

func TestEmbedTitleRequiresDocumentTask(t *testing.T) {
	models := &fakeModels{}
	e := newTestEmbedder(models)

	_, err := e.Embed(context.Background(), "text", &EmbedOptions{
		TaskType: TaskRetrievalQuery,
		Title:    "My Post",
	})
	assert.ErrorContains(t, err, "title requires task type")
	assert.Zero(t, models.callCount)

	_, err = e.EmbedDocument(context.Background(), "text", "My Post")
	require.NoError(t, err)
	assert.Equal(t, TaskRetrievalDocument, models.lastCfg.TaskType)
	assert.Equal(t, "My Post", models.lastCfg.Title)
}

func TestEmbedQuerySetsTaskType(t *testing.T) {
	models := &fakeModels{}
	e := newTestEmbedder(models)

	_, err := e.EmbedQuery(context.Background(), "search terms")
	require.NoError(t, err)
	assert.Equal(t, TaskRetrievalQuery, models.lastCfg.TaskType)
}

func TestEmbedBatchPreservesOrder(t *testing.T) {
	models := &fakeModels{vectors: map[string][]float32{
		"a": {1, 0},
		"b": {0, 1},
	}}
	e := newTestEmbedder(models)

	vecs, err := e.EmbedBatch(context.Background(), []string{"a", "b"}, TaskRetrievalDocument)
	require.NoError(t, err)
	require.Len(t, vecs, 2)
	assert.Equal(t, []float32{1, 0}, vecs[0])
	assert.Equal(t, []float32{0, 1}, vecs[1])
	assert.Equal(t, 2, models.callCount)
}

func TestEmbedBatchFailsWhole(t *testing.T) {
	models := &fakeModels{err: errors.New("quota exhausted")}
	e := newTestEmbedder(models)

	_, err := e.EmbedBatch(context.Background(), []string{"a", "b"}, "")
	require.Error(t, err)
}

func TestCosineSimilarity(t *testing.T) {
	v := []float32{0.5, 1.5, -2}
	neg := []float32{-0.5, -1.5, 2}

	same, err := CosineSimilarity(v, v)
	require.NoError(t, err)
	assert.InDelta(t, 1, same, 1e-9)

	opposite, err := CosineSimilarity(v, neg)
	require.NoError(t, err)
	assert.InDelta(t, -1, opposite, 1e-9)

	zero, err := CosineSimilarity(v, []float32{0, 0, 0})
	require.NoError(t, err)
	assert.Zero(t, zero)

	_, err = CosineSimilarity(v, []float32{1, 2})
	assert.ErrorIs(t, err, ErrVectorLength)
}

func TestFindSimilar(t *testing.T) {
	query := []float32{1, 0}
	candidates := [][]float32{
		{0, 1},
		{1, 0},
		{1, 1},
	}

	matches, err := FindSimilar(query, candidates, 2)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, 1, matches[0].Index)
	assert.InDelta(t, 1, matches[0].Similarity, 1e-9)
	assert.Equal(t, 2, matches[1].Index)
}

func TestFindSimilarClampsTopK(t *testing.T) {
	matches, err := FindSimilar([]float32{1}, [][]float32{{1}, {2}}, 10)
	require.NoError(t, err)
	assert.Len(t, matches, 2)
}

func TestFindSimilarLengthMismatch(t *testing.T) {
	_, err := FindSimilar([]float32{1, 0}, [][]float32{{1}}, 3)
	assert.ErrorIs(t, err, ErrVectorLength)
}
