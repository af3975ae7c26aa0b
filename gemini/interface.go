//
// Inkwell is pleased to support the open source community by making aikit available.
//
// Copyright (C) 2026 Inkwell.  All rights reserved.
//
// aikit is licensed under the Apache License Version 2.0.
//
//

// Package gemini provides the typed facade over the Gemini provider SDK used
// by every aikit feature package.
package gemini

import (
	"context"
	"io"
	"iter"

	"google.golang.org/genai"
)

// Client is the provider client. It provides access to the GenAI services
// consumed by aikit. The concrete implementation wraps *genai.Client; tests
// substitute fakes.
type Client interface {
	Models() Models
	Files() Files
	Caches() Caches
}

// Models provides methods for interacting with the available language models.
type Models interface {
	// GenerateContent generates content based on the provided model, contents, and configuration.
	GenerateContent(ctx context.Context, model string, contents []*genai.Content,
		config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	// GenerateContentStream generates a stream of content based on the provided model, contents, and configuration.
	GenerateContentStream(ctx context.Context, model string, contents []*genai.Content,
		config *genai.GenerateContentConfig) iter.Seq2[*genai.GenerateContentResponse, error]
	// EmbedContent computes embedding vectors for the provided contents.
	EmbedContent(ctx context.Context, model string, contents []*genai.Content,
		config *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error)
	// GenerateImages generates images from a text prompt.
	GenerateImages(ctx context.Context, model string, prompt string,
		config *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error)
	// CountTokens counts the tokens the provided contents would consume.
	CountTokens(ctx context.Context, model string, contents []*genai.Content,
		config *genai.CountTokensConfig) (*genai.CountTokensResponse, error)
}

// FilePage is one page of a file listing.
type FilePage struct {
	Files         []*genai.File
	NextPageToken string
}

// Files provides methods for managing binary assets the model consumes by
// reference.
type Files interface {
	// Upload uploads the reader's contents as a new provider file.
	Upload(ctx context.Context, r io.Reader, config *genai.UploadFileConfig) (*genai.File, error)
	// UploadFromPath uploads the file at the given local path.
	UploadFromPath(ctx context.Context, path string, config *genai.UploadFileConfig) (*genai.File, error)
	// Get fetches current metadata for a file by name.
	Get(ctx context.Context, name string, config *genai.GetFileConfig) (*genai.File, error)
	// List returns one page of uploaded files.
	List(ctx context.Context, config *genai.ListFilesConfig) (*FilePage, error)
	// Delete removes a file by name.
	Delete(ctx context.Context, name string, config *genai.DeleteFileConfig) error
	// All iterates over every uploaded file.
	All(ctx context.Context) iter.Seq2[*genai.File, error]
}

// CachePage is one page of a cached-content listing.
type CachePage struct {
	Caches        []*genai.CachedContent
	NextPageToken string
}

// Caches provides methods for managing reusable large-context caches.
type Caches interface {
	// Create stores contents as reusable cached context for a model.
	Create(ctx context.Context, model string, config *genai.CreateCachedContentConfig) (*genai.CachedContent, error)
	// Get fetches a cached content by name.
	Get(ctx context.Context, name string, config *genai.GetCachedContentConfig) (*genai.CachedContent, error)
	// Update changes the expiry of a cached content.
	Update(ctx context.Context, name string, config *genai.UpdateCachedContentConfig) (*genai.CachedContent, error)
	// Delete removes a cached content by name.
	Delete(ctx context.Context, name string, config *genai.DeleteCachedContentConfig) error
	// List returns one page of cached contents.
	List(ctx context.Context, config *genai.ListCachedContentsConfig) (*CachePage, error)
}

// clientWrapper implements Client over *genai.Client.
type clientWrapper struct {
	client *genai.Client
}

// WrapClient adapts an already constructed *genai.Client into the Client
// interface.
func WrapClient(client *genai.Client) Client {
	return &clientWrapper{client: client}
}

func (c *clientWrapper) Models() Models {
	return &modelsWrapper{models: c.client.Models}
}

func (c *clientWrapper) Files() Files {
	return &filesWrapper{files: c.client.Files}
}

func (c *clientWrapper) Caches() Caches {
	return &cachesWrapper{caches: c.client.Caches}
}

type modelsWrapper struct {
	models *genai.Models
}

func (m *modelsWrapper) GenerateContent(ctx context.Context, model string, contents []*genai.Content,
	config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	return m.models.GenerateContent(ctx, model, contents, config)
}

func (m *modelsWrapper) GenerateContentStream(ctx context.Context, model string, contents []*genai.Content,
	config *genai.GenerateContentConfig) iter.Seq2[*genai.GenerateContentResponse, error] {
	return m.models.GenerateContentStream(ctx, model, contents, config)
}

func (m *modelsWrapper) EmbedContent(ctx context.Context, model string, contents []*genai.Content,
	config *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error) {
	return m.models.EmbedContent(ctx, model, contents, config)
}

func (m *modelsWrapper) GenerateImages(ctx context.Context, model string, prompt string,
	config *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error) {
	return m.models.GenerateImages(ctx, model, prompt, config)
}

func (m *modelsWrapper) CountTokens(ctx context.Context, model string, contents []*genai.Content,
	config *genai.CountTokensConfig) (*genai.CountTokensResponse, error) {
	return m.models.CountTokens(ctx, model, contents, config)
}

type filesWrapper struct {
	files *genai.Files
}

func (f *filesWrapper) Upload(ctx context.Context, r io.Reader,
	config *genai.UploadFileConfig) (*genai.File, error) {
	return f.files.Upload(ctx, r, config)
}

func (f *filesWrapper) UploadFromPath(ctx context.Context, path string,
	config *genai.UploadFileConfig) (*genai.File, error) {
	return f.files.UploadFromPath(ctx, path, config)
}

func (f *filesWrapper) Get(ctx context.Context, name string,
	config *genai.GetFileConfig) (*genai.File, error) {
	return f.files.Get(ctx, name, config)
}

func (f *filesWrapper) List(ctx context.Context,
	config *genai.ListFilesConfig) (*FilePage, error) {
	page, err := f.files.List(ctx, config)
	if err != nil {
		return nil, err
	}
	return &FilePage{Files: page.Items, NextPageToken: page.NextPageToken}, nil
}

func (f *filesWrapper) Delete(ctx context.Context, name string,
	config *genai.DeleteFileConfig) error {
	_, err := f.files.Delete(ctx, name, config)
	return err
}

func (f *filesWrapper) All(ctx context.Context) iter.Seq2[*genai.File, error] {
	return f.files.All(ctx)
}

type cachesWrapper struct {
	caches *genai.Caches
}

func (c *cachesWrapper) Create(ctx context.Context, model string,
	config *genai.CreateCachedContentConfig) (*genai.CachedContent, error) {
	return c.caches.Create(ctx, model, config)
}

func (c *cachesWrapper) Get(ctx context.Context, name string,
	config *genai.GetCachedContentConfig) (*genai.CachedContent, error) {
	return c.caches.Get(ctx, name, config)
}

func (c *cachesWrapper) Update(ctx context.Context, name string,
	config *genai.UpdateCachedContentConfig) (*genai.CachedContent, error) {
	return c.caches.Update(ctx, name, config)
}

func (c *cachesWrapper) Delete(ctx context.Context, name string,
	config *genai.DeleteCachedContentConfig) error {
	_, err := c.caches.Delete(ctx, name, config)
	return err
}

func (c *cachesWrapper) List(ctx context.Context,
	config *genai.ListCachedContentsConfig) (*CachePage, error) {
	page, err := c.caches.List(ctx, config)
	if err != nil {
		return nil, err
	}
	return &CachePage{Caches: page.Items, NextPageToken: page.NextPageToken}, nil
}
