//
// Inkwell is pleased to support the open source community by making aikit available.
//
// Copyright (C) 2026 Inkwell.  All rights reserved.
//
// aikit is licensed under the Apache License Version 2.0.
//
//

// Package cache manages provider-side cached context, so large prompts are
// stored once and referenced by name from later generation calls.
package cache

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/genai"

	"github.com/inkwell-cms/aikit/document"
	"github.com/inkwell-cms/aikit/gemini"
)

// DefaultTTL applies when a cache is created without an explicit TTL.
const DefaultTTL = time.Hour

// Manager wraps the provider cached-content service.
type Manager struct {
	caches gemini.Caches
}

// New creates a cache manager over the given client.
func New(client gemini.Client) *Manager {
	return &Manager{caches: client.Caches()}
}

// CreateOptions carries the optional fields of Create.
type CreateOptions struct {
	SystemInstruction string
	Tools             []*genai.Tool
	TTL               time.Duration
}

// Create stores contents as reusable cached context for the given model.
// A zero TTL falls back to DefaultTTL.
func (m *Manager) Create(ctx context.Context, model string, contents []*genai.Content,
	opts *CreateOptions) (*genai.CachedContent, error) {
	if model == "" {
		return nil, fmt.Errorf("cache: model is required")
	}
	if len(contents) == 0 {
		return nil, fmt.Errorf("cache: contents are required")
	}
	if opts == nil {
		opts = &CreateOptions{}
	}
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	cfg := &genai.CreateCachedContentConfig{
		Contents: contents,
		TTL:      ttl,
		Tools:    opts.Tools,
	}
	if opts.SystemInstruction != "" {
		cfg.SystemInstruction = genai.NewContentFromText(opts.SystemInstruction, genai.RoleUser)
	}
	cached, err := m.caches.Create(ctx, model, cfg)
	if err != nil {
		return nil, fmt.Errorf("cache: create: %w", err)
	}
	return cached, nil
}

// CreateDocumentCache caches a set of loaded documents, one user turn per
// document, for repeated question answering over the same corpus.
func (m *Manager) CreateDocumentCache(ctx context.Context, model string,
	documents []*document.Document, opts *CreateOptions) (*genai.CachedContent, error) {
	contents := make([]*genai.Content, 0, len(documents))
	for _, doc := range documents {
		contents = append(contents, genai.NewContentFromText(doc.Content, genai.RoleUser))
	}
	return m.Create(ctx, model, contents, opts)
}

// Get fetches a cached content by name.
func (m *Manager) Get(ctx context.Context, name string) (*genai.CachedContent, error) {
	cached, err := m.caches.Get(ctx, name, nil)
	if err != nil {
		return nil, fmt.Errorf("cache: get %s: %w", name, err)
	}
	return cached, nil
}

// List returns one page of cached contents.
func (m *Manager) List(ctx context.Context, pageSize int, pageToken string) (*gemini.CachePage, error) {
	cfg := &genai.ListCachedContentsConfig{PageToken: pageToken}
	if pageSize > 0 {
		cfg.PageSize = int32(pageSize)
	}
	page, err := m.caches.List(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("cache: list: %w", err)
	}
	return page, nil
}

// UpdateTTL extends or shortens a cache's lifetime. Only the expiry is
// updatable; contents and model are immutable after creation.
func (m *Manager) UpdateTTL(ctx context.Context, name string, ttl time.Duration) (*genai.CachedContent, error) {
	if ttl <= 0 {
		return nil, fmt.Errorf("cache: ttl must be positive")
	}
	cached, err := m.caches.Update(ctx, name, &genai.UpdateCachedContentConfig{TTL: ttl})
	if err != nil {
		return nil, fmt.Errorf("cache: update %s: %w", name, err)
	}
	return cached, nil
}

// Delete removes a cached content by name.
func (m *Manager) Delete(ctx context.Context, name string) error {
	if err := m.caches.Delete(ctx, name, nil); err != nil {
		return fmt.Errorf("cache: delete %s: %w", name, err)
	}
	return nil
}

// IsValid reports whether the cache is still usable. Caches without an
// expiry never go stale.
func IsValid(cached *genai.CachedContent, now time.Time) bool {
	if cached.ExpireTime.IsZero() {
		return true
	}
	return now.Before(cached.ExpireTime)
}

// RemainingTTL returns the whole seconds left before expiry, clamped to
// zero. Caches without an expiry report zero.
func RemainingTTL(cached *genai.CachedContent, now time.Time) int64 {
	if cached.ExpireTime.IsZero() {
		return 0
	}
	remaining := int64(cached.ExpireTime.Sub(now) / time.Second)
	if remaining < 0 {
		return 0
	}
	return remaining
}
