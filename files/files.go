//
// Inkwell is pleased to support the open source community by making aikit available.
//
// Copyright (C) 2026 Inkwell.  All rights reserved.
//
// aikit is licensed under the Apache License Version 2.0.
//
//

// Package files manages the provider file lifecycle: upload, poll until
// processed, reference from prompts, and cleanup.
package files

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"google.golang.org/genai"

	"github.com/inkwell-cms/aikit/gemini"
	"github.com/inkwell-cms/aikit/log"
	"github.com/inkwell-cms/aikit/telemetry"
)

const (
	// DefaultPollInterval is the fixed delay between processing polls.
	DefaultPollInterval = 2 * time.Second
	// DefaultMaxAttempts bounds the processing poll loop.
	DefaultMaxAttempts = 30
)

// ProcessingError reports a file that reached the failed state while being
// processed by the provider.
type ProcessingError struct {
	Name    string
	Message string
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("files: processing of %s failed: %s", e.Name, e.Message)
}

// TimeoutError reports a poll loop that exhausted its attempt budget without
// the file reaching a terminal state. Unlike ProcessingError the final state
// of the file is unknown.
type TimeoutError struct {
	Name     string
	Attempts int
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("files: %s still processing after %d polls", e.Name, e.Attempts)
}

// Manager wraps the provider file service.
type Manager struct {
	files        gemini.Files
	pollInterval time.Duration
	maxAttempts  int
}

// Option configures a Manager.
type Option func(*Manager)

// WithPollInterval overrides the delay between processing polls.
func WithPollInterval(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.pollInterval = d
		}
	}
}

// WithMaxAttempts overrides the poll attempt budget.
func WithMaxAttempts(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.maxAttempts = n
		}
	}
}

// New creates a file manager over the given client.
func New(client gemini.Client, opts ...Option) *Manager {
	m := &Manager{
		files:        client.Files(),
		pollInterval: DefaultPollInterval,
		maxAttempts:  DefaultMaxAttempts,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Upload streams the reader's contents to the provider. The MIME type is
// required and must be on the supported list.
func (m *Manager) Upload(ctx context.Context, r io.Reader, mimeType, displayName string) (*genai.File, error) {
	if !IsSupportedMIMEType(mimeType) {
		return nil, fmt.Errorf("files: unsupported mime type %q", mimeType)
	}
	ctx, span := telemetry.StartSpan(ctx, telemetry.OperationUploadFile, "")
	f, err := m.files.Upload(ctx, r, &genai.UploadFileConfig{
		MIMEType:    mimeType,
		DisplayName: displayName,
	})
	telemetry.EndSpan(span, err)
	if err != nil {
		return nil, fmt.Errorf("files: upload: %w", err)
	}
	return f, nil
}

// UploadPath uploads the file at the given local path, inferring the MIME
// type from its extension.
func (m *Manager) UploadPath(ctx context.Context, path, displayName string) (*genai.File, error) {
	mimeType := mime.TypeByExtension(filepath.Ext(path))
	if idx := strings.IndexByte(mimeType, ';'); idx >= 0 {
		mimeType = mimeType[:idx]
	}
	if !IsSupportedMIMEType(mimeType) {
		return nil, fmt.Errorf("files: unsupported mime type %q for %s", mimeType, path)
	}
	if displayName == "" {
		displayName = filepath.Base(path)
	}
	ctx, span := telemetry.StartSpan(ctx, telemetry.OperationUploadFile, "")
	f, err := m.files.UploadFromPath(ctx, path, &genai.UploadFileConfig{
		MIMEType:    mimeType,
		DisplayName: displayName,
	})
	telemetry.EndSpan(span, err)
	if err != nil {
		return nil, fmt.Errorf("files: upload %s: %w", path, err)
	}
	return f, nil
}

// Get fetches current metadata for a file by name or URI.
func (m *Manager) Get(ctx context.Context, nameOrURI string) (*genai.File, error) {
	return m.files.Get(ctx, normalizeName(nameOrURI), nil)
}

// WaitForProcessing polls the file at a fixed interval until it leaves the
// processing state. It returns the active file metadata, a *ProcessingError
// when the provider reports failure, or a *TimeoutError when the attempt
// budget runs out first.
func (m *Manager) WaitForProcessing(ctx context.Context, nameOrURI string) (*genai.File, error) {
	name := normalizeName(nameOrURI)
	for attempt := 0; attempt < m.maxAttempts; attempt++ {
		f, err := m.files.Get(ctx, name, nil)
		if err != nil {
			return nil, fmt.Errorf("files: poll %s: %w", name, err)
		}
		switch f.State {
		case genai.FileStateActive:
			return f, nil
		case genai.FileStateFailed:
			return nil, &ProcessingError{Name: name, Message: fileErrorMessage(f)}
		}
		select {
		case <-time.After(m.pollInterval):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return nil, &TimeoutError{Name: name, Attempts: m.maxAttempts}
}

// UploadAndWait composes Upload and WaitForProcessing.
func (m *Manager) UploadAndWait(ctx context.Context, r io.Reader, mimeType, displayName string) (*genai.File, error) {
	f, err := m.Upload(ctx, r, mimeType, displayName)
	if err != nil {
		return nil, err
	}
	if f.State == genai.FileStateActive {
		return f, nil
	}
	return m.WaitForProcessing(ctx, f.Name)
}

// List returns one page of uploaded files.
func (m *Manager) List(ctx context.Context, pageSize int, pageToken string) (*gemini.FilePage, error) {
	cfg := &genai.ListFilesConfig{PageToken: pageToken}
	if pageSize > 0 {
		cfg.PageSize = int32(pageSize)
	}
	return m.files.List(ctx, cfg)
}

// Delete removes a file by name or URI.
func (m *Manager) Delete(ctx context.Context, nameOrURI string) error {
	if err := m.files.Delete(ctx, normalizeName(nameOrURI), nil); err != nil {
		return fmt.Errorf("files: delete %s: %w", nameOrURI, err)
	}
	return nil
}

// UploadAll uploads the given local paths in parallel. Any failure fails the
// whole batch; results keep the order of the input paths.
func (m *Manager) UploadAll(ctx context.Context, paths []string) ([]*genai.File, error) {
	results := make([]*genai.File, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	for i, path := range paths {
		g.Go(func() error {
			f, err := m.UploadPath(ctx, path, "")
			if err != nil {
				return err
			}
			results[i] = f
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// DeleteAll deletes the given files in parallel. Any failure fails the whole
// batch.
func (m *Manager) DeleteAll(ctx context.Context, names []string) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, name := range names {
		g.Go(func() error {
			return m.Delete(ctx, name)
		})
	}
	return g.Wait()
}

// CleanupExpired deletes every uploaded file past its expiration time and
// returns the number deleted.
func (m *Manager) CleanupExpired(ctx context.Context) (int, error) {
	deleted := 0
	now := time.Now()
	for f, err := range m.files.All(ctx) {
		if err != nil {
			return deleted, fmt.Errorf("files: list: %w", err)
		}
		if !IsExpired(f, now) {
			continue
		}
		if err := m.Delete(ctx, f.Name); err != nil {
			return deleted, err
		}
		log.Debugf("files: cleaned up expired file %s", f.Name)
		deleted++
	}
	return deleted, nil
}

// ReferencePart converts an uploaded file into a file-reference part usable
// in prompt contents.
func ReferencePart(f *genai.File) *genai.Part {
	return genai.NewPartFromURI(f.URI, f.MIMEType)
}

// IsExpired reports whether the file is past its expiration time. Files
// without an expiration never expire.
func IsExpired(f *genai.File, now time.Time) bool {
	if f.ExpirationTime.IsZero() {
		return false
	}
	return now.After(f.ExpirationTime)
}

// normalizeName accepts either a bare file name ("files/abc123") or a full
// resource URI and returns the name form the get/delete endpoints expect.
func normalizeName(nameOrURI string) string {
	if idx := strings.Index(nameOrURI, "files/"); idx >= 0 {
		return nameOrURI[idx:]
	}
	return nameOrURI
}

func fileErrorMessage(f *genai.File) string {
	if f.Error != nil && f.Error.Message != "" {
		return f.Error.Message
	}
	return "unknown provider error"
}
