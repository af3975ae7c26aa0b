//
// Inkwell is pleased to support the open source community by making aikit available.
//
// Copyright (C) 2026 Inkwell.  All rights reserved.
//
// aikit is licensed under the Apache License Version 2.0.
//
//

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func clearCredentialEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{envAPIKey, envGeminiAPIKey, envProject, envLocation, envUseVertexAI} {
		t.Setenv(key, "")
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		opts    []Option
		wantErr error
		check   func(t *testing.T, c *Config)
	}{
		{
			name:    "no credentials",
			wantErr: ErrNoCredentials,
		},
		{
			name: "api key option",
			opts: []Option{WithAPIKey("test-key")},
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, "test-key", c.APIKey)
				assert.False(t, c.UseVertexAI)
				assert.Equal(t, DefaultTextModel, c.TextModel)
				assert.Equal(t, DefaultImageModel, c.ImageModel)
				assert.Equal(t, DefaultEmbeddingModel, c.EmbeddingModel)
			},
		},
		{
			name: "api key from env",
			env:  map[string]string{envAPIKey: "env-key"},
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, "env-key", c.APIKey)
			},
		},
		{
			name: "gemini env var fallback",
			env:  map[string]string{envGeminiAPIKey: "gemini-key"},
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, "gemini-key", c.APIKey)
			},
		},
		{
			name: "vertex pair",
			opts: []Option{WithVertexAI("proj", "us-central1")},
			check: func(t *testing.T, c *Config) {
				assert.True(t, c.UseVertexAI)
				assert.Equal(t, "proj", c.Project)
				assert.Equal(t, "us-central1", c.Location)
			},
		},
		{
			name:    "vertex missing location",
			opts:    []Option{func(c *Config) { c.Project = "proj"; c.UseVertexAI = true }},
			wantErr: ErrIncompleteVertexConfig,
		},
		{
			name:    "both modes",
			opts:    []Option{WithAPIKey("k"), WithVertexAI("proj", "loc")},
			wantErr: ErrAmbiguousCredentials,
		},
		{
			name: "vertex from env",
			env: map[string]string{
				envUseVertexAI: "true",
				envProject:     "env-proj",
				envLocation:    "europe-west4",
			},
			check: func(t *testing.T, c *Config) {
				assert.True(t, c.UseVertexAI)
				assert.Equal(t, "env-proj", c.Project)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearCredentialEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			c, err := New(tt.opts...)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.check(t, c)
		})
	}
}

func TestClientConfig(t *testing.T) {
	clearCredentialEnv(t)

	c, err := New(WithAPIKey("k"))
	require.NoError(t, err)
	cc := c.ClientConfig()
	assert.Equal(t, genai.BackendGeminiAPI, cc.Backend)
	assert.Equal(t, "k", cc.APIKey)

	c, err = New(WithVertexAI("proj", "loc"))
	require.NoError(t, err)
	cc = c.ClientConfig()
	assert.Equal(t, genai.BackendVertexAI, cc.Backend)
	assert.Equal(t, "proj", cc.Project)
	assert.Equal(t, "loc", cc.Location)
}

func TestLoad(t *testing.T) {
	clearCredentialEnv(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "aikit.yaml")
	content := []byte("api_key: file-key\ntext_model: gemini-2.5-pro\n")
	require.NoError(t, os.WriteFile(path, content, 0o600))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "file-key", c.APIKey)
	assert.Equal(t, "gemini-2.5-pro", c.TextModel)
	assert.Equal(t, DefaultImageModel, c.ImageModel)

	// Options override file values.
	c, err = Load(path, WithTextModel("gemini-2.5-flash-lite"))
	require.NoError(t, err)
	assert.Equal(t, "gemini-2.5-flash-lite", c.TextModel)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestClone(t *testing.T) {
	clearCredentialEnv(t)

	c, err := New(
		WithAPIKey("k"),
		WithGenerationConfig(&genai.GenerateContentConfig{Temperature: genai.Ptr[float32](0.2)}),
	)
	require.NoError(t, err)

	snapshot := c.Clone()
	snapshot.TextModel = "changed"
	snapshot.GenerationConfig.Temperature = genai.Ptr[float32](0.9)

	assert.Equal(t, DefaultTextModel, c.TextModel)
	assert.Equal(t, float32(0.2), *c.GenerationConfig.Temperature)
}

func TestMergeGenerationConfigs(t *testing.T) {
	base := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr[float32](0.5),
		MaxOutputTokens: 1024,
		StopSequences:   []string{"END"},
	}
	patch := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr[float32](0.9),
		ResponseMIMEType: "application/json",
	}

	merged := MergeGenerationConfigs(base, patch)

	assert.Equal(t, float32(0.9), *merged.Temperature)
	assert.Equal(t, int32(1024), merged.MaxOutputTokens)
	assert.Equal(t, []string{"END"}, merged.StopSequences)
	assert.Equal(t, "application/json", merged.ResponseMIMEType)
	// Base untouched.
	assert.Equal(t, float32(0.5), *base.Temperature)

	assert.Nil(t, MergeGenerationConfigs(nil, nil))
	assert.Equal(t, base, MergeGenerationConfigs(base, nil))
}
