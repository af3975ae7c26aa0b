//
// Inkwell is pleased to support the open source community by making aikit available.
//
// Copyright (C) 2026 Inkwell.  All rights reserved.
//
// aikit is licensed under the Apache License Version 2.0.
//
//

// Package config holds provider credentials and default model settings for aikit.
//
// A Config is constructed once at process start and passed by reference into
// every feature package. Construction fails fast when neither an API key nor
// a complete Vertex AI project/location pair is resolvable.
package config

import (
	"errors"
	"fmt"
	"os"

	"google.golang.org/genai"
	"gopkg.in/yaml.v3"
)

// Default model names used when none are configured.
const (
	DefaultTextModel      = "gemini-2.5-flash"
	DefaultImageModel     = "imagen-4.0-generate-001"
	DefaultEmbeddingModel = "gemini-embedding-001"
)

// Environment variables consulted for credential defaults.
const (
	envAPIKey       = "GOOGLE_API_KEY"
	envGeminiAPIKey = "GEMINI_API_KEY"
	envProject      = "GOOGLE_CLOUD_PROJECT"
	envLocation     = "GOOGLE_CLOUD_LOCATION"
	envUseVertexAI  = "GOOGLE_GENAI_USE_VERTEXAI"
)

// Configuration errors raised at construction time.
var (
	// ErrNoCredentials indicates that neither an API key nor a Vertex AI
	// project/location pair could be resolved.
	ErrNoCredentials = errors.New("config: no credentials: set an API key or a Vertex AI project/location")
	// ErrAmbiguousCredentials indicates that both credential modes were
	// supplied explicitly.
	ErrAmbiguousCredentials = errors.New("config: both API key and Vertex AI credentials supplied")
	// ErrIncompleteVertexConfig indicates a Vertex AI configuration missing
	// either the project or the location.
	ErrIncompleteVertexConfig = errors.New("config: Vertex AI requires both project and location")
)

// Config holds provider credentials and library-wide defaults.
//
// Exactly one credential mode is populated after New returns: either APIKey,
// or the Project/Location pair with UseVertexAI set.
type Config struct {
	APIKey      string `yaml:"api_key"`
	Project     string `yaml:"project"`
	Location    string `yaml:"location"`
	UseVertexAI bool   `yaml:"use_vertex_ai"`

	TextModel      string `yaml:"text_model"`
	ImageModel     string `yaml:"image_model"`
	EmbeddingModel string `yaml:"embedding_model"`

	// GenerationConfig holds default generation parameters merged under
	// per-call overrides.
	GenerationConfig *genai.GenerateContentConfig `yaml:"-"`
	// SafetySettings holds default safety settings applied when a call does
	// not specify its own.
	SafetySettings []*genai.SafetySetting `yaml:"-"`
}

// Option configures a Config.
type Option func(*Config)

// WithAPIKey sets the Gemini API key credential.
func WithAPIKey(key string) Option {
	return func(c *Config) {
		c.APIKey = key
	}
}

// WithVertexAI sets the Vertex AI project/location credential pair.
func WithVertexAI(project, location string) Option {
	return func(c *Config) {
		c.Project = project
		c.Location = location
		c.UseVertexAI = true
	}
}

// WithTextModel sets the default text generation model.
func WithTextModel(model string) Option {
	return func(c *Config) {
		c.TextModel = model
	}
}

// WithImageModel sets the default image generation model.
func WithImageModel(model string) Option {
	return func(c *Config) {
		c.ImageModel = model
	}
}

// WithEmbeddingModel sets the default embedding model.
func WithEmbeddingModel(model string) Option {
	return func(c *Config) {
		c.EmbeddingModel = model
	}
}

// WithGenerationConfig sets the default generation parameters.
func WithGenerationConfig(gc *genai.GenerateContentConfig) Option {
	return func(c *Config) {
		c.GenerationConfig = gc
	}
}

// WithSafetySettings sets the default safety settings.
func WithSafetySettings(settings []*genai.SafetySetting) Option {
	return func(c *Config) {
		c.SafetySettings = settings
	}
}

// New builds a Config from the given options, filling in defaults from the
// environment. No network calls are made.
func New(opts ...Option) (*Config, error) {
	c := &Config{}
	for _, opt := range opts {
		opt(c)
	}
	if c.APIKey != "" && c.UseVertexAI {
		return nil, ErrAmbiguousCredentials
	}
	c.applyEnvDefaults()
	if err := c.validate(); err != nil {
		return nil, err
	}
	c.applyModelDefaults()
	return c, nil
}

// Load reads a YAML config file and applies the same defaulting and
// validation as New. Options are applied after the file contents, so they
// override file values.
func Load(path string, opts ...Option) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	c := &Config{}
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	for _, opt := range opts {
		opt(c)
	}
	c.applyEnvDefaults()
	if err := c.validate(); err != nil {
		return nil, err
	}
	c.applyModelDefaults()
	return c, nil
}

func (c *Config) applyEnvDefaults() {
	if c.APIKey == "" && !c.UseVertexAI {
		if key := os.Getenv(envAPIKey); key != "" {
			c.APIKey = key
		} else if key := os.Getenv(envGeminiAPIKey); key != "" {
			c.APIKey = key
		}
	}
	if c.APIKey == "" && !c.UseVertexAI && os.Getenv(envUseVertexAI) == "true" {
		c.Project = os.Getenv(envProject)
		c.Location = os.Getenv(envLocation)
		c.UseVertexAI = true
	}
}

func (c *Config) applyModelDefaults() {
	if c.TextModel == "" {
		c.TextModel = DefaultTextModel
	}
	if c.ImageModel == "" {
		c.ImageModel = DefaultImageModel
	}
	if c.EmbeddingModel == "" {
		c.EmbeddingModel = DefaultEmbeddingModel
	}
}

func (c *Config) validate() error {
	if c.UseVertexAI {
		if c.Project == "" || c.Location == "" {
			return ErrIncompleteVertexConfig
		}
		return nil
	}
	if c.APIKey == "" {
		return ErrNoCredentials
	}
	return nil
}

// ClientConfig converts the Config into the provider SDK's client config.
func (c *Config) ClientConfig() *genai.ClientConfig {
	if c.UseVertexAI {
		return &genai.ClientConfig{
			Backend:  genai.BackendVertexAI,
			Project:  c.Project,
			Location: c.Location,
		}
	}
	return &genai.ClientConfig{
		Backend: genai.BackendGeminiAPI,
		APIKey:  c.APIKey,
	}
}

// Clone returns a copy of the Config. The generation config and safety
// settings are copied shallowly; treat the snapshot as read-only.
func (c *Config) Clone() *Config {
	clone := *c
	if c.GenerationConfig != nil {
		gc := *c.GenerationConfig
		clone.GenerationConfig = &gc
	}
	clone.SafetySettings = append([]*genai.SafetySetting(nil), c.SafetySettings...)
	return &clone
}

// MergeGenerationConfig shallow-merges patch over the current default
// generation config, key by key. A nil patch is a no-op.
func (c *Config) MergeGenerationConfig(patch *genai.GenerateContentConfig) {
	c.GenerationConfig = MergeGenerationConfigs(c.GenerationConfig, patch)
}

// MergeGenerationConfigs returns base with every populated field of patch
// applied over it. Neither argument is mutated.
func MergeGenerationConfigs(base, patch *genai.GenerateContentConfig) *genai.GenerateContentConfig {
	if base == nil && patch == nil {
		return nil
	}
	merged := &genai.GenerateContentConfig{}
	if base != nil {
		*merged = *base
	}
	if patch == nil {
		return merged
	}
	if patch.SystemInstruction != nil {
		merged.SystemInstruction = patch.SystemInstruction
	}
	if patch.Temperature != nil {
		merged.Temperature = patch.Temperature
	}
	if patch.TopP != nil {
		merged.TopP = patch.TopP
	}
	if patch.TopK != nil {
		merged.TopK = patch.TopK
	}
	if patch.CandidateCount != 0 {
		merged.CandidateCount = patch.CandidateCount
	}
	if patch.MaxOutputTokens != 0 {
		merged.MaxOutputTokens = patch.MaxOutputTokens
	}
	if len(patch.StopSequences) > 0 {
		merged.StopSequences = patch.StopSequences
	}
	if patch.PresencePenalty != nil {
		merged.PresencePenalty = patch.PresencePenalty
	}
	if patch.FrequencyPenalty != nil {
		merged.FrequencyPenalty = patch.FrequencyPenalty
	}
	if patch.Seed != nil {
		merged.Seed = patch.Seed
	}
	if patch.ResponseMIMEType != "" {
		merged.ResponseMIMEType = patch.ResponseMIMEType
	}
	if patch.ResponseSchema != nil {
		merged.ResponseSchema = patch.ResponseSchema
	}
	if patch.ResponseJsonSchema != nil {
		merged.ResponseJsonSchema = patch.ResponseJsonSchema
	}
	if len(patch.ResponseModalities) > 0 {
		merged.ResponseModalities = patch.ResponseModalities
	}
	if len(patch.SafetySettings) > 0 {
		merged.SafetySettings = patch.SafetySettings
	}
	if len(patch.Tools) > 0 {
		merged.Tools = patch.Tools
	}
	if patch.ToolConfig != nil {
		merged.ToolConfig = patch.ToolConfig
	}
	if patch.ThinkingConfig != nil {
		merged.ThinkingConfig = patch.ThinkingConfig
	}
	if patch.CachedContent != "" {
		merged.CachedContent = patch.CachedContent
	}
	return merged
}
