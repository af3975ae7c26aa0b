//
// Inkwell is pleased to support the open source community by making aikit available.
//
// Copyright (C) 2026 Inkwell.  All rights reserved.
//
// aikit is licensed under the Apache License Version 2.0.
//
//

// Package function provides function-based tool implementations: any Go
// function taking a typed input struct can be wrapped as a callable tool,
// with its JSON schema reflected from the input type.
package function

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"

	"github.com/inkwell-cms/aikit/log"
	"github.com/inkwell-cms/aikit/tool"
)

// Tool wraps a typed function as a CallableTool. The input schema is
// generated from I unless overridden.
type Tool[I, O any] struct {
	name         string
	description  string
	inputSchema  map[string]any
	outputSchema map[string]any
	fn           func(context.Context, I) (O, error)
}

type options struct {
	name         string
	description  string
	inputSchema  map[string]any
	outputSchema map[string]any
}

// Option configures a function tool.
type Option func(*options)

// WithName sets the tool name.
//
// Tool names should match ^[a-zA-Z0-9_-]+$ for maximum model compatibility.
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// WithDescription sets the tool description.
func WithDescription(description string) Option {
	return func(o *options) {
		o.description = description
	}
}

// WithInputSchema overrides the generated input schema.
func WithInputSchema(schema map[string]any) Option {
	return func(o *options) {
		o.inputSchema = schema
	}
}

// WithOutputSchema sets an explicit output schema.
func WithOutputSchema(schema map[string]any) Option {
	return func(o *options) {
		o.outputSchema = schema
	}
}

// New creates a function tool from fn. I must serialize to a JSON object;
// anything else fails declaration validation.
func New[I, O any](fn func(context.Context, I) (O, error), opts ...Option) (*Tool[I, O], error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.name == "" {
		log.Warnf("function tool: name is empty")
	}
	if o.description == "" {
		log.Warnf("function tool: description is empty")
	}

	inputSchema := o.inputSchema
	if inputSchema == nil {
		var empty I
		schema, err := reflectSchema(empty)
		if err != nil {
			return nil, fmt.Errorf("function tool %q: input schema: %w", o.name, err)
		}
		inputSchema = schema
	}

	t := &Tool[I, O]{
		name:         o.name,
		description:  o.description,
		inputSchema:  inputSchema,
		outputSchema: o.outputSchema,
		fn:           fn,
	}
	if err := tool.ValidateDeclaration(t.Declaration()); err != nil {
		return nil, err
	}
	return t, nil
}

// Declaration returns the tool's metadata.
func (t *Tool[I, O]) Declaration() *tool.Declaration {
	return &tool.Declaration{
		Name:         t.name,
		Description:  t.description,
		InputSchema:  t.inputSchema,
		OutputSchema: t.outputSchema,
	}
}

// Call unmarshals the model-supplied arguments into I and executes the
// wrapped function.
func (t *Tool[I, O]) Call(ctx context.Context, args map[string]any) (any, error) {
	data, err := json.Marshal(args)
	if err != nil {
		return nil, fmt.Errorf("function tool %q: marshal args: %w", t.name, err)
	}
	var input I
	if err := json.Unmarshal(data, &input); err != nil {
		return nil, fmt.Errorf("function tool %q: unmarshal args: %w", t.name, err)
	}
	return t.fn(ctx, input)
}

// reflectSchema generates an inline JSON-schema object for v's type.
func reflectSchema(v any) (map[string]any, error) {
	reflector := &jsonschema.Reflector{
		DoNotReference: true,
		Anonymous:      true,
	}
	schema := reflector.Reflect(v)
	data, err := json.Marshal(schema)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	// The $schema and $id keywords are noise in a tool declaration.
	delete(m, "$schema")
	delete(m, "$id")
	return m, nil
}
