//
// Inkwell is pleased to support the open source community by making aikit available.
//
// Copyright (C) 2026 Inkwell.  All rights reserved.
//
// aikit is licensed under the Apache License Version 2.0.
//
//

// Package tool defines the callable-tool abstraction used by the chat
// function-calling loop.
package tool

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// Declaration describes a callable tool to the model.
type Declaration struct {
	// Name uniquely identifies the tool within a Set.
	Name string
	// Description tells the model when to invoke the tool.
	Description string
	// InputSchema is a JSON-schema object describing the arguments. Its
	// top-level type must be "object".
	InputSchema map[string]any
	// OutputSchema optionally describes the result shape.
	OutputSchema map[string]any
}

// CallableTool is a tool the chat loop can dispatch to.
type CallableTool interface {
	// Declaration returns the tool's metadata.
	Declaration() *Declaration
	// Call executes the tool with the model-supplied arguments. The returned
	// value must be JSON-serializable.
	Call(ctx context.Context, args map[string]any) (any, error)
}

// HandlerFunc adapts a bare function into the tool handler shape.
type HandlerFunc func(ctx context.Context, args map[string]any) (any, error)

// handlerTool wraps a name, description, schema and handler into a
// CallableTool.
type handlerTool struct {
	decl    *Declaration
	handler HandlerFunc
}

// New builds a CallableTool from a handler function and an explicit
// JSON-schema object. The schema's top-level type must be "object" and its
// required list may only reference declared property keys.
func New(name, description string, schema map[string]any, handler HandlerFunc) (CallableTool, error) {
	decl := &Declaration{
		Name:        name,
		Description: description,
		InputSchema: schema,
	}
	if err := ValidateDeclaration(decl); err != nil {
		return nil, err
	}
	if handler == nil {
		return nil, fmt.Errorf("tool %q: handler cannot be nil", name)
	}
	return &handlerTool{decl: decl, handler: handler}, nil
}

func (t *handlerTool) Declaration() *Declaration {
	return t.decl
}

func (t *handlerTool) Call(ctx context.Context, args map[string]any) (any, error) {
	return t.handler(ctx, args)
}

// ValidateDeclaration checks the structural invariants of a declaration.
func ValidateDeclaration(decl *Declaration) error {
	if decl.Name == "" {
		return fmt.Errorf("tool declaration: name cannot be empty")
	}
	schema := decl.InputSchema
	if schema == nil {
		return nil
	}
	if typ, _ := schema["type"].(string); typ != "object" {
		return fmt.Errorf("tool %q: parameters schema type must be \"object\", got %q", decl.Name, typ)
	}
	properties, _ := schema["properties"].(map[string]any)
	required, ok := schema["required"].([]any)
	if !ok {
		if typed, isTyped := schema["required"].([]string); isTyped {
			for _, key := range typed {
				required = append(required, key)
			}
		}
	}
	for _, item := range required {
		key, _ := item.(string)
		if _, declared := properties[key]; !declared {
			return fmt.Errorf("tool %q: required key %q is not a declared property", decl.Name, key)
		}
	}
	return nil
}

// Set is a uniquely-named collection of callable tools, convertible to the
// provider's tool declarations.
type Set struct {
	tools map[string]CallableTool
	order []string
}

// NewSet builds a Set, enforcing name uniqueness.
func NewSet(tools ...CallableTool) (*Set, error) {
	s := &Set{tools: make(map[string]CallableTool, len(tools))}
	for _, t := range tools {
		decl := t.Declaration()
		if err := ValidateDeclaration(decl); err != nil {
			return nil, err
		}
		if _, exists := s.tools[decl.Name]; exists {
			return nil, fmt.Errorf("tool set: duplicate tool name %q", decl.Name)
		}
		s.tools[decl.Name] = t
		s.order = append(s.order, decl.Name)
	}
	return s, nil
}

// Get returns the tool registered under name.
func (s *Set) Get(name string) (CallableTool, bool) {
	t, ok := s.tools[name]
	return t, ok
}

// Names returns the tool names in registration order.
func (s *Set) Names() []string {
	return append([]string(nil), s.order...)
}

// Len returns the number of registered tools.
func (s *Set) Len() int {
	return len(s.tools)
}

// Declarations converts the set into provider tool declarations.
func (s *Set) Declarations() []*genai.Tool {
	result := make([]*genai.Tool, 0, len(s.order))
	for _, name := range s.order {
		decl := s.tools[name].Declaration()
		funcDeclaration := &genai.FunctionDeclaration{
			Name:                 decl.Name,
			Description:          decl.Description,
			ParametersJsonSchema: decl.InputSchema,
		}
		if decl.OutputSchema != nil {
			funcDeclaration.ResponseJsonSchema = decl.OutputSchema
		}
		result = append(result, &genai.Tool{
			FunctionDeclarations: []*genai.FunctionDeclaration{funcDeclaration},
		})
	}
	return result
}
