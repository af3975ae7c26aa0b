//
// Inkwell is pleased to support the open source community by making aikit available.
//
// Copyright (C) 2026 Inkwell.  All rights reserved.
//
// aikit is licensed under the Apache License Version 2.0.
//
//

// Package chat provides stateful multi-turn sessions over the gemini
// generation facade, including the tool/function-calling loop.
package chat

import (
	"context"

	"github.com/google/uuid"
	"google.golang.org/genai"

	"github.com/inkwell-cms/aikit/gemini"
	"github.com/inkwell-cms/aikit/tool"
)

// RoleFunction tags a turn carrying function responses back to the model.
const RoleFunction genai.Role = "function"

// defaultMaxToolTurns bounds the function-calling loop.
const defaultMaxToolTurns = 5

// Session is an in-memory multi-turn conversation. History is owned
// exclusively by the session and mutated only by its own send calls.
//
// A session is not safe for concurrent sends: two concurrent SendMessage
// calls on one session risk interleaved history appends. Issue sends
// serially per session.
type Session struct {
	id        string
	generator *gemini.Generator
	history   []*genai.Content

	model             string
	systemInstruction string
	tools             *tool.Set
	toolConfig        *genai.ToolConfig
	config            *genai.GenerateContentConfig
	safetySettings    []*genai.SafetySetting
	maxToolTurns      int
	errOnToolBudget   bool
}

// Option configures a Session.
type Option func(*Session)

// WithModel overrides the default text model for this session.
func WithModel(model string) Option {
	return func(s *Session) {
		s.model = model
	}
}

// WithSystemInstruction sets the session's system instruction.
func WithSystemInstruction(text string) Option {
	return func(s *Session) {
		s.systemInstruction = text
	}
}

// WithHistory seeds the session with prior turns.
func WithHistory(history []*genai.Content) Option {
	return func(s *Session) {
		s.history = append(s.history, history...)
	}
}

// WithTools attaches a tool set; the session dispatches model-requested
// calls through it.
func WithTools(set *tool.Set) Option {
	return func(s *Session) {
		s.tools = set
	}
}

// WithToolConfig overrides the function-calling configuration.
func WithToolConfig(tc *genai.ToolConfig) Option {
	return func(s *Session) {
		s.toolConfig = tc
	}
}

// WithGenerationConfig sets per-session generation overrides.
func WithGenerationConfig(config *genai.GenerateContentConfig) Option {
	return func(s *Session) {
		s.config = config
	}
}

// WithSafetySettings sets per-session safety settings.
func WithSafetySettings(settings []*genai.SafetySetting) Option {
	return func(s *Session) {
		s.safetySettings = settings
	}
}

// WithMaxToolTurns bounds the number of model calls in one tool loop,
// 5 by default.
func WithMaxToolTurns(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.maxToolTurns = n
		}
	}
}

// WithErrOnToolBudget makes the tool loop return ErrToolBudgetExceeded when
// the turn budget runs out with calls still pending, instead of returning
// the partial response.
func WithErrOnToolBudget(enabled bool) Option {
	return func(s *Session) {
		s.errOnToolBudget = enabled
	}
}

// New creates a chat session.
func New(generator *gemini.Generator, opts ...Option) *Session {
	s := &Session{
		id:           uuid.NewString(),
		generator:    generator,
		maxToolTurns: defaultMaxToolTurns,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ID returns the session's unique identifier.
func (s *Session) ID() string {
	return s.id
}

// History returns a snapshot of the conversation so far. Mutating the
// returned slice does not affect the session.
func (s *Session) History() []*genai.Content {
	return append([]*genai.Content(nil), s.history...)
}

// SendMessage appends the user turn, issues a generation call over the full
// accumulated history, and appends the model turn on success. When tools are
// attached and the model requests calls, the tool loop runs to completion
// before returning. A failed send leaves the history unchanged.
func (s *Session) SendMessage(ctx context.Context, text string) (*gemini.Response, error) {
	userTurn := genai.NewContentFromText(text, genai.RoleUser)
	working := append(s.History(), userTurn)

	rsp, err := s.generator.Generate(ctx, working, s.callOptions()...)
	if err != nil {
		return nil, err
	}
	working = append(working, s.modelTurn(rsp))

	if s.tools != nil && rsp.HasFunctionCalls() {
		rsp, working, err = s.runToolLoop(ctx, rsp, working)
		if err != nil {
			return nil, err
		}
	}

	s.history = working
	return rsp, nil
}

// SendMessageStream is SendMessage with a streamed response. The returned
// channel follows the gemini streaming contract: incremental chunks followed
// by one terminal response. History is committed only when the terminal
// response carries no error; the tool loop does not run on streamed sends.
func (s *Session) SendMessageStream(ctx context.Context, text string) <-chan *gemini.Response {
	userTurn := genai.NewContentFromText(text, genai.RoleUser)
	working := append(s.History(), userTurn)

	out := make(chan *gemini.Response, 1)
	inner := s.generator.GenerateStream(ctx, working, s.callOptions()...)
	go func() {
		defer close(out)
		for rsp := range inner {
			if rsp.Done && rsp.Error == nil {
				s.history = append(working, s.modelTurn(rsp))
			}
			select {
			case out <- rsp:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// callOptions assembles the per-call options from session state.
func (s *Session) callOptions() []gemini.CallOption {
	var opts []gemini.CallOption
	if s.model != "" {
		opts = append(opts, gemini.WithModel(s.model))
	}
	if s.systemInstruction != "" {
		opts = append(opts, gemini.WithSystemInstruction(s.systemInstruction))
	}
	if s.config != nil {
		opts = append(opts, gemini.WithGenerationConfig(s.config))
	}
	if s.tools != nil && s.tools.Len() > 0 {
		opts = append(opts, gemini.WithTools(s.tools.Declarations()))
	}
	if s.toolConfig != nil {
		opts = append(opts, gemini.WithToolConfig(s.toolConfig))
	}
	if len(s.safetySettings) > 0 {
		opts = append(opts, gemini.WithSafetySettings(s.safetySettings))
	}
	return opts
}

// modelTurn rebuilds the model's turn for the history. The raw candidate
// content is preferred so function-call parts survive round-tripping.
func (s *Session) modelTurn(rsp *gemini.Response) *genai.Content {
	for _, candidate := range rsp.Candidates {
		if candidate.Content != nil {
			return candidate.Content
		}
	}
	return genai.NewContentFromText(rsp.Text, genai.RoleModel)
}
