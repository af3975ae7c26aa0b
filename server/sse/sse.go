//
// Inkwell is pleased to support the open source community by making aikit available.
//
// Copyright (C) 2026 Inkwell.  All rights reserved.
//
// aikit is licensed under the Apache License Version 2.0.
//
//

// Package sse exposes chat streaming over HTTP as Server-Sent Events, for
// admin UIs that consume generation progress live.
package sse

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/inkwell-cms/aikit/chat"
	"github.com/inkwell-cms/aikit/gemini"
	"github.com/inkwell-cms/aikit/log"
	"github.com/inkwell-cms/aikit/stream"
)

const (
	defaultAddress = ":8080"
	defaultPath    = "/v1/chat/stream"
)

// Service relays chat streams to HTTP clients as text/event-stream.
type Service struct {
	address     string
	path        string
	generator   *gemini.Generator
	sessionOpts []chat.Option
	origins     []string

	mu       sync.Mutex
	sessions map[string]*chat.Session

	httpServer *http.Server
}

// Option configures a Service.
type Option func(*Service)

// WithAddress sets the listen address, ":8080" by default.
func WithAddress(address string) Option {
	return func(s *Service) {
		s.address = address
	}
}

// WithPath sets the streaming endpoint path.
func WithPath(path string) Option {
	return func(s *Service) {
		s.path = path
	}
}

// WithSessionOptions sets the chat options applied to every new session.
func WithSessionOptions(opts ...chat.Option) Option {
	return func(s *Service) {
		s.sessionOpts = opts
	}
}

// WithAllowedOrigins restricts CORS to the given origins. All origins are
// allowed by default.
func WithAllowedOrigins(origins ...string) Option {
	return func(s *Service) {
		s.origins = origins
	}
}

// New creates the service.
func New(generator *gemini.Generator, opts ...Option) *Service {
	s := &Service{
		address:   defaultAddress,
		path:      defaultPath,
		generator: generator,
		origins:   []string{"*"},
		sessions:  make(map[string]*chat.Session),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the HTTP handler serving the streaming endpoint, with
// routing and CORS applied.
func (s *Service) Handler() http.Handler {
	router := mux.NewRouter()
	router.HandleFunc(s.path, s.handleStream).Methods(http.MethodPost)
	c := cors.New(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	})
	return c.Handler(router)
}

// Serve listens on the configured address until Close is called.
func (s *Service) Serve() error {
	s.httpServer = &http.Server{Addr: s.address, Handler: s.Handler()}
	log.Infof("sse: listening on %s", s.address)
	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Close shuts the service down gracefully.
func (s *Service) Close(ctx context.Context) error {
	if s.httpServer == nil {
		return errors.New("sse: server not running")
	}
	return s.httpServer.Shutdown(ctx)
}

// streamRequest is the POST body of the streaming endpoint.
type streamRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id,omitempty"`
}

// chunkPayload is the data frame sent per chunk.
type chunkPayload struct {
	SessionID string `json:"session_id"`
	Text      string `json:"text,omitempty"`
	Reasoning string `json:"reasoning,omitempty"`
	Done      bool   `json:"done,omitempty"`
}

func (s *Service) handleStream(w http.ResponseWriter, r *http.Request) {
	var req streamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Message == "" {
		http.Error(w, "message is required", http.StatusBadRequest)
		return
	}
	session, err := s.session(req.SessionID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	writer := stream.NewWriter(w)
	seq := 0
	for rsp := range session.SendMessageStream(r.Context(), req.Message) {
		if rsp.Error != nil {
			if err := writer.SendError(rsp.Error); err != nil {
				return
			}
			break
		}
		seq++
		payload := &chunkPayload{
			SessionID: session.ID(),
			Text:      rsp.Text,
			Reasoning: rsp.Reasoning,
			Done:      rsp.Done,
		}
		if err := writer.Send(&stream.Event{ID: fmt.Sprintf("%d", seq), Name: "chunk", Data: payload}); err != nil {
			return
		}
	}
	if err := writer.Done(); err != nil {
		log.Debugf("sse: client went away before [DONE]: %v", err)
	}
}

// session returns the existing session for id, or a new one when id is
// empty. Unknown ids are an error rather than a silent new conversation.
func (s *Service) session(id string) (*chat.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id == "" {
		session := chat.New(s.generator, s.sessionOpts...)
		s.sessions[session.ID()] = session
		return session, nil
	}
	session, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("sse: unknown session %s", id)
	}
	return session, nil
}
