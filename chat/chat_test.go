//
// Inkwell is pleased to support the open source community by making aikit available.
//
// Copyright (C) 2026 Inkwell.  All rights reserved.
//
// aikit is licensed under the Apache License Version 2.0.
//
//

package chat

import (
	"context"
	"errors"
	"iter"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/inkwell-cms/aikit/config"
	"github.com/inkwell-cms/aikit/gemini"
	"github.com/inkwell-cms/aikit/tool"
)

type fakeModels struct {
	responses []*genai.GenerateContentResponse
	err       error
	stream    iter.Seq2[*genai.GenerateContentResponse, error]

	callCount    int
	lastContents []*genai.Content
}

func (f *fakeModels) GenerateContent(ctx context.Context, model string, contents []*genai.Content,
	cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.lastContents = contents
	f.callCount++
	if f.err != nil {
		return nil, f.err
	}
	rsp := f.responses[0]
	if len(f.responses) > 1 {
		f.responses = f.responses[1:]
	}
	return rsp, nil
}

func (f *fakeModels) GenerateContentStream(ctx context.Context, model string, contents []*genai.Content,
	cfg *genai.GenerateContentConfig) iter.Seq2[*genai.GenerateContentResponse, error] {
	f.lastContents = contents
	f.callCount++
	return f.stream
}

func (f *fakeModels) EmbedContent(ctx context.Context, model string, contents []*genai.Content,
	cfg *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error) {
	return nil, errors.New("not implemented")
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

func newTestSession(t *testing.T, models *fakeModels, opts ...Option) *Session {
	t.Helper()
	cfg := &config.Config{APIKey: "test", TextModel: "gemini-2.5-flash"}
	generator := gemini.NewWithClient(&fakeClient{models: models}, cfg)
	return New(generator, opts...)
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{
				Content:      genai.NewContentFromText(text, genai.RoleModel),
				FinishReason: genai.FinishReasonStop,
			},
		},
	}
}

func callResponse(calls ...*genai.FunctionCall) *genai.GenerateContentResponse {
	parts := make([]*genai.Part, 0, len(calls))
	for _, call := range calls {
		parts = append(parts, &genai.Part{FunctionCall: call})
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: genai.NewContentFromParts(parts, genai.RoleModel)},
		},
	}
}

func echoTool(t *testing.T, name string) tool.CallableTool {
	t.Helper()
	schema := map[string]any{
		"type":       "object",
		"properties": map[string]any{"value": map[string]any{"type": "string"}},
	}
	handler := func(ctx context.Context, args map[string]any) (any, error) {
		return map[string]any{"echo": args["value"]}, nil
	}
	ct, err := tool.New(name, "echoes its input", schema, handler)
	require.NoError(t, err)
	return ct
}

func TestSendMessageAppendsHistory(t *testing.T) {
	models := &fakeModels{responses: []*genai.GenerateContentResponse{textResponse("hi there")}}
	session := newTestSession(t, models)

	rsp, err := session.SendMessage(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "hi there", rsp.Text)

	history := session.History()
	require.Len(t, history, 2)
	assert.Equal(t, genai.RoleUser, history[0].Role)
	assert.Equal(t, genai.RoleModel, history[1].Role)
	assert.Equal(t, 1, models.callCount)
}

func TestSendMessageRollsBackOnError(t *testing.T) {
	models := &fakeModels{err: errors.New("quota exhausted")}
	session := newTestSession(t, models)

	_, err := session.SendMessage(context.Background(), "hello")
	require.Error(t, err)
	assert.Empty(t, session.History())
}

func TestSendMessageWithToolsNoCallRequested(t *testing.T) {
	models := &fakeModels{responses: []*genai.GenerateContentResponse{textResponse("plain answer")}}
	set, err := tool.NewSet(echoTool(t, "echo"))
	require.NoError(t, err)
	session := newTestSession(t, models, WithTools(set))

	rsp, err := session.SendMessage(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "plain answer", rsp.Text)
	assert.Equal(t, 1, models.callCount)
	assert.Len(t, session.History(), 2)
}

func TestToolLoopRunsRequestedCalls(t *testing.T) {
	models := &fakeModels{responses: []*genai.GenerateContentResponse{
		callResponse(&genai.FunctionCall{ID: "c1", Name: "echo", Args: map[string]any{"value": "ping"}}),
		textResponse("done"),
	}}
	set, err := tool.NewSet(echoTool(t, "echo"))
	require.NoError(t, err)
	session := newTestSession(t, models, WithTools(set))

	rsp, err := session.SendMessage(context.Background(), "call the tool")
	require.NoError(t, err)
	assert.Equal(t, "done", rsp.Text)
	assert.Equal(t, 2, models.callCount)

	history := session.History()
	require.Len(t, history, 4)
	assert.Equal(t, RoleFunction, genai.Role(history[2].Role))
	require.Len(t, history[2].Parts, 1)
	fr := history[2].Parts[0].FunctionResponse
	require.NotNil(t, fr)
	assert.Equal(t, "echo", fr.Name)
	assert.Equal(t, "ping", fr.Response["echo"])
}

func TestToolLoopPreservesCallOrder(t *testing.T) {
	models := &fakeModels{responses: []*genai.GenerateContentResponse{
		callResponse(
			&genai.FunctionCall{ID: "a", Name: "slow", Args: map[string]any{}},
			&genai.FunctionCall{ID: "b", Name: "fast", Args: map[string]any{}},
		),
		textResponse("done"),
	}}

	// slow does not return until fast has resolved, so completion order is
	// the reverse of request order.
	fastDone := make(chan struct{})
	schema := map[string]any{"type": "object", "properties": map[string]any{}}
	slow, err := tool.New("slow", "waits for fast", schema,
		func(ctx context.Context, args map[string]any) (any, error) {
			<-fastDone
			return map[string]any{"name": "slow"}, nil
		})
	require.NoError(t, err)
	fast, err := tool.New("fast", "resolves first", schema,
		func(ctx context.Context, args map[string]any) (any, error) {
			close(fastDone)
			return map[string]any{"name": "fast"}, nil
		})
	require.NoError(t, err)
	set, err := tool.NewSet(slow, fast)
	require.NoError(t, err)

	session := newTestSession(t, models, WithTools(set))
	_, err = session.SendMessage(context.Background(), "run both")
	require.NoError(t, err)

	history := session.History()
	require.Len(t, history, 4)
	parts := history[2].Parts
	require.Len(t, parts, 2)
	assert.Equal(t, "slow", parts[0].FunctionResponse.Name)
	assert.Equal(t, "fast", parts[1].FunctionResponse.Name)
}

func TestToolLoopReportsUnknownToolAndErrors(t *testing.T) {
	models := &fakeModels{responses: []*genai.GenerateContentResponse{
		callResponse(
			&genai.FunctionCall{Name: "missing", Args: map[string]any{}},
			&genai.FunctionCall{Name: "failing", Args: map[string]any{}},
		),
		textResponse("recovered"),
	}}
	schema := map[string]any{"type": "object", "properties": map[string]any{}}
	failing, err := tool.New("failing", "always fails", schema,
		func(ctx context.Context, args map[string]any) (any, error) {
			return nil, errors.New("backend unavailable")
		})
	require.NoError(t, err)
	set, err := tool.NewSet(failing)
	require.NoError(t, err)

	session := newTestSession(t, models, WithTools(set))
	rsp, err := session.SendMessage(context.Background(), "go")
	require.NoError(t, err)
	assert.Equal(t, "recovered", rsp.Text)

	parts := session.History()[2].Parts
	require.Len(t, parts, 2)
	assert.Contains(t, parts[0].FunctionResponse.Response["error"], "unknown tool")
	assert.Equal(t, "backend unavailable", parts[1].FunctionResponse.Response["error"])
}

func TestToolLoopStopsAtBudget(t *testing.T) {
	// The model never stops asking for calls; the default of the slice
	// fake keeps replaying the last response.
	models := &fakeModels{responses: []*genai.GenerateContentResponse{
		callResponse(&genai.FunctionCall{Name: "echo", Args: map[string]any{"value": "again"}}),
	}}
	set, err := tool.NewSet(echoTool(t, "echo"))
	require.NoError(t, err)
	session := newTestSession(t, models, WithTools(set), WithMaxToolTurns(3))

	rsp, err := session.SendMessage(context.Background(), "loop forever")
	require.NoError(t, err)
	assert.Equal(t, 3, models.callCount)
	assert.True(t, rsp.HasFunctionCalls())
}

func TestToolLoopBudgetError(t *testing.T) {
	models := &fakeModels{responses: []*genai.GenerateContentResponse{
		callResponse(&genai.FunctionCall{Name: "echo", Args: map[string]any{"value": "again"}}),
	}}
	set, err := tool.NewSet(echoTool(t, "echo"))
	require.NoError(t, err)
	session := newTestSession(t, models,
		WithTools(set), WithMaxToolTurns(2), WithErrOnToolBudget(true))

	_, err = session.SendMessage(context.Background(), "loop forever")
	require.ErrorIs(t, err, ErrToolBudgetExceeded)
	assert.Empty(t, session.History())
}

func TestSendMessageStreamCommitsHistoryOnTerminal(t *testing.T) {
	models := &fakeModels{
		stream: func(yield func(*genai.GenerateContentResponse, error) bool) {
			if !yield(textResponse("Hello, "), nil) {
				return
			}
			yield(textResponse("world"), nil)
		},
	}
	session := newTestSession(t, models)

	var final *gemini.Response
	for rsp := range session.SendMessageStream(context.Background(), "greet me") {
		final = rsp
	}
	require.NotNil(t, final)
	assert.True(t, final.Done)
	assert.Equal(t, "Hello, world", final.Text)

	history := session.History()
	require.Len(t, history, 2)
	assert.Equal(t, genai.RoleModel, history[1].Role)
}

func TestSendMessageStreamErrorRollsBack(t *testing.T) {
	models := &fakeModels{
		stream: func(yield func(*genai.GenerateContentResponse, error) bool) {
			yield(nil, errors.New("stream reset"))
		},
	}
	session := newTestSession(t, models)

	var final *gemini.Response
	for rsp := range session.SendMessageStream(context.Background(), "greet me") {
		final = rsp
	}
	require.NotNil(t, final)
	require.NotNil(t, final.Error)
	assert.Empty(t, session.History())
}

func TestWithHistorySeedsSession(t *testing.T) {
	seed := []*genai.Content{
		genai.NewContentFromText("earlier question", genai.RoleUser),
		genai.NewContentFromText("earlier answer", genai.RoleModel),
	}
	models := &fakeModels{responses: []*genai.GenerateContentResponse{textResponse("follow-up")}}
	session := newTestSession(t, models, WithHistory(seed))

	_, err := session.SendMessage(context.Background(), "and then?")
	require.NoError(t, err)
	assert.Len(t, session.History(), 4)
	// The provider call saw the seeded turns plus the new user turn.
	assert.Len(t, models.lastContents, 3)
}
