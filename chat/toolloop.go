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
	"fmt"
	"sync"

	"google.golang.org/genai"

	"github.com/inkwell-cms/aikit/gemini"
	"github.com/inkwell-cms/aikit/log"
)

// ErrToolBudgetExceeded is returned by SendMessage when WithErrOnToolBudget
// is enabled and the model still requests function calls after the final
// allowed turn.
var ErrToolBudgetExceeded = errors.New("chat: tool turn budget exceeded")

// runToolLoop dispatches the model's requested function calls, feeds the
// results back, and repeats until the model answers without calls or the
// turn budget runs out. The first model call has already been spent by the
// caller, so at most maxToolTurns-1 follow-up calls happen here.
func (s *Session) runToolLoop(
	ctx context.Context,
	rsp *gemini.Response,
	working []*genai.Content,
) (*gemini.Response, []*genai.Content, error) {
	for turn := 1; turn < s.maxToolTurns; turn++ {
		results := s.dispatch(ctx, rsp.FunctionCalls)
		working = append(working, &genai.Content{
			Role:  string(RoleFunction),
			Parts: results,
		})

		next, err := s.generator.Generate(ctx, working, s.callOptions()...)
		if err != nil {
			return nil, nil, err
		}
		working = append(working, s.modelTurn(next))
		rsp = next

		if !rsp.HasFunctionCalls() {
			return rsp, working, nil
		}
	}
	if s.errOnToolBudget {
		return nil, nil, ErrToolBudgetExceeded
	}
	log.Warnf("chat: tool loop stopped after %d model calls with calls still pending", s.maxToolTurns)
	return rsp, working, nil
}

// dispatch runs the requested calls concurrently and returns the function
// response parts in the same order the model requested them.
func (s *Session) dispatch(ctx context.Context, calls []gemini.FunctionCall) []*genai.Part {
	results := make([]*genai.Part, len(calls))
	var wg sync.WaitGroup
	for i, call := range calls {
		wg.Add(1)
		go func(i int, call gemini.FunctionCall) {
			defer wg.Done()
			results[i] = s.execute(ctx, call)
		}(i, call)
	}
	wg.Wait()
	return results
}

// execute runs one tool call. Failures never abort the loop; they are
// reported to the model as an error payload so it can recover or rephrase.
func (s *Session) execute(ctx context.Context, call gemini.FunctionCall) (part *genai.Part) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("chat: tool %s panicked: %v", call.Name, r)
			part = functionResponsePart(call, map[string]any{
				"error": fmt.Sprintf("tool %s panicked: %v", call.Name, r),
			})
		}
	}()

	t, ok := s.tools.Get(call.Name)
	if !ok {
		return functionResponsePart(call, map[string]any{
			"error": fmt.Sprintf("unknown tool: %s", call.Name),
		})
	}
	out, err := t.Call(ctx, call.Args)
	if err != nil {
		return functionResponsePart(call, map[string]any{
			"error": err.Error(),
		})
	}
	return functionResponsePart(call, toResponseMap(out))
}

func functionResponsePart(call gemini.FunctionCall, response map[string]any) *genai.Part {
	return &genai.Part{
		FunctionResponse: &genai.FunctionResponse{
			ID:       call.ID,
			Name:     call.Name,
			Response: response,
		},
	}
}

// toResponseMap shapes a tool result for the FunctionResponse payload,
// which the API requires to be an object. Non-map results are wrapped
// under a "result" key.
func toResponseMap(out any) map[string]any {
	if m, ok := out.(map[string]any); ok {
		return m
	}
	return map[string]any{"result": out}
}
