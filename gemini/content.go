//
// Inkwell is pleased to support the open source community by making aikit available.
//
// Copyright (C) 2026 Inkwell.  All rights reserved.
//
// aikit is licensed under the Apache License Version 2.0.
//
//

package gemini

import (
	"google.golang.org/genai"
)

// Text normalizes a bare prompt string into the canonical single-user-turn
// content list used by every generation entry point.
func Text(prompt string) []*genai.Content {
	return []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}
}

// Turn builds one role-tagged content from parts.
func Turn(role genai.Role, parts ...*genai.Part) *genai.Content {
	return genai.NewContentFromParts(parts, role)
}

// Normalize converts a prompt into content turns. A string becomes a single
// user turn; a *genai.Content becomes a one-element list; a []*genai.Content
// passes through unchanged. Anything else yields nil.
func Normalize(prompt any) []*genai.Content {
	switch v := prompt.(type) {
	case string:
		return Text(v)
	case *genai.Content:
		return []*genai.Content{v}
	case []*genai.Content:
		return v
	}
	return nil
}

// systemInstruction builds a system-instruction content from text.
func systemInstruction(text string) *genai.Content {
	if text == "" {
		return nil
	}
	return &genai.Content{
		Parts: []*genai.Part{genai.NewPartFromText(text)},
	}
}
