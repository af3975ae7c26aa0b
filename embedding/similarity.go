//
// Inkwell is pleased to support the open source community by making aikit available.
//
// Copyright (C) 2026 Inkwell.  All rights reserved.
//
// aikit is licensed under the Apache License Version 2.0.
//
//

package embedding

import (
	"errors"
	"math"
	"sort"
)

// ErrVectorLength reports a similarity computation over vectors of
// different dimensions.
var ErrVectorLength = errors.New("embedding: vectors have different lengths")

// CosineSimilarity returns the cosine of the angle between a and b in
// [-1, 1]. A zero-magnitude vector on either side yields exactly 0.
func CosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, ErrVectorLength
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}

// Match is one ranked candidate from FindSimilar.
type Match struct {
	// Index points into the candidates slice passed to FindSimilar.
	Index int
	// Similarity is the cosine similarity against the query.
	Similarity float64
}

// defaultTopK applies when FindSimilar is called with a non-positive k.
const defaultTopK = 5

// FindSimilar ranks candidates by cosine similarity against the query and
// returns the top k matches in non-increasing order. k is clamped to the
// number of candidates.
func FindSimilar(query []float32, candidates [][]float32, k int) ([]Match, error) {
	if k <= 0 {
		k = defaultTopK
	}
	matches := make([]Match, 0, len(candidates))
	for i, candidate := range candidates {
		similarity, err := CosineSimilarity(query, candidate)
		if err != nil {
			return nil, err
		}
		matches = append(matches, Match{Index: i, Similarity: similarity})
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})
	if k > len(matches) {
		k = len(matches)
	}
	return matches[:k], nil
}
