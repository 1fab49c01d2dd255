// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package embed

import (
	"context"
	"hash/fnv"
	"regexp"
	"strings"
)

// StaticDimensions is the vector width of the hash embedder.
const StaticDimensions = 256

// Feature weights for vector generation.
const (
	tokenWeight = 0.7
	ngramWeight = 0.3
	ngramSize   = 3
)

var tokenPattern = regexp.MustCompile(`[a-zA-Z0-9]+`)

// StaticEmbedder generates deterministic hash-based embeddings with no
// network or model dependency. Semantic quality is reduced compared to
// a learned model, but results are stable across runs, which keeps the
// default index build self-contained.
type StaticEmbedder struct{}

var _ Embedder = (*StaticEmbedder)(nil)

// NewStaticEmbedder returns the hash-based embedder.
func NewStaticEmbedder() *StaticEmbedder {
	return &StaticEmbedder{}
}

// Dimensions returns the vector width.
func (e *StaticEmbedder) Dimensions() int { return StaticDimensions }

// Embed hashes lowercase tokens and character trigrams into a
// fixed-width vector and normalizes it. Empty input yields the zero
// vector.
func (e *StaticEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	vector := make([]float32, StaticDimensions)

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return vector, nil
	}

	for _, token := range tokenPattern.FindAllString(strings.ToLower(trimmed), -1) {
		vector[hashToIndex(token)] += tokenWeight
	}

	for _, ngram := range trigrams(strings.ToLower(trimmed)) {
		vector[hashToIndex(ngram)] += ngramWeight
	}

	return normalize(vector), nil
}

// trigrams extracts overlapping character n-grams from the
// whitespace-collapsed text.
func trigrams(text string) []string {
	collapsed := strings.Join(strings.Fields(text), " ")
	runes := []rune(collapsed)
	if len(runes) < ngramSize {
		return nil
	}
	grams := make([]string, 0, len(runes)-ngramSize+1)
	for i := 0; i+ngramSize <= len(runes); i++ {
		grams = append(grams, string(runes[i:i+ngramSize]))
	}
	return grams
}

func hashToIndex(s string) int {
	h := fnv.New32a()
	h.Write([]byte(s))
	return int(h.Sum32() % StaticDimensions)
}
