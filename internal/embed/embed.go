// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package embed turns document text into fixed-dimension vectors for
// the collection index.
package embed

import (
	"context"
	"math"
)

// Embedder produces one vector per text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimensions() int
}

// normalize scales v to unit length in place and returns it. The zero
// vector is returned unchanged.
func normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return v
	}
	norm := float32(math.Sqrt(sum))
	for i := range v {
		v[i] /= norm
	}
	return v
}
