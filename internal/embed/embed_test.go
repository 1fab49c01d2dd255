// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package embed

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestStaticEmbedderDeterministic(t *testing.T) {
	e := NewStaticEmbedder()

	a, err := e.Embed(context.Background(), "deep learning for citation analysis")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	b, err := e.Embed(context.Background(), "deep learning for citation analysis")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}

	if len(a) != StaticDimensions {
		t.Fatalf("len = %d, want %d", len(a), StaticDimensions)
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("vectors differ at %d: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestStaticEmbedderNormalized(t *testing.T) {
	e := NewStaticEmbedder()
	v, err := e.Embed(context.Background(), "information retrieval")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}

	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if math.Abs(sum-1.0) > 1e-5 {
		t.Errorf("squared norm = %v, want 1.0", sum)
	}
}

func TestStaticEmbedderEmptyInput(t *testing.T) {
	e := NewStaticEmbedder()
	v, err := e.Embed(context.Background(), "   ")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	for i, x := range v {
		if x != 0 {
			t.Fatalf("zero vector expected, got %v at %d", x, i)
		}
	}
}

func TestStaticEmbedderDistinguishesTexts(t *testing.T) {
	e := NewStaticEmbedder()
	a, _ := e.Embed(context.Background(), "quantum field theory")
	b, _ := e.Embed(context.Background(), "sociology of big data platforms")

	same := true
	for i := range a {
		if a[i] != b[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("distinct texts produced identical vectors")
	}
}

func TestOllamaEmbedder(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/embeddings" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		fmt.Fprint(w, `{"embedding": [3.0, 4.0]}`)
	}))
	defer ts.Close()

	e := NewOllamaEmbedder(ts.URL, "test-model")
	v, err := e.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(v) != 2 {
		t.Fatalf("len = %d, want 2", len(v))
	}
	// 3-4-5 triangle normalizes to 0.6, 0.8.
	if math.Abs(float64(v[0])-0.6) > 1e-6 || math.Abs(float64(v[1])-0.8) > 1e-6 {
		t.Errorf("vector = %v, want [0.6 0.8]", v)
	}
	if e.Dimensions() != 2 {
		t.Errorf("Dimensions = %d, want 2 after first embed", e.Dimensions())
	}
}

func TestOllamaEmbedderErrors(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	e := NewOllamaEmbedder(ts.URL, "")
	if _, err := e.Embed(context.Background(), "hello"); err == nil {
		t.Error("expected error on HTTP 500")
	}
}
