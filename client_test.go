package kbsearch

import (
	"context"
	"errors"
	"testing"
)

type mockEmbedder struct {
	fn func(ctx context.Context, text string) (EmbeddingResult, error)
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) (EmbeddingResult, error) {
	return m.fn(ctx, text)
}

func TestNew_NoAddress(t *testing.T) {
	_, err := New()
	if err == nil {
		t.Fatal("expected error when no address provided")
	}
}

func TestNoopEmbedder(t *testing.T) {
	noop := &noopEmbedder{}
	_, err := noop.Embed(context.Background(), "test")
	if err == nil {
		t.Fatal("expected error from noopEmbedder")
	}
}

func TestEmbedderAdapter(t *testing.T) {
	called := false
	mock := &mockEmbedder{
		fn: func(_ context.Context, _ string) (EmbeddingResult, error) {
			called = true
			return EmbeddingResult{
				Embedding:    []float32{1, 2, 3},
				PromptTokens: 5,
				TotalTokens:  10,
			}, nil
		},
	}

	adapter := &embedderAdapter{inner: mock}
	result, err := adapter.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called {
		t.Error("inner embedder was not called")
	}
	if len(result.Embedding) != 3 {
		t.Errorf("embedding len = %d, want 3", len(result.Embedding))
	}
	if result.TotalTokens != 10 {
		t.Errorf("total tokens = %d, want 10", result.TotalTokens)
	}
}

func TestEmbedderAdapter_Error(t *testing.T) {
	sentinel := errors.New("provider down")
	adapter := &embedderAdapter{inner: &mockEmbedder{
		fn: func(context.Context, string) (EmbeddingResult, error) {
			return EmbeddingResult{}, sentinel
		},
	}}

	if _, err := adapter.Embed(context.Background(), "x"); !errors.Is(err, sentinel) {
		t.Errorf("expected wrapped provider error, got %v", err)
	}
}
