// Package testutil provides shared test helpers: an in-memory fake of the
// tabular data store speaking the operator.value filter subset the client
// emits, and constructors wiring it to a service.
package testutil

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/starford/zettel/internal/store"
	"github.com/starford/zettel/internal/zettel"
)

// DiscardLogger returns a logger that drops everything.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// StubEmbedder implements zettel.Embedder with a configurable vector
// function. A nil Vec means "no credential configured".
type StubEmbedder struct {
	Vec func(text string) []float32
}

// Embed returns Vec(text), or nil when no function is set.
func (e *StubEmbedder) Embed(_ context.Context, text string) []float32 {
	if e.Vec == nil {
		return nil
	}
	return e.Vec(text)
}

// Available reports whether a vector function is set.
func (e *StubEmbedder) Available() bool {
	return e.Vec != nil
}

// TestService wires a service to a fresh fake store with no embedder.
func TestService(t *testing.T) (*zettel.Service, *FakeStore) {
	t.Helper()
	return TestServiceWithEmbedder(t, &StubEmbedder{})
}

// TestServiceWithEmbedder wires a service to a fresh fake store.
func TestServiceWithEmbedder(t *testing.T, embed zettel.Embedder) (*zettel.Service, *FakeStore) {
	t.Helper()
	fake := NewFakeStore(t)
	client := store.New(store.Config{
		URL:    fake.URL(),
		APIKey: "test-key",
	}, DiscardLogger())
	svc := zettel.NewService(client, embed, DiscardLogger())
	return svc, fake
}
