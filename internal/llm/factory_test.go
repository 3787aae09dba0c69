package llm

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
)

func TestFactory_UnknownProvider(t *testing.T) {
	_, err := NewProvider(context.Background(), Config{Provider: "carrier-pigeon"}, &fakeRecorder{}, zerolog.Nop())
	if err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestFactory_MockGetsFullMiddlewareChain(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Provider = "mock"

	p, err := NewProvider(context.Background(), cfg, &fakeRecorder{}, zerolog.Nop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	retried, ok := p.(*RetryProvider)
	if !ok {
		t.Fatalf("mock must be wrapped with retry, got %T", p)
	}
	if retried.timeout != cfg.Timeout {
		t.Fatalf("per-attempt timeout not threaded: got %s, want %s", retried.timeout, cfg.Timeout)
	}
	metered, ok := retried.inner.(*UsageProvider)
	if !ok {
		t.Fatalf("mock must be wrapped with usage recording, got %T", retried.inner)
	}
	if _, ok := metered.inner.(*MockProvider); !ok {
		t.Fatalf("expected mock at the base of the chain, got %T", metered.inner)
	}
	if p.ModelID() != "mock" {
		t.Fatalf("unexpected model id: %s", p.ModelID())
	}
}
