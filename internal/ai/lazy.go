package ai

import (
	"context"
	"fmt"
	"sync"
)

// Factory builds a Generator.
type Factory func(ctx context.Context) (Generator, error)

// LazyGenerator defers building its backend until the first generation. A
// failed build is not remembered, the next call tries again. Once built, the
// backend is shared by all callers.
type LazyGenerator struct {
	model   string
	factory Factory

	mu  sync.RWMutex
	gen Generator
}

// NewLazyGenerator returns a generator reporting model until the backend exists.
func NewLazyGenerator(model string, factory Factory) *LazyGenerator {
	return &LazyGenerator{model: model, factory: factory}
}

func (l *LazyGenerator) GenerateContent(ctx context.Context, prompt string) (string, error) {
	gen, err := l.backend(ctx)
	if err != nil {
		return "", err
	}
	return gen.GenerateContent(ctx, prompt)
}

func (l *LazyGenerator) Model() string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.gen != nil {
		return l.gen.Model()
	}
	return l.model
}

// Ready reports whether the backend has been built.
func (l *LazyGenerator) Ready() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.gen != nil
}

func (l *LazyGenerator) backend(ctx context.Context) (Generator, error) {
	l.mu.RLock()
	gen := l.gen
	l.mu.RUnlock()
	if gen != nil {
		return gen, nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.gen != nil {
		return l.gen, nil
	}

	gen, err := l.factory(ctx)
	if err != nil {
		return nil, fmt.Errorf("initialize %s generator: %w", l.model, err)
	}
	l.gen = gen
	return gen, nil
}
