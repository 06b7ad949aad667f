package service

import (
	"context"
	"sync"
)

type fakeBackend struct {
	mu      sync.Mutex
	text    string
	json    string
	err     error
	prompts []string
}

func (f *fakeBackend) Name() string { return "fake" }

func (f *fakeBackend) GenerateText(_ context.Context, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	return f.text, f.err
}

func (f *fakeBackend) GenerateJSON(_ context.Context, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	return f.json, f.err
}
