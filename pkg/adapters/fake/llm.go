// Package fake provides scriptable in-memory implementations of the C8
// adapter interfaces for unit and scenario tests, grounded in the
// teacher's injected-session stub pattern (pkg/mcp/testing.go): rather
// than wiring a real transport, tests construct a fake and preload the
// responses it should hand back.
package fake

import (
	"context"
	"sync"

	"github.com/codeready-toolchain/tarsy-metalearn/pkg/adapters"
	"github.com/codeready-toolchain/tarsy-metalearn/pkg/apierrors"
)

// LLM is a scriptable adapters.LLM: each call to Infer pops the next
// queued response (or error) in order. Once the queue is exhausted it
// repeats the last entry, so tests that don't care about an exact call
// count don't need to over-provision responses.
type LLM struct {
	mu        sync.Mutex
	responses []string
	errs      []error
	calls     int
	Requests  []Request
}

// Request records one Infer call for assertions.
type Request struct {
	Messages     []adapters.Message
	SystemPrompt *string
}

// NewLLM creates a fake LLM that returns responses in order.
func NewLLM(responses ...string) *LLM {
	return &LLM{responses: responses}
}

// NewRateLimitedLLM creates a fake LLM whose first n calls fail with
// apierrors.ErrRateLimited before returning responses, for exercising a
// caller's backoff/retry discipline.
func NewRateLimitedLLM(n int, responses ...string) *LLM {
	errs := make([]error, n)
	for i := range errs {
		errs[i] = apierrors.ErrRateLimited
	}
	return &LLM{errs: errs, responses: responses}
}

func (f *LLM) Infer(_ context.Context, messages []adapters.Message, systemPrompt *string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Requests = append(f.Requests, Request{Messages: messages, SystemPrompt: systemPrompt})
	idx := f.calls
	f.calls++

	if idx < len(f.errs) {
		return "", f.errs[idx]
	}
	adjusted := idx - len(f.errs)
	if len(f.responses) == 0 {
		return "", nil
	}
	if adjusted >= len(f.responses) {
		adjusted = len(f.responses) - 1
	}
	return f.responses[adjusted], nil
}

// CallCount returns the number of Infer invocations so far.
func (f *LLM) CallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}
