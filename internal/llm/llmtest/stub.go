// Package llmtest provides a scripted llm.Adapter for tests.
package llmtest

import (
	"context"
	"sync"

	"github.com/raphaelgruber/contentpilot/internal/llm"
	"github.com/raphaelgruber/contentpilot/internal/models"
)

// Call is one recorded adapter invocation.
type Call struct {
	SystemPrompt string
	History      []models.HistoryTurn
	Current      string
	Image        *models.Image
}

// Stub replies with queued texts, falling back to Reply when the queue is
// empty. When Block is set, every call waits until it is closed or the
// context ends.
type Stub struct {
	mu      sync.Mutex
	Reply   string
	Replies []string
	Err     error
	Usage   llm.Usage
	Block   chan struct{}
	calls   []Call
}

var _ llm.Adapter = (*Stub)(nil)

// NewStub returns a Stub that always answers reply.
func NewStub(reply string) *Stub {
	return &Stub{Reply: reply}
}

func (s *Stub) SinglePrompt(ctx context.Context, prompt string) (llm.Response, error) {
	return s.respond(ctx, Call{Current: prompt})
}

func (s *Stub) SinglePromptWithImage(ctx context.Context, prompt string, image models.Image) (llm.Response, error) {
	return s.respond(ctx, Call{Current: prompt, Image: &image})
}

func (s *Stub) ChatWithContext(ctx context.Context, systemPrompt string, history []models.HistoryTurn, current string, image *models.Image) (llm.Response, error) {
	return s.respond(ctx, Call{SystemPrompt: systemPrompt, History: history, Current: current, Image: image})
}

// Calls returns a copy of the recorded calls.
func (s *Stub) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Call, len(s.calls))
	copy(out, s.calls)
	return out
}

func (s *Stub) respond(ctx context.Context, call Call) (llm.Response, error) {
	s.mu.Lock()
	s.calls = append(s.calls, call)
	block := s.Block
	reply := s.Reply
	if len(s.Replies) > 0 {
		reply, s.Replies = s.Replies[0], s.Replies[1:]
	}
	err, usage := s.Err, s.Usage
	s.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return llm.Response{}, ctx.Err()
		}
	}
	if err != nil {
		return llm.Response{}, err
	}
	return llm.Response{Data: reply, Usage: usage}, nil
}
