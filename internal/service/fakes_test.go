package service

import (
	"context"
	"sync"

	"github.com/raphaelgruber/contentpilot/internal/llm"
	"github.com/raphaelgruber/contentpilot/internal/models"
)

var (
	jpegBytes = []byte("\xFF\xD8\xFF\xE0\x00\x10JFIF\x00\x01")
	pngBytes  = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\x0dIHDR")
	gifBytes  = []byte("GIF89a\x01\x00\x01\x00")
	webpBytes = []byte("RIFF\x24\x00\x00\x00WEBPVP8 ")
)

func jpegImage() *models.Image {
	return &models.Image{Data: jpegBytes, MIMEType: "image/jpeg"}
}

type chatCall struct {
	SystemPrompt string
	History      []models.HistoryTurn
	Current      string
	Image        *models.Image
}

// fakeAdapter replies with a fixed text or error and records every call.
// When release is set, ChatWithContext blocks until it is closed or the
// context ends.
type fakeAdapter struct {
	mu      sync.Mutex
	reply   string
	err     error
	calls   []chatCall
	prompts []string
	started chan struct{}
	release chan struct{}
}

var _ llm.Adapter = (*fakeAdapter)(nil)

func (f *fakeAdapter) SinglePrompt(_ context.Context, prompt string) (llm.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return llm.Response{}, f.err
	}
	return llm.Response{Data: f.reply}, nil
}

func (f *fakeAdapter) SinglePromptWithImage(ctx context.Context, prompt string, image models.Image) (llm.Response, error) {
	f.mu.Lock()
	f.calls = append(f.calls, chatCall{Current: prompt, Image: &image})
	f.mu.Unlock()
	return f.SinglePrompt(ctx, prompt)
}

func (f *fakeAdapter) ChatWithContext(ctx context.Context, systemPrompt string, history []models.HistoryTurn, current string, image *models.Image) (llm.Response, error) {
	f.mu.Lock()
	f.calls = append(f.calls, chatCall{SystemPrompt: systemPrompt, History: history, Current: current, Image: image})
	started, release := f.started, f.release
	f.started = nil
	f.mu.Unlock()

	if started != nil {
		close(started)
	}
	if release != nil {
		select {
		case <-release:
		case <-ctx.Done():
			return llm.Response{}, ctx.Err()
		}
	}

	if f.err != nil {
		return llm.Response{}, f.err
	}
	return llm.Response{Data: f.reply, Usage: llm.Usage{InputTokens: 10, OutputTokens: 5}}, nil
}

func (f *fakeAdapter) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeAdapter) lastCall() chatCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[len(f.calls)-1]
}
