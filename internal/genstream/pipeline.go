// Package genstream runs streaming code generation and owns the
// generation-lifecycle flags. The preview orchestration subsystem only
// reads those flags through the lifecycle tracker; this package is the
// single producer.
package genstream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"

	openai "github.com/sashabaranov/go-openai"

	"github.com/vibeframe/vibeframe/internal/lifecycle"
	"github.com/vibeframe/vibeframe/internal/session"
)

const systemPrompt = `You are an app generator. Reply with a single fenced
jsx code block containing a complete React component, followed by an
optional json fence with a "dependencies" object.`

// Pipeline streams completions for one session and maintains its
// lifecycle snapshot and code buffer.
type Pipeline struct {
	client  *openai.Client
	model   string
	tracker *lifecycle.Tracker
	buf     *Buffer
	store   *session.Store

	mu   sync.RWMutex
	code string
	deps map[string]string
}

// NewPipeline creates a pipeline. store may be nil (code is then kept in
// memory only); client may be nil for hosts without a configured provider,
// in which case Generate fails cleanly.
func NewPipeline(client *openai.Client, model string, tracker *lifecycle.Tracker, buf *Buffer, store *session.Store) *Pipeline {
	return &Pipeline{
		client:  client,
		model:   model,
		tracker: tracker,
		buf:     buf,
		store:   store,
	}
}

// NewClient builds an OpenAI-compatible client for the given base URL
// ("" for the OpenAI default).
func NewClient(apiKey, baseURL string) *openai.Client {
	if baseURL == "" {
		return openai.NewClient(apiKey)
	}
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = baseURL
	return openai.NewClientWithConfig(cfg)
}

// Buffer returns the live code buffer.
func (p *Pipeline) Buffer() *Buffer { return p.buf }

// Code returns the last extracted app source.
func (p *Pipeline) Code() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.code
}

// Dependencies returns the last extracted dependency map.
func (p *Pipeline) Dependencies() map[string]string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.deps
}

// MarkPreviewReady flips the renderable-preview flag. Called when the
// sandbox completes its readiness handshake.
func (p *Pipeline) MarkPreviewReady() {
	p.tracker.SetPreviewReady(true)
}

// Generate streams a completion for the session prompt into the buffer,
// flipping the streaming flag around the run and the code length on every
// delta. The extracted source is persisted when a store is configured.
func (p *Pipeline) Generate(ctx context.Context, sess *session.Session) error {
	if p.client == nil {
		return fmt.Errorf("no generation provider configured")
	}

	p.buf.Reset()
	p.tracker.Update(func(s *lifecycle.Snapshot) {
		s.IsStreaming = true
		s.PreviewReady = false
		s.CodeLength = 0
	})
	defer p.tracker.SetStreaming(false)

	stream, err := p.client.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: sess.Prompt},
		},
		Stream: true,
	})
	if err != nil {
		return fmt.Errorf("starting completion stream: %w", err)
	}
	defer stream.Close()

	for {
		resp, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("reading completion stream: %w", err)
		}
		if len(resp.Choices) == 0 {
			continue
		}
		delta := resp.Choices[0].Delta.Content
		if delta == "" {
			continue
		}
		p.buf.Append(delta)
		p.tracker.SetCodeLength(p.buf.Len())
	}

	code, deps := ExtractCode(p.buf.String())
	p.mu.Lock()
	p.code = code
	p.deps = deps
	p.mu.Unlock()

	if p.store != nil {
		if err := p.store.SaveCode(ctx, sess.ID, code); err != nil {
			log.Printf("genstream: %v", err)
		}
	}
	return nil
}
