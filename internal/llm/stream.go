package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/packages/ssestream"
)

// StreamChat opens a streaming chat completion request. Each raw chunk from
// the wire is normalized into a StreamDelta so callers never touch provider
// types: prose fragments, tool-call fragments (index, optional id, optional
// name, partial arguments text) and the finish reason pass through untouched.
func (c *OpenAIClient) StreamChat(ctx context.Context, messages []Message, tools []ToolDef) (Stream, error) {
	params := c.params(messages, tools)

	var stream *ssestream.Stream[openai.ChatCompletionChunk]
	var err error
	for attempt := range 3 {
		stream = c.client.Chat.Completions.NewStreaming(ctx, params)
		err = stream.Err()
		if err == nil {
			break
		}
		if !strings.Contains(err.Error(), "429") || attempt == 2 {
			return nil, fmt.Errorf("chat completion stream: %w", err)
		}
		stream.Close()
		wait := time.Duration(2<<attempt) * time.Second
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return nil, fmt.Errorf("chat completion stream: %w", ctx.Err())
		}
	}

	return &openaiStream{raw: stream}, nil
}

type openaiStream struct {
	raw *ssestream.Stream[openai.ChatCompletionChunk]
	cur StreamDelta
}

func (s *openaiStream) Next() bool {
	if !s.raw.Next() {
		return false
	}
	s.cur = normalizeChunk(s.raw.Current())
	return true
}

func (s *openaiStream) Current() StreamDelta { return s.cur }

func (s *openaiStream) Err() error {
	if err := s.raw.Err(); err != nil {
		return fmt.Errorf("streaming: %w", err)
	}
	return nil
}

func (s *openaiStream) Close() error { return s.raw.Close() }

func normalizeChunk(chunk openai.ChatCompletionChunk) StreamDelta {
	if len(chunk.Choices) == 0 {
		return StreamDelta{}
	}
	choice := chunk.Choices[0]

	delta := StreamDelta{
		Content:      choice.Delta.Content,
		FinishReason: string(choice.FinishReason),
	}
	for _, tc := range choice.Delta.ToolCalls {
		delta.ToolCalls = append(delta.ToolCalls, ToolCallDelta{
			Index:     int(tc.Index),
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		})
	}
	return delta
}
