// Package chat implements the streaming tool-call orchestration core: it
// consumes a model's delta stream, reassembles fragmented tool calls,
// dispatches them against the tool registry, and relays a follow-up answer,
// pushing typed events to the client throughout.
package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/sandiips/schoolfinder/internal/llm"
	"github.com/sandiips/schoolfinder/internal/tools"
)

// Config carries the orchestrator's tunables.
type Config struct {
	// SystemPrompt is prepended to every conversation.
	SystemPrompt string
	// StreamTimeout bounds the wall-clock duration of each model stream.
	// Zero means unbounded.
	StreamTimeout time.Duration
	// ToolTimeout bounds each tool executor call. Zero means unbounded.
	ToolTimeout time.Duration
}

// Orchestrator drives one chat turn through its states:
//
//	STREAMING_PRIMARY -> EXECUTING_TOOLS -> STREAMING_FOLLOWUP -> DONE
//
// with a short-circuit from STREAMING_PRIMARY straight to DONE when the
// primary turn ends without tool calls. At most one model stream is open at
// any time; cancelling the request context cancels whichever stream is
// active.
type Orchestrator struct {
	llm           llm.Client
	registry      *tools.Registry
	dispatcher    *Dispatcher
	systemPrompt  string
	streamTimeout time.Duration
	logger        *slog.Logger
}

// NewOrchestrator wires the orchestrator over a model client and a tool
// registry.
func NewOrchestrator(client llm.Client, registry *tools.Registry, cfg Config, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		llm:           client,
		registry:      registry,
		dispatcher:    NewDispatcher(registry, cfg.ToolTimeout, logger),
		systemPrompt:  cfg.SystemPrompt,
		streamTimeout: cfg.StreamTimeout,
		logger:        logger,
	}
}

type runState int

const (
	stateStreamingPrimary runState = iota
	stateExecutingTools
	stateStreamingFollowup
	stateDone
)

// turn holds the state of one streamed request.
type turn struct {
	o         *Orchestrator
	ctx       context.Context
	sessionID string
	emitter   Emitter
	msgs      []llm.Message
	acc       *Accumulator
}

// RunStream executes one full streamed chat turn, emitting events to emit
// as they become available. A nil error means the stream ended with a done
// event; a non-nil error means the turn aborted (an error event has already
// been emitted unless the client itself went away).
func (o *Orchestrator) RunStream(ctx context.Context, history []llm.Message, sessionID string, emit Emitter) error {
	t := &turn{
		o:         o,
		ctx:       ctx,
		sessionID: sessionID,
		emitter:   emit,
		msgs:      o.withSystem(history),
	}
	t.acc = NewAccumulator(func(name string) {
		t.send(Event{Type: EventToolStart, ToolName: name})
	}, o.logger)

	state := stateStreamingPrimary
	for state != stateDone {
		var err error
		switch state {
		case stateStreamingPrimary:
			state, err = t.streamPrimary()
		case stateExecutingTools:
			state, err = t.executeTools()
		case stateStreamingFollowup:
			state, err = t.streamFollowup()
		}
		if err != nil {
			if ctx.Err() != nil {
				// Client disconnected; nothing left to tell it.
				return ctx.Err()
			}
			o.logger.Error("chat stream failed",
				"session_id", sessionID, "error", err)
			t.send(Event{Type: EventError, Error: errMsgConversation})
			return err
		}
	}

	t.send(Event{Type: EventDone})
	return nil
}

// streamPrimary relays prose content and feeds tool-call fragments into the
// accumulator until the primary turn reports a finish reason.
func (t *turn) streamPrimary() (runState, error) {
	ctx, cancel := t.streamCtx()
	defer cancel()

	stream, err := t.o.llm.StreamChat(ctx, t.msgs, t.o.registry.Defs())
	if err != nil {
		return stateDone, fmt.Errorf("opening primary stream: %w", err)
	}
	defer stream.Close()

	for stream.Next() {
		d := stream.Current()

		if d.Content != "" {
			t.send(Event{Type: EventContent, Content: d.Content})
		}

		for _, tc := range d.ToolCalls {
			t.acc.OnFragment(tc)
		}

		if d.FinishReason != "" {
			if d.FinishReason == llm.FinishReasonToolCalls && t.acc.Len() > 0 {
				return stateExecutingTools, nil
			}
			// Natural stop, or a tool-calls marker with an empty
			// accumulator: nothing to execute.
			return stateDone, nil
		}
	}

	if err := stream.Err(); err != nil {
		return stateDone, fmt.Errorf("primary stream: %w", err)
	}
	return stateDone, nil
}

// executeTools dispatches the accumulated batch. Calls run sequentially;
// no ordering is promised across calls, only that each call's tool_start
// precedes its tool_result. A corrupted-stream failure abandons the whole
// batch; invalid input or a failed executor fails only that call.
func (t *turn) executeTools() (runState, error) {
	calls := t.acc.Snapshot()
	defer t.acc.Clear()

	t.o.logger.Info("processing tool calls",
		"count", len(calls), "session_id", t.sessionID)

	results := make([]ToolResult, 0, len(calls))
	for _, call := range calls {
		if err := t.ctx.Err(); err != nil {
			return stateDone, err
		}

		res := t.o.dispatcher.Dispatch(t.ctx, call, t.sessionID)
		if res.Err != nil && res.Err.Fatal() {
			t.send(Event{Type: EventError, Error: res.Err.SafeMessage()})
			return stateDone, nil
		}

		if res.Err != nil {
			t.send(Event{
				Type:     EventToolResult,
				ToolName: res.Tool,
				Result:   map[string]string{"error": res.Err.SafeMessage()},
			})
		} else {
			t.send(Event{Type: EventToolResult, ToolName: res.Tool, Result: res.Result})
		}
		results = append(results, res)
	}

	t.msgs = appendToolExchange(t.msgs, results)
	return stateStreamingFollowup, nil
}

// streamFollowup relays the model's answer over the tool results. Tools are
// disabled: one round of tool use per user turn.
func (t *turn) streamFollowup() (runState, error) {
	ctx, cancel := t.streamCtx()
	defer cancel()

	stream, err := t.o.llm.StreamChat(ctx, t.msgs, nil)
	if err != nil {
		return stateDone, fmt.Errorf("opening follow-up stream: %w", err)
	}
	defer stream.Close()

	for stream.Next() {
		d := stream.Current()
		if d.Content != "" {
			t.send(Event{Type: EventContent, Content: d.Content})
		}
		if d.FinishReason != "" {
			break
		}
	}

	if err := stream.Err(); err != nil {
		return stateDone, fmt.Errorf("follow-up stream: %w", err)
	}
	return stateDone, nil
}

func (t *turn) streamCtx() (context.Context, context.CancelFunc) {
	if t.o.streamTimeout > 0 {
		return context.WithTimeout(t.ctx, t.o.streamTimeout)
	}
	return context.WithCancel(t.ctx)
}

// send stamps the session id onto the event and emits it. Emit failures
// mean the client transport is gone; they are logged and otherwise ignored,
// since request-context cancellation ends the turn.
func (t *turn) send(ev Event) {
	ev.SessionID = t.sessionID
	if err := t.emitter.Emit(ev); err != nil {
		t.o.logger.Warn("emit failed",
			"session_id", t.sessionID, "event", ev.Type, "error", err)
	}
}

func (o *Orchestrator) withSystem(history []llm.Message) []llm.Message {
	if o.systemPrompt == "" {
		return history
	}
	msgs := make([]llm.Message, 0, len(history)+1)
	msgs = append(msgs, llm.SystemMessage(o.systemPrompt))
	msgs = append(msgs, history...)
	return msgs
}

// appendToolExchange extends the conversation with one synthetic assistant
// message carrying the whole batch of tool calls, then one tool-role message
// per result keyed by tool_call_id.
func appendToolExchange(msgs []llm.Message, results []ToolResult) []llm.Message {
	calls := make([]llm.ToolCall, 0, len(results))
	for _, r := range results {
		args := r.Args
		if args == nil {
			args = json.RawMessage(`{}`)
		}
		calls = append(calls, llm.ToolCall{
			ID:        r.CallID,
			Name:      r.Tool,
			Arguments: string(args),
		})
	}

	out := append(msgs, llm.AssistantToolCalls(calls))
	for _, r := range results {
		var content []byte
		if r.Err != nil {
			content, _ = json.Marshal(map[string]string{"error": r.Err.SafeMessage()})
		} else {
			content, _ = json.Marshal(r.Result)
		}
		out = append(out, llm.ToolResultMessage(r.CallID, string(content)))
	}
	return out
}
