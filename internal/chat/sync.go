package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/sandiips/schoolfinder/internal/llm"
)

// SyncToolResult is one executed tool call in a non-streaming response.
type SyncToolResult struct {
	Tool   string `json:"toolName"`
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

// SyncResponse is the buffered form of a full chat turn, for clients that
// opt out of streaming.
type SyncResponse struct {
	Message     string           `json:"message"`
	ToolResults []SyncToolResult `json:"toolResults,omitempty"`
	SessionID   string           `json:"sessionId"`
	Timestamp   time.Time        `json:"timestamp"`
}

// RunSync executes one full chat turn without streaming. It follows the same
// states as RunStream but buffers everything and returns it in one payload.
func (o *Orchestrator) RunSync(ctx context.Context, history []llm.Message, sessionID string) (*SyncResponse, error) {
	msgs := o.withSystem(history)

	resp, err := o.llm.Chat(ctx, msgs, o.registry.Defs())
	if err != nil {
		return nil, fmt.Errorf("primary completion: %w", err)
	}

	out := &SyncResponse{
		Message:   resp.Message.Content,
		SessionID: sessionID,
		Timestamp: time.Now().UTC(),
	}
	if len(resp.Message.ToolCalls) == 0 {
		return out, nil
	}

	results := make([]ToolResult, 0, len(resp.Message.ToolCalls))
	for i, tc := range resp.Message.ToolCalls {
		call := PendingCall{Index: i, ID: tc.ID, Name: tc.Name, Args: tc.Arguments}
		res := o.dispatcher.Dispatch(ctx, call, sessionID)
		if res.Err != nil && res.Err.Fatal() {
			return nil, res.Err
		}
		results = append(results, res)
	}

	for _, r := range results {
		sr := SyncToolResult{Tool: r.Tool}
		if r.Err != nil {
			sr.Error = r.Err.SafeMessage()
		} else {
			sr.Result = r.Result
		}
		out.ToolResults = append(out.ToolResults, sr)
	}

	followup, err := o.llm.Chat(ctx, appendToolExchange(msgs, results), nil)
	if err != nil {
		return nil, fmt.Errorf("follow-up completion: %w", err)
	}
	out.Message = followup.Message.Content
	return out, nil
}
