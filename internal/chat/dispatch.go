package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sandiips/schoolfinder/internal/tools"
)

// ErrorKind classifies dispatch failures.
type ErrorKind int

const (
	// IncompleteArguments: the buffered argument text never closed into
	// valid JSON bracketing by the time the model signalled completion.
	IncompleteArguments ErrorKind = iota + 1
	// MalformedArguments: the buffer parses as invalid JSON.
	MalformedArguments
	// UnknownTool: the model requested a tool name not in the registry.
	UnknownTool
	// InvalidToolInput: parsed arguments failed schema or domain validation.
	InvalidToolInput
	// ToolExecutionFailed: the executor's database/geocoding call failed,
	// timed out, or returned no usable data.
	ToolExecutionFailed
)

func (k ErrorKind) String() string {
	switch k {
	case IncompleteArguments:
		return "incomplete_arguments"
	case MalformedArguments:
		return "malformed_arguments"
	case UnknownTool:
		return "unknown_tool"
	case InvalidToolInput:
		return "invalid_tool_input"
	case ToolExecutionFailed:
		return "tool_execution_failed"
	default:
		return "unknown"
	}
}

// ToolError is the typed failure of one dispatch.
type ToolError struct {
	Kind ErrorKind
	Tool string
	Err  error
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("%s: tool %s: %v", e.Kind, e.Tool, e.Err)
}

func (e *ToolError) Unwrap() error { return e.Err }

// Fatal reports whether the failure corrupts the whole assistant turn.
// A corrupted argument stream or an unknown tool name means the turn cannot
// be trusted, so the entire batch is abandoned. Invalid input or a failed
// executor is a narrower failure scoped to one call.
func (e *ToolError) Fatal() bool {
	switch e.Kind {
	case IncompleteArguments, MalformedArguments, UnknownTool:
		return true
	default:
		return false
	}
}

// SafeMessage returns the static, user-facing string for this failure.
func (e *ToolError) SafeMessage() string {
	switch e.Kind {
	case IncompleteArguments, MalformedArguments:
		return errMsgIncompleteData
	default:
		return errMsgProcessingFailed
	}
}

// ToolResult is the outcome of dispatching one accumulated entry. Exactly
// one of Result and Err is meaningful. Args holds the canonical
// re-serialization of the parsed arguments, used when building the
// follow-up message list.
type ToolResult struct {
	CallID string
	Tool   string
	Args   json.RawMessage
	Result any
	Err    *ToolError
}

// Dispatcher turns accumulated tool calls into executed results.
type Dispatcher struct {
	registry *tools.Registry
	timeout  time.Duration
	logger   *slog.Logger
}

// NewDispatcher creates a dispatcher over the given registry. timeout bounds
// each executor call; zero means no bound.
func NewDispatcher(registry *tools.Registry, timeout time.Duration, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{registry: registry, timeout: timeout, logger: logger}
}

// Dispatch validates and executes one tool call. All failure detail is
// logged here; the returned ToolError carries only what the orchestrator
// needs to branch on.
func (d *Dispatcher) Dispatch(ctx context.Context, call PendingCall, sessionID string) ToolResult {
	res := ToolResult{CallID: call.ID, Tool: call.Name}

	// Cheap bracketing check before any JSON parse. A truncated buffer
	// would otherwise produce a misleading parse error deep inside the
	// payload.
	trimmed := strings.TrimSpace(call.Args)
	if trimmed == "" || !strings.HasPrefix(trimmed, "{") || !strings.HasSuffix(trimmed, "}") {
		d.logger.Error("incomplete tool argument buffer",
			"tool", call.Name,
			"buffer_len", len(trimmed),
			"first_chars", head(trimmed, 50),
			"last_chars", tail(trimmed, 50))
		res.Err = &ToolError{Kind: IncompleteArguments, Tool: call.Name,
			Err: errors.New("argument buffer does not start with { or end with }")}
		return res
	}

	var parsed any
	if err := json.Unmarshal([]byte(trimmed), &parsed); err != nil {
		d.logger.Error("tool argument parse failed",
			"tool", call.Name,
			"buffer_len", len(trimmed),
			"error", err)
		res.Err = &ToolError{Kind: MalformedArguments, Tool: call.Name, Err: err}
		return res
	}

	// Canonical re-serialization for the follow-up request. Kept even when
	// a later step fails, so a per-call failure can still be echoed back to
	// the model with its arguments intact.
	args, err := json.Marshal(parsed)
	if err != nil {
		res.Err = &ToolError{Kind: MalformedArguments, Tool: call.Name, Err: err}
		return res
	}
	res.Args = args

	tool, ok := d.registry.Get(call.Name)
	if !ok {
		d.logger.Error("model requested unregistered tool", "tool", call.Name)
		res.Err = &ToolError{Kind: UnknownTool, Tool: call.Name,
			Err: fmt.Errorf("unknown tool %q", call.Name)}
		return res
	}

	if err := tool.ValidateInput(parsed); err != nil {
		d.logger.Warn("tool input failed schema validation",
			"tool", call.Name, "error", err)
		res.Err = &ToolError{Kind: InvalidToolInput, Tool: call.Name, Err: err}
		return res
	}

	execCtx := ctx
	if d.timeout > 0 {
		var cancel context.CancelFunc
		execCtx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	out, err := tool.Run(execCtx, args, sessionID)
	if err != nil {
		var invalid *tools.InvalidInputError
		if errors.As(err, &invalid) {
			d.logger.Warn("tool rejected input", "tool", call.Name, "error", err)
			res.Err = &ToolError{Kind: InvalidToolInput, Tool: call.Name, Err: err}
			return res
		}
		d.logger.Error("tool execution failed", "tool", call.Name, "error", err)
		res.Err = &ToolError{Kind: ToolExecutionFailed, Tool: call.Name, Err: err}
		return res
	}

	d.logger.Info("tool executed", "tool", call.Name, "session_id", sessionID)
	res.Result = out
	return res
}

func head(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
