package llm

// Role represents a chat message role.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Message is a single message in a conversation. The conversation is
// append-only for the duration of one request; the client resends the full
// history each turn.
type Message struct {
	Role       Role       `json:"role"`
	Content    string     `json:"content,omitempty"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"` // For tool result messages
	Name       string     `json:"name,omitempty"`
}

// ToolCall represents a complete tool invocation requested by the model.
// Arguments is the serialized JSON argument object.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ToolDef defines a tool that the model can call.
type ToolDef struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"` // JSON Schema
}

// Response is the result of a non-streaming chat completion call.
type Response struct {
	Message Message
}

// StreamDelta is one normalized chunk of a streaming completion. A delta
// carries zero or more of: a prose content fragment, tool-call fragments,
// and a finish reason on the final chunk of a turn.
type StreamDelta struct {
	Content      string
	ToolCalls    []ToolCallDelta
	FinishReason string
}

// ToolCallDelta is one fragment of a tool call. Index is the only reliable
// correlation key within a turn; ID and Name typically arrive only on the
// first fragment for an index, Arguments on every fragment.
type ToolCallDelta struct {
	Index     int
	ID        string
	Name      string
	Arguments string
}

// FinishReasonToolCalls marks a turn that stopped because the model wants
// tools executed.
const FinishReasonToolCalls = "tool_calls"

// Stream yields normalized deltas from one model turn.
type Stream interface {
	// Next advances to the next delta. It returns false when the stream
	// is exhausted or errored; check Err afterwards.
	Next() bool
	Current() StreamDelta
	Err() error
	Close() error
}

// Helper constructors

func SystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

func AssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

// AssistantToolCalls builds the synthetic assistant message that carries the
// batch of dispatched tool calls in a follow-up request.
func AssistantToolCalls(calls []ToolCall) Message {
	return Message{Role: RoleAssistant, ToolCalls: calls}
}

func ToolResultMessage(toolCallID, content string) Message {
	return Message{Role: RoleTool, Content: content, ToolCallID: toolCallID}
}
