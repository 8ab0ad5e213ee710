package chat

// Event types pushed to the client during one chat turn.
const (
	EventContent    = "content"
	EventToolStart  = "tool_start"
	EventToolResult = "tool_result"
	EventError      = "error"
	EventDone       = "done"
)

// Event is one typed frame of the chat stream. Every event carries the
// session identifier so a client can discard stale events after a reset.
type Event struct {
	Type      string `json:"type"`
	Content   string `json:"content,omitempty"`
	ToolName  string `json:"toolName,omitempty"`
	Result    any    `json:"result,omitempty"`
	Error     string `json:"error,omitempty"`
	SessionID string `json:"sessionId"`
}

// Emitter delivers events to the client. Implementations include the SSE
// framer, the WebSocket relay, and the CLI printer.
type Emitter interface {
	Emit(Event) error
}

// EmitterFunc adapts a function to the Emitter interface.
type EmitterFunc func(Event) error

func (f EmitterFunc) Emit(ev Event) error { return f(ev) }

// Static, user-safe error strings. Internal detail stays in the server log
// and never reaches an error event.
const (
	errMsgIncompleteData   = "Received incomplete data from AI. Please try again."
	errMsgProcessingFailed = "Failed to process school search. Please try again."
	errMsgConversation     = "An error occurred during the conversation."
)
