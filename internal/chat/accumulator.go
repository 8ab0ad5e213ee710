package chat

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/sandiips/schoolfinder/internal/llm"
)

// PendingCall is one tool call reconstructed from the delta stream. Args is
// the concatenation of every argument fragment received for its index, in
// arrival order; it is expected to be a complete JSON object by the time the
// turn's finish reason reports tool calls ready.
type PendingCall struct {
	Index int
	ID    string
	Name  string
	Args  string
}

// Accumulator buffers fragmentary tool-call deltas for one assistant turn.
// Entries are keyed by the stream-assigned index, never by id: ids are not
// guaranteed present on every fragment, and fragments for multiple calls may
// interleave. The accumulator is request-scoped and not safe for concurrent
// use; the orchestrator feeds it from a single stream-consuming loop.
type Accumulator struct {
	calls   map[int]*PendingCall
	onStart func(name string)
	logger  *slog.Logger
}

// NewAccumulator creates an empty accumulator. onStart fires once per tool
// call, when the fragment carrying its function name first arrives; the
// orchestrator uses it to emit tool_start events.
func NewAccumulator(onStart func(name string), logger *slog.Logger) *Accumulator {
	return &Accumulator{
		calls:   make(map[int]*PendingCall),
		onStart: onStart,
		logger:  logger,
	}
}

// OnFragment folds one tool-call delta into the buffer at its index. A named
// fragment creates the entry; argument text appends to an existing entry.
// Argument text for an index with no entry is a protocol violation from the
// upstream stream; it is logged and dropped rather than failing the turn.
func (a *Accumulator) OnFragment(d llm.ToolCallDelta) {
	if d.Name != "" {
		if _, ok := a.calls[d.Index]; !ok {
			id := d.ID
			if id == "" {
				id = fmt.Sprintf("tool_%d", d.Index)
			}
			a.calls[d.Index] = &PendingCall{
				Index: d.Index,
				ID:    id,
				Name:  d.Name,
			}
			a.logger.Debug("tool call initialized",
				"index", d.Index, "tool", d.Name)
			if a.onStart != nil {
				a.onStart(d.Name)
			}
		}
	}

	if d.Arguments != "" {
		entry, ok := a.calls[d.Index]
		if !ok {
			a.logger.Warn("dropping argument fragment for uninitialized tool call",
				"index", d.Index, "fragment_len", len(d.Arguments))
			return
		}
		entry.Args += d.Arguments
	}
}

// Len returns the number of buffered tool calls.
func (a *Accumulator) Len() int { return len(a.calls) }

// Snapshot returns the buffered calls ordered by index ascending, without
// mutating state.
func (a *Accumulator) Snapshot() []PendingCall {
	out := make([]PendingCall, 0, len(a.calls))
	for _, c := range a.calls {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}

// Clear resets all entries. Called exactly once per assistant turn, after
// dispatch, so stale arguments cannot leak into a later turn reusing the
// same indices.
func (a *Accumulator) Clear() {
	clear(a.calls)
}
