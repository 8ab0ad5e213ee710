package chat

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/sandiips/schoolfinder/internal/tools"
)

func testRegistry(t *testing.T) *tools.Registry {
	t.Helper()
	r := tools.NewRegistry()

	objectSchema := func() *jsonschema.Schema {
		return &jsonschema.Schema{Type: "object"}
	}

	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatal(err)
		}
	}

	must(r.Register(&tools.Tool{
		Name:        "echo",
		Description: "returns its arguments",
		Schema:      objectSchema(),
		Run: func(ctx context.Context, args json.RawMessage, sessionID string) (any, error) {
			var m map[string]any
			if err := json.Unmarshal(args, &m); err != nil {
				return nil, err
			}
			return m, nil
		},
	}))

	minLen := 1
	must(r.Register(&tools.Tool{
		Name:        "strict",
		Description: "requires a name field",
		Schema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"name": {Type: "string", MinLength: &minLen},
			},
			Required: []string{"name"},
		},
		Run: func(ctx context.Context, args json.RawMessage, sessionID string) (any, error) {
			return "ok", nil
		},
	}))

	must(r.Register(&tools.Tool{
		Name:        "boom",
		Description: "always fails",
		Schema:      objectSchema(),
		Run: func(ctx context.Context, args json.RawMessage, sessionID string) (any, error) {
			return nil, errors.New("database on fire")
		},
	}))

	must(r.Register(&tools.Tool{
		Name:        "picky",
		Description: "rejects its input at runtime",
		Schema:      objectSchema(),
		Run: func(ctx context.Context, args json.RawMessage, sessionID string) (any, error) {
			return nil, tools.Invalidf("postal_code", "district out of range")
		},
	}))

	return r
}

func newTestDispatcher(t *testing.T) *Dispatcher {
	t.Helper()
	return NewDispatcher(testRegistry(t), time.Second, testLogger())
}

func TestDispatchIncompleteArguments(t *testing.T) {
	d := newTestDispatcher(t)

	for _, args := range []string{"", "   ", `{"truncated": tru`, `"al_score": 8}`} {
		res := d.Dispatch(context.Background(), PendingCall{ID: "c1", Name: "echo", Args: args}, "s1")
		if res.Err == nil || res.Err.Kind != IncompleteArguments {
			t.Errorf("args %q: got %v, want IncompleteArguments", args, res.Err)
		}
		if !res.Err.Fatal() {
			t.Errorf("args %q: IncompleteArguments must be fatal", args)
		}
	}
}

func TestDispatchMalformedArguments(t *testing.T) {
	d := newTestDispatcher(t)

	// Brackets balance but the interior is invalid JSON.
	res := d.Dispatch(context.Background(), PendingCall{ID: "c1", Name: "echo", Args: `{"a": }`}, "s1")
	if res.Err == nil || res.Err.Kind != MalformedArguments {
		t.Fatalf("got %v, want MalformedArguments", res.Err)
	}
	if !res.Err.Fatal() {
		t.Error("MalformedArguments must be fatal")
	}
	if res.Err.SafeMessage() != errMsgIncompleteData {
		t.Errorf("got safe message %q", res.Err.SafeMessage())
	}
}

func TestDispatchUnknownTool(t *testing.T) {
	d := newTestDispatcher(t)

	res := d.Dispatch(context.Background(), PendingCall{ID: "c1", Name: "nonsense", Args: `{}`}, "s1")
	if res.Err == nil || res.Err.Kind != UnknownTool {
		t.Fatalf("got %v, want UnknownTool", res.Err)
	}
	if !res.Err.Fatal() {
		t.Error("UnknownTool must be fatal")
	}
}

func TestDispatchSchemaValidationFailure(t *testing.T) {
	d := newTestDispatcher(t)

	res := d.Dispatch(context.Background(), PendingCall{ID: "c1", Name: "strict", Args: `{}`}, "s1")
	if res.Err == nil || res.Err.Kind != InvalidToolInput {
		t.Fatalf("got %v, want InvalidToolInput", res.Err)
	}
	if res.Err.Fatal() {
		t.Error("InvalidToolInput must not be fatal")
	}
	if res.Args == nil {
		t.Error("canonical args should survive a per-call failure")
	}
}

func TestDispatchExecutorFailure(t *testing.T) {
	d := newTestDispatcher(t)

	res := d.Dispatch(context.Background(), PendingCall{ID: "c1", Name: "boom", Args: `{}`}, "s1")
	if res.Err == nil || res.Err.Kind != ToolExecutionFailed {
		t.Fatalf("got %v, want ToolExecutionFailed", res.Err)
	}
	if res.Err.Fatal() {
		t.Error("ToolExecutionFailed must not be fatal")
	}
	if res.Err.SafeMessage() != errMsgProcessingFailed {
		t.Errorf("got safe message %q", res.Err.SafeMessage())
	}
}

func TestDispatchRuntimeInvalidInput(t *testing.T) {
	d := newTestDispatcher(t)

	res := d.Dispatch(context.Background(), PendingCall{ID: "c1", Name: "picky", Args: `{}`}, "s1")
	if res.Err == nil || res.Err.Kind != InvalidToolInput {
		t.Fatalf("got %v, want InvalidToolInput for runtime rejection", res.Err)
	}
}

func TestDispatchSuccess(t *testing.T) {
	d := newTestDispatcher(t)

	res := d.Dispatch(context.Background(),
		PendingCall{ID: "c1", Name: "echo", Args: ` {"sport_name": "Tennis"} `}, "s1")
	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	out, ok := res.Result.(map[string]any)
	if !ok || out["sport_name"] != "Tennis" {
		t.Errorf("got result %v", res.Result)
	}
	if string(res.Args) != `{"sport_name":"Tennis"}` {
		t.Errorf("canonical args: %s", res.Args)
	}
}
