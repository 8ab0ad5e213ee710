package tools

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/jsonschema-go/jsonschema"
)

func noopRun(ctx context.Context, args json.RawMessage, sessionID string) (any, error) {
	return nil, nil
}

func TestRegistryRegisterAndLookup(t *testing.T) {
	r := NewRegistry()

	err := r.Register(&Tool{
		Name:   "first",
		Schema: &jsonschema.Schema{Type: "object"},
		Run:    noopRun,
	})
	if err != nil {
		t.Fatal(err)
	}

	if _, ok := r.Get("first"); !ok {
		t.Error("registered tool not found")
	}
	if _, ok := r.Get("absent"); ok {
		t.Error("lookup of unregistered tool succeeded")
	}
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	r := NewRegistry()
	tool := func() *Tool {
		return &Tool{Name: "dup", Schema: &jsonschema.Schema{Type: "object"}, Run: noopRun}
	}
	if err := r.Register(tool()); err != nil {
		t.Fatal(err)
	}
	if err := r.Register(tool()); err == nil {
		t.Error("duplicate registration accepted")
	}
}

func TestRegistryDefsPreserveOrder(t *testing.T) {
	r := NewRegistry()
	for _, name := range []string{"zeta", "alpha", "mid"} {
		if err := r.Register(&Tool{Name: name, Schema: &jsonschema.Schema{Type: "object"}, Run: noopRun}); err != nil {
			t.Fatal(err)
		}
	}

	defs := r.Defs()
	if len(defs) != 3 || defs[0].Name != "zeta" || defs[1].Name != "alpha" || defs[2].Name != "mid" {
		t.Errorf("defs out of registration order: %v", defs)
	}
	if defs[0].Parameters["type"] != "object" {
		t.Errorf("schema not rendered: %v", defs[0].Parameters)
	}
}

func TestValidateInputEnforcesConstraints(t *testing.T) {
	r := NewRegistry()
	err := r.Register(&Tool{
		Name: "constrained",
		Schema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"al_score":    alScoreSchema(),
				"postal_code": postalCodeSchema(),
				"gender":      genderPrefSchema(),
			},
			Required: []string{"al_score", "postal_code"},
		},
		Run: noopRun,
	})
	if err != nil {
		t.Fatal(err)
	}
	tool, _ := r.Get("constrained")

	valid := map[string]any{"al_score": float64(8), "postal_code": "560123", "gender": "Boys"}
	if err := tool.ValidateInput(valid); err != nil {
		t.Errorf("valid input rejected: %v", err)
	}

	cases := map[string]map[string]any{
		"missing required": {"al_score": float64(8)},
		"score too low":    {"al_score": float64(3), "postal_code": "560123"},
		"score too high":   {"al_score": float64(31), "postal_code": "560123"},
		"bad postal":       {"al_score": float64(8), "postal_code": "12345"},
		"bad enum":         {"al_score": float64(8), "postal_code": "560123", "gender": "Mixed"},
	}
	for name, input := range cases {
		if err := tool.ValidateInput(input); err == nil {
			t.Errorf("%s: invalid input accepted", name)
		}
	}
}

func TestRegisterAllSevenTools(t *testing.T) {
	deps, _ := testDeps(&fakeStore{}, &fakeGeocoder{})
	r := NewRegistry()
	if err := RegisterAll(r, deps); err != nil {
		t.Fatal(err)
	}

	want := []string{
		"rankSchools",
		"searchSchoolsBySport",
		"searchSchoolsByCCA",
		"searchSchoolsByAcademic",
		"getSchoolDetails",
		"searchSchoolsByAffiliation",
		"rankSchoolsSimple",
	}
	got := r.Names()
	if len(got) != len(want) {
		t.Fatalf("got %d tools, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("tool %d: got %s, want %s", i, got[i], want[i])
		}
	}
}
