package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
)

// GetSchoolDetailsParams is the input of the single-school profile tool.
type GetSchoolDetailsParams struct {
	SchoolIdentifier string `json:"school_identifier"`
}

// NewGetSchoolDetailsTool builds the profile lookup. A miss is a normal
// payload with school null, so the model can ask the user to respell the
// name instead of seeing a hard failure.
func NewGetSchoolDetailsTool(d Deps) *Tool {
	schema := &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"school_identifier": {
				Type:        "string",
				MinLength:   ptrInt(1),
				Description: `School name (e.g., "Raffles Institution", "ACSI") or school code (e.g., "1204")`,
			},
		},
		Required: []string{"school_identifier"},
	}

	return &Tool{
		Name:        "getSchoolDetails",
		Description: `Get comprehensive information about a specific Singapore secondary school. Use this when users ask about a particular school like "Tell me about Raffles Institution" or "What's special about ACSI?".`,
		Schema:      schema,
		Run: func(ctx context.Context, args json.RawMessage, sessionID string) (any, error) {
			var p GetSchoolDetailsParams
			if err := json.Unmarshal(args, &p); err != nil {
				return nil, fmt.Errorf("decoding arguments: %w", err)
			}

			s, err := d.Store.SchoolDetails(ctx, p.SchoolIdentifier)
			if err != nil {
				return nil, fmt.Errorf("school details: %w", err)
			}

			if s == nil {
				d.Logger.Info("school lookup miss",
					"identifier", p.SchoolIdentifier, "session_id", sessionID)
				return map[string]any{
					"school": nil,
					"summary": fmt.Sprintf(
						`I couldn't find a school matching "%s". Could you provide the full school name or try a different spelling?`,
						p.SchoolIdentifier),
					"metadata": map[string]any{
						"sessionId":  sessionID,
						"found":      false,
						"searchType": "details",
					},
				}, nil
			}

			return map[string]any{
				"school":  s,
				"summary": schoolProfileSummary(s),
				"metadata": map[string]any{
					"sessionId":  sessionID,
					"found":      true,
					"searchType": "details",
				},
			}, nil
		},
	}
}
