package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
)

// SearchSchoolsByAffiliationParams is the input of the affiliation lookup.
type SearchSchoolsByAffiliationParams struct {
	PrimarySchoolName string `json:"primary_school_name"`
}

// NewSearchSchoolsByAffiliationTool builds the affiliation lookup. The
// payload is rendered text: cut-off bands for affiliated and non-affiliated
// students plus the AL-point advantage.
func NewSearchSchoolsByAffiliationTool(d Deps) *Tool {
	schema := &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"primary_school_name": {
				Type:        "string",
				MinLength:   ptrInt(1),
				Description: `Name of the primary school to search affiliations for (e.g., "Rosyth School", "Tao Nan School", "Anderson Primary")`,
			},
		},
		Required: []string{"primary_school_name"},
	}

	return &Tool{
		Name:        "searchSchoolsByAffiliation",
		Description: `Find secondary schools affiliated with a specific primary school. Use this when users ask "What schools are affiliated with XXX primary?" or "Which secondary schools give priority to students from XXX Primary?". Returns schools with affiliation benefits and cut-off score advantages.`,
		Schema:      schema,
		Run: func(ctx context.Context, args json.RawMessage, sessionID string) (any, error) {
			var p SearchSchoolsByAffiliationParams
			if err := json.Unmarshal(args, &p); err != nil {
				return nil, fmt.Errorf("decoding arguments: %w", err)
			}

			schools, err := d.Store.SearchByAffiliation(ctx, p.PrimarySchoolName)
			if err != nil {
				return nil, fmt.Errorf("affiliation search: %w", err)
			}

			return formatAffiliatedSchools(schools, p.PrimarySchoolName), nil
		},
	}
}
