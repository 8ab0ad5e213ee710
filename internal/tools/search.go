package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/sandiips/schoolfinder/internal/school"
)

// SearchSchoolsBySportParams is the input of the sport-ranking tool.
type SearchSchoolsBySportParams struct {
	SportName        string `json:"sport_name"`
	GenderPreference string `json:"gender_preference"`
	TrackPreference  string `json:"track_preference"`
	Limit            int    `json:"limit"`
}

// SearchSchoolsByCCAParams is the input of the CCA-ranking tool.
type SearchSchoolsByCCAParams struct {
	CCAName          string `json:"cca_name"`
	GenderPreference string `json:"gender_preference"`
	TrackPreference  string `json:"track_preference"`
	Limit            int    `json:"limit"`
}

// SearchSchoolsByAcademicParams is the input of the academic-ranking tool.
type SearchSchoolsByAcademicParams struct {
	AcademicFocus    string `json:"academic_focus"`
	GenderPreference string `json:"gender_preference"`
	TrackPreference  string `json:"track_preference"`
	Limit            int    `json:"limit"`
}

func searchDefaults(gender, track *string, limit *int) {
	if *gender == "" {
		*gender = "Any"
	}
	if *track == "" {
		*track = "Any"
	}
	if *limit == 0 {
		*limit = 10
	}
}

// searchMetadata is the metadata block attached to every structured search
// payload.
func searchMetadata(sessionID, searchType string, params any, count int) map[string]any {
	return map[string]any{
		"sessionId":    sessionID,
		"searchParams": params,
		"resultsCount": count,
		"generatedAt":  time.Now().UTC().Format(time.RFC3339),
		"searchType":   searchType,
	}
}

// NewSearchSchoolsBySportTool builds the sport-performance search. Unlike
// the personalized rankings it needs no student profile at all.
func NewSearchSchoolsBySportTool(d Deps) *Tool {
	schema := &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"sport_name": {
				Type:        "string",
				MinLength:   ptrInt(1),
				Description: `Name of the sport to search for (e.g., "Tennis", "Basketball", "Swimming")`,
			},
			"gender_preference": genderPrefSchema(),
			"track_preference":  trackPrefSchema(),
			"limit":             limitSchema(),
		},
		Required: []string{"sport_name"},
	}

	return &Tool{
		Name:        "searchSchoolsBySport",
		Description: `Search for Singapore secondary schools with strong programs in a specific sport. Use this when users ask about sports performance like "best schools for tennis" or "which schools are strong in basketball".`,
		Schema:      schema,
		Run: func(ctx context.Context, args json.RawMessage, sessionID string) (any, error) {
			var p SearchSchoolsBySportParams
			if err := json.Unmarshal(args, &p); err != nil {
				return nil, fmt.Errorf("decoding arguments: %w", err)
			}
			searchDefaults(&p.GenderPreference, &p.TrackPreference, &p.Limit)

			if !d.Options.HasSport(p.SportName) {
				return nil, Invalidf("sport_name", "unknown sport %q", p.SportName)
			}

			schools, err := d.Store.SearchBySport(ctx, school.SearchQuery{
				Term:       p.SportName,
				GenderPref: p.GenderPreference,
				TrackPref:  p.TrackPreference,
				Limit:      p.Limit,
			})
			if err != nil {
				return nil, fmt.Errorf("sport search: %w", err)
			}

			return map[string]any{
				"schools":  schools,
				"summary":  sportSummary(schools, p),
				"metadata": searchMetadata(sessionID, "sport", p, len(schools)),
			}, nil
		},
	}
}

// NewSearchSchoolsByCCATool builds the CCA-performance search.
func NewSearchSchoolsByCCATool(d Deps) *Tool {
	schema := &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"cca_name": {
				Type:        "string",
				MinLength:   ptrInt(1),
				Description: `Name of the CCA to search for (e.g., "Robotics", "Math Olympiad", "Astronomy", "Chemistry Olympiad", "National STEM")`,
			},
			"gender_preference": genderPrefSchema(),
			"track_preference":  trackPrefSchema(),
			"limit":             limitSchema(),
		},
		Required: []string{"cca_name"},
	}

	return &Tool{
		Name:        "searchSchoolsByCCA",
		Description: `Search for Singapore secondary schools with strong CCA (Co-Curricular Activities) programs. Use this when users ask about specific CCAs like "best schools for robotics" or "which schools are strong in Math Olympiad".`,
		Schema:      schema,
		Run: func(ctx context.Context, args json.RawMessage, sessionID string) (any, error) {
			var p SearchSchoolsByCCAParams
			if err := json.Unmarshal(args, &p); err != nil {
				return nil, fmt.Errorf("decoding arguments: %w", err)
			}
			searchDefaults(&p.GenderPreference, &p.TrackPreference, &p.Limit)

			// The CCA vocabulary keeps growing; unknown names pass through
			// to the database rather than being rejected here.
			schools, err := d.Store.SearchByCCA(ctx, school.SearchQuery{
				Term:       p.CCAName,
				GenderPref: p.GenderPreference,
				TrackPref:  p.TrackPreference,
				Limit:      p.Limit,
			})
			if err != nil {
				return nil, fmt.Errorf("cca search: %w", err)
			}

			return map[string]any{
				"schools":  schools,
				"summary":  ccaSummary(schools, p),
				"metadata": searchMetadata(sessionID, "cca", p, len(schools)),
			}, nil
		},
	}
}

// NewSearchSchoolsByAcademicTool builds the academic-strength search.
func NewSearchSchoolsByAcademicTool(d Deps) *Tool {
	schema := &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"academic_focus": {
				Type:        "string",
				Enum:        enumOf("Overall", "Astronomy", "Chemistry Olympiad", "Math Olympiad", "Robotics", "National STEM"),
				Description: "Academic focus: 'Overall' for general rankings, or specific CCA category",
			},
			"gender_preference": genderPrefSchema(),
			"track_preference":  trackPrefSchema(),
			"limit":             limitSchema(),
		},
		Required: []string{"academic_focus"},
	}

	return &Tool{
		Name:        "searchSchoolsByAcademic",
		Description: `Search for Singapore secondary schools by academic performance and specific academic programs. Use this when users ask about "top IP schools", "best schools for Math Olympiad", or "academically strong schools".`,
		Schema:      schema,
		Run: func(ctx context.Context, args json.RawMessage, sessionID string) (any, error) {
			var p SearchSchoolsByAcademicParams
			if err := json.Unmarshal(args, &p); err != nil {
				return nil, fmt.Errorf("decoding arguments: %w", err)
			}
			if p.AcademicFocus == "" {
				p.AcademicFocus = "Overall"
			}
			searchDefaults(&p.GenderPreference, &p.TrackPreference, &p.Limit)

			schools, err := d.Store.SearchByAcademic(ctx, school.SearchQuery{
				Term:       p.AcademicFocus,
				GenderPref: p.GenderPreference,
				TrackPref:  p.TrackPreference,
				Limit:      p.Limit,
			})
			if err != nil {
				return nil, fmt.Errorf("academic search: %w", err)
			}

			return map[string]any{
				"schools":  schools,
				"summary":  academicSummary(schools, p),
				"metadata": searchMetadata(sessionID, "academic", p, len(schools)),
			}, nil
		},
	}
}
