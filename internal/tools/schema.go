package tools

import "github.com/google/jsonschema-go/jsonschema"

// Schema literal helpers. The schemas are written out explicitly rather than
// inferred from structs so numeric ranges, patterns, and enums appear in the
// definitions the model sees.

func ptrFloat(f float64) *float64 { return &f }

func ptrInt(n int) *int { return &n }

func enumOf(values ...string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

func stringArraySchema(desc string) *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:        "array",
		Items:       &jsonschema.Schema{Type: "string"},
		Description: desc,
	}
}

func genderPrefSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:        "string",
		Enum:        enumOf("Any", "Boys", "Girls", "Co-ed"),
		Description: "School gender preference",
	}
}

func trackPrefSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:        "string",
		Enum:        enumOf("Any", "IP", "O-Level"),
		Description: "School track preference: IP (Integrated Program) or O-Level",
	}
}

func limitSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:        "integer",
		Minimum:     ptrFloat(1),
		Maximum:     ptrFloat(20),
		Description: "Number of schools to return (1-20)",
	}
}

func importanceSchema(desc string) *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:        "string",
		Enum:        enumOf("Low", "Medium", "High"),
		Description: desc,
	}
}

func alScoreSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:        "number",
		Minimum:     ptrFloat(4),
		Maximum:     ptrFloat(30),
		Description: "PSLE Achievement Level score (4-30, lower is better)",
	}
}

func postalCodeSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:        "string",
		Pattern:     `^\d{6}$`,
		Description: "Singapore 6-digit postal code for distance calculation",
	}
}

func primarySchoolSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:        "string",
		MinLength:   ptrInt(1),
		Description: "Current primary school name for affiliation benefits",
	}
}
