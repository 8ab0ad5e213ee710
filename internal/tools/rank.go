package tools

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/sandiips/schoolfinder/internal/cache"
	"github.com/sandiips/schoolfinder/internal/geo"
	"github.com/sandiips/schoolfinder/internal/prompts"
	"github.com/sandiips/schoolfinder/internal/school"
)

// RankResultTTL is how long a ranking result stays cached. Ranking inputs
// are deterministic against a dataset that changes at most daily.
const RankResultTTL = 24 * time.Hour

// Deps bundles the collaborators the tool executors need.
type Deps struct {
	Store    school.Store
	Geocoder geo.Geocoder
	Cache    cache.Cache
	Options  prompts.Options
	Logger   *slog.Logger
}

// RegisterAll builds the seven school tools and registers them.
func RegisterAll(r *Registry, d Deps) error {
	all := []*Tool{
		NewRankSchoolsTool(d),
		NewSearchSchoolsBySportTool(d),
		NewSearchSchoolsByCCATool(d),
		NewSearchSchoolsByAcademicTool(d),
		NewGetSchoolDetailsTool(d),
		NewSearchSchoolsByAffiliationTool(d),
		NewRankSchoolsSimpleTool(d),
	}
	for _, t := range all {
		if err := r.Register(t); err != nil {
			return err
		}
	}
	return nil
}

// RankSchoolsParams is the input of the weighted ranking tool.
type RankSchoolsParams struct {
	ALScore            int      `json:"al_score"`
	PostalCode         string   `json:"postal_code"`
	PrimarySchool      string   `json:"primary_school"`
	GenderPreference   string   `json:"gender_preference"`
	SportsSelected     []string `json:"sports_selected"`
	CCAsSelected       []string `json:"ccas_selected"`
	CultureSelected    []string `json:"culture_selected"`
	DistanceImportance string   `json:"distance_importance"`
	SportsImportance   string   `json:"sports_importance"`
	CCAImportance      string   `json:"cca_importance"`
	CultureImportance  string   `json:"culture_importance"`
}

func (p *RankSchoolsParams) applyDefaults() {
	if p.GenderPreference == "" {
		p.GenderPreference = "Any"
	}
	if p.DistanceImportance == "" {
		p.DistanceImportance = "Low"
	}
	if p.SportsImportance == "" {
		p.SportsImportance = "Low"
	}
	if p.CCAImportance == "" {
		p.CCAImportance = "Low"
	}
	if p.CultureImportance == "" {
		p.CultureImportance = "Low"
	}
}

// rankingCacheKey derives the deterministic cache key for a parameter set.
// Preference arrays are sorted and object keys ordered so two requests that
// differ only in array order share one entry.
func rankingCacheKey(p RankSchoolsParams) string {
	normalized := map[string]any{
		"al_score":            p.ALScore,
		"postal_code":         p.PostalCode,
		"primary_school":      p.PrimarySchool,
		"gender_preference":   p.GenderPreference,
		"sports_selected":     sortedCopy(p.SportsSelected),
		"ccas_selected":       sortedCopy(p.CCAsSelected),
		"culture_selected":    sortedCopy(p.CultureSelected),
		"distance_importance": p.DistanceImportance,
		"sports_importance":   p.SportsImportance,
		"cca_importance":      p.CCAImportance,
		"culture_importance":  p.CultureImportance,
	}
	// Map marshaling orders keys alphabetically, which makes the encoding
	// canonical.
	data, _ := json.Marshal(normalized)
	return "ai_rank:" + base64.StdEncoding.EncodeToString(data)
}

func sortedCopy(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	sort.Strings(out)
	return out
}

// validatePreferences checks the free-form preference arrays against the
// option vocabulary. A name outside the vocabulary would silently match
// nothing, so it is rejected up front.
func validatePreferences(p RankSchoolsParams, opts prompts.Options) error {
	if !school.ValidPostalCode(p.PostalCode) {
		return Invalidf("postal_code", "%q is not a valid Singapore postal code (districts 01-82)", p.PostalCode)
	}
	for _, s := range p.SportsSelected {
		if !opts.HasSport(s) {
			return Invalidf("sports_selected", "unknown sport %q", s)
		}
	}
	for _, c := range p.CCAsSelected {
		if !opts.HasCCA(c) {
			return Invalidf("ccas_selected", "unknown CCA %q", c)
		}
	}
	for _, c := range p.CultureSelected {
		if !opts.HasCulture(c) {
			return Invalidf("culture_selected", "unknown culture trait %q", c)
		}
	}
	return nil
}

// NewRankSchoolsTool builds the weighted personalized ranking tool:
// geocode the postal code, convert importances to weights, call the ranking
// function, and render the result text. Results are cached by canonical key.
func NewRankSchoolsTool(d Deps) *Tool {
	schema := &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"al_score":            alScoreSchema(),
			"postal_code":         postalCodeSchema(),
			"primary_school":      primarySchoolSchema(),
			"gender_preference":   genderPrefSchema(),
			"sports_selected":     stringArraySchema("List of sports interests from available options"),
			"ccas_selected":       stringArraySchema("List of CCA interests from available options"),
			"culture_selected":    stringArraySchema("List of school culture traits from available options"),
			"distance_importance": importanceSchema("Importance of distance from home"),
			"sports_importance":   importanceSchema("Importance of sports programs"),
			"cca_importance":      importanceSchema("Importance of CCA programs"),
			"culture_importance":  importanceSchema("Importance of school culture alignment"),
		},
		Required: []string{"al_score", "postal_code", "primary_school"},
	}

	return &Tool{
		Name:        "rankSchools",
		Description: "Find and rank Singapore secondary schools based on student PSLE AL score, location, and preferences. Always use this tool when users ask for school recommendations.",
		Schema:      schema,
		Run: func(ctx context.Context, args json.RawMessage, sessionID string) (any, error) {
			var p RankSchoolsParams
			if err := json.Unmarshal(args, &p); err != nil {
				return nil, fmt.Errorf("decoding arguments: %w", err)
			}
			p.applyDefaults()

			if err := validatePreferences(p, d.Options); err != nil {
				return nil, err
			}

			key := rankingCacheKey(p)
			if cached, ok := d.Cache.Get(key); ok {
				d.Logger.Info("ranking cache hit", "session_id", sessionID)
				return cached, nil
			}

			point, err := d.Geocoder.Geocode(ctx, p.PostalCode)
			if err != nil {
				return nil, fmt.Errorf("geocoding postal code %s: %w", p.PostalCode, err)
			}

			slug := school.Slugify(p.PrimarySchool)
			var slugPtr *string
			if slug != "" {
				slugPtr = &slug
			}

			schools, err := d.Store.RankSchools(ctx, school.RankQuery{
				ALScore:        p.ALScore,
				Lat:            point.Lat,
				Lng:            point.Lng,
				GenderPref:     p.GenderPreference,
				Sports:         p.SportsSelected,
				CCAs:           p.CCAsSelected,
				Culture:        p.CultureSelected,
				MaxDistanceKM:  30,
				WeightDistance: toWeight(p.DistanceImportance),
				WeightSport:    toWeight(p.SportsImportance),
				WeightCCA:      toWeight(p.CCAImportance),
				WeightCulture:  toWeight(p.CultureImportance),
				Limit:          6,
				PrimarySlug:    slugPtr,
			})
			if err != nil {
				return nil, fmt.Errorf("ranking schools: %w", err)
			}

			if len(schools) == 0 {
				return fmt.Sprintf(`I couldn't find any schools matching your criteria (AL %d, postal code %s).

This could mean:
1. The criteria might be too restrictive
2. Try adjusting your preferences or expanding your search area

Would you like me to search with different criteria?`, p.ALScore, p.PostalCode), nil
			}

			out := formatRankedSchools(schools, p)
			d.Cache.Set(key, out, RankResultTTL)
			return out, nil
		},
	}
}

// RankSchoolsSimpleParams is the input of the distance-first ranking tool.
type RankSchoolsSimpleParams struct {
	ALScore       int    `json:"al_score"`
	PostalCode    string `json:"postal_code"`
	PrimarySchool string `json:"primary_school"`
	Limit         int    `json:"limit"`
}

// NewRankSchoolsSimpleTool builds the basic location-based search used when
// the student gives score, postal code, and primary school with no further
// preferences.
func NewRankSchoolsSimpleTool(d Deps) *Tool {
	schema := &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"al_score":       alScoreSchema(),
			"postal_code":    postalCodeSchema(),
			"primary_school": primarySchoolSchema(),
			"limit":          limitSchema(),
		},
		Required: []string{"al_score", "postal_code", "primary_school"},
	}

	return &Tool{
		Name:        "rankSchoolsSimple",
		Description: "Find schools near the user based on AL score, postal code, and primary school. Use this when the user provides all three pieces of information and wants simple personalized recommendations without specific sports/CCA/culture preferences. This is a distance-first search that shows schools the user can likely get into.",
		Schema:      schema,
		Run: func(ctx context.Context, args json.RawMessage, sessionID string) (any, error) {
			var p RankSchoolsSimpleParams
			if err := json.Unmarshal(args, &p); err != nil {
				return nil, fmt.Errorf("decoding arguments: %w", err)
			}
			if p.Limit == 0 {
				p.Limit = 10
			}

			if !school.ValidPostalCode(p.PostalCode) {
				return nil, Invalidf("postal_code", "%q is not a valid Singapore postal code (districts 01-82)", p.PostalCode)
			}

			point, err := d.Geocoder.Geocode(ctx, p.PostalCode)
			if err != nil {
				// A failed geocode on this path reads as a reply, not an
				// abort: the student likely just mistyped the code.
				d.Logger.Warn("geocode failed", "postal_code", p.PostalCode, "error", err)
				return fmt.Sprintf(`I couldn't geocode postal code "%s". Please check that it's a valid 6-digit Singapore postal code.`, p.PostalCode), nil
			}

			slug := school.Slugify(p.PrimarySchool)
			var slugPtr *string
			if slug != "" {
				slugPtr = &slug
			}

			schools, err := d.Store.RankSchoolsSimple(ctx, school.SimpleRankQuery{
				ALScore:     p.ALScore,
				Lat:         point.Lat,
				Lng:         point.Lng,
				Limit:       p.Limit,
				Year:        2024,
				PrimarySlug: slugPtr,
			})
			if err != nil {
				return nil, fmt.Errorf("ranking schools: %w", err)
			}

			if len(schools) == 0 {
				return fmt.Sprintf(`I couldn't find any schools matching your criteria (AL %d, postal code %s, primary school: %s).

This could mean:
1. The postal code might be invalid
2. No schools are accessible with AL %d in your area
3. Try expanding your search by providing just your AL score

Would you like me to search for schools based on just your AL score instead?`,
					p.ALScore, p.PostalCode, p.PrimarySchool, p.ALScore), nil
			}

			return formatSimpleRankedSchools(schools, p), nil
		},
	}
}
