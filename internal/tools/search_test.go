package tools

import (
	"errors"
	"strings"
	"testing"

	"github.com/sandiips/schoolfinder/internal/school"
)

func TestSearchSchoolsBySportStructuredPayload(t *testing.T) {
	store := &fakeStore{sport: []school.SportSchool{
		{Code: "1", Name: "A", Track: "IP", SportStrengthRating: "Very Strong"},
		{Code: "2", Name: "B", Track: "O-Level", SportStrengthRating: "Strong"},
	}}
	deps, _ := testDeps(store, &fakeGeocoder{})

	out, err := run(t, NewSearchSchoolsBySportTool(deps), `{"sport_name": "Tennis"}`)
	if err != nil {
		t.Fatal(err)
	}

	payload, ok := out.(map[string]any)
	if !ok {
		t.Fatalf("result is %T, want map", out)
	}
	summary, _ := payload["summary"].(string)
	if !strings.Contains(summary, "2 schools with Tennis programs") {
		t.Errorf("summary: %q", summary)
	}
	if !strings.Contains(summary, "exceptional Tennis programs") {
		t.Errorf("summary missing very-strong count: %q", summary)
	}
	meta, _ := payload["metadata"].(map[string]any)
	if meta["searchType"] != "sport" || meta["resultsCount"] != 2 {
		t.Errorf("metadata: %v", meta)
	}
	if store.searchTerms[0] != "Tennis" {
		t.Errorf("query term: %v", store.searchTerms)
	}
}

func TestSearchSchoolsBySportUnknownSport(t *testing.T) {
	deps, _ := testDeps(&fakeStore{}, &fakeGeocoder{})

	_, err := run(t, NewSearchSchoolsBySportTool(deps), `{"sport_name": "Quidditch"}`)
	var invalid *InvalidInputError
	if !errors.As(err, &invalid) {
		t.Fatalf("got %v, want InvalidInputError", err)
	}
}

func TestSearchSchoolsByCCAPassesUnknownNamesThrough(t *testing.T) {
	store := &fakeStore{}
	deps, _ := testDeps(store, &fakeGeocoder{})

	// The CCA vocabulary grows; an unlisted name still queries the database.
	out, err := run(t, NewSearchSchoolsByCCATool(deps), `{"cca_name": "Debate"}`)
	if err != nil {
		t.Fatal(err)
	}
	payload := out.(map[string]any)
	summary, _ := payload["summary"].(string)
	if !strings.Contains(summary, "couldn't find schools with Debate programs") {
		t.Errorf("summary: %q", summary)
	}
	if store.searchTerms[0] != "Debate" {
		t.Errorf("query term: %v", store.searchTerms)
	}
}

func TestSearchSchoolsByAcademicDefaultsToOverall(t *testing.T) {
	store := &fakeStore{academic: []school.AcademicSchool{
		{Code: "1", Name: "A", Track: "IP", COPMaxScore: 8},
	}}
	deps, _ := testDeps(store, &fakeGeocoder{})

	out, err := run(t, NewSearchSchoolsByAcademicTool(deps), `{"academic_focus": "Overall"}`)
	if err != nil {
		t.Fatal(err)
	}
	payload := out.(map[string]any)
	summary, _ := payload["summary"].(string)
	if !strings.Contains(summary, "overall academic strength") {
		t.Errorf("summary: %q", summary)
	}
	if !strings.Contains(summary, "highly competitive cut-off") {
		t.Errorf("summary missing COP note: %q", summary)
	}
}

func TestGetSchoolDetailsFound(t *testing.T) {
	pg := 3
	store := &fakeStore{details: &school.SchoolDetails{
		Code: "7001", Name: "Raffles Institution", Track: "IP",
		PostingGroup: &pg, COPMaxScore: 6,
		AffiliatedPrimarySchools: []string{"Raffles Girls' Primary"},
		CultureSummary:           "Excellence and leadership.",
	}}
	deps, _ := testDeps(store, &fakeGeocoder{})

	out, err := run(t, NewGetSchoolDetailsTool(deps), `{"school_identifier": "Raffles Institution"}`)
	if err != nil {
		t.Fatal(err)
	}
	payload := out.(map[string]any)
	summary, _ := payload["summary"].(string)
	if !strings.Contains(summary, "Raffles Institution") || !strings.Contains(summary, "Integrated Program") {
		t.Errorf("summary: %q", summary)
	}
	if !strings.Contains(summary, "highly competitive") {
		t.Errorf("summary missing competitiveness band: %q", summary)
	}
	meta := payload["metadata"].(map[string]any)
	if meta["found"] != true {
		t.Errorf("metadata: %v", meta)
	}
}

func TestGetSchoolDetailsMissIsNotAnError(t *testing.T) {
	deps, _ := testDeps(&fakeStore{}, &fakeGeocoder{})

	out, err := run(t, NewGetSchoolDetailsTool(deps), `{"school_identifier": "Hogwarts"}`)
	if err != nil {
		t.Fatalf("a lookup miss is a payload, not an error: %v", err)
	}
	payload := out.(map[string]any)
	if payload["school"] != nil {
		t.Errorf("school: %v", payload["school"])
	}
	summary, _ := payload["summary"].(string)
	if !strings.Contains(summary, `couldn't find a school matching "Hogwarts"`) {
		t.Errorf("summary: %q", summary)
	}
}

func TestSearchSchoolsByAffiliationFormatsBothBands(t *testing.T) {
	affMax, affMin, nonMax, nonMin := 10, 8, 8, 6
	pg := 2
	store := &fakeStore{affiliated: []school.AffiliatedSchool{
		{
			Code: "1", Name: "Example Secondary", Address: "1 Road",
			Track: "O-Level", PostingGroup: &pg, Gender: "Boys",
			COPAffiliatedMax: &affMax, COPAffiliatedMin: &affMin,
			COPNonAffiliatedMax: &nonMax, COPNonAffiliatedMin: &nonMin,
			AffiliationBonus: 2,
		},
		{
			Code: "2", Name: "Second Example", Address: "2 Road",
			Track: "IP", COPNonAffiliatedMax: &nonMax, COPNonAffiliatedMin: &nonMin,
		},
	}}
	deps, _ := testDeps(store, &fakeGeocoder{})

	out, err := run(t, NewSearchSchoolsByAffiliationTool(deps), `{"primary_school_name": "Rosyth School"}`)
	if err != nil {
		t.Fatal(err)
	}
	text, _ := out.(string)
	for _, want := range []string{
		"affiliated with **Rosyth School**",
		"Affiliated students (Rosyth School): AL 8-10",
		"Non-affiliated students: AL 6-8",
		"Affiliation advantage: 2 AL points",
		"up to 3 affiliated schools",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("output missing %q:\n%s", want, text)
		}
	}
	if store.affiliations[0] != "Rosyth School" {
		t.Errorf("query input: %v", store.affiliations)
	}
}

func TestSearchSchoolsByAffiliationNoResults(t *testing.T) {
	deps, _ := testDeps(&fakeStore{}, &fakeGeocoder{})

	out, err := run(t, NewSearchSchoolsByAffiliationTool(deps), `{"primary_school_name": "Nowhere Primary"}`)
	if err != nil {
		t.Fatal(err)
	}
	text, _ := out.(string)
	if !strings.Contains(text, `couldn't find any secondary schools affiliated with "Nowhere Primary"`) {
		t.Errorf("output: %q", text)
	}
}
