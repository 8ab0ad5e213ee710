// Package school is the query layer over the school database. Every lookup
// maps to one Postgres function call returning a row set; callers never see
// SQL, only typed parameters and typed rows.
package school

// RankQuery carries the full parameter set of a weighted ranking call.
// Weights are 0.0 to 1.0; coordinates come from geocoding the student's
// postal code.
type RankQuery struct {
	ALScore         int
	Lat             float64
	Lng             float64
	GenderPref      string
	Sports          []string
	CCAs            []string
	Culture         []string
	MaxDistanceKM   float64
	WeightDistance  float64
	WeightSport     float64
	WeightCCA       float64
	WeightCulture   float64
	Limit           int
	PrimarySlug     *string
}

// SimpleRankQuery is the distance-first variant used when the student gives
// only score, location, and primary school.
type SimpleRankQuery struct {
	ALScore     int
	Lat         float64
	Lng         float64
	Limit       int
	Year        int
	PrimarySlug *string
}

// SearchQuery covers the sport, CCA, and academic searches, which share a
// filter shape.
type SearchQuery struct {
	Term       string
	GenderPref string
	TrackPref  string
	Limit      int
}

// RankedSchool is one row of the weighted ranking.
type RankedSchool struct {
	Code                 string         `db:"code" json:"code"`
	Name                 string         `db:"name" json:"name"`
	Address              string         `db:"address" json:"address"`
	DistanceKM           float64        `db:"distance_km" json:"distance_km"`
	PostingGroup         *int           `db:"posting_group" json:"posting_group"`
	Track                string         `db:"track" json:"track"`
	IsAffiliated         bool           `db:"is_affiliated" json:"is_affiliated"`
	COPMaxScore          int            `db:"cop_max_score" json:"cop_max_score"`
	SportsMatches        []string       `db:"sports_matches" json:"sports_matches"`
	CCAsMatches          []string       `db:"ccas_matches" json:"ccas_matches"`
	CultureMatches       []string       `db:"culture_matches" json:"culture_matches"`
	CultureTopTitles     []string       `db:"culture_top_titles" json:"culture_top_titles"`
	CultureTopStrengths  []float64      `db:"culture_top_strengths" json:"culture_top_strengths"`
	CompositeScore       float64        `db:"composite_score" json:"composite_score"`
	MatchSummary         string         `db:"match_summary" json:"match_summary"`
	RecommendationReason string         `db:"recommendation_reason" json:"recommendation_reason"`
	AIMetadata           map[string]any `db:"ai_metadata" json:"ai_metadata"`
}

// SimpleRankedSchool is one row of the distance-first ranking.
type SimpleRankedSchool struct {
	Code         string  `db:"code" json:"code"`
	Name         string  `db:"name" json:"name"`
	Address      string  `db:"address" json:"address"`
	Gender       string  `db:"gender" json:"gender"`
	DistanceKM   float64 `db:"distance_km" json:"distance_km"`
	PostingGroup *int    `db:"posting_group" json:"posting_group"`
	Track        string  `db:"track" json:"track"`
	IsAffiliated bool    `db:"is_affiliated" json:"is_affiliated"`
	COPMaxScore  int     `db:"cop_max_score" json:"cop_max_score"`
	COPMinScore  int     `db:"cop_min_score" json:"cop_min_score"`
}

// SportSchool is one row of the sport-performance search.
type SportSchool struct {
	Code                  string   `db:"code" json:"code"`
	Name                  string   `db:"name" json:"name"`
	Address               string   `db:"address" json:"address"`
	Gender                string   `db:"gender" json:"gender"`
	Track                 string   `db:"track" json:"track"`
	PostingGroup          *int     `db:"posting_group" json:"posting_group"`
	SportPerformanceScore float64  `db:"sport_performance_score" json:"sport_performance_score"`
	SportAchievements     []string `db:"sport_achievements" json:"sport_achievements"`
	SportStrengthRating   string   `db:"sport_strength_rating" json:"sport_strength_rating"`
	OtherStrongSports     []string `db:"other_strong_sports" json:"other_strong_sports"`
	RecommendationReason  string   `db:"recommendation_reason" json:"recommendation_reason"`
}

// CCASchool is one row of the CCA-performance search.
type CCASchool struct {
	Code                 string   `db:"code" json:"code"`
	Name                 string   `db:"name" json:"name"`
	Address              string   `db:"address" json:"address"`
	Gender               string   `db:"gender" json:"gender"`
	Track                string   `db:"track" json:"track"`
	PostingGroup         *int     `db:"posting_group" json:"posting_group"`
	CCAPerformanceScore  float64  `db:"cca_performance_score" json:"cca_performance_score"`
	CCAAchievements      []string `db:"cca_achievements" json:"cca_achievements"`
	CCAStrengthRating    string   `db:"cca_strength_rating" json:"cca_strength_rating"`
	OtherStrongCCAs      []string `db:"other_strong_ccas" json:"other_strong_ccas"`
	RecommendationReason string   `db:"recommendation_reason" json:"recommendation_reason"`
}

// AcademicSchool is one row of the academic-focus search.
type AcademicSchool struct {
	Code                  string   `db:"code" json:"code"`
	Name                  string   `db:"name" json:"name"`
	Address               string   `db:"address" json:"address"`
	Gender                string   `db:"gender" json:"gender"`
	Track                 string   `db:"track" json:"track"`
	PostingGroup          *int     `db:"posting_group" json:"posting_group"`
	COPMaxScore           int      `db:"cop_max_score" json:"cop_max_score"`
	AcademicStrengthScore float64  `db:"academic_strength_score" json:"academic_strength_score"`
	CCAAchievements       []string `db:"cca_achievements" json:"cca_achievements"`
	CCAStrengthRating     string   `db:"cca_strength_rating" json:"cca_strength_rating"`
	RecommendationReason  string   `db:"recommendation_reason" json:"recommendation_reason"`
}

// ContactInfo is the jsonb contact block on a school profile.
type ContactInfo struct {
	Website string `json:"website,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty"`
}

// SchoolDetails is the full profile of one school.
type SchoolDetails struct {
	Code                     string      `db:"code" json:"code"`
	Name                     string      `db:"name" json:"name"`
	Address                  string      `db:"address" json:"address"`
	Gender                   string      `db:"gender" json:"gender"`
	Track                    string      `db:"track" json:"track"`
	PostingGroup             *int        `db:"posting_group" json:"posting_group"`
	COPMaxScore              int         `db:"cop_max_score" json:"cop_max_score"`
	COPMinScore              int         `db:"cop_min_score" json:"cop_min_score"`
	AffiliatedPrimarySchools []string    `db:"affiliated_primary_schools" json:"affiliated_primary_schools"`
	AvailableSports          []string    `db:"available_sports" json:"available_sports"`
	TopSports                []string    `db:"top_sports" json:"top_sports"`
	AvailableCCAs            []string    `db:"available_ccas" json:"available_ccas"`
	CCAAchievements          []string    `db:"cca_achievements" json:"cca_achievements"`
	CultureSummary           string      `db:"culture_summary" json:"culture_summary"`
	CultureTraits            []string    `db:"culture_traits" json:"culture_traits"`
	TotalEnrollment          int         `db:"total_enrollment" json:"total_enrollment"`
	ContactInfo              ContactInfo `db:"contact_info" json:"contact_info"`
}

// AffiliatedSchool is one row of the affiliation lookup, carrying both
// cut-off bands so the advantage can be shown explicitly.
type AffiliatedSchool struct {
	Code                  string `db:"code" json:"code"`
	Name                  string `db:"name" json:"name"`
	Address               string `db:"address" json:"address"`
	Gender                string `db:"gender" json:"gender"`
	Track                 string `db:"track" json:"track"`
	PostingGroup          *int   `db:"posting_group" json:"posting_group"`
	COPNonAffiliatedMax   *int   `db:"cop_nonaffiliated_max" json:"cop_nonaffiliated_max"`
	COPNonAffiliatedMin   *int   `db:"cop_nonaffiliated_min" json:"cop_nonaffiliated_min"`
	COPAffiliatedMax      *int   `db:"cop_affiliated_max" json:"cop_affiliated_max"`
	COPAffiliatedMin      *int   `db:"cop_affiliated_min" json:"cop_affiliated_min"`
	AffiliationBonus      int    `db:"affiliation_bonus_points" json:"affiliation_bonus_points"`
	RecommendationReason  string `db:"recommendation_reason" json:"recommendation_reason"`
}
