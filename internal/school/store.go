package school

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store is the lookup surface the tools depend on. The Postgres
// implementation is the only real one; tests substitute fakes.
type Store interface {
	RankSchools(ctx context.Context, q RankQuery) ([]RankedSchool, error)
	RankSchoolsSimple(ctx context.Context, q SimpleRankQuery) ([]SimpleRankedSchool, error)
	SearchBySport(ctx context.Context, q SearchQuery) ([]SportSchool, error)
	SearchByCCA(ctx context.Context, q SearchQuery) ([]CCASchool, error)
	SearchByAcademic(ctx context.Context, q SearchQuery) ([]AcademicSchool, error)
	SchoolDetails(ctx context.Context, identifier string) (*SchoolDetails, error)
	SearchByAffiliation(ctx context.Context, primarySchool string) ([]AffiliatedSchool, error)
	Ping(ctx context.Context) error
}

// PGStore implements Store over a pgx connection pool. Every method is a
// single SELECT from one database function.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore connects a pool to the given DSN and verifies it with a ping.
func NewPGStore(ctx context.Context, dsn string) (*PGStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return &PGStore{pool: pool}, nil
}

// Close releases the pool.
func (s *PGStore) Close() { s.pool.Close() }

// Ping reports database reachability, for the readiness probe.
func (s *PGStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *PGStore) RankSchools(ctx context.Context, q RankQuery) ([]RankedSchool, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT * FROM rank_schools1(
			user_score => $1, user_lat => $2, user_lng => $3,
			gender_pref => $4, sports_selected => $5, ccas_selected => $6,
			culture_selected => $7, max_distance_km => $8,
			weight_dist => $9, weight_sport => $10, weight_cca => $11,
			weight_culture => $12, limit_count => $13, primary_slug => $14)`,
		q.ALScore, q.Lat, q.Lng, q.GenderPref,
		q.Sports, q.CCAs, q.Culture, q.MaxDistanceKM,
		q.WeightDistance, q.WeightSport, q.WeightCCA, q.WeightCulture,
		q.Limit, q.PrimarySlug)
	if err != nil {
		return nil, fmt.Errorf("rank_schools1: %w", err)
	}
	out, err := pgx.CollectRows(rows, pgx.RowToStructByName[RankedSchool])
	if err != nil {
		return nil, fmt.Errorf("rank_schools1 rows: %w", err)
	}
	return out, nil
}

func (s *PGStore) RankSchoolsSimple(ctx context.Context, q SimpleRankQuery) ([]SimpleRankedSchool, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT * FROM rank_schools(
			user_score => $1, user_lat => $2, user_lng => $3,
			gender_pref => 'Any', sports_selected => NULL,
			ccas_selected => NULL, culture_selected => NULL,
			max_distance_km => 50, weight_dist => 1,
			weight_sport => 0, weight_cca => 0, weight_culture => 0,
			limit_count => $4, in_year => $5, user_primary => $6)`,
		q.ALScore, q.Lat, q.Lng, q.Limit, q.Year, q.PrimarySlug)
	if err != nil {
		return nil, fmt.Errorf("rank_schools: %w", err)
	}
	out, err := pgx.CollectRows(rows, pgx.RowToStructByName[SimpleRankedSchool])
	if err != nil {
		return nil, fmt.Errorf("rank_schools rows: %w", err)
	}
	return out, nil
}

func (s *PGStore) SearchBySport(ctx context.Context, q SearchQuery) ([]SportSchool, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT * FROM ai_search_schools_by_sport(
			sport_name => $1, gender_pref => $2, track_pref => $3, limit_count => $4)`,
		q.Term, q.GenderPref, q.TrackPref, q.Limit)
	if err != nil {
		return nil, fmt.Errorf("ai_search_schools_by_sport: %w", err)
	}
	out, err := pgx.CollectRows(rows, pgx.RowToStructByName[SportSchool])
	if err != nil {
		return nil, fmt.Errorf("ai_search_schools_by_sport rows: %w", err)
	}
	return out, nil
}

func (s *PGStore) SearchByCCA(ctx context.Context, q SearchQuery) ([]CCASchool, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT * FROM ai_search_schools_by_cca(
			cca_name => $1, gender_pref => $2, track_pref => $3, limit_count => $4)`,
		q.Term, q.GenderPref, q.TrackPref, q.Limit)
	if err != nil {
		return nil, fmt.Errorf("ai_search_schools_by_cca: %w", err)
	}
	out, err := pgx.CollectRows(rows, pgx.RowToStructByName[CCASchool])
	if err != nil {
		return nil, fmt.Errorf("ai_search_schools_by_cca rows: %w", err)
	}
	return out, nil
}

func (s *PGStore) SearchByAcademic(ctx context.Context, q SearchQuery) ([]AcademicSchool, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT * FROM ai_search_schools_by_academic(
			academic_focus => $1, gender_pref => $2, track_pref => $3, limit_count => $4)`,
		q.Term, q.GenderPref, q.TrackPref, q.Limit)
	if err != nil {
		return nil, fmt.Errorf("ai_search_schools_by_academic: %w", err)
	}
	out, err := pgx.CollectRows(rows, pgx.RowToStructByName[AcademicSchool])
	if err != nil {
		return nil, fmt.Errorf("ai_search_schools_by_academic rows: %w", err)
	}
	return out, nil
}

// SchoolDetails resolves one school by name or code. A miss returns
// (nil, nil) so callers can produce a not-found reply instead of an error.
func (s *PGStore) SchoolDetails(ctx context.Context, identifier string) (*SchoolDetails, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT * FROM ai_get_school_details(school_identifier => $1)`,
		identifier)
	if err != nil {
		return nil, fmt.Errorf("ai_get_school_details: %w", err)
	}
	out, err := pgx.CollectRows(rows, pgx.RowToStructByName[SchoolDetails])
	if err != nil {
		return nil, fmt.Errorf("ai_get_school_details rows: %w", err)
	}
	if len(out) == 0 {
		return nil, nil
	}
	return &out[0], nil
}

func (s *PGStore) SearchByAffiliation(ctx context.Context, primarySchool string) ([]AffiliatedSchool, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT * FROM ai_search_schools_by_affiliation(primary_school_input => $1)`,
		primarySchool)
	if err != nil {
		return nil, fmt.Errorf("ai_search_schools_by_affiliation: %w", err)
	}
	out, err := pgx.CollectRows(rows, pgx.RowToStructByName[AffiliatedSchool])
	if err != nil {
		return nil, fmt.Errorf("ai_search_schools_by_affiliation rows: %w", err)
	}
	return out, nil
}
