package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sandiips/schoolfinder/internal/cache"
	"github.com/sandiips/schoolfinder/internal/chat"
	"github.com/sandiips/schoolfinder/internal/geo"
	"github.com/sandiips/schoolfinder/internal/llm"
	"github.com/sandiips/schoolfinder/internal/prompts"
	"github.com/sandiips/schoolfinder/internal/school"
	"github.com/sandiips/schoolfinder/internal/tools"
)

type fixedStream struct {
	deltas []llm.StreamDelta
	pos    int
}

func (s *fixedStream) Next() bool {
	if s.pos >= len(s.deltas) {
		return false
	}
	s.pos++
	return true
}

func (s *fixedStream) Current() llm.StreamDelta { return s.deltas[s.pos-1] }
func (s *fixedStream) Err() error               { return nil }
func (s *fixedStream) Close() error             { return nil }

// fixedClient answers every chat turn with the same scripted content.
type fixedClient struct {
	content string
}

func (c *fixedClient) Chat(ctx context.Context, messages []llm.Message, defs []llm.ToolDef) (*llm.Response, error) {
	return &llm.Response{Message: llm.AssistantMessage(c.content)}, nil
}

func (c *fixedClient) StreamChat(ctx context.Context, messages []llm.Message, defs []llm.ToolDef) (llm.Stream, error) {
	return &fixedStream{deltas: []llm.StreamDelta{
		{Content: c.content},
		{FinishReason: "stop"},
	}}, nil
}

type stubStore struct {
	pingErr error
}

func (s *stubStore) RankSchools(ctx context.Context, q school.RankQuery) ([]school.RankedSchool, error) {
	return nil, nil
}

func (s *stubStore) RankSchoolsSimple(ctx context.Context, q school.SimpleRankQuery) ([]school.SimpleRankedSchool, error) {
	return nil, nil
}

func (s *stubStore) SearchBySport(ctx context.Context, q school.SearchQuery) ([]school.SportSchool, error) {
	return nil, nil
}

func (s *stubStore) SearchByCCA(ctx context.Context, q school.SearchQuery) ([]school.CCASchool, error) {
	return nil, nil
}

func (s *stubStore) SearchByAcademic(ctx context.Context, q school.SearchQuery) ([]school.AcademicSchool, error) {
	return nil, nil
}

func (s *stubStore) SchoolDetails(ctx context.Context, identifier string) (*school.SchoolDetails, error) {
	return nil, nil
}

func (s *stubStore) SearchByAffiliation(ctx context.Context, primarySchool string) ([]school.AffiliatedSchool, error) {
	return nil, nil
}

func (s *stubStore) Ping(ctx context.Context) error { return s.pingErr }

type stubGeocoder struct {
	point geo.Point
	err   error
}

func (g *stubGeocoder) Geocode(ctx context.Context, postalCode string) (geo.Point, error) {
	return g.point, g.err
}

func newTestServer(t *testing.T, store *stubStore, geocoder *stubGeocoder) *Server {
	t.Helper()
	logger := slog.New(slog.DiscardHandler)
	orc := chat.NewOrchestrator(&fixedClient{content: "Hello from SAI."}, tools.NewRegistry(), chat.Config{
		SystemPrompt: "You are a school advisor.",
		ToolTimeout:  time.Second,
	}, logger)
	c := cache.NewMemory(0)
	t.Cleanup(c.Close)
	return New(orc, store, geocoder, c, prompts.DefaultOptions(), logger)
}

func TestChatStreamsSSEFrames(t *testing.T) {
	s := newTestServer(t, &stubStore{}, &stubGeocoder{})

	body := `{"messages": [{"role": "user", "content": "hi"}], "sessionId": "s1"}`
	req := httptest.NewRequest(http.MethodPost, "/api/ai-chat", strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("content type: %q", ct)
	}
	if cc := rec.Header().Get("Cache-Control"); cc != "no-cache" {
		t.Errorf("cache control: %q", cc)
	}

	var events []chat.Event
	for _, line := range strings.Split(rec.Body.String(), "\n") {
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var ev chat.Event
		if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &ev); err != nil {
			t.Fatalf("frame %q: %v", line, err)
		}
		events = append(events, ev)
	}

	if len(events) != 2 || events[0].Type != chat.EventContent || events[1].Type != chat.EventDone {
		t.Fatalf("events: %+v", events)
	}
	if events[0].Content != "Hello from SAI." {
		t.Errorf("content: %q", events[0].Content)
	}
	if events[0].SessionID != "s1" {
		t.Errorf("session id: %q", events[0].SessionID)
	}
}

func TestChatSyncPath(t *testing.T) {
	s := newTestServer(t, &stubStore{}, &stubGeocoder{})

	body := `{"messages": [{"role": "user", "content": "hi"}], "stream": false}`
	req := httptest.NewRequest(http.MethodPost, "/api/ai-chat", strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: %d", rec.Code)
	}
	var resp chat.SyncResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Message != "Hello from SAI." {
		t.Errorf("message: %q", resp.Message)
	}
	if resp.SessionID == "" {
		t.Error("a generated session id should be returned when the client sends none")
	}
}

func TestChatRejectsEmptyMessages(t *testing.T) {
	s := newTestServer(t, &stubStore{}, &stubGeocoder{})

	req := httptest.NewRequest(http.MethodPost, "/api/ai-chat", strings.NewReader(`{"messages": []}`))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: %d", rec.Code)
	}
}

func TestOptionsEndpoint(t *testing.T) {
	s := newTestServer(t, &stubStore{}, &stubGeocoder{})

	req := httptest.NewRequest(http.MethodGet, "/api/options", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: %d", rec.Code)
	}
	var opts prompts.Options
	if err := json.Unmarshal(rec.Body.Bytes(), &opts); err != nil {
		t.Fatal(err)
	}
	if !opts.HasSport("Tennis") || !opts.HasCCA("Robotics") {
		t.Errorf("options payload incomplete: %+v", opts)
	}
}

func TestGeocodeEndpoint(t *testing.T) {
	s := newTestServer(t, &stubStore{}, &stubGeocoder{point: geo.Point{Lat: 1.35, Lng: 103.85}})

	req := httptest.NewRequest(http.MethodGet, "/api/geocode?pincode=560123", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: %d", rec.Code)
	}
	var resp geocodeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.PostalCode != "560123" || resp.Lat != 1.35 || resp.Lng != 103.85 {
		t.Errorf("response: %+v", resp)
	}
}

func TestGeocodeRejectsBadPincode(t *testing.T) {
	s := newTestServer(t, &stubStore{}, &stubGeocoder{})

	for _, pincode := range []string{"", "12345", "830000"} {
		req := httptest.NewRequest(http.MethodGet, "/api/geocode?pincode="+pincode, nil)
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("pincode %q: status %d, want 400", pincode, rec.Code)
		}
	}
}

func TestGeocodeUpstreamFailure(t *testing.T) {
	s := newTestServer(t, &stubStore{}, &stubGeocoder{err: geo.ErrNoMatch})

	req := httptest.NewRequest(http.MethodGet, "/api/geocode?pincode=560123", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status: %d", rec.Code)
	}
}

func TestCacheStatsEndpoint(t *testing.T) {
	s := newTestServer(t, &stubStore{}, &stubGeocoder{})

	req := httptest.NewRequest(http.MethodGet, "/api/cache/stats", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: %d", rec.Code)
	}
	var stats cache.Stats
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatal(err)
	}
}

func TestHealthAndReady(t *testing.T) {
	s := newTestServer(t, &stubStore{}, &stubGeocoder{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("health status: %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/ready", nil)
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("ready status: %d", rec.Code)
	}
}

func TestReadyReportsDatabaseDown(t *testing.T) {
	s := newTestServer(t, &stubStore{pingErr: errors.New("connection refused")}, &stubGeocoder{})

	req := httptest.NewRequest(http.MethodGet, "/ready", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status: %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["database"] != "down" {
		t.Errorf("body: %v", body)
	}
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t, &stubStore{}, &stubGeocoder{})

	req := httptest.NewRequest(http.MethodOptions, "/api/options", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status: %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("missing CORS header")
	}
}
