package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/sandiips/schoolfinder/internal/llm"
	"github.com/sandiips/schoolfinder/internal/school"
)

// chatRequest is the POST /api/ai-chat body. Stream is a pointer so an
// absent field defaults to streaming while an explicit false selects the
// buffered path.
type chatRequest struct {
	Messages  []llm.Message `json:"messages"`
	SessionID string        `json:"sessionId"`
	Stream    *bool         `json:"stream"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Messages) == 0 {
		writeError(w, http.StatusBadRequest, "messages is required")
		return
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	if req.Stream != nil && !*req.Stream {
		resp, err := s.orchestrator.RunSync(r.Context(), req.Messages, sessionID)
		if err != nil {
			s.logger.Error("sync chat failed", "session_id", sessionID, "error", err)
			writeError(w, http.StatusInternalServerError, "An error occurred during the conversation.")
			return
		}
		writeJSON(w, http.StatusOK, resp)
		return
	}

	framer, err := NewSSEFramer(w)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	// Errors are already relayed as error events; nothing more to send on
	// a broken turn.
	if err := s.orchestrator.RunStream(r.Context(), req.Messages, sessionID, framer); err != nil {
		s.logger.Error("chat stream ended with error", "session_id", sessionID, "error", err)
	}
}

func (s *Server) handleOptions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.options)
}

type geocodeResponse struct {
	PostalCode string  `json:"postalCode"`
	Lat        float64 `json:"lat"`
	Lng        float64 `json:"lng"`
}

func (s *Server) handleGeocode(w http.ResponseWriter, r *http.Request) {
	pincode := r.URL.Query().Get("pincode")
	if !school.ValidPostalCode(pincode) {
		writeError(w, http.StatusBadRequest, "pincode must be a valid 6-digit Singapore postal code")
		return
	}

	point, err := s.geocoder.Geocode(r.Context(), pincode)
	if err != nil {
		s.logger.Warn("geocode failed", "pincode", pincode, "error", err)
		writeError(w, http.StatusBadGateway, "geocoding failed")
		return
	}
	writeJSON(w, http.StatusOK, geocodeResponse{PostalCode: pincode, Lat: point.Lat, Lng: point.Lng})
}

func (s *Server) handleCacheStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.cache.Stats())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReady reports readiness: the process is up and the database answers
// a ping within a short deadline.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.store.Ping(ctx); err != nil {
		s.logger.Warn("readiness check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status":   "unavailable",
			"database": "down",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":   "ready",
		"database": "up",
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
