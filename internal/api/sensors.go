package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/avollmer/sentra/internal/sensor"
)

// readingRequest is the request body for POST /devices/{id}/readings.
type readingRequest struct {
	Metric     string  `json:"metric"`
	Value      float64 `json:"value"`
	Unit       string  `json:"unit,omitempty"`
	RecordedAt string  `json:"recorded_at,omitempty"`
}

// seedRequest is the request body for POST /devices/{id}/readings/seed.
type seedRequest struct {
	Count int `json:"count"`
}

// maxSeedCount bounds a single seed request.
const maxSeedCount = 1000

// handleListReadings returns a device's readings, newest first.
// The optional limit query parameter caps the page size; metric selects
// the latest reading of one metric instead.
func (s *Server) handleListReadings(w http.ResponseWriter, r *http.Request) {
	d, ok := s.authorizedDevice(w, r)
	if !ok {
		return
	}

	if metric := r.URL.Query().Get("metric"); metric != "" {
		latest, err := s.readings.Latest(r.Context(), d.ID, metric)
		if err != nil {
			s.logger.Error("querying latest reading failed", "error", err)
			writeInternalError(w, "querying readings failed")
			return
		}
		if latest == nil {
			writeNotFound(w, "no readings for metric")
			return
		}
		writeJSON(w, http.StatusOK, latest)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeBadRequest(w, "limit must be a non-negative integer")
			return
		}
		limit = parsed
	}

	readings, err := s.readings.ListByDevice(r.Context(), d.ID, limit)
	if err != nil {
		s.logger.Error("listing readings failed", "error", err)
		writeInternalError(w, "querying readings failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"device_id": d.ID,
		"readings":  readings,
		"count":     len(readings),
	})
}

// handleRecordReading stores a reading submitted over HTTP.
func (s *Server) handleRecordReading(w http.ResponseWriter, r *http.Request) {
	d, ok := s.authorizedDevice(w, r)
	if !ok {
		return
	}

	var req readingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	reading := sensor.Reading{
		DeviceID: d.ID,
		Metric:   req.Metric,
		Value:    req.Value,
		Unit:     req.Unit,
	}
	if req.RecordedAt != "" {
		at, err := time.Parse(time.RFC3339, req.RecordedAt)
		if err != nil {
			writeBadRequest(w, "recorded_at must be RFC 3339")
			return
		}
		reading.RecordedAt = at
	}

	if err := s.recorder.Record(r.Context(), &reading); err != nil {
		if errors.Is(err, sensor.ErrInvalidReading) {
			writeBadRequest(w, err.Error())
			return
		}
		s.logger.Error("recording reading failed", "error", err)
		writeInternalError(w, "recording reading failed")
		return
	}

	writeJSON(w, http.StatusCreated, reading)
}

// handleSeedReadings generates demo readings for a device.
func (s *Server) handleSeedReadings(w http.ResponseWriter, r *http.Request) {
	d, ok := s.authorizedDevice(w, r)
	if !ok {
		return
	}

	var req seedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.Count <= 0 || req.Count > maxSeedCount {
		writeBadRequest(w, "count must be between 1 and 1000")
		return
	}

	readings, err := s.generator.Seed(r.Context(), s.recorder, d.ID, d.Kind, req.Count)
	if err != nil {
		s.logger.Error("seeding readings failed", "error", err)
		writeInternalError(w, "seeding readings failed")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"device_id": d.ID,
		"seeded":    len(readings),
	})
}
