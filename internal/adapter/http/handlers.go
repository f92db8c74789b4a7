package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/couchcryptid/road-safety-service/internal/domain"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

const maxBodyBytes = 1 << 20

type errorBody struct {
	Error string `json:"error"`
}

type roadCreatedBody struct {
	Message string                  `json:"message"`
	Road    domain.RoadSafetyRecord `json:"road"`
}

type hazardCreatedBody struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

func (s *Server) handleRoadRisk(w http.ResponseWriter, r *http.Request) {
	assessment, err := s.svc.RoadRisk(r.Context(), r.PathValue("roadName"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, assessment)
}

func (s *Server) handleRoadScore(w http.ResponseWriter, r *http.Request) {
	score, err := s.svc.RoadScore(r.Context(), r.PathValue("roadName"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, score)
}

func (s *Server) handleListScores(w http.ResponseWriter, r *http.Request) {
	scores, err := s.svc.ListScores(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, scores)
}

func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	recs, err := s.svc.Recommendations(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

func (s *Server) handleRecommendation(w http.ResponseWriter, r *http.Request) {
	rec, err := s.svc.Recommendation(r.Context(), r.PathValue("roadName"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleAddRoad(w http.ResponseWriter, r *http.Request) {
	var in domain.RoadInput
	if err := decodeBody(w, r, s.schemas.addRoad, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	road, err := s.svc.AddRoad(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, roadCreatedBody{Message: "Road data added successfully!", Road: road})
}

func (s *Server) handleUpdateRoad(w http.ResponseWriter, r *http.Request) {
	var in domain.RoadInput
	if err := decodeBody(w, r, s.schemas.updateRoad, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	road, err := s.svc.UpdateRoad(r.Context(), r.PathValue("roadName"), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, road)
}

func (s *Server) handleDeleteRoad(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteRoad(r.Context(), r.PathValue("roadName")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleReportHazard(w http.ResponseWriter, r *http.Request) {
	var in domain.HazardInput
	if err := decodeBody(w, r, s.schemas.hazard, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	report, err := s.svc.ReportHazard(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, hazardCreatedBody{Message: "Hazard reported successfully!", ID: report.ID})
}

func (s *Server) handleListHazards(w http.ResponseWriter, r *http.Request) {
	hazards, err := s.svc.Hazards(r.Context(), r.URL.Query().Get("roadName"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, hazards)
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	entries, err := s.svc.Analytics(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleHeatmap(w http.ResponseWriter, r *http.Request) {
	points, err := s.svc.Heatmap(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, points)
}

// decodeBody reads a JSON body, checks it against the schema and then decodes
// it into dst. Every failure is reported as domain.ErrInvalidInput.
func decodeBody(w http.ResponseWriter, r *http.Request, schema *jsonschema.Schema, dst any) error {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return fmt.Errorf("%w: request body exceeds %d bytes", domain.ErrInvalidInput, tooLarge.Limit)
		}
		return fmt.Errorf("%w: read request body: %w", domain.ErrInvalidInput, err)
	}

	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return fmt.Errorf("%w: malformed JSON: %w", domain.ErrInvalidInput, err)
	}
	if err := schema.Validate(parsed); err != nil {
		return fmt.Errorf("%w: %s", domain.ErrInvalidInput, validationMessage(err))
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	return nil
}

// writeError maps domain errors onto status codes. Internal failures are
// logged and answered with a generic message.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := http.StatusInternalServerError, "internal server error"
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		status, msg = http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrNotFound):
		status, msg = http.StatusNotFound, "road not found"
	case errors.Is(err, domain.ErrConflict):
		status, msg = http.StatusConflict, "road already exists"
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		status, msg = http.StatusServiceUnavailable, "risk prediction unavailable"
	}

	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	} else {
		s.logger.Debug("request rejected", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	}
	writeJSON(w, status, errorBody{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
