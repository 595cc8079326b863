package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/susume/internal/models"
	"github.com/hyperjump/susume/internal/recommender"
	"github.com/hyperjump/susume/internal/storage"
)

func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	var query models.RecommendQuery
	if err := json.NewDecoder(r.Body).Decode(&query); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := query.Validate(); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.logger.Debug("recommend request", zap.String("text", query.Text), zap.Int("k", query.K))

	start := time.Now()
	results, err := s.session.Recommend(r.Context(), query.Text, query.K)
	if err != nil {
		if errors.Is(err, recommender.ErrNotFitted) {
			s.respondError(w, http.StatusServiceUnavailable, "no trained model loaded")
			return
		}
		s.logger.Error("recommend failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, &models.RecommendResponse{
		Query:       query.Text,
		Results:     results,
		QueryTimeMS: time.Since(start).Milliseconds(),
	})
}

func (s *Server) handleLookup(w http.ResponseWriter, r *http.Request) {
	if s.titles == nil {
		s.respondError(w, http.StatusNotImplemented, "title index not loaded")
		return
	}
	var query models.LookupQuery
	if err := json.NewDecoder(r.Body).Decode(&query); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := query.Validate(); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	results, err := s.titles.Search(query.Title, query.Limit, query.Fuzzy)
	if err != nil {
		s.logger.Error("lookup failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"query":   query.Title,
		"results": results,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := map[string]interface{}{
		"fitted":     s.session.Fitted(),
		"vectors":    s.session.Size(),
		"dimensions": s.session.Dimensions(),
	}
	if s.titles != nil {
		if count, err := s.titles.Count(); err == nil {
			resp["titles"] = count
		}
	}
	if s.storage != nil {
		if n, err := s.storage.CountSupplemental(r.Context()); err == nil {
			resp["supplemental"] = n
		}
		if run, err := s.storage.LastTrainRun(r.Context()); err == nil && run != nil {
			resp["last_train_run"] = run
		}
	}
	if s.config != nil {
		resp["config"] = map[string]interface{}{
			"artifacts_dir":        s.config.Storage.ArtifactsDir,
			"embedding_dimensions": s.config.Embedding.Dimensions,
			"default_k":            s.config.Recommend.DefaultK,
		}
		diskBytes, err := storage.DiskUsageBytes(
			s.config.Storage.DatabasePath,
			s.config.Storage.ArtifactsDir,
			s.config.Storage.TitleIndexPath,
		)
		if err == nil {
			resp["disk_usage_bytes"] = diskBytes
		}
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
