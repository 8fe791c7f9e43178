package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/n0roo/content-locator/internal/db"
	"github.com/n0roo/content-locator/internal/render"
	"github.com/n0roo/content-locator/internal/report"
)

// StatusResponse is returned by GET /api/status
type StatusResponse struct {
	Site      string    `json:"site"`
	SiteURL   string    `json:"site_url,omitempty"`
	DBPath    string    `json:"db_path,omitempty"`
	DBType    string    `json:"db_type,omitempty"`
	Stats     *db.Stats `json:"stats,omitempty"`
	Buckets   []string  `json:"buckets"`
	Uptime    string    `json:"uptime"`
	Timestamp string    `json:"timestamp"`
}

// BucketResponse is returned by GET /api/report/{bucket}
type BucketResponse struct {
	ReportID    string        `json:"report_id"`
	GeneratedAt time.Time     `json:"generated_at"`
	Bucket      report.Bucket `json:"bucket"`
	Total       int           `json:"total"`
	Message     string        `json:"message,omitempty"`
	Warnings    []string      `json:"warnings,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := StatusResponse{
		Site:      s.config.SiteName,
		SiteURL:   s.config.SiteURL,
		DBPath:    s.config.DBPath,
		DBType:    s.config.DBType,
		Uptime:    time.Since(s.started).Round(time.Second).String(),
		Timestamp: time.Now().Format(time.RFC3339),
	}
	for _, name := range report.BucketNames {
		resp.Buckets = append(resp.Buckets, string(name))
	}

	if s.config.Stats != nil {
		stats, err := s.config.Stats.Stats(r.Context())
		if err != nil {
			s.logger.Error("stats failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		resp.Stats = stats
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) build(r *http.Request) (*report.Report, error) {
	if s.config.Build == nil {
		return nil, errors.New("report builder not configured")
	}
	rep := s.config.Build(r.Context())
	rep.AttachLinks(s.config.SiteURL)
	return rep, nil
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	rep, err := s.build(r)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) handleBucket(w http.ResponseWriter, r *http.Request) {
	name := report.BucketName(chi.URLParam(r, "bucket"))
	if !name.Valid() {
		writeError(w, http.StatusNotFound, fmt.Errorf("unknown bucket %q", name))
		return
	}

	rep, err := s.build(r)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}

	b := rep.Bucket(name)
	resp := BucketResponse{
		ReportID:    rep.ID,
		GeneratedAt: rep.GeneratedAt,
		Bucket:      *b,
		Total:       b.Total(),
		Warnings:    rep.Warnings,
	}
	if len(b.Groups) == 0 {
		resp.Message = render.EmptyMessage(*b)
	}
	writeJSON(w, http.StatusOK, resp)
}
