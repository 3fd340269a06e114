// Package server exposes the split-job HTTP API for service mode.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/local/scoresplit/internal/dispatcher"
	"github.com/local/scoresplit/internal/metrics"
	"github.com/local/scoresplit/internal/store"
)

// Queue is the enqueue side of the job queue.
type Queue interface {
	Enqueue(ctx context.Context, payload []byte) error
	CancelJob(ctx context.Context, jobID string) error
	Ping(ctx context.Context) error
}

// StatusStore is the read/write job status source.
type StatusStore interface {
	Set(ctx context.Context, jobID string, st store.Status) error
	Get(ctx context.Context, jobID string) (store.Status, bool, error)
}

// Server handles job submission and status queries.
type Server struct {
	queue  Queue
	status StatusStore
}

// New creates a Server.
func New(queue Queue, status StatusStore) *Server {
	return &Server{queue: queue, status: status}
}

// RegisterRoutes attaches all handlers to mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.Handle("/metrics", metrics.Handler())
	mux.HandleFunc("/jobs", s.handleJobs)
	mux.HandleFunc("/jobs/", s.handleJob)
}

type submitReq struct {
	FilePath    string            `json:"file_path"`
	FileURL     string            `json:"file_url"`
	OutputDir   string            `json:"output_dir"`
	Template    string            `json:"template"`
	Threshold   float64           `json:"threshold"`
	Metadata    map[string]string `json:"metadata"`
	AnalyzeOnly bool              `json:"analyze_only"`
}

type submitResp struct {
	Status  string `json:"status"`
	JobID   string `json:"job_id"`
	Message string `json:"message"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.queue.Ping(r.Context()); err != nil {
		http.Error(w, "queue unavailable", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleJobs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	defer r.Body.Close()

	var req submitReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	fileRef := req.FilePath
	if fileRef == "" {
		fileRef = req.FileURL
	}
	if fileRef == "" {
		http.Error(w, "missing file_path or file_url", http.StatusBadRequest)
		return
	}
	outputDir := req.OutputDir
	if outputDir == "" {
		outputDir = "output"
	}

	jobID := uuid.NewString()
	start := time.Now()
	_ = s.status.Set(r.Context(), jobID, store.Status{
		Status: "queued", Progress: 0, Message: "queued", Start: &start,
		Metadata: map[string]interface{}{"file_ref": fileRef, "output_dir": outputDir},
	})

	payload, _ := json.Marshal(dispatcher.Job{
		JobID:       jobID,
		FileRef:     fileRef,
		OutputDir:   outputDir,
		Template:    req.Template,
		Threshold:   req.Threshold,
		Metadata:    req.Metadata,
		AnalyzeOnly: req.AnalyzeOnly,
	})
	if err := s.queue.Enqueue(r.Context(), payload); err != nil {
		log.Error().Err(err).Str("job_id", jobID).Msg("enqueue failed")
		http.Error(w, "enqueue failed", http.StatusInternalServerError)
		return
	}

	log.Info().Str("job_id", jobID).Str("file", fileRef).Msg("job created")
	writeJSON(w, http.StatusAccepted, submitResp{Status: "queued", JobID: jobID, Message: "job accepted"})
}

// handleJob serves GET /jobs/{id} and DELETE /jobs/{id} (cancel).
func (s *Server) handleJob(w http.ResponseWriter, r *http.Request) {
	jobID := strings.TrimPrefix(r.URL.Path, "/jobs/")
	if jobID == "" || strings.Contains(jobID, "/") {
		http.NotFound(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet:
		st, found, err := s.status.Get(r.Context(), jobID)
		if err != nil {
			http.Error(w, "status lookup failed", http.StatusInternalServerError)
			return
		}
		if !found {
			http.NotFound(w, r)
			return
		}
		writeJSON(w, http.StatusOK, st)
	case http.MethodDelete:
		if err := s.queue.CancelJob(r.Context(), jobID); err != nil {
			http.Error(w, "cancel failed", http.StatusInternalServerError)
			return
		}
		log.Info().Str("job_id", jobID).Msg("job cancelled")
		writeJSON(w, http.StatusOK, map[string]string{"status": "cancelled", "job_id": jobID})
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
