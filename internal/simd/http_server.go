package simd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/Jaikrrish5959/Live-in-Labs/pkg/config"
	"github.com/Jaikrrish5959/Live-in-Labs/pkg/logger"
	"github.com/Jaikrrish5959/Live-in-Labs/pkg/models"
)

// HTTPServer exposes the job queue over REST. Submission is asynchronous:
// POST returns a job ID immediately and the worker picks the job up on its
// next poll.
type HTTPServer struct {
	store      *JobStore
	collectors *Collectors
	logger     *slog.Logger
}

func NewHTTPServer(store *JobStore, collectors *Collectors) *HTTPServer {
	return &HTTPServer{
		store:      store,
		collectors: collectors,
		logger:     logger.Default,
	}
}

// SetLogger sets the server's logger
func (s *HTTPServer) SetLogger(l *slog.Logger) {
	s.logger = l
}

func (s *HTTPServer) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Correlation-ID"},
		ExposedHeaders:   []string{"X-Correlation-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/healthz", s.handleHealthz)
	if s.collectors != nil {
		r.Handle("/metrics", s.collectors.Handler())
	}

	r.Route("/api/jobs", func(r chi.Router) {
		r.Post("/", s.handleCreateJob)
		r.Get("/", s.handleListJobs)

		r.Route("/{jobID}", func(r chi.Router) {
			r.Get("/", s.handleGetJob)
			r.Get("/results", s.handleGetResults)
			r.Get("/artifacts/{name}", s.handleGetArtifact)
		})
	})

	return r
}

func (s *HTTPServer) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(start).String())
	})
}

func (s *HTTPServer) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// handleCreateJob accepts a partial config as the request body. Omitted
// fields keep their defaults; an empty body queues a default run. The body
// may also carry callback_url and callback_secret for completion webhooks.
func (s *HTTPServer) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "failed to read request body: "+err.Error())
		return
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		body = []byte("{}")
	}

	var callback struct {
		URL    string `json:"callback_url"`
		Secret string `json:"callback_secret"`
	}
	if err := json.Unmarshal(body, &callback); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if callback.URL != "" {
		if err := validateCallbackURL(callback.URL); err != nil {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	cfg, err := config.ParseJSON(body)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	job, err := s.store.Create(cfg)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if callback.URL != "" {
		job.CallbackURL = callback.URL
		job.CallbackSecret = callback.Secret
		if err := s.store.Update(job); err != nil {
			s.writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}

	if s.collectors != nil {
		s.collectors.JobSubmitted()
		if n, err := s.store.PendingCount(); err == nil {
			s.collectors.SetPendingJobs(n)
		}
	}
	s.logger.Info("Job submitted", "job_id", job.JobID)

	s.writeJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"job_id":  job.JobID,
		"status":  job.Status,
		"message": "Job submitted successfully",
	})
}

func (s *HTTPServer) handleListJobs(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			s.writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		if parsed > 1000 {
			parsed = 1000
		}
		limit = parsed
	}

	jobs, err := s.store.List(limit)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"jobs":    jobs,
		"count":   len(jobs),
	})
}

func (s *HTTPServer) handleGetJob(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job, err := s.store.Get(jobID)
	if err != nil {
		if errors.Is(err, ErrJobNotFound) {
			s.writeError(w, http.StatusNotFound, "Job not found")
		} else {
			s.writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"job":     job,
	})
}

// handleGetResults serves the metrics and summary artifacts of a completed
// job in one payload. Incomplete jobs get a 409 with the current status.
func (s *HTTPServer) handleGetResults(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job, err := s.store.Get(jobID)
	if err != nil {
		if errors.Is(err, ErrJobNotFound) {
			s.writeError(w, http.StatusNotFound, "Job not found")
		} else {
			s.writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	if job.Status != models.JobCompleted {
		s.writeError(w, http.StatusConflict,
			fmt.Sprintf("job is not completed (status: %s)", job.Status))
		return
	}

	dir := s.store.JobDir(jobID)
	metricsRaw, err := os.ReadFile(filepath.Join(dir, "metrics.json"))
	if err != nil {
		s.writeError(w, http.StatusNotFound, "Results not found")
		return
	}
	summaryRaw, err := os.ReadFile(filepath.Join(dir, "summary.json"))
	if err != nil {
		s.writeError(w, http.StatusNotFound, "Results not found")
		return
	}

	names := make([]string, 0, len(job.Artifacts))
	for name := range job.Artifacts {
		names = append(names, name)
	}
	sort.Strings(names)

	s.writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"job_id":    job.JobID,
		"status":    job.Status,
		"metrics":   json.RawMessage(metricsRaw),
		"summary":   json.RawMessage(summaryRaw),
		"artifacts": names,
	})
}

func (s *HTTPServer) handleGetArtifact(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	name := chi.URLParam(r, "name")

	// Artifact names are flat filenames inside the job directory.
	if name == "" || name != filepath.Base(name) || strings.Contains(name, "..") {
		s.writeError(w, http.StatusBadRequest, "invalid artifact name")
		return
	}

	if _, err := s.store.Get(jobID); err != nil {
		if errors.Is(err, ErrJobNotFound) {
			s.writeError(w, http.StatusNotFound, "Job not found")
		} else {
			s.writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	path := filepath.Join(s.store.JobDir(jobID), name)
	if _, err := os.Stat(path); err != nil {
		s.writeError(w, http.StatusNotFound, "Artifact not found")
		return
	}

	http.ServeFile(w, r, path)
}

func (s *HTTPServer) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode JSON response", "error", err)
	}
}

func (s *HTTPServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]any{
		"success": false,
		"error":   message,
	})
}
