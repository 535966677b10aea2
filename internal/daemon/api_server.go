package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"log/slog"

	"chalkboard/internal/config"
	"chalkboard/internal/jobs"
	"chalkboard/internal/logging"
	"chalkboard/internal/pipeline"
)

// GenerateRequest is the payload for POST /api/generate.
type GenerateRequest struct {
	Topic string `json:"topic"`
}

// GenerateResponse is the success payload for POST /api/generate.
type GenerateResponse struct {
	RequestID      string   `json:"request_id"`
	Topic          string   `json:"topic"`
	Slug           string   `json:"slug"`
	Points         []string `json:"points"`
	PublicID       string   `json:"public_id"`
	VideoURL       string   `json:"video_url"`
	SpeedFactor    float64  `json:"speed_factor"`
	StretchApplied bool     `json:"stretch_applied"`
	FallbackUsed   bool     `json:"fallback_used"`
	ElapsedSeconds float64  `json:"elapsed_seconds"`
}

// JobView is the API representation of a run history row.
type JobView struct {
	RequestID      string  `json:"request_id"`
	Topic          string  `json:"topic"`
	Slug           string  `json:"slug"`
	Status         string  `json:"status"`
	SpeedFactor    float64 `json:"speed_factor"`
	StretchApplied bool    `json:"stretch_applied"`
	FallbackUsed   bool    `json:"fallback_used"`
	PublicID       string  `json:"public_id"`
	VideoURL       string  `json:"video_url"`
	ErrorMessage   string  `json:"error_message,omitempty"`
	CreatedAt      string  `json:"created_at"`
	UpdatedAt      string  `json:"updated_at"`
}

// StatusResponse is the payload for GET /api/status.
type StatusResponse struct {
	Running            bool               `json:"running"`
	PID                int                `json:"pid"`
	JobsDBPath         string             `json:"jobs_db_path"`
	LockFilePath       string             `json:"lock_file_path"`
	MissingCredentials []string           `json:"missing_credentials"`
	Dependencies       []DependencyStatus `json:"dependencies"`
	Jobs               JobCounts          `json:"jobs"`
}

// DependencyStatus reports one external binary's availability.
type DependencyStatus struct {
	Name        string `json:"name"`
	Command     string `json:"command"`
	Description string `json:"description"`
	Available   bool   `json:"available"`
	Detail      string `json:"detail,omitempty"`
}

// JobCounts aggregates run history by lifecycle state.
type JobCounts struct {
	Total      int `json:"total"`
	Pending    int `json:"pending"`
	Processing int `json:"processing"`
	Completed  int `json:"completed"`
	Failed     int `json:"failed"`
}

type apiServer struct {
	bind   string
	logger *slog.Logger
	daemon *Daemon

	listener net.Listener
	server   *http.Server
}

func newAPIServer(cfg *config.Config, d *Daemon, logger *slog.Logger) (*apiServer, error) {
	if cfg == nil || d == nil {
		return nil, nil
	}
	bind := strings.TrimSpace(cfg.APIBind)
	if bind == "" {
		return nil, nil
	}

	srv := &apiServer{
		bind:   bind,
		logger: logger,
		daemon: d,
	}

	mux := http.NewServeMux()
	token := strings.TrimSpace(cfg.APIToken)
	mux.HandleFunc("/api/generate", authMiddleware(token, srv.handleGenerate))
	mux.HandleFunc("/api/health", srv.handleHealth)
	mux.HandleFunc("/api/status", authMiddleware(token, srv.handleStatus))
	mux.HandleFunc("/api/jobs", authMiddleware(token, srv.handleJobs))
	mux.HandleFunc("/api/jobs/", authMiddleware(token, srv.handleJob))

	srv.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		// Generation is synchronous and can legitimately take minutes.
		WriteTimeout: 15 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}
	return srv, nil
}

func (s *apiServer) start(ctx context.Context) error {
	if s == nil {
		return nil
	}
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log().Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.log().Info("api server listening", slog.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	if s == nil {
		return
	}
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

// Addr returns the bound listener address, for tests that bind port 0.
func (s *apiServer) addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *apiServer) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := s.daemon.Generate(r.Context(), pipeline.Request{Topic: req.Topic})
	if err != nil {
		stageErr, ok := pipeline.AsStageError(err)
		if ok && stageErr.Kind == pipeline.KindInputInvalid {
			s.writeError(w, http.StatusBadRequest, stageErr.Err.Error())
			return
		}
		if ok {
			s.writeJSON(w, http.StatusInternalServerError, map[string]string{
				"error": stageErr.Err.Error(),
				"stage": stageErr.Stage,
				"kind":  string(stageErr.Kind),
			})
			return
		}
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, GenerateResponse{
		RequestID:      result.RequestID,
		Topic:          result.Topic,
		Slug:           result.Slug,
		Points:         result.Points,
		PublicID:       result.PublicID,
		VideoURL:       result.VideoURL,
		SpeedFactor:    result.SpeedFactor,
		StretchApplied: result.StretchApplied,
		FallbackUsed:   result.FallbackUsed,
		ElapsedSeconds: result.Elapsed.Seconds(),
	})
}

func (s *apiServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	health := s.daemon.store.CheckHealth(r.Context())
	payload := map[string]any{
		"status":  "ok",
		"db_path": health.DBPath,
	}
	if health.Error != "" || !health.IntegrityCheck {
		payload["status"] = "degraded"
		payload["detail"] = health.Error
		s.writeJSON(w, http.StatusServiceUnavailable, payload)
		return
	}
	s.writeJSON(w, http.StatusOK, payload)
}

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	status := s.daemon.Status(r.Context())
	dependencies := make([]DependencyStatus, len(status.Dependencies))
	for i, dep := range status.Dependencies {
		dependencies[i] = DependencyStatus{
			Name:        dep.Name,
			Command:     dep.Command,
			Description: dep.Description,
			Available:   dep.Available,
			Detail:      dep.Detail,
		}
	}
	missing := status.MissingCredentials
	if missing == nil {
		missing = []string{}
	}
	s.writeJSON(w, http.StatusOK, StatusResponse{
		Running:            status.Running,
		PID:                status.PID,
		JobsDBPath:         status.JobsDBPath,
		LockFilePath:       status.LockFilePath,
		MissingCredentials: missing,
		Dependencies:       dependencies,
		Jobs: JobCounts{
			Total:      status.Jobs.Total,
			Pending:    status.Jobs.Pending,
			Processing: status.Jobs.Processing,
			Completed:  status.Jobs.Completed,
			Failed:     status.Jobs.Failed,
		},
	})
}

func (s *apiServer) handleJobs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var status jobs.Status
	if value := strings.TrimSpace(r.URL.Query().Get("status")); value != "" {
		parsed, ok := jobs.ParseStatus(value)
		if !ok {
			s.writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown status %q", value))
			return
		}
		status = parsed
	}
	list, err := s.daemon.ListJobs(r.Context(), status, 0)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	views := make([]JobView, 0, len(list))
	for _, job := range list {
		views = append(views, jobView(job))
	}
	s.writeJSON(w, http.StatusOK, map[string][]JobView{"jobs": views})
}

func (s *apiServer) handleJob(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	requestID := strings.TrimPrefix(r.URL.Path, "/api/jobs/")
	if requestID == "" || strings.Contains(requestID, "/") {
		s.writeError(w, http.StatusNotFound, "job not found")
		return
	}
	job, err := s.daemon.GetJob(r.Context(), requestID)
	if errors.Is(err, jobs.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, "job not found")
		return
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, jobView(job))
}

func jobView(job *jobs.Job) JobView {
	return JobView{
		RequestID:      job.RequestID,
		Topic:          job.Topic,
		Slug:           job.Slug,
		Status:         string(job.Status),
		SpeedFactor:    job.SpeedFactor,
		StretchApplied: job.StretchApplied,
		FallbackUsed:   job.FallbackUsed,
		PublicID:       job.PublicID,
		VideoURL:       job.VideoURL,
		ErrorMessage:   job.ErrorMessage,
		CreatedAt:      job.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      job.UpdatedAt.Format(time.RFC3339),
	}
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log().Error("failed to encode response", logging.Error(err))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

func (s *apiServer) log() *slog.Logger {
	if s.logger != nil {
		return s.logger.With(slog.String(logging.FieldComponent, "api-server"))
	}
	return logging.NewNop()
}
