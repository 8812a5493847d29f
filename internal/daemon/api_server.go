package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"mailsift/internal/api"
	"mailsift/internal/config"
	"mailsift/internal/logging"
	"mailsift/internal/services"
)

type apiServer struct {
	bind   string
	token  string
	logger *slog.Logger
	daemon *Daemon

	listener net.Listener
	server   *http.Server
}

func newAPIServer(cfg *config.Config, d *Daemon, logger *slog.Logger) *apiServer {
	bind := strings.TrimSpace(cfg.Paths.APIBind)
	if bind == "" {
		return nil
	}

	srv := &apiServer{
		bind:   bind,
		token:  strings.TrimSpace(cfg.Paths.APIToken),
		logger: logging.NewComponentLogger(logger, "api"),
		daemon: d,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", srv.handleHealth)
	mux.HandleFunc("/api/status", authMiddleware(srv.token, srv.handleStatus))
	mux.HandleFunc("/api/senders", authMiddleware(srv.token, srv.handleSenders))
	mux.HandleFunc("/api/analyze", authMiddleware(srv.token, srv.handleAnalyze))
	mux.HandleFunc("/api/tasks", authMiddleware(srv.token, srv.handleTasks))
	mux.HandleFunc("/api/tasks/", authMiddleware(srv.token, srv.handleTask))

	srv.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv
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
			s.logger.Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("api server listening", logging.String("address", listener.Addr().String()))
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

// addr returns the bound listen address, useful when the configured bind used
// port 0.
func (s *apiServer) addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *apiServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.writeJSON(w, http.StatusOK, api.HealthResponse{Status: "ok"})
}

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.writeJSON(w, http.StatusOK, api.DaemonStatus{
		Running:        s.daemon.Running(),
		PID:            os.Getpid(),
		LockFilePath:   s.daemon.LockFilePath(),
		JournalPath:    s.daemon.journal.Path(),
		TaskCount:      s.daemon.store.Len(),
		RetentionHours: s.daemon.cfg.Workflow.RetentionHours,
	})
}

func (s *apiServer) handleSenders(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	senders := make([]api.SenderInfo, 0, len(s.daemon.cfg.Senders))
	for _, sender := range s.daemon.cfg.Senders {
		senders = append(senders, api.SenderInfo{
			ID:          sender.ID,
			Name:        sender.Name,
			Email:       sender.Email,
			Description: sender.Description,
			PromptKey:   sender.PromptKey,
		})
	}
	s.writeJSON(w, http.StatusOK, api.SendersResponse{Senders: senders})
}

func (s *apiServer) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req api.AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.SenderID) == "" {
		s.writeError(w, http.StatusBadRequest, "sender_id required")
		return
	}

	task, err := s.daemon.StartTask(req.SenderID, req.Limit, req.BatchSize)
	if err != nil {
		if services.IsNotFound(err) {
			s.writeError(w, http.StatusNotFound, services.Details(err))
			return
		}
		s.writeError(w, http.StatusInternalServerError, services.Details(err))
		return
	}
	s.writeJSON(w, http.StatusAccepted, api.AnalyzeResponse{
		TaskID:   task.ID,
		Status:   string(task.Status),
		SenderID: task.SenderID,
	})
}

func (s *apiServer) handleTasks(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	listed := s.daemon.store.List()
	summaries := make([]api.TaskSummary, 0, len(listed))
	for _, task := range listed {
		summaries = append(summaries, api.SummarizeTask(task))
	}
	s.writeJSON(w, http.StatusOK, api.TaskListResponse{Tasks: summaries})
}

func (s *apiServer) handleTask(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/tasks/")
	if rest == "evict" {
		s.handleEvict(w, r)
		return
	}
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if rest == "" || strings.Contains(rest, "/") {
		s.writeError(w, http.StatusNotFound, "task not found")
		return
	}
	task, ok := s.daemon.store.Get(rest)
	if !ok {
		s.writeError(w, http.StatusNotFound, "task not found")
		return
	}
	s.writeJSON(w, http.StatusOK, api.TaskResponse{Task: task})
}

func (s *apiServer) handleEvict(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.writeJSON(w, http.StatusOK, api.EvictResponse{Evicted: s.daemon.Evict()})
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Warn("encode api response failed", logging.Error(err))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, api.ErrorResponse{Error: message})
}
