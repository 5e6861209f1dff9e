package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/pavelanni/mockinterview/internal/analysis"
	"github.com/pavelanni/mockinterview/internal/bank"
	"github.com/pavelanni/mockinterview/internal/export"
	"github.com/pavelanni/mockinterview/internal/feedback"
	appI18n "github.com/pavelanni/mockinterview/internal/i18n"
	"github.com/pavelanni/mockinterview/internal/metrics"
	"github.com/pavelanni/mockinterview/internal/model"
	"github.com/pavelanni/mockinterview/internal/scoring"
	"github.com/pavelanni/mockinterview/internal/session"
)

// Config holds the tables and limits the handler applies to every session.
type Config struct {
	Weights     analysis.Weights
	Resources   feedback.Resources
	MaxSessions int // 0 means unlimited
	// IdleTimeout drops sessions unused for longer than this. 0 keeps them
	// until they are deleted or evicted to make room.
	IdleTimeout time.Duration
	Now         func() time.Time // nil means time.Now
}

// Handler holds shared dependencies for HTTP handlers.
type Handler struct {
	bank      *bank.Bank
	evaluator *scoring.Evaluator
	sessions  *registry
	metrics   *metrics.Metrics
	validate  *validator.Validate
	config    Config
}

// New creates a new Handler. m may be nil.
func New(b *bank.Bank, m *metrics.Metrics, cfg Config) *Handler {
	return &Handler{
		bank:      b,
		evaluator: scoring.NewEvaluator(b),
		sessions:  newRegistry(cfg.MaxSessions, cfg.IdleTimeout, cfg.Now),
		metrics:   m,
		validate:  validator.New(),
		config:    cfg,
	}
}

// Routes registers all HTTP routes.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/healthz", h.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/roles", h.handleRoles)
		r.Post("/evaluate", h.handleEvaluate)
		r.Post("/sessions", h.handleStartSession)
		r.Route("/sessions/{sessionID}", func(r chi.Router) {
			r.Get("/", h.handleSessionSummary)
			r.Delete("/", h.handleDeleteSession)
			r.Get("/questions/{index}", h.handleQuestion)
			r.Post("/answers", h.handleAnswer)
			r.Get("/responses", h.handleResponses)
			r.Get("/report", h.handleReport)
			r.Get("/report.html", h.handleReportHTML)
		})
	})
}

type evaluateRequest struct {
	QuestionID string `json:"question_id" validate:"required"`
	Answer     string `json:"answer"`
}

type startSessionRequest struct {
	Role  string  `json:"role" validate:"required"`
	Seed  *uint64 `json:"seed,omitempty"`
	Limit int     `json:"limit" validate:"gte=0"`
}

type startSessionResponse struct {
	SessionID string `json:"session_id"`
	Role      string `json:"role"`
	Total     int    `json:"total"`
}

type answerRequest struct {
	QuestionID string `json:"question_id" validate:"required"`
	Answer     string `json:"answer"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "questions": h.bank.Len(), "sessions": h.sessions.len()})
}

func (h *Handler) handleRoles(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.bank.Roles())
}

func (h *Handler) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	var req evaluateRequest
	if !h.decode(w, r, &req) {
		return
	}

	res := h.evaluator.EvaluateResponse(req.QuestionID, req.Answer)
	if !res.OK() {
		writeJSON(w, http.StatusNotFound, res)
		return
	}
	h.metrics.ObserveEvaluation(res.Label, res.SimilarityScore)
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) handleStartSession(w http.ResponseWriter, r *http.Request) {
	var req startSessionRequest
	if !h.decode(w, r, &req) {
		return
	}

	opts := []session.Option{session.WithLimit(req.Limit)}
	if req.Seed != nil {
		opts = append(opts, session.WithSeed(*req.Seed))
	}
	sess, err := session.New(h.bank, req.Role, opts...)
	if errors.Is(err, session.ErrNoQuestions) {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Error: appI18n.Td(r.Context(), "NoQuestionsForRole", map[string]any{"Role": req.Role}),
		})
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	id, evicted, err := h.sessions.add(sess)
	h.sessionsEnded(evicted)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	h.metrics.SessionStarted(req.Role)
	slog.Info("session started", "session_id", id, "role", req.Role, "questions", sess.Len())

	writeJSON(w, http.StatusCreated, startSessionResponse{SessionID: id, Role: req.Role, Total: sess.Len()})
}

func (h *Handler) handleSessionSummary(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, func(s *session.Session) {
		writeJSON(w, http.StatusOK, s.Summary())
	})
}

func (h *Handler) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if !h.sessions.remove(chi.URLParam(r, "sessionID")) {
		writeError(w, http.StatusNotFound, appI18n.T(r.Context(), "SessionNotFound"))
		return
	}
	h.metrics.SessionEnded()
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleQuestion(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil || index < 0 {
		writeError(w, http.StatusBadRequest, appI18n.T(r.Context(), "InvalidRequest"))
		return
	}
	h.withSession(w, r, func(s *session.Session) {
		q, ok := s.Question(index)
		if !ok {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		writeJSON(w, http.StatusOK, q.Public())
	})
}

func (h *Handler) handleAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.withSession(w, r, func(s *session.Session) {
		q, ok := s.Served(req.QuestionID)
		if !ok {
			writeError(w, http.StatusConflict, appI18n.T(r.Context(), "QuestionNotServed"))
			return
		}
		rec, err := s.SubmitAnswer(q.ID, q.Topic, req.Answer)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		h.metrics.ObserveEvaluation(rec.Label, rec.Score)
		writeJSON(w, http.StatusCreated, rec)
	})
}

func (h *Handler) handleResponses(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, func(s *session.Session) {
		writeJSON(w, http.StatusOK, s.Responses())
	})
}

func (h *Handler) handleReport(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, func(s *session.Session) {
		doc := h.document(s)
		writeJSON(w, http.StatusOK, model.ReportExport{Report: doc.Report, Feedback: doc.Feedback})
	})
}

func (h *Handler) handleReportHTML(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, func(s *session.Session) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := export.WriteHTML(w, h.document(s)); err != nil {
			slog.Error("render error", "error", err)
		}
	})
}

// document recomputes the report from every recorded response.
func (h *Handler) document(s *session.Session) export.Document {
	report := analysis.New(s.Responses(), s.Role(), h.config.Weights).GenerateReport()
	h.metrics.ReportGenerated()
	return export.Document{
		Role:        s.Role(),
		GeneratedAt: time.Now(),
		Report:      report,
		Feedback:    feedback.New(report, h.config.Resources).GenerateFeedback(),
	}
}

// withSession runs fn while holding the session's lock.
func (h *Handler) withSession(w http.ResponseWriter, r *http.Request, fn func(*session.Session)) {
	e, ok := h.sessions.get(chi.URLParam(r, "sessionID"))
	if !ok {
		writeError(w, http.StatusNotFound, appI18n.T(r.Context(), "SessionNotFound"))
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(e.sess)
	e.touch(h.sessions.now())
}

// Sweep drops sessions idle for longer than the configured timeout.
func (h *Handler) Sweep() {
	if n := h.sessions.sweep(); n > 0 {
		slog.Info("dropped idle sessions", "count", n)
		h.sessionsEnded(n)
	}
}

// RunSweeper calls Sweep every interval until ctx is done.
func (h *Handler) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.Sweep()
		}
	}
}

func (h *Handler) sessionsEnded(n int) {
	for range n {
		h.metrics.SessionEnded()
	}
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(v); err != nil {
		slog.Debug("decode request", "error", err)
		writeError(w, http.StatusBadRequest, appI18n.T(r.Context(), "InvalidRequest"))
		return false
	}
	if err := h.validate.Struct(v); err != nil {
		writeError(w, http.StatusBadRequest, appI18n.T(r.Context(), "InvalidRequest")+": "+err.Error())
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
