package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	appI18n "github.com/pavelanni/parabola/internal/i18n"
	"github.com/pavelanni/parabola/internal/llm"
	"github.com/pavelanni/parabola/internal/model"
	"github.com/pavelanni/parabola/internal/progress"
	"github.com/pavelanni/parabola/internal/store"
)

const (
	defaultMaxAttempts = 1000
	defaultTutorRate   = 1.0
	defaultTutorBurst  = 3
	maxBodyBytes       = 64 << 10
	learnerHeader      = "X-Learner-ID"
)

// Tutor explains a step of an exercise. *llm.Client implements it.
type Tutor interface {
	Explain(ctx context.Context, req llm.ExplainRequest) (*llm.Explanation, error)
}

// Handler holds shared dependencies for HTTP handlers.
type Handler struct {
	store    *store.Store
	tracker  *progress.Tracker
	tutor    Tutor
	limiter  *rate.Limiter
	config   model.ServiceConfig
	validate *validator.Validate
	attempts *attemptRegistry
}

// New creates a new Handler. tutor may be nil when explanations are disabled.
func New(s *store.Store, tracker *progress.Tracker, tutor Tutor, cfg model.ServiceConfig) (*Handler, error) {
	if s == nil || tracker == nil {
		return nil, errors.New("handler needs a store and a progress tracker")
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaultMaxAttempts
	}
	if cfg.TutorRate <= 0 {
		cfg.TutorRate = defaultTutorRate
	}
	if cfg.TutorBurst <= 0 {
		cfg.TutorBurst = defaultTutorBurst
	}
	if tutor == nil {
		cfg.TutorEnabled = false
	}
	return &Handler{
		store:    s,
		tracker:  tracker,
		tutor:    tutor,
		limiter:  rate.NewLimiter(rate.Limit(cfg.TutorRate), cfg.TutorBurst),
		config:   cfg,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		attempts: newAttemptRegistry(cfg.MaxAttempts),
	}, nil
}

// Routes registers all HTTP routes.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/healthz", h.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(learnerMiddleware)

		r.Get("/topics", h.handleTopics)
		r.Get("/exercises/{topic}", h.handleExercise)
		r.Post("/convert/vertex-to-normal", h.handleVertexToNormal)
		r.Post("/convert/normal-to-vertex", h.handleNormalToVertex)
		r.Post("/parabola/analyze", h.handleAnalyze)
		r.Post("/validate", h.handleValidate)

		r.Post("/attempts", h.handleCreateAttempt)
		r.Route("/attempts/{attemptID}", func(r chi.Router) {
			r.Get("/", h.handleGetAttempt)
			r.Post("/answers", h.handleAnswer)
			r.Post("/hint", h.handleHint)
			r.Post("/next", h.handleNext)
			r.Post("/goto", h.handleGoTo)
			r.Post("/reset", h.handleReset)
			r.Post("/explain", h.handleExplain)
		})

		r.Get("/progress", h.handleGetProgress)
		r.Delete("/progress", h.handleResetProgress)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(h.requireAuth)
		r.Use(requireRole(model.UserRoleAdmin, model.UserRoleTeacher))
		r.Get("/progress", h.handleAdminProgress)
		r.With(requireRole(model.UserRoleAdmin)).Post("/users", h.handleCreateUser)
	})
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := h.store.Ping(ctx); err != nil {
		slog.Error("health check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// learnerMiddleware reads the learner ID from the X-Learner-ID header or
// the learner query parameter.
func learnerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		learner := strings.TrimSpace(r.Header.Get(learnerHeader))
		if learner == "" {
			learner = strings.TrimSpace(r.URL.Query().Get("learner"))
		}
		if learner != "" {
			r = r.WithContext(model.ContextWithLearner(r.Context(), learner))
		}
		next.ServeHTTP(w, r)
	})
}

type errorResponse struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

// writeError responds with a localized message for msgID.
func writeError(w http.ResponseWriter, r *http.Request, status int, msgID string, details ...string) {
	writeJSON(w, status, errorResponse{
		Error:   appI18n.T(r.Context(), msgID),
		Details: details,
	})
}

// decodeBody decodes and validates a JSON request body into dst. It writes
// the 400 response itself and returns false on failure.
func (h *Handler) decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeError(w, r, http.StatusBadRequest, "ErrInvalidBody", err.Error())
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		writeError(w, r, http.StatusBadRequest, "ErrInvalidBody", validationDetails(err)...)
		return false
	}
	return true
}

func validationDetails(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}
	}
	details := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			details = append(details, fmt.Sprintf("%s: failed %q (%s)", fe.Field(), fe.Tag(), fe.Param()))
			continue
		}
		details = append(details, fmt.Sprintf("%s: failed %q", fe.Field(), fe.Tag()))
	}
	return details
}
