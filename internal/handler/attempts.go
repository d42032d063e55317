package handler

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pavelanni/parabola/internal/exercise"
	appI18n "github.com/pavelanni/parabola/internal/i18n"
	"github.com/pavelanni/parabola/internal/llm"
	"github.com/pavelanni/parabola/internal/metrics"
	"github.com/pavelanni/parabola/internal/model"
)

const tutorTimeout = 30 * time.Second

// attemptEntry is one attempt plus the metadata needed to record it.
type attemptEntry struct {
	mu          sync.Mutex
	id          string
	learner     string
	lang        string
	topic       model.Topic
	difficulty  model.Difficulty
	seed        int64
	attempt     *exercise.Attempt
	submissions int
	recorded    bool
}

// attemptRegistry keeps attempts in memory and drops the oldest beyond max.
type attemptRegistry struct {
	mu      sync.Mutex
	max     int
	entries map[string]*attemptEntry
	order   []string
}

func newAttemptRegistry(limit int) *attemptRegistry {
	return &attemptRegistry{max: limit, entries: make(map[string]*attemptEntry)}
}

func (reg *attemptRegistry) add(e *attemptEntry) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	reg.entries[e.id] = e
	reg.order = append(reg.order, e.id)
	for len(reg.order) > reg.max {
		oldest := reg.order[0]
		reg.order = reg.order[1:]
		delete(reg.entries, oldest)
		slog.Debug("evicted attempt", "id", oldest)
	}
	metrics.ActiveAttempts.Set(float64(len(reg.entries)))
}

func (reg *attemptRegistry) get(id string) (*attemptEntry, bool) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	e, ok := reg.entries[id]
	return e, ok
}

func (reg *attemptRegistry) len() int {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	return len(reg.entries)
}

type attemptResponse struct {
	ID         string            `json:"id"`
	Learner    string            `json:"learner"`
	Topic      model.Topic       `json:"topic"`
	Difficulty model.Difficulty  `json:"difficulty"`
	Seed       int64             `json:"seed"`
	Exercise   model.Exercise    `json:"exercise"`
	State      exercise.Snapshot `json:"state"`
}

// response must be called with e.mu held.
func (e *attemptEntry) response() attemptResponse {
	return attemptResponse{
		ID:         e.id,
		Learner:    e.learner,
		Topic:      e.topic,
		Difficulty: e.difficulty,
		Seed:       e.seed,
		Exercise:   e.attempt.Exercise(),
		State:      e.attempt.Snapshot(),
	}
}

type createAttemptRequest struct {
	Topic      model.Topic      `json:"topic" validate:"required"`
	Difficulty model.Difficulty `json:"difficulty" validate:"omitempty,oneof=easy medium hard"`
	Seed       *int64           `json:"seed"`
}

func (h *Handler) handleCreateAttempt(w http.ResponseWriter, r *http.Request) {
	var req createAttemptRequest
	if !h.decodeBody(w, r, &req) {
		return
	}
	if req.Difficulty == "" {
		req.Difficulty = model.DifficultyEasy
	}
	seed := rand.Int64N(1 << 31)
	if req.Seed != nil {
		seed = *req.Seed
	}

	ex, ok := h.generate(w, r, req.Topic, req.Difficulty, seed)
	if !ok {
		return
	}

	e := &attemptEntry{
		id:         uuid.NewString(),
		learner:    model.LearnerFromContext(r.Context()),
		lang:       appI18n.Lang(r.Context()),
		topic:      req.Topic,
		difficulty: req.Difficulty,
		seed:       seed,
		attempt:    exercise.NewAttempt(ex),
	}
	h.attempts.add(e)
	slog.Debug("created attempt", "id", e.id, "learner", e.learner, "topic", e.topic, "seed", seed)

	e.mu.Lock()
	defer e.mu.Unlock()
	writeJSON(w, http.StatusCreated, e.response())
}

// lookupAttempt resolves the attemptID URL parameter or writes a 404.
func (h *Handler) lookupAttempt(w http.ResponseWriter, r *http.Request) (*attemptEntry, bool) {
	e, ok := h.attempts.get(chi.URLParam(r, "attemptID"))
	if !ok {
		writeError(w, r, http.StatusNotFound, "ErrAttemptNotFound")
		return nil, false
	}
	return e, true
}

func (h *Handler) handleGetAttempt(w http.ResponseWriter, r *http.Request) {
	e, ok := h.lookupAttempt(w, r)
	if !ok {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	writeJSON(w, http.StatusOK, e.response())
}

type answerRequest struct {
	BlankID string `json:"blank_id" validate:"required"`
	Value   string `json:"value" validate:"max=64"`
}

type answerResponse struct {
	BlankID string            `json:"blank_id"`
	State   model.AnswerState `json:"state"`
	Attempt attemptResponse   `json:"attempt"`
}

func (h *Handler) handleAnswer(w http.ResponseWriter, r *http.Request) {
	e, ok := h.lookupAttempt(w, r)
	if !ok {
		return
	}
	var req answerRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	state, err := e.attempt.Submit(req.BlankID, req.Value)
	if errors.Is(err, exercise.ErrUnknownBlank) {
		writeError(w, r, http.StatusBadRequest, "ErrUnknownBlank", req.BlankID)
		return
	}
	e.submissions++
	metrics.RecordAnswer(string(e.topic), string(state))

	if e.attempt.Complete() && !e.recorded {
		e.recorded = true
		h.recordCompletion(r.Context(), e)
	}

	writeJSON(w, http.StatusOK, answerResponse{BlankID: req.BlankID, State: state, Attempt: e.response()})
}

// recordCompletion stores a finished attempt in the progress record and the
// completion history. Failures are logged; the learner's answer still counts.
// Must be called with e.mu held.
func (h *Handler) recordCompletion(ctx context.Context, e *attemptEntry) {
	firstTry := e.attempt.FirstTry()
	moduleID := exercise.ModuleFor(e.topic)
	metrics.RecordCompletion(string(e.topic), firstTry)

	if _, err := h.tracker.RecordCompletion(e.learner, moduleID, e.difficulty, firstTry); err != nil {
		slog.ErrorContext(ctx, "failed to record progress", "attempt", e.id, "learner", e.learner, "error", err)
	}
	_, err := h.store.InsertCompletion(model.Completion{
		Learner:     e.learner,
		Topic:       e.topic,
		ExerciseID:  e.attempt.Exercise().ID,
		Difficulty:  e.difficulty,
		Seed:        e.seed,
		FirstTry:    firstTry,
		Submissions: e.submissions,
		CompletedAt: time.Now(),
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to record completion", "attempt", e.id, "learner", e.learner, "error", err)
		return
	}
	slog.Info("exercise completed", "attempt", e.id, "learner", e.learner, "module", moduleID, "first_try", firstTry)
}

func (h *Handler) handleHint(w http.ResponseWriter, r *http.Request) {
	h.mutateAttempt(w, r, (*exercise.Attempt).Hint)
}

func (h *Handler) handleNext(w http.ResponseWriter, r *http.Request) {
	h.mutateAttempt(w, r, (*exercise.Attempt).Next)
}

func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	h.mutateAttempt(w, r, (*exercise.Attempt).Reset)
}

func (h *Handler) mutateAttempt(w http.ResponseWriter, r *http.Request, fn func(*exercise.Attempt)) {
	e, ok := h.lookupAttempt(w, r)
	if !ok {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(e.attempt)
	writeJSON(w, http.StatusOK, e.response())
}

type gotoRequest struct {
	Step *int `json:"step" validate:"required"`
}

func (h *Handler) handleGoTo(w http.ResponseWriter, r *http.Request) {
	e, ok := h.lookupAttempt(w, r)
	if !ok {
		return
	}
	var req gotoRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.attempt.GoTo(*req.Step); err != nil {
		writeError(w, r, http.StatusBadRequest, "ErrStepOutOfRange", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, e.response())
}

type explainResponse struct {
	Step        int      `json:"step"`
	Explanation string   `json:"explanation"`
	Mistakes    []string `json:"mistakes"`
}

func (h *Handler) handleExplain(w http.ResponseWriter, r *http.Request) {
	e, ok := h.lookupAttempt(w, r)
	if !ok {
		return
	}
	if !h.config.TutorEnabled {
		metrics.RecordTutor("disabled", 0)
		writeError(w, r, http.StatusServiceUnavailable, "ErrTutorDisabled")
		return
	}
	if !h.limiter.Allow() {
		metrics.RecordTutor("rate_limited", 0)
		w.Header().Set("Retry-After", "1")
		writeError(w, r, http.StatusTooManyRequests, "ErrTutorBusy")
		return
	}

	// Copy what the tutor needs so the lock is not held during the LLM call.
	e.mu.Lock()
	snap := e.attempt.Snapshot()
	req := llm.ExplainRequest{
		Lang:     e.lang,
		Exercise: e.attempt.Exercise(),
		Step:     snap.CurrentStep,
		Answers:  snap.Answers,
		States:   snap.States,
	}
	e.mu.Unlock()

	ctx, cancel := context.WithTimeout(r.Context(), tutorTimeout)
	defer cancel()

	start := time.Now()
	result, err := h.tutor.Explain(ctx, req)
	if err != nil {
		metrics.RecordTutor("error", time.Since(start))
		slog.Error("tutor explanation failed", "attempt", e.id, "error", err)
		writeError(w, r, http.StatusBadGateway, "ErrTutorFailed")
		return
	}
	metrics.RecordTutor("ok", time.Since(start))

	writeJSON(w, http.StatusOK, explainResponse{
		Step:        req.Step,
		Explanation: result.Text,
		Mistakes:    result.Mistakes,
	})
}
