package handler

import (
	"log/slog"
	"net/http"
	"sort"

	"github.com/pavelanni/parabola/internal/model"
	"github.com/pavelanni/parabola/internal/progress"
)

// moduleGoal is the number of completions shown as a full module.
const moduleGoal = 10

type moduleSummary struct {
	model.ModuleProgress
	CompletionPercentage int `json:"completion_percentage"`
	SuccessRate          int `json:"success_rate"`
}

type progressResponse struct {
	Learner  string            `json:"learner"`
	Progress model.AppProgress `json:"progress"`
	Modules  []moduleSummary   `json:"modules"`
	Goal     int               `json:"goal"`
}

func (h *Handler) handleGetProgress(w http.ResponseWriter, r *http.Request) {
	learner := model.LearnerFromContext(r.Context())
	p, err := h.tracker.Visit(learner)
	if err != nil {
		// Nothing was written; show whatever can be read.
		slog.Warn("failed to record visit", "learner", learner, "error", err)
		p = h.tracker.Load(learner)
	}

	ids := make([]string, 0, len(p.Modules))
	for id := range p.Modules {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	modules := make([]moduleSummary, 0, len(ids))
	for _, id := range ids {
		m := p.Modules[id]
		modules = append(modules, moduleSummary{
			ModuleProgress:       m,
			CompletionPercentage: progress.CompletionPercentage(&m, moduleGoal),
			SuccessRate:          progress.SuccessRate(&m),
		})
	}

	writeJSON(w, http.StatusOK, progressResponse{
		Learner:  learner,
		Progress: p,
		Modules:  modules,
		Goal:     moduleGoal,
	})
}

func (h *Handler) handleResetProgress(w http.ResponseWriter, r *http.Request) {
	learner := model.LearnerFromContext(r.Context())
	if err := h.tracker.Reset(learner); err != nil {
		slog.Error("failed to reset progress", "learner", learner, "error", err)
		writeError(w, r, http.StatusInternalServerError, "ErrInternal")
		return
	}
	if err := h.store.DeleteCompletions(learner); err != nil {
		slog.Error("failed to delete completions", "learner", learner, "error", err)
		writeError(w, r, http.StatusInternalServerError, "ErrInternal")
		return
	}
	slog.Info("progress reset", "learner", learner)
	w.WriteHeader(http.StatusNoContent)
}
