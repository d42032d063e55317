package handler

import (
	"encoding/json"
	"errors"
	"math/rand/v2"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/pavelanni/parabola/internal/exercise"
	appI18n "github.com/pavelanni/parabola/internal/i18n"
	"github.com/pavelanni/parabola/internal/metrics"
	"github.com/pavelanni/parabola/internal/model"
	"github.com/pavelanni/parabola/internal/parabola"
)

const defaultSampleSteps = 40

type topicInfo struct {
	ID           model.Topic      `json:"id"`
	Name         string           `json:"name"`
	Module       string           `json:"module"`
	Difficulties []difficultyInfo `json:"difficulties"`
}

type difficultyInfo struct {
	ID   model.Difficulty `json:"id"`
	Name string           `json:"name"`
}

var topicMessages = map[model.Topic]string{
	model.TopicVertexToNormal:      "TopicVertexToNormal",
	model.TopicNormalToVertex:      "TopicNormalToVertex",
	model.TopicBinomialExpansion:   "TopicBinomialExpansion",
	model.TopicCompletingTheSquare: "TopicCompletingTheSquare",
	model.TopicShift:               "TopicShift",
	model.TopicStretch:             "TopicStretch",
	model.TopicReflect:             "TopicReflect",
	model.TopicExpanding:           "TopicExpanding",
	model.TopicFactoring:           "TopicFactoring",
	model.TopicRearranging:         "TopicRearranging",
}

var difficultyMessages = map[model.Difficulty]string{
	model.DifficultyEasy:   "DifficultyEasy",
	model.DifficultyMedium: "DifficultyMedium",
	model.DifficultyHard:   "DifficultyHard",
}

func (h *Handler) handleTopics(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	difficulties := make([]difficultyInfo, 0, len(model.Difficulties))
	for _, d := range model.Difficulties {
		difficulties = append(difficulties, difficultyInfo{ID: d, Name: appI18n.T(ctx, difficultyMessages[d])})
	}

	topics := make([]topicInfo, 0, len(model.Topics))
	for _, t := range model.Topics {
		topics = append(topics, topicInfo{
			ID:           t,
			Name:         appI18n.T(ctx, topicMessages[t]),
			Module:       exercise.ModuleFor(t),
			Difficulties: difficulties,
		})
	}
	writeJSON(w, http.StatusOK, topics)
}

// generate builds an exercise with prose in the request language and maps
// generator errors to responses. It returns false after writing an error.
func (h *Handler) generate(w http.ResponseWriter, r *http.Request, topic model.Topic, difficulty model.Difficulty, seed int64) (model.Exercise, bool) {
	gen := exercise.New(appI18n.FromContext(r.Context()))
	ex, err := gen.Generate(topic, difficulty, seed)
	switch {
	case errors.Is(err, exercise.ErrUnknownTopic):
		writeError(w, r, http.StatusNotFound, "ErrUnknownTopic", string(topic))
		return ex, false
	case errors.Is(err, exercise.ErrUnknownDifficulty):
		writeError(w, r, http.StatusBadRequest, "ErrUnknownDifficulty", string(difficulty))
		return ex, false
	case err != nil:
		// Only reachable for parameters the generator never draws.
		writeError(w, r, http.StatusInternalServerError, "ErrInternal", err.Error())
		return ex, false
	}
	metrics.RecordGenerated(string(topic), string(difficulty))
	return ex, true
}

func (h *Handler) handleExercise(w http.ResponseWriter, r *http.Request) {
	topic := model.Topic(chi.URLParam(r, "topic"))
	q := r.URL.Query()

	difficulty := model.Difficulty(q.Get("difficulty"))
	if difficulty == "" {
		difficulty = model.DifficultyEasy
	}

	seed := rand.Int64N(1 << 31)
	if s := q.Get("seed"); s != "" {
		parsed, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "ErrInvalidBody", "seed: "+err.Error())
			return
		}
		seed = parsed
	}

	ex, ok := h.generate(w, r, topic, difficulty, seed)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, exerciseResponse{Seed: seed, Difficulty: difficulty, Exercise: ex})
}

type exerciseResponse struct {
	Seed       int64            `json:"seed"`
	Difficulty model.Difficulty `json:"difficulty"`
	model.Exercise
}

// vertexRequest uses pointers so that a missing field differs from zero.
type vertexRequest struct {
	A *float64 `json:"a" validate:"required"`
	D *float64 `json:"d" validate:"required"`
	E *float64 `json:"e" validate:"required"`
}

func (v vertexRequest) form() model.VertexForm {
	return model.VertexForm{A: *v.A, D: *v.D, E: *v.E}
}

type normalRequest struct {
	A *float64 `json:"a" validate:"required"`
	B *float64 `json:"b" validate:"required"`
	C *float64 `json:"c" validate:"required"`
}

type conversionResponse struct {
	Vertex     model.VertexForm `json:"vertex_form"`
	Normal     model.NormalForm `json:"normal_form"`
	VertexText string           `json:"vertex_text"`
	NormalText string           `json:"normal_text"`
}

func newConversionResponse(v model.VertexForm, n model.NormalForm) conversionResponse {
	return conversionResponse{
		Vertex:     v,
		Normal:     n,
		VertexText: parabola.FormatVertexForm(v),
		NormalText: parabola.FormatNormalForm(n),
	}
}

func (h *Handler) handleVertexToNormal(w http.ResponseWriter, r *http.Request) {
	var req vertexRequest
	if !h.decodeBody(w, r, &req) {
		return
	}
	v := req.form()
	n, err := parabola.VertexToNormal(v)
	if err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, "ErrDegenerate")
		return
	}
	writeJSON(w, http.StatusOK, newConversionResponse(v, n))
}

func (h *Handler) handleNormalToVertex(w http.ResponseWriter, r *http.Request) {
	var req normalRequest
	if !h.decodeBody(w, r, &req) {
		return
	}
	n := model.NormalForm{A: *req.A, B: *req.B, C: *req.C}
	v, err := parabola.NormalToVertex(n)
	if err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, "ErrDegenerate")
		return
	}
	writeJSON(w, http.StatusOK, newConversionResponse(v, n))
}

type analyzeRequest struct {
	vertexRequest
	XMin  *float64 `json:"x_min"`
	XMax  *float64 `json:"x_max"`
	Steps int      `json:"steps" validate:"omitempty,min=1,max=2000"`
}

type analyzeResponse struct {
	Validation model.ValidationResult `json:"validation"`
	conversionResponse
	Apex       model.Point   `json:"vertex"`
	Zeros      []model.Point `json:"zeros"`
	YIntercept model.Point   `json:"y_intercept"`
	Points     []model.Point `json:"points"`
}

func (h *Handler) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if !h.decodeBody(w, r, &req) {
		return
	}
	v := req.form()
	validation := parabola.CheckVertexForm(v, model.DefaultBounds)

	n, err := parabola.VertexToNormal(v)
	if err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, "ErrDegenerate", validation.Errors...)
		return
	}
	zeros, err := parabola.Zeros(v)
	if err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, "ErrDegenerate")
		return
	}

	xMin, xMax := model.DefaultBounds.D.Min, model.DefaultBounds.D.Max
	if req.XMin != nil {
		xMin = *req.XMin
	}
	if req.XMax != nil {
		xMax = *req.XMax
	}
	steps := req.Steps
	if steps == 0 {
		steps = defaultSampleSteps
	}
	points, err := parabola.SamplePoints(v, xMin, xMax, steps)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "ErrInvalidSteps")
		return
	}

	writeJSON(w, http.StatusOK, analyzeResponse{
		Validation:         validation,
		conversionResponse: newConversionResponse(v, n),
		Apex:               parabola.Vertex(v),
		Zeros:              zeros,
		YIntercept:         parabola.YIntercept(v),
		Points:             points,
	})
}

// handleValidate accepts any JSON value; problems are reported in the result.
func (h *Handler) handleValidate(w http.ResponseWriter, r *http.Request) {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.UseNumber()
	var input any
	if err := dec.Decode(&input); err != nil {
		writeError(w, r, http.StatusBadRequest, "ErrInvalidBody", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, parabola.ValidateVertexForm(input))
}
