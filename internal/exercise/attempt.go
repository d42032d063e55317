package exercise

import (
	"errors"
	"fmt"

	"github.com/pavelanni/parabola/internal/model"
)

var (
	// ErrUnknownBlank is returned when an answer targets a blank outside the current step.
	ErrUnknownBlank = errors.New("unknown blank")
	// ErrStepOutOfRange is returned by GoTo for an index outside the exercise.
	ErrStepOutOfRange = errors.New("step out of range")
)

// Attempt tracks one learner working through one exercise.
// It is not safe for concurrent use.
type Attempt struct {
	exercise  model.Exercise
	current   int
	answers   map[string]string
	states    map[string]model.AnswerState
	hintShown bool
	blemished bool
}

// Snapshot is the externally visible state of an attempt.
type Snapshot struct {
	CurrentStep  int                          `json:"current_step"`
	Answers      map[string]string            `json:"answers"`
	States       map[string]model.AnswerState `json:"states"`
	HintShown    bool                         `json:"hint_shown"`
	StepComplete []bool                       `json:"step_complete"`
	Complete     bool                         `json:"complete"`
	FirstTry     bool                         `json:"first_try"`
}

// NewAttempt starts an attempt with every blank empty on the first step.
func NewAttempt(ex model.Exercise) *Attempt {
	a := &Attempt{exercise: ex}
	a.clear()
	return a
}

func (a *Attempt) clear() {
	a.current = 0
	a.hintShown = false
	a.answers = make(map[string]string)
	a.states = make(map[string]model.AnswerState)
	for _, step := range a.exercise.Steps {
		for _, b := range step.Blanks {
			a.answers[b.ID] = ""
			a.states[b.ID] = model.AnswerEmpty
		}
	}
}

// Exercise returns the exercise being attempted.
func (a *Attempt) Exercise() model.Exercise {
	return a.exercise
}

// CurrentStep returns the index of the active step.
func (a *Attempt) CurrentStep() int {
	return a.current
}

// Submit checks value against a blank of the current step and stores the result.
func (a *Attempt) Submit(blankID, value string) (model.AnswerState, error) {
	blank, ok := a.findBlank(blankID)
	if !ok {
		return model.AnswerEmpty, fmt.Errorf("%w: %q in step %d", ErrUnknownBlank, blankID, a.current)
	}
	state := Check(blank, value)
	a.answers[blankID] = value
	a.states[blankID] = state
	if state == model.AnswerIncorrect {
		a.blemished = true
	}
	return state, nil
}

func (a *Attempt) findBlank(id string) (model.Blank, bool) {
	if len(a.exercise.Steps) == 0 {
		return model.Blank{}, false
	}
	for _, b := range a.exercise.Steps[a.current].Blanks {
		if b.ID == id {
			return b, true
		}
	}
	return model.Blank{}, false
}

// Hint marks every blank of the current step that is not yet correct as hint-shown.
func (a *Attempt) Hint() {
	if len(a.exercise.Steps) == 0 {
		return
	}
	a.hintShown = true
	for _, b := range a.exercise.Steps[a.current].Blanks {
		if a.states[b.ID] != model.AnswerCorrect {
			a.states[b.ID] = model.AnswerHintShown
			a.blemished = true
		}
	}
}

// Next advances one step, staying on the last one.
func (a *Attempt) Next() {
	if a.current < len(a.exercise.Steps)-1 {
		a.current++
	}
	a.hintShown = false
}

// GoTo jumps to step i. Out-of-range indices leave the attempt unchanged.
func (a *Attempt) GoTo(i int) error {
	if i < 0 || i >= len(a.exercise.Steps) {
		return fmt.Errorf("%w: %d of %d", ErrStepOutOfRange, i, len(a.exercise.Steps))
	}
	a.current = i
	return nil
}

// Reset returns to the initial state. An earlier mistake or hint still
// counts against the first-try flag.
func (a *Attempt) Reset() {
	a.clear()
}

// StepComplete reports whether every blank of step i is correct.
// Steps without blanks are complete from the start.
func (a *Attempt) StepComplete(i int) bool {
	if i < 0 || i >= len(a.exercise.Steps) {
		return false
	}
	for _, b := range a.exercise.Steps[i].Blanks {
		if a.states[b.ID] != model.AnswerCorrect {
			return false
		}
	}
	return true
}

// Complete reports whether every step is complete.
func (a *Attempt) Complete() bool {
	for i := range a.exercise.Steps {
		if !a.StepComplete(i) {
			return false
		}
	}
	return true
}

// FirstTry reports whether no answer was ever wrong and no hint was used.
func (a *Attempt) FirstTry() bool {
	return !a.blemished
}

// Snapshot copies the current state.
func (a *Attempt) Snapshot() Snapshot {
	s := Snapshot{
		CurrentStep:  a.current,
		Answers:      make(map[string]string, len(a.answers)),
		States:       make(map[string]model.AnswerState, len(a.states)),
		HintShown:    a.hintShown,
		StepComplete: make([]bool, len(a.exercise.Steps)),
		Complete:     a.Complete(),
		FirstTry:     a.FirstTry(),
	}
	for k, v := range a.answers {
		s.Answers[k] = v
	}
	for k, v := range a.states {
		s.States[k] = v
	}
	for i := range a.exercise.Steps {
		s.StepComplete[i] = a.StepComplete(i)
	}
	return s
}
