package model

import (
	"context"
	"time"
)

// UserRole represents a user's access level.
type UserRole string

const (
	// UserRoleAdmin may read all learners' progress.
	UserRoleAdmin UserRole = "admin"
	// UserRoleTeacher may read all learners' progress.
	UserRoleTeacher UserRole = "teacher"
)

// User represents an account allowed on the admin endpoints.
type User struct {
	ID           int64
	Username     string
	DisplayName  string
	PasswordHash string
	Role         UserRole
	Active       bool
	CreatedAt    time.Time
}

type userCtxKey struct{}

// ContextWithUser stores a user in the request context.
func ContextWithUser(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, userCtxKey{}, u)
}

// UserFromContext retrieves the authenticated user from context, or nil.
func UserFromContext(ctx context.Context) *User {
	u, _ := ctx.Value(userCtxKey{}).(*User)
	return u
}

// DefaultLearner is used when a request does not identify a learner.
const DefaultLearner = "default"

type learnerCtxKey struct{}

// ContextWithLearner stores the learner ID in context.
func ContextWithLearner(ctx context.Context, learner string) context.Context {
	return context.WithValue(ctx, learnerCtxKey{}, learner)
}

// LearnerFromContext retrieves the learner ID from context (DefaultLearner if not set).
func LearnerFromContext(ctx context.Context) string {
	l, _ := ctx.Value(learnerCtxKey{}).(string)
	if l == "" {
		return DefaultLearner
	}
	return l
}

// VertexForm holds the parameters of f(x) = a(x - d)² + e.
// The vertex is (d, e); a must not be zero for a parabola.
type VertexForm struct {
	A float64 `json:"a"`
	D float64 `json:"d"`
	E float64 `json:"e"`
}

// NormalForm holds the parameters of f(x) = ax² + bx + c.
type NormalForm struct {
	A float64 `json:"a"`
	B float64 `json:"b"`
	C float64 `json:"c"`
}

// Point is a plain 2D coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Range is a closed interval.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// ParameterBounds limits interactive vertex form input.
type ParameterBounds struct {
	A Range `json:"a"`
	D Range `json:"d"`
	E Range `json:"e"`
}

// DefaultBounds are the slider bounds of the explorer.
var DefaultBounds = ParameterBounds{
	A: Range{Min: -5, Max: 5},
	D: Range{Min: -10, Max: 10},
	E: Range{Min: -10, Max: 10},
}

// ValidationResult lists every problem found in an input.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// Difficulty represents exercise difficulty level.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Difficulties lists all levels in ascending order.
var Difficulties = []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}

// Topic identifies an exercise generator.
type Topic string

const (
	TopicVertexToNormal      Topic = "vertex-to-normal"
	TopicNormalToVertex      Topic = "normal-to-vertex"
	TopicBinomialExpansion   Topic = "binomial-expansion"
	TopicCompletingTheSquare Topic = "completing-the-square"
	TopicShift               Topic = "shift"
	TopicStretch             Topic = "stretch"
	TopicReflect             Topic = "reflect"
	TopicExpanding           Topic = "expanding"
	TopicFactoring           Topic = "factoring"
	TopicRearranging         Topic = "rearranging"
)

// Topics lists every topic in menu order.
var Topics = []Topic{
	TopicVertexToNormal,
	TopicNormalToVertex,
	TopicBinomialExpansion,
	TopicCompletingTheSquare,
	TopicShift,
	TopicStretch,
	TopicReflect,
	TopicExpanding,
	TopicFactoring,
	TopicRearranging,
}

// Blank is a single fill-in answer slot.
type Blank struct {
	ID            string  `json:"id"`
	CorrectAnswer float64 `json:"correct_answer"`
	Tolerance     float64 `json:"tolerance,omitempty"`
	Label         string  `json:"label,omitempty"`
}

// Step is one stage of an exercise. Template contains {blankID} placeholders.
type Step struct {
	ID          string  `json:"id"`
	Instruction string  `json:"instruction"`
	Explanation string  `json:"explanation"`
	Template    string  `json:"template"`
	Blanks      []Blank `json:"blanks"`
	Hint        string  `json:"hint,omitempty"`
}

// Exercise is a generated multi-step fill-in-the-blank problem.
type Exercise struct {
	ID             string      `json:"id"`
	Title          string      `json:"title"`
	Description    string      `json:"description"`
	Steps          []Step      `json:"steps"`
	ParabolaParams *VertexForm `json:"parabola_params,omitempty"`
}

// AnswerState is the evaluation state of a single blank.
type AnswerState string

const (
	AnswerEmpty     AnswerState = "empty"
	AnswerCorrect   AnswerState = "correct"
	AnswerIncorrect AnswerState = "incorrect"
	AnswerHintShown AnswerState = "hint-shown"
)

// ModuleProgress tracks completions within one topic.
type ModuleProgress struct {
	ModuleID                 string     `json:"module_id" yaml:"module_id"`
	ExercisesCompleted       int        `json:"exercises_completed" yaml:"exercises_completed"`
	ExercisesCorrectFirstTry int        `json:"exercises_correct_first_try" yaml:"exercises_correct_first_try"`
	LastDifficulty           Difficulty `json:"last_difficulty" yaml:"last_difficulty"`
	LastAttemptDate          string     `json:"last_attempt_date" yaml:"last_attempt_date"`
}

// AppProgress is the persisted progress record of a learner.
type AppProgress struct {
	Modules                 map[string]ModuleProgress `json:"modules" yaml:"modules"`
	TotalExercisesCompleted int                       `json:"total_exercises_completed" yaml:"total_exercises_completed"`
	FirstVisitDate          string                    `json:"first_visit_date" yaml:"first_visit_date"`
	LastVisitDate           string                    `json:"last_visit_date" yaml:"last_visit_date"`
}

// Completion is one finished exercise in the history table.
type Completion struct {
	ID          int64      `json:"id" yaml:"id"`
	Learner     string     `json:"learner" yaml:"learner"`
	Topic       Topic      `json:"topic" yaml:"topic"`
	ExerciseID  string     `json:"exercise_id" yaml:"exercise_id"`
	Difficulty  Difficulty `json:"difficulty" yaml:"difficulty"`
	Seed        int64      `json:"seed" yaml:"seed"`
	FirstTry    bool       `json:"first_try" yaml:"first_try"`
	Submissions int        `json:"submissions" yaml:"submissions"`
	CompletedAt time.Time  `json:"completed_at" yaml:"completed_at"`
}

// ServiceConfig holds runtime parameters set via CLI flags.
type ServiceConfig struct {
	Lang         string  // default UI language
	TutorEnabled bool    // LLM explanations available
	TutorRate    float64 // explanations per second across all learners
	TutorBurst   int
	MaxAttempts  int // attempts kept in memory before the oldest are dropped

	ProgressBackend string // sqlite or badger, reported in exports
}
