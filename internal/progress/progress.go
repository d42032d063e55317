// Package progress keeps a learner's completion record in a key-value backend.
package progress

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pavelanni/parabola/internal/model"
)

// StorageKey holds the default learner's record. Other learners are stored
// under StorageKey + ":" + learner.
const StorageKey = "parabola-progress"

// KV is the storage a Tracker needs. Get returns nil, nil for a missing key.
type KV interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	Delete(key string) error
	Keys(prefix string) ([]string, error)
}

// Key returns the storage key for learner.
func Key(learner string) string {
	if learner == "" || learner == model.DefaultLearner {
		return StorageKey
	}
	return StorageKey + ":" + learner
}

// LearnerFromKey is the inverse of Key. ok is false for unrelated keys.
func LearnerFromKey(key string) (learner string, ok bool) {
	if key == StorageKey {
		return model.DefaultLearner, true
	}
	rest, found := strings.CutPrefix(key, StorageKey+":")
	if !found || rest == "" {
		return "", false
	}
	return rest, true
}

// Tracker loads and updates progress records. Updates for all learners are
// serialized so concurrent completions do not lose counts.
type Tracker struct {
	kv  KV
	mu  sync.Mutex
	now func() time.Time
}

// NewTracker returns a Tracker backed by kv.
func NewTracker(kv KV) *Tracker {
	return &Tracker{kv: kv, now: time.Now}
}

// Default returns an empty record with both visit dates set to now.
func Default(now time.Time) model.AppProgress {
	ts := now.UTC().Format(time.RFC3339)
	return model.AppProgress{
		Modules:        map[string]model.ModuleProgress{},
		FirstVisitDate: ts,
		LastVisitDate:  ts,
	}
}

// Load returns the stored record for learner. It never fails: a missing,
// unreadable or malformed record yields defaults.
func (t *Tracker) Load(learner string) model.AppProgress {
	p, err := t.load(learner)
	if err != nil {
		slog.Warn("failed to load progress", "key", Key(learner), "error", err)
		return Default(t.now())
	}
	return p
}

// load is Load for callers that write the record back. A backend read error
// is returned so defaults never overwrite a record that could not be read.
func (t *Tracker) load(learner string) (model.AppProgress, error) {
	key := Key(learner)
	data, err := t.kv.Get(key)
	if err != nil {
		return model.AppProgress{}, fmt.Errorf("load progress: %w", err)
	}
	if data == nil {
		return Default(t.now()), nil
	}
	p, err := Decode(data)
	if err != nil {
		slog.Warn("invalid progress data, resetting to defaults", "key", key, "error", err)
		return Default(t.now()), nil
	}
	return p, nil
}

// Save stores p for learner.
func (t *Tracker) Save(learner string, p model.AppProgress) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal progress: %w", err)
	}
	if err := t.kv.Set(Key(learner), data); err != nil {
		slog.Warn("failed to save progress", "learner", learner, "error", err)
		return fmt.Errorf("save progress: %w", err)
	}
	return nil
}

// RecordCompletion counts one finished exercise in moduleID and returns the
// updated record.
func (t *Tracker) RecordCompletion(learner, moduleID string, difficulty model.Difficulty, firstTry bool) (model.AppProgress, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	p, err := t.load(learner)
	if err != nil {
		return p, err
	}
	now := t.now().UTC().Format(time.RFC3339)

	m := p.Modules[moduleID]
	m.ModuleID = moduleID
	m.ExercisesCompleted++
	if firstTry {
		m.ExercisesCorrectFirstTry++
	}
	m.LastDifficulty = difficulty
	m.LastAttemptDate = now

	p.Modules[moduleID] = m
	p.TotalExercisesCompleted++
	p.LastVisitDate = now

	if err := t.Save(learner, p); err != nil {
		return p, err
	}
	return p, nil
}

// Visit updates the last visit date, creating the record if needed.
func (t *Tracker) Visit(learner string) (model.AppProgress, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	p, err := t.load(learner)
	if err != nil {
		return p, err
	}
	p.LastVisitDate = t.now().UTC().Format(time.RFC3339)
	if err := t.Save(learner, p); err != nil {
		return p, err
	}
	return p, nil
}

// Reset deletes the learner's record. The next Load returns defaults.
func (t *Tracker) Reset(learner string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.kv.Delete(Key(learner)); err != nil {
		return fmt.Errorf("reset progress: %w", err)
	}
	return nil
}

// Learners lists every learner with a stored record, sorted.
func (t *Tracker) Learners() ([]string, error) {
	keys, err := t.kv.Keys(StorageKey)
	if err != nil {
		return nil, fmt.Errorf("list progress keys: %w", err)
	}
	var learners []string
	for _, k := range keys {
		if l, ok := LearnerFromKey(k); ok {
			learners = append(learners, l)
		}
	}
	sort.Strings(learners)
	return learners, nil
}

// Decode parses a stored record and checks its shape.
func Decode(data []byte) (model.AppProgress, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return model.AppProgress{}, fmt.Errorf("parse progress: %w", err)
	}
	if err := checkShape(raw); err != nil {
		return model.AppProgress{}, err
	}
	var p model.AppProgress
	if err := json.Unmarshal(data, &p); err != nil {
		return model.AppProgress{}, fmt.Errorf("decode progress: %w", err)
	}
	if p.Modules == nil {
		p.Modules = map[string]model.ModuleProgress{}
	}
	return p, nil
}

func checkShape(raw map[string]any) error {
	if raw == nil {
		return fmt.Errorf("progress is not an object")
	}
	if _, ok := raw["total_exercises_completed"].(float64); !ok {
		return fmt.Errorf("total_exercises_completed must be a number")
	}
	for _, f := range []string{"first_visit_date", "last_visit_date"} {
		if _, ok := raw[f].(string); !ok {
			return fmt.Errorf("%s must be a string", f)
		}
	}
	modules, ok := raw["modules"].(map[string]any)
	if !ok {
		return fmt.Errorf("modules must be an object")
	}
	for id, v := range modules {
		m, ok := v.(map[string]any)
		if !ok {
			return fmt.Errorf("module %q must be an object", id)
		}
		if _, ok := m["module_id"].(string); !ok {
			return fmt.Errorf("module %q: module_id must be a string", id)
		}
		for _, f := range []string{"exercises_completed", "exercises_correct_first_try"} {
			if _, ok := m[f].(float64); !ok {
				return fmt.Errorf("module %q: %s must be a number", id, f)
			}
		}
		for _, f := range []string{"last_difficulty", "last_attempt_date"} {
			if _, ok := m[f].(string); !ok {
				return fmt.Errorf("module %q: %s must be a string", id, f)
			}
		}
	}
	return nil
}

// CompletionPercentage returns completed/total as a rounded percentage capped
// at 100. A missing module or total of zero yields 0.
func CompletionPercentage(m *model.ModuleProgress, total int) int {
	if m == nil || total == 0 {
		return 0
	}
	return min(100, int(math.Round(float64(m.ExercisesCompleted)/float64(total)*100)))
}

// SuccessRate returns the rounded percentage of exercises solved on the first try.
func SuccessRate(m *model.ModuleProgress) int {
	if m == nil || m.ExercisesCompleted == 0 {
		return 0
	}
	return int(math.Round(float64(m.ExercisesCorrectFirstTry) / float64(m.ExercisesCompleted) * 100))
}
