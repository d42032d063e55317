package store

import (
	"fmt"
	"sort"

	"github.com/pavelanni/parabola/internal/model"
)

// ProgressSource supplies the stored progress records.
type ProgressSource interface {
	Learners() ([]string, error)
	Load(learner string) model.AppProgress
}

// ExportProgress builds an export of every learner that has either a progress
// record or completion history.
func (s *Store) ExportProgress(src ProgressSource) ([]model.LearnerExport, error) {
	all, err := s.ListAllCompletions()
	if err != nil {
		return nil, fmt.Errorf("list completions: %w", err)
	}

	byLearner := make(map[string][]model.Completion)
	for _, c := range all {
		byLearner[c.Learner] = append(byLearner[c.Learner], c)
	}

	learners, err := src.Learners()
	if err != nil {
		return nil, fmt.Errorf("list learners: %w", err)
	}
	seen := make(map[string]bool, len(learners))
	for _, l := range learners {
		seen[l] = true
	}
	for l := range byLearner {
		if !seen[l] {
			learners = append(learners, l)
			seen[l] = true
		}
	}
	sort.Strings(learners)

	results := make([]model.LearnerExport, 0, len(learners))
	for _, l := range learners {
		completions := byLearner[l]
		if completions == nil {
			completions = []model.Completion{}
		}
		results = append(results, model.LearnerExport{
			Learner:     l,
			Progress:    src.Load(l),
			Completions: completions,
		})
	}
	return results, nil
}
