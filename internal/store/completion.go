package store

import (
	"time"

	"github.com/pavelanni/parabola/internal/model"
)

// InsertCompletion appends a finished exercise to the history.
func (s *Store) InsertCompletion(c model.Completion) (int64, error) {
	completedAt := c.CompletedAt
	if completedAt.IsZero() {
		completedAt = time.Now()
	}
	res, err := s.db.Exec(
		`INSERT INTO completions (learner, topic, exercise_id, difficulty, seed, first_try, submissions, completed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.Learner, c.Topic, c.ExerciseID, c.Difficulty, c.Seed, c.FirstTry, c.Submissions, completedAt.UTC(),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ListCompletions returns a learner's history, oldest first.
func (s *Store) ListCompletions(learner string) ([]model.Completion, error) {
	return s.queryCompletions(
		`SELECT id, learner, topic, exercise_id, difficulty, seed, first_try, submissions, completed_at
		 FROM completions WHERE learner = ? ORDER BY id`, learner,
	)
}

// ListAllCompletions returns the whole history ordered by learner, then time.
func (s *Store) ListAllCompletions() ([]model.Completion, error) {
	return s.queryCompletions(
		`SELECT id, learner, topic, exercise_id, difficulty, seed, first_try, submissions, completed_at
		 FROM completions ORDER BY learner, id`,
	)
}

// DeleteCompletions removes a learner's history.
func (s *Store) DeleteCompletions(learner string) error {
	_, err := s.db.Exec(`DELETE FROM completions WHERE learner = ?`, learner)
	return err
}

// CompletionCount returns the number of recorded completions.
func (s *Store) CompletionCount() (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM completions`).Scan(&count)
	return count, err
}

func (s *Store) queryCompletions(query string, args ...any) ([]model.Completion, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var completions []model.Completion
	for rows.Next() {
		var c model.Completion
		if err := rows.Scan(&c.ID, &c.Learner, &c.Topic, &c.ExerciseID, &c.Difficulty, &c.Seed, &c.FirstTry, &c.Submissions, &c.CompletedAt); err != nil {
			return nil, err
		}
		completions = append(completions, c)
	}
	return completions, rows.Err()
}
