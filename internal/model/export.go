package model

// ProgressExport is the top-level structure for progress export.
type ProgressExport struct {
	GeneratedAt string          `json:"generated_at" yaml:"generated_at"`
	Backend     string          `json:"backend" yaml:"backend"`
	Learners    []LearnerExport `json:"learners" yaml:"learners"`
}

// LearnerExport holds one learner's progress record and completion history.
type LearnerExport struct {
	Learner     string       `json:"learner" yaml:"learner"`
	Progress    AppProgress  `json:"progress" yaml:"progress"`
	Completions []Completion `json:"completions" yaml:"completions"`
}
