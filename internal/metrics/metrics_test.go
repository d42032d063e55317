package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCounters(t *testing.T) {
	before := testutil.ToFloat64(ExercisesGenerated.WithLabelValues("shift", "easy"))
	RecordGenerated("shift", "easy")
	RecordGenerated("shift", "easy")
	if got := testutil.ToFloat64(ExercisesGenerated.WithLabelValues("shift", "easy")); got != before+2 {
		t.Errorf("generated = %v, want %v", got, before+2)
	}

	RecordAnswer("shift", "correct")
	if got := testutil.ToFloat64(AnswersChecked.WithLabelValues("shift", "correct")); got < 1 {
		t.Errorf("answers = %v, want >= 1", got)
	}

	RecordCompletion("reflect", true)
	RecordCompletion("reflect", false)
	if got := testutil.ToFloat64(Completions.WithLabelValues("reflect", "true")); got < 1 {
		t.Errorf("first-try completions = %v", got)
	}
	if got := testutil.ToFloat64(Completions.WithLabelValues("reflect", "false")); got < 1 {
		t.Errorf("other completions = %v", got)
	}
}

func TestRecordTutor(t *testing.T) {
	RecordTutor("rate_limited", 0)
	RecordTutor("ok", 300*time.Millisecond)
	if got := testutil.ToFloat64(TutorRequests.WithLabelValues("rate_limited")); got < 1 {
		t.Errorf("rate limited = %v", got)
	}
	if got := testutil.CollectAndCount(TutorLatency); got != 1 {
		t.Errorf("histogram series = %d, want 1", got)
	}
}
