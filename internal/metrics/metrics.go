// Package metrics holds the Prometheus collectors of the parabola service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "parabola"

var (
	// ExercisesGenerated counts generated exercises.
	// Labels: topic, difficulty
	ExercisesGenerated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "exercises",
		Name:      "generated_total",
		Help:      "Total exercises generated",
	}, []string{"topic", "difficulty"})

	// AnswersChecked counts submitted blank answers by resulting state.
	// Labels: topic, state
	AnswersChecked = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "answers",
		Name:      "checked_total",
		Help:      "Total answers checked by result state",
	}, []string{"topic", "state"})

	// Completions counts finished attempts.
	// Labels: topic, first_try (true, false)
	Completions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "exercises",
		Name:      "completed_total",
		Help:      "Total exercises completed",
	}, []string{"topic", "first_try"})

	// ActiveAttempts is the number of attempts held in memory.
	ActiveAttempts = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "attempts",
		Name:      "active",
		Help:      "Attempts currently held in memory",
	})

	// TutorRequests counts explanation requests.
	// Labels: status (ok, error, rate_limited, disabled)
	TutorRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "tutor",
		Name:      "requests_total",
		Help:      "Total tutor explanation requests",
	}, []string{"status"})

	// TutorLatency measures successful and failed LLM round trips.
	TutorLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "tutor",
		Name:      "latency_seconds",
		Help:      "Tutor LLM call latency in seconds",
		Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30},
	})
)

// RecordGenerated counts one generated exercise.
func RecordGenerated(topic, difficulty string) {
	ExercisesGenerated.WithLabelValues(topic, difficulty).Inc()
}

// RecordAnswer counts one checked answer.
func RecordAnswer(topic, state string) {
	AnswersChecked.WithLabelValues(topic, state).Inc()
}

// RecordCompletion counts one finished exercise.
func RecordCompletion(topic string, firstTry bool) {
	label := "false"
	if firstTry {
		label = "true"
	}
	Completions.WithLabelValues(topic, label).Inc()
}

// RecordTutor counts one tutor request and, when it reached the LLM, its latency.
func RecordTutor(status string, elapsed time.Duration) {
	TutorRequests.WithLabelValues(status).Inc()
	if elapsed > 0 {
		TutorLatency.Observe(elapsed.Seconds())
	}
}
