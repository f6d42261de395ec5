// Package metrics exposes Prometheus instruments for the evaluation flow.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mind-engage/edueval/internal/exam"
)

type Metrics struct {
	reg *prometheus.Registry

	sessionsStarted    *prometheus.CounterVec
	answers            *prometheus.CounterVec
	sessionsCompleted  *prometheus.CounterVec
	sessionDuration    prometheus.Histogram
	scorePercentage    prometheus.Histogram
	questionsGenerated prometheus.Counter
	insufficientText   prometheus.Counter
	documents          *prometheus.CounterVec
}

// New registers every instrument on a private registry, so tests can build
// as many as they like.
func New() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		sessionsStarted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "edueval",
			Name:      "sessions_started_total",
			Help:      "Sessions started, by evaluation.",
		}, []string{"evaluation"}),
		answers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "edueval",
			Name:      "answers_total",
			Help:      "Answers recorded, by correctness.",
		}, []string{"correct"}),
		sessionsCompleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "edueval",
			Name:      "sessions_completed_total",
			Help:      "Sessions completed and scored, by evaluation.",
		}, []string{"evaluation"}),
		sessionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "edueval",
			Name:      "session_duration_seconds",
			Help:      "Wall time from start to the last answer.",
			Buckets:   []float64{30, 60, 120, 300, 600, 1200, 2400},
		}),
		scorePercentage: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "edueval",
			Name:      "score_percentage",
			Help:      "Distribution of result percentages.",
			Buckets:   prometheus.LinearBuckets(10, 10, 10),
		}),
		questionsGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "edueval",
			Name:      "questions_generated_total",
			Help:      "Questions produced by the generator.",
		}),
		insufficientText: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "edueval",
			Name:      "generation_insufficient_material_total",
			Help:      "Generation requests with fewer than two concepts.",
		}),
		documents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "edueval",
			Name:      "documents_processed_total",
			Help:      "Uploaded documents, by outcome.",
		}, []string{"outcome"}),
	}
	m.reg.MustRegister(
		m.sessionsStarted, m.answers, m.sessionsCompleted,
		m.sessionDuration, m.scorePercentage,
		m.questionsGenerated, m.insufficientText, m.documents,
		collectors.NewGoCollector(),
	)
	return m
}

func (m *Metrics) SessionStarted(evaluation string) {
	m.sessionsStarted.WithLabelValues(evaluation).Inc()
}

func (m *Metrics) AnswerRecorded(correct bool) {
	label := "false"
	if correct {
		label = "true"
	}
	m.answers.WithLabelValues(label).Inc()
}

func (m *Metrics) SessionCompleted(r exam.Result, elapsed time.Duration) {
	m.sessionsCompleted.WithLabelValues(r.EvaluationName).Inc()
	m.sessionDuration.Observe(elapsed.Seconds())
	m.scorePercentage.Observe(r.Percentage)
}

// QuestionsGenerated records one generation request; n == 0 counts as
// insufficient material.
func (m *Metrics) QuestionsGenerated(n int) {
	if n == 0 {
		m.insufficientText.Inc()
		return
	}
	m.questionsGenerated.Add(float64(n))
}

// DocumentProcessed records an upload outcome ("ok", "no_text", "error").
func (m *Metrics) DocumentProcessed(outcome string) {
	m.documents.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}
