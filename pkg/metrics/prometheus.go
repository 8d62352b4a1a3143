package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Outcome labels for gate runs.
const (
	OutcomePass       = "pass"
	OutcomeRegression = "regression"
	OutcomeError      = "error"
)

// Manager owns the gate metrics and the registry they live in.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      map[string]string
	registry         *prometheus.Registry

	runs             *prometheus.CounterVec
	score            prometheus.Gauge
	baseline         prometheus.Gauge
	historyRecords   prometheus.Gauge
	trainingDuration prometheus.Histogram
	trainRows        prometheus.Gauge
	testRows         prometheus.Gauge
	lastRunUnix      prometheus.Gauge
	commits          prometheus.Counter
}

// NewManager creates a metrics manager backed by its own registry, so the
// exported file holds only gate metrics and no Go runtime collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "modelgate",
		subsystem:        "gate",
		histogramBuckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
		constLabels:      map[string]string{},
		registry:         prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.runs = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "runs_total",
		Help:        "Gate runs by outcome (pass, regression, error)",
		ConstLabels: m.constLabels,
	}, []string{"outcome"})

	m.score = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "score",
		Help:        "Accuracy of the most recently evaluated model",
		ConstLabels: m.constLabels,
	})

	m.baseline = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "baseline_score",
		Help:        "Score of the last recorded model version",
		ConstLabels: m.constLabels,
	})

	m.historyRecords = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "history_records",
		Help:        "Number of records in the score history",
		ConstLabels: m.constLabels,
	})

	m.trainingDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "training_duration_seconds",
		Help:        "Wall time spent loading data and training",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	})

	m.trainRows = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "train_rows",
		Help:        "Rows in the training partition",
		ConstLabels: m.constLabels,
	})

	m.testRows = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "test_rows",
		Help:        "Rows in the held-out test partition",
		ConstLabels: m.constLabels,
	})

	m.lastRunUnix = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "last_run_timestamp_seconds",
		Help:        "Unix time the last gate run finished",
		ConstLabels: m.constLabels,
	})

	m.commits = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "history_commits_total",
		Help:        "Score records appended to the history",
		ConstLabels: m.constLabels,
	})
}

// RecordRun counts a finished run and stamps its completion time.
func (m *Manager) RecordRun(outcome string) {
	m.runs.WithLabelValues(outcome).Inc()
	m.lastRunUnix.SetToCurrentTime()
}

// SetScore records the evaluated score.
func (m *Manager) SetScore(score float64) { m.score.Set(score) }

// SetBaseline records the baseline score.
func (m *Manager) SetBaseline(score float64) { m.baseline.Set(score) }

// SetHistoryRecords records the history length.
func (m *Manager) SetHistoryRecords(n int) { m.historyRecords.Set(float64(n)) }

// ObserveTraining records training wall time and partition sizes.
func (m *Manager) ObserveTraining(d time.Duration, trainRows, testRows int) {
	m.trainingDuration.Observe(d.Seconds())
	m.trainRows.Set(float64(trainRows))
	m.testRows.Set(float64(testRows))
}

// RecordCommit counts an appended history record.
func (m *Manager) RecordCommit() { m.commits.Inc() }

// Registry returns the registry holding the gate metrics.
func (m *Manager) Registry() *prometheus.Registry { return m.registry }

// WriteTextfile writes all metrics to path in the text exposition format,
// suitable for the node-exporter textfile collector.
func (m *Manager) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrExportFailed, path, err)
	}
	return nil
}

// Push sends all metrics to a Pushgateway under job, grouped by the given
// label pairs.
func (m *Manager) Push(ctx context.Context, url, job string, grouping map[string]string) error {
	p := push.New(url, job).Gatherer(m.registry)
	for k, v := range grouping {
		p = p.Grouping(k, v)
	}
	if err := p.PushContext(ctx); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrPushFailed, url, err)
	}
	return nil
}
