package analysis

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics - Prometheus-метрики анализа и маркеров.
// Nil-значение допустимо: все методы становятся no-op.
type Metrics struct {
	duration   prometheus.Histogram
	bricks     prometheus.Gauge
	chunks     prometheus.Gauge
	overloaded prometheus.Gauge
	unknown    prometheus.Counter
	markers    prometheus.Gauge
	runs       prometheus.Counter
}

// NewMetrics создаёт метрики и регистрирует их в reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "chunks",
			Name:      "analyze_duration_seconds",
			Help:      "Длительность анализа сохранения.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		bricks: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "chunks",
			Name:      "analyzed_bricks",
			Help:      "Число кирпичей в последнем анализе.",
		}),
		chunks: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "chunks",
			Name:      "analyzed_chunks",
			Help:      "Число непустых чанков в последнем анализе.",
		}),
		overloaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "chunks",
			Name:      "overloaded_chunks",
			Help:      "Число чанков, превысивших лимит коллайдеров.",
		}),
		unknown: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "chunks",
			Name:      "unknown_shape_bricks_total",
			Help:      "Кирпичи с неизвестной формой, учтённые с весом по умолчанию.",
		}),
		markers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "chunks",
			Name:      "markers_placed",
			Help:      "Число маркеров, размещённых в мире в данный момент.",
		}),
		runs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "chunks",
			Name:      "analyze_runs_total",
			Help:      "Общее число выполненных анализов.",
		}),
	}

	reg.MustRegister(m.duration, m.bricks, m.chunks, m.overloaded, m.unknown, m.markers, m.runs)
	return m
}

// ObserveAnalysis фиксирует результат анализа
func (m *Metrics) ObserveAnalysis(r *Result, took time.Duration, limit uint64) {
	if m == nil {
		return
	}
	m.runs.Inc()
	m.duration.Observe(took.Seconds())
	m.bricks.Set(float64(r.TotalBricks))
	m.chunks.Set(float64(len(r.Chunks)))
	m.overloaded.Set(float64(len(r.Over(limit))))

	unknown := 0
	for _, n := range r.UnknownShapes {
		unknown += n
	}
	m.unknown.Add(float64(unknown))
}

// SetMarkers обновляет число размещённых маркеров
func (m *Metrics) SetMarkers(n int) {
	if m == nil {
		return
	}
	m.markers.Set(float64(n))
}
