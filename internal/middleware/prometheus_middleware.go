package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HTTPMetrics собирает метрики status API.
//
// Метрики:
// * <ns>_http_request_duration_seconds{method,path,status} — histogram
// * <ns>_http_requests_inflight — gauge
// * <ns>_http_request_errors_total{method,path,status} — counter (4xx/5xx)
type HTTPMetrics struct {
	reqDuration *prometheus.HistogramVec
	reqInflight prometheus.Gauge
	reqErrors   *prometheus.CounterVec
	gatherer    prometheus.Gatherer
}

// NewHTTPMetrics регистрирует метрики в reg; /metrics отдаёт содержимое gatherer
func NewHTTPMetrics(namespace string, reg prometheus.Registerer, gatherer prometheus.Gatherer) *HTTPMetrics {
	hm := &HTTPMetrics{
		reqDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Длительность HTTP-запросов.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}, []string{"method", "path", "status"}),
		reqInflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_inflight",
			Help:      "Текущее количество обрабатываемых HTTP-запросов.",
		}),
		reqErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_request_errors_total",
			Help:      "Запросы, завершившиеся статусом 4xx/5xx.",
		}, []string{"method", "path", "status"}),
		gatherer: gatherer,
	}

	reg.MustRegister(hm.reqDuration, hm.reqInflight, hm.reqErrors)
	return hm
}

// Handler возвращает middleware для router.Use()
func (hm *HTTPMetrics) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		hm.reqInflight.Inc()
		defer hm.reqInflight.Dec()

		c.Next()

		status := c.Writer.Status()
		labels := []string{c.Request.Method, routePath(c), strconv.Itoa(status)}
		hm.reqDuration.WithLabelValues(labels...).Observe(time.Since(start).Seconds())
		if status >= 400 {
			hm.reqErrors.WithLabelValues(labels...).Inc()
		}
	}
}

// RegisterMetricsEndpoint добавляет GET /metrics
func (hm *HTTPMetrics) RegisterMetricsEndpoint(r gin.IRoutes) {
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(hm.gatherer, promhttp.HandlerOpts{})))
}

// routePath возвращает шаблон маршрута, чтобы /api/chunks/:x/:y не плодил метки
func routePath(c *gin.Context) string {
	if p := c.FullPath(); p != "" {
		return p
	}
	return "unmatched"
}
