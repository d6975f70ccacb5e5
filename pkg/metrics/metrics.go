package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcomes of an optimistic setting write.
const (
	OutcomeCommitted  = "committed"
	OutcomeRolledBack = "rolled_back"
	OutcomeRejected   = "rejected"
)

// Metrics owns a private registry so tests can build as many as they need.
type Metrics struct {
	reg      *prometheus.Registry
	requests *prometheus.HistogramVec
	settings *prometheus.CounterVec
	imports  *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		requests: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "nodalcv",
			Name:      "http_request_duration_seconds",
			Help:      "Time spent serving HTTP requests",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		settings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nodalcv",
			Name:      "setting_writes_total",
			Help:      "Optimistic setting writes by field and outcome",
		}, []string{"field", "outcome"}),
		imports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nodalcv",
			Name:      "cv_imports_total",
			Help:      "Résumé imports by status",
		}, []string{"status"}),
	}
	m.reg.MustRegister(m.requests, m.settings, m.imports, prometheus.NewGoCollector())
	return m
}

// Middleware observes every request under its route pattern, so path
// parameters such as slugs do not explode the label set.
func (m *Metrics) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		status := c.Response().StatusCode()
		if fe, ok := err.(*fiber.Error); ok {
			status = fe.Code
		}
		m.requests.WithLabelValues(c.Method(), c.Route().Path, strconv.Itoa(status)).
			Observe(time.Since(start).Seconds())
		return err
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{}))
}

func (m *Metrics) SettingWrite(field, outcome string) {
	m.settings.WithLabelValues(field, outcome).Inc()
}

func (m *Metrics) Import(ok bool) {
	status := "ok"
	if !ok {
		status = "failed"
	}
	m.imports.WithLabelValues(status).Inc()
}
