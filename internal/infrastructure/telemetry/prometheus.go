package telemetry

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/school/backend/internal/domain/faculty"
	"github.com/school/backend/internal/domain/shared"
	"go.uber.org/zap"
)

const metricsNamespace = "school"

// NewRegistry returns a Prometheus registry with the Go runtime and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// TeacherStatsSource supplies teacher counts at scrape time
type TeacherStatsSource interface {
	Stats(ctx context.Context) (faculty.TeacherStats, error)
}

// TeacherPopulationCollector exports teacher counts on every scrape.
// Reads go through the stats service and so hit its cache.
type TeacherPopulationCollector struct {
	source  TeacherStatsSource
	timeout time.Duration
	logger  *zap.Logger
	desc    *prometheus.Desc
}

// NewTeacherPopulationCollector creates the collector
func NewTeacherPopulationCollector(source TeacherStatsSource, logger *zap.Logger) *TeacherPopulationCollector {
	return &TeacherPopulationCollector{
		source:  source,
		timeout: 2 * time.Second,
		logger:  logger,
		desc: prometheus.NewDesc(
			prometheus.BuildFQName(metricsNamespace, "teachers", "count"),
			"Non-deleted teachers by employment status",
			[]string{"status"}, nil,
		),
	}
}

// Describe implements prometheus.Collector
func (c *TeacherPopulationCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.desc
}

// Collect implements prometheus.Collector. A failed read emits nothing.
func (c *TeacherPopulationCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()
	stats, err := c.source.Stats(ctx)
	if err != nil {
		c.logger.Warn("Failed to collect teacher stats", zap.Error(err))
		return
	}
	ch <- prometheus.MustNewConstMetric(c.desc, prometheus.GaugeValue, float64(stats.Total), "total")
	ch <- prometheus.MustNewConstMetric(c.desc, prometheus.GaugeValue, float64(stats.Active), "active")
	ch <- prometheus.MustNewConstMetric(c.desc, prometheus.GaugeValue, float64(stats.Inactive), "inactive")
}

// DomainEventCounter counts published domain events by type.
// Subscribed to the event bus as a wildcard handler.
type DomainEventCounter struct {
	counter *prometheus.CounterVec
}

// NewDomainEventCounter creates the counter and registers it on reg
func NewDomainEventCounter(reg prometheus.Registerer) (*DomainEventCounter, error) {
	counter := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "domain_events_total",
		Help:      "Domain events published, by event type",
	}, []string{"event_type"})
	if err := reg.Register(counter); err != nil {
		return nil, err
	}
	return &DomainEventCounter{counter: counter}, nil
}

// Handle implements shared.EventHandler
func (c *DomainEventCounter) Handle(_ context.Context, event shared.DomainEvent) error {
	c.counter.WithLabelValues(event.EventType()).Inc()
	return nil
}

// EventTypes returns nil so every event is counted
func (c *DomainEventCounter) EventTypes() []string {
	return nil
}

var _ shared.EventHandler = (*DomainEventCounter)(nil)
