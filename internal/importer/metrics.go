package importer

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics 导入过程的 prometheus 指标
type Metrics struct {
	files    *prometheus.CounterVec
	facts    *prometheus.CounterVec
	duration prometheus.Histogram
}

// NewMetrics 在指定 Registerer 上注册指标；reg 为 nil 时不注册（仅本地计数）
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		files: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "costetl",
			Subsystem: "import",
			Name:      "files_total",
			Help:      "Processed spreadsheet files by final status.",
		}, []string{"status"}),
		facts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "costetl",
			Subsystem: "import",
			Name:      "facts_total",
			Help:      "Cost facts handed to the store by load result.",
		}, []string{"result"}),
		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "costetl",
			Subsystem: "import",
			Name:      "file_duration_seconds",
			Help:      "Time spent processing one spreadsheet file.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		}),
	}
}

func (m *Metrics) observeFile(status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.files.WithLabelValues(status).Inc()
	m.duration.Observe(elapsed.Seconds())
}

func (m *Metrics) observeFacts(loaded, skipped, errors int) {
	if m == nil {
		return
	}
	m.facts.WithLabelValues("loaded").Add(float64(loaded))
	m.facts.WithLabelValues("skipped").Add(float64(skipped))
	m.facts.WithLabelValues("error").Add(float64(errors))
}
