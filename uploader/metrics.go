package uploader

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/moyoez/deeddesk-go/types"
)

// Metrics are the Prometheus collectors of one manager. A nil *Metrics records nothing.
type Metrics struct {
	submitsTotal   *prometheus.CounterVec
	submitDuration prometheus.Histogram
	bytesSent      prometheus.Counter
	liveHandles    prometheus.Gauge
	selectedFiles  prometheus.Gauge
}

// NewMetrics registers the collectors on reg (prometheus.DefaultRegisterer when nil).
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		submitsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "deeddesk",
			Name:      "submits_total",
			Help:      "Submit triggers by outcome and failure reason",
		}, []string{"outcome", "reason"}),
		submitDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "deeddesk",
			Name:      "submit_duration_seconds",
			Help:      "Time from issuing the upload request to its settlement",
			Buckets:   []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300},
		}),
		bytesSent: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "deeddesk",
			Name:      "upload_bytes_sent_total",
			Help:      "File content bytes written into multipart request bodies",
		}),
		liveHandles: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "deeddesk",
			Name:      "preview_handles_live",
			Help:      "Preview handles currently owned by the preview deriver",
		}),
		selectedFiles: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "deeddesk",
			Name:      "selected_files",
			Help:      "Files currently in the selection",
		}),
	}
}

func (m *Metrics) observeRejected(reason types.FailureReason) {
	if m == nil {
		return
	}
	m.submitsTotal.WithLabelValues("rejected", string(reason)).Inc()
}

func (m *Metrics) observeSettled(phase types.SubmitPhase, reason types.FailureReason, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.submitsTotal.WithLabelValues(string(phase), string(reason)).Inc()
	m.submitDuration.Observe(elapsed.Seconds())
}

// AddBytes counts file bytes written to a request body. It fits transfer.Client.OnBytes.
func (m *Metrics) AddBytes(n int) {
	if m == nil {
		return
	}
	m.bytesSent.Add(float64(n))
}

func (m *Metrics) setLive(n int) {
	if m == nil {
		return
	}
	m.liveHandles.Set(float64(n))
}

func (m *Metrics) setSelected(n int) {
	if m == nil {
		return
	}
	m.selectedFiles.Set(float64(n))
}
