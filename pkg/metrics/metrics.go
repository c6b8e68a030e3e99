package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics 社交核心指标
type Metrics struct {
	EventsPublished     *prometheus.CounterVec
	EventHandlerErrors  *prometheus.CounterVec
	NotificationsSent   *prometheus.CounterVec
	NotificationErrors  *prometheus.CounterVec
	CascadeDeletes      *prometheus.CounterVec
	MediaCleanupErrors  prometheus.Counter
	ReportStatusChanges *prometheus.CounterVec
	HTTPRequests        *prometheus.CounterVec
	HTTPDuration        *prometheus.HistogramVec
}

// New 在指定 Registerer 上注册指标，测试中传入 prometheus.NewRegistry() 避免重复注册
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		EventsPublished: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "social_events_published_total",
				Help: "Total number of domain events published on the event bus",
			},
			[]string{"tag"},
		),
		EventHandlerErrors: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "social_event_handler_errors_total",
				Help: "Total number of event handler failures",
			},
			[]string{"tag"},
		),
		NotificationsSent: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "social_notifications_created_total",
				Help: "Total number of notifications persisted",
			},
			[]string{"type"},
		),
		NotificationErrors: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "social_notification_errors_total",
				Help: "Total number of notifications that could not be persisted or pushed",
			},
			[]string{"stage"},
		),
		CascadeDeletes: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "social_cascade_deletes_total",
				Help: "Total number of cascade deletions",
			},
			[]string{"target", "initiator"},
		),
		MediaCleanupErrors: f.NewCounter(
			prometheus.CounterOpts{
				Name: "social_media_cleanup_errors_total",
				Help: "Total number of failed external media deletions",
			},
		),
		ReportStatusChanges: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "social_report_status_changes_total",
				Help: "Total number of report status updates",
			},
			[]string{"status"},
		),
		HTTPRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}
}

// NewNop 不对外暴露的指标实例
func NewNop() *Metrics {
	return New(prometheus.NewRegistry())
}
