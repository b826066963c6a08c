package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	OTPSentTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "otp_sent_total",
			Help: "One-time passcodes issued, by delivery result.",
		},
		[]string{"result"},
	)

	LoginsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "logins_total",
			Help: "Successful and failed logins by method.",
		},
		[]string{"method", "result"},
	)

	OpinionsCreatedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "opinions_created_total",
		Help: "Opinions created.",
	})

	CommentsCreatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "comments_created_total",
			Help: "Comments created, by depth and anonymity.",
		},
		[]string{"depth", "anonymous"},
	)
)

var registerOnce sync.Once

// MustRegister 注册到默认 registry，多次调用只生效一次
func MustRegister() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			HTTPRequestsTotal,
			HTTPRequestDurationSeconds,
			OTPSentTotal,
			LoginsTotal,
			OpinionsCreatedTotal,
			CommentsCreatedTotal,
		)
	})
}
