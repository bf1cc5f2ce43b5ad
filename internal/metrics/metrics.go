package metrics

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPリクエスト数
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// 永続化できた注文数
	OrdersPlaced = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "orders_placed_total",
			Help: "Total number of orders persisted",
		},
	)

	// transport: local / broker
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "order_events_published_total",
			Help: "Order events handed to a transport",
		},
		[]string{"transport"},
	)

	// reason: no_subscribers / buffer_full / relay_queue_full / broker_error
	EventsDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "order_events_dropped_total",
			Help: "Order events that were not delivered",
		},
		[]string{"reason"},
	)

	AdminSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "admin_sessions_connected",
			Help: "Admin notification sessions currently subscribed",
		},
	)

	// 0=closed, 1=open, 2=half-open
	RelayBreakerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "order_relay_breaker_state",
			Help: "Circuit breaker state of the order event relay (0=closed, 1=open, 2=half-open)",
		},
	)
)

const (
	DropNoSubscribers = "no_subscribers"
	DropBufferFull    = "buffer_full"
	DropRelayQueue    = "relay_queue_full"
	DropBrokerError   = "broker_error"
)

// echo用の計測ミドルウェア
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				// ステータスを確定させる
				c.Error(err)
			}

			// ルート未登録のときは生のパスを使わない
			path := c.Path()
			if path == "" {
				path = "unmatched"
			}

			RequestsTotal.WithLabelValues(
				c.Request().Method,
				path,
				strconv.Itoa(c.Response().Status),
			).Inc()

			RequestDuration.WithLabelValues(
				c.Request().Method,
				path,
			).Observe(time.Since(start).Seconds())

			return nil
		}
	}
}
