package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RecordsCreatedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "platform_records_created_total",
		Help: "Total number of rows created per resource",
	}, []string{"resource"})

	RecordsDeletedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "platform_records_deleted_total",
		Help: "Total number of rows deleted per resource",
	}, []string{"resource"})

	RequestFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "platform_request_failures_total",
		Help: "Total number of failed resource operations by error kind",
	}, []string{"resource", "kind"})

	OrdersCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "platform_orders_created_total",
		Help: "Total number of orders created",
	})

	OrderItemsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "platform_order_items_created_total",
		Help: "Total number of order line items created",
	})

	OrdersDeletedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "platform_orders_deleted_total",
		Help: "Total number of orders deleted together with their items",
	})

	IdempotentReplaysTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "platform_idempotent_replays_total",
		Help: "Total number of create responses replayed for a repeated Idempotency-Key",
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
