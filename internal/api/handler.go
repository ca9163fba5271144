package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"platform-service/internal/apperror"
	"platform-service/internal/service"
	"platform-service/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// RequestIDHeader carries the per-request correlation id
const RequestIDHeader = "X-Request-ID"

// Pinger reports whether the database answers
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler contains HTTP handlers
type Handler struct {
	resources *service.ResourceService
	orders    *service.OrderService
	db        Pinger
	idem      IdempotencyStore
	idemTTL   time.Duration
	logger    *zap.Logger
}

// NewHandler creates a new HTTP handler. A nil idem disables
// Idempotency-Key replay.
func NewHandler(resources *service.ResourceService, orders *service.OrderService, db Pinger, idem IdempotencyStore, idemTTL time.Duration) *Handler {
	return &Handler{
		resources: resources,
		orders:    orders,
		db:        db,
		idem:      idem,
		idemTTL:   idemTTL,
		logger:    util.GetLogger(),
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(requestIDMiddleware())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/", h.index)
	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	catalog := h.resources.Resources()
	for _, name := range service.Names(catalog) {
		h.registerResource(api, name, name, catalog[name].Writable)
	}
	h.registerResource(api, "menu-items", "menu_items", true)

	api.POST("/orders/create", h.idempotent(), h.createOrder)
	api.DELETE("/orders/:id", h.deleteOrder)
}

func (h *Handler) registerResource(group *gin.RouterGroup, path, name string, writable bool) {
	group.GET("/"+path+"/list", h.listRecords(name))
	if !writable {
		return
	}
	group.POST("/"+path+"/create", h.idempotent(), h.createRecord(name))
	group.DELETE("/"+path+"/:id", h.deleteRecord(name))
}

// index handles the root status request
func (h *Handler) index(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Multi-service platform API",
	})
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck reports ready only while the database answers a ping
func (h *Handler) readinessCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		h.logger.Warn("Readiness check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "unavailable",
			"details": "database unreachable",
			"time":    time.Now().Unix(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// createRecord handles POST /api/{resource}/create
func (h *Handler) createRecord(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body map[string]interface{}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Invalid request body",
				"details": err.Error(),
			})
			return
		}

		created, err := h.resources.Create(c.Request.Context(), name, body)
		if err != nil {
			h.respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "created",
			created.Key: created.ID,
			"data":      created.Fields,
		})
	}
}

// listRecords handles GET /api/{resource}/list
func (h *Handler) listRecords(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		records, err := h.resources.List(c.Request.Context(), name)
		if err != nil {
			h.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, records)
	}
}

// deleteRecord handles DELETE /api/{resource}/:id
func (h *Handler) deleteRecord(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}

		key, err := h.resources.Delete(c.Request.Context(), name, id)
		if err != nil {
			h.respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status": "deleted",
			key:      id,
		})
	}
}

// createOrder handles order creation
func (h *Handler) createOrder(c *gin.Context) {
	var req service.CreateOrderRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	order, _, err := h.orders.CreateOrder(c.Request.Context(), &req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "created",
		"order_id": order.OrderID,
	})
}

// deleteOrder handles order deletion together with its items
func (h *Handler) deleteOrder(c *gin.Context) {
	orderID, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.orders.DeleteOrder(c.Request.Context(), orderID); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "deleted",
		"order_id": orderID,
	})
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid ID",
			"details": "id must be a positive integer",
		})
		return 0, false
	}
	return id, true
}

// respondError maps an error to its HTTP status. Internal failures are
// logged and their details withheld from the client.
func (h *Handler) respondError(c *gin.Context, err error) {
	status := apperror.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("Request failed",
			zap.String("path", c.FullPath()),
			zap.String("request_id", c.GetString(RequestIDHeader)),
			zap.Error(err))
		c.JSON(status, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(status, gin.H{
		"error":   apperror.KindOf(err).String(),
		"details": err.Error(),
	})
}

// requestIDMiddleware propagates or assigns X-Request-ID
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		c.Set(RequestIDHeader, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
