package api

import (
	"bytes"
	"context"
	"net/http"
	"time"

	"platform-service/internal/redisclient"
	"platform-service/internal/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	// IdempotencyKeyHeader names the client-chosen key for a create request
	IdempotencyKeyHeader = "Idempotency-Key"
	// ReplayHeader marks a response served from the idempotency store
	ReplayHeader = "Idempotent-Replay"

	// inFlightTTL bounds how long a crashed request can hold its key
	inFlightTTL = 30 * time.Second
)

// IdempotencyStore keeps create responses for replay
type IdempotencyStore interface {
	SaveResponse(ctx context.Context, key string, resp redisclient.StoredResponse, ttl time.Duration) (bool, error)
	LoadResponse(ctx context.Context, key string) (*redisclient.StoredResponse, bool, error)
	AcquireLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, key string) error
}

// bodyRecorder copies everything written to the client
type bodyRecorder struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *bodyRecorder) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *bodyRecorder) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// idempotent replays the first successful response stored for a request's
// Idempotency-Key. While a request holds the key, others carrying it get
// 409 Conflict. Requests without the header, or with the store
// unavailable, go straight through.
func (h *Handler) idempotent() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader(IdempotencyKeyHeader)
		if h.idem == nil || header == "" {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		key := c.Request.Method + " " + c.FullPath() + " " + header

		if h.replay(c, key, header) {
			return
		}

		locked, err := h.idem.AcquireLock(ctx, key, inFlightTTL)
		if err != nil {
			h.logger.Warn("Failed to lock idempotency key", zap.String("key", header), zap.Error(err))
		} else if !locked {
			// the holder may have finished between the two lookups
			if h.replay(c, key, header) {
				return
			}
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{
				"error":   "conflict",
				"details": "a request with this Idempotency-Key is still in progress",
			})
			return
		} else {
			defer func() {
				if err := h.idem.ReleaseLock(context.Background(), key); err != nil {
					h.logger.Warn("Failed to release idempotency key", zap.String("key", header), zap.Error(err))
				}
			}()
		}

		recorder := &bodyRecorder{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
		c.Writer = recorder

		c.Next()

		status := recorder.Status()
		if status < 200 || status >= 300 {
			return
		}

		resp := redisclient.StoredResponse{Status: status, Body: recorder.body.Bytes()}
		if _, err := h.idem.SaveResponse(ctx, key, resp, h.idemTTL); err != nil {
			h.logger.Warn("Failed to store idempotent response", zap.String("key", header), zap.Error(err))
		}
	}
}

// replay writes the stored response for key, if there is one
func (h *Handler) replay(c *gin.Context, key, header string) bool {
	stored, found, err := h.idem.LoadResponse(c.Request.Context(), key)
	if err != nil {
		h.logger.Warn("Failed to load idempotent response", zap.String("key", header), zap.Error(err))
		return false
	}
	if !found {
		return false
	}

	util.IdempotentReplaysTotal.Inc()
	c.Header(ReplayHeader, "true")
	c.Data(stored.Status, "application/json; charset=utf-8", stored.Body)
	c.Abort()
	return true
}
