package http

import (
	"net/http"

	"github.com/GriffinCanCode/AgentOS/streamtrace/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/streamtrace/internal/replay"
	"github.com/GriffinCanCode/AgentOS/streamtrace/internal/stream"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// maxReplayBytes bounds the replay body before and after decompression
const maxReplayBytes = 32 << 20

// Handlers contains all HTTP handlers
type Handlers struct {
	service string
	spans   replay.SpanFactory
	runner  *replay.Runner
	metrics *monitoring.Metrics
	logger  *zap.Logger
	maxBody int64
}

// NewHandlers creates a new handler set. metrics may be nil.
func NewHandlers(service string, spans replay.SpanFactory, metrics *monitoring.Metrics, logger *zap.Logger) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}

	var observer stream.Observer
	if metrics != nil {
		observer = metrics
	}

	return &Handlers{
		service: service,
		spans:   spans,
		runner:  replay.NewRunner(logger, observer),
		metrics: metrics,
		logger:  logger,
		maxBody: maxReplayBytes,
	}
}

// Health handles detailed health check
func (h *Handlers) Health(c *gin.Context) {
	resp := gin.H{
		"status":  "healthy",
		"service": h.service,
	}
	if h.metrics != nil {
		resp["streams"] = h.metrics.Snapshot()
	}
	c.JSON(http.StatusOK, resp)
}

// Stats returns the stream counters
func (h *Handlers) Stats(c *gin.Context) {
	if h.metrics == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "metrics disabled"})
		return
	}
	c.JSON(http.StatusOK, h.metrics.Snapshot())
}
