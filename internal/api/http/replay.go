package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/GriffinCanCode/AgentOS/streamtrace/internal/replay"
	"github.com/GriffinCanCode/AgentOS/streamtrace/internal/shared/types"
	"github.com/GriffinCanCode/AgentOS/streamtrace/internal/source"
	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/gzip"
	"go.uber.org/zap"
)

// Replay runs the request body through an instrumented stream proxy and
// reports the finalized span. A stream that fails mid-way is answered with
// 422 and the same body shape, or 413 when the body exceeded its cap.
func (h *Handlers) Replay(c *gin.Context) {
	mode, err := replay.ParseMode(c.Query("mode"))
	if err != nil {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{Error: err.Error()})
		return
	}

	body, err := h.replayBody(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{Error: err.Error()})
		return
	}

	span, traceID, ctx := h.spans(c.Request.Context(), "chat.stream")
	result := h.runner.Run(ctx, mode, source.NewSSE(body), span)
	resp := result.Response(traceID)

	if result.Err != nil {
		h.logger.Warn("Replay failed",
			zap.String("trace_id", traceID),
			zap.Error(result.Err),
		)
		_ = c.Error(result.Err)
		var tooLarge *http.MaxBytesError
		if errors.As(result.Err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, resp)
			return
		}
		c.JSON(http.StatusUnprocessableEntity, resp)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// replayBody returns the request body, decompressed when gzip encoded.
// Both the wire bytes and the decompressed bytes are capped at maxBody, and
// crossing either cap fails the read with *http.MaxBytesError.
func (h *Handlers) replayBody(c *gin.Context) (io.ReadCloser, error) {
	body := http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBody)
	if c.GetHeader("Content-Encoding") != "gzip" {
		return body, nil
	}

	zr, err := gzip.NewReader(body)
	if err != nil {
		return nil, fmt.Errorf("invalid gzip body: %w", err)
	}
	return http.MaxBytesReader(c.Writer, zr, h.maxBody), nil
}
