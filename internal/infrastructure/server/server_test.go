package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/AgentOS/streamtrace/internal/config"
	"github.com/GriffinCanCode/AgentOS/streamtrace/internal/infrastructure/logging"
	"github.com/GriffinCanCode/AgentOS/streamtrace/internal/shared/types"
)

const capture = `data: {"id":"c1","model":"mistral-small","choices":[{"index":0,"delta":{"role":"assistant","content":"Hi"},"finish_reason":null}]}

data: {"id":"c1","model":"mistral-small","choices":[{"index":0,"delta":{},"finish_reason":"stop"}]}

data: [DONE]
`

func newTestServer(t *testing.T, mutate func(*config.Config)) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Default()
	cfg.Logging.Development = true
	if mutate != nil {
		mutate(cfg)
	}

	srv, err := NewServer(cfg, logging.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = srv.Close(context.Background()) })
	return srv
}

func do(t *testing.T, srv *Server, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

func decodeReplay(t *testing.T, w *httptest.ResponseRecorder) types.ReplayResponse {
	t.Helper()
	var resp types.ReplayResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestNewServerRejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Tracing.Exporter = "jaeger"

	_, err := NewServer(cfg, logging.NewNop())
	assert.Error(t, err)
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, nil)

	w := do(t, srv, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"healthy"`)
	assert.Contains(t, w.Body.String(), `"streams"`)
}

func TestReplay(t *testing.T) {
	tests := []struct {
		name  string
		query string
		mode  types.ReplayMode
	}{
		{"default mode", "", types.ReplaySync},
		{"sync", "?mode=sync", types.ReplaySync},
		{"async", "?mode=async", types.ReplayAsync},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, nil)

			w := do(t, srv, httptest.NewRequest(http.MethodPost, "/v1/replay"+tt.query, strings.NewReader(capture)))
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())

			resp := decodeReplay(t, w)
			assert.Equal(t, tt.mode, resp.Mode)
			assert.Equal(t, 2, resp.Chunks)
			assert.Equal(t, "ok", resp.Status)
			assert.NotEmpty(t, resp.TraceID)
			assert.Equal(t, w.Header().Get("X-Trace-ID"), resp.TraceID)
			assert.Equal(t, "mistral-small", resp.Attributes["llm.model_name"])
			assert.Equal(t, "Hi", resp.ExtraAttributes["llm.output_messages.0.message.content"])

			stats := srv.Metrics().Snapshot()
			assert.Equal(t, int64(1), stats.StreamsStarted)
			assert.Equal(t, int64(2), stats.Chunks)
		})
	}
}

func TestReplayGzip(t *testing.T) {
	srv := newTestServer(t, nil)

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := io.WriteString(zw, capture)
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	req := httptest.NewRequest(http.MethodPost, "/v1/replay", &buf)
	req.Header.Set("Content-Encoding", "gzip")
	w := do(t, srv, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 2, decodeReplay(t, w).Chunks)
}

func TestReplayBadRequest(t *testing.T) {
	srv := newTestServer(t, nil)

	w := do(t, srv, httptest.NewRequest(http.MethodPost, "/v1/replay?mode=batch", strings.NewReader(capture)))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	req := httptest.NewRequest(http.MethodPost, "/v1/replay", strings.NewReader(capture))
	req.Header.Set("Content-Encoding", "gzip")
	w = do(t, srv, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid gzip body")
}

func TestReplayStreamError(t *testing.T) {
	srv := newTestServer(t, nil)

	body := "data: {\"id\":\"c1\",\"choices\":[]}\n\ndata: {broken\n"
	w := do(t, srv, httptest.NewRequest(http.MethodPost, "/v1/replay?mode=async", strings.NewReader(body)))
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	resp := decodeReplay(t, w)
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, 1, resp.Chunks)
	assert.True(t, strings.HasPrefix(resp.Error, "DecodeError: "), resp.Error)

	stats := srv.Metrics().Snapshot()
	assert.Equal(t, int64(1), stats.StreamsFailed)
}

func TestReplayOTelExporter(t *testing.T) {
	srv := newTestServer(t, func(cfg *config.Config) {
		cfg.Tracing.Exporter = config.ExporterOTel
	})

	w := do(t, srv, httptest.NewRequest(http.MethodPost, "/v1/replay", strings.NewReader(capture)))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decodeReplay(t, w)
	assert.Len(t, resp.TraceID, 32)
	assert.Equal(t, "ok", resp.Status)
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t, nil)
	do(t, srv, httptest.NewRequest(http.MethodPost, "/v1/replay", strings.NewReader(capture)))

	w := do(t, srv, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "streamtrace_stream_chunks_total 2")
	assert.Contains(t, w.Body.String(), `streamtrace_streams_finished_total{status="ok"} 1`)
}

func TestMetricsDisabled(t *testing.T) {
	srv := newTestServer(t, func(cfg *config.Config) {
		cfg.Metrics.Enabled = false
	})

	assert.Nil(t, srv.Metrics())
	assert.Equal(t, http.StatusNotFound, do(t, srv, httptest.NewRequest(http.MethodGet, "/metrics", nil)).Code)
	assert.Equal(t, http.StatusNotFound, do(t, srv, httptest.NewRequest(http.MethodGet, "/v1/stats", nil)).Code)

	w := do(t, srv, httptest.NewRequest(http.MethodPost, "/v1/replay", strings.NewReader(capture)))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestReplayRateLimited(t *testing.T) {
	srv := newTestServer(t, func(cfg *config.Config) {
		cfg.RateLimit.RequestsPerSecond = 1
		cfg.RateLimit.Burst = 1
	})

	assert.Equal(t, http.StatusOK, do(t, srv, httptest.NewRequest(http.MethodGet, "/health", nil)).Code)
	assert.Equal(t, http.StatusTooManyRequests, do(t, srv, httptest.NewRequest(http.MethodGet, "/health", nil)).Code)
}

func TestGlobalRateLimit(t *testing.T) {
	fromClient := func(addr string) *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.RemoteAddr = addr
		return req
	}

	t.Run("shared across clients", func(t *testing.T) {
		srv := newTestServer(t, func(cfg *config.Config) {
			cfg.RateLimit.GlobalRequestsPerSecond = 1
		})

		assert.Equal(t, http.StatusOK, do(t, srv, fromClient("10.0.0.1:1000")).Code)
		w := do(t, srv, fromClient("10.0.0.2:1000"))
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Equal(t, "1", w.Header().Get("Retry-After"))
	})

	t.Run("off by default", func(t *testing.T) {
		srv := newTestServer(t, nil)

		for i := range 5 {
			addr := fmt.Sprintf("10.0.0.%d:1000", i+1)
			assert.Equal(t, http.StatusOK, do(t, srv, fromClient(addr)).Code)
		}
	})

	t.Run("off with rate limiting disabled", func(t *testing.T) {
		srv := newTestServer(t, func(cfg *config.Config) {
			cfg.RateLimit.Enabled = false
			cfg.RateLimit.GlobalRequestsPerSecond = 1
		})

		assert.Equal(t, http.StatusOK, do(t, srv, fromClient("10.0.0.1:1000")).Code)
		assert.Equal(t, http.StatusOK, do(t, srv, fromClient("10.0.0.2:1000")).Code)
	})
}
