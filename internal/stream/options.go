package stream

import (
	"time"

	"go.uber.org/zap"
)

// Observer receives stream lifecycle callbacks, typically to feed metrics.
// Every StreamStarted is matched by exactly one StreamFinished. Streams over
// a span that was already finished are not reported at all.
type Observer interface {
	StreamStarted()
	ChunkReceived(n int, elapsed time.Duration)
	StreamFinished(status Status)
	TelemetryFailure(stage string)
}

type nopObserver struct{}

func (nopObserver) StreamStarted()                   {}
func (nopObserver) ChunkReceived(int, time.Duration) {}
func (nopObserver) StreamFinished(Status)            {}
func (nopObserver) TelemetryFailure(string)          {}

// Option configures a proxy.
type Option func(*options)

type options struct {
	logger    *zap.Logger
	observer  Observer
	finisher  Finisher
	completed func(chunk any) bool
}

func defaultOptions() options {
	return options{
		logger:    zap.NewNop(),
		observer:  nopObserver{},
		finisher:  FinisherFunc(FinishTracing),
		completed: hasFinishReason,
	}
}

// WithLogger sets the logger best-effort failures are reported to.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithObserver registers an Observer for lifecycle callbacks.
func WithObserver(observer Observer) Option {
	return func(o *options) {
		if observer != nil {
			o.observer = observer
		}
	}
}

// WithFinisher replaces FinishTracing as the finalization helper.
func WithFinisher(finisher Finisher) Option {
	return func(o *options) {
		if finisher != nil {
			o.finisher = finisher
		}
	}
}

// DetectCompletion sets how AsyncStream recognizes a chunk that reports the
// end of the response. By default chunks implementing FinishReasoner are
// checked.
func DetectCompletion[T any](fn func(chunk T) bool) Option {
	return func(o *options) {
		if fn == nil {
			return
		}
		o.completed = func(chunk any) bool {
			c, ok := chunk.(T)
			return ok && fn(c)
		}
	}
}

// FinishReasoner is implemented by chunks that can carry a finish reason on
// their first choice.
type FinishReasoner interface {
	FinishReason() (string, bool)
}

func hasFinishReason(chunk any) bool {
	fr, ok := chunk.(FinishReasoner)
	if !ok {
		return false
	}
	_, ok = fr.FinishReason()
	return ok
}
