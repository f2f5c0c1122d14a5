package stream

import (
	"iter"
	"slices"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// FirstTokenEvent is the span event emitted when the first chunk arrives.
const FirstTokenEvent = "First Token Stream Event"

// FinishedElsewhere describes the status reported to observers when the
// span was finished by someone other than the proxy.
const FinishedElsewhere = "span finished outside the stream"

// Status is the terminal status a span is finalized with.
type Status struct {
	Code        codes.Code
	Description string
}

// StatusOK marks a stream that ended normally.
var StatusOK = Status{Code: codes.Ok}

// ErrorStatus builds the failure status for err, described as
// "<Category>: <message>".
func ErrorStatus(err error) Status {
	return Status{Code: codes.Error, Description: Describe(err)}
}

// Span is the handle a proxy reports to. Implementations live in the
// tracing package.
type Span interface {
	// IsFinished reports whether the span has been closed. Once true it
	// stays true.
	IsFinished() bool
	// AddEvent attaches a timestamped event. It may fail.
	AddEvent(name string) error
	// RecordError attaches err to the span.
	RecordError(err error)
	// Finish closes the span. It is not required to guard against being
	// called twice.
	Finish(status Status, attributes, extraAttributes []attribute.KeyValue)
}

// AttributeSource exposes the attributes a span is finalized with.
type AttributeSource interface {
	Attributes() iter.Seq[attribute.KeyValue]
	ExtraAttributes() iter.Seq[attribute.KeyValue]
}

// Finisher closes a span with a status and the attributes of src.
type Finisher interface {
	Finish(span Span, status Status, src AttributeSource)
}

// FinisherFunc adapts a function to Finisher.
type FinisherFunc func(span Span, status Status, src AttributeSource)

// Finish calls f.
func (f FinisherFunc) Finish(span Span, status Status, src AttributeSource) {
	f(span, status, src)
}

// FinishTracing drains both attribute sequences of src and closes span.
func FinishTracing(span Span, status Status, src AttributeSource) {
	span.Finish(status, slices.Collect(src.Attributes()), slices.Collect(src.ExtraAttributes()))
}
