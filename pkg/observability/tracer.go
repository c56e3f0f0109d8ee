package observability

import "context"

type StatusCode int

const (
	StatusUnset StatusCode = iota
	StatusOK
	StatusError
)

func (c StatusCode) String() string {
	switch c {
	case StatusOK:
		return "OK"
	case StatusError:
		return "ERROR"
	default:
		return "UNSET"
	}
}

// Tracer is the span-emitting backend. A nil Tracer means tracing is disabled.
type Tracer interface {
	Start(ctx context.Context, name string) (context.Context, Span)
}

// Span is owned by whoever started it and must be ended exactly once.
type Span interface {
	End()
	RecordError(err error)
	SetAttribute(key, value string)
	SetStatus(code StatusCode, description string)
}
