package tracewrap

import (
	"context"
)

// call runs fn inside one span. args is evaluated only when arguments are
// captured.
func call[R any](
	ctx context.Context,
	p *plan,
	args func() []any,
	fn func(context.Context) (R, error),
) (R, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	spanCtx, span, ok := p.start(ctx)
	if !ok {
		return fn(ctx)
	}
	stop := p.w.metrics.start(p.spanName)

	completed := false
	defer func() {
		if completed {
			return
		}
		r := recover()
		if r == nil {
			p.fail(span, ErrGoexit)
			p.end(span)
			stop(true)
			return
		}
		p.fail(span, &PanicError{Value: r})
		p.end(span)
		stop(true)
		panic(r)
	}()

	p.begin(span, args)

	result, err := fn(spanCtx)
	completed = true

	if err != nil {
		p.fail(span, err)
	} else {
		p.succeed(span, func() any { return result })
	}
	p.end(span)
	stop(err != nil)

	return result, err
}
