package tracewrap

import (
	"context"
	"sync"
)

// Result is the single value an async function delivers on its channel.
type Result[R any] struct {
	Value R
	Err   error
}

// WrapAsync0 wraps a function that starts work and returns at once with a
// channel delivering one Result. The wrapped function returns just as quickly;
// its span stays open until the Result arrives or ctx is done.
func WrapAsync0[R any](
	w *Wrapper,
	fn func(context.Context) <-chan Result[R],
	cfg Config,
) (func(context.Context) <-chan Result[R], error) {
	p, err := w.prepare(fn, cfg, 0)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return fn, nil
	}
	return func(ctx context.Context) <-chan Result[R] {
		return callAsync(ctx, p, noArgs, fn)
	}, nil
}

func WrapAsync1[A, R any](
	w *Wrapper,
	fn func(context.Context, A) <-chan Result[R],
	cfg Config,
) (func(context.Context, A) <-chan Result[R], error) {
	p, err := w.prepare(fn, cfg, 1)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return fn, nil
	}
	return func(ctx context.Context, a A) <-chan Result[R] {
		return callAsync(ctx, p,
			func() []any { return []any{a} },
			func(ctx context.Context) <-chan Result[R] { return fn(ctx, a) },
		)
	}, nil
}

func callAsync[R any](
	ctx context.Context,
	p *plan,
	args func() []any,
	fn func(context.Context) <-chan Result[R],
) <-chan Result[R] {
	var out <-chan Result[R]
	traceAsync(ctx, p, args, func(ctx context.Context) *resultStream {
		in := fn(ctx)
		if in == nil {
			return nil
		}
		ch := make(chan Result[R], 1)
		out = ch
		return typedStream(in, ch)
	})
	return out
}

// resultStream moves the single result of an async call from the function's
// channel to the caller's, whatever its element type.
type resultStream struct {
	// next receives from the source. When cancel fires first it returns
	// cancelled without consuming anything. A nil cancel never fires.
	next    func(cancel <-chan struct{}) (res any, ok, cancelled bool)
	outcome func(res any) (value any, err error)
	forward func(res any)
	close   func()
}

func typedStream[R any](in <-chan Result[R], out chan<- Result[R]) *resultStream {
	return &resultStream{
		next: func(cancel <-chan struct{}) (any, bool, bool) {
			select {
			case r, ok := <-in:
				return r, ok, false
			case <-cancel:
				return nil, false, true
			}
		},
		outcome: func(res any) (any, error) {
			r := res.(Result[R])
			return r.Value, r.Err
		},
		forward: func(res any) { out <- res.(Result[R]) },
		close:   func() { close(out) },
	}
}

// traceAsync opens the span, runs launch under it and ends the span when the
// stream launch returns delivers, closes or ctx is done. launch returns nil
// for a nil channel.
func traceAsync(ctx context.Context, p *plan, args func() []any, launch func(context.Context) *resultStream) {
	if ctx == nil {
		ctx = context.Background()
	}
	spanCtx, span, ok := p.start(ctx)
	if !ok {
		if s := launch(ctx); s != nil {
			go s.pump(ctx, func(error, func() any) {})
		}
		return
	}
	stop := p.w.metrics.start(p.spanName)

	var once sync.Once
	finish := func(err error, result func() any) {
		once.Do(func() {
			if err != nil {
				p.fail(span, err)
			} else {
				p.succeed(span, result)
			}
			p.end(span)
			stop(err != nil)
		})
	}

	completed := false
	defer func() {
		if completed {
			return
		}
		r := recover()
		if r == nil {
			finish(ErrGoexit, nil)
			return
		}
		finish(&PanicError{Value: r}, nil)
		panic(r)
	}()

	p.begin(span, args)
	s := launch(spanCtx)
	completed = true

	if s == nil {
		finish(ErrNoResult, nil)
		return
	}
	go s.pump(spanCtx, finish)
}

func (s *resultStream) pump(ctx context.Context, finish func(error, func() any)) {
	defer s.close()

	res, ok, cancelled := s.next(ctx.Done())
	if cancelled {
		// cancellation closes the span; the result is still forwarded
		finish(ctx.Err(), nil)
		res, ok, _ = s.next(nil)
	}
	if !ok {
		finish(ErrNoResult, nil)
		return
	}
	value, err := s.outcome(res)
	finish(err, func() any { return value })
	s.forward(res)
}
