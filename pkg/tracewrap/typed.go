package tracewrap

import "context"

// Wrap0 wraps a function taking only a context.
func Wrap0[R any](
	w *Wrapper,
	fn func(context.Context) (R, error),
	cfg Config,
) (func(context.Context) (R, error), error) {
	p, err := w.prepare(fn, cfg, 0)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return fn, nil
	}
	return func(ctx context.Context) (R, error) {
		return call(ctx, p, noArgs, fn)
	}, nil
}

func Wrap1[A, R any](
	w *Wrapper,
	fn func(context.Context, A) (R, error),
	cfg Config,
) (func(context.Context, A) (R, error), error) {
	p, err := w.prepare(fn, cfg, 1)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return fn, nil
	}
	return func(ctx context.Context, a A) (R, error) {
		return call(ctx, p,
			func() []any { return []any{a} },
			func(ctx context.Context) (R, error) { return fn(ctx, a) },
		)
	}, nil
}

func Wrap2[A, B, R any](
	w *Wrapper,
	fn func(context.Context, A, B) (R, error),
	cfg Config,
) (func(context.Context, A, B) (R, error), error) {
	p, err := w.prepare(fn, cfg, 2)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return fn, nil
	}
	return func(ctx context.Context, a A, b B) (R, error) {
		return call(ctx, p,
			func() []any { return []any{a, b} },
			func(ctx context.Context) (R, error) { return fn(ctx, a, b) },
		)
	}, nil
}

func Wrap3[A, B, C, R any](
	w *Wrapper,
	fn func(context.Context, A, B, C) (R, error),
	cfg Config,
) (func(context.Context, A, B, C) (R, error), error) {
	p, err := w.prepare(fn, cfg, 3)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return fn, nil
	}
	return func(ctx context.Context, a A, b B, c C) (R, error) {
		return call(ctx, p,
			func() []any { return []any{a, b, c} },
			func(ctx context.Context) (R, error) { return fn(ctx, a, b, c) },
		)
	}, nil
}

func noArgs() []any { return nil }
