package tracewrap

import (
	"context"
	"reflect"
	"strings"
)

var (
	contextType = reflect.TypeOf((*context.Context)(nil)).Elem()
	errorType   = reflect.TypeOf((*error)(nil)).Elem()
)

// WrapFunc wraps a function of any signature and returns a value of the same
// type, to be asserted back by the caller:
//
//	wrapped, err := tracewrap.WrapFunc(w, strings.Repeat, cfg)
//	repeat := wrapped.(func(string, int) string)
//
// A leading context.Context parents the span and receives the span context. A
// trailing error result marks failure. Other results are recorded together as
// function.return. A function whose only result is a <-chan Result[T] is
// traced like WrapAsync: its span ends with the delivered Result.
func WrapFunc(w *Wrapper, fn any, cfg Config) (any, error) {
	p, err := w.prepare(fn, cfg, arityOf(fn))
	if err != nil {
		return nil, err
	}
	if p == nil {
		return fn, nil
	}

	v := reflect.ValueOf(fn)
	t := v.Type()
	hasCtx := t.NumIn() > 0 && t.In(0) == contextType

	invoke := func(in []reflect.Value, ctx context.Context) []reflect.Value {
		args := in
		if hasCtx {
			args = append([]reflect.Value(nil), in...)
			args[0] = reflect.ValueOf(ctx)
		}
		if t.IsVariadic() {
			return v.CallSlice(args)
		}
		return v.Call(args)
	}
	split := func(in []reflect.Value) (context.Context, []reflect.Value) {
		if !hasCtx {
			return context.Background(), in
		}
		if c, ok := in[0].Interface().(context.Context); ok && c != nil {
			return c, in[1:]
		}
		return context.Background(), in[1:]
	}

	if elem, ok := resultChanElem(t); ok {
		outType := t.Out(0)
		wrapped := reflect.MakeFunc(t, func(in []reflect.Value) []reflect.Value {
			ctx, params := split(in)
			result := reflect.Zero(outType)
			traceAsync(ctx, p,
				func() []any { return bindValues(params, t.IsVariadic(), p.sig) },
				func(ctx context.Context) *resultStream {
					src := invoke(in, ctx)[0]
					if src.IsNil() {
						return nil
					}
					out := reflect.MakeChan(reflect.ChanOf(reflect.BothDir, elem), 1)
					result = out.Convert(outType)
					return reflectStream(src, out)
				},
			)
			return []reflect.Value{result}
		})
		return wrapped.Interface(), nil
	}

	errIdx := -1
	if n := t.NumOut(); n > 0 && t.Out(n-1) == errorType {
		errIdx = n - 1
	}
	p.present = func(out any) any {
		return presentResults(out.([]reflect.Value), errIdx)
	}

	wrapped := reflect.MakeFunc(t, func(in []reflect.Value) []reflect.Value {
		ctx, params := split(in)
		out, _ := call(ctx, p,
			func() []any { return bindValues(params, t.IsVariadic(), p.sig) },
			func(spanCtx context.Context) ([]reflect.Value, error) {
				out := invoke(in, spanCtx)
				if errIdx >= 0 && !out[errIdx].IsNil() {
					return out, out[errIdx].Interface().(error)
				}
				return out, nil
			},
		)
		return out
	})

	return wrapped.Interface(), nil
}

var resultPkgPath = reflect.TypeOf(Result[struct{}]{}).PkgPath()

// resultChanElem reports whether t returns only a receivable channel of
// Result[T], and the Result type if so.
func resultChanElem(t reflect.Type) (reflect.Type, bool) {
	if t.NumOut() != 1 {
		return nil, false
	}
	ch := t.Out(0)
	if ch.Kind() != reflect.Chan || ch.ChanDir()&reflect.RecvDir == 0 {
		return nil, false
	}
	elem := ch.Elem()
	if elem.Kind() != reflect.Struct || elem.PkgPath() != resultPkgPath || !strings.HasPrefix(elem.Name(), "Result[") {
		return nil, false
	}
	if f, ok := elem.FieldByName("Err"); !ok || f.Type != errorType {
		return nil, false
	}
	if _, ok := elem.FieldByName("Value"); !ok {
		return nil, false
	}
	return elem, true
}

func reflectStream(in, out reflect.Value) *resultStream {
	return &resultStream{
		next: func(cancel <-chan struct{}) (any, bool, bool) {
			if cancel == nil {
				r, ok := in.Recv()
				return r, ok, false
			}
			chosen, r, ok := reflect.Select([]reflect.SelectCase{
				{Dir: reflect.SelectRecv, Chan: in},
				{Dir: reflect.SelectRecv, Chan: reflect.ValueOf(cancel)},
			})
			if chosen == 1 {
				return nil, false, true
			}
			return r, ok, false
		},
		outcome: func(res any) (any, error) {
			r := res.(reflect.Value)
			err, _ := r.FieldByName("Err").Interface().(error)
			return r.FieldByName("Value").Interface(), err
		},
		forward: func(res any) { out.Send(res.(reflect.Value)) },
		close:   out.Close,
	}
}

func arityOf(fn any) int {
	v := reflect.ValueOf(fn)
	if !v.IsValid() || v.Kind() != reflect.Func {
		return 0
	}
	t := v.Type()
	if t.NumIn() > 0 && t.In(0) == contextType {
		return t.NumIn() - 1
	}
	return t.NumIn()
}

// bindValues maps call arguments onto declared parameters. An empty variadic
// tail binds to its declared default.
func bindValues(in []reflect.Value, variadic bool, sig Signature) []any {
	bound := make([]any, len(in))
	for i, arg := range in {
		last := i == len(in)-1
		if variadic && last && arg.Len() == 0 && i < len(sig.Params) && sig.Params[i].HasDefault {
			bound[i] = sig.Params[i].Default
			continue
		}
		bound[i] = arg.Interface()
	}
	return bound
}

func presentResults(out []reflect.Value, errIdx int) any {
	values := make([]any, 0, len(out))
	for i, v := range out {
		if i == errIdx {
			continue
		}
		values = append(values, v.Interface())
	}
	if len(values) == 1 {
		return values[0]
	}
	return values
}
