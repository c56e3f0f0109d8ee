package tracewrap

import (
	"context"
	"fmt"
	"reflect"
	"runtime"
	"sort"
	"strings"
	"text/template"

	"github.com/jt828/functrace/pkg/apperror"
	"github.com/jt828/functrace/pkg/observability"
)

const (
	attrPrefix = "function."
	attrReturn = "function.return"
)

// plan is everything about a wrapped function that can be settled at wrap time.
type plan struct {
	w             *Wrapper
	log           observability.Logger
	function      string
	spanName      string
	captures      []capture
	captureReturn bool
	attributes    [][2]string
	sig           Signature
	// present converts a raw result into the value recorded as function.return.
	present func(any) any
}

type capture struct {
	index int
	key   string
}

// prepare validates cfg and compiles it. It returns a nil plan without error
// when tracing is disabled, so misconfiguration surfaces either way.
func (w *Wrapper) prepare(fn any, cfg Config, arity int) (*plan, error) {
	v := reflect.ValueOf(fn)
	if !v.IsValid() || v.Kind() != reflect.Func || v.IsNil() {
		return nil, fmt.Errorf("%w: cannot wrap %T", apperror.ErrInvalidConfig, fn)
	}

	cfg = cfg.clone()
	qualified := qualifiedName(v)

	spanName, err := resolveSpanName(cfg.SpanName, qualified)
	if err != nil {
		return nil, err
	}

	sig := cfg.Signature
	if len(cfg.CaptureArgs) > 0 && len(sig.Params) == 0 {
		return nil, fmt.Errorf("%w: %s: capturing %v needs a declared signature",
			apperror.ErrInvalidConfig, spanName, cfg.CaptureArgs)
	}
	if len(sig.Params) > 0 && len(sig.Params) != arity {
		return nil, fmt.Errorf("%w: %s: signature declares %d parameters, function takes %d",
			apperror.ErrInvalidConfig, spanName, len(sig.Params), arity)
	}
	seen := make(map[string]struct{}, len(sig.Params))
	for _, p := range sig.Params {
		if p.Name == "" {
			return nil, fmt.Errorf("%w: %s: empty parameter name", apperror.ErrInvalidConfig, spanName)
		}
		if _, dup := seen[p.Name]; dup {
			return nil, fmt.Errorf("%w: %s: duplicate parameter %q", apperror.ErrInvalidConfig, spanName, p.Name)
		}
		seen[p.Name] = struct{}{}
	}

	if !w.Enabled() {
		return nil, nil
	}

	log := w.logger().With(observability.String("span", spanName))

	p := &plan{
		w:             w,
		log:           log,
		function:      qualified,
		spanName:      spanName,
		captureReturn: cfg.CaptureReturn,
		sig:           sig,
	}
	for _, name := range cfg.CaptureArgs {
		idx := sig.index(name)
		if idx < 0 {
			log.Debug("captured argument not in signature", observability.String("argument", name))
			continue
		}
		p.captures = append(p.captures, capture{index: idx, key: attrPrefix + name})
	}
	for k, v := range cfg.Attributes {
		p.attributes = append(p.attributes, [2]string{k, v})
	}
	sort.Slice(p.attributes, func(i, j int) bool { return p.attributes[i][0] < p.attributes[j][0] })

	return p, nil
}

// start opens the span. When the backend fails the call proceeds untraced.
func (p *plan) start(ctx context.Context) (spanCtx context.Context, span observability.Span, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Warn("span start failed", observability.Any("panic", r))
			spanCtx, span, ok = ctx, nil, false
		}
	}()
	spanCtx, span = p.w.tracer.Start(ctx, p.spanName)
	if span == nil {
		return ctx, nil, false
	}
	if spanCtx == nil {
		spanCtx = ctx
	}
	return spanCtx, span, true
}

// begin attaches static and argument attributes. Failures are logged only.
func (p *plan) begin(span observability.Span, args func() []any) {
	p.guard("attach attributes", func() {
		for _, kv := range p.attributes {
			span.SetAttribute(kv[0], kv[1])
		}
		if len(p.captures) == 0 {
			return
		}
		bound := args()
		for _, c := range p.captures {
			if c.index >= len(bound) {
				continue
			}
			p.setValue(span, c.key, bound[c.index])
		}
	})
}

func (p *plan) succeed(span observability.Span, result func() any) {
	if p.captureReturn && result != nil {
		p.guard("capture return", func() {
			v := result()
			if p.present != nil {
				v = p.present(v)
			}
			p.setValue(span, attrReturn, v)
		})
	}
	p.guard("set status", func() {
		span.SetStatus(observability.StatusOK, "")
	})
}

func (p *plan) fail(span observability.Span, err error) {
	msg := errorMessage(err)
	p.guard("record error", func() {
		span.RecordError(err)
		span.SetStatus(observability.StatusError, msg)
	})
	p.log.Error("traced function failed",
		observability.String("function", p.function),
		observability.String("error", msg),
	)
}

func (p *plan) end(span observability.Span) {
	p.guard("end span", span.End)
}

func (p *plan) setValue(span observability.Span, key string, v any) {
	s, err := stringify(v)
	if err != nil {
		p.log.Warn("attribute not serializable", observability.String("attribute", key), observability.Err(err))
		return
	}
	span.SetAttribute(key, s)
}

func (p *plan) guard(what string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Warn("instrumentation failed",
				observability.String("step", what),
				observability.Any("panic", r),
			)
		}
	}()
	fn()
}

func qualifiedName(v reflect.Value) string {
	f := runtime.FuncForPC(v.Pointer())
	if f == nil {
		return v.Type().String()
	}
	return strings.TrimSuffix(f.Name(), "-fm")
}

// splitName splits "example.com/a/pkg.(*T).Method" into the package path and
// the remainder.
func splitName(qualified string) (pkg, function string) {
	slash := strings.LastIndex(qualified, "/")
	dot := strings.Index(qualified[slash+1:], ".")
	if dot < 0 {
		return "", qualified
	}
	dot += slash + 1
	return qualified[:dot], qualified[dot+1:]
}

type spanNameData struct {
	Package   string
	Function  string
	Qualified string
}

func resolveSpanName(tmpl, qualified string) (string, error) {
	if tmpl == "" {
		return qualified, nil
	}
	if !strings.Contains(tmpl, "{{") {
		return tmpl, nil
	}

	t, err := template.New("span").Option("missingkey=error").Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("%w: span name %q: %w", apperror.ErrInvalidConfig, tmpl, err)
	}

	pkg, function := splitName(qualified)
	var b strings.Builder
	if err := t.Execute(&b, spanNameData{Package: pkg, Function: function, Qualified: qualified}); err != nil {
		return "", fmt.Errorf("%w: span name %q: %w", apperror.ErrInvalidConfig, tmpl, err)
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("%w: span name %q resolves to nothing", apperror.ErrInvalidConfig, tmpl)
	}
	return b.String(), nil
}
