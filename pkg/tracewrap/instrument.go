package tracewrap

import (
	"maps"
	"reflect"
	"sort"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/jt828/functrace/pkg/observability"
)

// Package is a set of functions to instrument under one namespace, usually the
// exported functions of a Go package keyed by name.
type Package struct {
	Path  string
	Funcs map[string]any
	// Signatures optionally names the parameters of individual functions.
	Signatures map[string]Signature
}

// Instrumenter wraps every function of a Package in one go. Each namespace is
// instrumented at most once per Instrumenter; later requests get the functions
// wrapped the first time.
type Instrumenter struct {
	w              *Wrapper
	includePrivate bool
	exclude        []string

	mu   sync.Mutex
	done map[string]map[string]any
}

type InstrumentOption func(*Instrumenter)

// IncludePrivate also wraps unexported (lower case or underscore) names.
func IncludePrivate() InstrumentOption {
	return func(in *Instrumenter) {
		in.includePrivate = true
	}
}

// Exclude skips every namespace containing one of the given substrings.
func Exclude(substrings ...string) InstrumentOption {
	return func(in *Instrumenter) {
		in.exclude = append(in.exclude, substrings...)
	}
}

func NewInstrumenter(w *Wrapper, opts ...InstrumentOption) *Instrumenter {
	in := &Instrumenter{w: w, done: make(map[string]map[string]any)}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// Instrument returns pkg.Funcs with every eligible function replaced by its
// wrapped version, and the number of functions wrapped by this call. Functions
// that fail to wrap are logged and left as they were. A namespace seen before
// returns its earlier wrapped set and 0.
func (in *Instrumenter) Instrument(pkg Package) (map[string]any, int) {
	log := in.w.logger().With(observability.String("namespace", pkg.Path))

	for _, ex := range in.exclude {
		if ex != "" && strings.Contains(pkg.Path, ex) {
			log.Debug("skipping excluded namespace")
			return pkg.Funcs, 0
		}
	}

	in.mu.Lock()
	defer in.mu.Unlock()
	if prev, ok := in.done[pkg.Path]; ok {
		log.Debug("namespace already instrumented, skipping")
		return maps.Clone(prev), 0
	}

	names := make([]string, 0, len(pkg.Funcs))
	for name := range pkg.Funcs {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make(map[string]any, len(pkg.Funcs))
	count := 0
	for _, name := range names {
		fn := pkg.Funcs[name]
		out[name] = fn
		if !in.includePrivate && isPrivate(name) {
			continue
		}

		sig := pkg.Signatures[name]
		wrapped, err := WrapFunc(in.w, fn, Config{
			SpanName:  pkg.Path + "." + name,
			Signature: sig,
			Attributes: map[string]string{
				"code.function":            name,
				"code.namespace":           pkg.Path,
				"code.function.parameters": parameterList(fn, sig),
			},
		})
		if err != nil {
			log.Warn("failed to instrument function", observability.String("function", name), observability.Err(err))
			continue
		}
		out[name] = wrapped
		count++
		log.Debug("instrumented function", observability.String("function", name))
	}

	in.done[pkg.Path] = out
	if count > 0 {
		log.Info("instrumented functions", observability.Int("count", count))
	}
	return maps.Clone(out), count
}

// InstrumentAll instruments several packages and returns the total count.
func (in *Instrumenter) InstrumentAll(pkgs ...Package) (map[string]map[string]any, int) {
	out := make(map[string]map[string]any, len(pkgs))
	total := 0
	for _, pkg := range pkgs {
		funcs, n := in.Instrument(pkg)
		out[pkg.Path] = funcs
		total += n
	}
	in.w.logger().Info("auto-instrumentation complete", observability.Int("functions", total))
	return out, total
}

func isPrivate(name string) bool {
	r, _ := utf8.DecodeRuneInString(name)
	return r == '_' || !unicode.IsUpper(r)
}

// parameterList lists declared names, or parameter types when none are declared.
func parameterList(fn any, sig Signature) string {
	if len(sig.Params) > 0 {
		return strings.Join(sig.Names(), ",")
	}
	v := reflect.ValueOf(fn)
	if !v.IsValid() || v.Kind() != reflect.Func {
		return ""
	}
	t := v.Type()
	params := make([]string, 0, t.NumIn())
	for i := 0; i < t.NumIn(); i++ {
		params = append(params, t.In(i).String())
	}
	return strings.Join(params, ",")
}
