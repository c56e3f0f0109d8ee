package tracewrap

// Config describes how one function is traced. Wrapping copies it, so later
// changes to the caller's value have no effect on an already wrapped function.
type Config struct {
	// SpanName overrides the default span name, the function's qualified Go
	// name. It may reference {{.Package}}, {{.Function}} and {{.Qualified}}.
	SpanName string

	// CaptureArgs lists parameters whose bound values are recorded as
	// function.<name> attributes. Names missing from Signature are ignored.
	CaptureArgs []string

	// CaptureReturn records the stringified result as function.return.
	CaptureReturn bool

	// Signature names the function's parameters, excluding a leading
	// context.Context. Required when CaptureArgs is set.
	Signature Signature

	// Attributes are set on every span before the call.
	Attributes map[string]string
}

func (c Config) clone() Config {
	out := c
	out.CaptureArgs = append([]string(nil), c.CaptureArgs...)
	out.Signature = Signature{Params: append([]Param(nil), c.Signature.Params...)}
	if c.Attributes != nil {
		out.Attributes = make(map[string]string, len(c.Attributes))
		for k, v := range c.Attributes {
			out.Attributes[k] = v
		}
	}
	return out
}

type Param struct {
	Name string
	// Default is bound when a variadic parameter receives no values.
	Default    any
	HasDefault bool
}

type Signature struct {
	Params []Param
}

// Params declares a signature from positional parameter names.
func Params(names ...string) Signature {
	params := make([]Param, len(names))
	for i, n := range names {
		params[i] = Param{Name: n}
	}
	return Signature{Params: params}
}

// WithDefault returns a copy of s with a default for the named parameter.
func (s Signature) WithDefault(name string, value any) Signature {
	params := append([]Param(nil), s.Params...)
	for i := range params {
		if params[i].Name == name {
			params[i].Default = value
			params[i].HasDefault = true
		}
	}
	return Signature{Params: params}
}

func (s Signature) Names() []string {
	names := make([]string, len(s.Params))
	for i, p := range s.Params {
		names[i] = p.Name
	}
	return names
}

func (s Signature) index(name string) int {
	for i, p := range s.Params {
		if p.Name == name {
			return i
		}
	}
	return -1
}
