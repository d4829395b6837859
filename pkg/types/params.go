package types

// Params is a tagged parameter source: either an ordered positional
// sequence or a name-to-value mapping. The style is resolved once per
// execution instead of inspecting argument types throughout the binder.
type Params struct {
	named  bool
	seq    []any
	byName map[string]any
}

// List builds a positional parameter source. Values are converted with
// Bind at execution time.
func List(values ...any) Params {
	return Params{seq: values}
}

// Named builds a named parameter source. Keys may be given with or
// without their prefix character ('$', ':', '@').
func Named(values map[string]any) Params {
	return Params{named: true, byName: values}
}

// NoParams is the empty positional source.
var NoParams = Params{}

// IsNamed reports whether the source is a name-to-value mapping.
func (p Params) IsNamed() bool { return p.named }

// Positional returns the ordered value sequence; nil for named sources.
func (p Params) Positional() []any { return p.seq }

// Mapping returns the name-to-value mapping; nil for positional sources.
func (p Params) Mapping() map[string]any { return p.byName }

// Len returns the number of supplied values.
func (p Params) Len() int {
	if p.named {
		return len(p.byName)
	}
	return len(p.seq)
}
