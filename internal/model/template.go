package model

// TemplateKind tags which source a Template resolves against.
type TemplateKind int

const (
	// InputRef resolves against a named reactor input.
	InputRef TemplateKind = iota
	// ResultRef resolves against a named step's intermediate result.
	ResultRef
	// ValueRef resolves to a literal value embedded at author time.
	ValueRef
	// ElementRef resolves against the current iteration element bound by an
	// enclosing iterator step. The core treats the name as opaque.
	ElementRef
)

func (k TemplateKind) String() string {
	switch k {
	case InputRef:
		return "input"
	case ResultRef:
		return "result"
	case ValueRef:
		return "value"
	case ElementRef:
		return "element"
	default:
		return "unknown"
	}
}

// Template describes where an Argument's value comes from. It is an
// immutable sum type: exactly one of Name (for InputRef/ResultRef/ElementRef)
// or Value (for ValueRef) is meaningful, selected by Kind.
type Template struct {
	Kind TemplateKind

	// Name is the input name, step name, or element binding name. Unused for
	// ValueRef.
	Name string

	// Value is the literal payload for a ValueRef. Unused otherwise.
	Value interface{}

	// SubPath is an ordered list of keys applied, in turn, after the base
	// value is selected.
	SubPath []string
}

// Input builds an InputRef template, optionally indexed by sub_path.
func Input(name string, subPath ...string) Template {
	return Template{Kind: InputRef, Name: name, SubPath: subPath}
}

// Result builds a ResultRef template, optionally indexed by sub_path.
func Result(stepName string, subPath ...string) Template {
	return Template{Kind: ResultRef, Name: stepName, SubPath: subPath}
}

// Literal builds a ValueRef template wrapping a literal value, optionally
// indexed by sub_path (useful when the literal is itself a map or list).
func Literal(value interface{}, subPath ...string) Template {
	return Template{Kind: ValueRef, Value: value, SubPath: subPath}
}

// Element builds an ElementRef template against the named iteration binding.
func Element(name string, subPath ...string) Template {
	return Template{Kind: ElementRef, Name: name, SubPath: subPath}
}
