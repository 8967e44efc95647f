package model

// IgnoreArgName is the sentinel Argument.Name that establishes a dependency
// edge without inserting a resolved value into the argument map. It is the
// desugared form of a plain wait_for declaration.
const IgnoreArgName = "_"

// Transform mutates a resolved value. It is invoked either per-argument
// (after the template resolves, before the value is inserted into the
// argument map) or once over the whole resolved argument map, depending on
// where it is attached.
type Transform func(value interface{}) (interface{}, error)

// Argument names one input to a step and describes where its value comes
// from.
type Argument struct {
	Name      string
	Source    Template
	Transform Transform
}

// Ignored reports whether this argument only establishes a dependency edge
// and should be dropped from the resolved argument map.
func (a Argument) Ignored() bool {
	return a.Name == IgnoreArgName
}
