// Package resolve materializes a step's argument map from its Argument
// declarations: selecting a base value by Template kind, walking any
// sub_path, and applying a per-argument transform.
package resolve

import (
	"reflect"

	"github.com/alexisbeaulieu97/reactor/internal/model"
	reactorerrors "github.com/alexisbeaulieu97/reactor/pkg/errors"
)

// Template resolves a single template against the reactor context and
// intermediate results, applying sub_path traversal.
func Template(tmpl model.Template, reactorCtx map[string]interface{}, results map[string]interface{}) (interface{}, error) {
	base, err := base(tmpl, reactorCtx, results)
	if err != nil {
		return nil, err
	}
	return walk(base, tmpl.SubPath)
}

func base(tmpl model.Template, reactorCtx map[string]interface{}, results map[string]interface{}) (interface{}, error) {
	switch tmpl.Kind {
	case model.InputRef:
		inputs, _ := reactorCtx[model.PrivateInputsKey].(map[string]interface{})
		value, ok := inputs[tmpl.Name]
		if !ok {
			return nil, reactorerrors.NewMissingInputError(tmpl.Name)
		}
		return value, nil
	case model.ResultRef:
		value, ok := results[tmpl.Name]
		if !ok {
			return nil, reactorerrors.NewMissingResultError(tmpl.Name)
		}
		return value, nil
	case model.ValueRef:
		return tmpl.Value, nil
	case model.ElementRef:
		// Element bindings live in the context, populated by an enclosing
		// iterator step; the core treats the name as an opaque reference.
		value, ok := reactorCtx[tmpl.Name]
		if !ok {
			return nil, reactorerrors.NewMissingInputError(tmpl.Name)
		}
		return value, nil
	default:
		return nil, reactorerrors.NewInvariantError("unknown template kind")
	}
}

// walk applies sub_path keys in turn via map/struct/keyword-list access.
func walk(value interface{}, subPath []string) (interface{}, error) {
	current := value
	for i, key := range subPath {
		next, err := fetch(current, key)
		if err != nil {
			return nil, annotate(err, subPath[:i+1], key)
		}
		current = next
	}
	return current, nil
}

func annotate(err error, path []string, key string) error {
	if subErr, ok := err.(*reactorerrors.ArgumentSubpathError); ok {
		subErr.Path = path
		return subErr
	}
	return err
}

func fetch(container interface{}, key string) (interface{}, error) {
	switch c := container.(type) {
	case map[string]interface{}:
		value, ok := c[key]
		if !ok {
			return nil, reactorerrors.NewArgumentSubpathError(nil, key, "a map", "key not found")
		}
		return value, nil
	case model.KeywordList:
		value, ok := c.Fetch(key)
		if !ok {
			return nil, reactorerrors.NewArgumentSubpathError(nil, key, "a keyword-list", "key not found")
		}
		return value, nil
	}

	rv := reflect.ValueOf(container)
	if rv.IsValid() {
		for rv.Kind() == reflect.Ptr {
			if rv.IsNil() {
				break
			}
			rv = rv.Elem()
		}
		if rv.Kind() == reflect.Struct {
			field := rv.FieldByName(key)
			if field.IsValid() && field.CanInterface() {
				return field.Interface(), nil
			}
			return nil, reactorerrors.NewArgumentSubpathError(nil, key, "a struct", "key not found")
		}
		if rv.Kind() == reflect.Map && rv.Type().Key().Kind() == reflect.String {
			mapKey := reflect.ValueOf(key)
			value := rv.MapIndex(mapKey)
			if !value.IsValid() {
				return nil, reactorerrors.NewArgumentSubpathError(nil, key, "a map", "key not found")
			}
			return value.Interface(), nil
		}
	}

	return nil, reactorerrors.NewArgumentSubpathError(nil, key, "neither map nor keyword-list", "value is not indexable")
}

// Argument resolves one Argument fully: template, sub_path, then its
// per-argument transform (if any).
func Argument(arg model.Argument, reactorCtx map[string]interface{}, results map[string]interface{}) (interface{}, error) {
	value, err := Template(arg.Source, reactorCtx, results)
	if err != nil {
		return nil, err
	}
	if arg.Transform != nil {
		value, err = arg.Transform(value)
		if err != nil {
			return nil, err
		}
	}
	return value, nil
}

// Arguments resolves every Argument in order into a single map, skipping
// IgnoreArgName entries (which only establish a dependency edge).
func Arguments(args []model.Argument, reactorCtx map[string]interface{}, results map[string]interface{}) (map[string]interface{}, error) {
	out := make(map[string]interface{}, len(args))
	for _, arg := range args {
		value, err := Argument(arg, reactorCtx, results)
		if err != nil {
			return nil, err
		}
		if arg.Ignored() {
			continue
		}
		out[arg.Name] = value
	}
	return out, nil
}
