package resolve

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/reactor/internal/model"
	reactorerrors "github.com/alexisbeaulieu97/reactor/pkg/errors"
)

func ctxWithInputs(inputs map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{model.PrivateInputsKey: inputs}
}

func TestTemplateResolvesInput(t *testing.T) {
	t.Parallel()

	ctx := ctxWithInputs(map[string]interface{}{"name": "ada"})
	value, err := Template(model.Input("name"), ctx, nil)
	require.NoError(t, err)
	require.Equal(t, "ada", value)
}

func TestTemplateMissingInputErrors(t *testing.T) {
	t.Parallel()

	ctx := ctxWithInputs(map[string]interface{}{})
	_, err := Template(model.Input("name"), ctx, nil)
	require.Error(t, err)
	require.ErrorIs(t, err, &reactorerrors.MissingInputError{})
}

func TestTemplateResolvesResult(t *testing.T) {
	t.Parallel()

	results := map[string]interface{}{"fetch": 42}
	value, err := Template(model.Result("fetch"), nil, results)
	require.NoError(t, err)
	require.Equal(t, 42, value)
}

func TestTemplateMissingResultErrors(t *testing.T) {
	t.Parallel()

	_, err := Template(model.Result("fetch"), nil, map[string]interface{}{})
	require.Error(t, err)
	require.ErrorIs(t, err, &reactorerrors.MissingResultError{})
}

func TestTemplateLiteralValue(t *testing.T) {
	t.Parallel()

	value, err := Template(model.Literal(7), nil, nil)
	require.NoError(t, err)
	require.Equal(t, 7, value)
}

func TestTemplateSubPathWalksMap(t *testing.T) {
	t.Parallel()

	results := map[string]interface{}{
		"user": map[string]interface{}{"profile": map[string]interface{}{"name": "grace"}},
	}
	value, err := Template(model.Result("user", "profile", "name"), nil, results)
	require.NoError(t, err)
	require.Equal(t, "grace", value)
}

func TestTemplateSubPathWalksKeywordList(t *testing.T) {
	t.Parallel()

	results := map[string]interface{}{
		"opts": model.KeywordList{{Key: "retries", Value: 3}},
	}
	value, err := Template(model.Result("opts", "retries"), nil, results)
	require.NoError(t, err)
	require.Equal(t, 3, value)
}

func TestTemplateSubPathWalksStruct(t *testing.T) {
	t.Parallel()

	type Profile struct{ Name string }
	results := map[string]interface{}{"user": Profile{Name: "hopper"}}
	value, err := Template(model.Result("user", "Name"), nil, results)
	require.NoError(t, err)
	require.Equal(t, "hopper", value)
}

func TestTemplateSubPathMissingKeyErrors(t *testing.T) {
	t.Parallel()

	results := map[string]interface{}{"user": map[string]interface{}{}}
	_, err := Template(model.Result("user", "name"), nil, results)
	require.Error(t, err)
	var subErr *reactorerrors.ArgumentSubpathError
	require.ErrorAs(t, err, &subErr)
	require.Equal(t, []string{"name"}, subErr.Path)
}

func TestTemplateSubPathNonContainerErrors(t *testing.T) {
	t.Parallel()

	results := map[string]interface{}{"count": 5}
	_, err := Template(model.Result("count", "whatever"), nil, results)
	require.Error(t, err)
	require.ErrorIs(t, err, &reactorerrors.ArgumentSubpathError{})
}

func TestArgumentAppliesTransform(t *testing.T) {
	t.Parallel()

	arg := model.Argument{
		Name:   "doubled",
		Source: model.Literal(21),
		Transform: func(value interface{}) (interface{}, error) {
			return value.(int) * 2, nil
		},
	}
	value, err := Argument(arg, nil, nil)
	require.NoError(t, err)
	require.Equal(t, 42, value)
}

func TestArgumentsSkipsIgnored(t *testing.T) {
	t.Parallel()

	args := []model.Argument{
		{Name: "a", Source: model.Literal(1)},
		{Name: model.IgnoreArgName, Source: model.Result("dep")},
	}
	results := map[string]interface{}{"dep": "done"}
	resolved, err := Arguments(args, nil, results)
	require.NoError(t, err)
	require.Equal(t, map[string]interface{}{"a": 1}, resolved)
}
