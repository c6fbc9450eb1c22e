package record_test

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"

	goadt "github.com/reoring/goadt"
	"github.com/reoring/goadt/record"
	"github.com/reoring/goadt/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ctx = context.Background()

func TestCreate_StampsTagAndIdentity(t *testing.T) {
	circle := record.MustOf("Circle", schema.Fields{"radius": schema.Number()})

	c, err := circle.Create(ctx, goadt.Fields{"radius": 10})
	require.NoError(t, err)
	assert.Equal(t, "Circle", c.Tag())
	assert.Equal(t, 10.0, c.Get("radius"))
	assert.Same(t, circle.Symbol(), c.Symbol())
	assert.Equal(t, map[string]any{"_tag": "Circle", "radius": 10.0}, c.Map())
}

func TestCreate_OverridesTagAndDropsEnvelope(t *testing.T) {
	a := record.MustOf("A", schema.Fields{"n": schema.Number()})
	v, err := a.Create(ctx, goadt.Fields{"n": 1, "_tag": "B", "_": map[string]any{"tag": "B"}})
	require.NoError(t, err)
	assert.Equal(t, "A", v.Tag())
	assert.Equal(t, []string{"n"}, v.Keys())
}

func TestIs_IdentityIsTokenBased(t *testing.T) {
	a1 := record.MustOf("A", schema.Fields{"n": schema.Number()})
	a2 := record.MustOf("A", schema.Fields{"n": schema.Number()})

	v := a1.MustCreate(ctx, goadt.Fields{"n": 1})
	assert.True(t, a1.Is(v))
	assert.False(t, a2.Is(v), "structurally identical records are still distinct")
	assert.False(t, a1.Is(nil))
}

func TestIsAny_NeverPanics(t *testing.T) {
	a := record.MustOf("A", schema.Fields{"n": schema.Number()})
	v := a.MustCreate(ctx, goadt.Fields{"n": 1})

	for _, x := range []any{nil, 1, "A", []any{v}, map[string]any{"_tag": "A", "_": map[string]any{"tag": "A"}}, (*goadt.Value)(nil), struct{}{}} {
		assert.NotPanics(t, func() { assert.False(t, a.IsAny(x)) })
	}
	assert.True(t, a.IsAny(v))
	assert.True(t, a.IsAny(*v))
}

func TestDefaults_FieldLevel(t *testing.T) {
	a := record.MustOf("A", schema.Fields{
		"m": schema.String().Default("m"),
		"n": schema.Number(),
	})
	v := a.MustCreate(ctx, goadt.Fields{"n": 1})
	assert.Equal(t, map[string]any{"_tag": "A", "m": "m", "n": 1.0}, v.Map())

	v = a.MustCreate(ctx, goadt.Fields{"m": "x", "n": 1})
	assert.Equal(t, "x", v.Get("m"))
}

func TestDefaults_ProviderSeesInputAndUndefinedIsOverridden(t *testing.T) {
	var seen goadt.Fields
	a := record.New("A").
		Schema(schema.Fields{
			"a": schema.String(),
			"b": schema.String().Optional(),
		}).
		Defaults(func(in goadt.Fields) goadt.Fields {
			seen = in
			if name, ok := in["a"].(string); ok {
				return goadt.Fields{"b": name + "!"}
			}
			return goadt.Fields{"a": "anon", "b": "?"}
		}).
		MustDone()

	v := a.MustCreate(ctx, goadt.Fields{"a": "x", "b": goadt.Undefined})
	assert.Equal(t, "x!", v.Get("b"))
	assert.Equal(t, goadt.Fields{"a": "x"}, seen)

	empty := a.MustCreate(ctx, nil)
	undef := a.MustCreate(ctx, goadt.Fields{"a": goadt.Undefined, "b": goadt.Undefined})
	assert.Equal(t, empty.Map(), undef.Map())
	assert.Equal(t, "anon", empty.Get("a"))

	require.NotNil(t, a.DefaultsProvider())
	assert.Nil(t, record.MustOf("B", schema.Fields{"x": schema.Any()}).DefaultsProvider())
}

func TestCreate_ValidationFailure(t *testing.T) {
	a := record.MustOf("A", schema.Fields{
		"slug":  schema.String().Pattern(regexp.MustCompile(`^[a-z-]+$`)),
		"count": schema.Int(),
	})

	_, err := a.Create(ctx, goadt.Fields{"slug": "Not A Slug", "count": 1.5})
	require.Error(t, err)
	iss, ok := goadt.AsIssues(err)
	require.True(t, ok)
	require.Len(t, iss, 2)
	assert.Equal(t, "/count", iss[0].Path)
	assert.Equal(t, goadt.CodeNotInteger, iss[0].Code)
	assert.Equal(t, "/slug", iss[1].Path)
	assert.Equal(t, goadt.CodePattern, iss[1].Code)

	assert.Panics(t, func() { a.MustCreate(ctx, goadt.Fields{}) })
}

func TestCreate_FieldlessRecordRejectsInput(t *testing.T) {
	none := record.New("None").MustDone()
	v, err := none.Create(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"_tag": "None"}, v.Map())

	_, err = none.Create(ctx, goadt.Fields{"x": 1})
	iss, _ := goadt.AsIssues(err)
	require.Len(t, iss, 1)
	assert.Equal(t, goadt.CodeUnknownKey, iss[0].Code)
}

func TestUpdate_RevalidatesAndCopies(t *testing.T) {
	a := record.MustOf("A", schema.Fields{
		"name":  schema.String().Transform(func(v any) any { return strings.ToUpper(v.(string)) }),
		"count": schema.Int().Min(0),
		"note":  schema.String().Optional(),
	})
	v := a.MustCreate(ctx, goadt.Fields{"name": "ann", "count": 1, "note": "hi"})
	assert.Equal(t, "ANN", v.Get("name"))

	u, err := a.Update(ctx, v, goadt.Fields{"name": "bob", "note": goadt.Undefined})
	require.NoError(t, err)
	assert.Equal(t, "BOB", u.Get("name"))
	_, has := u.Lookup("note")
	assert.False(t, has)
	assert.True(t, a.Is(u))
	assert.Equal(t, "ANN", v.Get("name"), "the original value is untouched")

	_, err = a.Update(ctx, v, goadt.Fields{"count": -1})
	iss, _ := goadt.AsIssues(err)
	require.Len(t, iss, 1)
	assert.Equal(t, goadt.CodeTooSmall, iss[0].Code)

	other := record.MustOf("B", schema.Fields{"count": schema.Int()})
	_, err = a.Update(ctx, other.MustCreate(ctx, goadt.Fields{"count": 1}), nil)
	assert.ErrorIs(t, err, goadt.ErrForeignValue)
}

func TestExtend_MergesAndOverrides(t *testing.T) {
	a := record.New("A", record.WithExtensions(map[string]any{"x": 0, "y": "base"})).
		Extend(map[string]any{"x": 1}).
		Schema(schema.Fields{"n": schema.Number()}).
		Extend(map[string]any{"z": true}).
		MustDone()

	assert.Equal(t, 1, a.Ext("x"))
	assert.Equal(t, "base", a.Ext("y"))
	assert.Equal(t, true, a.Ext("z"))
	assert.Nil(t, a.Ext("missing"))
	assert.Equal(t, map[string]any{"x": 1, "y": "base", "z": true}, a.Extensions())
}

func TestStaticProperties(t *testing.T) {
	a := record.MustOf("A", schema.Fields{"n": schema.Number(), "m": schema.String().Optional()})
	assert.Equal(t, "A", a.Name())
	assert.Equal(t, []string{"A"}, a.Tags())
	assert.Equal(t, []string{"n"}, a.Schema().Required())
	assert.ElementsMatch(t, []string{"m", "n"}, a.InputSchema().Keys())

	s, err := a.JSONSchema()
	require.NoError(t, err)
	assert.Equal(t, "A", s.Title)
	assert.Equal(t, "A", s.Properties["_tag"].Const)
}

func TestBuilderMistakes(t *testing.T) {
	_, err := record.New("A").Schema(nil).Codec("foo", stringCodec()).Done()
	require.ErrorIs(t, err, goadt.ErrCodecWithoutSchema)
	assert.EqualError(t, err, "goadt user mistake: A codec cannot be defined without a schema.")

	_, err = record.New("A").Schema(nil).Defaults(func(goadt.Fields) goadt.Fields { return nil }).Done()
	require.ErrorIs(t, err, goadt.ErrDefaultsWithoutSchema)

	var um *goadt.UserMistake
	require.True(t, errors.As(err, &um))
	assert.Panics(t, func() { record.New("A").Schema(nil).Codec("foo", stringCodec()).MustDone() })
}

func TestSchema_AcceptsBuiltObject(t *testing.T) {
	base := schema.NewObject(schema.Fields{
		"name": schema.String(),
		"age":  schema.Int().Optional(),
	})
	person := record.New("Person").Schema(base).MustDone()

	v := person.MustCreate(ctx, goadt.Fields{"name": "Ann"})
	assert.Equal(t, map[string]any{"_tag": "Person", "name": "Ann"}, v.Map())
	assert.Equal(t, []string{"name"}, person.InputSchema().Required())

	// Reusing another record's schema retags it.
	clone := record.MustOf("Clone", person.Schema())
	field, tag := clone.Schema().Tag()
	assert.Equal(t, goadt.TagField, field)
	assert.Equal(t, "Clone", tag)
	w := clone.MustCreate(ctx, goadt.Fields{"name": "Bob", "age": 3})
	assert.Equal(t, "Clone", w.Tag())
	assert.Equal(t, int64(3), w.Get("age"))
	assert.False(t, person.Is(w))

	var none *schema.Object
	_, err := record.New("Nil").Schema(none).Done()
	assert.ErrorIs(t, err, goadt.ErrUserMistake)
}
