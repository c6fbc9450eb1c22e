package record_test

import (
	"regexp"
	"strings"
	"testing"

	goadt "github.com/reoring/goadt"
	"github.com/reoring/goadt/record"
	"github.com/reoring/goadt/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var regexpDigits = regexp.MustCompile(`^[0-9]+$`)

// stringCodec encodes the "n" field as "<tag>:<n>".
func stringCodec() record.CodecDef {
	return record.CodecDef{
		To: func(v *goadt.Value) (string, error) {
			return v.Tag() + ":" + v.Get("n").(string), nil
		},
		From: func(text string, cx record.CodecContext) (goadt.Fields, bool) {
			tag, n, ok := strings.Cut(text, ":")
			if !ok || tag != cx.Name {
				return nil, false
			}
			return goadt.Fields{"n": n}, true
		},
	}
}

func TestCodec_CustomRoundTrip(t *testing.T) {
	a := record.New("A").
		Schema(schema.Fields{"n": schema.String()}).
		Codec("str", stringCodec()).
		MustDone()

	v := a.MustCreate(ctx, goadt.Fields{"n": "1"})
	text, err := a.To("str").Encode(v)
	require.NoError(t, err)
	assert.Equal(t, "A:1", text)

	back, ok := a.From("str").Decode(ctx, text)
	require.True(t, ok)
	assert.True(t, back.Equal(v))
	assert.Equal(t, []string{"str"}, a.Codecs())
	assert.True(t, a.HasCodec("str"))
	assert.True(t, a.HasCodec(record.JSON))

	_, ok = a.From("str").Decode(ctx, "B:1")
	assert.False(t, ok)

	_, err = a.From("str").DecodeOrError(ctx, "B:1")
	assert.ErrorIs(t, err, goadt.ErrDecode)
	assert.EqualError(t, err, "Failed to decode value `B:1` into a A.")
}

func TestCodec_ContextCarriesExtensionsSchemaAndName(t *testing.T) {
	var got record.CodecContext
	a := record.New("A").
		Schema(schema.Fields{"n": schema.String()}).
		Extend(map[string]any{"sep": ":"}).
		Codec("probe", record.CodecDef{
			To: func(*goadt.Value) (string, error) { return "", nil },
			From: func(text string, cx record.CodecContext) (goadt.Fields, bool) {
				got = cx
				return nil, false
			},
		}).
		MustDone()

	_, _ = a.From("probe").Decode(ctx, "x")
	assert.Equal(t, "A", got.Name)
	assert.Same(t, a.Schema(), got.Schema)
	assert.Equal(t, ":", got.Ext("sep"))
}

func TestCodec_DecodedFieldsAreValidated(t *testing.T) {
	a := record.New("A").
		Schema(schema.Fields{"n": schema.String().Pattern(regexpDigits)}).
		Codec("str", stringCodec()).
		MustDone()

	_, ok := a.From("str").Decode(ctx, "A:x")
	assert.False(t, ok, "invalid decoder output is a miss")

	_, err := a.From("str").DecodeOrError(ctx, "A:x")
	var de *goadt.DecodeError
	require.ErrorAs(t, err, &de)
	iss, ok := goadt.AsIssues(de.Cause)
	require.True(t, ok)
	assert.Equal(t, goadt.CodePattern, iss[0].Code)
}

func TestCodec_DuplicateName(t *testing.T) {
	_, err := record.New("A").
		Schema(schema.Fields{"n": schema.String()}).
		Codec("foo", stringCodec()).
		Codec("foo", stringCodec()).
		Done()
	require.ErrorIs(t, err, goadt.ErrDuplicateCodec)
	assert.Contains(t, err.Error(), `"foo"`)
	assert.Contains(t, err.Error(), "already been defined")

	_, err = record.New("A").
		Schema(schema.Fields{"n": schema.String()}).
		Codec(record.JSON, stringCodec()).
		Done()
	assert.ErrorIs(t, err, goadt.ErrDuplicateCodec)
}

func TestCodec_AfterDefaults(t *testing.T) {
	a := record.New("A").
		Schema(schema.Fields{"n": schema.String(), "m": schema.String()}).
		Defaults(func(goadt.Fields) goadt.Fields { return goadt.Fields{"m": "d"} }).
		Codec("str", stringCodec()).
		MustDone()

	v, ok := a.From("str").Decode(ctx, "A:1")
	require.True(t, ok)
	assert.Equal(t, "d", v.Get("m"), "decoded fields go through the defaults provider")
}

func TestCodec_Unknown(t *testing.T) {
	a := record.MustOf("A", schema.Fields{"n": schema.String()})

	assert.PanicsWithError(t, "goadt user mistake: No codec named `yml` is defined for `A`.", func() {
		_, _ = a.From("yml").Decode(ctx, "n: 1")
	})
	_, err := a.From("yaml").DecodeOrError(ctx, "n: 1")
	assert.ErrorIs(t, err, goadt.ErrUnknownCodec)
	assert.ErrorIs(t, a.From("yaml").Err(), goadt.ErrUserMistake)

	_, err = a.To("yaml").Encode(a.MustCreate(ctx, goadt.Fields{"n": "1"}))
	assert.ErrorIs(t, err, goadt.ErrUnknownCodec)
	assert.NoError(t, a.To(record.JSON).Err())
}

func TestJSON_RoundTripExcludesEnvelope(t *testing.T) {
	a := record.MustOf("A", schema.Fields{
		"n":    schema.Number(),
		"tags": schema.Array(schema.String()),
	})
	v := a.MustCreate(ctx, goadt.Fields{"n": 1, "tags": []string{"x"}})

	text, err := a.To(record.JSON).Encode(v)
	require.NoError(t, err)
	assert.JSONEq(t, `{"_tag":"A","n":1,"tags":["x"]}`, text)
	assert.NotContains(t, text, `"_":`)

	back, ok := a.From(record.JSON).Decode(ctx, text)
	require.True(t, ok)
	assert.True(t, back.Equal(v))
}

func TestJSON_DecodeMisses(t *testing.T) {
	a := record.MustOf("A", schema.Fields{"n": schema.Number()})
	for _, in := range []string{`{`, `[1,2]`, `"A"`, `null`, `{"_tag":"B","n":1}`, `{"n":"x"}`, `{"n":1} {"n":2}`} {
		_, ok := a.From(record.JSON).Decode(ctx, in)
		assert.False(t, ok, in)
	}

	v, err := a.From(record.JSON).DecodeOrError(ctx, `{"n":2}`)
	require.NoError(t, err)
	assert.Equal(t, 2.0, v.Get("n"))

	_, err = a.From(record.JSON).DecodeOrError(ctx, `[]`)
	assert.EqualError(t, err, "Failed to decode value `[]` into a A.")
}

func TestJSON_IntegersBeyondFloatPrecision(t *testing.T) {
	const big = 9007199254740993 // 2^53 + 1
	a := record.MustOf("A", schema.Fields{"n": schema.Int(), "x": schema.Number()})

	v := a.MustCreate(ctx, goadt.Fields{"n": big, "x": 0.5})
	assert.Equal(t, int64(big), v.Get("n"))

	text, err := a.To(record.JSON).Encode(v)
	require.NoError(t, err)
	assert.JSONEq(t, `{"_tag":"A","n":9007199254740993,"x":0.5}`, text)

	back, ok := a.From(record.JSON).Decode(ctx, text)
	require.True(t, ok)
	assert.Equal(t, int64(big), back.Get("n"))
	assert.Equal(t, 0.5, back.Get("x"))
	assert.True(t, back.Equal(v))
}
