package record

import (
	"context"
	"errors"
	"io"
	"maps"
	"strings"

	json "github.com/goccy/go-json"
	goadt "github.com/reoring/goadt"
	"github.com/reoring/goadt/schema"
)

// JSON is the name of the built-in codec every record supports.
const JSON = "json"

// CodecDef is a user-supplied string codec. From returns ok == false when
// text is not an encoding of the record; its fields are then passed through
// Create, so they are validated and defaulted like constructor input.
type CodecDef struct {
	To   func(v *goadt.Value) (string, error)
	From func(text string, cx CodecContext) (fields goadt.Fields, ok bool)
}

// CodecContext is handed to CodecDef.From.
type CodecContext struct {
	Name       string
	Schema     *schema.Object
	Extensions map[string]any
}

// Ext returns the extension stored under key, or nil.
func (cx CodecContext) Ext(key string) any { return cx.Extensions[key] }

// DecodeFunc decodes text into a value. A nil value is a miss; cause may
// explain it.
type DecodeFunc func(ctx context.Context, text string) (v *goadt.Value, cause error)

// Decoder decodes one codec. The zero Decoder misses on every input.
type Decoder struct {
	target string
	fn     DecodeFunc
	err    error
}

// NewDecoder wraps fn. target names the record in decode errors; empty means
// the ADT as a whole.
func NewDecoder(target string, fn DecodeFunc) Decoder {
	return Decoder{target: target, fn: fn}
}

// MissingDecoder reports ErrUnknownCodec for codec on owner.
func MissingDecoder(owner, codec string) Decoder {
	return Decoder{target: owner, err: unknownCodec(owner, codec)}
}

// Decode returns the decoded value, or ok == false on a miss. It panics with
// the *goadt.UserMistake of a decoder obtained for an unregistered codec; use
// DecodeOrError to get it as an error instead.
func (d Decoder) Decode(ctx context.Context, text string) (v *goadt.Value, ok bool) {
	if d.err != nil {
		panic(d.err)
	}
	if d.fn == nil {
		return nil, false
	}
	v, _ = d.fn(ctx, text)
	return v, v != nil
}

// DecodeOrError is Decode with a *goadt.DecodeError on a miss.
func (d Decoder) DecodeOrError(ctx context.Context, text string) (*goadt.Value, error) {
	if d.err != nil {
		return nil, d.err
	}
	var (
		v     *goadt.Value
		cause error
	)
	if d.fn != nil {
		v, cause = d.fn(ctx, text)
	}
	if v == nil {
		return nil, &goadt.DecodeError{Input: text, Target: d.target, Cause: cause}
	}
	return v, nil
}

// Err reports a decoder obtained for an unregistered codec.
func (d Decoder) Err() error { return d.err }

// EncodeFunc encodes a value.
type EncodeFunc func(v *goadt.Value) (string, error)

// Encoder encodes one codec.
type Encoder struct {
	fn  EncodeFunc
	err error
}

func NewEncoder(fn EncodeFunc) Encoder { return Encoder{fn: fn} }

// MissingEncoder reports ErrUnknownCodec for codec on owner.
func MissingEncoder(owner, codec string) Encoder {
	return Encoder{err: unknownCodec(owner, codec)}
}

func (e Encoder) Encode(v *goadt.Value) (string, error) {
	if e.err != nil {
		return "", e.err
	}
	if v == nil || e.fn == nil {
		return "", &goadt.EncodeError{Value: v}
	}
	return e.fn(v)
}

// Err reports an encoder obtained for an unregistered codec.
func (e Encoder) Err() error { return e.err }

func unknownCodec(owner, codec string) error {
	return goadt.NewUserMistake(goadt.ErrUnknownCodec, "No codec named %s is defined for %s", goadt.Code(codec), goadt.Code(owner))
}

// From returns the decoder of codec.
func (c *Controller) From(codec string) Decoder {
	if codec == JSON {
		return NewDecoder(c.name, c.decodeJSON)
	}
	def, ok := c.codecs[codec]
	if !ok {
		return MissingDecoder(c.name, codec)
	}
	return NewDecoder(c.name, func(ctx context.Context, text string) (*goadt.Value, error) {
		fields, ok := def.From(text, c.codecContext())
		if !ok {
			return nil, nil
		}
		return c.Create(ctx, fields)
	})
}

// To returns the encoder of codec.
func (c *Controller) To(codec string) Encoder {
	if codec == JSON {
		return NewEncoder(encodeJSON)
	}
	def, ok := c.codecs[codec]
	if !ok {
		return MissingEncoder(c.name, codec)
	}
	return NewEncoder(def.To)
}

func (c *Controller) codecContext() CodecContext {
	return CodecContext{Name: c.name, Schema: c.schema, Extensions: maps.Clone(c.extensions)}
}

// decodeJSON misses on malformed JSON, non-object documents and documents
// tagged for another record.
func (c *Controller) decodeJSON(ctx context.Context, text string) (*goadt.Value, error) {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	var extra any
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return nil, errTrailingJSON
	}
	m, ok := jsonNumbers(raw).(map[string]any)
	if !ok {
		return nil, nil
	}
	if tag, has := m[goadt.TagField]; has && tag != c.name {
		return nil, nil
	}
	return c.Create(ctx, m)
}

var errTrailingJSON = errors.New("record: trailing data after JSON document")

// maxExactFloat is the largest integer magnitude float64 holds exactly.
const maxExactFloat = 1 << 53

// jsonNumbers resolves json.Number leaves to float64, except integers beyond
// float64 precision, which stay exact as int64.
func jsonNumbers(v any) any {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil && (i > maxExactFloat || i < -maxExactFloat) {
			return i
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t
	case map[string]any:
		for k, vv := range t {
			t[k] = jsonNumbers(vv)
		}
		return t
	case []any:
		for i := range t {
			t[i] = jsonNumbers(t[i])
		}
		return t
	}
	return v
}

func encodeJSON(v *goadt.Value) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
