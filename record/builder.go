package record

import (
	"maps"

	goadt "github.com/reoring/goadt"
	"github.com/reoring/goadt/schema"
)

// Stage is any builder stage that can complete the record.
type Stage interface {
	Done() (*Controller, error)
}

// Option configures a record builder.
type Option func(*state)

// WithExtensions seeds the extension bag. Later Extend calls override keys
// on collision.
func WithExtensions(ext map[string]any) Option {
	return func(s *state) { maps.Copy(s.extensions, ext) }
}

// state is the accumulator shared by all stages of one builder. The first
// error is kept; later calls become no-ops and Done reports it.
type state struct {
	name       string
	schema     *schema.Object
	declared   bool
	extensions map[string]any
	defaults   func(goadt.Fields) goadt.Fields
	codecs     []namedCodec
	err        error
}

type namedCodec struct {
	name string
	def  CodecDef
}

func (s *state) fail(kind error, format string, args ...any) {
	if s.err == nil {
		s.err = goadt.NewUserMistake(kind, format, args...)
	}
}

func (s *state) setSchema(shape schema.Shaper) {
	if s.err != nil {
		return
	}
	if s.declared {
		s.fail(goadt.ErrSchemaRedefined, "The schema of record %s has already been defined", goadt.Code(s.name))
		return
	}
	switch sh := shape.(type) {
	case *schema.Object:
		if sh == nil {
			s.fail(goadt.ErrUserMistake, "The schema of record %s is a nil object", goadt.Code(s.name))
			return
		}
		// A tag the object already carries gives way to the record's.
		s.schema = sh.WithTag(goadt.TagField, s.name)
	case nil:
		s.schema = schema.Tagged(nil, goadt.TagField, s.name)
	default:
		s.schema = schema.Tagged(sh.Shape(), goadt.TagField, s.name)
	}
	s.declared = true
}

func (s *state) extend(props map[string]any) {
	if s.err != nil {
		return
	}
	maps.Copy(s.extensions, props)
}

func (s *state) addCodec(name string, def CodecDef) {
	if s.err != nil {
		return
	}
	if s.schema.IsEmpty() {
		s.fail(goadt.ErrCodecWithoutSchema, "A codec cannot be defined without a schema")
		return
	}
	if def.To == nil || def.From == nil {
		s.fail(goadt.ErrUserMistake, "The codec %q of record %s must define both To and From", name, goadt.Code(s.name))
		return
	}
	if name == JSON {
		s.fail(goadt.ErrDuplicateCodec, "A codec with the name %q has already been defined. It is built in", name)
		return
	}
	for _, c := range s.codecs {
		if c.name == name {
			s.fail(goadt.ErrDuplicateCodec, "A codec with the name %q has already been defined", name)
			return
		}
	}
	s.codecs = append(s.codecs, namedCodec{name: name, def: def})
}

func (s *state) setDefaults(fn func(goadt.Fields) goadt.Fields) {
	if s.err != nil {
		return
	}
	if s.schema.IsEmpty() {
		s.fail(goadt.ErrDefaultsWithoutSchema, "No schema defined for record %s, defaults need one", goadt.Code(s.name))
		return
	}
	if s.defaults != nil {
		s.fail(goadt.ErrDuplicateDefaults, "Defaults already defined for record %s", goadt.Code(s.name))
		return
	}
	s.defaults = fn
}

func (s *state) done() (*Controller, error) {
	if s.err != nil {
		return nil, s.err
	}
	c := &Controller{
		name:       s.name,
		schema:     s.schema,
		symbol:     goadt.NewSymbol(s.name),
		extensions: maps.Clone(s.extensions),
		defaults:   s.defaults,
		codecs:     make(map[string]CodecDef, len(s.codecs)),
	}
	for _, nc := range s.codecs {
		c.codecNames = append(c.codecNames, nc.name)
		c.codecs[nc.name] = nc.def
	}
	return c, nil
}

func mustDone(s Stage) *Controller {
	c, err := s.Done()
	if err != nil {
		panic(err)
	}
	return c
}

// New starts a record named name. The record has no fields until Schema is
// called.
func New(name string, opts ...Option) *Initial {
	s := &state{
		name:       name,
		schema:     schema.Tagged(nil, goadt.TagField, name),
		extensions: map[string]any{},
	}
	for _, o := range opts {
		o(s)
	}
	return &Initial{s: s}
}

// Of is the shorthand for New(name).Schema(shape).Done().
func Of(name string, shape schema.Shaper, opts ...Option) (*Controller, error) {
	return New(name, opts...).Schema(shape).Done()
}

// MustOf is like Of but panics on error.
func MustOf(name string, shape schema.Shaper, opts ...Option) *Controller {
	return mustDone(New(name, opts...).Schema(shape))
}

// Initial is a named record without a schema.
type Initial struct{ s *state }

// Schema declares the record fields, given as schema.Fields or as a built
// *schema.Object. The tag field is added automatically.
func (b *Initial) Schema(shape schema.Shaper) *Declared {
	b.s.setSchema(shape)
	return &Declared{s: b.s}
}

// Extend merges props into the extension bag.
func (b *Initial) Extend(props map[string]any) *Initial {
	b.s.extend(props)
	return b
}

// Done builds the controller of a field-less record.
func (b *Initial) Done() (*Controller, error) { return b.s.done() }

// MustDone is like Done but panics on error.
func (b *Initial) MustDone() *Controller { return mustDone(b) }

// Declared is a record whose schema has been declared.
type Declared struct{ s *state }

// Extend merges props into the extension bag.
func (b *Declared) Extend(props map[string]any) *Declared {
	b.s.extend(props)
	return b
}

// Codec registers a named codec. Names must be unique per record and json
// is reserved for the built-in codec.
func (b *Declared) Codec(name string, def CodecDef) *Declared {
	b.s.addCodec(name, def)
	return b
}

// Defaults sets the record-level defaults provider. It receives the
// constructor input and returns values for keys the input leaves unset.
func (b *Declared) Defaults(fn func(input goadt.Fields) goadt.Fields) *Defaulted {
	b.s.setDefaults(fn)
	return &Defaulted{s: b.s}
}

func (b *Declared) Done() (*Controller, error) { return b.s.done() }

func (b *Declared) MustDone() *Controller { return mustDone(b) }

// Defaulted is a record with a defaults provider.
type Defaulted struct{ s *state }

func (b *Defaulted) Extend(props map[string]any) *Defaulted {
	b.s.extend(props)
	return b
}

// Codec registers a named codec, like Declared.Codec.
func (b *Defaulted) Codec(name string, def CodecDef) *Defaulted {
	b.s.addCodec(name, def)
	return b
}

func (b *Defaulted) Done() (*Controller, error) { return b.s.done() }

func (b *Defaulted) MustDone() *Controller { return mustDone(b) }
