package record

import (
	"context"
	"maps"

	goadt "github.com/reoring/goadt"
	js "github.com/reoring/goadt/jsonschema"
	"github.com/reoring/goadt/schema"
)

// Controller is a built record definition. It is immutable and safe for
// concurrent use.
type Controller struct {
	name       string
	schema     *schema.Object
	symbol     *goadt.Symbol
	extensions map[string]any
	defaults   func(goadt.Fields) goadt.Fields
	codecNames []string
	codecs     map[string]CodecDef
}

func (c *Controller) Name() string { return c.name }

// Schema returns the record schema, tag field included.
func (c *Controller) Schema() *schema.Object { return c.schema }

// InputSchema returns the constructor input shape: the schema without the
// tag field.
func (c *Controller) InputSchema() *schema.Object { return c.schema.Omit(goadt.TagField) }

// Symbol returns the identity token shared by every value of this record.
func (c *Controller) Symbol() *goadt.Symbol { return c.symbol }

// Codecs returns the names of the registered codecs in registration order.
// The built-in json codec is not listed.
func (c *Controller) Codecs() []string { return append([]string(nil), c.codecNames...) }

// HasCodec reports whether From and To accept name.
func (c *Controller) HasCodec(name string) bool {
	if name == JSON {
		return true
	}
	_, ok := c.codecs[name]
	return ok
}

// DefaultsProvider returns the record-level defaults provider, or nil.
func (c *Controller) DefaultsProvider() func(goadt.Fields) goadt.Fields { return c.defaults }

// Tags returns the single tag of the record.
func (c *Controller) Tags() []string { return []string{c.name} }

// Ext returns the extension stored under key, or nil.
func (c *Controller) Ext(key string) any { return c.extensions[key] }

// Extensions returns a copy of the extension bag.
func (c *Controller) Extensions() map[string]any { return maps.Clone(c.extensions) }

// JSONSchema projects the record schema.
func (c *Controller) JSONSchema() (*js.Schema, error) { return c.schema.JSONSchema() }

// Create validates input and stamps it as a value of this record. Keys left
// unset, or set to goadt.Undefined, are filled from the defaults provider
// first. Any _tag or envelope key in input is ignored. Validation failures
// are returned as goadt.Issues.
func (c *Controller) Create(ctx context.Context, input goadt.Fields) (*goadt.Value, error) {
	in := make(goadt.Fields, len(input)+1)
	for k, v := range input {
		if k == goadt.TagField || k == goadt.EnvelopeField || goadt.IsUndefined(v) {
			continue
		}
		in[k] = v
	}
	if c.defaults != nil {
		for k, v := range c.defaults(maps.Clone(in)) {
			if _, set := in[k]; set || goadt.IsUndefined(v) {
				continue
			}
			in[k] = v
		}
	}
	in[goadt.TagField] = c.name
	parsed, err := c.schema.Parse(ctx, in)
	if err != nil {
		return nil, err
	}
	return goadt.NewValue(c.symbol, parsed), nil
}

// MustCreate is like Create but panics on error.
func (c *Controller) MustCreate(ctx context.Context, input goadt.Fields) *goadt.Value {
	v, err := c.Create(ctx, input)
	if err != nil {
		panic(err)
	}
	return v
}

// Is reports whether v was created by this record.
func (c *Controller) Is(v *goadt.Value) bool {
	return v != nil && v.Symbol() == c.symbol
}

// IsAny is Is for arbitrary input. It never panics.
func (c *Controller) IsAny(x any) bool {
	switch v := x.(type) {
	case *goadt.Value:
		return c.Is(v)
	case goadt.Value:
		return c.Is(&v)
	}
	return false
}

// Update returns a copy of v with changes applied, validated again so
// transforms, defaults and constraints re-apply. A goadt.Undefined change
// removes the key. v is never modified.
func (c *Controller) Update(ctx context.Context, v *goadt.Value, changes goadt.Fields) (*goadt.Value, error) {
	if !c.Is(v) {
		return nil, goadt.NewUserMistake(goadt.ErrForeignValue, "Cannot update %v with the controller of record %s", v, goadt.Code(c.name))
	}
	merged := v.Fields()
	for k, val := range changes {
		if goadt.IsUndefined(val) {
			delete(merged, k)
			continue
		}
		merged[k] = val
	}
	return c.Create(ctx, merged)
}

// MustUpdate is like Update but panics on error.
func (c *Controller) MustUpdate(ctx context.Context, v *goadt.Value, changes goadt.Fields) *goadt.Value {
	out, err := c.Update(ctx, v, changes)
	if err != nil {
		panic(err)
	}
	return out
}
